// Package verification verifies that a generated ROM image computes the
// expected results by executing it on a 68000 subset interpreter.
package verification

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/sieverom/internal/cartridge"
	"github.com/retroenv/sieverom/internal/sieve"
)

var (
	// ErrResultMismatch is returned when the program results in RAM differ
	// from the expected ones.
	ErrResultMismatch = errors.New("result mismatch")
	// ErrSentinelPreset is returned when the done flag holds the completion
	// value before the program ran.
	ErrSentinelPreset = errors.New("done flag set before execution")
)

// DefaultStepLimit is the step budget of a verification run. The sieve
// program halts after less than 20000 instructions.
const DefaultStepLimit = 1_000_000

// ramFill is the value of uninitialized work RAM. It is non zero to detect a
// program that relies on cleared memory.
const ramFill = 0xFF

// Result contains the state of work RAM after the program halted.
type Result struct {
	Steps      int
	Count      uint16
	Primes     []uint16
	DoneBefore uint16
	Done       uint16
	Checksum   uint16
}

// VerifyImage checks the checksum and size of the image, runs it until it
// reaches its halt routine and compares the results in work RAM against the
// expected primes.
func VerifyImage(ctx context.Context, logger *log.Logger, data []byte) (*Result, error) {
	return verifyImage(ctx, logger, data, DefaultStepLimit)
}

func verifyImage(ctx context.Context, logger *log.Logger, data []byte, stepLimit int) (*Result, error) {
	if err := cartridge.VerifyChecksum(data); err != nil {
		return nil, fmt.Errorf("verifying checksum: %w", err)
	}

	c := newCPU(data, ramFill)
	if err := c.reset(); err != nil {
		return nil, err
	}
	halt, err := cartridge.Vector(data, 2)
	if err != nil {
		return nil, fmt.Errorf("reading halt vector: %w", err)
	}

	res := &Result{
		Checksum: cartridge.Checksum(data),
	}
	if res.DoneBefore, err = c.read16(sieve.DoneAddr); err != nil {
		return nil, err
	}
	if res.DoneBefore == sieve.DoneValue {
		return nil, ErrSentinelPreset
	}

	if err := c.run(ctx, halt, stepLimit); err != nil {
		return nil, err
	}
	res.Steps = c.steps
	logger.Debug("Program halted",
		log.Int("steps", c.steps),
		log.Hex("pc", c.pc))

	if err := collectResults(c, res); err != nil {
		return nil, err
	}
	if err := compareResults(logger, res); err != nil {
		return res, err
	}
	return res, nil
}

func collectResults(c *cpu, res *Result) error {
	var err error
	if res.Count, err = c.read16(sieve.CountAddr); err != nil {
		return err
	}
	if res.Done, err = c.read16(sieve.DoneAddr); err != nil {
		return err
	}

	res.Primes = make([]uint16, sieve.PrimeCount)
	for i := range res.Primes {
		if res.Primes[i], err = c.read16(uint32(sieve.ResultsBase + 2*i)); err != nil {
			return err
		}
	}
	return nil
}

func compareResults(logger *log.Logger, res *Result) error {
	if res.Done != sieve.DoneValue {
		return fmt.Errorf("done flag is $%04X instead of $%04X: %w", res.Done, sieve.DoneValue, ErrResultMismatch)
	}
	if res.Count != sieve.PrimeCount {
		return fmt.Errorf("prime count is %d instead of %d: %w", res.Count, sieve.PrimeCount, ErrResultMismatch)
	}

	if err := checkBufferEqual(logger, wordsToBytes(sieve.ExpectedPrimes()), wordsToBytes(res.Primes)); err != nil {
		return fmt.Errorf("primes mismatch: %w: %w", err, ErrResultMismatch)
	}
	return nil
}

// CheckDeterminism compares two generated images byte by byte.
func CheckDeterminism(logger *log.Logger, first, second []byte) error {
	if err := checkBufferEqual(logger, first, second); err != nil {
		return fmt.Errorf("images differ: %w", err)
	}
	return nil
}

func wordsToBytes(words []uint16) []byte {
	b := make([]byte, 0, 2*len(words))
	for _, w := range words {
		b = binary.BigEndian.AppendUint16(b, w)
	}
	return b
}

func checkBufferEqual(logger *log.Logger, input, output []byte) error {
	if len(input) != len(output) {
		return fmt.Errorf("mismatched lengths, %d != %d", len(input), len(output))
	}

	var diffs uint64
	for i := range input {
		if input[i] == output[i] {
			continue
		}

		diffs++
		if diffs < 10 {
			logger.Error("Offset mismatch",
				log.Hex("offset", i),
				log.Hex("expected", input[i]),
				log.Hex("got", output[i]))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d offset mismatches", diffs)
}
