package verification

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/sieverom/internal/cartridge"
	"github.com/retroenv/sieverom/internal/config"
	"github.com/retroenv/sieverom/internal/sieve"
)

func buildImage(t *testing.T) []byte {
	t.Helper()
	logger := log.NewTestLogger(t)
	prog, err := sieve.Assemble(logger)
	assert.NoError(t, err)
	img, err := cartridge.Build(logger, prog, cartridge.DefaultHeader(), sieve.LabelHalt)
	assert.NoError(t, err)
	return img.Data
}

// patchImage overwrites code bytes of a copy of the image and fixes the
// checksum.
func patchImage(data []byte, offset int, b ...byte) []byte {
	patched := bytes.Clone(data)
	copy(patched[offset:], b)
	binary.BigEndian.PutUint16(patched[cartridge.ChecksumOffset:], cartridge.Checksum(patched))
	return patched
}

func TestVerifyImage(t *testing.T) {
	data := buildImage(t)

	res, err := VerifyImage(context.Background(), log.NewTestLogger(t), data)
	assert.NoError(t, err)
	assert.Equal(t, uint16(sieve.PrimeCount), res.Count)
	assert.Equal(t, sieve.ExpectedPrimes(), res.Primes)
	assert.Equal(t, uint16(sieve.DoneValue), res.Done)
	assert.True(t, res.DoneBefore != sieve.DoneValue)
	assert.Equal(t, uint16(0x00EE), res.Checksum)
	assert.True(t, res.Steps > 0 && res.Steps < 20000)
}

func TestVerifyImageChecksum(t *testing.T) {
	data := bytes.Clone(buildImage(t))
	data[cartridge.CodeStart+1] ^= 0x10

	_, err := VerifyImage(context.Background(), log.NewTestLogger(t), data)
	assert.True(t, errors.Is(err, cartridge.ErrChecksumMismatch))
}

func TestVerifyImageResultMismatch(t *testing.T) {
	data := buildImage(t)

	// cmp.w #100,d1 of the collect loop
	offset := bytes.Index(data, []byte{0xB2, 0x7C, 0x00, 0x64})
	assert.True(t, offset > cartridge.CodeStart)
	data = patchImage(data, offset+3, 99)

	res, err := VerifyImage(context.Background(), log.NewTestLogger(t), data)
	assert.True(t, errors.Is(err, ErrResultMismatch))
	assert.Equal(t, uint16(99), res.Count)
}

func TestVerifyImageUnsupportedOpcode(t *testing.T) {
	data := patchImage(buildImage(t), cartridge.CodeStart, 0x4A, 0xFC) // illegal

	_, err := VerifyImage(context.Background(), log.NewTestLogger(t), data)
	assert.True(t, errors.Is(err, ErrUnsupportedOpcode))
	assert.ErrorContains(t, err, "$000200")
}

func TestVerifyImageStepLimit(t *testing.T) {
	data := buildImage(t)

	_, err := verifyImage(context.Background(), log.NewTestLogger(t), data, 100)
	assert.True(t, errors.Is(err, ErrStepLimit))
}

func TestVerifyImageCancelled(t *testing.T) {
	data := patchImage(buildImage(t), cartridge.CodeStart, 0x60, 0xFE) // bra.s *

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := VerifyImage(ctx, log.NewTestLogger(t), data)
	assert.True(t, errors.Is(err, context.Canceled))
}

// mismatchLogger returns a logger for cases that log offset mismatches at
// error level, which the test logger treats as a test failure.
func mismatchLogger() *log.Logger {
	return config.CreateLogger(false, true)
}

func TestCheckDeterminism(t *testing.T) {
	first := buildImage(t)
	second := buildImage(t)
	assert.NoError(t, CheckDeterminism(log.NewTestLogger(t), first, second))
}

func TestCheckDeterminismMismatch(t *testing.T) {
	first := buildImage(t)

	tests := []struct {
		name   string
		second func() []byte
		errMsg string
	}{
		{
			name: "single byte",
			second: func() []byte {
				b := bytes.Clone(first)
				b[0x300] ^= 0xFF
				return b
			},
			errMsg: "1 offset mismatches",
		},
		{
			name: "more differences than logged",
			second: func() []byte {
				b := bytes.Clone(first)
				for i := range 20 {
					b[cartridge.CodeStart+i] ^= 0x01
				}
				return b
			},
			errMsg: "20 offset mismatches",
		},
		{
			name: "truncated image",
			second: func() []byte {
				return bytes.Clone(first[:512])
			},
			errMsg: "mismatched lengths",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckDeterminism(mismatchLogger(), first, tt.second())
			assert.ErrorContains(t, err, tt.errMsg)
			assert.ErrorContains(t, err, "images differ")
		})
	}
}

func TestCompareResultsPrimeMismatch(t *testing.T) {
	res := &Result{
		Count:  sieve.PrimeCount,
		Primes: sieve.ExpectedPrimes(),
		Done:   sieve.DoneValue,
	}
	assert.NoError(t, compareResults(log.NewTestLogger(t), res))

	res.Primes[50] = 0x0104
	err := compareResults(mismatchLogger(), res)
	assert.True(t, errors.Is(err, ErrResultMismatch))
	assert.ErrorContains(t, err, "2 offset mismatches")
}
