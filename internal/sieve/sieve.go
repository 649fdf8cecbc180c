// Package sieve assembles the prime sieve test program.
//
// The program clears a byte table in work RAM, runs the sieve of Eratosthenes
// over it, collects the first PrimeCount primes as 16-bit words into the
// results array and finally writes the prime count and a completion sentinel
// to fixed addresses before it halts in an endless loop:
//
//	INIT -> CLEAR_TABLE -> MARK_KNOWN_COMPOSITES -> SIEVE -> COLLECT -> FINALIZE -> HALT
//
// Work RAM layout:
//
//	$FF0000-$FF0257: sieve table (600 bytes, non zero = composite)
//	$FF0300-$FF03C7: prime results (100 x 16-bit words)
//	$FF0500:         prime count (16-bit word)
//	$FF0502:         done flag ($DEAD when complete)
package sieve

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/sieverom/internal/asm"
	"github.com/retroenv/sieverom/internal/m68k"
)

// Memory map of the program in work RAM.
const (
	StackTop    = 0xFF0000 // stack pointer set by the program itself
	SieveBase   = 0xFF0000
	SieveSize   = 600
	ResultsBase = 0xFF0300
	PrimeCount  = 100
	ResultsSize = PrimeCount * 2
	CountAddr   = 0xFF0500
	DoneAddr    = 0xFF0502
	DoneValue   = 0xDEAD
)

// ScanLimit is the largest candidate whose multiples get marked. Every
// composite below SieveSize has a prime factor not larger than ScanLimit.
const ScanLimit = 25

// Labels of the program that are referenced from outside the code.
const (
	LabelStart = "start"
	LabelHalt  = "hang"
)

// ErrInvalidLayout is returned when the memory map constants can not produce
// a correct result.
var ErrInvalidLayout = errors.New("invalid sieve layout")

// Validate checks that the table is large enough to hold PrimeCount primes,
// that the scan limit covers all composites in the table and that the RAM
// regions do not overlap.
func Validate() error {
	if ScanLimit*ScanLimit < SieveSize-1 {
		return fmt.Errorf("scan limit %d does not cover table size %d: %w", ScanLimit, SieveSize, ErrInvalidLayout)
	}
	if ScanLimit >= SieveSize {
		return fmt.Errorf("scan limit %d exceeds table size %d: %w", ScanLimit, SieveSize, ErrInvalidLayout)
	}

	primes := countPrimesBelow(SieveSize)
	if primes < PrimeCount {
		return fmt.Errorf("table size %d holds only %d primes, %d needed: %w",
			SieveSize, primes, PrimeCount, ErrInvalidLayout)
	}

	if SieveBase+SieveSize > ResultsBase {
		return fmt.Errorf("sieve table overlaps results: %w", ErrInvalidLayout)
	}
	if ResultsBase+ResultsSize > CountAddr || CountAddr+2 > DoneAddr {
		return fmt.Errorf("results overlap count or done flag: %w", ErrInvalidLayout)
	}
	return nil
}

// Assemble emits the sieve program and returns the finished code. The code
// is position independent except for the absolute RAM addresses.
func Assemble(logger *log.Logger) (*asm.Program, error) {
	if err := Validate(); err != nil {
		return nil, err
	}

	a := asm.New(logger)
	a.Label(LabelStart)

	// INIT
	a.Emit(m68k.LeaAbsLong(StackTop, m68k.SP))

	// CLEAR_TABLE: dbra runs the loop body count+1 times
	a.Emit(m68k.LeaAbsLong(SieveBase, m68k.A0))
	a.Emit(m68k.MoveWordImmToData(SieveSize-1, m68k.D0))
	a.Label("clear_loop")
	a.Emit(m68k.ClrBytePostInc(m68k.A0))
	a.Dbra(m68k.D0, "clear_loop")

	// MARK_KNOWN_COMPOSITES: 0 and 1 are not prime
	a.Emit(m68k.LeaAbsLong(SieveBase, m68k.A0))
	a.Emit(m68k.MoveByteImmToIndirect(1, m68k.A0))
	a.Emit(m68k.MoveByteImmToDisp(1, 1, m68k.A0))

	// SIEVE: d0 = candidate, d1 = multiple
	a.Emit(m68k.MoveWordImmToData(2, m68k.D0))
	a.Label("sieve_loop")
	a.Emit(m68k.CmpWordImmData(ScanLimit, m68k.D0))
	a.Branch(m68k.CondGreaterThan, "collect")
	a.Emit(m68k.LeaAbsLong(SieveBase, m68k.A0))
	a.Emit(m68k.TstByteIndexed(0, m68k.A0, m68k.D0))
	a.Branch(m68k.CondNotEqual, "next")
	a.Emit(m68k.MoveWordData(m68k.D0, m68k.D1))
	a.Emit(m68k.AddWordData(m68k.D0, m68k.D1))
	a.Label("mark_multiples")
	a.Emit(m68k.CmpWordImmData(SieveSize, m68k.D1))
	a.Branch(m68k.CondGreaterEqual, "next")
	a.Emit(m68k.MoveByteImmToIndexed(1, 0, m68k.A0, m68k.D1))
	a.Emit(m68k.AddWordData(m68k.D0, m68k.D1))
	a.Branch(m68k.CondTrue, "mark_multiples")
	a.Label("next")
	a.Emit(m68k.AddqWordData(1, m68k.D0))
	a.Branch(m68k.CondTrue, "sieve_loop")

	// COLLECT: d0 = candidate, d1 = primes found, a1 = results pointer
	a.Label("collect")
	a.Emit(m68k.LeaAbsLong(SieveBase, m68k.A0))
	a.Emit(m68k.LeaAbsLong(ResultsBase, m68k.A1))
	a.Emit(m68k.ClrWordData(m68k.D1))
	a.Emit(m68k.MoveWordImmToData(2, m68k.D0))
	a.Label("collect_loop")
	a.Emit(m68k.CmpWordImmData(PrimeCount, m68k.D1))
	a.Branch(m68k.CondEqual, "done")
	a.Emit(m68k.CmpWordImmData(SieveSize, m68k.D0))
	a.Branch(m68k.CondGreaterEqual, "done")
	a.Emit(m68k.TstByteIndexed(0, m68k.A0, m68k.D0))
	a.Branch(m68k.CondNotEqual, "not_prime")
	a.Emit(m68k.MoveWordDataToPostInc(m68k.D0, m68k.A1))
	a.Emit(m68k.AddqWordData(1, m68k.D1))
	a.Label("not_prime")
	a.Emit(m68k.AddqWordData(1, m68k.D0))
	a.Branch(m68k.CondTrue, "collect_loop")

	// FINALIZE
	a.Label("done")
	a.Emit(m68k.MoveWordDataToAbsLong(m68k.D1, CountAddr))
	a.Emit(m68k.MoveWordImmToAbsLong(DoneValue, DoneAddr))

	// HALT
	a.Label(LabelHalt)
	a.Branch(m68k.CondTrue, LabelHalt)

	prog, err := a.Finish()
	if err != nil {
		return nil, fmt.Errorf("assembling sieve program: %w", err)
	}

	logger.Debug("Sieve program assembled",
		log.Int("size", prog.Size()),
		log.Int("labels", a.Labels().Len()),
		log.Int("branches", len(prog.Branches)),
		log.Hex("halt_offset", prog.Labels[LabelHalt]))
	return prog, nil
}
