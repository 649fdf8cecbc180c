package sieve

import (
	"encoding/hex"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

var expectedCode = "" +
	"4ff900ff000041f900ff0000303c0257421851c8fffc41f900ff000010bc0001" +
	"117c00010001303c0002b07c00196e2441f900ff00004a30000066143200d240" +
	"b27c02586c0a11bc00011000d24060f0524060d641f900ff000043f900ff0300" +
	"4241303c0002b27c00646714b07c02586c0e4a300000660432c05241524060e6" +
	"33c100ff050033fcdead00ff050260fe"

func TestAssemble(t *testing.T) {
	prog, err := Assemble(log.NewTestLogger(t))
	assert.NoError(t, err)

	want, err := hex.DecodeString(expectedCode)
	assert.NoError(t, err)
	assert.Equal(t, 144, prog.Size())
	assert.Equal(t, want, prog.Code)

	start, err := prog.LabelOffset(LabelStart)
	assert.NoError(t, err)
	assert.Equal(t, 0, start)

	halt, err := prog.LabelOffset(LabelHalt)
	assert.NoError(t, err)
	assert.Equal(t, 142, halt)
	assert.Equal(t, []byte{0x60, 0xFE}, prog.Code[halt:halt+2])
}

func TestAssembleBranches(t *testing.T) {
	prog, err := Assemble(log.NewTestLogger(t))
	assert.NoError(t, err)
	assert.Len(t, prog.Branches, 11)

	for _, br := range prog.Branches {
		assert.Equal(t, br.Target-(br.Anchor+2), br.Displacement)
		assert.Equal(t, prog.Labels[br.Label], br.Target)

		switch br.Width {
		case 1:
			stored := int(int8(prog.Code[br.Offset]))
			assert.Equal(t, br.Displacement, stored)
			assert.True(t, stored != 0)
			assert.True(t, stored >= -128 && stored <= 127)
		case 2:
			stored := int(int16(uint16(prog.Code[br.Offset])<<8 | uint16(prog.Code[br.Offset+1])))
			assert.Equal(t, br.Displacement, stored)
		default:
			t.Fatalf("unexpected displacement width %d", br.Width)
		}
	}
}

func TestAssembleDeterministic(t *testing.T) {
	first, err := Assemble(log.NewTestLogger(t))
	assert.NoError(t, err)
	second, err := Assemble(log.NewTestLogger(t))
	assert.NoError(t, err)
	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, first.Labels, second.Labels)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate())
	assert.True(t, countPrimesBelow(SieveSize) >= PrimeCount)
	assert.True(t, ResultsBase >= SieveBase+SieveSize)
}

func TestExpectedPrimes(t *testing.T) {
	primes := ExpectedPrimes()
	assert.Len(t, primes, PrimeCount)
	assert.Equal(t, uint16(2), primes[0])
	assert.Equal(t, uint16(541), primes[PrimeCount-1])
	assert.Equal(t, []uint16{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}, primes[:10])

	for i := 1; i < len(primes); i++ {
		assert.True(t, primes[i] > primes[i-1])
		assert.True(t, int(primes[i]) < SieveSize)
	}
}

func TestIsPrime(t *testing.T) {
	tests := []struct {
		n    int
		want bool
	}{
		{0, false},
		{1, false},
		{2, true},
		{9, false},
		{25, false},
		{541, true},
		{599, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isPrime(tt.n))
	}
}
