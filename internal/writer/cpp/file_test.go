package cpp

import (
	"bytes"
	"os"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/sieverom/internal/cartridge"
	"github.com/retroenv/sieverom/internal/sieve"
	"github.com/retroenv/sieverom/internal/writer"
)

func sieveDeclarations(t *testing.T) *writer.Declarations {
	t.Helper()
	logger := log.NewTestLogger(t)
	prog, err := sieve.Assemble(logger)
	assert.NoError(t, err)
	img, err := cartridge.Build(logger, prog, cartridge.DefaultHeader(), sieve.LabelHalt)
	assert.NoError(t, err)

	return &writer.Declarations{
		Generator:   "sieverom",
		Image:       img.Data,
		Primes:      sieve.ExpectedPrimes(),
		ResultsAddr: sieve.ResultsBase,
		CountAddr:   sieve.CountAddr,
		DoneAddr:    sieve.DoneAddr,
		DoneValue:   sieve.DoneValue,
	}
}

func TestWrite(t *testing.T) {
	expected, err := os.ReadFile("testdata/prime_sieve_rom.h")
	assert.NoError(t, err)

	var buf bytes.Buffer
	w := New(sieveDeclarations(t), &buf)
	assert.NoError(t, w.Write())
	assert.Equal(t, string(expected), buf.String())
}
