package pipeline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/sieverom/internal/options"
	"github.com/retroenv/sieverom/internal/sieve"
)

func TestNew(t *testing.T) {
	logger := log.NewTestLogger(t)
	p := New(logger)

	assert.NotNil(t, p)
	assert.NotNil(t, p.logger)
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		verify     bool
		declPrefix string
	}{
		{"cpp declarations", "cpp", false, "// Auto-generated by sieverom"},
		{"go declarations with verification", "go", true, "// Code generated by sieverom. DO NOT EDIT."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(log.NewTestLogger(t))
			opts := options.Program{
				Parameters: options.Parameters{Output: "prime_sieve.bin"},
				Flags:      options.Flags{Format: tt.format, Verify: tt.verify},
			}

			var image, decl bytes.Buffer
			res, err := p.Execute(context.Background(), opts, &image, &decl)
			assert.NoError(t, err)

			hash := sha256.Sum256(image.Bytes())
			assert.Equal(t, "8342c394db8d1d379728ede0a3f31e5294b8be657c488e05a40c94515c68b826", hex.EncodeToString(hash[:]))
			assert.True(t, strings.HasPrefix(decl.String(), tt.declPrefix))
			assert.Equal(t, 144, res.Program.Size())

			if tt.verify {
				assert.NotNil(t, res.Verification)
				assert.Equal(t, sieve.ExpectedPrimes(), res.Verification.Primes)
			} else {
				assert.True(t, res.Verification == nil)
			}
		})
	}
}

func TestExecuteWithoutDeclarations(t *testing.T) {
	p := New(log.NewTestLogger(t))
	opts := options.Program{Flags: options.Flags{Format: "cpp"}}

	var image bytes.Buffer
	_, err := p.Execute(context.Background(), opts, &image, nil)
	assert.NoError(t, err)
	assert.Equal(t, 1024, image.Len())
}

func TestExecuteUnsupportedFormat(t *testing.T) {
	p := New(log.NewTestLogger(t))
	opts := options.Program{Flags: options.Flags{Format: "asm"}}

	var image bytes.Buffer
	_, err := p.Execute(context.Background(), opts, &image, nil)
	assert.ErrorContains(t, err, "unsupported format 'asm'")
	assert.Equal(t, 0, image.Len())
}

func TestExecuteCancelledVerification(t *testing.T) {
	p := New(log.NewTestLogger(t))
	opts := options.Program{Flags: options.Flags{Format: "cpp", Verify: true}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var image bytes.Buffer
	_, err := p.Execute(ctx, opts, &image, nil)
	assert.ErrorContains(t, err, "context canceled")
	assert.Equal(t, 0, image.Len())
}
