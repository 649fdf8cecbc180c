// Package cpp writes the declarations as a C++ header.
package cpp

import (
	"fmt"
	"io"

	"github.com/retroenv/sieverom/internal/writer"
)

// Format is the name of the output format.
const Format = "cpp"

const (
	includeGuard  = "PRIME_SIEVE_ROM_H"
	primesPerLine = 10
)

// FileWriter writes the header file content.
type FileWriter struct {
	decl       *writer.Declarations
	mainWriter io.Writer
	writer     *writer.Writer
}

type customWrite func() error

type lineWrite string

type emptyLineWrite struct{}

// New creates a new file writer.
// nolint: ireturn
func New(decl *writer.Declarations, mainWriter io.Writer) writer.DeclarationWriter {
	opts := writer.Options{
		Indent: "    ",
	}
	return FileWriter{
		decl:       decl,
		mainWriter: mainWriter,
		writer:     writer.New(mainWriter, opts),
	}
}

// Write writes the header file content including include guard, namespaces,
// image data, expected primes and the verification addresses.
func (f FileWriter) Write() error {
	writes := []any{
		lineWrite("// Auto-generated by " + f.decl.Generator),
		lineWrite("// DO NOT EDIT"),
		emptyLineWrite{},
		lineWrite("#ifndef " + includeGuard),
		lineWrite("#define " + includeGuard),
		emptyLineWrite{},
		lineWrite("#include <cstdint>"),
		lineWrite("#include <cstddef>"),
		emptyLineWrite{},
		lineWrite("namespace GX {"),
		lineWrite("namespace TestRoms {"),
		emptyLineWrite{},
		customWrite(f.writeImage),
		customWrite(f.writePrimes),
		customWrite(f.writeAddresses),
		lineWrite("} // namespace TestRoms"),
		lineWrite("} // namespace GX"),
		emptyLineWrite{},
		lineWrite("#endif // " + includeGuard),
	}

	for _, write := range writes {
		switch t := write.(type) {
		case lineWrite:
			if _, err := fmt.Fprintln(f.mainWriter, t); err != nil {
				return fmt.Errorf("writing line: %w", err)
			}

		case emptyLineWrite:
			if _, err := fmt.Fprintln(f.mainWriter); err != nil {
				return fmt.Errorf("writing line: %w", err)
			}

		case customWrite:
			if err := t(); err != nil {
				return err
			}

		default:
			return fmt.Errorf("unsupported write type %T", t)
		}
	}
	return nil
}

func (f FileWriter) writeImage() error {
	d := f.decl
	err := f.writer.WriteLines(
		fmt.Sprintf("// Prime Sieve ROM (%d bytes)", len(d.Image)),
		fmt.Sprintf("// Computes first %d primes using Sieve of Eratosthenes", len(d.Primes)),
		"// Results written to:",
		fmt.Sprintf("//   $%06X-$%06X: Prime values (%d x 16-bit words)", d.ResultsAddr, d.ResultsEnd(), len(d.Primes)),
		fmt.Sprintf("//   $%06X: Prime count", d.CountAddr),
		fmt.Sprintf("//   $%06X: Done flag ($%04X when complete)", d.DoneAddr, d.DoneValue),
		"",
		fmt.Sprintf("constexpr size_t PRIME_SIEVE_ROM_SIZE = %d;", len(d.Image)),
		"",
		"constexpr uint8_t PRIME_SIEVE_ROM[] = {",
	)
	if err != nil {
		return err
	}

	if err := f.writer.BundleDataWrites(d.Image, nil); err != nil {
		return fmt.Errorf("writing image data: %w", err)
	}
	return f.writer.WriteLines("};", "")
}

func (f FileWriter) writePrimes() error {
	d := f.decl
	err := f.writer.WriteLines(
		fmt.Sprintf("// First %d prime numbers for verification", len(d.Primes)),
		"constexpr uint16_t EXPECTED_PRIMES[] = {",
	)
	if err != nil {
		return err
	}

	if err := f.writer.BundleWordWrites(d.Primes, primesPerLine, nil); err != nil {
		return fmt.Errorf("writing expected primes: %w", err)
	}
	return f.writer.WriteLines(
		"};",
		"",
		fmt.Sprintf("constexpr size_t NUM_PRIMES = %d;", len(d.Primes)),
		"",
	)
}

func (f FileWriter) writeAddresses() error {
	d := f.decl
	if err := f.writer.WriteLines("// Memory addresses for test verification"); err != nil {
		return err
	}

	addresses := []writer.Constant{
		{Name: "PRIME_RESULTS_ADDR", Value: d.ResultsAddr},
		{Name: "PRIME_COUNT_ADDR", Value: d.CountAddr},
		{Name: "DONE_FLAG_ADDR", Value: d.DoneAddr},
	}
	if err := f.writer.WriteConstants(addresses, formatAddress); err != nil {
		return err
	}

	return f.writer.WriteLines(
		fmt.Sprintf("constexpr uint16_t DONE_FLAG_VALUE = 0x%04X;", d.DoneValue),
		"",
	)
}

func formatAddress(c writer.Constant) string {
	return fmt.Sprintf("constexpr uint32_t %s = 0x%06X;", c.Name, c.Value)
}
