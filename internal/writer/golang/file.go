// Package golang writes the declarations as a Go source file.
package golang

import (
	"fmt"
	"io"

	"github.com/retroenv/sieverom/internal/writer"
)

// Format is the name of the output format.
const Format = "go"

// DefaultPackage is the package name of the generated file.
const DefaultPackage = "testroms"

const primesPerLine = 10

// FileWriter writes the Go source file content.
type FileWriter struct {
	decl       *writer.Declarations
	pkg        string
	mainWriter io.Writer
	writer     *writer.Writer
}

// New creates a new file writer.
// nolint: ireturn
func New(decl *writer.Declarations, mainWriter io.Writer) writer.DeclarationWriter {
	return NewWithPackage(decl, mainWriter, DefaultPackage)
}

// NewWithPackage creates a new file writer that uses the given package name.
// nolint: ireturn
func NewWithPackage(decl *writer.Declarations, mainWriter io.Writer, pkg string) writer.DeclarationWriter {
	opts := writer.Options{
		Indent: "\t",
	}
	return FileWriter{
		decl:       decl,
		pkg:        pkg,
		mainWriter: mainWriter,
		writer:     writer.New(mainWriter, opts),
	}
}

// Write writes the Go source file content.
func (f FileWriter) Write() error {
	d := f.decl
	err := f.writer.WriteLines(
		fmt.Sprintf("// Code generated by %s. DO NOT EDIT.", d.Generator),
		"",
		"package "+f.pkg,
		"",
		"// PrimeSieveROMSize is the size of the prime sieve ROM image.",
		fmt.Sprintf("const PrimeSieveROMSize = %d", len(d.Image)),
		"",
		fmt.Sprintf("// PrimeSieveROM computes the first %d primes using the Sieve of Eratosthenes.", len(d.Primes)),
		"var PrimeSieveROM = [PrimeSieveROMSize]byte{",
	)
	if err != nil {
		return err
	}
	if err := f.writer.BundleDataWrites(d.Image, nil); err != nil {
		return fmt.Errorf("writing image data: %w", err)
	}

	err = f.writer.WriteLines(
		"}",
		"",
		"// ExpectedPrimes contains the values of the results array after the program halted.",
		"var ExpectedPrimes = [NumPrimes]uint16{",
	)
	if err != nil {
		return err
	}
	if err := f.writer.BundleWordWrites(d.Primes, primesPerLine, nil); err != nil {
		return fmt.Errorf("writing expected primes: %w", err)
	}

	err = f.writer.WriteLines(
		"}",
		"",
		"// NumPrimes is the number of primes the program computes.",
		fmt.Sprintf("const NumPrimes = %d", len(d.Primes)),
		"",
		"// Memory addresses for test verification.",
		"const (",
	)
	if err != nil {
		return err
	}

	aliases := map[string]uint32{
		"PrimeResultsAddr": d.ResultsAddr,
		"PrimeCountAddr":   d.CountAddr,
		"DoneFlagAddr":     d.DoneAddr,
	}
	width := 0
	for name := range aliases {
		width = max(width, len(name))
	}
	formatAddress := func(c writer.Constant) string {
		return fmt.Sprintf("\t%-*s = 0x%06X", width, c.Name, c.Value)
	}
	if err := f.writer.OutputAliasMap(aliases, formatAddress); err != nil {
		return fmt.Errorf("writing addresses: %w", err)
	}

	return f.writer.WriteLines(
		")",
		"",
		"// DoneFlagValue is stored at DoneFlagAddr when the program completed.",
		fmt.Sprintf("const DoneFlagValue = 0x%04X", d.DoneValue),
	)
}
