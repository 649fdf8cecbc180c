// Package writer implements common declaration file writing functionality.
package writer

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/exp/constraints"
)

const dataBytesPerLine = 16

type lineWriterFunc func(line string, valueCount int) error

// DeclarationWriter defines a shared interface used by the different output format packages.
// Their constructors need to return this shared interface, having them return the actual type instead of
// the interface results in compiler errors for the constructor variable that they are assigned to.
type DeclarationWriter interface {
	Write() error
}

// Declarations contains the generated image and the values that test
// harnesses need to check the results of the program.
type Declarations struct {
	Generator string // name of the generating tool
	Image     []byte
	Primes    []uint16

	ResultsAddr uint32
	CountAddr   uint32
	DoneAddr    uint32
	DoneValue   uint16
}

// ResultsEnd returns the address of the last byte of the results array.
func (d *Declarations) ResultsEnd() uint32 {
	return d.ResultsAddr + uint32(2*len(d.Primes)) - 1
}

// Constant is a named value of a declaration file.
type Constant struct {
	Name    string
	Value   uint32
	Comment string
}

// ConstantFormat formats a constant as a single line without line ending.
type ConstantFormat func(c Constant) string

// Writer implements common declaration file writing functionality.
type Writer struct {
	options Options
	writer  io.Writer
}

// Options of the writer.
type Options struct {
	Indent string // prefix of every bundled data line
}

// New creates a new writer.
func New(writer io.Writer, options Options) *Writer {
	return &Writer{
		options: options,
		writer:  writer,
	}
}

// BundleDataWrites bundles writes of data bytes to print dataBytesPerLine bytes per line.
func (w Writer) BundleDataWrites(data []byte, lineWriter lineWriterFunc) error {
	return bundle(w, data, dataBytesPerLine, "0x%02X", lineWriter)
}

// BundleWordWrites bundles writes of decimal words to print perLine values per line.
func (w Writer) BundleWordWrites(words []uint16, perLine int, lineWriter lineWriterFunc) error {
	return bundle(w, words, perLine, "%d", lineWriter)
}

func bundle[T constraints.Integer](w Writer, values []T, perLine int, format string,
	lineWriter lineWriterFunc) error {

	if perLine <= 0 {
		return fmt.Errorf("invalid values per line %d", perLine)
	}

	remaining := len(values)
	for i := 0; remaining > 0; {
		toWrite := min(remaining, perLine)

		buf := &strings.Builder{}
		for j := range toWrite {
			if _, err := fmt.Fprintf(buf, format+", ", values[i+j]); err != nil {
				return fmt.Errorf("writing data value: %w", err)
			}
		}

		line := strings.TrimRight(buf.String(), ", ") + ","

		if lineWriter != nil {
			if err := lineWriter(line, toWrite); err != nil {
				return fmt.Errorf("writing data line using custom writer: %w", err)
			}
		} else {
			if _, err := fmt.Fprintf(w.writer, "%s%s\n", w.options.Indent, line); err != nil {
				return fmt.Errorf("writing data line: %w", err)
			}
		}

		i += toWrite
		remaining -= toWrite
	}

	return nil
}

// WriteConstants outputs the constants in the given order.
func (w Writer) WriteConstants(constants []Constant, format ConstantFormat) error {
	for _, constant := range constants {
		if _, err := fmt.Fprintln(w.writer, format(constant)); err != nil {
			return fmt.Errorf("writing constant '%s': %w", constant.Name, err)
		}
	}
	return nil
}

// OutputAliasMap outputs an alias map of constants.
func (w Writer) OutputAliasMap(aliases map[string]uint32, format ConstantFormat) error {
	if len(aliases) == 0 {
		return nil
	}

	// sort the aliases by name before outputting to avoid random map order
	names := make([]string, 0, len(aliases))
	for constant := range aliases {
		names = append(names, constant)
	}
	slices.Sort(names)

	constants := make([]Constant, 0, len(names))
	for _, name := range names {
		constants = append(constants, Constant{Name: name, Value: aliases[name]})
	}
	return w.WriteConstants(constants, format)
}

// WriteLines writes every line followed by a line ending.
func (w Writer) WriteLines(lines ...string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w.writer, line); err != nil {
			return fmt.Errorf("writing line: %w", err)
		}
	}
	return nil
}
