package symbols

import (
	"fmt"
	"io"
	"time"

	"github.com/retroenv/sieverom/internal/writer"
)

// DefaultNamespace is the C++ namespace of the generated header.
const DefaultNamespace = "Sym"

const timestampFormat = "2006-01-02T15:04:05.000000"

// Options of the header generation.
type Options struct {
	Namespace string
	Source    string           // name of the listing, omitted if empty
	Now       func() time.Time // generation time, time.Now if nil
}

// WriteHeader writes the exported symbols as a C++ header.
func WriteHeader(w io.Writer, entries []Entry, opts Options) error {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	out := writer.New(w, writer.Options{})

	lines := []string{
		"#pragma once",
		"",
		"// Auto-generated symbol table from Genesis ELF",
		"// Generated: " + now().Format(timestampFormat),
	}
	if opts.Source != "" {
		lines = append(lines, "// Source: "+opts.Source)
	}
	lines = append(lines,
		"",
		"#include <cstdint>",
		"",
		fmt.Sprintf("namespace %s {", namespace),
		"",
	)
	if err := out.WriteLines(lines...); err != nil {
		return err
	}

	constants := make([]writer.Constant, 0, len(entries))
	for _, entry := range entries {
		c := writer.Constant{
			Name:  entry.Name,
			Value: entry.Address,
		}
		if entry.Renamed() {
			c.Comment = "original: " + entry.Original
		}
		constants = append(constants, c)
	}
	if err := out.WriteConstants(constants, formatConstant); err != nil {
		return fmt.Errorf("writing symbols: %w", err)
	}

	return out.WriteLines(
		"",
		fmt.Sprintf("}  // namespace %s", namespace),
		"",
	)
}

func formatConstant(c writer.Constant) string {
	line := fmt.Sprintf("    constexpr uint32_t %s = 0x%06X;", c.Name, c.Value)
	if c.Comment != "" {
		line += "  // " + c.Comment
	}
	return line
}
