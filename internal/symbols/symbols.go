// Package symbols converts nm symbol listings of Mega Drive programs into
// constant declarations for test fixtures.
package symbols

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Default work RAM range of exported symbols.
const (
	DefaultRAMStart = 0xFF0000
	DefaultRAMEnd   = 0xFFFFFF
)

// Symbol is a single entry of an nm listing.
type Symbol struct {
	Address uint32
	Type    byte // nm symbol type letter, for example D for data or B for bss
	Name    string
}

// nm output format: ADDRESS TYPE NAME
var nmLine = regexp.MustCompile(`^([0-9a-fA-F]+)\s+([a-zA-Z])\s+(\S+)`)

// linker generated markers that are never exported
var linkerSymbols = map[string]struct{}{
	"__bss_start":  {},
	"__bss_end":    {},
	"__data_start": {},
	"__data_end":   {},
	"__data_load":  {},
	"__text_start": {},
	"__text_end":   {},
	"__stack":      {},
	"__heap_start": {},
	"__heap_end":   {},
	"_etext":       {},
	"_edata":       {},
	"_end":         {},
}

// Parse reads an nm listing. Lines that do not match the nm format and
// addresses that do not fit into 32 bits are skipped.
func Parse(r io.Reader) ([]Symbol, error) {
	var symbols []Symbol

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		match := nmLine.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		address, err := strconv.ParseUint(match[1], 16, 32)
		if err != nil {
			continue
		}

		symbols = append(symbols, Symbol{
			Address: uint32(address),
			Type:    match[2][0],
			Name:    match[3],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading symbol listing: %w", err)
	}
	return symbols, nil
}

// FilterRange returns the symbols whose address is in the inclusive range.
func FilterRange(symbols []Symbol, start, end uint32) []Symbol {
	var filtered []Symbol
	for _, sym := range symbols {
		if sym.Address >= start && sym.Address <= end {
			filtered = append(filtered, sym)
		}
	}
	return filtered
}

// IsLinkerSymbol returns whether the name is a linker generated marker.
func IsLinkerSymbol(name string) bool {
	if _, ok := linkerSymbols[name]; ok {
		return true
	}
	return strings.HasPrefix(name, "__")
}

// SanitizeName turns a symbol name into a C++ identifier. A single leading
// underscore of the C calling convention is dropped, of a double underscore
// one is kept.
func SanitizeName(name string) string {
	name = strings.TrimPrefix(name, "_")

	b := []byte(name)
	for i, c := range b {
		if !isIdentifierChar(c) {
			b[i] = '_'
		}
	}
	if len(b) > 0 && b[0] >= '0' && b[0] <= '9' {
		return "_" + string(b)
	}
	return string(b)
}

func isIdentifierChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
