// Package options contains the program options.
package options

// Parameters contains file path options.
type Parameters struct {
	Output string `flag:"o" usage:"output ROM image file, - for stdout"`
	Header string `flag:"header" usage:"output declaration file, empty to skip"`
}

// Flags contains behavior options.
type Flags struct {
	Format string `flag:"f" usage:"declaration format: cpp, go" default:"cpp"`
	Verify bool   `flag:"verify" usage:"verify the image by executing it and checking the results"`
	Debug  bool   `flag:"debug" usage:"enable debug logging"`
	Quiet  bool   `flag:"q" usage:"quiet mode"`
}

// Program options of the ROM generator.
type Program struct {
	Parameters
	Flags
}

// Default file names of the generated files.
const (
	DefaultOutput = "prime_sieve.bin"
	DefaultHeader = "prime_sieve_rom.h"
	DefaultFormat = "cpp"
)

// Symbols options of the symbol table converter.
type Symbols struct {
	Input     string `arg:"positional" usage:"nm output file, - for stdin"`
	Output    string `flag:"o" usage:"output header file (default: stdout)"`
	Namespace string `flag:"n" usage:"C++ namespace name" default:"Sym"`
	RAMStart  uint32 `flag:"ram-start" usage:"RAM region start address"`
	RAMEnd    uint32 `flag:"ram-end" usage:"RAM region end address"`
	Debug     bool   `flag:"debug" usage:"enable debug logging"`
	Quiet     bool   `flag:"q" usage:"quiet mode"`
}
