// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/retroenv/sieverom/internal/options"
	"github.com/retroenv/sieverom/internal/symbols"
	"github.com/retroenv/sieverom/internal/writer/cpp"
	"github.com/retroenv/sieverom/internal/writer/golang"
)

// StdioName is the file name that selects stdin or stdout.
const StdioName = "-"

var validFormats = []string{cpp.Format, golang.Format}

// ParseFlags parses command line flags and returns program options
func ParseFlags() (options.Program, error) {
	return parseFlags(os.Args[0], os.Args[1:])
}

func parseFlags(name string, args []string) (options.Program, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	var opts options.Program
	readOptionFlags(flags, &opts)

	if err := flags.Parse(args); err != nil {
		return opts, newUsageError(flags, usageGenerator, err)
	}
	if flags.NArg() > 0 {
		return opts, &UsageError{
			flags: flags,
			usage: usageGenerator,
			msg:   fmt.Sprintf("unexpected argument %s, the generator does not take any input files", flags.Arg(0)),
		}
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// ParseSymbolFlags parses command line flags of the symbol table converter.
func ParseSymbolFlags() (options.Symbols, error) {
	return parseSymbolFlags(os.Args[0], os.Args[1:])
}

func parseSymbolFlags(name string, args []string) (options.Symbols, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	opts := options.Symbols{
		RAMStart: symbols.DefaultRAMStart,
		RAMEnd:   symbols.DefaultRAMEnd,
	}
	readSymbolFlags(flags, &opts)

	if err := flags.Parse(args); err != nil {
		return opts, newUsageError(flags, usageSymbols, err)
	}

	switch flags.NArg() {
	case 0:
		opts.Input = StdioName
	case 1:
		opts.Input = flags.Arg(0)
	default:
		return opts, &UsageError{
			flags: flags,
			usage: usageSymbols,
			msg:   fmt.Sprintf("unexpected argument %s, only one input file is supported", flags.Arg(1)),
		}
	}

	if opts.RAMStart > opts.RAMEnd {
		return opts, fmt.Errorf("RAM start $%06X is above RAM end $%06X", opts.RAMStart, opts.RAMEnd)
	}
	return opts, nil
}

const (
	usageGenerator = "usage: sieverom [options]"
	usageSymbols   = "usage: elf2sym [options] [nm output file]"
)

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	usage string
	msg   string
}

func newUsageError(flags *flag.FlagSet, usage string, err error) *UsageError {
	msg := err.Error()
	if errors.Is(err, flag.ErrHelp) {
		msg = ""
	}
	return &UsageError{flags: flags, usage: usage, msg: msg}
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	if e.msg != "" {
		fmt.Printf("%s\n\n", e.msg)
	}
	fmt.Printf("%s\n\n", e.usage)
	e.flags.SetOutput(os.Stdout)
	e.flags.PrintDefaults()
	fmt.Println()
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Format = strings.ToLower(opts.Format)
	if opts.Format == "c++" || opts.Format == "h" {
		opts.Format = cpp.Format
	}
	if opts.Format == "golang" {
		opts.Format = golang.Format
	}

	if opts.Output == "" {
		return errors.New("no output file given")
	}
	if opts.Output == StdioName && opts.Header == StdioName {
		return errors.New("image and declarations can not both be written to stdout")
	}

	for _, valid := range validFormats {
		if opts.Format == valid {
			return nil
		}
	}

	return fmt.Errorf("unsupported format: %s. Valid options: %s",
		opts.Format, strings.Join(validFormats, ", "))
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Output, "o", options.DefaultOutput, "name of the output ROM image file, - to write to stdout")
	flags.StringVar(&opts.Header, "header", options.DefaultHeader, "name of the output declaration file, - for stdout, empty to skip")
	flags.StringVar(&opts.Format, "f", options.DefaultFormat, "format of the declaration file (cpp/go)")
	flags.BoolVar(&opts.Verify, "verify", false, "verify the generated image by executing it and checking the computed primes")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}

func readSymbolFlags(flags *flag.FlagSet, opts *options.Symbols) {
	flags.StringVar(&opts.Output, "o", "", "name of the output header file, printed on console if no name given")
	flags.StringVar(&opts.Namespace, "n", symbols.DefaultNamespace, "C++ namespace name")
	flags.Func("ram-start", "RAM region start address (default 0xFF0000)", addressFlag(&opts.RAMStart))
	flags.Func("ram-end", "RAM region end address (default 0xFFFFFF)", addressFlag(&opts.RAMEnd))
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}

// addressFlag parses an address in decimal, hex with 0x prefix or octal notation.
func addressFlag(target *uint32) func(string) error {
	return func(s string) error {
		value, err := strconv.ParseUint(s, 0, 32)
		if err != nil {
			return fmt.Errorf("invalid address '%s': %w", s, err)
		}
		*target = uint32(value)
		return nil
	}
}
