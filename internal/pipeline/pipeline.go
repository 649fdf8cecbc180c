// Package pipeline orchestrates the ROM generation workflow stages.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/sieverom/internal/asm"
	"github.com/retroenv/sieverom/internal/cartridge"
	"github.com/retroenv/sieverom/internal/config"
	"github.com/retroenv/sieverom/internal/options"
	"github.com/retroenv/sieverom/internal/sieve"
	"github.com/retroenv/sieverom/internal/verification"
	"github.com/retroenv/sieverom/internal/writer"
	"github.com/retroenv/sieverom/internal/writer/cpp"
	"github.com/retroenv/sieverom/internal/writer/golang"
)

// DeclarationWriterConstructor creates a writer for a declaration file format.
type DeclarationWriterConstructor func(decl *writer.Declarations, mainWriter io.Writer) writer.DeclarationWriter

// Pipeline orchestrates the complete generation workflow.
type Pipeline struct {
	logger *log.Logger
}

// Result contains the outputs of all stages.
type Result struct {
	Program      *asm.Program
	Image        *cartridge.Image
	Declarations *writer.Declarations
	Verification *verification.Result // nil if verification was not requested
}

// New creates a new generation pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger: logger,
	}
}

// Execute assembles the program, builds the ROM image, optionally verifies it
// and writes the image and the declarations. A nil declaration writer skips
// the declarations.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, imageWriter, declWriter io.Writer) (*Result, error) {
	constructor, err := p.initializeWriter(opts.Format)
	if err != nil {
		return nil, fmt.Errorf("initializing declaration writer: %w", err)
	}

	res, err := p.Build()
	if err != nil {
		return nil, err
	}
	p.printInfo(opts, res.Image)

	if opts.Verify {
		if res.Verification, err = p.verify(ctx, res.Image); err != nil {
			return nil, fmt.Errorf("verification failed: %w", err)
		}
		p.logger.Info("Verification successful",
			log.Int("primes", int(res.Verification.Count)),
			log.Int("steps", res.Verification.Steps))
	}

	if _, err := imageWriter.Write(res.Image.Data); err != nil {
		return nil, fmt.Errorf("writing image: %w", err)
	}

	if declWriter != nil {
		if err := constructor(res.Declarations, declWriter).Write(); err != nil {
			return nil, fmt.Errorf("writing declarations: %w", err)
		}
	}
	return res, nil
}

// Build assembles the program and builds the ROM image without writing any
// output.
func (p *Pipeline) Build() (*Result, error) {
	prog, err := sieve.Assemble(p.logger)
	if err != nil {
		return nil, fmt.Errorf("assembling program: %w", err)
	}

	img, err := cartridge.Build(p.logger, prog, cartridge.DefaultHeader(), sieve.LabelHalt)
	if err != nil {
		return nil, fmt.Errorf("building image: %w", err)
	}

	return &Result{
		Program:      prog,
		Image:        img,
		Declarations: newDeclarations(img),
	}, nil
}

func newDeclarations(img *cartridge.Image) *writer.Declarations {
	return &writer.Declarations{
		Generator:   config.Generator,
		Image:       img.Data,
		Primes:      sieve.ExpectedPrimes(),
		ResultsAddr: sieve.ResultsBase,
		CountAddr:   sieve.CountAddr,
		DoneAddr:    sieve.DoneAddr,
		DoneValue:   sieve.DoneValue,
	}
}

// initializeWriter returns the writer constructor for the specified format.
func (p *Pipeline) initializeWriter(format string) (DeclarationWriterConstructor, error) {
	switch strings.ToLower(format) {
	case cpp.Format:
		return cpp.New, nil

	case golang.Format:
		return golang.New, nil

	default:
		return nil, fmt.Errorf("unsupported format '%s'", format)
	}
}

// verify executes the image and checks that a second build is identical.
func (p *Pipeline) verify(ctx context.Context, img *cartridge.Image) (*verification.Result, error) {
	res, err := verification.VerifyImage(ctx, p.logger, img.Data)
	if err != nil {
		return nil, fmt.Errorf("executing image: %w", err)
	}

	second, err := p.Build()
	if err != nil {
		return nil, fmt.Errorf("rebuilding image: %w", err)
	}
	if err := verification.CheckDeterminism(p.logger, img.Data, second.Image.Data); err != nil {
		return nil, err
	}
	return res, nil
}

// printInfo prints information about the generated image.
func (p *Pipeline) printInfo(opts options.Program, img *cartridge.Image) {
	if opts.Quiet {
		return
	}

	p.logger.Info("Generated ROM image",
		log.String("file", opts.Output),
		log.Int("size", img.Size()),
		log.Int("code_size", img.CodeSize),
		log.Hex("checksum", img.Checksum),
	)
}
