// Package asm implements a single pass 68000 code emitter with label support.
//
// Instructions are appended to a code buffer as they are emitted. Branches to
// labels that are already bound are encoded directly, branches to labels that
// are not yet bound get a zero placeholder displacement and are patched in
// place as soon as the label is bound. No second pass over the program is
// needed.
package asm

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/sieverom/internal/m68k"
)

var (
	// ErrUnresolvedLabel is returned for references to labels that are never bound.
	ErrUnresolvedLabel = errors.New("unresolved label")
	// ErrLabelRedefined is returned when a label name is bound twice.
	ErrLabelRedefined = errors.New("label redefined")
	// ErrFinished is returned when emitting into an assembler that already
	// produced its program.
	ErrFinished = errors.New("assembler already finished")
)

// placeholderDisplacement is a displacement that every branch form can encode.
// It is used to validate the non-displacement operands of a forward branch at
// emit time, the displacement field itself is then cleared to 0.
const placeholderDisplacement = 2

// Assembler emits machine code into a growable buffer. The first error that
// occurs is kept and all following emits are ignored, Finish returns it.
type Assembler struct {
	logger *log.Logger

	code     []byte
	labels   *Labels
	pending  map[string][]PatchSite
	branches []BranchRecord

	err      error
	finished bool
}

// New returns a new assembler with an empty code buffer.
func New(logger *log.Logger) *Assembler {
	return &Assembler{
		logger:  logger,
		labels:  NewLabels(),
		pending: make(map[string][]PatchSite),
	}
}

// Labels returns the label table.
func (a *Assembler) Labels() *Labels {
	return a.labels
}

func (a *Assembler) ok() bool {
	if a.finished && a.err == nil {
		a.err = ErrFinished
	}
	return a.err == nil
}

func (a *Assembler) fail(err error) {
	if a.err == nil {
		a.err = err
	}
}

// Emit appends an encoded instruction. It takes the result of an m68k
// encoder directly, an encoding error stops the assembly.
func (a *Assembler) Emit(b []byte, err error) {
	if !a.ok() {
		return
	}
	if err != nil {
		a.fail(fmt.Errorf("emitting instruction at offset $%04X: %w", len(a.code), err))
		return
	}
	a.code = append(a.code, b...)
}

// Label binds the name to the current offset and patches all pending
// branches that target it.
func (a *Assembler) Label(name string) {
	if !a.ok() {
		return
	}

	offset := len(a.code)
	if err := a.labels.Bind(name, offset); err != nil {
		a.fail(err)
		return
	}
	a.logger.Debug("Label bound", log.String("label", name), log.Hex("offset", offset))

	sites := a.pending[name]
	delete(a.pending, name)
	for _, site := range sites {
		disp, err := site.patch(a.code, offset)
		if err != nil {
			a.fail(err)
			return
		}
		a.record(site, offset, disp)
		a.logger.Debug("Branch patched",
			log.String("label", name),
			log.Hex("anchor", site.Anchor),
			log.Int("displacement", disp))
	}
}

// Branch emits a short Bcc.s branch to the label.
func (a *Assembler) Branch(cond m68k.Condition, label string) {
	a.branch(label, 1, func(disp int) ([]byte, error) {
		return m68k.Branch8(cond, disp)
	})
}

// BranchWord emits a Bcc.w branch with a 16-bit displacement to the label.
func (a *Assembler) BranchWord(cond m68k.Condition, label string) {
	a.branch(label, 2, func(disp int) ([]byte, error) {
		return m68k.Branch16(cond, disp)
	})
}

// Dbra emits a dbra loop instruction that branches to the label.
func (a *Assembler) Dbra(dn m68k.DataRegister, label string) {
	a.branch(label, 2, func(disp int) ([]byte, error) {
		return m68k.Dbra(dn, disp)
	})
}

// branch emits a relative branch. All supported branch forms start with the
// opcode word followed by the displacement field, except the short form which
// stores its displacement in the low byte of the opcode word.
func (a *Assembler) branch(label string, width int, encode encodeFunc) {
	if !a.ok() {
		return
	}

	site := PatchSite{
		Anchor: len(a.code),
		Offset: len(a.code) + 2,
		Width:  width,
		Label:  label,
		encode: encode,
	}
	if width == 1 {
		site.Offset = site.Anchor + 1
	}

	if target, err := a.labels.Resolve(label); err == nil {
		disp := site.Displacement(target)
		b, err := encode(disp)
		if err != nil {
			a.fail(fmt.Errorf("branch at offset $%04X to label '%s' at offset $%04X: %w",
				site.Anchor, label, target, err))
			return
		}
		a.code = append(a.code, b...)
		a.record(site, target, disp)
		return
	}

	b, err := encode(placeholderDisplacement)
	if err != nil {
		a.fail(fmt.Errorf("branch at offset $%04X to label '%s': %w", site.Anchor, label, err))
		return
	}
	a.code = append(a.code, b...)
	clear(a.code[site.Offset : site.Offset+width])
	a.pending[label] = append(a.pending[label], site)
}

func (a *Assembler) record(site PatchSite, target, disp int) {
	a.branches = append(a.branches, BranchRecord{
		Anchor:       site.Anchor,
		Offset:       site.Offset,
		Width:        site.Width,
		Label:        site.Label,
		Target:       target,
		Displacement: disp,
	})
}

// Pending returns the names of all labels that are referenced but not bound.
func (a *Assembler) Pending() []string {
	names := make([]string, 0, len(a.pending))
	for name := range a.pending {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Finish completes the assembly and returns the program. It fails if any
// error occurred or any branch target is still unresolved, no partial
// program is returned in that case.
func (a *Assembler) Finish() (*Program, error) {
	if a.err != nil {
		return nil, a.err
	}
	if a.finished {
		return nil, ErrFinished
	}

	if pending := a.Pending(); len(pending) > 0 {
		site := a.pending[pending[0]][0]
		a.err = fmt.Errorf("branch at offset $%04X references label(s) %s: %w",
			site.Anchor, strings.Join(pending, ", "), ErrUnresolvedLabel)
		return nil, a.err
	}

	a.finished = true
	branches := slices.Clone(a.branches)
	slices.SortFunc(branches, func(x, y BranchRecord) int {
		return x.Anchor - y.Anchor
	})

	return &Program{
		Code:     slices.Clone(a.code),
		Labels:   a.labels.Map(),
		Branches: branches,
	}, nil
}
