package asm

import (
	"fmt"
)

// encodeFunc encodes a relative branch instruction for a given displacement.
type encodeFunc func(disp int) ([]byte, error)

// PatchSite is a branch whose target label was not bound when the branch was
// emitted. The displacement field at Offset is written once the label is bound.
type PatchSite struct {
	Offset int    // offset of the displacement field in the code buffer
	Anchor int    // offset of the branch opcode word
	Width  int    // size of the displacement field in bytes
	Label  string // target label

	encode encodeFunc
}

// Displacement returns the relative displacement from the site's anchor to
// the target offset. The 68000 measures it from the end of the opcode word.
func (p PatchSite) Displacement(target int) int {
	return target - (p.Anchor + 2)
}

// patch encodes the branch for the target offset and overwrites the
// instruction in place.
func (p PatchSite) patch(code []byte, target int) (int, error) {
	disp := p.Displacement(target)
	b, err := p.encode(disp)
	if err != nil {
		return disp, fmt.Errorf("patching branch at offset $%04X to label '%s' at offset $%04X: %w",
			p.Anchor, p.Label, target, err)
	}
	if p.Anchor+len(b) > len(code) {
		return disp, fmt.Errorf("patching branch at offset $%04X: instruction exceeds code buffer", p.Anchor)
	}
	copy(code[p.Anchor:], b)
	return disp, nil
}

// BranchRecord documents a relative branch of the finished program.
type BranchRecord struct {
	Anchor       int    // offset of the branch opcode word
	Offset       int    // offset of the displacement field
	Width        int    // size of the displacement field in bytes
	Label        string // target label
	Target       int    // offset of the target label
	Displacement int    // encoded displacement
}
