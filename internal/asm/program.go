package asm

import "fmt"

// Program is the finished, read-only result of an assembly.
type Program struct {
	Code     []byte         // machine code, offset 0 is the first instruction
	Labels   map[string]int // label offsets within Code
	Branches []BranchRecord // all relative branches sorted by anchor
}

// Size returns the code size in bytes.
func (p *Program) Size() int {
	return len(p.Code)
}

// LabelOffset returns the offset of a label within the code.
func (p *Program) LabelOffset(name string) (int, error) {
	offset, ok := p.Labels[name]
	if !ok {
		return 0, fmt.Errorf("label '%s': %w", name, ErrUnresolvedLabel)
	}
	return offset, nil
}
