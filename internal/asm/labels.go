package asm

import "fmt"

// Labels maps label names to their byte offset in the code buffer.
// A label is bound exactly once, at the point the assembler reaches it.
type Labels struct {
	offsets map[string]int
}

// NewLabels returns an empty label table.
func NewLabels() *Labels {
	return &Labels{
		offsets: make(map[string]int),
	}
}

// Bind records the offset at which the label begins.
func (l *Labels) Bind(name string, offset int) error {
	if previous, ok := l.offsets[name]; ok {
		return fmt.Errorf("label '%s' at offset $%04X already bound at offset $%04X: %w",
			name, offset, previous, ErrLabelRedefined)
	}
	l.offsets[name] = offset
	return nil
}

// Resolve returns the offset of a bound label.
func (l *Labels) Resolve(name string) (int, error) {
	offset, ok := l.offsets[name]
	if !ok {
		return 0, fmt.Errorf("label '%s': %w", name, ErrUnresolvedLabel)
	}
	return offset, nil
}

// Len returns the number of bound labels.
func (l *Labels) Len() int {
	return len(l.offsets)
}

// Map returns a copy of the label table.
func (l *Labels) Map() map[string]int {
	m := make(map[string]int, len(l.offsets))
	for name, offset := range l.offsets {
		m[name] = offset
	}
	return m
}
