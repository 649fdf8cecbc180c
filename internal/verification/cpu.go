package verification

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/retroenv/sieverom/internal/m68k"
)

var (
	// ErrUnsupportedOpcode is returned for instructions outside of the
	// interpreted subset.
	ErrUnsupportedOpcode = errors.New("unsupported opcode")
	// ErrStepLimit is returned when the program does not reach its halt
	// routine within the step budget.
	ErrStepLimit = errors.New("step limit reached")
	// ErrBusError is returned for accesses outside of ROM and work RAM or
	// writes to ROM.
	ErrBusError = errors.New("bus error")
	// ErrAddressError is returned for word accesses at odd addresses.
	ErrAddressError = errors.New("address error")
)

const (
	ramBase = 0xFF0000
	ramSize = 0x10000

	// contextCheckInterval is the number of steps between checks of the
	// context for cancellation.
	contextCheckInterval = 4096
)

// cpu interprets the subset of 68000 instructions that the m68k package
// encodes. The X flag and supervisor state are not modeled.
type cpu struct {
	d  [8]uint32
	a  [8]uint32
	pc uint32

	n, z, v, c bool

	rom []byte
	ram []byte

	steps int
}

func newCPU(rom []byte, ramFill byte) *cpu {
	ram := make([]byte, ramSize)
	for i := range ram {
		ram[i] = ramFill
	}
	return &cpu{rom: rom, ram: ram}
}

// reset loads the stack pointer and the program counter from the vector table.
func (c *cpu) reset() error {
	ssp, err := c.read32(0)
	if err != nil {
		return fmt.Errorf("reading reset stack pointer: %w", err)
	}
	pc, err := c.read32(4)
	if err != nil {
		return fmt.Errorf("reading reset program counter: %w", err)
	}
	c.a[7] = ssp
	c.pc = pc & m68k.AddressMask
	return nil
}

// run executes instructions until the program counter reaches the halt
// address or the step limit is reached.
func (c *cpu) run(ctx context.Context, halt uint32, limit int) error {
	for c.pc != halt {
		if c.steps >= limit {
			return fmt.Errorf("%d steps executed, PC $%06X: %w", c.steps, c.pc, ErrStepLimit)
		}
		if c.steps%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("executing program: %w", err)
			}
		}

		pc := c.pc
		if err := c.step(); err != nil {
			return fmt.Errorf("executing instruction at $%06X: %w", pc, err)
		}
		c.steps++
	}
	return nil
}

func (c *cpu) region(addr uint32, size int, write bool) ([]byte, error) {
	addr &= m68k.AddressMask
	if size > 1 && addr&1 != 0 {
		return nil, fmt.Errorf("access at $%06X: %w", addr, ErrAddressError)
	}

	switch {
	case addr >= ramBase && int(addr-ramBase)+size <= ramSize:
		offset := addr - ramBase
		return c.ram[offset : int(offset)+size], nil
	case !write && int(addr)+size <= len(c.rom):
		return c.rom[addr : int(addr)+size], nil
	default:
		return nil, fmt.Errorf("access at $%06X: %w", addr, ErrBusError)
	}
}

func (c *cpu) read8(addr uint32) (uint8, error) {
	b, err := c.region(addr, 1, false)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cpu) read16(addr uint32) (uint16, error) {
	b, err := c.region(addr, 2, false)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (c *cpu) read32(addr uint32) (uint32, error) {
	b, err := c.region(addr, 4, false)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (c *cpu) write8(addr uint32, value uint8) error {
	b, err := c.region(addr, 1, true)
	if err != nil {
		return err
	}
	b[0] = value
	return nil
}

func (c *cpu) write16(addr uint32, value uint16) error {
	b, err := c.region(addr, 2, true)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint16(b, value)
	return nil
}

func (c *cpu) fetch16() (uint16, error) {
	w, err := c.read16(c.pc)
	if err != nil {
		return 0, err
	}
	c.pc += 2
	return w, nil
}

func (c *cpu) fetch32() (uint32, error) {
	hi, err := c.fetch16()
	if err != nil {
		return 0, err
	}
	lo, err := c.fetch16()
	if err != nil {
		return 0, err
	}
	return uint32(hi)<<16 | uint32(lo), nil
}

func (c *cpu) dataWord(reg int) uint16 {
	return uint16(c.d[reg])
}

func (c *cpu) setDataWord(reg int, value uint16) {
	c.d[reg] = c.d[reg]&0xFFFF0000 | uint32(value)
}

func (c *cpu) setLogic8(value uint8) {
	c.n = value&0x80 != 0
	c.z = value == 0
	c.v = false
	c.c = false
}

func (c *cpu) setLogic16(value uint16) {
	c.n = value&0x8000 != 0
	c.z = value == 0
	c.v = false
	c.c = false
}

func (c *cpu) add16(dst, src uint16) uint16 {
	res := dst + src
	c.n = res&0x8000 != 0
	c.z = res == 0
	c.v = ^(dst^src)&(dst^res)&0x8000 != 0
	c.c = uint32(dst)+uint32(src) > 0xFFFF
	return res
}

func (c *cpu) sub16(dst, src uint16) uint16 {
	res := dst - src
	c.n = res&0x8000 != 0
	c.z = res == 0
	c.v = (dst^src)&(dst^res)&0x8000 != 0
	c.c = src > dst
	return res
}

// test evaluates a condition code against the current flags.
func (c *cpu) test(cond m68k.Condition) bool {
	switch cond {
	case m68k.CondTrue:
		return true
	case m68k.CondFalse:
		return false
	case m68k.CondHigh:
		return !c.c && !c.z
	case m68k.CondLowOrSame:
		return c.c || c.z
	case m68k.CondCarryClear:
		return !c.c
	case m68k.CondCarrySet:
		return c.c
	case m68k.CondNotEqual:
		return !c.z
	case m68k.CondEqual:
		return c.z
	case m68k.CondOverflowClear:
		return !c.v
	case m68k.CondOverflowSet:
		return c.v
	case m68k.CondPlus:
		return !c.n
	case m68k.CondMinus:
		return c.n
	case m68k.CondGreaterEqual:
		return c.n == c.v
	case m68k.CondLessThan:
		return c.n != c.v
	case m68k.CondGreaterThan:
		return !c.z && c.n == c.v
	default:
		return c.z || c.n != c.v
	}
}

// indexed computes the effective address of the d8(An,Xn) mode from the
// brief extension word at the program counter.
func (c *cpu) indexed(an int) (uint32, error) {
	ext, err := c.fetch16()
	if err != nil {
		return 0, err
	}
	reg, isAddress, isLong, disp := m68k.DecodeIndexWord(ext)

	index := c.d[reg]
	if isAddress {
		index = c.a[reg]
	}
	if !isLong {
		index = uint32(int32(int16(index)))
	}
	return c.a[an] + uint32(int32(disp)) + index, nil
}
