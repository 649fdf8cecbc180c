package verification

import (
	"fmt"

	"github.com/retroenv/sieverom/internal/m68k"
)

// step fetches and executes a single instruction.
//
//nolint:funlen,cyclop // one case per supported instruction family
func (c *cpu) step() error {
	opAddr := c.pc
	op, err := c.fetch16()
	if err != nil {
		return err
	}
	high := int(op>>9) & 7
	low := int(op) & 7

	switch {
	case op == m68k.OpNop:
		return nil

	case op&m68k.MaskRegHigh == m68k.OpLeaAbsLong:
		addr, err := c.fetch32()
		if err != nil {
			return err
		}
		c.a[high] = addr
		return nil

	case op&m68k.MaskRegHigh == m68k.OpMoveWordImmData:
		imm, err := c.fetch16()
		if err != nil {
			return err
		}
		c.setDataWord(high, imm)
		c.setLogic16(imm)
		return nil

	case op&m68k.MaskRegBoth == m68k.OpMoveWordData:
		value := c.dataWord(low)
		c.setDataWord(high, value)
		c.setLogic16(value)
		return nil

	case op&m68k.MaskRegBoth == m68k.OpMoveWordDataPostInc:
		value := c.dataWord(low)
		if err := c.write16(c.a[high], value); err != nil {
			return err
		}
		c.a[high] += 2
		c.setLogic16(value)
		return nil

	case op == m68k.OpMoveWordImmAbsLong:
		imm, err := c.fetch16()
		if err != nil {
			return err
		}
		addr, err := c.fetch32()
		if err != nil {
			return err
		}
		if err := c.write16(addr, imm); err != nil {
			return err
		}
		c.setLogic16(imm)
		return nil

	case op&m68k.MaskRegLow == m68k.OpMoveWordDataAbsLong:
		addr, err := c.fetch32()
		if err != nil {
			return err
		}
		value := c.dataWord(low)
		if err := c.write16(addr, value); err != nil {
			return err
		}
		c.setLogic16(value)
		return nil

	case op&m68k.MaskRegHigh == m68k.OpMoveByteImmIndirect:
		imm, err := c.fetch16()
		if err != nil {
			return err
		}
		return c.storeByte(c.a[high], uint8(imm))

	case op&m68k.MaskRegHigh == m68k.OpMoveByteImmDisp:
		imm, err := c.fetch16()
		if err != nil {
			return err
		}
		disp, err := c.fetch16()
		if err != nil {
			return err
		}
		return c.storeByte(c.a[high]+uint32(int32(int16(disp))), uint8(imm))

	case op&m68k.MaskRegHigh == m68k.OpMoveByteImmIndexed:
		imm, err := c.fetch16()
		if err != nil {
			return err
		}
		addr, err := c.indexed(high)
		if err != nil {
			return err
		}
		return c.storeByte(addr, uint8(imm))

	case op&m68k.MaskRegLow == m68k.OpClrBytePostInc:
		if err := c.write8(c.a[low], 0); err != nil {
			return err
		}
		c.a[low]++
		if low == int(m68k.SP) {
			c.a[low]++ // the stack pointer stays word aligned
		}
		c.setLogic8(0)
		return nil

	case op&m68k.MaskRegLow == m68k.OpClrWordData:
		c.setDataWord(low, 0)
		c.setLogic16(0)
		return nil

	case op&m68k.MaskRegLow == m68k.OpTstByteIndexed:
		addr, err := c.indexed(low)
		if err != nil {
			return err
		}
		value, err := c.read8(addr)
		if err != nil {
			return err
		}
		c.setLogic8(value)
		return nil

	case op&m68k.MaskRegHigh == m68k.OpCmpWordImmData:
		imm, err := c.fetch16()
		if err != nil {
			return err
		}
		c.sub16(c.dataWord(high), imm)
		return nil

	case op&m68k.MaskRegBoth == m68k.OpAddqWordData:
		q := uint16(high)
		if q == 0 {
			q = 8
		}
		c.setDataWord(low, c.add16(c.dataWord(low), q))
		return nil

	case op&m68k.MaskRegBoth == m68k.OpAddWordData:
		c.setDataWord(high, c.add16(c.dataWord(high), c.dataWord(low)))
		return nil

	case op&m68k.MaskDBcc == m68k.OpDBcc:
		return c.dbcc(opAddr, op, low)

	case op&m68k.MaskBcc == m68k.OpBcc:
		return c.bcc(opAddr, op)

	default:
		return fmt.Errorf("opcode $%04X: %w", op, ErrUnsupportedOpcode)
	}
}

func (c *cpu) storeByte(addr uint32, value uint8) error {
	if err := c.write8(addr, value); err != nil {
		return err
	}
	c.setLogic8(value)
	return nil
}

// dbcc does nothing if the condition is true, otherwise it decrements the
// low word of the counter and branches unless the counter is now -1.
func (c *cpu) dbcc(opAddr uint32, op uint16, reg int) error {
	disp, err := c.fetch16()
	if err != nil {
		return err
	}

	cond := m68k.Condition((op & m68k.MaskCondition) >> 8)
	if c.test(cond) {
		return nil
	}

	counter := c.dataWord(reg) - 1
	c.setDataWord(reg, counter)
	if counter != 0xFFFF {
		c.pc = opAddr + 2 + uint32(int32(int16(disp)))
	}
	return nil
}

// bcc handles Bcc with 8 and 16-bit displacements. BSR and the 32-bit
// displacement form of later CPUs are not supported.
func (c *cpu) bcc(opAddr uint32, op uint16) error {
	cond := m68k.Condition((op & m68k.MaskCondition) >> 8)
	if cond == m68k.CondFalse {
		return fmt.Errorf("bsr $%04X: %w", op, ErrUnsupportedOpcode)
	}

	var disp int32
	switch short := op & m68k.MaskShortDisp; short {
	case 0x00:
		word, err := c.fetch16()
		if err != nil {
			return err
		}
		disp = int32(int16(word))
	case 0xFF:
		return fmt.Errorf("long branch $%04X: %w", op, ErrUnsupportedOpcode)
	default:
		disp = int32(int8(short))
	}

	if c.test(cond) {
		c.pc = opAddr + 2 + uint32(disp)
	}
	return nil
}
