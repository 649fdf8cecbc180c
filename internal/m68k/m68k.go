// Package m68k encodes the Motorola 68000 instructions used by the generated
// cartridge programs.
//
// Every encoder is a pure function of its operands and returns the complete
// big-endian instruction bytes including all extension words. Operand values
// that do not fit their target field are reported as errors instead of being
// truncated.
package m68k

import "fmt"

// DataRegister is one of the data registers D0-D7.
type DataRegister uint8

// AddressRegister is one of the address registers A0-A7.
type AddressRegister uint8

// Data registers.
const (
	D0 DataRegister = iota
	D1
	D2
	D3
	D4
	D5
	D6
	D7
)

// Address registers. A7 is the active stack pointer.
const (
	A0 AddressRegister = iota
	A1
	A2
	A3
	A4
	A5
	A6
	A7
)

// SP is the stack pointer alias of A7.
const SP = A7

func (r DataRegister) String() string {
	return fmt.Sprintf("d%d", uint8(r))
}

func (r AddressRegister) String() string {
	if r == SP {
		return "sp"
	}
	return fmt.Sprintf("a%d", uint8(r))
}

// Condition is a 68000 condition code as used by Bcc, DBcc and Scc.
type Condition uint8

// Condition codes in encoding order.
const (
	CondTrue Condition = iota
	CondFalse
	CondHigh
	CondLowOrSame
	CondCarryClear
	CondCarrySet
	CondNotEqual
	CondEqual
	CondOverflowClear
	CondOverflowSet
	CondPlus
	CondMinus
	CondGreaterEqual
	CondLessThan
	CondGreaterThan
	CondLessEqual
)

var conditionNames = [...]string{
	"t", "f", "hi", "ls", "cc", "cs", "ne", "eq",
	"vc", "vs", "pl", "mi", "ge", "lt", "gt", "le",
}

func (c Condition) String() string {
	if int(c) < len(conditionNames) {
		return conditionNames[c]
	}
	return fmt.Sprintf("cc(%d)", uint8(c))
}

// BranchMnemonic returns the Bcc mnemonic for the condition.
func (c Condition) BranchMnemonic() string {
	switch c {
	case CondTrue:
		return "bra"
	case CondFalse:
		return "bsr"
	default:
		return "b" + c.String()
	}
}

// AddressMask covers the 24 address lines of the 68000.
const AddressMask = 0x00FFFFFF
