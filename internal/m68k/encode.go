package m68k

import (
	"encoding/binary"

	"golang.org/x/exp/constraints"
)

// fitsSigned reports whether v is representable as a two's complement
// integer of the given bit width.
func fitsSigned[T constraints.Integer](v T, bits uint) bool {
	x := int64(v)
	limit := int64(1) << (bits - 1)
	return x >= -limit && x < limit
}

// fitsImmediate reports whether v fits a field of the given bit width in
// either its signed or unsigned interpretation, as the assembler syntax
// allows both #-1 and #$FFFF for a word immediate.
func fitsImmediate[T constraints.Integer](v T, bits uint) bool {
	x := int64(v)
	return x >= -(int64(1)<<(bits-1)) && x < int64(1)<<bits
}

func checkData(mnemonic string, r DataRegister) error {
	if r > D7 {
		return rangeError(mnemonic, "data register", int64(r), ErrOperandRange)
	}
	return nil
}

func checkAddress(mnemonic string, r AddressRegister) error {
	if r > A7 {
		return rangeError(mnemonic, "address register", int64(r), ErrOperandRange)
	}
	return nil
}

func checkAbsolute(mnemonic string, addr uint32) error {
	if addr > AddressMask {
		return rangeError(mnemonic, "address", int64(addr), ErrOperandRange)
	}
	return nil
}

func checkImmediate(mnemonic string, imm int, bits uint) error {
	if !fitsImmediate(imm, bits) {
		return rangeError(mnemonic, "immediate", int64(imm), ErrOperandRange)
	}
	return nil
}

func appendWord(b []byte, v uint16) []byte {
	return binary.BigEndian.AppendUint16(b, v)
}

func appendLong(b []byte, v uint32) []byte {
	return binary.BigEndian.AppendUint32(b, v)
}

// briefIndex returns the brief extension word for d8(An,Dx.w).
func briefIndex(dx DataRegister, disp int) uint16 {
	return uint16(dx)<<indexRegisterShift | uint16(uint8(int8(disp)))
}

// LeaAbsLong encodes lea (xxx).l,An.
func LeaAbsLong(addr uint32, an AddressRegister) ([]byte, error) {
	const mnemonic = "lea"
	if err := checkAddress(mnemonic, an); err != nil {
		return nil, err
	}
	if err := checkAbsolute(mnemonic, addr); err != nil {
		return nil, err
	}
	b := appendWord(make([]byte, 0, 6), OpLeaAbsLong|uint16(an)<<regHighShift)
	return appendLong(b, addr), nil
}

// MoveWordImmToData encodes move.w #imm,Dn.
func MoveWordImmToData(imm int, dn DataRegister) ([]byte, error) {
	const mnemonic = "move.w"
	if err := checkData(mnemonic, dn); err != nil {
		return nil, err
	}
	if err := checkImmediate(mnemonic, imm, 16); err != nil {
		return nil, err
	}
	b := appendWord(make([]byte, 0, 4), OpMoveWordImmData|uint16(dn)<<regHighShift)
	return appendWord(b, uint16(imm)), nil
}

// MoveWordData encodes move.w Dx,Dy.
func MoveWordData(dx, dy DataRegister) ([]byte, error) {
	const mnemonic = "move.w"
	if err := checkData(mnemonic, dx); err != nil {
		return nil, err
	}
	if err := checkData(mnemonic, dy); err != nil {
		return nil, err
	}
	return appendWord(nil, OpMoveWordData|uint16(dy)<<regHighShift|uint16(dx)), nil
}

// ClrBytePostInc encodes clr.b (An)+.
func ClrBytePostInc(an AddressRegister) ([]byte, error) {
	if err := checkAddress("clr.b", an); err != nil {
		return nil, err
	}
	return appendWord(nil, OpClrBytePostInc|uint16(an)), nil
}

// ClrWordData encodes clr.w Dn.
func ClrWordData(dn DataRegister) ([]byte, error) {
	if err := checkData("clr.w", dn); err != nil {
		return nil, err
	}
	return appendWord(nil, OpClrWordData|uint16(dn)), nil
}

// MoveByteImmToIndirect encodes move.b #imm,(An).
func MoveByteImmToIndirect(imm int, an AddressRegister) ([]byte, error) {
	const mnemonic = "move.b"
	if err := checkAddress(mnemonic, an); err != nil {
		return nil, err
	}
	if err := checkImmediate(mnemonic, imm, 8); err != nil {
		return nil, err
	}
	b := appendWord(make([]byte, 0, 4), OpMoveByteImmIndirect|uint16(an)<<regHighShift)
	return appendWord(b, uint16(uint8(imm))), nil
}

// MoveByteImmToDisp encodes move.b #imm,d16(An).
func MoveByteImmToDisp(imm, disp int, an AddressRegister) ([]byte, error) {
	const mnemonic = "move.b"
	if err := checkAddress(mnemonic, an); err != nil {
		return nil, err
	}
	if err := checkImmediate(mnemonic, imm, 8); err != nil {
		return nil, err
	}
	if !fitsSigned(disp, 16) {
		return nil, rangeError(mnemonic, "displacement", int64(disp), ErrOperandRange)
	}
	b := appendWord(make([]byte, 0, 6), OpMoveByteImmDisp|uint16(an)<<regHighShift)
	b = appendWord(b, uint16(uint8(imm)))
	return appendWord(b, uint16(int16(disp))), nil
}

// MoveByteImmToIndexed encodes move.b #imm,d8(An,Dx.w).
func MoveByteImmToIndexed(imm, disp int, an AddressRegister, dx DataRegister) ([]byte, error) {
	const mnemonic = "move.b"
	if err := checkAddress(mnemonic, an); err != nil {
		return nil, err
	}
	if err := checkData(mnemonic, dx); err != nil {
		return nil, err
	}
	if err := checkImmediate(mnemonic, imm, 8); err != nil {
		return nil, err
	}
	if !fitsSigned(disp, 8) {
		return nil, rangeError(mnemonic, "index displacement", int64(disp), ErrOperandRange)
	}
	b := appendWord(make([]byte, 0, 6), OpMoveByteImmIndexed|uint16(an)<<regHighShift)
	b = appendWord(b, uint16(uint8(imm)))
	return appendWord(b, briefIndex(dx, disp)), nil
}

// TstByteIndexed encodes tst.b d8(An,Dx.w).
func TstByteIndexed(disp int, an AddressRegister, dx DataRegister) ([]byte, error) {
	const mnemonic = "tst.b"
	if err := checkAddress(mnemonic, an); err != nil {
		return nil, err
	}
	if err := checkData(mnemonic, dx); err != nil {
		return nil, err
	}
	if !fitsSigned(disp, 8) {
		return nil, rangeError(mnemonic, "index displacement", int64(disp), ErrOperandRange)
	}
	b := appendWord(make([]byte, 0, 4), OpTstByteIndexed|uint16(an))
	return appendWord(b, briefIndex(dx, disp)), nil
}

// CmpWordImmData encodes cmp.w #imm,Dn.
func CmpWordImmData(imm int, dn DataRegister) ([]byte, error) {
	const mnemonic = "cmp.w"
	if err := checkData(mnemonic, dn); err != nil {
		return nil, err
	}
	if err := checkImmediate(mnemonic, imm, 16); err != nil {
		return nil, err
	}
	b := appendWord(make([]byte, 0, 4), OpCmpWordImmData|uint16(dn)<<regHighShift)
	return appendWord(b, uint16(imm)), nil
}

// AddqWordData encodes addq.w #q,Dn with q in the range 1 to 8.
func AddqWordData(q int, dn DataRegister) ([]byte, error) {
	const mnemonic = "addq.w"
	if err := checkData(mnemonic, dn); err != nil {
		return nil, err
	}
	if q < 1 || q > 8 {
		return nil, rangeError(mnemonic, "quick immediate", int64(q), ErrOperandRange)
	}
	// 8 is encoded as 0
	return appendWord(nil, OpAddqWordData|uint16(q&7)<<regHighShift|uint16(dn)), nil
}

// AddWordData encodes add.w Dx,Dy.
func AddWordData(dx, dy DataRegister) ([]byte, error) {
	const mnemonic = "add.w"
	if err := checkData(mnemonic, dx); err != nil {
		return nil, err
	}
	if err := checkData(mnemonic, dy); err != nil {
		return nil, err
	}
	return appendWord(nil, OpAddWordData|uint16(dy)<<regHighShift|uint16(dx)), nil
}

// MoveWordDataToPostInc encodes move.w Dn,(An)+.
func MoveWordDataToPostInc(dn DataRegister, an AddressRegister) ([]byte, error) {
	const mnemonic = "move.w"
	if err := checkData(mnemonic, dn); err != nil {
		return nil, err
	}
	if err := checkAddress(mnemonic, an); err != nil {
		return nil, err
	}
	return appendWord(nil, OpMoveWordDataPostInc|uint16(an)<<regHighShift|uint16(dn)), nil
}

// MoveWordDataToAbsLong encodes move.w Dn,(xxx).l.
func MoveWordDataToAbsLong(dn DataRegister, addr uint32) ([]byte, error) {
	const mnemonic = "move.w"
	if err := checkData(mnemonic, dn); err != nil {
		return nil, err
	}
	if err := checkAbsolute(mnemonic, addr); err != nil {
		return nil, err
	}
	b := appendWord(make([]byte, 0, 6), OpMoveWordDataAbsLong|uint16(dn))
	return appendLong(b, addr), nil
}

// MoveWordImmToAbsLong encodes move.w #imm,(xxx).l.
func MoveWordImmToAbsLong(imm int, addr uint32) ([]byte, error) {
	const mnemonic = "move.w"
	if err := checkImmediate(mnemonic, imm, 16); err != nil {
		return nil, err
	}
	if err := checkAbsolute(mnemonic, addr); err != nil {
		return nil, err
	}
	b := appendWord(make([]byte, 0, 8), OpMoveWordImmAbsLong)
	b = appendWord(b, uint16(imm))
	return appendLong(b, addr), nil
}

// Nop encodes nop.
func Nop() []byte {
	return appendWord(nil, OpNop)
}

// checkDisplacement validates a relative branch displacement for a field of
// the given bit width. Displacements are always even as instructions are word
// aligned.
func checkDisplacement(mnemonic string, disp int, bits uint) error {
	if !fitsSigned(disp, bits) || disp%2 != 0 {
		return rangeError(mnemonic, "displacement", int64(disp), ErrDisplacementRange)
	}
	return nil
}

// Branch8 encodes the short form Bcc.s with an 8-bit displacement measured
// from the end of the opcode word. A displacement of 0 selects the word form
// on the 68000 and can not be expressed by the short form.
func Branch8(cond Condition, disp int) ([]byte, error) {
	mnemonic := cond.BranchMnemonic() + ".s"
	if cond == CondFalse || cond > CondLessEqual {
		return nil, rangeError(mnemonic, "condition", int64(cond), ErrInvalidCondition)
	}
	if disp == 0 {
		return nil, rangeError(mnemonic, "displacement", 0, ErrDisplacementRange)
	}
	if err := checkDisplacement(mnemonic, disp, 8); err != nil {
		return nil, err
	}
	return appendWord(nil, OpBcc|uint16(cond)<<conditionShift|uint16(uint8(int8(disp)))), nil
}

// Branch16 encodes the word form Bcc.w with a 16-bit displacement measured
// from the end of the opcode word.
func Branch16(cond Condition, disp int) ([]byte, error) {
	mnemonic := cond.BranchMnemonic() + ".w"
	if cond == CondFalse || cond > CondLessEqual {
		return nil, rangeError(mnemonic, "condition", int64(cond), ErrInvalidCondition)
	}
	if err := checkDisplacement(mnemonic, disp, 16); err != nil {
		return nil, err
	}
	b := appendWord(make([]byte, 0, 4), OpBcc|uint16(cond)<<conditionShift)
	return appendWord(b, uint16(int16(disp))), nil
}

// BranchWord encodes bra.w.
func BranchWord(disp int) ([]byte, error) {
	return Branch16(CondTrue, disp)
}

// DBcc encodes DBcc Dn,d16. The displacement is measured from the end of the
// opcode word.
func DBcc(cond Condition, dn DataRegister, disp int) ([]byte, error) {
	mnemonic := "db" + cond.String()
	if cond > CondLessEqual {
		return nil, rangeError(mnemonic, "condition", int64(cond), ErrInvalidCondition)
	}
	if err := checkData(mnemonic, dn); err != nil {
		return nil, err
	}
	if err := checkDisplacement(mnemonic, disp, 16); err != nil {
		return nil, err
	}
	b := appendWord(make([]byte, 0, 4), OpDBcc|uint16(cond)<<conditionShift|uint16(dn))
	return appendWord(b, uint16(int16(disp))), nil
}

// Dbra encodes dbra Dn,d16, the assembler alias of dbf: decrement Dn and
// branch unless it wrapped to -1.
func Dbra(dn DataRegister, disp int) ([]byte, error) {
	return DBcc(CondFalse, dn, disp)
}
