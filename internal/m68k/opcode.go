package m68k

// Opcode base words. Register and mode fields are or'ed in by the encoders,
// the masks are used by decoders to match an instruction family.
const (
	OpLeaAbsLong          = 0x41F9 // lea (xxx).l,An       | An<<9
	OpMoveWordImmData     = 0x303C // move.w #imm,Dn       | Dn<<9
	OpMoveWordData        = 0x3000 // move.w Dx,Dy         | Dy<<9 | Dx
	OpMoveWordDataPostInc = 0x30C0 // move.w Dn,(An)+      | An<<9 | Dn
	OpMoveWordDataAbsLong = 0x33C0 // move.w Dn,(xxx).l    | Dn
	OpMoveWordImmAbsLong  = 0x33FC // move.w #imm,(xxx).l
	OpMoveByteImmIndirect = 0x10BC // move.b #imm,(An)     | An<<9
	OpMoveByteImmDisp     = 0x117C // move.b #imm,d16(An)  | An<<9
	OpMoveByteImmIndexed  = 0x11BC // move.b #imm,d8(An,Xn) | An<<9
	OpClrBytePostInc      = 0x4218 // clr.b (An)+          | An
	OpClrWordData         = 0x4240 // clr.w Dn             | Dn
	OpTstByteIndexed      = 0x4A30 // tst.b d8(An,Xn)      | An
	OpCmpWordImmData      = 0xB07C // cmp.w #imm,Dn        | Dn<<9
	OpAddqWordData        = 0x5040 // addq.w #q,Dn         | q<<9 | Dn
	OpAddWordData         = 0xD040 // add.w Dx,Dy          | Dy<<9 | Dx
	OpDBcc                = 0x50C8 // DBcc Dn,d16          | cc<<8 | Dn
	OpBcc                 = 0x6000 // Bcc                  | cc<<8 | d8
	OpNop                 = 0x4E71
)

// Masks that clear the register fields of the opcode families above.
const (
	MaskRegHigh    = 0xF1FF // clears bits 11-9
	MaskRegLow     = 0xFFF8 // clears bits 2-0
	MaskRegBoth    = 0xF1F8 // clears bits 11-9 and 2-0
	MaskDBcc       = 0xF0F8
	MaskBcc        = 0xF000
	MaskCondition  = 0x0F00
	MaskShortDisp  = 0x00FF
	conditionShift = 8
	regHighShift   = 9
)

// Index extension word fields of the brief format d8(An,Xn.w).
const (
	indexRegisterShift = 12
	indexAddressReg    = 0x8000 // Xn is an address register
	indexLongSize      = 0x0800 // Xn.l instead of Xn.w
)

// DecodeIndexWord splits a brief extension word into its index register,
// whether the index register is an address register, whether the long index
// size is used and the signed 8-bit displacement.
func DecodeIndexWord(ext uint16) (reg uint8, isAddress, isLong bool, disp int8) {
	reg = uint8(ext>>indexRegisterShift) & 7
	isAddress = ext&indexAddressReg != 0
	isLong = ext&indexLongSize != 0
	disp = int8(ext & 0xFF)
	return reg, isAddress, isLong, disp
}
