package cartridge

import (
	"encoding/binary"
	"fmt"
)

// Header field offsets relative to HeaderOffset.
const (
	headerSystemType   = 0x00
	headerCopyright    = 0x10
	headerDomesticName = 0x20
	headerOverseasName = 0x50
	headerSerialNumber = 0x80
	headerChecksum     = 0x8E
	headerIOSupport    = 0x90
	headerROMStart     = 0xA0
	headerROMEnd       = 0xA4
	headerRAMStart     = 0xA8
	headerRAMEnd       = 0xAC
	headerSRAM         = 0xB0
	headerNotes        = 0xBC
	headerRegion       = 0xF0
)

// Header contains the text and address fields of the ROM header. The checksum
// and the ROM end address are derived from the image.
type Header struct {
	SystemType   string
	Copyright    string
	DomesticName string
	OverseasName string
	SerialNumber string
	IOSupport    string
	ROMStart     uint32
	RAMStart     uint32
	RAMEnd       uint32
	SRAM         string
	Notes        string
	Region       string
}

// DefaultHeader returns the header of the prime sieve test ROM.
func DefaultHeader() Header {
	return Header{
		SystemType:   "SEGA MEGA DRIVE ",
		Copyright:    "(C)GXTEST 2026  ",
		DomesticName: "PRIME SIEVE TEST ROM",
		OverseasName: "PRIME SIEVE TEST ROM",
		SerialNumber: "GM 00000000-00",
		IOSupport:    "J",
		ROMStart:     0x00000000,
		RAMStart:     0x00FF0000,
		RAMEnd:       0x00FFFFFF,
		SRAM:         "",
		Notes:        "",
		Region:       "JUE",
	}
}

type textField struct {
	name   string
	offset int
	width  int
	value  string
}

func (h Header) textFields() []textField {
	return []textField{
		{"system type", headerSystemType, 16, h.SystemType},
		{"copyright", headerCopyright, 16, h.Copyright},
		{"domestic name", headerDomesticName, 48, h.DomesticName},
		{"overseas name", headerOverseasName, 48, h.OverseasName},
		{"serial number", headerSerialNumber, 14, h.SerialNumber},
		{"io support", headerIOSupport, 16, h.IOSupport},
		{"sram", headerSRAM, 12, h.SRAM},
		{"notes", headerNotes, 12, h.Notes},
		{"region", headerRegion, 3, h.Region},
	}
}

// marshal encodes the header with a zero checksum field. Bytes not covered by
// a field stay zero.
func (h Header) marshal(romEnd uint32) ([]byte, error) {
	buf := make([]byte, HeaderSize)

	for _, field := range h.textFields() {
		b, err := padField(field.value, field.width)
		if err != nil {
			return nil, fmt.Errorf("field '%s': %w", field.name, err)
		}
		copy(buf[field.offset:], b)
	}

	binary.BigEndian.PutUint32(buf[headerROMStart:], h.ROMStart)
	binary.BigEndian.PutUint32(buf[headerROMEnd:], romEnd)
	binary.BigEndian.PutUint32(buf[headerRAMStart:], h.RAMStart)
	binary.BigEndian.PutUint32(buf[headerRAMEnd:], h.RAMEnd)
	return buf, nil
}

// padField left justifies the ASCII text in a space padded field of the given
// width.
func padField(s string, width int) ([]byte, error) {
	if len(s) > width {
		return nil, fmt.Errorf("'%s' has %d bytes, field holds %d: %w", s, len(s), width, ErrFieldTooLong)
	}
	for i := range len(s) {
		if s[i] < 0x20 || s[i] > 0x7E {
			return nil, fmt.Errorf("'%s' contains non printable byte $%02X", s, s[i])
		}
	}

	b := make([]byte, width)
	copy(b, s)
	for i := len(s); i < width; i++ {
		b[i] = ' '
	}
	return b, nil
}
