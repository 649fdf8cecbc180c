// Package cartridge builds Mega Drive ROM images.
package cartridge

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/sieverom/internal/asm"
)

// ROM layout.
const (
	VectorCount     = 64
	VectorTableSize = VectorCount * 4
	HeaderOffset    = 0x100
	HeaderSize      = 0x100
	CodeStart       = 0x200
	ChecksumOffset  = HeaderOffset + headerChecksum
	ROMEndOffset    = HeaderOffset + headerROMEnd

	// SizeAlignment is the granularity of the image size.
	SizeAlignment = 512
	// MaxSize is the size of the cartridge ROM window.
	MaxSize = 0x400000
)

// Reset vectors.
const (
	InitialSSP = 0x00FFFFFE
	InitialPC  = CodeStart
)

var (
	// ErrFieldTooLong is returned for header text that does not fit its field.
	ErrFieldTooLong = errors.New("header field too long")
	// ErrCodeTooLarge is returned when the code does not fit into the ROM window.
	ErrCodeTooLarge = errors.New("code too large")
	// ErrChecksumMismatch is returned when the stored checksum is not the
	// computed one.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrInvalidSize is returned for an image size that is not a positive
	// multiple of SizeAlignment.
	ErrInvalidSize = errors.New("invalid image size")
)

// Image is a finished ROM image.
type Image struct {
	Data     []byte
	Header   Header
	CodeSize int
	Checksum uint16

	HaltAddress uint32 // target of all exception vectors except reset
	ROMEnd      uint32 // last byte of the code as stored in the header
}

// Size returns the image size in bytes.
func (img *Image) Size() int {
	return len(img.Data)
}

// Build places the program behind the vector table and the header, pads the
// image and writes the checksum. All exception vectors except the reset
// vectors point at the given halt label of the program.
func Build(logger *log.Logger, prog *asm.Program, hdr Header, haltLabel string) (*Image, error) {
	if prog.Size() == 0 {
		return nil, fmt.Errorf("empty program: %w", ErrCodeTooLarge)
	}
	if CodeStart+prog.Size() > MaxSize {
		return nil, fmt.Errorf("code size %d exceeds ROM window of %d bytes: %w",
			prog.Size(), MaxSize-CodeStart, ErrCodeTooLarge)
	}

	halt, err := prog.LabelOffset(haltLabel)
	if err != nil {
		return nil, fmt.Errorf("resolving halt routine: %w", err)
	}

	img := &Image{
		Header:      hdr,
		CodeSize:    prog.Size(),
		HaltAddress: uint32(CodeStart + halt),
		ROMEnd:      uint32(CodeStart + prog.Size() - 1),
	}

	data := make([]byte, paddedSize(CodeStart+prog.Size()))
	writeVectors(data, img.HaltAddress)

	header, err := hdr.marshal(img.ROMEnd)
	if err != nil {
		return nil, fmt.Errorf("encoding header: %w", err)
	}
	copy(data[HeaderOffset:], header)
	copy(data[CodeStart:], prog.Code)

	img.Checksum = Checksum(data)
	binary.BigEndian.PutUint16(data[ChecksumOffset:], img.Checksum)
	img.Data = data

	logger.Debug("ROM image built",
		log.Int("size", len(data)),
		log.Int("code_size", prog.Size()),
		log.Hex("halt_address", img.HaltAddress),
		log.Hex("checksum", img.Checksum))
	return img, nil
}

// writeVectors fills all vectors with the halt address first and then sets
// the reset vectors.
func writeVectors(data []byte, halt uint32) {
	for i := range VectorCount {
		binary.BigEndian.PutUint32(data[i*4:], halt)
	}
	binary.BigEndian.PutUint32(data[0:], InitialSSP)
	binary.BigEndian.PutUint32(data[4:], InitialPC)
}

// paddedSize returns the size rounded up to a positive multiple of
// SizeAlignment.
func paddedSize(size int) int {
	if size <= 0 {
		return SizeAlignment
	}
	return (size + SizeAlignment - 1) / SizeAlignment * SizeAlignment
}

// Vector returns the vector table entry at the given index.
func Vector(data []byte, index int) (uint32, error) {
	if index < 0 || index >= VectorCount || len(data) < VectorTableSize {
		return 0, fmt.Errorf("vector %d out of range", index)
	}
	return binary.BigEndian.Uint32(data[index*4:]), nil
}
