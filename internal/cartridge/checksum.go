package cartridge

import (
	"encoding/binary"
	"fmt"
)

// Checksum returns the low 16 bits of the sum of all big endian words from
// CodeStart to the end of the image. A trailing odd byte is ignored.
func Checksum(data []byte) uint16 {
	var sum uint16
	for i := CodeStart; i+1 < len(data); i += 2 {
		sum += binary.BigEndian.Uint16(data[i:])
	}
	return sum
}

// VerifyChecksum checks the size of the image and that the stored checksum
// matches the computed one.
func VerifyChecksum(data []byte) error {
	if len(data) == 0 || len(data)%SizeAlignment != 0 {
		return fmt.Errorf("size %d is not a positive multiple of %d: %w", len(data), SizeAlignment, ErrInvalidSize)
	}

	stored := binary.BigEndian.Uint16(data[ChecksumOffset:])
	computed := Checksum(data)
	if stored != computed {
		return fmt.Errorf("stored $%04X, computed $%04X: %w", stored, computed, ErrChecksumMismatch)
	}
	return nil
}
