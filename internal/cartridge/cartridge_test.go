package cartridge

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/sieverom/internal/asm"
	"github.com/retroenv/sieverom/internal/sieve"
)

const expectedImageHash = "8342c394db8d1d379728ede0a3f31e5294b8be657c488e05a40c94515c68b826"

func buildSieveImage(t *testing.T) *Image {
	t.Helper()
	logger := log.NewTestLogger(t)
	prog, err := sieve.Assemble(logger)
	assert.NoError(t, err)
	img, err := Build(logger, prog, DefaultHeader(), sieve.LabelHalt)
	assert.NoError(t, err)
	return img
}

func TestBuildSieveImage(t *testing.T) {
	img := buildSieveImage(t)

	assert.Equal(t, 1024, img.Size())
	assert.Equal(t, 144, img.CodeSize)
	assert.Equal(t, uint16(0x00EE), img.Checksum)
	assert.Equal(t, uint32(0x28E), img.HaltAddress)
	assert.Equal(t, uint32(0x28F), img.ROMEnd)

	hash := sha256.Sum256(img.Data)
	assert.Equal(t, expectedImageHash, hex.EncodeToString(hash[:]))
	assert.NoError(t, VerifyChecksum(img.Data))
}

func TestBuildVectors(t *testing.T) {
	img := buildSieveImage(t)

	ssp, err := Vector(img.Data, 0)
	assert.NoError(t, err)
	assert.Equal(t, uint32(InitialSSP), ssp)

	pc, err := Vector(img.Data, 1)
	assert.NoError(t, err)
	assert.Equal(t, uint32(CodeStart), pc)

	for i := 2; i < VectorCount; i++ {
		v, err := Vector(img.Data, i)
		assert.NoError(t, err)
		assert.Equal(t, img.HaltAddress, v)
	}

	_, err = Vector(img.Data, VectorCount)
	assert.Error(t, err)
}

func TestBuildHeader(t *testing.T) {
	img := buildSieveImage(t)
	header := img.Data[HeaderOffset : HeaderOffset+HeaderSize]

	assert.Equal(t, "SEGA MEGA DRIVE ", string(header[0x00:0x10]))
	assert.Equal(t, "(C)GXTEST 2026  ", string(header[0x10:0x20]))
	assert.Equal(t, "PRIME SIEVE TEST ROM                            ", string(header[0x20:0x50]))
	assert.Equal(t, "PRIME SIEVE TEST ROM                            ", string(header[0x50:0x80]))
	assert.Equal(t, "GM 00000000-00", string(header[0x80:0x8E]))
	assert.Equal(t, "J               ", string(header[0x90:0xA0]))
	assert.Equal(t, uint32(0), binary.BigEndian.Uint32(header[0xA0:]))
	assert.Equal(t, uint32(0x28F), binary.BigEndian.Uint32(header[0xA4:]))
	assert.Equal(t, uint32(0x00FF0000), binary.BigEndian.Uint32(header[0xA8:]))
	assert.Equal(t, uint32(0x00FFFFFF), binary.BigEndian.Uint32(header[0xAC:]))
	assert.Equal(t, "                        ", string(header[0xB0:0xC8]))
	assert.Equal(t, "JUE", string(header[0xF0:0xF3]))

	for i := 0xC8; i < 0xF0; i++ {
		assert.Equal(t, byte(0), header[i])
	}
	for i := 0xF3; i < HeaderSize; i++ {
		assert.Equal(t, byte(0), header[i])
	}
}

func TestBuildPadding(t *testing.T) {
	img := buildSieveImage(t)
	for i := CodeStart + img.CodeSize; i < img.Size(); i++ {
		assert.Equal(t, byte(0), img.Data[i])
	}
}

func TestBuildErrors(t *testing.T) {
	logger := log.NewTestLogger(t)

	t.Run("missing halt label", func(t *testing.T) {
		prog := &asm.Program{Code: []byte{0x4E, 0x71}, Labels: map[string]int{}}
		_, err := Build(logger, prog, DefaultHeader(), "hang")
		assert.True(t, errors.Is(err, asm.ErrUnresolvedLabel))
	})

	t.Run("empty program", func(t *testing.T) {
		prog := &asm.Program{Labels: map[string]int{"hang": 0}}
		_, err := Build(logger, prog, DefaultHeader(), "hang")
		assert.True(t, errors.Is(err, ErrCodeTooLarge))
	})

	t.Run("code exceeds ROM window", func(t *testing.T) {
		prog := &asm.Program{Code: make([]byte, MaxSize), Labels: map[string]int{"hang": 0}}
		_, err := Build(logger, prog, DefaultHeader(), "hang")
		assert.True(t, errors.Is(err, ErrCodeTooLarge))
	})

	t.Run("title too long", func(t *testing.T) {
		prog := &asm.Program{Code: []byte{0x60, 0xFE}, Labels: map[string]int{"hang": 0}}
		hdr := DefaultHeader()
		hdr.Region = "JUEX"
		_, err := Build(logger, prog, hdr, "hang")
		assert.True(t, errors.Is(err, ErrFieldTooLong))
		assert.ErrorContains(t, err, "region")
	})
}

func TestPadField(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		width   int
		want    string
		wantErr bool
	}{
		{"empty", "", 4, "    ", false},
		{"exact", "JUE", 3, "JUE", false},
		{"padded", "J", 4, "J   ", false},
		{"too long", "GM 00000000-001", 14, "", true},
		{"non printable", "A\x00", 4, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := padField(tt.value, tt.width)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, string(b))
		})
	}
}

func TestPaddedSize(t *testing.T) {
	assert.Equal(t, 512, paddedSize(0))
	assert.Equal(t, 512, paddedSize(1))
	assert.Equal(t, 512, paddedSize(512))
	assert.Equal(t, 1024, paddedSize(0x290))
}

func TestChecksum(t *testing.T) {
	data := make([]byte, 1024)
	assert.Equal(t, uint16(0), Checksum(data))

	// header bytes are not part of the sum
	data[0x100] = 0xFF
	assert.Equal(t, uint16(0), Checksum(data))

	binary.BigEndian.PutUint16(data[CodeStart:], 0xFFFF)
	binary.BigEndian.PutUint16(data[CodeStart+2:], 0x0002)
	assert.Equal(t, uint16(0x0001), Checksum(data))
}

func TestVerifyChecksum(t *testing.T) {
	img := buildSieveImage(t)

	data := append([]byte(nil), img.Data...)
	data[CodeStart] ^= 0x01
	err := VerifyChecksum(data)
	assert.True(t, errors.Is(err, ErrChecksumMismatch))

	err = VerifyChecksum(img.Data[:1000])
	assert.True(t, errors.Is(err, ErrInvalidSize))

	err = VerifyChecksum(nil)
	assert.True(t, errors.Is(err, ErrInvalidSize))
}
