package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// createTestDDS builds a header followed by payloadLen bytes of payload.
// Payload byte i holds i%251 so surface slices can be checked.
func createTestDDS(width, height int32, linearSize, mipCount, fourCC uint32, payloadLen int) []byte {
	header := make([]byte, DDSHeaderSize)
	binary.LittleEndian.PutUint32(header[0:], DDSHeaderSize) // dwSize
	binary.LittleEndian.PutUint32(header[8:], uint32(height))
	binary.LittleEndian.PutUint32(header[12:], uint32(width))
	binary.LittleEndian.PutUint32(header[16:], linearSize)
	binary.LittleEndian.PutUint32(header[24:], mipCount)
	binary.LittleEndian.PutUint32(header[80:], fourCC)

	buf := new(bytes.Buffer)
	buf.Write(header)
	for i := 0; i < payloadLen; i++ {
		buf.WriteByte(byte(i % 251))
	}
	return buf.Bytes()
}

func TestParseDDS_SingleLevelDXT1(t *testing.T) {
	data := createTestDDS(64, 64, 2048, 1, FourCCDXT1, 2048)

	dds, err := ParseDDS(data)
	if err != nil {
		t.Fatalf("ParseDDS failed: %v", err)
	}

	if dds.Format != FormatDXT1 {
		t.Errorf("expected DXT1, got %s", dds.Format)
	}
	if len(dds.Surfaces) != 1 {
		t.Fatalf("expected 1 surface, got %d", len(dds.Surfaces))
	}

	s := dds.Surfaces[0]
	if s.Size != 16*16*8 {
		t.Errorf("expected size 2048, got %d", s.Size)
	}
	if s.Width != 64 || s.Height != 64 || s.Offset != 0 || s.Level != 0 {
		t.Errorf("unexpected surface %+v", s)
	}
}

func TestParseDDS_MipChain(t *testing.T) {
	// 8x8 DXT1: 2x2 blocks at level 0, then one (padded) block per level.
	data := createTestDDS(8, 8, 32, 3, FourCCDXT1, 64)

	dds, err := ParseDDS(data)
	if err != nil {
		t.Fatalf("ParseDDS failed: %v", err)
	}

	want := []Surface{
		{Level: 0, Width: 8, Height: 8, Offset: 0, Size: 32, Format: FormatDXT1},
		{Level: 1, Width: 4, Height: 4, Offset: 32, Size: 8, Format: FormatDXT1},
		{Level: 2, Width: 2, Height: 2, Offset: 40, Size: 8, Format: FormatDXT1},
	}
	if len(dds.Surfaces) != len(want) {
		t.Fatalf("expected %d surfaces, got %d", len(want), len(dds.Surfaces))
	}
	for i := range want {
		if dds.Surfaces[i] != want[i] {
			t.Errorf("surface %d = %+v, want %+v", i, dds.Surfaces[i], want[i])
		}
	}

	level1, err := dds.SurfaceData(1)
	if err != nil {
		t.Fatalf("SurfaceData failed: %v", err)
	}
	if len(level1) != 8 || level1[0] != 32 {
		t.Errorf("level 1 data = %v", level1)
	}
}

func TestParseDDS_StopsWhenDimensionsReachZero(t *testing.T) {
	// Ten declared levels but a 4x4 image only has 4x4, 2x2, 1x1.
	data := createTestDDS(4, 4, 32, 10, FourCCDXT5, 64)

	dds, err := ParseDDS(data)
	if err != nil {
		t.Fatalf("ParseDDS failed: %v", err)
	}
	if len(dds.Surfaces) != 3 {
		t.Fatalf("expected 3 surfaces, got %d", len(dds.Surfaces))
	}
	last := dds.Surfaces[2]
	if last.Width != 1 || last.Height != 1 || last.Size != 16 || last.Offset != 32 {
		t.Errorf("unexpected last surface %+v", last)
	}
}

func TestParseDDS_NonSquareChain(t *testing.T) {
	data := createTestDDS(8, 2, 32, 4, FourCCDXT3, 64)

	dds, err := ParseDDS(data)
	if err != nil {
		t.Fatalf("ParseDDS failed: %v", err)
	}

	// 8x2, 4x1, 2x0, 1x0: width keeps the chain alive after height hits zero.
	sizes := []uint32{32, 16, 0, 0}
	if len(dds.Surfaces) != len(sizes) {
		t.Fatalf("expected %d surfaces, got %d", len(sizes), len(dds.Surfaces))
	}
	for i, size := range sizes {
		if dds.Surfaces[i].Size != size {
			t.Errorf("surface %d size = %d, want %d", i, dds.Surfaces[i].Size, size)
		}
	}
}

func TestParseDDS_BlockSizes(t *testing.T) {
	tests := []struct {
		fourCC uint32
		format BlockFormat
		size   uint32
		gl     uint32
	}{
		{FourCCDXT1, FormatDXT1, 8, 0x83F1},
		{FourCCDXT3, FormatDXT3, 16, 0x83F2},
		{FourCCDXT5, FormatDXT5, 16, 0x83F3},
	}

	for _, tc := range tests {
		t.Run(tc.format.String(), func(t *testing.T) {
			dds, err := ParseDDS(createTestDDS(4, 4, 16, 1, tc.fourCC, 16))
			if err != nil {
				t.Fatalf("ParseDDS failed: %v", err)
			}
			if dds.Format != tc.format {
				t.Errorf("format = %s, want %s", dds.Format, tc.format)
			}
			if dds.Surfaces[0].Size != tc.size {
				t.Errorf("size = %d, want %d", dds.Surfaces[0].Size, tc.size)
			}
			if dds.Format.GLInternalFormat() != tc.gl {
				t.Errorf("GL format = 0x%x, want 0x%x", dds.Format.GLInternalFormat(), tc.gl)
			}
		})
	}
}

func TestParseDDS_UnknownFourCCFallsBack(t *testing.T) {
	data := createTestDDS(4, 4, 8, 1, 0x31435441, 8) // "ATC1"

	dds, err := ParseDDS(data)
	if err != nil {
		t.Fatalf("ParseDDS failed: %v", err)
	}
	if dds.Format != FormatDXT1 || !dds.FormatFallback {
		t.Errorf("expected DXT1 fallback, got %s (fallback=%v)", dds.Format, dds.FormatFallback)
	}

	_, err = ParseDDSWithOptions(data, DDSOptions{StrictFormat: true})
	if !errors.Is(err, ErrUnknownFourCC) {
		t.Errorf("expected ErrUnknownFourCC in strict mode, got %v", err)
	}
}

func TestParseDDS_TruncatedHeader(t *testing.T) {
	for _, n := range []int{0, 4, 80, DDSHeaderSize - 1} {
		_, err := ParseDDS(make([]byte, n))
		if !errors.Is(err, ErrTruncatedHeader) {
			t.Errorf("len %d: expected ErrTruncatedHeader, got %v", n, err)
		}

		var terr *TextureError
		if !errors.As(err, &terr) {
			t.Fatalf("len %d: expected *TextureError, got %T", n, err)
		}
		if terr.Have != n || terr.Need != DDSHeaderSize {
			t.Errorf("len %d: unexpected error context %+v", n, terr)
		}
	}
}

func TestParseDDS_TruncatedPayload(t *testing.T) {
	// Declared payload (LinearSize) exceeds the file.
	_, err := ParseDDS(createTestDDS(64, 64, 2048, 1, FourCCDXT1, 1000))
	if !errors.Is(err, ErrTruncatedPayload) {
		t.Errorf("expected ErrTruncatedPayload, got %v", err)
	}

	// Declared payload fits, but the level does not fit the declared payload.
	_, err = ParseDDS(createTestDDS(64, 64, 1024, 1, FourCCDXT1, 4096))
	var terr *TextureError
	if !errors.As(err, &terr) || !errors.Is(err, ErrTruncatedPayload) {
		t.Fatalf("expected level ErrTruncatedPayload, got %v", err)
	}
	if terr.Level != 0 || terr.Need != 2048 || terr.Have != 1024 {
		t.Errorf("unexpected error context %+v", terr)
	}
}

func TestParseDDS_HugeDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height int32
		opts          DDSOptions
	}{
		{"max width", math.MaxInt32, 4, DDSOptions{}},
		{"max height", 4, math.MaxInt32, DDSOptions{}},
		{"max both", math.MaxInt32, math.MaxInt32, DDSOptions{}},
		{"max width trusting levels", math.MaxInt32, 4, DDSOptions{TrustLevels: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := createTestDDS(tt.width, tt.height, 0, 1, FourCCDXT1, 0)
			dds, err := ParseDDSWithOptions(data, tt.opts)
			if dds != nil {
				t.Errorf("expected no texture, got surfaces %+v", dds.Surfaces)
			}
			if !errors.Is(err, ErrTruncatedPayload) {
				t.Fatalf("expected ErrTruncatedPayload, got %v", err)
			}
			var terr *TextureError
			if !errors.As(err, &terr) || terr.Need <= 0 {
				t.Errorf("expected a positive byte requirement, got %+v", terr)
			}
		})
	}
}

func TestDDS_SurfaceDataRejectsBadRange(t *testing.T) {
	dds := &DDS{
		Payload:  make([]byte, 4),
		Surfaces: []Surface{{Width: 4, Height: 4, Size: 8}},
	}
	if _, err := dds.SurfaceData(0); !errors.Is(err, ErrSurfaceOutOfBounds) {
		t.Errorf("expected ErrSurfaceOutOfBounds, got %v", err)
	}
}

func TestParseDDS_PayloadHeuristic(t *testing.T) {
	// 4x4 DXT1 with 3 levels needs 24 bytes, but LinearSize*2 only covers 16.
	data := createTestDDS(4, 4, 8, 3, FourCCDXT1, 24)

	_, err := ParseDDS(data)
	if !errors.Is(err, ErrTruncatedPayload) {
		t.Errorf("expected heuristic to reject the chain, got %v", err)
	}

	dds, err := ParseDDSWithOptions(data, DDSOptions{TrustLevels: true})
	if err != nil {
		t.Fatalf("TrustLevels parse failed: %v", err)
	}
	if len(dds.Surfaces) != 3 {
		t.Errorf("expected 3 surfaces, got %d", len(dds.Surfaces))
	}
}

func TestParseDDS_MagicPrefix(t *testing.T) {
	data := append([]byte("DDS "), createTestDDS(64, 64, 4096, 1, FourCCDXT5, 4096)...)

	dds, err := ParseDDS(data)
	if err != nil {
		t.Fatalf("ParseDDS failed: %v", err)
	}
	if dds.Header.Width != 64 || dds.Header.Height != 64 || dds.Format != FormatDXT5 {
		t.Errorf("unexpected header %+v", dds.Header)
	}
	if dds.Surfaces[0].Size != 16*16*16 {
		t.Errorf("expected 4096 bytes, got %d", dds.Surfaces[0].Size)
	}
}

func TestParseDDS_ZeroMipCountIsOneLevel(t *testing.T) {
	dds, err := ParseDDS(createTestDDS(8, 8, 32, 0, FourCCDXT1, 32))
	if err != nil {
		t.Fatalf("ParseDDS failed: %v", err)
	}
	if len(dds.Surfaces) != 1 {
		t.Errorf("expected 1 surface, got %d", len(dds.Surfaces))
	}
}

func TestParseDDS_NegativeDimensions(t *testing.T) {
	_, err := ParseDDS(createTestDDS(-4, 4, 8, 1, FourCCDXT1, 8))
	if !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("expected ErrInvalidDimensions, got %v", err)
	}
}

func TestDDS_SurfaceDataOutOfRange(t *testing.T) {
	dds, err := ParseDDS(createTestDDS(4, 4, 8, 1, FourCCDXT1, 8))
	if err != nil {
		t.Fatalf("ParseDDS failed: %v", err)
	}
	if _, err := dds.SurfaceData(1); !errors.Is(err, ErrSurfaceOutOfBounds) {
		t.Errorf("expected ErrSurfaceOutOfBounds, got %v", err)
	}
}

func TestFourCCString(t *testing.T) {
	if got := FourCCString(FourCCDXT5); got != "DXT5" {
		t.Errorf("FourCCString = %q", got)
	}
	if got := FourCCString(0); got != "????" {
		t.Errorf("FourCCString(0) = %q", got)
	}
}

func TestParseDDSFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bear.dds")
	if err := os.WriteFile(path, createTestDDS(64, 64, 2048, 1, FourCCDXT1, 2048), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	dds, err := ParseDDSFile(path)
	if err != nil {
		t.Fatalf("ParseDDSFile failed: %v", err)
	}
	if len(dds.Surfaces) != 1 {
		t.Errorf("expected 1 surface, got %d", len(dds.Surfaces))
	}
}
