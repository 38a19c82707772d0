package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-assets/internal/logger"
)

// DDS format errors.
var (
	ErrTruncatedHeader    = errors.New("truncated DDS header")
	ErrTruncatedPayload   = errors.New("truncated DDS payload")
	ErrInvalidDimensions  = errors.New("invalid DDS dimensions")
	ErrUnknownFourCC      = errors.New("unknown DDS compression code")
	ErrSurfaceOutOfBounds = errors.New("surface index out of range")
)

// DDSHeaderSize is the size of the fixed header. The mipmap payload starts right after it.
const DDSHeaderSize = 124

// ddsMagic optionally precedes the header in files written by standard tools.
const ddsMagic = "DDS "

// Header field offsets, relative to the start of the header.
const (
	ddsOffHeight     = 8
	ddsOffWidth      = 12
	ddsOffLinearSize = 16
	ddsOffMipCount   = 24
	ddsOffFourCC     = 80
)

// Four-character compression codes, ASCII packed little-endian.
const (
	FourCCDXT1 uint32 = 0x31545844 // "DXT1"
	FourCCDXT3 uint32 = 0x33545844 // "DXT3"
	FourCCDXT5 uint32 = 0x35545844 // "DXT5"
)

// BlockFormat identifies a GPU block-compression format.
type BlockFormat uint8

// Supported block formats.
const (
	FormatDXT1 BlockFormat = iota // BC1, 8 bytes per 4x4 block
	FormatDXT3                    // BC2, 16 bytes per block
	FormatDXT5                    // BC3, 16 bytes per block
)

// S3TC internal format enums from EXT_texture_compression_s3tc.
const (
	glCompressedRGBAS3TCDXT1 uint32 = 0x83F1
	glCompressedRGBAS3TCDXT3 uint32 = 0x83F2
	glCompressedRGBAS3TCDXT5 uint32 = 0x83F3
)

// String returns the format name.
func (f BlockFormat) String() string {
	switch f {
	case FormatDXT1:
		return "DXT1"
	case FormatDXT3:
		return "DXT3"
	case FormatDXT5:
		return "DXT5"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

// BlockSize returns the byte size of one 4x4 block.
func (f BlockFormat) BlockSize() int {
	if f == FormatDXT1 {
		return 8
	}
	return 16
}

// GLInternalFormat returns the internal format to pass to glCompressedTexImage2D.
func (f BlockFormat) GLInternalFormat() uint32 {
	switch f {
	case FormatDXT3:
		return glCompressedRGBAS3TCDXT3
	case FormatDXT5:
		return glCompressedRGBAS3TCDXT5
	default:
		return glCompressedRGBAS3TCDXT1
	}
}

// FourCCString renders a packed compression code as text, e.g. "DXT5".
func FourCCString(code uint32) string {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], code)
	for i, c := range b {
		if c < 0x20 || c > 0x7e {
			b[i] = '?'
		}
	}
	return string(b[:])
}

// DDSHeader holds the header fields the loader consumes.
type DDSHeader struct {
	Height      int32
	Width       int32
	LinearSize  uint32
	MipMapCount uint32
	FourCC      uint32
}

// Surface describes one mipmap level inside the payload.
type Surface struct {
	Level  int
	Width  int32
	Height int32
	Offset uint32 // relative to the payload start
	Size   uint32
	Format BlockFormat
}

// DDS is a parsed compressed texture.
type DDS struct {
	Header   DDSHeader
	Format   BlockFormat
	Surfaces []Surface

	// Payload is the declared mipmap region. Surface offsets index into it.
	Payload []byte

	// FormatFallback is set when the compression code was not recognized
	// and DXT1 was assumed.
	FormatFallback bool
}

// SurfaceData returns the bytes of mipmap level i.
func (d *DDS) SurfaceData(i int) ([]byte, error) {
	if i < 0 || i >= len(d.Surfaces) {
		return nil, fmt.Errorf("%w: %d of %d", ErrSurfaceOutOfBounds, i, len(d.Surfaces))
	}
	s := d.Surfaces[i]
	if uint64(s.Offset)+uint64(s.Size) > uint64(len(d.Payload)) {
		return nil, fmt.Errorf("%w: level %d spans %d+%d of %d payload bytes", ErrSurfaceOutOfBounds, i, s.Offset, s.Size, len(d.Payload))
	}
	return d.Payload[s.Offset : s.Offset+s.Size], nil
}

// TextureError carries the byte context of a failed texture parse.
type TextureError struct {
	Err    error // one of the DDS sentinel errors
	Level  int   // mipmap level, -1 when not level-specific
	Offset int   // byte offset the failure refers to
	Need   int   // bytes required
	Have   int   // bytes available
}

func (e *TextureError) Error() string {
	if e.Level >= 0 {
		return fmt.Sprintf("%v: level %d at offset %d needs %d bytes, have %d", e.Err, e.Level, e.Offset, e.Need, e.Have)
	}
	return fmt.Sprintf("%v: at offset %d needs %d bytes, have %d", e.Err, e.Offset, e.Need, e.Have)
}

func (e *TextureError) Unwrap() error {
	return e.Err
}

// DDSOptions tunes how strictly ParseDDSWithOptions treats loosely written files.
type DDSOptions struct {
	// StrictFormat rejects unknown compression codes instead of falling back to DXT1.
	StrictFormat bool

	// TrustLevels sizes the payload by the bytes actually present instead of
	// the LinearSize heuristic (LinearSize, doubled when mipmapped). Needed for
	// small textures with deep mip chains, where the heuristic is too small.
	TrustLevels bool
}

// ParseDDS parses a DXT-compressed texture with default options.
func ParseDDS(data []byte) (*DDS, error) {
	return ParseDDSWithOptions(data, DDSOptions{})
}

// ParseDDSWithOptions parses a DXT-compressed texture container.
// The 124-byte header may be preceded by the "DDS " magic; all offsets are
// relative to the header start.
func ParseDDSWithOptions(data []byte, opts DDSOptions) (*DDS, error) {
	log := logger.Named("formats")

	if len(data) >= len(ddsMagic) && string(data[:len(ddsMagic)]) == ddsMagic {
		data = data[len(ddsMagic):]
	}

	if len(data) < DDSHeaderSize {
		return nil, &TextureError{Err: ErrTruncatedHeader, Level: -1, Need: DDSHeaderSize, Have: len(data)}
	}

	header := DDSHeader{
		Height:      int32(binary.LittleEndian.Uint32(data[ddsOffHeight:])),
		Width:       int32(binary.LittleEndian.Uint32(data[ddsOffWidth:])),
		LinearSize:  binary.LittleEndian.Uint32(data[ddsOffLinearSize:]),
		MipMapCount: binary.LittleEndian.Uint32(data[ddsOffMipCount:]),
		FourCC:      binary.LittleEndian.Uint32(data[ddsOffFourCC:]),
	}

	if header.Width < 0 || header.Height < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, header.Width, header.Height)
	}

	dds := &DDS{Header: header}

	switch header.FourCC {
	case FourCCDXT1:
		dds.Format = FormatDXT1
	case FourCCDXT3:
		dds.Format = FormatDXT3
	case FourCCDXT5:
		dds.Format = FormatDXT5
	default:
		if opts.StrictFormat {
			return nil, fmt.Errorf("%w: %q (0x%08x)", ErrUnknownFourCC, FourCCString(header.FourCC), header.FourCC)
		}
		dds.Format = FormatDXT1
		dds.FormatFallback = true
		log.Warn("unknown compression code, assuming DXT1",
			zap.String("fourcc", FourCCString(header.FourCC)))
	}

	rest := data[DDSHeaderSize:]
	payloadSize := len(rest)
	if !opts.TrustLevels {
		payloadSize = int(header.LinearSize)
		if header.MipMapCount > 1 {
			payloadSize *= 2
		}
		if payloadSize > len(rest) {
			return nil, &TextureError{Err: ErrTruncatedPayload, Level: -1, Offset: DDSHeaderSize, Need: payloadSize, Have: len(rest)}
		}
	}
	dds.Payload = rest[:payloadSize]

	surfaces, err := computeSurfaces(header, dds.Format, payloadSize)
	if err != nil {
		return nil, err
	}
	dds.Surfaces = surfaces

	log.Debug("parsed DDS",
		zap.Int32("width", header.Width),
		zap.Int32("height", header.Height),
		zap.Stringer("format", dds.Format),
		zap.Int("levels", len(surfaces)))

	return dds, nil
}

// ParseDDSFile parses a DDS file from disk.
func ParseDDSFile(path string) (*DDS, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading DDS file: %w", err)
	}
	return ParseDDS(data)
}

// LevelCount returns the number of mip levels the header declares.
// Writers that leave the mipmap count unset store 0, which means a single level.
func (h DDSHeader) LevelCount() int {
	if h.MipMapCount == 0 {
		return 1
	}
	return int(h.MipMapCount)
}

// computeSurfaces walks the mip chain, halving each dimension per level,
// until the declared level count is reached or both dimensions hit zero.
func computeSurfaces(h DDSHeader, format BlockFormat, payloadSize int) ([]Surface, error) {
	blockSize := int64(format.BlockSize())
	width, height := h.Width, h.Height
	levels := h.LevelCount()
	offset := 0

	var surfaces []Surface
	for level := 0; level < levels && (width > 0 || height > 0); level++ {
		// int64 keeps dimensions near MaxInt32 from wrapping the block count.
		size := ((int64(width) + 3) / 4) * ((int64(height) + 3) / 4) * blockSize
		if int64(offset)+size > int64(payloadSize) {
			return nil, &TextureError{Err: ErrTruncatedPayload, Level: level, Offset: offset, Need: int(size), Have: payloadSize - offset}
		}

		surfaces = append(surfaces, Surface{
			Level:  level,
			Width:  width,
			Height: height,
			Offset: uint32(offset),
			Size:   uint32(size),
			Format: format,
		})

		offset += int(size)
		width /= 2
		height /= 2
	}

	return surfaces, nil
}
