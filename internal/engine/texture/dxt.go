// Package texture decodes block-compressed texture levels into images for previews.
package texture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/Faultbox/midgard-assets/pkg/formats"
)

// ErrEmptySurface is returned for mip levels with a zero dimension.
var ErrEmptySurface = errors.New("surface has no pixels")

// DecodeSurface decompresses mipmap level of dds into an NRGBA image.
func DecodeSurface(dds *formats.DDS, level int) (*image.NRGBA, error) {
	data, err := dds.SurfaceData(level)
	if err != nil {
		return nil, err
	}
	s := dds.Surfaces[level]
	return DecodeBlocks(data, int(s.Width), int(s.Height), s.Format)
}

// DecodeBlocks decompresses DXT1/3/5 block data laid out row-major in 4x4 blocks.
// Blocks on the right and bottom edges are clipped to the image size.
func DecodeBlocks(data []byte, width, height int, format formats.BlockFormat) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptySurface, width, height)
	}

	blockSize := format.BlockSize()
	blocksX := (width + 3) / 4
	blocksY := (height + 3) / 4
	if need := blocksX * blocksY * blockSize; len(data) < need {
		return nil, fmt.Errorf("%s block data truncated: need %d bytes, have %d", format, need, len(data))
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	var texels [16]color.NRGBA

	for by := 0; by < blocksY; by++ {
		for bx := 0; bx < blocksX; bx++ {
			block := data[(by*blocksX+bx)*blockSize:]

			switch format {
			case formats.FormatDXT3:
				decodeColorBlock(block[8:16], &texels, false)
				decodeExplicitAlpha(block[:8], &texels)
			case formats.FormatDXT5:
				decodeColorBlock(block[8:16], &texels, false)
				decodeInterpolatedAlpha(block[:8], &texels)
			default:
				decodeColorBlock(block[:8], &texels, true)
			}

			for ty := 0; ty < 4; ty++ {
				y := by*4 + ty
				if y >= height {
					break
				}
				for tx := 0; tx < 4; tx++ {
					x := bx*4 + tx
					if x >= width {
						break
					}
					img.SetNRGBA(x, y, texels[ty*4+tx])
				}
			}
		}
	}

	return img, nil
}

// decodeColorBlock decodes the 8-byte BC1 color block. With punchThrough, a
// block whose first endpoint is not greater than the second uses three colors
// plus transparent black.
func decodeColorBlock(b []byte, out *[16]color.NRGBA, punchThrough bool) {
	c0 := binary.LittleEndian.Uint16(b[0:])
	c1 := binary.LittleEndian.Uint16(b[2:])
	bits := binary.LittleEndian.Uint32(b[4:])

	var palette [4]color.NRGBA
	palette[0] = rgb565(c0)
	palette[1] = rgb565(c1)

	if c0 > c1 || !punchThrough {
		palette[2] = mix(palette[0], palette[1], 2, 1, 3)
		palette[3] = mix(palette[0], palette[1], 1, 2, 3)
	} else {
		palette[2] = mix(palette[0], palette[1], 1, 1, 2)
		palette[3] = color.NRGBA{}
	}

	for i := 0; i < 16; i++ {
		out[i] = palette[(bits>>(2*i))&0x3]
	}
}

// decodeExplicitAlpha applies BC2's 4-bit per-texel alpha.
func decodeExplicitAlpha(b []byte, out *[16]color.NRGBA) {
	bits := binary.LittleEndian.Uint64(b)
	for i := 0; i < 16; i++ {
		a := uint8((bits >> (4 * i)) & 0xF)
		out[i].A = a<<4 | a
	}
}

// decodeInterpolatedAlpha applies BC3's two-endpoint, 3-bit indexed alpha.
func decodeInterpolatedAlpha(b []byte, out *[16]color.NRGBA) {
	a0, a1 := int(b[0]), int(b[1])

	var alphas [8]uint8
	alphas[0], alphas[1] = uint8(a0), uint8(a1)
	if a0 > a1 {
		for i := 1; i <= 6; i++ {
			alphas[i+1] = uint8(((7-i)*a0 + i*a1) / 7)
		}
	} else {
		for i := 1; i <= 4; i++ {
			alphas[i+1] = uint8(((5-i)*a0 + i*a1) / 5)
		}
		alphas[6] = 0
		alphas[7] = 255
	}

	// 48 bits of indices, little-endian, starting at byte 2.
	var bits uint64
	for i := 7; i >= 2; i-- {
		bits = bits<<8 | uint64(b[i])
	}
	for i := 0; i < 16; i++ {
		out[i].A = alphas[(bits>>(3*i))&0x7]
	}
}

func rgb565(c uint16) color.NRGBA {
	r := uint8(c >> 11 & 0x1F)
	g := uint8(c >> 5 & 0x3F)
	b := uint8(c & 0x1F)
	return color.NRGBA{
		R: r<<3 | r>>2,
		G: g<<2 | g>>4,
		B: b<<3 | b>>2,
		A: 255,
	}
}

// mix returns (wa*a + wb*b) / div per channel, fully opaque.
func mix(a, b color.NRGBA, wa, wb, div int) color.NRGBA {
	return color.NRGBA{
		R: uint8((wa*int(a.R) + wb*int(b.R)) / div),
		G: uint8((wa*int(a.G) + wb*int(b.G)) / div),
		B: uint8((wa*int(a.B) + wb*int(b.B)) / div),
		A: 255,
	}
}
