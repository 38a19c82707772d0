package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/midgard-assets/internal/engine/texture"
	"github.com/Faultbox/midgard-assets/pkg/formats"
)

func cmdTexture(args []string, out io.Writer) error {
	fs, debug := newFlagSet("texture")
	strict := fs.Bool("strict", false, "Reject unknown compression codes")
	trust := fs.Bool("trust-levels", false, "Size the payload by the bytes present")
	if err := parseFlags(fs, debug, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	dds, err := formats.ParseDDSWithOptions(data, formats.DDSOptions{StrictFormat: *strict, TrustLevels: *trust})
	if err != nil {
		return err
	}

	h := dds.Header
	fmt.Fprintf(out, "Texture:     %s\n", fs.Arg(0))
	fmt.Fprintf(out, "Size:        %dx%d\n", h.Width, h.Height)
	fmt.Fprintf(out, "FourCC:      %s\n", formats.FourCCString(h.FourCC))
	if dds.FormatFallback {
		fmt.Fprintf(out, "Format:      %s (assumed)\n", dds.Format)
	} else {
		fmt.Fprintf(out, "Format:      %s\n", dds.Format)
	}
	fmt.Fprintf(out, "GL format:   0x%04X\n", dds.Format.GLInternalFormat())
	fmt.Fprintf(out, "Linear size: %d\n", h.LinearSize)
	fmt.Fprintf(out, "Mip count:   %d\n", h.MipMapCount)
	fmt.Fprintf(out, "Payload:     %d bytes\n", len(dds.Payload))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Level  Size      Offset    Bytes")
	for _, s := range dds.Surfaces {
		fmt.Fprintf(out, "%-6d %-9s %-9d %d\n", s.Level, fmt.Sprintf("%dx%d", s.Width, s.Height), s.Offset, s.Size)
	}

	return nil
}

func cmdExport(args []string, out io.Writer) error {
	fs, debug := newFlagSet("export")
	level := fs.Int("level", 0, "Mipmap level to export")
	size := fs.Int("size", 0, "Scale so the longer edge is at most this many pixels (0 = keep)")
	trust := fs.Bool("trust-levels", false, "Size the payload by the bytes present")
	if err := parseFlags(fs, debug, args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errUsage
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	dds, err := formats.ParseDDSWithOptions(data, formats.DDSOptions{TrustLevels: *trust})
	if err != nil {
		return err
	}

	img, err := texture.DecodeSurface(dds, *level)
	if err != nil {
		return err
	}
	img = texture.Fit(img, *size)

	f, err := os.Create(fs.Arg(1))
	if err != nil {
		return err
	}
	if err := texture.EncodeWebP(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", fs.Arg(1), err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	b := img.Bounds()
	fmt.Fprintf(out, "Exported: %s (level %d, %dx%d)\n", fs.Arg(1), *level, b.Dx(), b.Dy())
	return nil
}
