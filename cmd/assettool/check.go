package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Faultbox/midgard-assets/internal/assets"
	"github.com/Faultbox/midgard-assets/internal/config"
	"github.com/Faultbox/midgard-assets/internal/engine/gpu"
	"github.com/Faultbox/midgard-assets/pkg/formats"
)

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func cmdCheck(args []string, out io.Writer) error {
	fset, debug := newFlagSet("check")
	var archives, dirs stringList
	fset.Var(&archives, "archive", "GRF archive to search (repeatable)")
	fset.Var(&dirs, "dir", "Directory to search (repeatable)")
	indexed := fset.Bool("indexed", false, "Merge identical vertices before upload")
	strict := fset.Bool("strict", false, "Reject unknown compression codes")
	trust := fset.Bool("trust-levels", false, "Size texture payloads by the bytes present")
	if err := parseFlags(fset, debug, args); err != nil {
		return err
	}
	if fset.NArg() == 0 {
		return errUsage
	}

	m := assets.NewManager()
	defer m.Close()
	m.TextureOptions = formats.DDSOptions{StrictFormat: *strict, TrustLevels: *trust}

	if len(dirs) == 0 && len(archives) == 0 {
		dirs = stringList{"."}
	}
	for _, d := range dirs {
		if err := m.AddDir(d); err != nil {
			return err
		}
	}
	for _, a := range archives {
		if err := m.AddArchive(a); err != nil {
			return err
		}
	}

	var rec gpu.Recorder
	failed := 0
	for _, path := range fset.Args() {
		if err := checkAsset(m, &rec, path, *indexed, out); err != nil {
			fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
			failed++
		}
	}

	hits, misses := m.Stats()
	fmt.Fprintf(out, "\n%d ok, %d failed (cache %d hits, %d misses)\n", fset.NArg()-failed, failed, hits, misses)
	if failed > 0 {
		return fmt.Errorf("%d of %d assets failed", failed, fset.NArg())
	}
	return nil
}

func checkAsset(m *assets.Manager, up gpu.Uploader, path string, indexed bool, out io.Writer) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		mesh, err := m.LoadMesh(path, indexed)
		if err != nil {
			return err
		}
		h, err := up.CreateVertexBuffer(mesh)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "ok   %s: %d triangles, %d draw elements, indexed=%t\n",
			path, mesh.TriangleCount(), h.Count, h.Indexed())
	case ".dds":
		dds, err := m.LoadTexture(path)
		if err != nil {
			return err
		}
		h, err := up.CreateCompressedTexture(dds)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "ok   %s: %dx%d %s, %d of %d levels uploadable\n",
			path, h.Width, h.Height, h.Format, h.Levels, len(dds.Surfaces))
	default:
		return fmt.Errorf("unsupported asset type %q", filepath.Ext(path))
	}
	return nil
}

func cmdConfig(args []string, out io.Writer) error {
	fset, debug := newFlagSet("config")
	if err := parseFlags(fset, debug, args); err != nil {
		return err
	}

	cfg := config.Default()
	if fset.NArg() == 0 {
		path, err := cfg.Save()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote: %s\n", path)
		return nil
	}

	if err := cfg.SaveTo(fset.Arg(0)); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote: %s\n", fset.Arg(0))
	return nil
}
