package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/Faultbox/midgard-assets/internal/engine/model"
	"github.com/Faultbox/midgard-assets/pkg/formats"
)

func cmdMesh(args []string, out io.Writer) error {
	fs, debug := newFlagSet("mesh")
	indexed := fs.Bool("indexed", false, "Merge identical vertices and report the index buffer")
	if err := parseFlags(fs, debug, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}

	obj, err := formats.ParseOBJFile(fs.Arg(0))
	if err != nil {
		return err
	}
	mesh, err := model.Assemble(obj)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Mesh:      %s\n", fs.Arg(0))
	fmt.Fprintf(out, "Positions: %d\n", len(obj.Positions))
	fmt.Fprintf(out, "UVs:       %d\n", len(obj.UVs))
	fmt.Fprintf(out, "Normals:   %d\n", len(obj.Normals))
	fmt.Fprintf(out, "Faces:     %d\n", len(obj.Faces))
	fmt.Fprintf(out, "Vertices:  %d\n", len(mesh.Vertices))

	b := mesh.Bounds
	fmt.Fprintf(out, "Bounds:    (%g, %g, %g) - (%g, %g, %g)\n",
		b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])

	if *indexed {
		im := model.Index(mesh)
		fmt.Fprintf(out, "Indexed:   %d unique vertices, %d indices\n", len(im.Vertices), len(im.Indices))
	}

	if len(obj.Ignored) > 0 {
		keys := make([]string, 0, len(obj.Ignored))
		for k := range obj.Ignored {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprintln(out, "Ignored lines:")
		for _, k := range keys {
			fmt.Fprintf(out, "  %-10s %d\n", k, obj.Ignored[k])
		}
	}

	return nil
}

func cmdNormalize(args []string, out io.Writer) error {
	fs, debug := newFlagSet("normalize")
	if err := parseFlags(fs, debug, args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errUsage
	}

	obj, err := formats.ParseOBJFile(fs.Arg(0))
	if err != nil {
		return err
	}
	if err := formats.WriteOBJFile(fs.Arg(1), obj); err != nil {
		return err
	}

	fmt.Fprintf(out, "Wrote: %s (%d faces)\n", fs.Arg(1), len(obj.Faces))
	return nil
}
