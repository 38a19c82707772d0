package formats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// WriteOBJ writes obj in canonical form: all positions, then UVs, then normals,
// then faces. Floats use the shortest representation that parses back to the
// same float32, so ParseOBJ(WriteOBJ(o)) reproduces pools and faces exactly.
// Ignored keywords are not written.
func WriteOBJ(w io.Writer, obj *OBJ) error {
	bw := bufio.NewWriter(w)

	for _, p := range obj.Positions {
		fmt.Fprintf(bw, "v %s %s %s\n", formatFloat(p[0]), formatFloat(p[1]), formatFloat(p[2]))
	}
	for _, uv := range obj.UVs {
		fmt.Fprintf(bw, "vt %s %s\n", formatFloat(uv[0]), formatFloat(uv[1]))
	}
	for _, n := range obj.Normals {
		fmt.Fprintf(bw, "vn %s %s %s\n", formatFloat(n[0]), formatFloat(n[1]), formatFloat(n[2]))
	}
	for _, f := range obj.Faces {
		c := f.Corners
		fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n",
			c[0].Position, c[0].UV, c[0].Normal,
			c[1].Position, c[1].UV, c[1].Normal,
			c[2].Position, c[2].UV, c[2].Normal)
	}

	return bw.Flush()
}

// WriteOBJFile writes obj to path, creating parent directories as needed.
func WriteOBJFile(path string, obj *OBJ) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteOBJ(f, obj); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
