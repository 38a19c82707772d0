package formats

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const triangleOBJ = "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nvt 1 0\nvn 0 0 1\nf 1/1/1 2/2/1 3/1/1"

func TestParseOBJ_Triangle(t *testing.T) {
	obj, err := ParseOBJ([]byte(triangleOBJ))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}

	if len(obj.Positions) != 3 {
		t.Errorf("expected 3 positions, got %d", len(obj.Positions))
	}
	if len(obj.UVs) != 2 {
		t.Errorf("expected 2 uvs, got %d", len(obj.UVs))
	}
	if len(obj.Normals) != 1 {
		t.Errorf("expected 1 normal, got %d", len(obj.Normals))
	}
	if obj.TriangleCount() != 1 {
		t.Fatalf("expected 1 face, got %d", obj.TriangleCount())
	}

	want := OBJFace{Corners: [3]OBJIndex{
		{Position: 1, UV: 1, Normal: 1},
		{Position: 2, UV: 2, Normal: 1},
		{Position: 3, UV: 1, Normal: 1},
	}}
	if obj.Faces[0] != want {
		t.Errorf("face = %+v, want %+v", obj.Faces[0], want)
	}

	if obj.Positions[1] != [3]float32{1, 0, 0} {
		t.Errorf("position 2 = %v", obj.Positions[1])
	}
}

func TestParseOBJ_PoolOrder(t *testing.T) {
	src := "vn 0 1 0\nv 3 3 3\nvt 0.5 0.25\nv -1 2.5 1e2\nvn 1 0 0\n"
	obj, err := ParseOBJ([]byte(src))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}

	if !reflect.DeepEqual(obj.Positions, [][3]float32{{3, 3, 3}, {-1, 2.5, 100}}) {
		t.Errorf("positions out of order: %v", obj.Positions)
	}
	if !reflect.DeepEqual(obj.Normals, [][3]float32{{0, 1, 0}, {1, 0, 0}}) {
		t.Errorf("normals out of order: %v", obj.Normals)
	}
	if !reflect.DeepEqual(obj.UVs, [][2]float32{{0.5, 0.25}}) {
		t.Errorf("uvs = %v", obj.UVs)
	}
}

func TestParseOBJ_IgnoresUnknownKeywords(t *testing.T) {
	src := "# exported by hand\nmtllib bear.mtl\no Bear\n\n   \ns 1\nusemtl fur\n" + triangleOBJ + "\n#another\n"
	obj, err := ParseOBJ([]byte(src))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}

	if obj.TriangleCount() != 1 {
		t.Errorf("expected 1 face, got %d", obj.TriangleCount())
	}
	if obj.Ignored["#"] != 2 {
		t.Errorf("expected 2 comment lines ignored, got %d", obj.Ignored["#"])
	}
	for _, kw := range []string{"mtllib", "o", "s", "usemtl"} {
		if obj.Ignored[kw] != 1 {
			t.Errorf("expected %s ignored once, got %d", kw, obj.Ignored[kw])
		}
	}
}

func TestParseOBJ_CRLF(t *testing.T) {
	src := strings.ReplaceAll(triangleOBJ, "\n", "\r\n")
	obj, err := ParseOBJ([]byte(src))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	if len(obj.Positions) != 3 || obj.TriangleCount() != 1 {
		t.Errorf("unexpected pools: %d positions, %d faces", len(obj.Positions), obj.TriangleCount())
	}
}

func TestParseOBJ_MalformedLines(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"bad float", "v 0 0 0\nv 1 x 0\n", 2},
		{"too few position values", "v 0 0\n", 1},
		{"too many position values", "v 0 0 0 1\n", 1},
		{"uv wrong count", "vt 0\n", 1},
		{"normal bad float", "vn 0 0 one\n", 1},
		{"face two corners", "f 1/1/1 2/2/2\n", 1},
		{"face quad", "v 0 0 0\nf 1/1/1 2/2/2 3/3/3 4/4/4\n", 2},
		{"face missing uv", "f 1//1 2//1 3//1\n", 1},
		{"face position only", "f 1 2 3\n", 1},
		{"face non-integer", "f 1/1/a 2/2/1 3/1/1\n", 1},
		{"face zero index", "f 0/1/1 2/2/1 3/1/1\n", 1},
		{"face negative index", "f -1/1/1 2/2/1 3/1/1\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := ParseOBJ([]byte(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if obj != nil {
				t.Error("expected no partial mesh on error")
			}
			if !errors.Is(err, ErrMalformedLine) {
				t.Errorf("expected ErrMalformedLine, got %v", err)
			}

			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if perr.Line != tt.line {
				t.Errorf("line = %d, want %d", perr.Line, tt.line)
			}
			lines := strings.Split(tt.src, "\n")
			if perr.Text != lines[tt.line-1] {
				t.Errorf("text = %q, want %q", perr.Text, lines[tt.line-1])
			}
		})
	}
}

func TestParseOBJ_Empty(t *testing.T) {
	obj, err := ParseOBJ(nil)
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	if len(obj.Positions) != 0 || len(obj.Faces) != 0 {
		t.Error("expected empty pools")
	}
}

func TestWriteOBJ_RoundTrip(t *testing.T) {
	src := "# cube corner\n" +
		"v 0.1 -2.75 3.3333333\nv 1e-7 0 65504\nv 0 1 0\n" +
		"vt 0.125 0.875\nvt 1 0\n" +
		"vn 0 0 1\nvn 0.57735026 0.57735026 0.57735026\n" +
		"f 1/1/1 2/2/1 3/1/2\nf 3/2/2 2/1/1 1/1/1\n"

	first, err := ParseOBJ([]byte(src))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteOBJ(&buf, first); err != nil {
		t.Fatalf("WriteOBJ failed: %v", err)
	}

	second, err := ParseOBJ(buf.Bytes())
	if err != nil {
		t.Fatalf("re-parse failed: %v\n%s", err, buf.String())
	}

	if !reflect.DeepEqual(first.Positions, second.Positions) {
		t.Errorf("positions differ: %v vs %v", first.Positions, second.Positions)
	}
	if !reflect.DeepEqual(first.UVs, second.UVs) {
		t.Errorf("uvs differ: %v vs %v", first.UVs, second.UVs)
	}
	if !reflect.DeepEqual(first.Normals, second.Normals) {
		t.Errorf("normals differ: %v vs %v", first.Normals, second.Normals)
	}
	if !reflect.DeepEqual(first.Faces, second.Faces) {
		t.Errorf("faces differ: %v vs %v", first.Faces, second.Faces)
	}

	// The canonical form is a fixed point.
	var again bytes.Buffer
	if err := WriteOBJ(&again, second); err != nil {
		t.Fatalf("WriteOBJ failed: %v", err)
	}
	if again.String() != buf.String() {
		t.Errorf("canonical output not stable:\n%s\nvs\n%s", buf.String(), again.String())
	}
}

func TestParseOBJFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "tri.obj")

	obj, err := ParseOBJ([]byte(triangleOBJ))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	if err := WriteOBJFile(path, obj); err != nil {
		t.Fatalf("WriteOBJFile failed: %v", err)
	}

	loaded, err := ParseOBJFile(path)
	if err != nil {
		t.Fatalf("ParseOBJFile failed: %v", err)
	}
	if !reflect.DeepEqual(loaded.Faces, obj.Faces) {
		t.Errorf("faces differ after file round trip")
	}

	if _, err := ParseOBJFile(filepath.Join(dir, "missing.obj")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
