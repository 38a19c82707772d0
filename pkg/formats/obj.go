package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-assets/internal/logger"
)

// OBJ format errors.
var (
	ErrMalformedLine = errors.New("malformed OBJ line")
)

// maxOBJLine bounds a single line; exporters sometimes emit very long face or comment lines.
const maxOBJLine = 1 << 20

// ParseError reports the line that stopped an OBJ parse.
type ParseError struct {
	Line   int    // 1-based line number
	Text   string // raw line text
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// Unwrap makes ParseError match ErrMalformedLine.
func (e *ParseError) Unwrap() error {
	return ErrMalformedLine
}

// OBJIndex is one face corner. All three indices are 1-based, as written in the file.
type OBJIndex struct {
	Position int
	UV       int
	Normal   int
}

// OBJFace is a triangle.
type OBJFace struct {
	Corners [3]OBJIndex
}

// OBJ holds the attribute pools and faces of a parsed mesh description.
// Pools keep file order.
type OBJ struct {
	Positions [][3]float32
	UVs       [][2]float32
	Normals   [][3]float32
	Faces     []OBJFace

	// Ignored counts lines skipped per unrecognized keyword.
	Ignored map[string]int
}

// ParseOBJ parses a triangulated Wavefront-style mesh description.
// Every face corner must be of the form pos/uv/normal. Unknown keywords are skipped.
// Any malformed line aborts the parse with a *ParseError.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{
		Ignored: make(map[string]int),
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxOBJLine)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		var reason string
		switch fields[0] {
		case "v":
			var p [3]float32
			reason = parseFloats(fields[1:], p[:])
			if reason == "" {
				obj.Positions = append(obj.Positions, p)
			}
		case "vt":
			var uv [2]float32
			reason = parseFloats(fields[1:], uv[:])
			if reason == "" {
				obj.UVs = append(obj.UVs, uv)
			}
		case "vn":
			var n [3]float32
			reason = parseFloats(fields[1:], n[:])
			if reason == "" {
				obj.Normals = append(obj.Normals, n)
			}
		case "f":
			var face OBJFace
			reason = parseFace(fields[1:], &face)
			if reason == "" {
				obj.Faces = append(obj.Faces, face)
			}
		default:
			key := fields[0]
			if strings.HasPrefix(key, "#") {
				key = "#"
			}
			obj.Ignored[key]++
		}

		if reason != "" {
			return nil, &ParseError{Line: lineNum, Text: line, Reason: reason}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Line: lineNum + 1, Reason: err.Error()}
	}

	obj.logIgnored()
	return obj, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data)
}

// TriangleCount returns the number of faces.
func (o *OBJ) TriangleCount() int {
	return len(o.Faces)
}

func (o *OBJ) logIgnored() {
	if len(o.Ignored) == 0 {
		return
	}
	log := logger.Named("formats")

	keys := make([]string, 0, len(o.Ignored))
	for k := range o.Ignored {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		log.Debug("ignored OBJ keyword", zap.String("keyword", k), zap.Int("lines", o.Ignored[k]))
	}
}

// parseFloats fills dst from args. Returns a non-empty reason on failure.
func parseFloats(args []string, dst []float32) string {
	if len(args) != len(dst) {
		return fmt.Sprintf("expected %d values, got %d", len(dst), len(args))
	}
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 32)
		if err != nil {
			return fmt.Sprintf("invalid number %q", a)
		}
		dst[i] = float32(f)
	}
	return ""
}

// parseFace parses three pos/uv/normal corners.
func parseFace(args []string, face *OBJFace) string {
	if len(args) != 3 {
		return fmt.Sprintf("expected 3 face corners, got %d", len(args))
	}
	for i, a := range args {
		parts := strings.Split(a, "/")
		if len(parts) != 3 {
			return fmt.Sprintf("corner %q: expected pos/uv/normal", a)
		}

		var idx [3]int
		for j, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil {
				return fmt.Sprintf("corner %q: invalid index %q", a, p)
			}
			if n < 1 {
				return fmt.Sprintf("corner %q: index %d must be >= 1", a, n)
			}
			idx[j] = n
		}

		face.Corners[i] = OBJIndex{Position: idx[0], UV: idx[1], Normal: idx[2]}
	}
	return ""
}
