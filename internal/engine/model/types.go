// Package model assembles parsed mesh descriptions into GPU-ready vertex buffers.
package model

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned when a face references an attribute that was never declared.
var ErrIndexOutOfRange = errors.New("attribute index out of range")

// Attribute pool names reported by AssemblyError.
const (
	PoolPosition = "position"
	PoolUV       = "uv"
	PoolNormal   = "normal"
)

// Vertex is one interleaved GPU vertex: position, normal, texture coordinates.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// Mesh holds the complete mesh data ready for GPU upload.
// Indices is nil for a plain triangle list, where every three vertices form a triangle.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// TriangleCount returns the number of triangles the mesh draws.
func (m *Mesh) TriangleCount() int {
	if m.Indices != nil {
		return len(m.Indices) / 3
	}
	return len(m.Vertices) / 3
}

// Bounds holds the axis-aligned bounding box of the mesh.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Center returns the midpoint of the box.
func (b Bounds) Center() [3]float32 {
	return [3]float32{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

// Size returns the box extent along each axis.
func (b Bounds) Size() [3]float32 {
	return [3]float32{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}

// AssemblyError reports a face corner that references a missing pool entry.
type AssemblyError struct {
	Pool   string // PoolPosition, PoolUV or PoolNormal
	Index  int    // 1-based index as written in the source
	Size   int    // pool length
	Face   int    // 0-based face number
	Corner int    // 0..2
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("face %d corner %d: %s index %d out of range [1, %d]",
		e.Face, e.Corner, e.Pool, e.Index, e.Size)
}

// Unwrap makes AssemblyError match ErrIndexOutOfRange.
func (e *AssemblyError) Unwrap() error {
	return ErrIndexOutOfRange
}
