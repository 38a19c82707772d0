package model

import (
	"math"

	"github.com/Faultbox/midgard-assets/pkg/formats"
)

// Assemble resolves every face corner of obj against its attribute pools and
// returns a non-indexed triangle list: corners 0, 1, 2 of face 0, then face 1,
// and so on. The result has exactly 3 vertices per face.
//
// Pool indices in obj are 1-based. Any index outside its pool fails the whole
// assembly with an *AssemblyError; no partial mesh is returned.
func Assemble(obj *formats.OBJ) (*Mesh, error) {
	vertices := make([]Vertex, 0, len(obj.Faces)*3)

	for fi, face := range obj.Faces {
		for ci, corner := range face.Corners {
			pos, err := lookup(obj.Positions, corner.Position, PoolPosition, fi, ci)
			if err != nil {
				return nil, err
			}
			uv, err := lookup(obj.UVs, corner.UV, PoolUV, fi, ci)
			if err != nil {
				return nil, err
			}
			normal, err := lookup(obj.Normals, corner.Normal, PoolNormal, fi, ci)
			if err != nil {
				return nil, err
			}

			vertices = append(vertices, Vertex{
				Position: pos,
				Normal:   normal,
				TexCoord: uv,
			})
		}
	}

	return &Mesh{
		Vertices: vertices,
		Bounds:   computeBounds(vertices),
	}, nil
}

// lookup converts a 1-based index to 0-based and fetches the pool entry.
func lookup[T any](pool []T, index int, name string, face, corner int) (T, error) {
	i := index - 1
	if i < 0 || i >= len(pool) {
		var zero T
		return zero, &AssemblyError{Pool: name, Index: index, Size: len(pool), Face: face, Corner: corner}
	}
	return pool[i], nil
}

// computeBounds returns the axis-aligned box around all vertices.
// An empty vertex list yields a zero box.
func computeBounds(vertices []Vertex) Bounds {
	if len(vertices) == 0 {
		return Bounds{}
	}

	bounds := Bounds{
		Min: [3]float32{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: [3]float32{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
	for i := range vertices {
		updateBounds(&bounds, vertices[i].Position)
	}
	return bounds
}

func updateBounds(b *Bounds, p [3]float32) {
	for axis := 0; axis < 3; axis++ {
		if p[axis] < b.Min[axis] {
			b.Min[axis] = p[axis]
		}
		if p[axis] > b.Max[axis] {
			b.Max[axis] = p[axis]
		}
	}
}

// CenterMesh translates vertices so the bounding box is centered on the origin.
// Returns the offset that was subtracted.
func CenterMesh(mesh *Mesh) [3]float32 {
	center := mesh.Bounds.Center()

	for i := range mesh.Vertices {
		mesh.Vertices[i].Position[0] -= center[0]
		mesh.Vertices[i].Position[1] -= center[1]
		mesh.Vertices[i].Position[2] -= center[2]
	}

	for axis := 0; axis < 3; axis++ {
		mesh.Bounds.Min[axis] -= center[axis]
		mesh.Bounds.Max[axis] -= center[axis]
	}

	return center
}
