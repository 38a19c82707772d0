package model

import "math"

// vertexKey is the bit pattern of a vertex. Comparing bits keeps NaN components
// hashable and never merges vertices that differ in any bit.
type vertexKey [8]uint32

func keyOf(v *Vertex) vertexKey {
	return vertexKey{
		math.Float32bits(v.Position[0]), math.Float32bits(v.Position[1]), math.Float32bits(v.Position[2]),
		math.Float32bits(v.Normal[0]), math.Float32bits(v.Normal[1]), math.Float32bits(v.Normal[2]),
		math.Float32bits(v.TexCoord[0]), math.Float32bits(v.TexCoord[1]),
	}
}

// Index collapses vertices with identical data into a shared vertex list and
// returns an indexed mesh. Unique vertices keep the order of their first use,
// and Expand(Index(m)) reproduces m's vertex list exactly.
// An already indexed mesh is returned unchanged.
func Index(mesh *Mesh) *Mesh {
	if mesh.Indices != nil {
		return mesh
	}

	seen := make(map[vertexKey]uint32, len(mesh.Vertices))
	vertices := make([]Vertex, 0, len(mesh.Vertices))
	indices := make([]uint32, 0, len(mesh.Vertices))

	for i := range mesh.Vertices {
		key := keyOf(&mesh.Vertices[i])
		idx, ok := seen[key]
		if !ok {
			idx = uint32(len(vertices))
			seen[key] = idx
			vertices = append(vertices, mesh.Vertices[i])
		}
		indices = append(indices, idx)
	}

	return &Mesh{
		Vertices: vertices,
		Indices:  indices,
		Bounds:   mesh.Bounds,
	}
}

// Expand turns an indexed mesh back into a plain triangle list.
func Expand(mesh *Mesh) *Mesh {
	if mesh.Indices == nil {
		return mesh
	}

	vertices := make([]Vertex, len(mesh.Indices))
	for i, idx := range mesh.Indices {
		vertices[i] = mesh.Vertices[idx]
	}

	return &Mesh{
		Vertices: vertices,
		Bounds:   mesh.Bounds,
	}
}
