// Package gpu defines the boundary between parsed assets and the graphics API.
//
// Parsing and assembly never touch the GPU. An Uploader takes the finished
// values and turns them into API handles; the OpenGL implementation lives in
// the opengl subpackage so this package stays buildable without cgo.
package gpu

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/Faultbox/midgard-assets/internal/engine/model"
	"github.com/Faultbox/midgard-assets/pkg/formats"
)

// Upload errors.
var (
	ErrEmptyMesh    = errors.New("mesh has no vertices")
	ErrNoSurfaces   = errors.New("texture has no uploadable levels")
	ErrBadIndex     = errors.New("mesh index outside vertex list")
	ErrSurfaceRange = errors.New("surface outside texture payload")
)

// Vertex layout shared by every uploader and the mesh shaders.
const (
	AttribPosition = 0
	AttribNormal   = 1
	AttribTexCoord = 2
)

var (
	VertexStride   = int32(unsafe.Sizeof(model.Vertex{}))
	PositionOffset = unsafe.Offsetof(model.Vertex{}.Position)
	NormalOffset   = unsafe.Offsetof(model.Vertex{}.Normal)
	TexCoordOffset = unsafe.Offsetof(model.Vertex{}.TexCoord)
)

// BufferHandle identifies an uploaded vertex buffer.
type BufferHandle struct {
	VAO   uint32
	VBO   uint32
	EBO   uint32 // 0 for non-indexed meshes
	Count int32  // vertices (or indices) to draw
}

// Indexed reports whether the buffer draws through an element buffer.
func (h BufferHandle) Indexed() bool {
	return h.EBO != 0
}

// TextureHandle identifies an uploaded compressed texture.
type TextureHandle struct {
	ID     uint32
	Width  int32
	Height int32
	Levels int
	Format formats.BlockFormat
}

// Uploader turns assembled meshes and parsed textures into GPU objects.
type Uploader interface {
	CreateVertexBuffer(mesh *model.Mesh) (BufferHandle, error)
	CreateCompressedTexture(dds *formats.DDS) (TextureHandle, error)
}

// CheckMesh validates a mesh before upload.
func CheckMesh(mesh *model.Mesh) error {
	if mesh == nil || len(mesh.Vertices) == 0 {
		return ErrEmptyMesh
	}
	for i, idx := range mesh.Indices {
		if int(idx) >= len(mesh.Vertices) {
			return fmt.Errorf("%w: index %d at %d, %d vertices", ErrBadIndex, idx, i, len(mesh.Vertices))
		}
	}
	return nil
}

// DrawCount returns how many elements a draw call for mesh covers.
func DrawCount(mesh *model.Mesh) int32 {
	if mesh.Indices != nil {
		return int32(len(mesh.Indices))
	}
	return int32(len(mesh.Vertices))
}

// UploadLevels returns the surfaces of dds that can be given to the API: the
// leading levels with non-empty data. A chain whose smaller edge reached zero
// before the larger one ends there, since the API has no zero-sized levels.
func UploadLevels(dds *formats.DDS) ([]formats.Surface, error) {
	if dds == nil {
		return nil, ErrNoSurfaces
	}

	n := 0
	for _, s := range dds.Surfaces {
		if s.Size == 0 || s.Width <= 0 || s.Height <= 0 {
			break
		}
		if uint64(s.Offset)+uint64(s.Size) > uint64(len(dds.Payload)) {
			return nil, fmt.Errorf("%w: level %d", ErrSurfaceRange, s.Level)
		}
		n++
	}
	if n == 0 {
		return nil, ErrNoSurfaces
	}
	return dds.Surfaces[:n], nil
}
