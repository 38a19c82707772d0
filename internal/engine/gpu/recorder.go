package gpu

import (
	"sync"

	"github.com/Faultbox/midgard-assets/internal/engine/model"
	"github.com/Faultbox/midgard-assets/pkg/formats"
)

// LevelUpload is one recorded compressed image upload.
type LevelUpload struct {
	Level          int
	Width, Height  int32
	InternalFormat uint32
	Data           []byte
}

// TextureUpload is one recorded CreateCompressedTexture call.
type TextureUpload struct {
	Handle TextureHandle
	Levels []LevelUpload
}

// BufferUpload is one recorded CreateVertexBuffer call.
type BufferUpload struct {
	Handle   BufferHandle
	Vertices []model.Vertex
	Indices  []uint32
}

// Recorder is an Uploader that records calls instead of talking to a GPU.
// Tools use it for dry runs; tests use it to check the upload contract.
type Recorder struct {
	mu       sync.Mutex
	nextID   uint32
	Buffers  []BufferUpload
	Textures []TextureUpload
}

// CreateVertexBuffer records the mesh and hands out fresh object names.
func (r *Recorder) CreateVertexBuffer(mesh *model.Mesh) (BufferHandle, error) {
	if err := CheckMesh(mesh); err != nil {
		return BufferHandle{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	h := BufferHandle{VAO: r.id(), VBO: r.id(), Count: DrawCount(mesh)}
	if mesh.Indices != nil {
		h.EBO = r.id()
	}
	r.Buffers = append(r.Buffers, BufferUpload{
		Handle:   h,
		Vertices: mesh.Vertices,
		Indices:  mesh.Indices,
	})
	return h, nil
}

// CreateCompressedTexture records one upload per level.
func (r *Recorder) CreateCompressedTexture(dds *formats.DDS) (TextureHandle, error) {
	levels, err := UploadLevels(dds)
	if err != nil {
		return TextureHandle{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	h := TextureHandle{
		ID:     r.id(),
		Width:  dds.Header.Width,
		Height: dds.Header.Height,
		Levels: len(levels),
		Format: dds.Format,
	}
	rec := TextureUpload{Handle: h}
	for _, s := range levels {
		rec.Levels = append(rec.Levels, LevelUpload{
			Level:          s.Level,
			Width:          s.Width,
			Height:         s.Height,
			InternalFormat: s.Format.GLInternalFormat(),
			Data:           dds.Payload[s.Offset : s.Offset+s.Size],
		})
	}
	r.Textures = append(r.Textures, rec)
	return h, nil
}

func (r *Recorder) id() uint32 {
	r.nextID++
	return r.nextID
}
