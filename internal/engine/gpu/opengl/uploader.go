// Package opengl uploads assembled meshes and compressed textures with OpenGL 4.1.
// All calls must happen on the thread that owns the GL context.
package opengl

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-assets/internal/engine/gpu"
	"github.com/Faultbox/midgard-assets/internal/engine/model"
	"github.com/Faultbox/midgard-assets/internal/logger"
	"github.com/Faultbox/midgard-assets/pkg/formats"
)

// Uploader implements gpu.Uploader on the current GL context.
type Uploader struct {
	// Anisotropy sets TEXTURE_MAX_ANISOTROPY on new textures when above 1.
	Anisotropy float32

	log *zap.Logger
}

var _ gpu.Uploader = (*Uploader)(nil)

// NewUploader creates an uploader. gl.Init must have been called.
func NewUploader() *Uploader {
	return &Uploader{
		Anisotropy: 8,
		log:        logger.Named("gpu"),
	}
}

// CreateVertexBuffer uploads the interleaved vertex list, plus an element
// buffer when the mesh is indexed.
func (u *Uploader) CreateVertexBuffer(mesh *model.Mesh) (gpu.BufferHandle, error) {
	if err := gpu.CheckMesh(mesh); err != nil {
		return gpu.BufferHandle{}, err
	}

	if err := checkError("stale", gl.GetError); err != nil {
		u.log.Debug("discarding earlier GL error", zap.Error(err))
	}

	var h gpu.BufferHandle
	gl.GenVertexArrays(1, &h.VAO)
	gl.BindVertexArray(h.VAO)

	gl.GenBuffers(1, &h.VBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, h.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*int(gpu.VertexStride), unsafe.Pointer(&mesh.Vertices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(gpu.AttribPosition, 3, gl.FLOAT, false, gpu.VertexStride, gpu.PositionOffset)
	gl.EnableVertexAttribArray(gpu.AttribPosition)
	gl.VertexAttribPointerWithOffset(gpu.AttribNormal, 3, gl.FLOAT, false, gpu.VertexStride, gpu.NormalOffset)
	gl.EnableVertexAttribArray(gpu.AttribNormal)
	gl.VertexAttribPointerWithOffset(gpu.AttribTexCoord, 2, gl.FLOAT, false, gpu.VertexStride, gpu.TexCoordOffset)
	gl.EnableVertexAttribArray(gpu.AttribTexCoord)

	if len(mesh.Indices) > 0 {
		gl.GenBuffers(1, &h.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, h.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, unsafe.Pointer(&mesh.Indices[0]), gl.STATIC_DRAW)
	}
	h.Count = gpu.DrawCount(mesh)

	gl.BindVertexArray(0)

	if err := checkError("BufferData", gl.GetError); err != nil {
		u.ReleaseBuffer(h)
		return gpu.BufferHandle{}, err
	}

	u.log.Debug("vertex buffer created",
		zap.Uint32("vao", h.VAO),
		zap.Int32("count", h.Count),
		zap.Bool("indexed", h.Indexed()))

	return h, nil
}

// CreateCompressedTexture uploads every level as a compressed image and caps
// TEXTURE_MAX_LEVEL at the last one, so short chains stay complete.
func (u *Uploader) CreateCompressedTexture(dds *formats.DDS) (gpu.TextureHandle, error) {
	levels, err := gpu.UploadLevels(dds)
	if err != nil {
		return gpu.TextureHandle{}, err
	}

	h := gpu.TextureHandle{
		Width:  dds.Header.Width,
		Height: dds.Header.Height,
		Levels: len(levels),
		Format: dds.Format,
	}

	if err := checkError("stale", gl.GetError); err != nil {
		u.log.Debug("discarding earlier GL error", zap.Error(err))
	}

	gl.GenTextures(1, &h.ID)
	gl.BindTexture(gl.TEXTURE_2D, h.ID)

	for _, s := range levels {
		data := dds.Payload[s.Offset : s.Offset+s.Size]
		gl.CompressedTexImage2D(gl.TEXTURE_2D, int32(s.Level), s.Format.GLInternalFormat(),
			s.Width, s.Height, 0, int32(s.Size), unsafe.Pointer(&data[0]))
	}

	minFilter := int32(gl.LINEAR)
	if len(levels) > 1 {
		minFilter = gl.LINEAR_MIPMAP_LINEAR
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_BASE_LEVEL, 0)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, int32(len(levels)-1))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	if u.Anisotropy > 1 {
		gl.TexParameterf(gl.TEXTURE_2D, gl.TEXTURE_MAX_ANISOTROPY, u.Anisotropy)
	}

	gl.BindTexture(gl.TEXTURE_2D, 0)

	if err := checkError("CompressedTexImage2D", gl.GetError); err != nil {
		u.ReleaseTexture(h)
		return gpu.TextureHandle{}, err
	}

	u.log.Debug("compressed texture created",
		zap.Uint32("id", h.ID),
		zap.Stringer("format", h.Format),
		zap.Int("levels", h.Levels))

	return h, nil
}

// Draw issues the draw call for a buffer created by CreateVertexBuffer.
func (u *Uploader) Draw(h gpu.BufferHandle) {
	gl.BindVertexArray(h.VAO)
	if h.Indexed() {
		gl.DrawElements(gl.TRIANGLES, h.Count, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, h.Count)
	}
	gl.BindVertexArray(0)
}

// ReleaseBuffer deletes the GL objects behind h.
func (u *Uploader) ReleaseBuffer(h gpu.BufferHandle) {
	if h.EBO != 0 {
		gl.DeleteBuffers(1, &h.EBO)
	}
	if h.VBO != 0 {
		gl.DeleteBuffers(1, &h.VBO)
	}
	if h.VAO != 0 {
		gl.DeleteVertexArrays(1, &h.VAO)
	}
}

// ReleaseTexture deletes the texture behind h.
func (u *Uploader) ReleaseTexture(h gpu.TextureHandle) {
	if h.ID != 0 {
		gl.DeleteTextures(1, &h.ID)
	}
}
