package main

import (
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-assets/internal/assets"
	"github.com/Faultbox/midgard-assets/internal/config"
	"github.com/Faultbox/midgard-assets/internal/engine/camera"
	"github.com/Faultbox/midgard-assets/internal/engine/gpu"
	"github.com/Faultbox/midgard-assets/internal/engine/gpu/opengl"
	"github.com/Faultbox/midgard-assets/internal/engine/shader"
	"github.com/Faultbox/midgard-assets/internal/engine/shader/shaders"
	"github.com/Faultbox/midgard-assets/internal/engine/window"
	"github.com/Faultbox/midgard-assets/internal/logger"
	"github.com/Faultbox/midgard-assets/pkg/formats"
)

// viewer shows one mesh with one texture.
type viewer struct {
	log      *zap.Logger
	window   *window.Window
	assets   *assets.Manager
	uploader *opengl.Uploader
	camera   *camera.Orbit

	program     uint32
	locMVP      int32
	locTexture  int32
	locLightDir int32

	mesh    gpu.BufferHandle
	texture gpu.TextureHandle

	width, height int
}

func newViewer(cfg *config.Config) (*viewer, error) {
	v := &viewer{
		log:    logger.Named("viewer"),
		camera: camera.NewOrbit(),
	}

	var err error
	v.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// GL entry points need the context created above.
	if err := gl.Init(); err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	v.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	if err := v.init(cfg); err != nil {
		v.Close()
		return nil, err
	}
	return v, nil
}

func (v *viewer) init(cfg *config.Config) error {
	v.width, v.height = v.window.DrawableSize()
	v.uploader = opengl.NewUploader()

	program, err := shader.CompileProgram(shaders.MeshVertexShader, shaders.MeshFragmentShader)
	if err != nil {
		return fmt.Errorf("mesh shader: %w", err)
	}
	v.program = program
	v.locMVP = shader.MustGetUniform(program, "uMVP")
	v.locTexture = shader.GetUniform(program, "uTexture")
	v.locLightDir = shader.GetUniform(program, "uLightDir")

	v.assets = assets.NewManager()
	v.assets.TextureOptions = formats.DDSOptions{
		StrictFormat: cfg.Assets.StrictFormat,
		TrustLevels:  cfg.Assets.TrustLevels,
	}
	for _, dir := range cfg.Assets.Dirs {
		if err := v.assets.AddDir(dir); err != nil {
			v.log.Warn("skipping asset dir", zap.String("dir", dir), zap.Error(err))
		}
	}
	for _, path := range cfg.Assets.Archives {
		if err := v.assets.AddArchive(path); err != nil {
			return err
		}
	}

	if cfg.Assets.Mesh != "" {
		mesh, err := v.assets.LoadMesh(cfg.Assets.Mesh, cfg.Assets.Indexed)
		if err != nil {
			return err
		}
		if v.mesh, err = v.uploader.CreateVertexBuffer(mesh); err != nil {
			return fmt.Errorf("uploading %s: %w", cfg.Assets.Mesh, err)
		}
		v.camera.Frame(mesh.Bounds)
	}

	dds := whiteTexture()
	if cfg.Assets.Texture != "" {
		if dds, err = v.assets.LoadTexture(cfg.Assets.Texture); err != nil {
			return err
		}
	}
	if v.texture, err = v.uploader.CreateCompressedTexture(dds); err != nil {
		return fmt.Errorf("uploading texture: %w", err)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.ClearColor(0.15, 0.15, 0.18, 1.0)

	return nil
}

// whiteTexture is a single opaque white DXT1 block, used when no texture is configured.
func whiteTexture() *formats.DDS {
	return &formats.DDS{
		Header:  formats.DDSHeader{Width: 4, Height: 4, LinearSize: 8, MipMapCount: 1, FourCC: formats.FourCCDXT1},
		Format:  formats.FormatDXT1,
		Payload: []byte{0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0, 0},
		Surfaces: []formats.Surface{
			{Level: 0, Width: 4, Height: 4, Offset: 0, Size: 8, Format: formats.FormatDXT1},
		},
	}
}

// Run drives the event/draw loop until the window is closed.
func (v *viewer) Run() error {
	handlers := window.Handlers{
		Resize: func(w, h int) { v.width, v.height = w, h },
		Drag:   v.camera.Drag,
		Scroll: v.camera.Zoom,
	}

	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting render loop")
	for v.window.PollEvents(handlers) {
		v.render()
		v.window.SwapBuffers()

		if code := gl.GetError(); code != gl.NO_ERROR {
			return &opengl.GLError{Op: "frame", Code: code}
		}

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

func (v *viewer) render() {
	gl.Viewport(0, 0, int32(v.width), int32(v.height))
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	if v.mesh.VAO == 0 || v.height == 0 {
		return
	}

	mvp := v.camera.ViewProjection(float32(v.width) / float32(v.height))

	gl.UseProgram(v.program)
	gl.UniformMatrix4fv(v.locMVP, 1, false, mvp.Ptr())
	gl.Uniform3f(v.locLightDir, -0.4, -1.0, -0.3)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, v.texture.ID)
	gl.Uniform1i(v.locTexture, 0)

	v.uploader.Draw(v.mesh)
}

// Close releases GPU objects, asset sources and the window.
func (v *viewer) Close() {
	v.log.Info("closing viewer")

	if v.uploader != nil {
		v.uploader.ReleaseBuffer(v.mesh)
		v.uploader.ReleaseTexture(v.texture)
	}
	if v.program != 0 {
		gl.DeleteProgram(v.program)
	}
	if v.assets != nil {
		if err := v.assets.Close(); err != nil {
			v.log.Warn("closing asset sources", zap.Error(err))
		}
	}
	if v.window != nil {
		v.window.Close()
	}
}
