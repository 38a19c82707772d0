package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagMesh       = flag.String("mesh", "", "Mesh to load (OBJ)")
	flagTexture    = flag.String("texture", "", "Texture to load (DDS)")
	flagArchive    = flag.String("archive", "", "GRF archive to add as a source")
	flagAssets     = flag.String("assets", "", "Directory to add as a source")
	flagIndexed    = flag.Bool("indexed", false, "Merge identical vertices before upload")
	flagStrict     = flag.Bool("strict", false, "Reject textures with an unknown compression format")
	flagTrust      = flag.Bool("trust-levels", false, "Read every mipmap level the texture header declares")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagMesh != "" {
		cfg.Assets.Mesh = *flagMesh
	}
	if *flagTexture != "" {
		cfg.Assets.Texture = *flagTexture
	}
	if *flagArchive != "" {
		cfg.Assets.Archives = append(cfg.Assets.Archives, *flagArchive)
	}
	if *flagAssets != "" {
		cfg.Assets.Dirs = append(cfg.Assets.Dirs, *flagAssets)
	}
	if *flagIndexed {
		cfg.Assets.Indexed = true
	}
	if *flagStrict {
		cfg.Assets.StrictFormat = true
	}
	if *flagTrust {
		cfg.Assets.TrustLevels = true
	}
}
