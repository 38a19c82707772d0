// Package config handles viewer and tool configuration loading.
package config

// Config holds all settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Assets  AssetsConfig  `yaml:"assets"`
	Preview PreviewConfig `yaml:"preview"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// AssetsConfig holds asset sources and what to load at startup.
type AssetsConfig struct {
	Dirs     []string `yaml:"dirs"`     // Directory roots, searched after archives
	Archives []string `yaml:"archives"` // GRF archives, last one wins
	Mesh     string   `yaml:"mesh"`
	Texture  string   `yaml:"texture"`
	Indexed  bool     `yaml:"indexed"` // Merge identical vertices before upload

	StrictFormat bool `yaml:"strict_format"` // Reject unknown texture compression codes
	TrustLevels  bool `yaml:"trust_levels"`  // Size texture payloads by the bytes present
}

// PreviewConfig holds image export settings.
type PreviewConfig struct {
	MaxSize int `yaml:"max_size"` // Longest edge in pixels, 0 keeps the surface size
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "Midgard Asset Viewer",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Assets: AssetsConfig{
			Dirs: []string{"."},
		},
		Preview: PreviewConfig{
			MaxSize: 256,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
