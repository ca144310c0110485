package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the full runtime configuration. It is loaded once at
// startup and passed by reference into every component; nothing mutates
// it after main has applied flag overrides.
type Config struct {
	// InputDir is the directory scanned for source clips
	InputDir string `yaml:"input_dir"`

	// ScratchDir is where normalized clips and the concat list are written.
	// It is wiped and recreated at the start of every run.
	ScratchDir string `yaml:"scratch_dir"`

	// OutputFile is the final merged video path
	OutputFile string `yaml:"output_file"`

	// Extensions is the ordered list of recognized video file extensions
	// (no leading dot). Scan order follows this list.
	Extensions []string `yaml:"extensions"`

	// TargetWidth/TargetHeight define the canvas every clip is normalized to
	TargetWidth  int `yaml:"target_width"`
	TargetHeight int `yaml:"target_height"`

	// Mode selects the encoder: "software" (libx264) or "hardware"
	// (h264_nvenc). Empty means prompt at startup.
	Mode string `yaml:"mode"`

	// FFmpegPath is the path to the ffmpeg binary (default: "ffmpeg")
	FFmpegPath string `yaml:"ffmpeg_path"`

	// FFprobePath is the path to the ffprobe binary (default: "ffprobe")
	FFprobePath string `yaml:"ffprobe_path"`

	// HistoryDB is the sqlite file recording past runs.
	// Empty disables run history.
	HistoryDB string `yaml:"history_db"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		InputDir:     ".",
		ScratchDir:   "normalized_tmp",
		OutputFile:   "merged.mp4",
		Extensions:   []string{"mp4", "mov", "avi", "mkv", "flv", "ts"},
		TargetWidth:  1920,
		TargetHeight: 1080,
		FFmpegPath:   "ffmpeg",
		FFprobePath:  "ffprobe",
		HistoryDB:    "vidstitch.db",
		LogLevel:     "info",
	}
}

// Load reads config from a YAML file, applying defaults for missing values
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file - use defaults
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Apply defaults for empty values
	if cfg.InputDir == "" {
		cfg.InputDir = "."
	}
	if cfg.ScratchDir == "" {
		cfg.ScratchDir = "normalized_tmp"
	}
	if cfg.OutputFile == "" {
		cfg.OutputFile = "merged.mp4"
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultConfig().Extensions
	}
	if cfg.TargetWidth <= 0 {
		cfg.TargetWidth = 1920
	}
	if cfg.TargetHeight <= 0 {
		cfg.TargetHeight = 1080
	}
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}

	return cfg, nil
}

// Save writes the config to a YAML file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the invariants the rest of the pipeline relies on.
func (c *Config) Validate() error {
	if c.TargetWidth <= 0 || c.TargetHeight <= 0 {
		return fmt.Errorf("target canvas must be positive, got %dx%d", c.TargetWidth, c.TargetHeight)
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("no video extensions configured")
	}
	if c.ScratchDir == "" {
		return fmt.Errorf("scratch_dir must not be empty")
	}
	return nil
}

// ListPath returns the concat list artifact path inside the scratch dir
func (c *Config) ListPath() string {
	return filepath.Join(c.ScratchDir, "file_list.txt")
}
