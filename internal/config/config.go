package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/openstat-dev/snatree/internal/model"
	"github.com/openstat-dev/snatree/internal/parser"
)

// FileName is the config file written by `snatree init`.
const FileName = "snatree.yaml"

// Config represents the top-level snatree.yaml configuration.
type Config struct {
	Markers   MarkersConfig   `yaml:"markers" toml:"markers"`
	Output    OutputConfig    `yaml:"output" toml:"output"`
	Workspace WorkspaceConfig `yaml:"workspace" toml:"workspace"`
	Git       GitConfig       `yaml:"git" toml:"git"`
	Server    ServerConfig    `yaml:"server" toml:"server"`
}

// MarkersConfig holds the sheet labels the parser recognizes.
type MarkersConfig struct {
	CodeMarker      string `yaml:"code_marker" toml:"code_marker"`
	Resources       string `yaml:"resources" toml:"resources"`
	Uses            string `yaml:"uses" toml:"uses"`
	Total           string `yaml:"total" toml:"total"`
	IncludingPrefix string `yaml:"including_prefix" toml:"including_prefix"`
	TitleColumn     int    `yaml:"title_column" toml:"title_column"` // 0-based
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Format        string `yaml:"format" toml:"format"`
	Indent        int    `yaml:"indent" toml:"indent"`
	MarkdownStyle string `yaml:"markdown_style" toml:"markdown_style"` // glamour style for `show`
}

// WorkspaceConfig locates the directories used by `snatree import`.
type WorkspaceConfig struct {
	ImportDir    string `yaml:"import_dir" toml:"import_dir"`
	ProcessedDir string `yaml:"processed_dir" toml:"processed_dir"`
	OutputDir    string `yaml:"output_dir" toml:"output_dir"`
	LogDir       string `yaml:"log_dir" toml:"log_dir"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit" toml:"auto_commit"`
	AuthorName  string `yaml:"author_name" toml:"author_name"`
	AuthorEmail string `yaml:"author_email" toml:"author_email"`
}

// ServerConfig controls `snatree serve`.
type ServerConfig struct {
	Addr           string `yaml:"addr" toml:"addr"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" toml:"max_upload_bytes"`
}

// ParserOptions converts the markers into parser options.
func (m MarkersConfig) ParserOptions() parser.Options {
	return parser.Options{
		CodeMarker:      m.CodeMarker,
		ResourcesLabel:  m.Resources,
		UsesLabel:       m.Uses,
		TotalLabel:      m.Total,
		IncludingPrefix: m.IncludingPrefix,
		TitleColumn:     m.TitleColumn,
	}
}

type codec struct {
	unmarshal func([]byte, any) error
	marshal   func(any) ([]byte, error)
}

func codecFor(path string) (codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return codec{unmarshal: yaml.Unmarshal, marshal: yaml.Marshal}, nil
	case ".toml":
		return codec{unmarshal: toml.Unmarshal, marshal: toml.Marshal}, nil
	default:
		return codec{}, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}

// Load reads a YAML or TOML config file from disk. Keys missing from the
// file keep their default values.
func Load(path string) (*Config, error) {
	c, err := codecFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := c.unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config as YAML or TOML depending on the file extension.
func Save(path string, cfg *Config) error {
	c, err := codecFor(path)
	if err != nil {
		return err
	}
	data, err := c.marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config matching the published report layout.
func Default() *Config {
	return &Config{
		Markers: MarkersConfig{
			CodeMarker:      parser.DefaultCodeMarker,
			Resources:       model.ResourcesLabel,
			Uses:            model.UsesLabel,
			Total:           parser.DefaultTotalLabel,
			IncludingPrefix: parser.DefaultIncludingPrefix,
			TitleColumn:     parser.DefaultTitleColumn,
		},
		Output: OutputConfig{
			Format:        "json",
			Indent:        2,
			MarkdownStyle: "auto",
		},
		Workspace: WorkspaceConfig{
			ImportDir:    "import",
			ProcessedDir: "import/processed",
			OutputDir:    "output",
			LogDir:       "logs",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "snatree",
			AuthorEmail: "snatree@localhost",
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8087",
			MaxUploadBytes: 32 << 20,
		},
	}
}

// Resolve loads path when it is set, then <dir>/snatree.yaml when it exists,
// and falls back to defaults.
func Resolve(path, dir string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	candidate := filepath.Join(dir, FileName)
	if _, err := os.Stat(candidate); err == nil {
		return Load(candidate)
	}
	return Default(), nil
}
