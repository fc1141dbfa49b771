package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"golang.org/x/text/language"

	"github.com/viyanta/viyanta-web-sub000/internal/theme"
	"github.com/viyanta/viyanta-web-sub000/pkg/tablemodel"
)

type Config struct {
	Core         CoreConfig            `toml:"core"`
	Vocabulary   tablemodel.Vocabulary `toml:"vocabulary"`
	Colors       theme.Names           `toml:"colors"`
	Viewer       ViewerConfig          `toml:"viewer"`
	Collaborator CollaboratorConfig    `toml:"collaborator"`
	Cache        CacheConfig           `toml:"cache"`
	Forms        FormsConfig           `toml:"forms"`
	Server       ServerConfig          `toml:"server"`
}

type CoreConfig struct {
	Locale             string `toml:"locale"`
	DocumentInfoWindow int    `toml:"document_info_window"`
	MaxCellWidth       int    `toml:"max_cell_width"`
}

type ViewerConfig struct {
	Alphabet  string `toml:"alphabet"`
	Clipboard bool   `toml:"clipboard"`
	OSC52     bool   `toml:"osc52"`
}

type CollaboratorConfig struct {
	BaseURL string        `toml:"base_url"`
	Token   string        `toml:"token"`
	Timeout time.Duration `toml:"timeout"`
}

type CacheConfig struct {
	Enabled bool          `toml:"enabled"`
	Path    string        `toml:"path"`
	MaxAge  time.Duration `toml:"max_age"`
}

type FormsConfig struct {
	Enabled []string `toml:"enabled"`
}

type ServerConfig struct {
	Listen string `toml:"listen"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Core: CoreConfig{
			Locale:             tablemodel.DefaultLocale,
			DocumentInfoWindow: tablemodel.DefaultDocumentInfoWindow,
			MaxCellWidth:       40,
		},
		Vocabulary: tablemodel.DefaultVocabulary(),
		Colors:     theme.DefaultNames(),
		Viewer: ViewerConfig{
			Alphabet:  "qwerty",
			Clipboard: true,
			OSC52:     true,
		},
		Collaborator: CollaboratorConfig{
			Timeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    filepath.Join(xdg.CacheHome, appName, "documents.db"),
			MaxAge:  24 * time.Hour,
		},
		Forms: FormsConfig{
			Enabled: []string{},
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:8080",
		},
	}
}

// DefaultConfigPath returns the config file under the XDG config directory
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

func LoadConfigFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil // no config file, return defaults
	}

	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("failed to decode TOML config: %w", err)
	}

	return config, nil
}

// Engine builds the normalization engine described by the config
func (c *Config) Engine() (*tablemodel.Engine, error) {
	tag, err := language.Parse(c.Core.Locale)
	if err != nil {
		return nil, fmt.Errorf("core.locale: %w", err)
	}
	return tablemodel.NewEngine(
		tablemodel.WithVocabulary(c.Vocabulary),
		tablemodel.WithDocumentInfoWindow(c.Core.DocumentInfoWindow),
		tablemodel.WithLocale(tag),
	), nil
}

// Theme parses the configured colors
func (c *Config) Theme() (theme.Theme, error) {
	return theme.New(c.Colors)
}
