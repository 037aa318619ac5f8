// Package config builds the run configuration from the environment,
// an optional YAML file and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultFile is the config file picked up when --config is not given.
	DefaultFile = ".github/contributors.yml"

	DefaultTargetFile  = "README.md"
	DefaultStartMarker = "<!-- CONTRIBUTOR_STATS_START -->"
	DefaultEndMarker   = "<!-- CONTRIBUTOR_STATS_END -->"
	DefaultAssetPath   = ".github/assets/contributors.svg"
	DefaultTitle       = "Contributors"
	DefaultColumns     = 10
	DefaultAvatarSize  = 64
	DefaultConcurrency = 4
)

// Rendering styles.
const (
	StyleTable = "table"
	StyleFlow  = "flow"
	StyleSVG   = "svg"
)

// API backends.
const (
	APIREST    = "rest"
	APIGraphQL = "graphql"
)

var (
	ErrMissingToken      = errors.New("GITHUB_TOKEN environment variable is not set")
	ErrInvalidRepository = errors.New("repository must be in owner/name form")
)

// Config is constructed once at process start and passed to every component.
type Config struct {
	Token      string `yaml:"-"`
	Repository string `yaml:"repository"`
	TargetFile string `yaml:"target_file"`

	Branches    []string `yaml:"branches"`
	API         string   `yaml:"api"`
	Style       string   `yaml:"style"`
	Columns     int      `yaml:"columns"`
	AvatarSize  int      `yaml:"avatar_size"`
	AssetPath   string   `yaml:"asset_path"`
	Concurrency int      `yaml:"concurrency"`

	StartMarker string `yaml:"start_marker"`
	EndMarker   string `yaml:"end_marker"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Default returns a Config populated with the built-in defaults.
func Default() Config {
	return Config{
		TargetFile:  DefaultTargetFile,
		Branches:    []string{"backend", "frontend"},
		API:         APIREST,
		Style:       StyleSVG,
		Columns:     DefaultColumns,
		AvatarSize:  DefaultAvatarSize,
		AssetPath:   DefaultAssetPath,
		Concurrency: DefaultConcurrency,
		StartMarker: DefaultStartMarker,
		EndMarker:   DefaultEndMarker,
		Title:       DefaultTitle,
	}
}

// Load reads the environment and, if present, the YAML file at file.
// A missing file is only an error when explicit is true.
// Values from the file take precedence over the environment.
func Load(file string, explicit bool, getenv func(string) string) (Config, error) {
	cfg := Default()
	cfg.Token = getenv("GITHUB_TOKEN")
	if v := getenv("GITHUB_REPOSITORY"); v != "" {
		cfg.Repository = v
	}
	if v := getenv("TARGET_FILE"); v != "" {
		cfg.TargetFile = v
	}

	if file == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", file, err)
	}
	// Unmarshal on top of the defaults so unset keys keep their values.
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", file, err)
	}
	return cfg, nil
}

// Validate checks the configuration before any network call is made.
func (c Config) Validate() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	if _, _, err := c.OwnerRepo(); err != nil {
		return err
	}
	if len(c.Branches) == 0 {
		return errors.New("config: at least one branch is required")
	}
	switch c.API {
	case APIREST, APIGraphQL:
	default:
		return fmt.Errorf("config: unknown api %q", c.API)
	}
	switch c.Style {
	case StyleTable, StyleFlow, StyleSVG:
	default:
		return fmt.Errorf("config: unknown style %q", c.Style)
	}
	if c.Columns <= 0 {
		return fmt.Errorf("config: columns must be positive, got %d", c.Columns)
	}
	if c.StartMarker == "" || c.EndMarker == "" || c.StartMarker == c.EndMarker {
		return errors.New("config: start and end markers must be distinct and non-empty")
	}
	return nil
}

// OwnerRepo splits Repository into its owner and name.
func (c Config) OwnerRepo() (string, string, error) {
	owner, name, ok := strings.Cut(c.Repository, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepository, c.Repository)
	}
	return owner, name, nil
}

// AssetLink returns the asset path relative to the target document's
// directory, in slash form for use inside markup.
func (c Config) AssetLink() string {
	rel, err := filepath.Rel(filepath.Dir(c.TargetFile), c.AssetPath)
	if err != nil {
		return filepath.ToSlash(c.AssetPath)
	}
	link := filepath.ToSlash(rel)
	if !strings.HasPrefix(link, "../") {
		link = "./" + path.Clean(link)
	}
	return link
}
