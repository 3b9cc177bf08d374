// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultFiles are probed in order when no explicit config path is given.
var DefaultFiles = []string{"site.yaml", "site.yml", "site.toml"}

var (
	ErrConfigRead   = errors.New("could not read config file")
	ErrConfigParse  = errors.New("could not parse config file")
	ErrConfigFormat = errors.New("unsupported config format")
)

// OGConfig controls generation of the social preview image.
type OGConfig struct {
	Enabled    *bool  `yaml:"enabled" toml:"enabled"`
	Filename   string `yaml:"filename" toml:"filename"`
	Background string `yaml:"background" toml:"background"`
	Foreground string `yaml:"foreground" toml:"foreground"`
	Accent     string `yaml:"accent" toml:"accent"`
}

// On reports whether OG images should be generated. Unset means yes.
func (o OGConfig) On() bool {
	return o.Enabled == nil || *o.Enabled
}

// SiteConfig holds the configuration from site.yaml or site.toml.
// Every field has a usable default, so a site with no config file still builds.
type SiteConfig struct {
	Title       string `yaml:"title" toml:"title"`
	Description string `yaml:"description" toml:"description"`
	BaseURL     string `yaml:"base_url" toml:"base_url"`

	ArticlesDir     string `yaml:"articles_dir" toml:"articles_dir"`
	ArticleFile     string `yaml:"article_file" toml:"article_file"`
	ThumbnailFile   string `yaml:"thumbnail_file" toml:"thumbnail_file"`
	ArticleTemplate string `yaml:"article_template" toml:"article_template"`
	IndexTemplate   string `yaml:"index_template" toml:"index_template"`
	IndexOutput     string `yaml:"index_output" toml:"index_output"`

	PlotsMetadata string `yaml:"plots_metadata" toml:"plots_metadata"`
	PlotsURL      string `yaml:"plots_url" toml:"plots_url"`

	WordsPerMinute int      `yaml:"words_per_minute" toml:"words_per_minute"`
	Workers        int      `yaml:"workers" toml:"workers"`
	Sort           string   `yaml:"sort" toml:"sort"`
	DateLayouts    []string `yaml:"date_layouts" toml:"date_layouts"`
	NoJekyll       bool     `yaml:"nojekyll" toml:"nojekyll"`

	OG OGConfig `yaml:"og" toml:"og"`

	// Root is the directory every relative path above is resolved against.
	// It is not read from the file.
	Root string `yaml:"-" toml:"-"`
}

const (
	SortDate = "date"
	SortRaw  = "raw"
)

// Default returns a SiteConfig rooted at root with every default applied.
func Default(root string) SiteConfig {
	cfg := SiteConfig{Root: root}
	cfg.setDefaults()
	return cfg
}

func (c *SiteConfig) setDefaults() {
	if c.Root == "" {
		c.Root = "."
	}
	if c.ArticlesDir == "" {
		c.ArticlesDir = "articles"
	}
	if c.ArticleFile == "" {
		c.ArticleFile = "article.md"
	}
	if c.ThumbnailFile == "" {
		c.ThumbnailFile = "thumbnail.png"
	}
	if c.ArticleTemplate == "" {
		c.ArticleTemplate = "article_template.html"
	}
	if c.IndexTemplate == "" {
		c.IndexTemplate = "index_template.html"
	}
	if c.IndexOutput == "" {
		c.IndexOutput = "index.html"
	}
	if c.PlotsMetadata == "" {
		c.PlotsMetadata = filepath.Join("_plots", "plots_metadata.json")
	}
	if c.PlotsURL == "" {
		c.PlotsURL = "assets/plots"
	}
	if c.WordsPerMinute <= 0 {
		c.WordsPerMinute = 265
	}
	if c.Sort == "" {
		c.Sort = SortDate
	}
	if len(c.DateLayouts) == 0 {
		c.DateLayouts = []string{"02/01/2006", "2006-01-02", "Jan 2, 2006", "January 2, 2006", "2 January 2006"}
	}
	if c.OG.Filename == "" {
		c.OG.Filename = "og.png"
	}
	if c.OG.Background == "" {
		c.OG.Background = "#1e1e2e"
	}
	if c.OG.Foreground == "" {
		c.OG.Foreground = "#f5f5f5"
	}
	if c.OG.Accent == "" {
		c.OG.Accent = "#89b4fa"
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
}

// Path resolves a configured path against the site root.
func (c SiteConfig) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// LoadSiteConfig reads the config at path. The format is picked by extension.
// Relative paths in the file are resolved against the file's directory.
func LoadSiteConfig(path string) (SiteConfig, error) {
	cfg := SiteConfig{}
	data, err := os.ReadFile(path)
	if err != nil {
		return SiteConfig{}, fmt.Errorf("%w at %s: %w", ErrConfigRead, path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return SiteConfig{}, fmt.Errorf("%w: %s", ErrConfigFormat, path)
	}
	if err != nil {
		return SiteConfig{}, fmt.Errorf("%w %s: %w", ErrConfigParse, path, err)
	}

	cfg.Root = filepath.Dir(path)
	cfg.setDefaults()
	return cfg, nil
}

// Discover loads the first default config file found in root. When none
// exists, it returns the defaults and an empty path.
func Discover(root string) (SiteConfig, string, error) {
	for _, name := range DefaultFiles {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return SiteConfig{}, "", err
		}
		cfg, err := LoadSiteConfig(path)
		return cfg, path, err
	}
	return Default(root), "", nil
}
