package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	// DefaultBaseDir is the directory under $HOME holding all app state.
	DefaultBaseDir = ".circlebuf"
	// DefaultConfigFile is the config file name inside the app directory.
	DefaultConfigFile = "config.yaml"
)

// Config is the on-disk configuration of one app.
type Config struct {
	AppName string `yaml:"-" json:"-"`

	// CurrentContext names the context used when none is given.
	CurrentContext string `yaml:"current_context,omitempty" json:"current_context,omitempty"`

	Contexts map[string]*Context `yaml:"contexts,omitempty" json:"contexts,omitempty"`

	configPath string
}

// Context is a named set of buffer and storage settings.
type Context struct {
	Name string `yaml:"name" json:"name"`

	// InitialCapacity is reserved in new buffers, in bytes.
	InitialCapacity int `yaml:"initial_capacity,omitempty" json:"initial_capacity,omitempty"`

	// MaxBytes caps the allocator. Zero means unlimited.
	MaxBytes int64 `yaml:"max_bytes,omitempty" json:"max_bytes,omitempty"`

	// SpoolDir holds the snapshot index and local archive. Defaults to
	// <app dir>/spool.
	SpoolDir string `yaml:"spool_dir,omitempty" json:"spool_dir,omitempty"`

	// S3 archives snapshots to a bucket instead of the local archive.
	S3 *S3Config `yaml:"s3,omitempty" json:"s3,omitempty"`

	// Format is the PCM format name used by audio commands.
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
}

// S3Config locates an S3 or S3-compatible bucket.
type S3Config struct {
	Bucket    string `yaml:"bucket" json:"bucket"`
	Prefix    string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Region    string `yaml:"region,omitempty" json:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	AccessKey string `yaml:"access_key,omitempty" json:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty" json:"secret_key,omitempty"`
}

// LoadConfig loads the config of appName from its default location.
func LoadConfig(appName string) (*Config, error) {
	return LoadConfigWithPath(appName, "")
}

// LoadConfigWithPath loads the config from customPath, or from the default
// location when customPath is empty. A missing file is created empty.
func LoadConfigWithPath(appName, customPath string) (*Config, error) {
	configPath := customPath
	if configPath == "" {
		paths, err := NewPaths(appName)
		if err != nil {
			return nil, fmt.Errorf("cli: home directory: %w", err)
		}
		configPath = paths.ConfigFile()
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return nil, fmt.Errorf("cli: create config directory: %w", err)
	}

	cfg := &Config{
		AppName:    appName,
		Contexts:   make(map[string]*Context),
		configPath: configPath,
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return cfg, cfg.Save()
	}
	if err != nil {
		return nil, fmt.Errorf("cli: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cli: parse config %s: %w", configPath, err)
	}
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	cfg.AppName = appName
	cfg.configPath = configPath
	return cfg, nil
}

// Save writes the config back to disk.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("cli: marshal config: %w", err)
	}
	if err := os.WriteFile(c.configPath, data, 0o600); err != nil {
		return fmt.Errorf("cli: write config: %w", err)
	}
	return nil
}

// Path returns the config file path.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory holding the config file.
func (c *Config) Dir() string {
	return filepath.Dir(c.configPath)
}

// AddContext stores ctx under name, replacing any existing context, and
// saves.
func (c *Config) AddContext(name string, ctx *Context) error {
	if name == "" {
		return fmt.Errorf("cli: empty context name")
	}
	ctx.Name = name
	c.Contexts[name] = ctx
	return c.Save()
}

// DeleteContext removes a context and saves.
func (c *Config) DeleteContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("cli: context %q not found", name)
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return c.Save()
}

// UseContext makes name the current context and saves.
func (c *Config) UseContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("cli: context %q not found", name)
	}
	c.CurrentContext = name
	return c.Save()
}

// GetContext returns the named context.
func (c *Config) GetContext(name string) (*Context, error) {
	ctx, ok := c.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("cli: context %q not found", name)
	}
	return ctx, nil
}

// ResolveContext returns the named context, the current one when name is
// empty, or a zero context when neither exists.
func (c *Config) ResolveContext(name string) (*Context, error) {
	if name != "" {
		return c.GetContext(name)
	}
	if c.CurrentContext == "" {
		return &Context{}, nil
	}
	return c.GetContext(c.CurrentContext)
}

// ListContexts returns the context names in sorted order.
func (c *Config) ListContexts() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SpoolDir returns the spool directory for ctx.
func (c *Config) SpoolDir(ctx *Context) string {
	if ctx != nil && ctx.SpoolDir != "" {
		return ctx.SpoolDir
	}
	return filepath.Join(c.Dir(), "spool")
}

// MaskSecret hides all but the first and last four characters of s.
func MaskSecret(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}
