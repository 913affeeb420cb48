package cli

import (
	"os"
	"path/filepath"
)

// Paths lays out the per-app directories under the user's home.
type Paths struct {
	AppName string
	HomeDir string
}

// NewPaths returns the paths of appName for the current user.
func NewPaths(appName string) (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{AppName: appName, HomeDir: home}, nil
}

// BaseDir returns ~/.circlebuf.
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// AppDir returns ~/.circlebuf/<app>.
func (p *Paths) AppDir() string {
	return filepath.Join(p.BaseDir(), p.AppName)
}

// ConfigFile returns ~/.circlebuf/<app>/config.yaml.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.AppDir(), DefaultConfigFile)
}

// LogDir returns ~/.circlebuf/<app>/logs.
func (p *Paths) LogDir() string {
	return filepath.Join(p.AppDir(), "logs")
}

// LogPath returns a file path inside LogDir.
func (p *Paths) LogPath(name string) string {
	return filepath.Join(p.LogDir(), name)
}

// EnsureLogDir creates LogDir.
func (p *Paths) EnsureLogDir() error {
	return os.MkdirAll(p.LogDir(), 0o755)
}
