package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPaths(t *testing.T) {
	home := t.TempDir()
	p := &Paths{AppName: "circlebuf", HomeDir: home}

	app := filepath.Join(home, ".circlebuf", "circlebuf")
	if got := p.AppDir(); got != app {
		t.Errorf("AppDir()=%q", got)
	}
	if got := p.ConfigFile(); got != filepath.Join(app, "config.yaml") {
		t.Errorf("ConfigFile()=%q", got)
	}
	if got := p.LogPath("pipe.log"); got != filepath.Join(app, "logs", "pipe.log") {
		t.Errorf("LogPath()=%q", got)
	}
	if err := p.EnsureLogDir(); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(p.LogDir()); err != nil || !fi.IsDir() {
		t.Errorf("log dir not created: %v", err)
	}
}

func TestNewPaths(t *testing.T) {
	p, err := NewPaths("circlebuf")
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if p.AppName != "circlebuf" || p.HomeDir == "" {
		t.Errorf("paths=%+v", p)
	}
}
