package cli

import (
	"os"
	"path/filepath"
	"testing"
)

type job struct {
	Command string `yaml:"command" json:"command"`
	Chunk   int    `yaml:"chunk" json:"chunk"`
}

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name, file, data string
	}{
		{"yaml", "job.yaml", "command: cat\nchunk: 512\n"},
		{"json", "job.json", `{"command":"cat","chunk":512}`},
		{"unknown extension", "job.txt", "command: cat\nchunk: 512\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var j job
			if err := ParseRequest([]byte(tt.data), tt.file, &j); err != nil {
				t.Fatal(err)
			}
			if j.Command != "cat" || j.Chunk != 512 {
				t.Errorf("got=%+v", j)
			}
		})
	}

	var j job
	if err := ParseRequest([]byte("{bad"), "job.json", &j); err == nil {
		t.Error("bad JSON parsed")
	}
}

func TestLoadRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yml")
	os.WriteFile(path, []byte("command: sort\n"), 0o644)
	var j job
	if err := LoadRequest(path, &j); err != nil || j.Command != "sort" {
		t.Errorf("LoadRequest=%+v,%v", j, err)
	}
	if err := LoadRequest(path+".missing", &j); err == nil {
		t.Error("missing file loaded")
	}
}
