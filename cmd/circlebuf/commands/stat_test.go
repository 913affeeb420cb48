package commands

import (
	"strings"
	"testing"
)

func TestRunStat(t *testing.T) {
	res, err := runStat(statJob{
		Reserve: 4,
		Ops:     []string{"push:ab", "push:cd", "pop:1", "push:ef", "front:x", "zero:2", "popback:1", "place:1:Z"},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []statStep{
		{Op: "push:ab", Len: 2, Cap: 4},
		{Op: "push:cd", Len: 4, Cap: 4},
		{Op: "pop:1", Len: 3, Cap: 4, Result: "a"},
		{Op: "push:ef", Len: 5, Cap: 8},
		{Op: "front:x", Len: 6, Cap: 8},
		{Op: "zero:2", Len: 8, Cap: 8},
		{Op: "popback:1", Len: 7, Cap: 8, Result: "."},
		{Op: "place:1:Z", Len: 7, Cap: 8},
	}
	if len(res.Steps) != len(want) {
		t.Fatalf("steps=%+v", res.Steps)
	}
	for i, s := range res.Steps {
		if s != want[i] {
			t.Errorf("step %d = %+v, want %+v", i, s, want[i])
		}
	}
	if res.Contents != "xZcdef." {
		t.Errorf("contents=%q", res.Contents)
	}

	tbl := res.Table()
	if len(tbl.Rows) != len(want) || tbl.Rows[2][3] != "a" {
		t.Errorf("table=%+v", tbl)
	}
}

func TestRunStat_Errors(t *testing.T) {
	tests := []struct {
		op, want string
	}{
		{"pop:3", "exceeds length"},
		{"pop:x", "non-negative"},
		{"place:1", "place:POS:TEXT"},
		{"spin:1", "unknown operation"},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			_, err := runStat(statJob{Ops: []string{tt.op}})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err=%v, want %q", err, tt.want)
			}
		})
	}
}

func TestRunStat_Upsize(t *testing.T) {
	res, err := runStat(statJob{Ops: []string{"push:ab", "upsize:5", "peekback:3", "discard:1", "discardback:1", "reset"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Steps[1].Len != 5 || res.Steps[2].Result != "..." || res.Steps[4].Len != 3 {
		t.Errorf("steps=%+v", res.Steps)
	}
	if res.Len != 0 || res.Contents != "" {
		t.Errorf("after reset len=%d contents=%q", res.Len, res.Contents)
	}
}
