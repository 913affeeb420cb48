package circlebuf

import "testing"

func TestOffset(t *testing.T) {
	tests := []struct {
		name     string
		o        offset
		n, c     int
		add, sub offset
	}{
		{"zero capacity", 0, 5, 0, 0, 0},
		{"no wrap", 2, 3, 10, 5, 9},
		{"add to end", 6, 4, 10, 0, 2},
		{"wrap both", 8, 5, 10, 3, 3},
		{"full turn", 3, 10, 10, 3, 3},
		{"sub to zero", 4, 4, 10, 8, 0},
		{"sub underflow", 0, 1, 4, 1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.o.add(tt.n, tt.c); got != tt.add {
				t.Errorf("add=%d, want %d", got, tt.add)
			}
			if got := tt.o.sub(tt.n, tt.c); got != tt.sub {
				t.Errorf("sub=%d, want %d", got, tt.sub)
			}
		})
	}
}

func TestSpans(t *testing.T) {
	tests := []struct {
		name          string
		off           offset
		n, c          int
		first, second span
	}{
		{"empty", 3, 0, 8, span{}, span{}},
		{"inside", 1, 4, 8, span{1, 5}, span{}},
		{"touch end", 4, 4, 8, span{4, 8}, span{}},
		{"split", 6, 4, 8, span{6, 8}, span{0, 2}},
		{"whole ring from middle", 5, 8, 8, span{5, 8}, span{0, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, second := spans(tt.off, tt.n, tt.c)
			if first != tt.first || second != tt.second {
				t.Errorf("got=%v,%v want %v,%v", first, second, tt.first, tt.second)
			}
			if first.len()+second.len() != tt.n {
				t.Errorf("covered %d bytes, want %d", first.len()+second.len(), tt.n)
			}
		})
	}
}
