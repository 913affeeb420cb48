package spool

import (
	"time"

	"github.com/google/uuid"

	"github.com/haivivi/circlebuf/pkg/bmem"
	"github.com/haivivi/circlebuf/pkg/circlebuf"
)

// Snapshot is the saved content of a buffer.
type Snapshot struct {
	ID        string    `msgpack:"id" json:"id" yaml:"id"`
	Name      string    `msgpack:"name" json:"name" yaml:"name"`
	Capacity  int       `msgpack:"capacity" json:"capacity" yaml:"capacity"`
	Size      int       `msgpack:"size" json:"size" yaml:"size"`
	CreatedAt time.Time `msgpack:"created_at" json:"created_at" yaml:"created_at"`
	Data      []byte    `msgpack:"data" json:"-" yaml:"-"`
}

// Info is a snapshot without its data. It decodes from the same msgpack
// encoding as Snapshot.
type Info struct {
	ID        string    `msgpack:"id" json:"id" yaml:"id"`
	Name      string    `msgpack:"name" json:"name" yaml:"name"`
	Capacity  int       `msgpack:"capacity" json:"capacity" yaml:"capacity"`
	Size      int       `msgpack:"size" json:"size" yaml:"size"`
	CreatedAt time.Time `msgpack:"created_at" json:"created_at" yaml:"created_at"`
}

// Capture copies the content of b into a new snapshot. b is not modified.
func Capture(name string, b *circlebuf.Buffer) *Snapshot {
	data := make([]byte, b.Len())
	b.PeekFront(data)
	return &Snapshot{
		ID:        newID(),
		Name:      name,
		Capacity:  b.Cap(),
		Size:      len(data),
		CreatedAt: time.Now().UTC(),
		Data:      data,
	}
}

// Buffer rebuilds a buffer with the snapshot's capacity and content. A nil
// allocator uses bmem.Default.
func (s *Snapshot) Buffer(a bmem.Allocator) *circlebuf.Buffer {
	b := circlebuf.New(a)
	b.Reserve(max(s.Capacity, len(s.Data)))
	b.PushBack(s.Data)
	return b
}

// Info returns the snapshot metadata.
func (s *Snapshot) Info() Info {
	return Info{
		ID:        s.ID,
		Name:      s.Name,
		Capacity:  s.Capacity,
		Size:      s.Size,
		CreatedAt: s.CreatedAt,
	}
}

// newID returns a time-ordered identifier so index order follows creation.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
