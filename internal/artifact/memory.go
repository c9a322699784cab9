package artifact

import (
	"context"
	"sort"
	"time"
)

// Memory keeps artifacts in process, keyed by id/name.
type Memory struct {
	objects map[string]memoryObject
}

type memoryObject struct {
	artifact Artifact
	payload  []byte
}

// NewMemory returns an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{objects: map[string]memoryObject{}}
}

// Driver implements Sink.
func (m *Memory) Driver() Driver { return DriverMemory }

// Put implements Sink.
func (m *Memory) Put(ctx context.Context, id, name string, payload []byte, contentType string) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	key := objectKey("", id, name)
	a := Artifact{
		ID:          id,
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(payload)),
		Location:    "memory://" + key,
		CreatedAt:   time.Now(),
	}
	m.objects[key] = memoryObject{artifact: a, payload: append([]byte(nil), payload...)}
	return a, nil
}

// Get returns a stored payload.
func (m *Memory) Get(id, name string) ([]byte, bool) {
	obj, ok := m.objects[objectKey("", id, name)]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), obj.payload...), true
}

// List returns stored artifacts ordered by location.
func (m *Memory) List() []Artifact {
	out := make([]Artifact, 0, len(m.objects))
	for _, obj := range m.objects {
		out = append(out, obj.artifact)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Location < out[j].Location })
	return out
}
