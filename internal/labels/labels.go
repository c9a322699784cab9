// Package labels keeps the ordered list of value labels for a plate.
package labels

import "fmt"

// DefaultLabels are the labels a new registry starts with.
var DefaultLabels = []string{"Gene", "Sample"}

// Registry is an ordered list of value labels. Names are not required to be
// unique; AddDefault numbers its labels from a counter that only grows.
type Registry struct {
	names   []string
	counter int
}

// New returns a registry seeded with DefaultLabels and a counter of 1.
func New() *Registry {
	return &Registry{
		names:   append([]string(nil), DefaultLabels...),
		counter: 1,
	}
}

// Labels returns a copy of the current labels.
func (r *Registry) Labels() []string {
	return append([]string(nil), r.names...)
}

// Len returns the number of labels.
func (r *Registry) Len() int {
	return len(r.names)
}

// Counter returns the number the next default label will use.
func (r *Registry) Counter() int {
	return r.counter
}

// Rename replaces the label at index.
func (r *Registry) Rename(index int, name string) error {
	if index < 0 || index >= len(r.names) {
		return fmt.Errorf("label index %d out of range [0,%d)", index, len(r.names))
	}
	r.names[index] = name
	return nil
}

// AddDefault appends "New Value N" and returns it.
func (r *Registry) AddDefault() string {
	name := fmt.Sprintf("New Value %d", r.counter)
	r.names = append(r.names, name)
	r.counter++
	return name
}

// Remove deletes the label at index. The last label cannot be removed.
func (r *Registry) Remove(index int) error {
	if index < 0 || index >= len(r.names) {
		return fmt.Errorf("label index %d out of range [0,%d)", index, len(r.names))
	}
	if len(r.names) == 1 {
		return fmt.Errorf("cannot remove the only label")
	}
	r.names = append(r.names[:index], r.names[index+1:]...)
	return nil
}

// Duplicates lists names used more than once, in first-seen order.
func (r *Registry) Duplicates() []string {
	counts := make(map[string]int, len(r.names))
	var dups []string
	for _, name := range r.names {
		counts[name]++
		if counts[name] == 2 {
			dups = append(dups, name)
		}
	}
	return dups
}
