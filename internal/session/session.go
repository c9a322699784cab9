// Package session owns the state of one plate mapping session: the active
// plate type, its value labels and one grid per label.
package session

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/platemap/internal/export"
	"github.com/verte-zerg/platemap/internal/grid"
	"github.com/verte-zerg/platemap/internal/labels"
	"github.com/verte-zerg/platemap/internal/plate"
)

// ErrNoPlate is returned by operations that need an active plate.
var ErrNoPlate = errors.New("no plate selected")

// Session is driven by a single host; it is not safe for concurrent use.
//
// Label registries are kept per plate type so switching back to a plate shows
// the labels it had. Grids are always recreated on a switch.
type Session struct {
	plate      plate.Type
	registries map[plate.Type]*labels.Registry
	grids      []*grid.Grid
}

// New returns a session with no plate selected.
func New() *Session {
	return &Session{registries: map[plate.Type]*labels.Registry{}}
}

// Plate returns the active plate type (plate.None when unset).
func (s *Session) Plate() plate.Type {
	return s.plate
}

// Geometry returns the geometry of the active plate.
func (s *Session) Geometry() plate.Geometry {
	return s.plate.Geometry()
}

// SelectPlate activates t and discards every grid. plate.None resets the
// session to the selector state.
func (s *Session) SelectPlate(t plate.Type) error {
	if t != plate.None && !t.Valid() {
		return fmt.Errorf("unsupported plate type %d", int(t))
	}
	s.plate = t
	s.grids = nil
	if t == plate.None {
		return nil
	}
	reg, ok := s.registries[t]
	if !ok {
		reg = labels.New()
		s.registries[t] = reg
	}
	s.grids = make([]*grid.Grid, reg.Len())
	for i := range s.grids {
		s.grids[i] = grid.New(t.Geometry())
	}
	return nil
}

// Labels returns the labels of the active plate.
func (s *Session) Labels() []string {
	reg := s.registry()
	if reg == nil {
		return nil
	}
	return reg.Labels()
}

// Duplicates returns label names used more than once.
func (s *Session) Duplicates() []string {
	reg := s.registry()
	if reg == nil {
		return nil
	}
	return reg.Duplicates()
}

// AddLabel appends a default label with an empty grid and returns its name.
func (s *Session) AddLabel() (string, error) {
	reg := s.registry()
	if reg == nil {
		return "", ErrNoPlate
	}
	name := reg.AddDefault()
	s.grids = append(s.grids, grid.New(s.plate.Geometry()))
	return name, nil
}

// RenameLabel renames the label at index; its grid is kept.
func (s *Session) RenameLabel(index int, name string) error {
	reg := s.registry()
	if reg == nil {
		return ErrNoPlate
	}
	return reg.Rename(index, name)
}

// RemoveLabel drops the label at index together with its grid.
func (s *Session) RemoveLabel(index int) error {
	reg := s.registry()
	if reg == nil {
		return ErrNoPlate
	}
	if err := reg.Remove(index); err != nil {
		return err
	}
	s.grids = append(s.grids[:index], s.grids[index+1:]...)
	return nil
}

// Grid returns the grid for the label at index.
func (s *Session) Grid(index int) (*grid.Grid, error) {
	if s.registry() == nil {
		return nil, ErrNoPlate
	}
	if index < 0 || index >= len(s.grids) {
		return nil, fmt.Errorf("label index %d out of range [0,%d)", index, len(s.grids))
	}
	return s.grids[index], nil
}

// SetCell writes one well of the grid at index.
func (s *Session) SetCell(index int, w plate.Well, value string) error {
	g, err := s.Grid(index)
	if err != nil {
		return err
	}
	return g.Set(w, value)
}

// ApplySnapshot replaces the grid at index with a full rows x cols snapshot.
func (s *Session) ApplySnapshot(index int, snapshot [][]string) error {
	g, err := s.Grid(index)
	if err != nil {
		return err
	}
	return g.Replace(snapshot)
}

// SetGrid installs a prepared grid for the label at index. The grid must match
// the active plate.
func (s *Session) SetGrid(index int, g *grid.Grid) error {
	if _, err := s.Grid(index); err != nil {
		return err
	}
	if g.Geometry() != s.plate.Geometry() {
		return fmt.Errorf("grid does not match %s: %w", s.plate.Title(), grid.ErrOutOfRange)
	}
	s.grids[index] = g
	return nil
}

// Merge combines every grid into the export table.
func (s *Session) Merge() (export.Table, error) {
	reg := s.registry()
	if reg == nil {
		return export.Table{}, ErrNoPlate
	}
	names := reg.Labels()
	rows, err := export.Merge(s.grids, names)
	if err != nil {
		return export.Table{}, err
	}
	return export.NewTable(rows, names), nil
}

func (s *Session) registry() *labels.Registry {
	if s.plate == plate.None {
		return nil
	}
	return s.registries[s.plate]
}
