package world

import "errors"

var ErrEmptySnapshot = errors.New("world: empty terrain snapshot")

const (
	// DefaultTerrainWidth and DefaultTerrainHeight size the generated
	// heightmap when no saved snapshot exists.
	DefaultTerrainWidth  = 32
	DefaultTerrainHeight = 32
)

// State is the server-owned world: one terrain snapshot plus a revision
// counter that bumps on every mutation. The tick loop is the single writer;
// readers take copies through Snapshot.
type State struct {
	terrain  []byte
	revision uint64
}

// NewState builds a world with a deterministic default heightmap, so a fresh
// server broadcasts the same terrain every run.
func NewState() *State {
	return &State{terrain: defaultHeightmap(DefaultTerrainWidth, DefaultTerrainHeight)}
}

// defaultHeightmap fills width*height cells with a smooth, repeatable ridge
// pattern. Values stay small so they read cleanly in debug dumps.
func defaultHeightmap(width, height int) []byte {
	out := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			ridge := (x*x + y*y) % 17
			out[y*width+x] = byte(ridge)
		}
	}
	return out
}

// Snapshot returns an owned copy of the current terrain for broadcast or
// persistence.
func (s *State) Snapshot() []byte {
	out := make([]byte, len(s.terrain))
	copy(out, s.terrain)
	return out
}

// Revision reports how many times the terrain has been replaced.
func (s *State) Revision() uint64 {
	return s.revision
}

// Restore replaces the terrain wholesale, used when loading a persisted
// snapshot at startup.
func (s *State) Restore(snapshot []byte, revision uint64) error {
	if len(snapshot) == 0 {
		return ErrEmptySnapshot
	}
	owned := make([]byte, len(snapshot))
	copy(owned, snapshot)
	s.terrain = owned
	s.revision = revision
	return nil
}

// SetTerrain installs a new terrain snapshot and bumps the revision.
func (s *State) SetTerrain(snapshot []byte) error {
	if len(snapshot) == 0 {
		return ErrEmptySnapshot
	}
	owned := make([]byte, len(snapshot))
	copy(owned, snapshot)
	s.terrain = owned
	s.revision++
	return nil
}

// SnapshotLen reports the terrain size for status views.
func (s *State) SnapshotLen() int {
	return len(s.terrain)
}
