package world

import (
	"context"
	"hash/maphash"
	"sync"
	"sync/atomic"

	"github.com/go-theft-craft/worldgen/internal/voxel"
	"github.com/go-theft-craft/worldgen/internal/world/storage"
)

const saverStripes = 64

// saver orders chunk writes. Every save is registered with begin when its
// snapshot is taken, which hands out increasing sequence numbers, and is
// released with release once its worker is done. A save older than the
// last one written for its chunk is dropped, and loads wait for every
// save registered before them. Chunks drop out of the table as soon as
// nothing is in flight for them.
type saver struct {
	store storage.Store
	seq   atomic.Uint64
	seed  maphash.Seed

	stripes [saverStripes]saverStripe
}

type saverStripe struct {
	mu   sync.Mutex
	idle *sync.Cond
	keys map[voxel.ChunkKey]*saveState
}

type saveState struct {
	inflight map[uint64]struct{} // guarded by the stripe

	write   sync.Mutex
	written uint64 // guarded by write
}

func newSaver(store storage.Store) *saver {
	s := &saver{store: store, seed: maphash.MakeSeed()}
	for i := range s.stripes {
		st := &s.stripes[i]
		st.idle = sync.NewCond(&st.mu)
		st.keys = make(map[voxel.ChunkKey]*saveState)
	}
	return s
}

func (s *saver) stripe(key voxel.ChunkKey) *saverStripe {
	return &s.stripes[maphash.Comparable(s.seed, key)%saverStripes]
}

// begin registers a save of a snapshot taken now and returns its sequence number.
func (s *saver) begin(key voxel.ChunkKey) uint64 {
	st := s.stripe(key)
	st.mu.Lock()
	defer st.mu.Unlock()

	seq := s.seq.Add(1)
	state, ok := st.keys[key]
	if !ok {
		state = &saveState{inflight: make(map[uint64]struct{})}
		st.keys[key] = state
	}
	state.inflight[seq] = struct{}{}
	return seq
}

// release ends the registration made by begin, whether or not anything was written.
func (s *saver) release(key voxel.ChunkKey, seq uint64) {
	st := s.stripe(key)
	st.mu.Lock()
	defer st.mu.Unlock()

	state, ok := st.keys[key]
	if !ok {
		return
	}
	delete(state.inflight, seq)
	if len(state.inflight) == 0 {
		delete(st.keys, key)
	}
	st.idle.Broadcast()
}

// waitBefore blocks until every save for key registered before seq has been released.
func (s *saver) waitBefore(key voxel.ChunkKey, seq uint64) {
	st := s.stripe(key)
	st.mu.Lock()
	defer st.mu.Unlock()

	for st.hasBefore(key, seq) {
		st.idle.Wait()
	}
}

func (st *saverStripe) hasBefore(key voxel.ChunkKey, seq uint64) bool {
	state, ok := st.keys[key]
	if !ok {
		return false
	}
	for other := range state.inflight {
		if other < seq {
			return true
		}
	}
	return false
}

// save writes buf unless a newer snapshot of key was already written.
// seq must come from begin and still be registered.
func (s *saver) save(ctx context.Context, buf *voxel.Buffer, key voxel.ChunkKey, seq uint64) error {
	st := s.stripe(key)
	st.mu.Lock()
	state, ok := st.keys[key]
	st.mu.Unlock()
	if !ok {
		return nil
	}

	state.write.Lock()
	defer state.write.Unlock()
	if seq <= state.written {
		return nil
	}
	// Saves outlive the tick that spawned them so shutdown still flushes edits.
	if err := s.store.Save(context.WithoutCancel(ctx), buf, key); err != nil {
		return err
	}
	state.written = seq
	return nil
}

// tracked reports how many chunks have saves in flight.
func (s *saver) tracked() int {
	n := 0
	for i := range s.stripes {
		st := &s.stripes[i]
		st.mu.Lock()
		n += len(st.keys)
		st.mu.Unlock()
	}
	return n
}
