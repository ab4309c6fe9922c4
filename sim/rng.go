package sim

import (
	"hash/fnv"
	"math/rand"
)

// Subsystems that draw randomness. Each gets its own stream so adding draws
// to one never shifts the other.
const (
	// SubsystemQueue picks a row when several queue rows are eligible.
	// Seeded with the run seed directly.
	SubsystemQueue = "queue"
	// SubsystemRoster jitters where new couriers enter the floor.
	SubsystemRoster = "roster"
)

// PartitionedRNG hands out one deterministic *rand.Rand per subsystem.
// The queue stream uses the run seed; every other stream uses
// seed XOR fnv1a64(name).
//
// Not safe for concurrent use.
type PartitionedRNG struct {
	seed    int64
	streams map[string]*rand.Rand
}

// NewPartitionedRNG creates the per-run stream set.
func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{seed: seed, streams: make(map[string]*rand.Rand)}
}

// ForSubsystem returns the stream for name, creating it on first use.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if r, ok := p.streams[name]; ok {
		return r
	}
	seed := p.seed
	if name != SubsystemQueue {
		seed ^= fnv1a64(name)
	}
	r := rand.New(rand.NewSource(seed))
	p.streams[name] = r
	return r
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
