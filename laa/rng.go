package laa

import (
	"hash/fnv"
	"math/rand"
	"time"
)

// Sampler is a source of uniform samples in [0, 1).
// *rand.Rand satisfies it.
type Sampler interface {
	Float64() float64
}

// === Subsystem Constants ===

const (
	// SubsystemSkiRental is the RNG subsystem for randomized ski-rental coin flips.
	SubsystemSkiRental = "ski-rental"

	// SubsystemWorkload is the RNG subsystem for generated evaluation problems.
	// Uses the master seed directly so --seed reproduces the same problem set.
	SubsystemWorkload = "workload"

	// SubsystemNoise is the RNG subsystem for prediction noise in evaluations.
	SubsystemNoise = "noise"

	// SubsystemCalibration is the RNG subsystem for conformal data splits.
	SubsystemCalibration = "calibration"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem,
// so that drawing coin flips for one engine never shifts the problem sequence
// generated for another.
//
// Derivation formula:
//   - For SubsystemWorkload: uses seed directly
//   - For all other subsystems: seed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	seed       int64
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a seed.
func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{
		seed:       seed,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	derivedSeed := p.seed
	if name != SubsystemWorkload {
		derivedSeed = p.seed ^ fnv1a64(name)
	}

	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Seed returns the master seed used to create this PartitionedRNG.
func (p *PartitionedRNG) Seed() int64 {
	return p.seed
}

// newTimeSeededSampler returns a private generator for engines constructed
// without an explicit Sampler.
func newTimeSeededSampler() Sampler {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
