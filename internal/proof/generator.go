// Package proof builds MockProof values. Nothing here is cryptographically
// meaningful; the output is only shaped like a real proof.
package proof

import (
	"fmt"
	"math/rand"

	"github.com/cespare/xxhash/v2"

	"mock-relayer-go/internal/model"
)

var (
	proofMultipliers  = [8]uint64{1, 2, 3, 5, 7, 11, 13, 17}
	signalMultipliers = [3]uint64{1, 19, 23}
)

// Generator produces mock proofs
type Generator interface {
	Generate() model.MockProof
}

// RandomGenerator draws every word independently
type RandomGenerator struct{}

// NewRandomGenerator creates the non-deterministic generator used by the pipeline
func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

// Generate returns a proof with 8 random words and 3 random public signals
func (g *RandomGenerator) Generate() model.MockProof {
	var p model.MockProof
	for i := range p.ProofData {
		p.ProofData[i] = rand.Uint64()
	}
	p.PublicSignals = make([]string, len(signalMultipliers))
	for i := range p.PublicSignals {
		p.PublicSignals[i] = FormatSignal(rand.Uint64())
	}
	return p
}

// SeededGenerator always returns the deterministic proof for its seed
type SeededGenerator struct {
	Seed string
}

func (g SeededGenerator) Generate() model.MockProof {
	return Deterministic(g.Seed)
}

// Deterministic derives a proof from seed. Identical seeds yield identical
// proofs; multiplication wraps around at 2^64.
func Deterministic(seed string) model.MockProof {
	h := xxhash.Sum64String(seed)

	var p model.MockProof
	for i, m := range proofMultipliers {
		p.ProofData[i] = h * m
	}
	p.PublicSignals = make([]string, len(signalMultipliers))
	for i, m := range signalMultipliers {
		p.PublicSignals[i] = FormatSignal(h * m)
	}
	return p
}

// FormatSignal renders v as "0x" followed by 64 zero-padded hex digits
func FormatSignal(v uint64) string {
	return fmt.Sprintf("0x%064x", v)
}
