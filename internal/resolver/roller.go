package resolver

import "math/rand/v2"

// Roller draws Bernoulli outcomes for probability triggers.
type Roller interface {
	// Chance reports a hit with probability p.
	Chance(p float64) bool
}

// RandomRoller draws from the process-wide math/rand/v2 source.
type RandomRoller struct{}

// Chance implements Roller. A draw equal to p counts as a hit.
func (RandomRoller) Chance(p float64) bool {
	return rand.Float64() <= p
}

// RollerFunc adapts a plain function to Roller.
type RollerFunc func(p float64) bool

// Chance implements Roller.
func (f RollerFunc) Chance(p float64) bool { return f(p) }
