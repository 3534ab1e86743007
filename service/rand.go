package service

import "math/rand"

// systemRand draws from the shared math/rand source, which is safe for
// concurrent use from interaction handlers and workers.
type systemRand struct{}

func (systemRand) Intn(n int) int { return rand.Intn(n) }

func (systemRand) Float64() float64 { return rand.Float64() }

// NewSystemRand returns the production randomness source.
func NewSystemRand() Rand { return systemRand{} }
