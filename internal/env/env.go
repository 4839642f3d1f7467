// Package env holds the small environments the trainer interacts with.
package env

import (
	"fmt"
	"math/rand"
)

// Environment is the minimal episodic contract the trainer needs.
type Environment interface {
	// Reset starts a new episode and returns the initial observation.
	Reset() []float64
	// Step applies an action and returns the next observation, the reward,
	// and whether the episode ended.
	Step(action int) (next []float64, reward float64, done bool, err error)
	Name() string
	ObservationSize() int
	Actions() int
}

// New builds a named environment.
func New(name string, rng *rand.Rand) (Environment, error) {
	switch name {
	case "", "chain":
		return NewChain(10, rng), nil
	case "bandit":
		return NewBandit([]float64{0.6, 1.0}, rng), nil
	default:
		return nil, fmt.Errorf("unknown environment: %s", name)
	}
}
