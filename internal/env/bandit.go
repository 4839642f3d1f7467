package env

import (
	"fmt"
	"math/rand"
)

// Bandit is a single-step environment: pull one of the arms, collect a noisy
// payout, episode over. Useful for exercising value estimates without any
// state dynamics.
type Bandit struct {
	payouts []float64
	noise   float64
	rng     *rand.Rand
}

func NewBandit(payouts []float64, rng *rand.Rand) *Bandit {
	return &Bandit{payouts: payouts, noise: 0.05, rng: rng}
}

func (b *Bandit) Name() string { return "bandit" }

func (b *Bandit) ObservationSize() int { return 1 }

func (b *Bandit) Actions() int { return len(b.payouts) }

func (b *Bandit) Reset() []float64 { return []float64{1} }

func (b *Bandit) Step(action int) ([]float64, float64, bool, error) {
	if action < 0 || action >= len(b.payouts) {
		return nil, 0, false, fmt.Errorf("bandit: invalid action %d", action)
	}
	reward := b.payouts[action]
	if b.rng != nil && b.noise > 0 {
		reward += b.rng.NormFloat64() * b.noise
	}
	return []float64{1}, reward, true, nil
}
