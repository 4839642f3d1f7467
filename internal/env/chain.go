package env

import (
	"fmt"
	"math/rand"
)

const (
	chainSmallReward = 0.001
	chainFinalReward = 1.0
)

// Chain is the deep-exploration chain: n states in a line, the agent starts
// on the left, stepping left pays a trickle and stepping onto the rightmost
// state pays the jackpot. Dithering exploration takes exponentially long to
// find the right end, which is what makes it a useful uncertainty benchmark.
type Chain struct {
	n       int
	pos     int
	step    int
	horizon int
	rng     *rand.Rand
}

func NewChain(n int, rng *rand.Rand) *Chain {
	if n < 3 {
		n = 3
	}
	return &Chain{n: n, horizon: n + 9, rng: rng}
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) ObservationSize() int { return c.n }

func (c *Chain) Actions() int { return 2 }

func (c *Chain) Reset() []float64 {
	c.pos = 0
	c.step = 0
	return c.observe()
}

func (c *Chain) Step(action int) ([]float64, float64, bool, error) {
	if action < 0 || action >= c.Actions() {
		return nil, 0, false, fmt.Errorf("chain: invalid action %d", action)
	}
	c.step++

	var reward float64
	switch action {
	case 0: // left
		if c.pos > 0 {
			c.pos--
		}
		if c.pos == 0 {
			reward = chainSmallReward
		}
	case 1: // right
		if c.pos < c.n-1 {
			c.pos++
		}
		if c.pos == c.n-1 {
			reward = chainFinalReward
		}
	}

	done := c.pos == c.n-1 || c.step >= c.horizon
	return c.observe(), reward, done, nil
}

func (c *Chain) observe() []float64 {
	obs := make([]float64, c.n)
	obs[c.pos] = 1
	return obs
}
