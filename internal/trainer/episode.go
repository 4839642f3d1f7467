// Package trainer holds the environment-interaction plumbing around the
// ensemble: the episode iterator, round scheduling, policies, and the TD
// update applied to a single member.
package trainer

import "ennead/internal/env"

// Transition is one experience tuple.
type Transition struct {
	State  []float64
	Action int
	Reward float64
	Next   []float64
	Done   bool
}

// Policy maps an observation to an action.
type Policy interface {
	Act(state []float64) (int, error)
}

// Episode iterates an environment under a policy, yielding one transition per
// Next. It stops at episode end or on the first error.
type Episode struct {
	env    env.Environment
	policy Policy

	state []float64
	done  bool
	err   error
	cur   Transition
	ret   float64
	steps int
}

func NewEpisode(e env.Environment, policy Policy) *Episode {
	return &Episode{env: e, policy: policy, state: e.Reset()}
}

func (e *Episode) Next() bool {
	if e.done || e.err != nil {
		return false
	}
	action, err := e.policy.Act(e.state)
	if err != nil {
		e.err = err
		return false
	}
	next, reward, done, err := e.env.Step(action)
	if err != nil {
		e.err = err
		return false
	}
	e.cur = Transition{
		State:  e.state,
		Action: action,
		Reward: reward,
		Next:   next,
		Done:   done,
	}
	e.ret += reward
	e.steps++
	e.state = next
	e.done = done
	return true
}

// Transition returns the tuple produced by the last successful Next.
func (e *Episode) Transition() Transition { return e.cur }

func (e *Episode) Err() error { return e.err }

// Return is the undiscounted reward collected so far.
func (e *Episode) Return() float64 { return e.ret }

// Steps is the number of transitions taken so far.
func (e *Episode) Steps() int { return e.steps }
