package trainer

import (
	"context"

	"github.com/rs/zerolog"

	"ennead/internal/env"
)

// Validate runs gradient-free evaluation episodes until at least steps
// transitions have been taken, logging per-step rewards, and returns the mean
// episode return.
func Validate(ctx context.Context, e env.Environment, policy Policy, steps int, log zerolog.Logger) (float64, error) {
	var (
		total    float64
		episodes int
		stepCnt  int
	)
	for stepCnt < steps {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		ep := NewEpisode(e, policy)
		for ep.Next() {
			tr := ep.Transition()
			log.Debug().
				Float64("reward", tr.Reward).
				Bool("done", tr.Done).
				Int("val_frames", 1).
				Msg("validation step")
			stepCnt++
			if stepCnt >= steps {
				break
			}
		}
		if err := ep.Err(); err != nil {
			return 0, err
		}
		total += ep.Return()
		episodes++
	}
	if episodes == 0 {
		return 0, nil
	}
	return total / float64(episodes), nil
}
