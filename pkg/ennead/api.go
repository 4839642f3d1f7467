// Package ennead is the public facade: it wires an environment, a
// bootstrapped ensemble, the trainer, and a store into complete runs.
package ennead

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ennead/internal/ensemble"
	"ennead/internal/env"
	"ennead/internal/estimator"
	"ennead/internal/model"
	"ennead/internal/optim"
	"ennead/internal/storage"
	"ennead/internal/trainer"
)

const (
	defaultDBPath        = "ennead.db"
	defaultSteps         = 2000
	defaultRoundInterval = 500
	defaultValidateSteps = 200
	defaultLR            = 0.1
	defaultGamma         = 0.95
)

type Options struct {
	StoreKind string
	DBPath    string
	Logger    zerolog.Logger
}

type Client struct {
	store storage.Store
	log   zerolog.Logger
}

type TrainRequest struct {
	Env           string
	Estimator     string
	EnsembleSize  int
	PriorScale    float64
	Aggregation   string
	Seed          int64
	Steps         int
	RoundInterval int
	Workers       int
	LR            float64
	Momentum      float64
	Gamma         float64
	ValidateSteps int
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	return &Client{store: store, log: opts.Logger}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Run executes one training run: bootstrapped episodes pin a member each,
// TD(0) updates touch only that member's parameter group, and the round
// diagnostics capture return, TD error, and the ensemble's predictive
// variance at the start state. The summary and diagnostics are persisted.
func (c *Client) Run(ctx context.Context, req TrainRequest) (model.RunSummary, error) {
	req = withDefaults(req)

	rng := rand.New(rand.NewSource(req.Seed))
	environment, err := env.New(req.Env, rng)
	if err != nil {
		return model.RunSummary{}, err
	}

	spec := estimator.Spec{
		Kind: req.Estimator,
		In:   environment.ObservationSize(),
		Out:  environment.Actions(),
	}
	factory := func() (estimator.Estimator, error) {
		return estimator.Build(spec, rng)
	}

	ens, err := ensemble.New(factory, ensemble.Config{
		Size:        req.EnsembleSize,
		PriorScale:  req.PriorScale,
		Rand:        rng,
		Workers:     req.Workers,
		Aggregation: ensemble.Aggregation(req.Aggregation),
	})
	if err != nil {
		return model.RunSummary{}, err
	}

	groups := ens.ParameterGroups()
	members := ens.Members()
	state := optim.NewState(groups)
	td := trainer.TD{
		Gamma: req.Gamma,
		Opt:   optim.SGD{LR: req.LR, Momentum: req.Momentum},
	}
	policy := &trainer.Bootstrapped{Model: ens, Rand: rng}

	rounds := trainer.Rounds(req.Steps, req.RoundInterval)
	diagnostics := make([]model.RoundDiagnostics, 0, len(rounds))
	startObs := environment.Reset()

	for i, round := range rounds {
		if err := ctx.Err(); err != nil {
			return model.RunSummary{}, err
		}

		var (
			stepCnt  int
			episodes int
			retSum   float64
			lossSum  float64
			lossCnt  int
		)
		budget := round.End - round.Start
		for stepCnt < budget {
			mid := policy.NewEpisodeMember()
			member, ok := members[mid].(estimator.Backprop)
			if !ok {
				return model.RunSummary{}, errors.New("estimator does not support training")
			}
			ep := trainer.NewEpisode(environment, policy)
			for ep.Next() {
				loss, err := td.Step(ens, member, state, mid, groups[mid], ep.Transition())
				if err != nil {
					return model.RunSummary{}, fmt.Errorf("round %d: %w", i, err)
				}
				lossSum += loss
				lossCnt++
				stepCnt++
				if stepCnt >= budget {
					break
				}
			}
			if err := ep.Err(); err != nil {
				return model.RunSummary{}, fmt.Errorf("round %d: %w", i, err)
			}
			retSum += ep.Return()
			episodes++
		}

		meanVar, err := startStateVariance(ens, startObs)
		if err != nil {
			return model.RunSummary{}, err
		}

		diag := model.RoundDiagnostics{
			Round:        i,
			Start:        round.Start,
			End:          round.End,
			Episodes:     episodes,
			MeanReturn:   retSum / float64(episodes),
			MeanTDError:  lossSum / float64(max(lossCnt, 1)),
			MeanVariance: meanVar,
		}
		diagnostics = append(diagnostics, diag)
		c.log.Info().
			Int("round", i).
			Float64("mean_return", diag.MeanReturn).
			Float64("mean_td_error", diag.MeanTDError).
			Float64("mean_variance", diag.MeanVariance).
			Msg("training round")
	}

	greedy := &trainer.Greedy{Model: ens, Rand: rng}
	finalReturn, err := trainer.Validate(ctx, environment, greedy, req.ValidateSteps, c.log)
	if err != nil {
		return model.RunSummary{}, err
	}

	run := model.RunSummary{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:              uuid.NewString(),
		Env:             environment.Name(),
		Estimator:       spec.Kind,
		EnsembleSize:    ens.Len(),
		PriorScale:      req.PriorScale,
		Seed:            req.Seed,
		Rounds:          len(rounds),
		FinalMeanReturn: finalReturn,
		CreatedUnix:     time.Now().Unix(),
	}
	if err := c.store.SaveRun(ctx, run); err != nil {
		return model.RunSummary{}, err
	}
	if err := c.store.SaveRoundDiagnostics(ctx, run.ID, diagnostics); err != nil {
		return model.RunSummary{}, err
	}
	return run, nil
}

func (c *Client) Runs(ctx context.Context) ([]model.RunSummary, error) {
	return c.store.ListRuns(ctx)
}

func (c *Client) Diagnostics(ctx context.Context, runID string) ([]model.RoundDiagnostics, error) {
	diagnostics, ok, err := c.store.GetRoundDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no diagnostics for run %s", runID)
	}
	return diagnostics, nil
}

func withDefaults(req TrainRequest) TrainRequest {
	if req.EnsembleSize == 0 {
		req.EnsembleSize = 5
	}
	if req.Estimator == "" {
		req.Estimator = estimator.KindLinear
	}
	if req.Steps <= 0 {
		req.Steps = defaultSteps
	}
	if req.RoundInterval <= 0 {
		req.RoundInterval = defaultRoundInterval
	}
	if req.ValidateSteps <= 0 {
		req.ValidateSteps = defaultValidateSteps
	}
	if req.LR <= 0 {
		req.LR = defaultLR
	}
	if req.Gamma <= 0 {
		req.Gamma = defaultGamma
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}
	return req
}

func startStateVariance(ens *ensemble.Ensemble, obs []float64) (float64, error) {
	vs, err := ens.Var([][]float64{obs})
	if err != nil {
		return 0, err
	}
	var total float64
	for _, v := range vs[0] {
		total += v
	}
	return total / float64(len(vs[0])), nil
}
