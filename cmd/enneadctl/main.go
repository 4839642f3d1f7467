package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"ennead/internal/ensemble"
	"ennead/internal/estimator"
	"ennead/internal/memdiag"
	enneadapi "ennead/pkg/ennead"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runTrain(ctx, args[1:])
	case "predict":
		return runPredict(ctx, args[1:])
	case "uncertainty":
		return runUncertainty(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	case "memdiag":
		return runMemdiag(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: enneadctl <run|predict|uncertainty|runs|diagnostics|memdiag> [flags]", msg)
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func runTrain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional TOML config file")
	envName := fs.String("env", "chain", "environment name")
	estimatorKind := fs.String("estimator", estimator.KindLinear, "estimator kind (linear|feedforward)")
	size := fs.Int("b", 5, "ensemble size")
	priorScale := fs.Float64("beta", 0, "prior function scale (0 disables priors)")
	agg := fs.String("agg", string(ensemble.AggregationMean), "aggregation (mean|vote)")
	seed := fs.Int64("seed", 0, "random seed (0 = time-based)")
	steps := fs.Int("steps", 0, "total training steps")
	interval := fs.Int("interval", 0, "steps per training round")
	workers := fs.Int("workers", 1, "parallel member fan-out")
	lr := fs.Float64("lr", 0, "learning rate")
	momentum := fs.Float64("momentum", 0, "SGD momentum")
	gamma := fs.Float64("gamma", 0, "discount factor")
	storeKind := fs.String("store", "memory", "store backend (memory|sqlite)")
	dbPath := fs.String("db", "", "sqlite database path")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := enneadapi.TrainRequest{
		Env:           *envName,
		Estimator:     *estimatorKind,
		EnsembleSize:  *size,
		PriorScale:    *priorScale,
		Aggregation:   *agg,
		Seed:          *seed,
		Steps:         *steps,
		RoundInterval: *interval,
		Workers:       *workers,
		LR:            *lr,
		Momentum:      *momentum,
		Gamma:         *gamma,
	}
	if *configPath != "" {
		overlaid, err := loadTrainConfig(*configPath, req)
		if err != nil {
			return err
		}
		req = overlaid
	}

	client, err := enneadapi.NewClient(ctx, enneadapi.Options{
		StoreKind: *storeKind,
		DBPath:    *dbPath,
		Logger:    newLogger(*verbose),
	})
	if err != nil {
		return err
	}
	defer client.Close()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(summary)
}

func runPredict(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	ens, input, err := ensembleFromFlags(fs, args)
	if err != nil {
		return err
	}
	y, err := ens.Predict([][]float64{input})
	if err != nil {
		return err
	}
	return printJSON(map[string]any{"prediction": y[0], "ensemble": ens.String()})
}

func runUncertainty(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("uncertainty", flag.ContinueOnError)
	action := fs.Int("action", -1, "report only this output's variance")
	ens, input, err := ensembleFromFlags(fs, args)
	if err != nil {
		return err
	}
	if *action >= 0 {
		v, err := ens.VarAt([][]float64{input}, *action)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"action": *action, "variance": v})
	}
	vs, err := ens.Var([][]float64{input})
	if err != nil {
		return err
	}
	return printJSON(map[string]any{"variance": vs[0]})
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	storeKind := fs.String("store", "sqlite", "store backend (memory|sqlite)")
	dbPath := fs.String("db", "", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := enneadapi.NewClient(ctx, enneadapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer client.Close()

	runs, err := client.Runs(ctx)
	if err != nil {
		return err
	}
	return printJSON(runs)
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	storeKind := fs.String("store", "sqlite", "store backend (memory|sqlite)")
	dbPath := fs.String("db", "", "sqlite database path")
	runID := fs.String("run", "", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("diagnostics requires -run")
	}

	client, err := enneadapi.NewClient(ctx, enneadapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer client.Close()

	diagnostics, err := client.Diagnostics(ctx, *runID)
	if err != nil {
		return err
	}
	return printJSON(diagnostics)
}

func runMemdiag(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("memdiag", flag.ContinueOnError)
	ens, _, err := ensembleFromFlags(fs, args)
	if err != nil {
		return err
	}
	report := memdiag.Census(ens.ParameterGroups()...)
	fmt.Print(report.String())
	return nil
}

// ensembleFromFlags builds an untrained ensemble for the one-shot inspection
// commands.
func ensembleFromFlags(fs *flag.FlagSet, args []string) (*ensemble.Ensemble, []float64, error) {
	estimatorKind := fs.String("estimator", estimator.KindLinear, "estimator kind (linear|feedforward)")
	size := fs.Int("b", 5, "ensemble size")
	priorScale := fs.Float64("beta", 0, "prior function scale")
	agg := fs.String("agg", string(ensemble.AggregationMean), "aggregation (mean|vote)")
	seed := fs.Int64("seed", 1, "random seed")
	workers := fs.Int("workers", 1, "parallel member fan-out")
	out := fs.Int("out", 2, "output width")
	input := fs.String("x", "", "comma-separated input vector")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	x, err := parseVector(*input)
	if err != nil {
		return nil, nil, err
	}
	if len(x) == 0 {
		return nil, nil, usageError("missing -x input vector")
	}

	rng := rand.New(rand.NewSource(*seed))
	spec := estimator.Spec{Kind: *estimatorKind, In: len(x), Out: *out}
	ens, err := ensemble.New(func() (estimator.Estimator, error) {
		return estimator.Build(spec, rng)
	}, ensemble.Config{
		Size:        *size,
		PriorScale:  *priorScale,
		Rand:        rng,
		Workers:     *workers,
		Aggregation: ensemble.Aggregation(*agg),
	})
	if err != nil {
		return nil, nil, err
	}
	return ens, x, nil
}

func parseVector(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("parse input vector: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
