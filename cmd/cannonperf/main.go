// SPDX-License-Identifier: MIT

// Command cannonperf measures square matrix multiplication on a Cannon grid.
//
// Usage:
//
//	cannonperf --n 512 --workers 16 --transport chan --mode task --runs 5
//	cannonperf --n 240 --workers 9 --transport grpc --distribution p2p -v 2
//	cannonperf --n 96 --transport sim --grid 4
//
// Transports:
//   - chan: in-process rendezvous channels (default).
//   - grpc: one loopback gRPC server per worker.
//   - sim:  single-threaded simulation; --grid sets P directly.
//
// Every run is checked against the sequential reference before timings are
// reported.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"github.com/katalvlaran/cannon/cannon"
	"github.com/katalvlaran/cannon/matmul"
	"github.com/katalvlaran/cannon/matrix"
	"github.com/katalvlaran/cannon/task"
	"github.com/katalvlaran/cannon/transport"
)

// Flag defaults.
const (
	defaultN         = 256
	defaultRuns      = 3
	defaultSeed      = 1
	defaultTolerance = 1e-9
)

type config struct {
	n            int
	workers      int
	grid         int
	transport    string
	distribution string
	mode         string
	runs         int
	seed         int64
	tolerance    float64
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		klog.ErrorS(err, "cannonperf failed")
		klog.Flush()
		os.Exit(1)
	}
	klog.Flush()
}

func newRootCmd() *cobra.Command {
	cfg := config{}
	cmd := &cobra.Command{
		Use:           "cannonperf",
		Short:         "Time Cannon matrix multiplication against the sequential reference",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.IntVar(&cfg.n, "n", defaultN, "matrix side length N")
	fs.IntVar(&cfg.workers, "workers", cannon.DefaultWorkers, "workers offered to the partitioner")
	fs.IntVar(&cfg.grid, "grid", 2, "grid side P for --transport sim")
	fs.StringVar(&cfg.transport, "transport", "chan", "chan | grpc | sim")
	fs.StringVar(&cfg.distribution, "distribution", cannon.DefaultDistribution.String(), "broadcast | p2p")
	fs.StringVar(&cfg.mode, "mode", "pipeline", "pipeline | task (chan and grpc only)")
	fs.IntVar(&cfg.runs, "runs", defaultRuns, "repetitions")
	fs.Int64Var(&cfg.seed, "seed", defaultSeed, "seed of the random inputs")
	fs.Float64Var(&cfg.tolerance, "tolerance", defaultTolerance, "max abs/rel deviation from the reference")

	// klog flags (-v, --log-file, ...) live on the same command line.
	goFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(goFlags)
	cmd.SetGlobalNormalizationFunc(wordSepNormalize)
	cmd.PersistentFlags().AddGoFlagSet(goFlags)

	return cmd
}

// wordSepNormalize accepts both --log_file and --log-file.
func wordSepNormalize(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func run(ctx context.Context, cfg config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.n <= 0 || cfg.runs <= 0 {
		return errors.New("--n and --runs must be positive")
	}
	a, err := matrix.NewRandom(cfg.n, cfg.n, cfg.seed)
	if err != nil {
		return err
	}
	b, err := matrix.NewRandom(cfg.n, cfg.n, cfg.seed+1)
	if err != nil {
		return err
	}
	want, err := matrix.Mul(a, b)
	if err != nil {
		return err
	}

	if cfg.transport == "sim" {
		return runSimulation(ctx, cfg, a, b, want)
	}

	opts, err := cannonOptions(cfg)
	if err != nil {
		return err
	}
	out := make([]float64, cfg.n*cfg.n)
	data := task.NewData(
		[]task.Buffer{task.Float64s(a.Values()), task.Float64s(b.Values())},
		[]int{cfg.n, cfg.n, cfg.n, cfg.n},
		[]task.Buffer{task.Float64s(out)},
		[]int{cfg.n * cfg.n},
	)
	tk := matmul.NewCannon(data, opts...)
	perf := task.NewPerf(tk)

	attr := task.PerfAttr{NumRunning: cfg.runs}
	var res task.Results
	switch cfg.mode {
	case "pipeline":
		res, err = perf.PipelineRun(attr)
	case "task":
		res, err = perf.TaskRun(attr)
	default:
		return fmt.Errorf("unknown --mode %q", cfg.mode)
	}
	if err != nil {
		return err
	}

	got, err := matrix.NewDenseFrom(cfg.n, cfg.n, out, matrix.WithNoValidateNaNInf())
	if err != nil {
		return err
	}
	if err = check(got, want, cfg.tolerance); err != nil {
		return err
	}

	rep := tk.Report()
	klog.InfoS("plan", "n", cfg.n, "workers", cfg.workers, "fallback", rep.Fallback,
		"reason", string(rep.Plan.Reason), "grid", rep.Plan.Grid.String(), "idle", rep.Plan.Idle())
	task.PrintStatistic("cannon/"+cfg.transport, res)

	return nil
}

func cannonOptions(cfg config) ([]cannon.Option, error) {
	dist, err := cannon.ParseDistribution(cfg.distribution)
	if err != nil {
		return nil, err
	}
	opts := []cannon.Option{cannon.WithWorkers(cfg.workers), cannon.WithDistribution(dist)}

	switch cfg.transport {
	case "chan":
	case "grpc":
		opts = append(opts, cannon.WithNetwork(func(size int) (transport.Network, error) {
			return transport.NewGRPCMesh(size)
		}))
	default:
		return nil, fmt.Errorf("unknown --transport %q", cfg.transport)
	}

	return opts, nil
}

func runSimulation(ctx context.Context, cfg config, a, b *matrix.Dense, want matrix.Matrix) error {
	var (
		got   *matrix.Dense
		err   error
		total time.Duration
	)
	for i := 0; i < cfg.runs; i++ {
		begin := time.Now()
		if got, err = cannon.Simulate(ctx, a, b, cfg.grid); err != nil {
			return err
		}
		total += time.Since(begin)
	}
	if err = check(got, want, cfg.tolerance); err != nil {
		return err
	}
	task.PrintStatistic("cannon/sim", task.Results{
		TimeSec: total.Seconds() / float64(cfg.runs),
		Kind:    task.KindPipeline,
		Runs:    cfg.runs,
	})

	return nil
}

func check(got, want matrix.Matrix, tol float64) error {
	ok, err := matrix.AllClose(got, want, tol, tol)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("result deviates from the sequential reference by more than %g", tol)
	}

	return nil
}
