package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	adapt "github.com/jamesainslie/go-adapt"
	"github.com/jamesainslie/go-adapt/internal/bench"
	"github.com/jamesainslie/go-adapt/internal/cmdutil"
	"github.com/jamesainslie/go-adapt/internal/ledger"
	"github.com/jamesainslie/go-adapt/internal/prep"
	"github.com/jamesainslie/go-adapt/pcfg"
	"github.com/jamesainslie/go-adapt/tree"
)

func selftrainCommand(env *cmdutil.Env) *cli.Command {
	return &cli.Command{
		Name:  "selftrain",
		Usage: "train on a seed, label a pool, retrain on both and evaluate",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "seed", Usage: "labeled source-domain treebank"},
			poolFlag(), testFlag(), workersFlag(), ledgerFlag(),
			&cli.StringFlag{Name: "model-out", Usage: "save the final grammar to this file"},
		}, trainingFlags()...),
		Action: func(c *cli.Context) error {
			exp := env.Experiment
			block := selfTrainBlock(exp)
			seedPath, err := inputPath(c, "seed", block.Seed)
			if err != nil {
				return err
			}
			poolPath, err := inputPath(c, "pool", block.Pool)
			if err != nil {
				return err
			}
			testPath, err := inputPath(c, "test", block.Test)
			if err != nil {
				return err
			}
			cfg, err := trainingConfig(c, exp)
			if err != nil {
				return err
			}
			led, err := openLedger(c, exp)
			if err != nil {
				return err
			}
			if led != nil {
				defer func() { _ = led.Close() }()
			}

			out := env.UI.Out
			printHeader(out, cfg, seedPath, poolPath, testPath)

			pool, err := load(env, poolPath)
			if err != nil {
				return err
			}
			test, err := load(env, testPath)
			if err != nil {
				return err
			}
			t := trial{
				env:     env,
				adapter: newAdapter(env, cfg, workers(c, exp)),
				pool:    pool,
				test:    test,
				ledger:  led,
				entry:   ledger.Entry{Kind: ledger.KindSelfTrain, Seed: seedPath, Pool: poolPath, Test: testPath},
				onDone: func() {
					_, _ = fmt.Fprintln(out, "Finished domain adaptation. Beginning test.")
				},
				modelOut: c.String("model-out"),
			}
			report, err := t.run(c.Context)
			if err != nil {
				return err
			}
			printReport(out, report)
			return nil
		},
	}
}

func sweepCommand(env *cmdutil.Env) *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "self-train once per seed size and compare the results",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "seed-dir", Value: ".", Usage: "directory holding the seed sets"},
			&cli.StringFlag{Name: "prefix", Usage: "seed set file prefix, as given to treebank-prep split"},
			&cli.IntSliceFlag{Name: "sizes", Usage: "seed sizes to run"},
			poolFlag(), testFlag(), workersFlag(), ledgerFlag(),
		}, trainingFlags()...),
		Action: func(c *cli.Context) error {
			exp := env.Experiment
			block := selfTrainBlock(exp)

			var prefix string
			if exp.Seeds != nil {
				prefix = exp.Seeds.Prefix
			}
			prefix = cmdutil.String(c, "prefix", prefix)
			if prefix == "" {
				return cmdutil.Required("prefix")
			}
			sizes := exp.SeedSizes()
			if c.IsSet("sizes") {
				sizes = c.IntSlice("sizes")
			}
			poolPath, err := inputPath(c, "pool", block.Pool)
			if err != nil {
				return err
			}
			testPath, err := inputPath(c, "test", block.Test)
			if err != nil {
				return err
			}
			cfg, err := trainingConfig(c, exp)
			if err != nil {
				return err
			}
			led, err := openLedger(c, exp)
			if err != nil {
				return err
			}
			if led != nil {
				defer func() { _ = led.Close() }()
			}

			pool, err := load(env, poolPath)
			if err != nil {
				return err
			}
			test, err := load(env, testPath)
			if err != nil {
				return err
			}

			n := workers(c, exp)
			trials := make([]bench.Trial, len(sizes))
			for i, size := range sizes {
				seedPath := filepath.Join(c.String("seed-dir"), prep.SeedFileName(prefix, size))
				t := trial{
					env:     env,
					adapter: newAdapter(env, cfg, n),
					pool:    pool,
					test:    test,
					ledger:  led,
					entry:   ledger.Entry{Kind: ledger.KindSelfTrain, Seed: seedPath, Pool: poolPath, Test: testPath},
				}
				trials[i] = bench.Trial{SeedSize: size, Run: t.run}
			}

			results, err := bench.SeedSweep(c.Context, trials)
			printSweep(env, results)
			if err != nil {
				return err
			}
			return bench.Failures(results)
		},
	}
}

func printSweep(env *cmdutil.Env, results []bench.SweepResult) {
	w := env.UI.Out
	_, _ = fmt.Fprintf(w, "%-10s %-8s %-8s %-8s %-8s %s\n", "Seed", "Prec", "Rec", "F1", "Skipped", "Error")
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, r := range results {
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "%-10d %-8s %-8s %-8s %-8s %v\n", r.SeedSize, "-", "-", "-", "-", r.Err)
			continue
		}
		rep := r.Report
		_, _ = fmt.Fprintf(w, "%-10d %-8.2f %-8.2f %-8.2f %-8d\n",
			r.SeedSize, 100*rep.Precision, 100*rep.Recall, 100*rep.F1, rep.Skipped)
	}
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 60))
	if best, ok := bench.Best(results); ok {
		_, _ = fmt.Fprintf(w, "Best: seed %d (F1: %.2f)\n", best.SeedSize, 100*best.Report.F1)
	}
}

func baselineCommand(env *cmdutil.Env) *cli.Command {
	return &cli.Command{
		Name:  "baseline",
		Usage: "train directly on a treebank, without self-training, and evaluate",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "train", Usage: "labeled training treebank"},
			testFlag(), workersFlag(), ledgerFlag(),
			&cli.StringFlag{Name: "model-in", Usage: "evaluate a saved grammar instead of training"},
			&cli.StringFlag{Name: "model-out", Usage: "save the trained grammar to this file"},
		}, trainingFlags()...),
		Action: func(c *cli.Context) error {
			exp := env.Experiment
			testPath, err := inputPath(c, "test", selfTrainBlock(exp).Test)
			if err != nil {
				return err
			}
			cfg, err := trainingConfig(c, exp)
			if err != nil {
				return err
			}
			led, err := openLedger(c, exp)
			if err != nil {
				return err
			}
			if led != nil {
				defer func() { _ = led.Close() }()
			}

			n := workers(c, exp)
			a := newAdapter(env, cfg, n)
			entry := ledger.Entry{Kind: ledger.KindBaseline, Test: testPath, StartedAt: time.Now()}

			var model adapt.Model
			if in := c.String("model-in"); in != "" {
				g, err := pcfg.LoadGrammar(in)
				if err != nil {
					return err
				}
				if model, err = pcfg.New(pcfg.WithSessions(n), pcfg.WithLogger(env.Logger)).NewModel(g); err != nil {
					return err
				}
				entry.Seed = in
			} else {
				trainPath, err := inputPath(c, "train", selfTrainBlock(exp).Seed)
				if err != nil {
					return err
				}
				bank, err := load(env, trainPath)
				if err != nil {
					return err
				}
				if model, err = a.TrainBaseline(c.Context, bank, cfg); err != nil {
					return err
				}
				entry.Seed = trainPath
				entry.SeedSize = bank.Len()
			}
			defer closeModel(model)

			if out := c.String("model-out"); out != "" {
				if err := saveModel(model, out); err != nil {
					return err
				}
			}

			test, err := load(env, testPath)
			if err != nil {
				return err
			}
			report, err := a.Evaluate(c.Context, model, test)
			if err != nil {
				return err
			}
			entry.Report = report
			entry.Duration = time.Since(entry.StartedAt)
			if led != nil {
				if _, err := led.Record(c.Context, entry); err != nil {
					return err
				}
			}
			printReport(env.UI.Out, report)
			return nil
		},
	}
}

func runsCommand(env *cmdutil.Env) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "list the runs recorded in a ledger",
		Flags: []cli.Flag{ledgerFlag()},
		Action: func(c *cli.Context) error {
			led, err := openLedger(c, env.Experiment)
			if err != nil {
				return err
			}
			if led == nil {
				return cmdutil.Required("ledger")
			}
			defer func() { _ = led.Close() }()

			entries, err := led.List(c.Context)
			if err != nil {
				return err
			}
			w := env.UI.Out
			_, _ = fmt.Fprintf(w, "%-5s %-10s %-8s %-8s %-8s %-20s %s\n", "ID", "Kind", "Seed", "Labeled", "F1", "Started", "Seed Set")
			for _, e := range entries {
				_, _ = fmt.Fprintf(w, "%-5d %-10s %-8d %-8d %-8.2f %-20s %s\n",
					e.ID, e.Kind, e.SeedSize, e.Labeled, 100*e.Report.F1,
					e.StartedAt.Local().Format(time.DateTime), e.Seed)
			}
			return nil
		},
	}
}

// trial is one self-training run on a seed file, shared by selftrain and
// sweep.
type trial struct {
	env      *cmdutil.Env
	adapter  *adapt.Adapter
	pool     *tree.Treebank
	test     *tree.Treebank
	ledger   *ledger.Ledger
	entry    ledger.Entry
	onDone   func()
	modelOut string
}

func (t trial) run(ctx context.Context) (adapt.Report, error) {
	started := time.Now()
	seed, err := load(t.env, t.entry.Seed)
	if err != nil {
		return adapt.Report{}, err
	}

	run := t.adapter.NewRun()
	err = run.Execute(ctx, seed, t.pool)
	defer closeModel(run.SeedModel())
	defer closeModel(run.FinalModel())
	if err != nil {
		return adapt.Report{}, err
	}
	if t.onDone != nil {
		t.onDone()
	}

	report, err := run.Evaluate(ctx, t.test)
	if err != nil {
		return adapt.Report{}, err
	}
	if t.modelOut != "" {
		if err := saveModel(run.FinalModel(), t.modelOut); err != nil {
			return report, err
		}
	}

	if t.ledger != nil {
		e := t.entry
		e.SeedSize = seed.Len()
		e.PoolSize = t.pool.Len()
		e.Labeled = run.Labeling().Trees.Len()
		e.SkippedLabels = len(run.Labeling().Skipped)
		e.Report = report
		e.StartedAt = started
		e.Duration = time.Since(started)
		if _, err := t.ledger.Record(ctx, e); err != nil {
			return report, err
		}
	}
	return report, nil
}
