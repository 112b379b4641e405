// Command adapt-run trains parsers by self-training: a seed treebank trains a
// first model, which labels a pool of unannotated target-domain sentences;
// the labels are merged with the seed to train the final model, which is
// then scored against a held-out test treebank.
package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/jamesainslie/go-adapt/internal/cmdutil"
)

// Set by the stave build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ui := cmdutil.UI{Out: os.Stdout, Err: os.Stderr}
	os.Exit(cmdutil.Main(newApp(ui), os.Args, ui.Err))
}

func newApp(ui cmdutil.UI) *cli.App {
	env := &cmdutil.Env{UI: ui}
	return &cli.App{
		Name:            "adapt-run",
		Usage:           "self-train a treebank parser on a new domain",
		Version:         version + " (" + commit + ", " + date + ")",
		Writer:          ui.Out,
		ErrWriter:       ui.Err,
		Flags:           cmdutil.GlobalFlags(),
		Before:          env.Before,
		HideHelpCommand: true,
		Commands: []*cli.Command{
			selftrainCommand(env),
			sweepCommand(env),
			baselineCommand(env),
			runsCommand(env),
		},
	}
}
