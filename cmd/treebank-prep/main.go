// Command treebank-prep builds the datasets of a domain adaptation
// experiment: genre-balanced train/test splits with nested seed sets,
// fixed-size corpus prefixes, round-trip checks and corpus statistics.
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
		Name:            "treebank-prep",
		Usage:           "partition treebanks into seed, train and test sets",
		Version:         version + " (" + commit + ", " + date + ")",
		Writer:          ui.Out,
		ErrWriter:       ui.Err,
		Flags:           cmdutil.GlobalFlags(),
		Before:          env.Before,
		HideHelpCommand: true,
		Commands: []*cli.Command{
			splitCommand(env),
			prefixCommand(env),
			confirmCommand(env),
			statsCommand(env),
		},
	}
}
