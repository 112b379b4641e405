//go:build stave

package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

// Default target when running `stave` with no arguments.
var Default = All

// Aliases for common targets.
var Aliases = map[string]interface{}{
	"b": Build,
	"t": Test,
	"l": Lint,
	"c": Clean,
}

// All lints and tests the module, then builds treebank-prep and adapt-run.
func All() error {
	st.Deps(Init)
	st.Deps(Lint, Test)
	st.Deps(Build)
	return nil
}

// Init tidies go.mod and go.sum.
func Init() error {
	return sh.Run("go", "mod", "tidy")
}

const modulePath = "github.com/jamesainslie/go-adapt"

// binaries lists the commands under cmd/ that Build produces.
var binaries = []string{"treebank-prep", "adapt-run"}

// Build compiles treebank-prep and adapt-run.
func Build() error {
	st.Deps(Init)
	st.Deps(Build_Prep, Build_Run)
	return nil
}

// Build_Prep compiles the treebank-prep binary with version information.
func Build_Prep() error {
	st.Deps(Init)
	return buildBinary("treebank-prep")
}

// Build_Run compiles the adapt-run binary with version information.
func Build_Run() error {
	st.Deps(Init)
	return buildBinary("adapt-run")
}

func buildBinary(name string) error {
	out := "bin/" + name

	// Check if rebuild is needed
	rebuild, err := target.Glob(out, "**/*.go", "internal/ledger/sql/*.sql", "go.mod", "go.sum")
	if err != nil {
		return fmt.Errorf("checking rebuild: %w", err)
	}
	if !rebuild {
		if st.Verbose() {
			fmt.Printf("%s is up to date\n", name)
		}
		return nil
	}

	return sh.RunV("go", "build", "-ldflags", buildLdflags(), "-o", out, "./cmd/"+name)
}

// buildLdflags returns ldflags for version injection.
func buildLdflags() string {
	version, _ := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	commit, _ := sh.Output("git", "rev-parse", "--short", "HEAD")
	date := time.Now().Format(time.RFC3339)

	return fmt.Sprintf(
		"-X main.version=%s -X main.commit=%s -X main.date=%s",
		strings.TrimSpace(version),
		strings.TrimSpace(commit),
		date,
	)
}

// Test runs every package under the race detector. Pool labeling and seed
// sweeps fan out across goroutines.
func Test() error {
	st.Deps(Init)
	return sh.RunV("go", "test", "-race", "./...")
}

// Parser runs the chart parser and grammar tests verbosely.
func Parser() error {
	st.Deps(Init)
	return sh.RunV("go", "test", "-race", "-v", "./inference/...", "./pcfg/...")
}

// Lint runs golangci-lint on the codebase.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// LintFix runs golangci-lint with auto-fix enabled.
func LintFix() error {
	return sh.RunV("golangci-lint", "run", "--fix", "./...")
}

// Fmt formats the module and groups its own imports after third-party ones.
func Fmt() error {
	if err := sh.Run("gofmt", "-w", "."); err != nil {
		return fmt.Errorf("gofmt: %w", err)
	}
	if err := sh.Run("goimports", "-local", modulePath, "-w", "."); err != nil {
		return fmt.Errorf("goimports: %w", err)
	}
	return nil
}

// Vet runs go vet on all packages.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes bin/ and the coverage report.
func Clean() error {
	artifacts := []string{
		"bin/",
		"coverage.out",
		"coverage.html",
	}
	for _, a := range artifacts {
		if err := sh.Rm(a); err != nil {
			return fmt.Errorf("removing %s: %w", a, err)
		}
	}
	return nil
}

// Install copies treebank-prep and adapt-run into GOBIN, or GOPATH/bin when
// GOBIN is unset.
func Install() error {
	st.Deps(Build)

	gocmd := st.GoCmd()
	bin, err := sh.Output(gocmd, "env", "GOBIN")
	if err != nil {
		return fmt.Errorf("determining GOBIN: %w", err)
	}
	if bin == "" {
		gopath, err := sh.Output(gocmd, "env", "GOPATH")
		if err != nil {
			return fmt.Errorf("determining GOPATH: %w", err)
		}
		bin = gopath + "/bin"
	}

	for _, name := range binaries {
		src := "bin/" + name
		dst := bin + "/" + name
		if runtime.GOOS == "windows" {
			dst += ".exe"
		}
		if err := sh.Copy(dst, src); err != nil {
			return fmt.Errorf("installing %s: %w", name, err)
		}
		if st.Verbose() {
			fmt.Printf("Installed %s to %s\n", name, dst)
		}
	}
	return nil
}

// Experiment namespace for dataset and self-training targets. Both read
// experiment.hcl unless ADAPT_CONFIG names another file.
type Experiment st.Namespace

// Prep builds the seed, train and test sets described by the experiment file.
func (Experiment) Prep() error {
	st.Deps(Build_Prep)
	return sh.RunV("./bin/treebank-prep", "--config", experimentConfig(), "split")
}

// Sweep self-trains once per seed size and records every run in the ledger.
func (Experiment) Sweep() error {
	st.Deps(Build_Run)
	return sh.RunV("./bin/adapt-run", "--config", experimentConfig(), "sweep")
}

// Runs lists the runs recorded in the experiment ledger.
func (Experiment) Runs() error {
	st.Deps(Build_Run)
	return sh.RunV("./bin/adapt-run", "--config", experimentConfig(), "runs")
}

func experimentConfig() string {
	if path := os.Getenv("ADAPT_CONFIG"); path != "" {
		return path
	}
	return "experiment.hcl"
}

// CI lints, tests and builds in that order, stopping at the first failure.
func CI() error {
	st.Deps(Init)
	st.SerialDeps(Lint, Test, Build)
	return nil
}

// Check vets and lints the module and runs the parser tests.
func Check() error {
	st.Deps(Vet, Lint, Parser)
	return nil
}

// Coverage writes coverage.out and renders it to coverage.html.
func Coverage() error {
	st.Deps(Init)
	if err := sh.RunV("go", "test", "-race", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-html=coverage.out", "-o", "coverage.html")
}

// Tidy fails when go mod tidy changes go.sum.
func Tidy() error {
	if err := sh.Run("go", "mod", "tidy"); err != nil {
		return err
	}
	output, err := sh.Output("git", "diff", "--exit-code", "go.sum")
	if err != nil {
		if output != "" {
			return fmt.Errorf("go.sum is not clean:\n%s", output)
		}
	}
	return nil
}
