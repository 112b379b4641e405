// Package config loads experiment files written in HCL.
//
// An experiment names the corpora to partition, the seed schedule, training
// parameters for the parsing engine and the inputs of a self-training run.
// Every block is optional; command-line flags override whatever is set here.
//
//	corpus "brown" {
//	  path           = "${env.CORPUS}/brown"
//	  train_fraction = 0.9
//	  selector       = "all"
//	}
//
//	seeds {
//	  sizes  = [1000, 2000]
//	  exact  = false
//	  prefix = "brown"
//	}
//
//	training {
//	  parent_annotation = true
//	  horizontal_markov = 2
//	}
//
//	selftrain {
//	  seed    = "brown_seed_1000.txt"
//	  pool    = "${env.CORPUS}/wsj/02"
//	  test    = "brown_test.txt"
//	  workers = 4
//	}
//
//	ledger {
//	  path = "runs.db"
//	}
//
// Expressions may reference environment variables as env.NAME.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	adapt "github.com/jamesainslie/go-adapt"
	"github.com/jamesainslie/go-adapt/corpus"
	"github.com/jamesainslie/go-adapt/partition"
)

// ErrInvalid indicates an experiment file that parses but is inconsistent.
var ErrInvalid = errors.New("config: invalid experiment")

// Experiment is the decoded content of an experiment file.
type Experiment struct {
	Corpora   []Corpus   `hcl:"corpus,block"`
	Seeds     *Seeds     `hcl:"seeds,block"`
	Training  *Training  `hcl:"training,block"`
	SelfTrain *SelfTrain `hcl:"selftrain,block"`
	Ledger    *Ledger    `hcl:"ledger,block"`
}

// Corpus describes a treebank on disk.
type Corpus struct {
	Name          string   `hcl:"name,label"`
	Path          string   `hcl:"path"`
	TrainFraction *float64 `hcl:"train_fraction,optional"`
	Selector      string   `hcl:"selector,optional"`
}

// Seeds describes the nested seed schedule.
type Seeds struct {
	Sizes  []int  `hcl:"sizes,optional"`
	Exact  bool   `hcl:"exact,optional"`
	Prefix string `hcl:"prefix,optional"`
}

// Training overrides fields of adapt.DefaultTrainingConfig. Unset fields keep
// their defaults.
type Training struct {
	ParentAnnotation  *bool    `hcl:"parent_annotation,optional"`
	HorizontalMarkov  *int     `hcl:"horizontal_markov,optional"`
	UnknownThreshold  *int     `hcl:"unknown_threshold,optional"`
	MaxSentenceLength *int     `hcl:"max_sentence_length,optional"`
	Smoothing         *float64 `hcl:"smoothing,optional"`
}

// SelfTrain names the inputs of a self-training run.
type SelfTrain struct {
	Seed    string `hcl:"seed,optional"`
	Pool    string `hcl:"pool,optional"`
	Test    string `hcl:"test,optional"`
	Workers int    `hcl:"workers,optional"`
}

// Ledger locates the run ledger database.
type Ledger struct {
	Path string `hcl:"path"`
}

// Load parses and validates the experiment file at path.
func Load(path string) (*Experiment, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var exp Experiment
	if diags := gohcl.DecodeBody(file.Body, evalContext(os.Environ()), &exp); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}
	if err := exp.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &exp, nil
}

// evalContext exposes environ as the env object.
func evalContext(environ []string) *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = cty.StringVal(value)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}

// Validate checks cross-field constraints hcl cannot express.
func (e *Experiment) Validate() error {
	seen := make(map[string]bool, len(e.Corpora))
	for _, c := range e.Corpora {
		if seen[c.Name] {
			return fmt.Errorf("%w: duplicate corpus %q", ErrInvalid, c.Name)
		}
		seen[c.Name] = true
		if c.Path == "" {
			return fmt.Errorf("%w: corpus %q has an empty path", ErrInvalid, c.Name)
		}
		if f := c.Fraction(); f < 0 || f > 1 {
			return fmt.Errorf("%w: corpus %q: %w", ErrInvalid, c.Name, partition.ErrInvalidFraction)
		}
		if _, err := c.ParseSelector(); err != nil {
			return fmt.Errorf("%w: corpus %q: %w", ErrInvalid, c.Name, err)
		}
	}
	if e.Seeds != nil && len(e.Seeds.Sizes) > 0 {
		if err := partition.ValidateSizes(e.Seeds.Sizes); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}
	if e.SelfTrain != nil && e.SelfTrain.Workers < 0 {
		return fmt.Errorf("%w: negative workers %d", ErrInvalid, e.SelfTrain.Workers)
	}
	if _, err := e.TrainingConfig(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Corpus returns the corpus block with the given name.
func (e *Experiment) Corpus(name string) (Corpus, bool) {
	for _, c := range e.Corpora {
		if c.Name == name {
			return c, true
		}
	}
	return Corpus{}, false
}

// TrainingConfig overlays the training block on the default configuration.
func (e *Experiment) TrainingConfig() (adapt.TrainingConfig, error) {
	cfg := adapt.DefaultTrainingConfig()
	if t := e.Training; t != nil {
		if t.ParentAnnotation != nil {
			cfg.ParentAnnotation = *t.ParentAnnotation
		}
		if t.HorizontalMarkov != nil {
			cfg.HorizontalMarkov = *t.HorizontalMarkov
		}
		if t.UnknownThreshold != nil {
			cfg.UnknownThreshold = *t.UnknownThreshold
		}
		if t.MaxSentenceLength != nil {
			cfg.MaxSentenceLength = *t.MaxSentenceLength
		}
		if t.Smoothing != nil {
			cfg.Smoothing = *t.Smoothing
		}
	}
	if err := cfg.Validate(); err != nil {
		return adapt.TrainingConfig{}, err
	}
	return cfg, nil
}

// SeedSizes returns the configured schedule or partition.DefaultSeedSizes.
func (e *Experiment) SeedSizes() []int {
	if e.Seeds == nil || len(e.Seeds.Sizes) == 0 {
		return partition.DefaultSeedSizes
	}
	return e.Seeds.Sizes
}

// Fraction returns the train fraction, defaulting to
// partition.DefaultTrainFraction.
func (c Corpus) Fraction() float64 {
	if c.TrainFraction == nil {
		return partition.DefaultTrainFraction
	}
	return *c.TrainFraction
}

// ParseSelector parses the selector text; an empty selector accepts all files.
func (c Corpus) ParseSelector() (corpus.Selector, error) {
	return corpus.ParseSelector(c.Selector)
}
