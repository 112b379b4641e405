package pcfg

import "errors"

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrModelNotFound indicates the model file does not exist.
	ErrModelNotFound = errors.New("pcfg: model file not found")

	// ErrInvalidModel indicates the model file exists but is malformed.
	ErrInvalidModel = errors.New("pcfg: invalid model format")

	// ErrNoTrees indicates no training tree survived normalization.
	ErrNoTrees = errors.New("pcfg: no usable training trees")
)
