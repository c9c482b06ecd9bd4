// Package sim wires the core packages (mathkit, material, grid, solid,
// method, rankdomain) into a runnable simulation: the input-script
// tokenizer, fix dispatch, dump writer and the per-timestep run loop. It
// is the only package that depends on every other package in this module.
package sim

import "github.com/dylanagius/karamelo/simerr"

// Error is the solver's error type, re-exported from simerr so that
// callers outside this module only need to import sim.
type Error = simerr.Error

// Kind classifies an Error; re-exported from simerr.
type Kind = simerr.Kind

const (
	ParseError       = simerr.ParseError
	ConfigError      = simerr.ConfigError
	IntegrationError = simerr.IntegrationError
	DomainError      = simerr.DomainError
	IOError          = simerr.IOError
)
