// Package simerr defines the solver's error taxonomy: a small closed set
// of kinds (not a type hierarchy) distinguishing how a failure should be
// reported and who is responsible for it. It is its own leaf package,
// separate from sim, so that solid/method/rankdomain can return a
// classified error without importing the orchestration layer that in turn
// depends on them.
package simerr

import (
	"fmt"

	"github.com/dylanagius/karamelo/mathkit"
)

// Kind classifies a fatal error by where in the pipeline it originates.
type Kind int

const (
	// ParseError: unknown command, wrong arity, bad enum value in the
	// input script.
	ParseError Kind = iota
	// ConfigError: material/region missing for a solid, ptag collision,
	// or any other setup-time misconfiguration.
	ConfigError
	// IntegrationError: J<=0, NaN in dtCFL or stress, polar-decomposition
	// failure.
	IntegrationError
	// DomainError: a particle left the problem box in Updated-Lagrangian
	// mode.
	DomainError
	// IOError: dump or restart open/write failure.
	IOError
)

func (k Kind) String() string {
	switch k {
	case ParseError:
		return "ParseError"
	case ConfigError:
		return "ConfigError"
	case IntegrationError:
		return "IntegrationError"
	case DomainError:
		return "DomainError"
	case IOError:
		return "IOError"
	default:
		return "UnknownError"
	}
}

// Error is the solver's single error type, tagged with a Kind. No error
// recovers silently: every Error returned from a per-timestep kernel is
// meant to halt the run on the detecting rank.
type Error struct {
	Kind    Kind
	Message string

	// Context, optional: identifies the offending particle and timestep for
	// IntegrationError and DomainError.
	ParticleIndex int
	HasParticle   bool
	Timestep      int64

	// IntegrationError context: the deformation gradient and stress the
	// offending particle carried when the failure was detected.
	F, Sigma   mathkit.Mat3
	HasTensors bool

	// DomainError context: the problem box the particle left.
	BoxLo, BoxHi [3]float64
	HasBox       bool
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.HasParticle {
		msg += fmt.Sprintf(" (particle %d, timestep %d)", e.ParticleIndex, e.Timestep)
	}
	if e.HasTensors {
		msg += fmt.Sprintf(" F=%v sigma=%v", e.F, e.Sigma)
	}
	if e.HasBox {
		msg += fmt.Sprintf(" box=[%v, %v]", e.BoxLo, e.BoxHi)
	}
	return msg
}

// WithParticle returns a copy of e annotated with the offending particle
// index and timestep, for IntegrationError/DomainError sites that learn
// this context after constructing the base error.
func (e *Error) WithParticle(ip int, timestep int64) *Error {
	c := *e
	c.ParticleIndex, c.HasParticle, c.Timestep = ip, true, timestep
	return &c
}

// WithTensors returns a copy of e annotated with the offending particle's
// deformation gradient and stress, for IntegrationError sites (J<=0, NaN
// stress, polar-decomposition failure).
func (e *Error) WithTensors(f, sigma mathkit.Mat3) *Error {
	c := *e
	c.F, c.Sigma, c.HasTensors = f, sigma, true
	return &c
}

// WithBox returns a copy of e annotated with the problem box a particle
// left, for DomainError sites.
func (e *Error) WithBox(lo, hi [3]float64) *Error {
	c := *e
	c.BoxLo, c.BoxHi, c.HasBox = lo, hi, true
	return &c
}
