package simerr

import (
	"strings"
	"testing"

	"github.com/dylanagius/karamelo/mathkit"
)

// TestErrorCarriesIntegrationContext checks that WithParticle/WithTensors
// compose onto an IntegrationError and surface in its message, matching
// spec.md's requirement that an IntegrationError name the offending
// particle, F, sigma and timestep.
func TestErrorCarriesIntegrationContext(t *testing.T) {
	base := &Error{Kind: IntegrationError, Message: "J<=0"}
	f := mathkit.Identity3()
	sigma := mathkit.Mat3{}
	err := base.WithParticle(7, 42).WithTensors(f, sigma)

	if !err.HasParticle || err.ParticleIndex != 7 || err.Timestep != 42 {
		t.Fatalf("particle context = %+v, want index 7 timestep 42", err)
	}
	if !err.HasTensors || err.F != f || err.Sigma != sigma {
		t.Fatalf("tensor context not carried through: %+v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "particle 7") || !strings.Contains(msg, "timestep 42") {
		t.Fatalf("Error() = %q, want it to mention particle 7 and timestep 42", msg)
	}
}

// TestErrorCarriesDomainContext checks that WithBox attaches the box bounds
// a DomainError needs per spec.md.
func TestErrorCarriesDomainContext(t *testing.T) {
	lo, hi := [3]float64{0, 0, 0}, [3]float64{1, 1, 1}
	err := (&Error{Kind: DomainError, Message: "particle left the domain box", ParticleIndex: 3, HasParticle: true}).WithBox(lo, hi)

	if !err.HasBox || err.BoxLo != lo || err.BoxHi != hi {
		t.Fatalf("box context = %+v, want lo=%v hi=%v", err, lo, hi)
	}
	if !strings.Contains(err.Error(), "particle 3") {
		t.Fatalf("Error() = %q, want it to mention particle 3", err.Error())
	}
}
