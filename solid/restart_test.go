package solid

import (
	"bytes"
	"math"
	"testing"

	"github.com/dylanagius/karamelo/grid"
	"github.com/dylanagius/karamelo/mathkit"
)

// TestRestartRoundTrip checks spec.md §8's named testable property:
// WriteRestart followed by ReadRestart reproduces every field it claims to
// carry, byte for byte.
func TestRestartRoundTrip(t *testing.T) {
	var p Particles
	p.Grow(2, 3)

	p.PTag[0], p.PTag[1] = 11, 22
	p.X0[0] = grid.Vec3{0.1, 0.2, 0.3}
	p.X[0] = grid.Vec3{0.4, 0.5, 0.6}
	p.V[1] = grid.Vec3{1, 2, 3}
	p.Fgrad[0] = mathkit.Identity3()
	p.Sigma[1] = mathkit.Mat3{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	p.StrainEl[0] = mathkit.Mat3{{0.1, 0, 0}, {0, 0.1, 0}, {0, 0, 0.1}}
	p.EffPlasticStrain[0] = 0.05
	p.EffPlasticStrainRate[1] = 0.02
	p.Damage[0] = 0.5
	p.DamageInit[1] = 0.25
	p.Mass[0], p.Mass[1] = 1.5, 2.5
	p.Vol0[0], p.Vol0[1] = 0.1, 0.2

	var buf bytes.Buffer
	if err := p.WriteRestart(&buf); err != nil {
		t.Fatalf("WriteRestart: %v", err)
	}

	var got Particles
	if err := got.ReadRestart(&buf); err != nil {
		t.Fatalf("ReadRestart: %v", err)
	}

	if got.N != p.N || got.Dim != p.Dim {
		t.Fatalf("N/Dim = %d/%d, want %d/%d", got.N, got.Dim, p.N, p.Dim)
	}
	for i := 0; i < p.N; i++ {
		if got.PTag[i] != p.PTag[i] {
			t.Fatalf("PTag[%d] = %d, want %d", i, got.PTag[i], p.PTag[i])
		}
		if got.X0[i] != p.X0[i] || got.X[i] != p.X[i] || got.V[i] != p.V[i] {
			t.Fatalf("particle %d position/velocity mismatch: got X0=%v X=%v V=%v, want X0=%v X=%v V=%v", i, got.X0[i], got.X[i], got.V[i], p.X0[i], p.X[i], p.V[i])
		}
		if got.Fgrad[i] != p.Fgrad[i] || got.Sigma[i] != p.Sigma[i] || got.StrainEl[i] != p.StrainEl[i] {
			t.Fatalf("particle %d tensor mismatch", i)
		}
		for _, pair := range []struct{ name string; got, want float64 }{
			{"EffPlasticStrain", got.EffPlasticStrain[i], p.EffPlasticStrain[i]},
			{"EffPlasticStrainRate", got.EffPlasticStrainRate[i], p.EffPlasticStrainRate[i]},
			{"Damage", got.Damage[i], p.Damage[i]},
			{"DamageInit", got.DamageInit[i], p.DamageInit[i]},
			{"Mass", got.Mass[i], p.Mass[i]},
			{"Vol0", got.Vol0[i], p.Vol0[i]},
		} {
			if math.Abs(pair.got-pair.want) > 1e-15 {
				t.Fatalf("particle %d %s = %v, want %v", i, pair.name, pair.got, pair.want)
			}
		}
	}
}

// TestReadRestartRejectsGarbageInput checks that ReadRestart refuses a
// buffer too short to hold WriteRestart's length-prefixed framing instead of
// silently misparsing it.
func TestReadRestartRejectsGarbageInput(t *testing.T) {
	var got Particles
	if err := got.ReadRestart(bytes.NewReader([]byte{1, 2, 3, 4})); err == nil {
		t.Fatalf("ReadRestart: want error on truncated/garbage input, got nil")
	}
}
