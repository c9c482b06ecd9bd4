package material

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/dylanagius/karamelo/mathkit"
)

// Damage evolves a particle's damage state from the current hydrostatic
// pressure, deviatoric stress and plastic-strain increment. damageInit and
// damage are the particle's own accumulators, passed in and returned
// updated — Damage implementations never reset them, only advance them,
// preserving the monotonicity invariant (damage never decreases).
type Damage interface {
	ComputeDamage(damageInit, damage, pH float64, sigmaDev mathkit.Mat3, epsdot, plasticStrainIncrement, temperature float64) (newDamageInit, newDamage float64)
}

var damageAllocators = map[string]func(Params) Damage{}

// NewDamage returns a new Damage model of the given name, built from prms.
func NewDamage(name string, prms Params) (Damage, error) {
	alloc, ok := damageAllocators[name]
	if !ok {
		return nil, chk.Err("damage model %q is not available in the damage database", name)
	}
	return alloc(prms), nil
}

func init() {
	damageAllocators["johnson-cook"] = func(p Params) Damage {
		return NewJohnsonCookDamage(Find(p, "d1"), Find(p, "d2"), Find(p, "d3"), Find(p, "d4"), Find(p, "epsdot0"))
	}
}

// JohnsonCookDamage implements the Johnson-Cook fracture-strain damage
// model. The stress-triaxiality clamp below is applied asymmetrically in
// the original source (triax>3 is clamped to 3, but there is no
// corresponding lower clamp) — this is preserved deliberately, per the
// spec's instruction to flag rather than "fix" this ambiguity.
type JohnsonCookDamage struct {
	D1      float64 // failure strain at zero triaxiality
	D2, D3  float64 // triaxiality-dependence coefficients
	D4      float64 // strain-rate dependence coefficient; <=0 disables the term
	Epsdot0 float64 // reference strain rate
}

// NewJohnsonCookDamage builds a Johnson-Cook damage model.
func NewJohnsonCookDamage(d1, d2, d3, d4, epsdot0 float64) *JohnsonCookDamage {
	return &JohnsonCookDamage{D1: d1, D2: d2, D3: d3, D4: d4, Epsdot0: epsdot0}
}

// ComputeDamage implements Damage.
func (o *JohnsonCookDamage) ComputeDamage(damageInit, damage, pH float64, sigmaDev mathkit.Mat3, epsdot, plasticStrainIncrement, temperature float64) (float64, float64) {
	vm := math.Sqrt(1.5) * sigmaDev.Norm()

	var triax float64
	if pH != 0.0 && vm != 0.0 {
		triax = -pH / (vm + 0.01*math.Abs(pH))
	}
	// asymmetric clamp, preserved as-is: only an upper bound is applied.
	if triax > 3.0 {
		triax = 3.0
	}

	failureStrain := o.D1 + o.D2*math.Exp(o.D3*triax)
	if o.D4 > 0.0 && epsdot > o.Epsdot0 {
		failureStrain *= 1.0 + o.D4*math.Log(epsdot/o.Epsdot0)
	}

	damageInit += plasticStrainIncrement / failureStrain
	if damageInit >= 1.0 {
		ramped := (damageInit - 1.0) * 10.0
		if ramped < 1.0 {
			damage = ramped
		} else {
			damage = 1.0
		}
	}
	return damageInit, damage
}
