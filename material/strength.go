package material

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/dylanagius/karamelo/mathkit"
)

// Strength performs the deviatoric radial-return step: given the previous
// deviatoric stress, the rate of deformation and the current plastic
// state, it returns the new deviatoric stress and reports the plastic
// strain increment consumed this step.
type Strength interface {
	// ShearModulus returns G, used both in the trial-stress rate and by
	// update_stress's elastic-strain deviatoric term.
	ShearModulus() float64

	// UpdateDeviatoricStress performs one radial-return step on the trial
	// deviator sigmaPrevDev + dt*2*G*dev(D). effPlasticStrain and
	// effPlasticStrainRate are the particle's running values *before*
	// this step; the returned plasticStrainIncrement is the caller's to
	// add to its own running sum.
	UpdateDeviatoricStress(sigmaPrev mathkit.Mat3, d mathkit.Mat3, dt, effPlasticStrain, effPlasticStrainRate float64) (sigmaDev mathkit.Mat3, plasticStrainIncrement float64)
}

var strengthAllocators = map[string]func(Params) Strength{}

// NewStrength returns a new Strength model of the given name, built from
// prms.
func NewStrength(name string, prms Params) (Strength, error) {
	alloc, ok := strengthAllocators[name]
	if !ok {
		return nil, chk.Err("strength model %q is not available in the strength database", name)
	}
	return alloc(prms), nil
}

func init() {
	strengthAllocators["linear"] = func(p Params) Strength { return NewLinearStrength(Find(p, "G")) }
	strengthAllocators["johnson-cook"] = func(p Params) Strength {
		return NewJohnsonCookStrength(
			Find(p, "G"), Find(p, "A"), Find(p, "B"), Find(p, "n"),
			Find(p, "epsdot0"), Find(p, "C"),
		)
	}
}

// LinearStrength is a purely elastic deviatoric response: it never yields.
// It gives EOS-bearing materials a Strength sub-model without plasticity,
// the boundary case spec §4.4.5 implies between branch A (Neo-Hookean,
// both nil) and branch B (EOS+Strength).
type LinearStrength struct {
	G_ float64
}

// NewLinearStrength builds a purely-elastic Strength model with shear
// modulus g.
func NewLinearStrength(g float64) *LinearStrength {
	return &LinearStrength{G_: g}
}

// ShearModulus implements Strength.
func (o *LinearStrength) ShearModulus() float64 { return o.G_ }

// UpdateDeviatoricStress implements Strength: always returns the trial
// deviator unscaled, with zero plastic strain increment.
func (o *LinearStrength) UpdateDeviatoricStress(sigmaPrev, d mathkit.Mat3, dt, effPlasticStrain, effPlasticStrainRate float64) (mathkit.Mat3, float64) {
	devRate := mathkit.Deviator(d).Scale(2.0 * o.G_)
	sigmaTrial := mathkit.Deviator(sigmaPrev).Add(devRate.Scale(dt))
	return sigmaTrial, 0.0
}

// JohnsonCookStrength implements the Johnson-Cook strength model:
//
//	Y = (A + B*epsP^n) * (1 + max(1, epsdot/epsdot0))^C
//
// On yield (trial von-Mises J2 = sqrt(3/2)*||sigma_trial_dev|| exceeds Y),
// the returned deviator is the trial deviator scaled by Y/J2 and the
// plastic-strain increment is (J2-Y)/(3G); otherwise the increment is 0.
type JohnsonCookStrength struct {
	G_      float64 // shear modulus
	A       float64 // initial yield stress
	B       float64 // plastic-strain hardening coefficient
	N       float64 // plastic-strain hardening exponent
	Epsdot0 float64 // reference strain rate
	C       float64 // strain-rate hardening coefficient
}

// NewJohnsonCookStrength builds a Johnson-Cook strength model.
func NewJohnsonCookStrength(g, a, b, n, epsdot0, c float64) *JohnsonCookStrength {
	return &JohnsonCookStrength{G_: g, A: a, B: b, N: n, Epsdot0: epsdot0, C: c}
}

// ShearModulus implements Strength.
func (o *JohnsonCookStrength) ShearModulus() float64 { return o.G_ }

// UpdateDeviatoricStress implements Strength.
func (o *JohnsonCookStrength) UpdateDeviatoricStress(sigmaPrev, d mathkit.Mat3, dt, effPlasticStrain, effPlasticStrainRate float64) (sigmaDev mathkit.Mat3, plasticStrainIncrement float64) {
	epsdotRatio := effPlasticStrainRate / o.Epsdot0
	if epsdotRatio < 1.0 {
		epsdotRatio = 1.0
	}
	yieldStress := (o.A + o.B*math.Pow(effPlasticStrain, o.N)) * math.Pow(1.0+epsdotRatio, o.C)

	devRate := mathkit.Deviator(d).Scale(2.0 * o.G_)
	sigmaInitialDev := mathkit.Deviator(sigmaPrev)
	sigmaTrialDev := sigmaInitialDev.Add(devRate.Scale(dt))

	j2 := math.Sqrt(1.5) * sigmaTrialDev.Norm()
	if j2 < yieldStress {
		return sigmaTrialDev, 0.0
	}

	plasticStrainIncrement = (j2 - yieldStress) / (3.0 * o.G_)
	sigmaDev = sigmaTrialDev.Scale(yieldStress / j2)
	return sigmaDev, plasticStrainIncrement
}
