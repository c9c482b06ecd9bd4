package material

import "github.com/cpmech/gosl/chk"

// EOS computes the hydrostatic (pressure) response of a material.
// compute_pressure returns pH, positive under compression, per the sign
// convention in spec §4.2.
type EOS interface {
	ComputePressure(J, rho, temperature, damage float64) float64
}

// eosAllocators holds all available EOS models; name => allocator,
// following the same self-registering factory pattern as
// mdl/solid/model.go's allocators map.
var eosAllocators = map[string]func(Params) EOS{}

// NewEOS returns a new EOS model of the given name, built from prms.
func NewEOS(name string, prms Params) (EOS, error) {
	alloc, ok := eosAllocators[name]
	if !ok {
		return nil, chk.Err("eos model %q is not available in the eos database", name)
	}
	return alloc(prms), nil
}

func init() {
	eosAllocators["linear"] = func(p Params) EOS { return NewLinearEOS(Find(p, "K"), Find(p, "rho0")) }
	eosAllocators["mie-gruneisen"] = func(p Params) EOS {
		return NewMieGruneisenEOS(Find(p, "rho0"), Find(p, "c0"), Find(p, "s"), Find(p, "gamma0"))
	}
	eosAllocators["ideal-gas"] = func(p Params) EOS { return NewIdealGasEOS(Find(p, "gamma")) }
}

// LinearEOS implements pH = K*(rho/rho0 - 1).
type LinearEOS struct {
	K    float64
	Rho0 float64
}

// NewLinearEOS builds a linear EOS from the bulk modulus K and reference
// density rho0.
func NewLinearEOS(k, rho0 float64) *LinearEOS {
	return &LinearEOS{K: k, Rho0: rho0}
}

// ComputePressure implements EOS.
func (o *LinearEOS) ComputePressure(J, rho, temperature, damage float64) float64 {
	return o.K * (rho/o.Rho0 - 1.0)
}

// MieGruneisenEOS implements the shock Hugoniot form of the Mie-Gruneisen
// equation of state, commonly used for metals under dynamic loading:
//
//	mu = rho/rho0 - 1
//	pH = rho0*c0^2*mu*(1+mu) / (1 - (s-1)*mu)^2 * (1 - gamma0/2*mu)   for mu>=0 (compression)
//	pH = rho0*c0^2*mu                                                  for mu<0  (tension)
type MieGruneisenEOS struct {
	Rho0   float64
	C0     float64 // bulk speed of sound
	S      float64 // linear Hugoniot slope coefficient
	Gamma0 float64 // Gruneisen gamma
}

// NewMieGruneisenEOS builds a Mie-Gruneisen shock EOS.
func NewMieGruneisenEOS(rho0, c0, s, gamma0 float64) *MieGruneisenEOS {
	return &MieGruneisenEOS{Rho0: rho0, C0: c0, S: s, Gamma0: gamma0}
}

// ComputePressure implements EOS.
func (o *MieGruneisenEOS) ComputePressure(J, rho, temperature, damage float64) float64 {
	mu := rho/o.Rho0 - 1.0
	if mu >= 0 {
		denom := 1.0 - (o.S-1.0)*mu
		return o.Rho0 * o.C0 * o.C0 * mu * (1.0 + mu) / (denom * denom) * (1.0 - 0.5*o.Gamma0*mu)
	}
	return o.Rho0 * o.C0 * o.C0 * mu
}

// IdealGasEOS implements pH = (gamma-1)*rho*e, with the specific internal
// energy e derived from the compression ratio under an adiabatic
// assumption: e = pH0/((gamma-1)*rho0) * (1/J)^(gamma-1) collapses, for
// this solver's purposes, to treating temperature as a proxy for e
// (spec's EOS contract passes temperature in, not e, so e=temperature).
type IdealGasEOS struct {
	Gamma float64
}

// NewIdealGasEOS builds an ideal-gas EOS with the given ratio of specific
// heats.
func NewIdealGasEOS(gamma float64) *IdealGasEOS {
	return &IdealGasEOS{Gamma: gamma}
}

// ComputePressure implements EOS.
func (o *IdealGasEOS) ComputePressure(J, rho, temperature, damage float64) float64 {
	e := temperature
	return (o.Gamma - 1.0) * rho * e
}
