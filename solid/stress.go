package solid

import (
	"math"

	"github.com/dylanagius/karamelo/mathkit"
	"github.com/dylanagius/karamelo/simerr"
)

// UpdateStress performs the per-particle constitutive update (branch A,
// Neo-Hookean, or branch B, EOS+Strength+optional Damage) and reduces the
// CFL timestep bound dtCFL over all particles in this solid. tl selects
// whether the Total-Lagrangian vol0PK1 is also recomputed.
func (s *Solid) UpdateStress(dt float64, tl bool, timestep int64) error {
	p := &s.Particles
	mat := s.Mat
	eye := mathkit.Identity3()
	neoHookean := mat.IsNeoHookean()

	// Every particle's constitutive update reads and writes only its own
	// slot across these slices; no node or sibling particle is touched,
	// so this loop is safe to fan out (spec.md §5).
	ParallelFor(p.N, func(ip int) {
		if neoHookean {
			finvT := p.FgradInv[ip].T()
			pk1 := p.Fgrad[ip].Sub(finvT).Scale(mat.G).Add(finvT.Scale(mat.Lambda * math.Log(p.J[ip])))
			p.Vol0PK1[ip] = pk1.Scale(p.Vol0[ip])
			p.Sigma[ip] = p.Fgrad[ip].Mul(pk1.T()).Scale(1.0 / p.J[ip])
			p.StrainEl[ip] = p.Fgrad[ip].T().Mul(p.Fgrad[ip]).Sub(eye).Scale(0.5)
			return
		}

		pH := 0.0
		if mat.EOS != nil {
			pH = mat.EOS.ComputePressure(p.J[ip], p.Rho[ip], 0, p.Damage[ip])
		}
		sigmaDev, dEps := mat.Strength.UpdateDeviatoricStress(p.Sigma[ip], p.D[ip], dt, p.EffPlasticStrain[ip], p.EffPlasticStrainRate[ip])
		p.EffPlasticStrain[ip] += dEps

		tav := 1000.0 * s.Grid.Cellsize / mat.SignalVelocity
		rate := p.EffPlasticStrainRate[ip]
		rate -= rate * dt / tav
		rate += dEps / tav
		if rate < 0 {
			rate = 0
		}
		p.EffPlasticStrainRate[ip] = rate

		if mat.Damage != nil {
			p.DamageInit[ip], p.Damage[ip] = mat.Damage.ComputeDamage(p.DamageInit[ip], p.Damage[ip], pH, sigmaDev, rate, dEps, 0)
		}
		p.Sigma[ip] = eye.Scale(-pH).Add(sigmaDev)

		trD := p.D[ip].Trace()
		trPrev := p.StrainEl[ip].Trace()
		volumetric := eye.Scale((dt*trD + trPrev) / 3.0)
		if p.Damage[ip] > 1e-10 {
			p.StrainEl[ip] = volumetric.Add(sigmaDev.Scale(1.0 / (mat.G * (1.0 - p.Damage[ip]))))
		} else {
			p.StrainEl[ip] = volumetric
		}

		if tl {
			rsrT := p.R[ip].Mul(p.Sigma[ip]).Mul(p.R[ip].T())
			p.Vol0PK1[ip] = rsrT.Mul(p.FgradInv[ip].T()).Scale(p.Vol0[ip] * p.J[ip])
		}
	})

	minInvC := 1.0e22
	minHRatio := 1.0e22
	fourThird := 4.0 / 3.0
	for ip := 0; ip < p.N; ip++ {
		c := p.Rho[ip] / (mat.K + fourThird*mat.G)
		if c < minInvC || math.IsNaN(c) {
			minInvC = c
		}
		for row := 0; row < 3; row++ {
			var rowNormSq float64
			for col := 0; col < 3; col++ {
				rowNormSq += p.Fgrad[ip][row][col] * p.Fgrad[ip][row][col]
			}
			if rowNormSq < minHRatio {
				minHRatio = rowNormSq
			}
		}
		if math.IsNaN(minInvC) || minInvC < 0 {
			err := &simerr.Error{Kind: simerr.IntegrationError, Message: "min_inv_p_wave_speed is NaN or negative"}
			return err.WithParticle(ip, timestep).WithTensors(p.Fgrad[ip], p.Sigma[ip])
		}
	}
	s.MinInvPWaveSpeed = math.Sqrt(minInvC)

	candidate := s.MinInvPWaveSpeed * s.Grid.Cellsize * math.Sqrt(minHRatio)
	if candidate < s.DtCFL {
		s.DtCFL = candidate
	}
	if math.IsNaN(s.DtCFL) {
		return &simerr.Error{Kind: simerr.IntegrationError, Message: "dtCFL is NaN"}
	}
	return nil
}
