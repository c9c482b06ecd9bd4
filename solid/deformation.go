package solid

import (
	"github.com/dylanagius/karamelo/mathkit"
	"github.com/dylanagius/karamelo/simerr"
)

// ComputeRateDeformationGradientTL computes Fdot[ip] from the grid's
// current velocity field (MUSL-style), using the reference-configuration
// shape-function gradients wfd_pn.
func (s *Solid) ComputeRateDeformationGradientTL() {
	s.rateDeformation(s.Grid.V, &s.Particles.FgradDot)
}

// ComputeRateDeformationGradientULMUSL is the UL analogue of
// ComputeRateDeformationGradientTL, writing L instead of Fdot.
func (s *Solid) ComputeRateDeformationGradientULMUSL() {
	s.rateDeformation(s.Grid.V, &s.Particles.L)
}

// ComputeRateDeformationGradientULUSL uses the updated (post-integration)
// nodal velocity v_update rather than v.
func (s *Solid) ComputeRateDeformationGradientULUSL() {
	s.rateDeformation(s.Grid.VUpdate, &s.Particles.L)
}

// rateDeformation is the shared kernel behind the three non-APIC rate
// variants: out[ip]_ik = sum_j vn[in_j]_i * wfd_pn[ip][j]_k.
func (s *Solid) rateDeformation(vn []grid3, out *[]mathkit.Mat3) {
	p := &s.Particles
	nl := &s.Neighbors
	for ip := 0; ip < p.N; ip++ {
		var m mathkit.Mat3
		for j, in := range nl.NeighPN[ip] {
			g := nl.WfdPN[ip][j]
			v := vn[in]
			for i := 0; i < 3; i++ {
				for k := 0; k < 3; k++ {
					m[i][k] += v[i] * g[k]
				}
			}
		}
		(*out)[ip] = m
	}
}

// ComputeRateDeformationGradientTLAPIC computes the APIC affine velocity
// gradient Fdot[ip] = (sum_j vn[in_j]*(x0n[in_j]-x0[ip])^T*wf_pn[ip][j]) *
// Di[ip], using the updated nodal velocity (as the reference source does).
func (s *Solid) ComputeRateDeformationGradientTLAPIC() {
	s.rateDeformationAPIC(s.Grid.VUpdate, &s.Particles.FgradDot)
}

// ComputeRateDeformationGradientULAPIC is the Updated-Lagrangian analogue,
// writing L instead of Fdot.
func (s *Solid) ComputeRateDeformationGradientULAPIC() {
	s.rateDeformationAPIC(s.Grid.VUpdate, &s.Particles.L)
}

func (s *Solid) rateDeformationAPIC(vn []grid3, out *[]mathkit.Mat3) {
	p := &s.Particles
	nl := &s.Neighbors
	for ip := 0; ip < p.N; ip++ {
		var m mathkit.Mat3
		for j, in := range nl.NeighPN[ip] {
			dx := s.Grid.X0[in].Sub(p.X0[ip])
			v := vn[in]
			w := nl.WfPN[ip][j]
			for i := 0; i < 3; i++ {
				for k := 0; k < 3; k++ {
					m[i][k] += v[i] * dx[k] * w
				}
			}
		}
		(*out)[ip] = m.Mul(p.Di[ip])
	}
}

// ComputeDeformationGradient rebuilds F directly from current/reference
// node positions: F[ip] = I + sum_j (x[in_j]-x0[in_j]) (outer) wfd_pn[ip][j].
// Used at setup and whenever F needs recomputing from scratch rather than
// integrated incrementally.
func (s *Solid) ComputeDeformationGradient() {
	p := &s.Particles
	nl := &s.Neighbors
	eye := mathkit.Identity3()
	for ip := 0; ip < p.N; ip++ {
		var m mathkit.Mat3
		for j, in := range nl.NeighPN[ip] {
			dx := s.Grid.X[in].Sub(s.Grid.X0[in])
			g := nl.WfdPN[ip][j]
			for i := 0; i < 3; i++ {
				for k := 0; k < 3; k++ {
					m[i][k] += dx[i] * g[k]
				}
			}
		}
		p.Fgrad[ip] = m.Add(eye)
	}
}

// ComputeInertiaTensor sets the particle APIC inertia tensor Di = c*I,
// where c depends on the shape-function family, per spec: linear =
// 16/3/dx^2, quadratic-spline = 4/dx^2, cubic-spline = 3/dx^2,
// Bernstein-quadratic = 12/dx^2.
func (s *Solid) ComputeInertiaTensor(shapeFn string) error {
	dx := s.Grid.Cellsize
	inv := 1.0 / (dx * dx)
	var c float64
	switch shapeFn {
	case "linear":
		c = 16.0 / 3.0 * inv
	case "quadratic-spline":
		c = 4.0 * inv
	case "cubic-spline":
		c = 3.0 * inv
	case "Bernstein-quadratic":
		c = 12.0 * inv
	default:
		return &simerr.Error{Kind: simerr.ConfigError, Message: "unknown shape function " + shapeFn}
	}
	di := mathkit.Identity3().Scale(c)
	for ip := range s.Particles.Di {
		s.Particles.Di[ip] = di
	}
	return nil
}

// UpdateDeformationGradient integrates F (TL: F += dt*Fdot; UL: F =
// (I+dt*L)*F), recomputes Finv, J, vol and rho, and — for materials that
// are not Neo-Hookean — also derives L (TL only, from Fdot*Finv), the
// polar decomposition (R,U) and the symmetric rate of deformation D.
func (s *Solid) UpdateDeformationGradient(dt float64, tl, neoHookean bool, timestep int64) error {
	p := &s.Particles
	eye := mathkit.Identity3()
	for ip := 0; ip < p.N; ip++ {
		if tl {
			p.Fgrad[ip] = p.Fgrad[ip].Add(p.FgradDot[ip].Scale(dt))
		} else {
			p.Fgrad[ip] = eye.Add(p.L[ip].Scale(dt)).Mul(p.Fgrad[ip])
		}

		p.J[ip] = p.Fgrad[ip].Det()
		if p.J[ip] <= 0 {
			err := &simerr.Error{Kind: simerr.IntegrationError, Message: "J<=0"}
			return err.WithParticle(ip, timestep).WithTensors(p.Fgrad[ip], p.Sigma[ip])
		}
		p.FgradInv[ip] = p.Fgrad[ip].Inv()
		p.Vol[ip] = p.J[ip] * p.Vol0[ip]
		p.Rho[ip] = p.Rho0[ip] / p.J[ip]

		if !neoHookean {
			if tl {
				p.L[ip] = p.FgradDot[ip].Mul(p.FgradInv[ip])
			}
			r, u, ok := mathkit.PolarDecompose(p.Fgrad[ip])
			if !ok {
				err := &simerr.Error{Kind: simerr.IntegrationError, Message: "polar decomposition failed"}
				return err.WithParticle(ip, timestep).WithTensors(p.Fgrad[ip], p.Sigma[ip])
			}
			p.R[ip], p.U[ip] = r, u

			if tl {
				lpr := p.R[ip].T().Mul(p.L[ip].Add(p.L[ip].T())).Mul(p.R[ip])
				p.D[ip] = lpr.Scale(0.5)
			} else {
				p.D[ip] = p.L[ip].Add(p.L[ip].T()).Scale(0.5)
			}
		}
	}
	return nil
}
