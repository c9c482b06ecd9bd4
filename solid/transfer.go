package solid

import "github.com/dylanagius/karamelo/simerr"

// ComputeMassNodes scatters particle mass onto the grid: mass[in] =
// (reset?0:mass[in]) + sum_j wf_np[in][j]*mass[particle_j].
func (s *Solid) ComputeMassNodes(reset bool) {
	g := s.Grid
	nl := &s.Neighbors
	for in := 0; in < g.Nnodes; in++ {
		if reset {
			g.Mass[in] = 0
		}
		for j, ip := range nl.NeighNP[in] {
			g.Mass[in] += nl.WfNP[in][j] * s.Particles.Mass[ip]
		}
	}
}

// ComputeVelocityNodes gathers the mass-weighted particle velocity onto
// each node (PIC/MUSL/USL variants): vn = sum_j wf*mass*v / mass[in].
func (s *Solid) ComputeVelocityNodes(reset bool) {
	g := s.Grid
	nl := &s.Neighbors
	for in := 0; in < g.Nnodes; in++ {
		if reset {
			g.V[in] = grid3Zero
		}
		if g.Mass[in] <= 0 {
			continue
		}
		var vtemp grid3
		for j, ip := range nl.NeighNP[in] {
			vtemp = vtemp.Add(s.Particles.V[ip].Scale(nl.WfNP[in][j] * s.Particles.Mass[ip]))
		}
		g.V[in] = g.V[in].Add(vtemp.Scale(1.0 / g.Mass[in]))
	}
}

// ComputeVelocityNodesAPIC is the APIC variant of ComputeVelocityNodes: it
// adds the affine correction Fdot[ip]*(x0[in]-x0[ip]) to each particle's
// velocity before scattering.
func (s *Solid) ComputeVelocityNodesAPIC(reset bool) {
	g := s.Grid
	p := &s.Particles
	nl := &s.Neighbors
	for in := 0; in < g.Nnodes; in++ {
		if reset {
			g.V[in] = grid3Zero
		}
		if g.Mass[in] <= 0 {
			continue
		}
		for j, ip := range nl.NeighNP[in] {
			dx := g.X0[in].Sub(p.X0[ip])
			affine := p.FgradDot[ip].MulVec([3]float64(dx))
			vAffine := p.V[ip].Add(grid3(affine))
			g.V[in] = g.V[in].Add(vAffine.Scale(nl.WfNP[in][j] * p.Mass[ip] / g.Mass[in]))
		}
	}
}

// ComputeExternalForcesNodes scatters mb=external_force*mass onto the
// grid.
func (s *Solid) ComputeExternalForcesNodes(reset bool) {
	g := s.Grid
	nl := &s.Neighbors
	for in := 0; in < g.Nnodes; in++ {
		if reset {
			g.MB[in] = grid3Zero
		}
		if g.Mass[in] <= 0 {
			continue
		}
		for j, ip := range nl.NeighNP[in] {
			g.MB[in] = g.MB[in].Add(s.Particles.MB[ip].Scale(nl.WfNP[in][j]))
		}
	}
}

// ComputeInternalForcesNodesTL scatters the Total-Lagrangian internal
// force f[in] = -sum_j vol0PK1[ip]*wfd_np[in][j].
func (s *Solid) ComputeInternalForcesNodesTL() {
	g := s.Grid
	p := &s.Particles
	nl := &s.Neighbors
	for in := 0; in < g.Nnodes; in++ {
		var ftemp grid3
		for j, ip := range nl.NeighNP[in] {
			ftemp = ftemp.Sub(grid3(p.Vol0PK1[ip].MulVec([3]float64(nl.WfdNP[in][j]))))
		}
		g.F[in] = ftemp
	}
}

// ComputeInternalForcesNodesUL scatters the Updated-Lagrangian internal
// force f[in] -= sum_j vol[ip]*(sigma[ip]*wfd_np[in][j]).
func (s *Solid) ComputeInternalForcesNodesUL(reset bool) {
	g := s.Grid
	p := &s.Particles
	nl := &s.Neighbors
	for in := 0; in < g.Nnodes; in++ {
		if reset {
			g.F[in] = grid3Zero
		}
		for j, ip := range nl.NeighNP[in] {
			sigmaGrad := p.Sigma[ip].MulVec([3]float64(nl.WfdNP[in][j]))
			g.F[in] = g.F[in].Sub(grid3(sigmaGrad).Scale(p.Vol[ip]))
		}
	}
}

// ComputeParticleVelocities gathers v_update[ip] = sum_j wf_pn*vn_update
// (PIC gather).
func (s *Solid) ComputeParticleVelocities() {
	g := s.Grid
	p := &s.Particles
	nl := &s.Neighbors
	for ip := 0; ip < p.N; ip++ {
		var v grid3
		for j, in := range nl.NeighPN[ip] {
			v = v.Add(g.VUpdate[in].Scale(nl.WfPN[ip][j]))
		}
		p.VUpdate[ip] = v
	}
}

// ComputeParticleAcceleration gathers a[ip] = (1/dt)*sum_j wf_pn*(vn_update
// - vn), and reports it divided by mass as Fint, mirroring the source's
// reuse of the internal-force array for reporting.
func (s *Solid) ComputeParticleAcceleration(dt float64) {
	g := s.Grid
	p := &s.Particles
	nl := &s.Neighbors
	invDt := 1.0 / dt
	for ip := 0; ip < p.N; ip++ {
		var a grid3
		for j, in := range nl.NeighPN[ip] {
			a = a.Add(g.VUpdate[in].Sub(g.V[in]).Scale(nl.WfPN[ip][j]))
		}
		a = a.Scale(invDt)
		p.A[ip] = a
		p.Fint[ip] = a.Scale(1.0 / p.Mass[ip])
	}
}

// UpdateParticlePosition advances x[ip] += dt*v_update[ip]. In
// Updated-Lagrangian mode it asserts every particle remains within
// [boxLo,boxHi], returning a DomainError (fatal) otherwise.
func (s *Solid) UpdateParticlePosition(dt float64, ul bool, boxLo, boxHi [3]float64) error {
	p := &s.Particles
	for ip := 0; ip < p.N; ip++ {
		p.X[ip] = p.X[ip].Add(p.VUpdate[ip].Scale(dt))
		if ul {
			for d := 0; d < 3; d++ {
				if p.X[ip][d] < boxLo[d] || p.X[ip][d] > boxHi[d] {
					return (&simerr.Error{
						Kind:          simerr.DomainError,
						Message:       "particle left the domain box",
						ParticleIndex: ip,
						HasParticle:   true,
					}).WithBox(boxLo, boxHi)
				}
			}
		}
	}
	return nil
}

// UpdateParticleVelocities blends the PIC and FLIP updates: v[ip] =
// (1-flip)*v_update[ip] + flip*(v[ip]+dt*a[ip]).
func (s *Solid) UpdateParticleVelocities(dt, flip float64) {
	p := &s.Particles
	for ip := 0; ip < p.N; ip++ {
		p.V[ip] = p.VUpdate[ip].Scale(1.0 - flip).Add(p.V[ip].Add(p.A[ip].Scale(dt)).Scale(flip))
	}
}
