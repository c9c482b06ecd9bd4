package method

import (
	"math"

	"github.com/dylanagius/karamelo/grid"
	"github.com/dylanagius/karamelo/simerr"
	"github.com/dylanagius/karamelo/solid"
)

// Method is the per-timestep scheduler for one of the six supported
// variants: tlmpm, ulmpm, tlcpdi, ulcpdi, tlcpdi2, ulcpdi2. It holds the
// shape function and FLIP blending factor shared by every solid it drives;
// CPDI corner bookkeeping (tlcpdi/ulcpdi/tlcpdi2/ulcpdi2) extends the plain
// MPM flow (tlmpm/ulmpm) with a particle-domain update done inside Reset.
type Method struct {
	Style string
	Shape ShapeFn
	Flip  float64 // 0 => pure PIC, 1 => pure FLIP
}

// New builds a Method for the named style ("tlmpm", "ulmpm", "tlcpdi",
// "ulcpdi", "tlcpdi2", "ulcpdi2"), with the given shape function name and
// FLIP blending factor.
func New(style, shapeFnName string, flip float64) (*Method, error) {
	shape, ok := NewShapeFn(shapeFnName)
	if !ok {
		return nil, &simerr.Error{Kind: simerr.ConfigError, Message: "unknown shape function " + shapeFnName}
	}
	switch style {
	case "tlmpm", "ulmpm", "tlcpdi", "ulcpdi", "tlcpdi2", "ulcpdi2":
	default:
		return nil, &simerr.Error{Kind: simerr.ConfigError, Message: "unknown method style " + style}
	}
	return &Method{Style: style, Shape: shape, Flip: flip}, nil
}

// IsTL reports whether this method runs in Total-Lagrangian mode.
func (m *Method) IsTL() bool { return m.Style[:2] == "tl" }

// IsCPDI reports whether this method carries CPDI domain vectors.
func (m *Method) IsCPDI() bool { return len(m.Style) > 2 && m.Style[2:5] == "cpd" }

// isCPDI2 reports whether this method is the explicit-corner CPDI2 variant
// (tlcpdi2/ulcpdi2) rather than the domain-vector CPDI1 variant (tlcpdi/ulcpdi).
func (m *Method) isCPDI2() bool { return m.Style[len(m.Style)-1] == '2' }

// evalNodeWeight evaluates the tensor-product shape function and its
// gradient for one particle-side evaluation point x against node xn,
// returning ok=false if the point falls outside the node's support along
// any axis.
func (m *Method) evalNodeWeight(x, xn [3]float64, dim int, cellsize, support float64) (n float64, grad [3]float64, ok bool) {
	n = 1.0
	var dnx [3]float64
	for d := 0; d < dim; d++ {
		r := x[d] - xn[d]
		if math.Abs(r) >= support {
			return 0, grad, false
		}
		nd, dnd := m.Shape.Eval(r, cellsize)
		dnx[d] = dnd
		n *= nd
	}
	if n == 0 {
		return 0, grad, false
	}
	for d := 0; d < dim; d++ {
		gd := dnx[d]
		for e := 0; e < dim; e++ {
			if e == d {
				continue
			}
			r := x[e] - xn[e]
			ne, _ := m.Shape.Eval(r, cellsize)
			gd *= ne
		}
		grad[d] = gd
	}
	return n, grad, true
}

// particleDomainCorners returns the evaluation points the shape function is
// averaged across for particle ip: a single point (the particle center) for
// plain MPM, the 2^dim corners of the CPDI1 domain-vector parallelepiped
// (center +/- each combination of the Dim domain vectors in Rp/Rp0), or the
// CPDI2 corners read directly from Xpc/Xpc0.
func (m *Method) particleDomainCorners(s *solid.Solid, ip int) [][3]float64 {
	p := &s.Particles
	tl := m.IsTL()
	if !m.IsCPDI() {
		if tl {
			return [][3]float64{[3]float64(p.X0[ip])}
		}
		return [][3]float64{[3]float64(p.X[ip])}
	}
	if m.isCPDI2() {
		base := ip * p.NumCorners
		pts := make([][3]float64, p.NumCorners)
		for c := 0; c < p.NumCorners; c++ {
			if tl {
				pts[c] = [3]float64(p.Xpc0[base+c])
			} else {
				pts[c] = [3]float64(p.Xpc[base+c])
			}
		}
		return pts
	}
	center := [3]float64(p.X[ip])
	var domain []grid.Vec3
	if tl {
		center = [3]float64(p.X0[ip])
		domain = p.Rp0[p.Dim*ip : p.Dim*ip+p.Dim]
	} else {
		domain = p.Rp[p.Dim*ip : p.Dim*ip+p.Dim]
	}
	ncorners := 1 << p.Dim
	pts := make([][3]float64, ncorners)
	for c := 0; c < ncorners; c++ {
		x := center
		for d := 0; d < p.Dim; d++ {
			sign := 1.0
			if c&(1<<d) != 0 {
				sign = -1.0
			}
			for e := 0; e < 3; e++ {
				x[e] += sign * domain[d][e]
			}
		}
		pts[c] = x
	}
	return pts
}

// ComputeGridWeightFunctionsAndGradients rebuilds s's neighbor lists (both
// particle->node and node->particle transposed forms) and their weights and
// gradients. In TL mode this need only run once, at setup; in UL mode it is
// rerun every step since the particle-node adjacency changes as particles
// move through the (shared) grid. For CPDI variants the weight contributed
// to a node is the average, across the particle's domain corners, of the
// corner's own shape-function evaluation (CPDI's characteristic function
// approximation), rather than a single evaluation at the particle center.
func (m *Method) ComputeGridWeightFunctionsAndGradients(s *solid.Solid) {
	g := s.Grid
	p := &s.Particles
	support := m.Shape.Support() * g.Cellsize

	nl := &s.Neighbors
	nl.NumNeighPN = make([]int, p.N)
	nl.NeighPN = make([][]int, p.N)
	nl.WfPN = make([][]float64, p.N)
	nl.WfdPN = make([][]grid.Vec3, p.N)

	npNeigh := make([][]int, g.Nnodes)
	npWf := make([][]float64, g.Nnodes)
	npWfd := make([][]grid.Vec3, g.Nnodes)

	for ip := 0; ip < p.N; ip++ {
		points := m.particleDomainCorners(s, ip)
		np := float64(len(points))

		sum := make(map[int]float64)
		sumGrad := make(map[int][3]float64)
		var order []int

		for _, x := range points {
			for in := 0; in < g.Nnodes; in++ {
				xn := g.X0[in]
				if !m.IsTL() {
					xn = g.X[in]
				}
				n, grad, ok := m.evalNodeWeight(x, [3]float64(xn), s.Dim, g.Cellsize, support)
				if !ok {
					continue
				}
				if _, seen := sum[in]; !seen {
					order = append(order, in)
				}
				sum[in] += n
				g0 := sumGrad[in]
				for d := 0; d < 3; d++ {
					g0[d] += grad[d]
				}
				sumGrad[in] = g0
			}
		}

		var neigh []int
		var wf []float64
		var wfd []grid.Vec3
		for _, in := range order {
			n := sum[in] / np
			gd := sumGrad[in]
			for d := 0; d < 3; d++ {
				gd[d] /= np
			}
			neigh = append(neigh, in)
			wf = append(wf, n)
			wfd = append(wfd, grid.Vec3(gd))

			npNeigh[in] = append(npNeigh[in], ip)
			npWf[in] = append(npWf[in], n)
			npWfd[in] = append(npWfd[in], grid.Vec3(gd))
		}
		nl.NeighPN[ip] = neigh
		nl.WfPN[ip] = wf
		nl.WfdPN[ip] = wfd
		nl.NumNeighPN[ip] = len(neigh)
	}

	nl.NeighNP = npNeigh
	nl.WfNP = npWf
	nl.WfdNP = npWfd
	nl.NumNeighNP = make([]int, g.Nnodes)
	for in := range npNeigh {
		nl.NumNeighNP[in] = len(npNeigh[in])
	}
}

// ParticlesToGrid runs the scatter phase: mass, velocity (PIC or APIC),
// external force, and internal force (TL or UL), all with reset=true so
// the grid's accumulators start each step from zero.
func (m *Method) ParticlesToGrid(s *solid.Solid, apic bool) {
	s.ComputeMassNodes(true)
	if apic {
		s.ComputeVelocityNodesAPIC(true)
	} else {
		s.ComputeVelocityNodes(true)
	}
	s.ComputeExternalForcesNodes(true)
	if m.IsTL() {
		s.ComputeInternalForcesNodesTL()
	} else {
		s.ComputeInternalForcesNodesUL(true)
	}
}

// UpdateGridState integrates nodal momentum: v_update[in] = v[in] +
// dt*(f[in]+mb[in])/mass[in] where mass[in]>0, else zero. Velocity/force
// boundary conditions (fixes) are applied by the caller between this call
// and GridToPoints, by mutating g.VUpdate/g.F/g.MB directly.
func (m *Method) UpdateGridState(s *solid.Solid, dt float64) {
	g := s.Grid
	for in := 0; in < g.Nnodes; in++ {
		if g.Mass[in] <= 0 {
			g.VUpdate[in] = grid.Vec3{}
			continue
		}
		inc := g.F[in].Add(g.MB[in]).Scale(dt / g.Mass[in])
		g.VUpdate[in] = g.V[in].Add(inc)
	}
}

// GridToPoints runs the gather phase: particle velocity, acceleration,
// position (with the UL domain-box check) and the PIC/FLIP velocity
// blend.
func (m *Method) GridToPoints(s *solid.Solid, dt float64, boxLo, boxHi [3]float64) error {
	s.ComputeParticleVelocities()
	s.ComputeParticleAcceleration(dt)
	if err := s.UpdateParticlePosition(dt, !m.IsTL(), boxLo, boxHi); err != nil {
		return err
	}
	s.UpdateParticleVelocities(dt, m.Flip)
	return nil
}

// ComputeRateDeformationGradient dispatches to the Fdot/L kernel matching
// this method's TL/UL and APIC/MUSL/USL combination. flow selects "musl"
// or "usl" in UL mode (ignored in TL and APIC modes).
func (m *Method) ComputeRateDeformationGradient(s *solid.Solid, apic bool, flow string) {
	switch {
	case m.IsTL() && apic:
		s.ComputeRateDeformationGradientTLAPIC()
	case m.IsTL():
		s.ComputeRateDeformationGradientTL()
	case apic:
		s.ComputeRateDeformationGradientULAPIC()
	case flow == "usl":
		s.ComputeRateDeformationGradientULUSL()
	default:
		s.ComputeRateDeformationGradientULMUSL()
	}
}

// AdvanceDeformationAndStress runs update_deformation_gradient and
// update_stress for s, in that order.
func (m *Method) AdvanceDeformationAndStress(s *solid.Solid, dt float64, timestep int64) error {
	neoHookean := s.Mat.IsNeoHookean()
	if err := s.UpdateDeformationGradient(dt, m.IsTL(), neoHookean, timestep); err != nil {
		return err
	}
	return s.UpdateStress(dt, m.IsTL(), timestep)
}

// AdjustDt returns safetyFactor * min(dtCFL) across solids. The caller is
// responsible for further reducing this across MPI ranks
// (rankdomain.ReduceMinDt) before using it as the next timestep.
func AdjustDt(solids []*solid.Solid, safetyFactor float64) float64 {
	dt := math.Inf(1)
	for _, s := range solids {
		if s.DtCFL < dt {
			dt = s.DtCFL
		}
	}
	return safetyFactor * dt
}

// Reset zeroes s's nodal accumulators for the next step and, for CPDI
// variants, refreshes the current-configuration domain geometry: CPDI1's
// domain vectors rp = F*rp0, or CPDI2's corners xpc = x + F*(xpc0 - x0).
func (m *Method) Reset(s *solid.Solid) {
	s.Grid.Reset()
	if !m.IsCPDI() {
		return
	}
	p := &s.Particles
	if m.isCPDI2() {
		for ip := 0; ip < p.N; ip++ {
			base := ip * p.NumCorners
			for c := 0; c < p.NumCorners; c++ {
				rel := p.Xpc0[base+c].Sub(p.X0[ip])
				v := p.Fgrad[ip].MulVec([3]float64(rel))
				p.Xpc[base+c] = p.X[ip].Add(grid.Vec3(v))
			}
		}
		return
	}
	for ip := 0; ip < p.N; ip++ {
		base := p.Dim * ip
		for d := 0; d < p.Dim; d++ {
			v := p.Fgrad[ip].MulVec([3]float64(p.Rp0[base+d]))
			p.Rp[base+d] = grid.Vec3(v)
		}
	}
}
