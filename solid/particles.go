// Package solid implements the particle<->grid transfer, deformation and
// constitutive update kernels: the core of the solver. Particle state is
// stored struct-of-arrays, indexed 0..N-1, mirroring the vector<> fields of
// the reference Solid class and matching the access pattern of every kernel
// below (whole-array passes per phase, not per-particle record access).
package solid

import (
	"github.com/dylanagius/karamelo/grid"
	"github.com/dylanagius/karamelo/mathkit"
	"github.com/dylanagius/karamelo/material"
)

// Particles is the struct-of-arrays particle container. Every slice has
// length N except Rp/Rp0 (CPDI1, length N*Dim) and Xpc/Xpc0 (CPDI2, length
// N*NumCorners).
type Particles struct {
	N   int
	Dim int

	PTag []int64
	Mask []uint64

	X, X0          []grid.Vec3
	V, VUpdate, A  []grid.Vec3
	Fint, MB       []grid.Vec3 // internal force, external force*mass

	Fgrad, FgradInv, FgradDot []mathkit.Mat3
	L, D, R, U, Di            []mathkit.Mat3
	J                         []float64

	Sigma, Vol0PK1, StrainEl []mathkit.Mat3

	Vol0, Vol, Rho0, Rho, Mass []float64

	EffPlasticStrain, EffPlasticStrainRate []float64
	Damage, DamageInit                     []float64

	// CPDI1 domain vectors, Dim entries per particle.
	Rp, Rp0 []grid.Vec3
	// CPDI2 domain corners, NumCorners entries per particle.
	Xpc, Xpc0 []grid.Vec3
	NumCorners int
}

// grid3 is a local alias for grid.Vec3, used throughout the transfer and
// deformation kernels to keep the arithmetic expressions readable.
type grid3 = grid.Vec3

var grid3Zero = grid.Vec3{}

// Grow allocates n particles, discarding any previous contents.
func (p *Particles) Grow(n, dim int) {
	p.N, p.Dim = n, dim
	p.PTag = make([]int64, n)
	p.Mask = make([]uint64, n)
	p.X = make([]grid.Vec3, n)
	p.X0 = make([]grid.Vec3, n)
	p.V = make([]grid.Vec3, n)
	p.VUpdate = make([]grid.Vec3, n)
	p.A = make([]grid.Vec3, n)
	p.Fint = make([]grid.Vec3, n)
	p.MB = make([]grid.Vec3, n)
	p.Fgrad = make([]mathkit.Mat3, n)
	p.FgradInv = make([]mathkit.Mat3, n)
	p.FgradDot = make([]mathkit.Mat3, n)
	p.L = make([]mathkit.Mat3, n)
	p.D = make([]mathkit.Mat3, n)
	p.R = make([]mathkit.Mat3, n)
	p.U = make([]mathkit.Mat3, n)
	p.Di = make([]mathkit.Mat3, n)
	p.J = make([]float64, n)
	p.Sigma = make([]mathkit.Mat3, n)
	p.Vol0PK1 = make([]mathkit.Mat3, n)
	p.StrainEl = make([]mathkit.Mat3, n)
	p.Vol0 = make([]float64, n)
	p.Vol = make([]float64, n)
	p.Rho0 = make([]float64, n)
	p.Rho = make([]float64, n)
	p.Mass = make([]float64, n)
	p.EffPlasticStrain = make([]float64, n)
	p.EffPlasticStrainRate = make([]float64, n)
	p.Damage = make([]float64, n)
	p.DamageInit = make([]float64, n)
	p.Rp = make([]grid.Vec3, n*dim)
	p.Rp0 = make([]grid.Vec3, n*dim)
}

// CopyParticle overwrites particle j's full state with particle i's, as
// used by a "delete_particles" compaction: the caller removes dead
// particles by copying surviving entries down and truncating, preserving
// PTag identity for everything that remains.
func (p *Particles) CopyParticle(i, j int) {
	p.X0[j], p.X[j] = p.X0[i], p.X[i]
	p.V[j], p.VUpdate[j], p.A[j] = p.V[i], p.VUpdate[i], p.A[i]
	p.MB[j], p.Fint[j] = p.MB[i], p.Fint[i]
	p.Vol0[j], p.Vol[j] = p.Vol0[i], p.Vol[i]
	p.Rho0[j], p.Rho[j] = p.Rho0[i], p.Rho[i]
	p.Mass[j] = p.Mass[i]
	p.EffPlasticStrain[j] = p.EffPlasticStrain[i]
	p.EffPlasticStrainRate[j] = p.EffPlasticStrainRate[i]
	p.Damage[j], p.DamageInit[j] = p.Damage[i], p.DamageInit[i]
	p.Sigma[j] = p.Sigma[i]
	p.Vol0PK1[j] = p.Vol0PK1[i]
	p.L[j], p.Fgrad[j], p.R[j], p.U[j], p.D[j] = p.L[i], p.Fgrad[i], p.R[i], p.U[i], p.D[i]
	p.FgradInv[j], p.FgradDot[j] = p.FgradInv[i], p.FgradDot[i]
	p.J[j] = p.J[i]
	p.StrainEl[j] = p.StrainEl[i]
	p.PTag[j] = p.PTag[i]
	p.Mask[j], p.Di[j] = p.Mask[i], p.Di[i]
	for d := 0; d < p.Dim; d++ {
		p.Rp[j*p.Dim+d], p.Rp0[j*p.Dim+d] = p.Rp[i*p.Dim+d], p.Rp0[i*p.Dim+d]
	}
	for c := 0; c < p.NumCorners && len(p.Xpc) >= p.N*p.NumCorners; c++ {
		p.Xpc[j*p.NumCorners+c], p.Xpc0[j*p.NumCorners+c] = p.Xpc[i*p.NumCorners+c], p.Xpc0[i*p.NumCorners+c]
	}
}

// Compact removes the particles whose index appears in dead (sorted
// ascending) by copying surviving entries down, then truncating every
// slice to the new length. It preserves the relative order of survivors.
func (p *Particles) Compact(dead []int) {
	if len(dead) == 0 {
		return
	}
	isDead := make(map[int]bool, len(dead))
	for _, d := range dead {
		isDead[d] = true
	}
	w := 0
	for r := 0; r < p.N; r++ {
		if isDead[r] {
			continue
		}
		if w != r {
			p.CopyParticle(r, w)
		}
		w++
	}
	p.truncate(w)
}

func (p *Particles) truncate(n int) {
	p.N = n
	p.PTag = p.PTag[:n]
	p.Mask = p.Mask[:n]
	p.X, p.X0 = p.X[:n], p.X0[:n]
	p.V, p.VUpdate, p.A = p.V[:n], p.VUpdate[:n], p.A[:n]
	p.Fint, p.MB = p.Fint[:n], p.MB[:n]
	p.Fgrad, p.FgradInv, p.FgradDot = p.Fgrad[:n], p.FgradInv[:n], p.FgradDot[:n]
	p.L, p.D, p.R, p.U, p.Di = p.L[:n], p.D[:n], p.R[:n], p.U[:n], p.Di[:n]
	p.J = p.J[:n]
	p.Sigma, p.Vol0PK1, p.StrainEl = p.Sigma[:n], p.Vol0PK1[:n], p.StrainEl[:n]
	p.Vol0, p.Vol, p.Rho0, p.Rho, p.Mass = p.Vol0[:n], p.Vol[:n], p.Rho0[:n], p.Rho[:n], p.Mass[:n]
	p.EffPlasticStrain, p.EffPlasticStrainRate = p.EffPlasticStrain[:n], p.EffPlasticStrainRate[:n]
	p.Damage, p.DamageInit = p.Damage[:n], p.DamageInit[:n]
	p.Rp, p.Rp0 = p.Rp[:n*p.Dim], p.Rp0[:n*p.Dim]
	if p.NumCorners > 0 && len(p.Xpc) >= n*p.NumCorners {
		p.Xpc, p.Xpc0 = p.Xpc[:n*p.NumCorners], p.Xpc0[:n*p.NumCorners]
	}
}

// NeighborLists holds the two transposed particle<->node incidence
// mappings. Both are stored and rebuilt together; neither embeds a pointer
// into the other, per the ownership rule that the particle<->node
// relationship is two parallel arrays, not a graph of pointers.
type NeighborLists struct {
	NumNeighPN []int
	NeighPN    [][]int
	WfPN       [][]float64
	WfdPN      [][]grid.Vec3

	NumNeighNP []int
	NeighNP    [][]int
	WfNP       [][]float64
	WfdNP      [][]grid.Vec3
}

// Solid bundles a particle container, its neighbor lists, the grid it
// exchanges momentum with and the material it is made of. In
// Total-Lagrangian mode Grid is owned exclusively by this Solid (laid over
// its own reference configuration); in Updated-Lagrangian mode Grid is
// shared with sibling Solids by the owning Simulation.
type Solid struct {
	ID  string
	Dim int

	Particles     Particles
	Neighbors      NeighborLists
	Grid           *grid.Grid
	Mat            *material.Material
	MethodStyle    string // "tlmpm", "ulmpm", "tlcpdi", "ulcpdi", "tlcpdi2", "ulcpdi2"

	MinInvPWaveSpeed float64
	DtCFL            float64
}

// IsTL reports whether this solid runs in Total-Lagrangian mode.
func (s *Solid) IsTL() bool {
	return len(s.MethodStyle) >= 2 && s.MethodStyle[:2] == "tl"
}
