// Package grid implements the background Eulerian (or reference, in
// Total-Lagrangian mode) lattice that particles exchange momentum with
// each timestep.
package grid

import "github.com/cpmech/gosl/chk"

// Vec3 is a plain 3-vector; unused components in 1D/2D problems are zero.
type Vec3 [3]float64

// Add returns a+b.
func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }

// Sub returns a-b.
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

// Scale returns s*a.
func (a Vec3) Scale(s float64) Vec3 { return Vec3{s * a[0], s * a[1], s * a[2]} }

// Grid is the background node lattice. A process-global Grid is shared by
// all solids in Updated-Lagrangian variants; in Total-Lagrangian each
// Solid owns its own Grid laid over its own reference configuration.
type Grid struct {
	Dimension int
	Cellsize  float64

	Nx, Ny, Nz int // node counts along each axis (1 in unused dimensions)

	// node arrays, indexed 0..Nnodes-1
	X, X0   []Vec3
	Mass    []float64
	V       []Vec3
	VUpdate []Vec3
	MB      []Vec3 // external force accumulator
	F       []Vec3 // internal force accumulator

	Nnodes int
}

// Init lays out a regular Cartesian node lattice of spacing Cellsize
// spanning [lo,hi]. Cellsize must already be set (via Setup) before Init
// is called.
func (g *Grid) Init(lo, hi [3]float64) {
	if g.Cellsize <= 0 {
		chk.Panic("grid: Init called before a positive cellsize was set")
	}
	if g.Dimension == 0 {
		g.Dimension = 3
	}

	nx := nodeCount(lo[0], hi[0], g.Cellsize)
	ny := 1
	nz := 1
	if g.Dimension >= 2 {
		ny = nodeCount(lo[1], hi[1], g.Cellsize)
	}
	if g.Dimension == 3 {
		nz = nodeCount(lo[2], hi[2], g.Cellsize)
	}
	g.Nx, g.Ny, g.Nz = nx, ny, nz
	g.Nnodes = nx * ny * nz

	g.X = make([]Vec3, g.Nnodes)
	g.X0 = make([]Vec3, g.Nnodes)
	g.Mass = make([]float64, g.Nnodes)
	g.V = make([]Vec3, g.Nnodes)
	g.VUpdate = make([]Vec3, g.Nnodes)
	g.MB = make([]Vec3, g.Nnodes)
	g.F = make([]Vec3, g.Nnodes)

	idx := 0
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				x := Vec3{
					lo[0] + float64(i)*g.Cellsize,
					lo[1] + float64(j)*g.Cellsize,
					lo[2] + float64(k)*g.Cellsize,
				}
				g.X0[idx] = x
				g.X[idx] = x
				idx++
			}
		}
	}
}

// nodeCount returns the number of nodes needed to span [lo,hi] at the
// given cellsize, rounding the same way the teacher's populate() rounds
// cell counts (accumulate until within half a cell of the far edge).
func nodeCount(lo, hi, delta float64) int {
	n := int((hi - lo) / delta)
	for float64(n)*delta <= hi-lo-0.5*delta {
		n++
	}
	return n + 1
}

// NodeIndex returns the flat index of the node at grid coordinates
// (i,j,k).
func (g *Grid) NodeIndex(i, j, k int) int {
	return i + j*g.Nx + k*g.Nx*g.Ny
}

// Reset zeroes the node accumulator arrays ahead of the particle->grid
// scatter. The caller-supplied reset flag on the scatter kernels
// themselves (see solid.Solid) allows skipping this when a kernel is
// re-invoked within the same step without wanting to re-zero (e.g. a
// second solid sharing this Grid in UL mode), so Reset is exposed
// separately rather than folded into the scatter kernels only.
func (g *Grid) Reset() {
	for i := range g.Mass {
		g.Mass[i] = 0
		g.V[i] = Vec3{}
		g.VUpdate[i] = Vec3{}
		g.MB[i] = Vec3{}
		g.F[i] = Vec3{}
	}
}

// Bounds returns the lattice's current axis-aligned bounding box.
func (g *Grid) Bounds() (lo, hi [3]float64) {
	if g.Nnodes == 0 {
		return
	}
	lo = [3]float64{g.X[0][0], g.X[0][1], g.X[0][2]}
	hi = lo
	for _, x := range g.X {
		for d := 0; d < 3; d++ {
			if x[d] < lo[d] {
				lo[d] = x[d]
			}
			if x[d] > hi[d] {
				hi[d] = x[d]
			}
		}
	}
	return
}
