package solid

import (
	"github.com/dylanagius/karamelo/grid"
	"github.com/dylanagius/karamelo/mathkit"
	"github.com/dylanagius/karamelo/simerr"
)

// Region is the minimal geometry predicate ParticlePopulator needs: an
// axis-aligned bounding box plus a point-inside test. Concrete region
// shapes (box, sphere, cylinder, ...) are out of this package's scope —
// rankdomain owns them — Populate only consumes this interface.
type Region interface {
	Bounds() (lo, hi [3]float64)
	Inside(x [3]float64) bool
}

// PopulateOptions configures ParticlePopulator.Populate.
type PopulateOptions struct {
	Dim         int
	Cellsize    float64
	NIPPerCell  int  // 1, 2 (2^dim integration points) or 3 (3^dim)
	IsCPDI      bool // selects the CPDI offset constants over the plain MPM ones
	CPDI2       bool // explicit 2^dim corners (Xpc/Xpc0) instead of CPDI1 domain vectors (Rp/Rp0)
	IsTL        bool
	SubLo, SubHi [3]float64 // this rank's subdomain, ignored in TL mode
}

// intPointOffsets returns the dimensionless integration-point offsets
// (one (dx,dy,dz) triple per point, unused axes held at 0) and the
// per-point corner half-length lp, for the requested particles-per-cell
// order: the Cartesian product of the per-axis 1D offsets across the
// active dim axes, giving nip = (len(axisOffsets))^dim points.
func intPointOffsets(npPerCell int, dim int, cpdi bool) (offsets [][3]float64, lp float64, err error) {
	var axis []float64
	switch npPerCell {
	case 1:
		axis, lp = []float64{0}, 0.5
	case 2:
		xi := 1.0 / (2.0 * 1.7320508075688772) // 1/(2*sqrt(3))
		if cpdi {
			xi = 0.25
		}
		axis, lp = []float64{-xi, xi}, 0.25
	case 3:
		xi := 0.3873
		if cpdi {
			xi = 1.0 / 3.0
		}
		axis, lp = []float64{-xi, 0, xi}, 1.0/6.0
	default:
		return nil, 0, &simerr.Error{Kind: simerr.ParseError, Message: "particles-per-cell must be 1, 2 or 3"}
	}
	return cartesianProduct(axis, dim), lp, nil
}

// cartesianProduct builds every dim-tuple drawn from axis, placed into the
// first dim components of a 3-vector (remaining components 0).
func cartesianProduct(axis []float64, dim int) [][3]float64 {
	out := [][3]float64{{0, 0, 0}}
	for d := 0; d < dim; d++ {
		var next [][3]float64
		for _, base := range out {
			for _, a := range axis {
				p := base
				p[d] = a
				next = append(next, p)
			}
		}
		out = next
	}
	return out
}

// Populate tiles the intersection of region's bounds with opts' subdomain
// with Cartesian cells of size Cellsize, placing opts.NIPPerCell
// integration points per cell (dropping any whose coordinate fails
// region.Inside). It does not assign PTags: the caller does that afterwards
// (rankdomain.AssignGlobalTags, a prefix sum across ranks). The
// Solid's Grid is initialized over the region bounds if it has not been
// set up yet (Total-Lagrangian: each solid gets its own grid).
func (s *Solid) Populate(region Region, opts PopulateOptions) error {
	lo, hi := region.Bounds()

	subLo, subHi := opts.SubLo, opts.SubHi
	if opts.IsTL {
		subLo, subHi = lo, hi
	}
	boundLo := lo
	if !opts.IsTL {
		boundLo = subLo
	}

	var effLo, effHi [3]float64
	for d := 0; d < 3; d++ {
		effLo[d] = max64(lo[d], subLo[d])
		effHi[d] = min64(hi[d], subHi[d])
	}

	if s.Grid == nil {
		s.Grid = &grid.Grid{Dimension: opts.Dim, Cellsize: opts.Cellsize}
	}
	if s.Grid.Nnodes == 0 {
		s.Grid.Init(lo, hi)
	}

	delta := opts.Cellsize
	nsub := [3]int{1, 1, 1}
	for d := 0; d < opts.Dim; d++ {
		nsub[d] = cellCount(effHi[d]-effLo[d], delta) + 1
	}

	offsets, lpFrac, err := intPointOffsets(opts.NIPPerCell, opts.Dim, opts.IsCPDI)
	if err != nil {
		return err
	}
	nip := len(offsets)
	lp := delta * lpFrac

	cellVol := 1.0
	for d := 0; d < opts.Dim; d++ {
		cellVol *= delta
	}
	mass0 := s.Mat.Rho0 * cellVol / float64(nip)
	vol0 := cellVol / float64(nip)

	noffset := [3]int{}
	for d := 0; d < opts.Dim; d++ {
		off := effLo[d] - boundLo[d]
		if off < 0 {
			off = 0
		}
		noffset[d] = int(off / delta)
	}

	s.Particles.Grow(nsub[0]*nsub[1]*nsub[2]*nip, opts.Dim)
	if opts.IsCPDI && opts.CPDI2 {
		numCorners := 1 << opts.Dim
		s.Particles.NumCorners = numCorners
		s.Particles.Xpc0 = make([]grid.Vec3, s.Particles.N*numCorners)
		s.Particles.Xpc = make([]grid.Vec3, s.Particles.N*numCorners)
	}

	l := 0
	for i := 0; i < nsub[0]; i++ {
		for j := 0; j < nsub[1]; j++ {
			for k := 0; k < nsub[2]; k++ {
				for _, off := range offsets {
					x := [3]float64{
						boundLo[0] + delta*(float64(noffset[0]+i)+0.5+off[0]),
						boundLo[1] + delta*(float64(noffset[1]+j)+0.5+off[1]),
						boundLo[2] + delta*(float64(noffset[2]+k)+0.5+off[2]),
					}
					if opts.Dim < 3 {
						x[2] = 0
					}
					if opts.Dim < 2 {
						x[1] = 0
					}
					if !region.Inside(x) {
						continue
					}
					s.Particles.X0[l] = grid.Vec3(x)
					s.Particles.X[l] = grid.Vec3(x)
					if opts.IsCPDI {
						if opts.CPDI2 {
							setCPDI2Corners(&s.Particles, l, opts.Dim, x, lp)
						} else {
							setCPDICorners(&s.Particles, l, opts.Dim, lp)
						}
					}
					l++
				}
			}
		}
	}

	s.Particles.Compact(deadRange(l, s.Particles.N))

	for i := range s.Particles.Mass {
		s.Particles.Vol0[i], s.Particles.Vol[i] = vol0, vol0
		s.Particles.Rho0[i], s.Particles.Rho[i] = s.Mat.Rho0, s.Mat.Rho0
		s.Particles.Mass[i] = mass0
		s.Particles.J[i] = 1
		s.Particles.Fgrad[i] = mathkit.Identity3()
		s.Particles.R[i] = mathkit.Identity3()
		s.Particles.Mask[i] = 1 // group bit 0, "all" — every particle's default membership
	}
	return nil
}

// AssignTags assigns PTag[i] = offset+i+1 to every local particle. offset
// is this rank's prefix sum of np_local over lower-numbered ranks — the
// caller (rankdomain) is responsible for computing it via a collective, so
// that tag uniqueness holds across ranks without this package depending on
// MPI.
func (s *Solid) AssignTags(offset int64) {
	for i := range s.Particles.PTag {
		s.Particles.PTag[i] = offset + int64(i) + 1
	}
}

// setCPDICorners writes the CPDI1 domain vectors for particle l. The
// third-dimension basis vector is written as (0,0,lp), fixing the
// second-dimension-aliasing bug present in the reference implementation's
// 3D branch.
func setCPDICorners(p *Particles, l, dim int, lp float64) {
	base := dim * l
	p.Rp0[base] = grid.Vec3{lp, 0, 0}
	p.Rp[base] = p.Rp0[base]
	if dim >= 2 {
		p.Rp0[base+1] = grid.Vec3{0, lp, 0}
		p.Rp[base+1] = p.Rp0[base+1]
	}
	if dim == 3 {
		p.Rp0[base+2] = grid.Vec3{0, 0, lp}
		p.Rp[base+2] = p.Rp0[base+2]
	}
}

// setCPDI2Corners writes the 2^dim explicit domain corners for particle l,
// one per sign combination of +/-lp along each active axis relative to the
// particle center x.
func setCPDI2Corners(p *Particles, l, dim int, x [3]float64, lp float64) {
	numCorners := p.NumCorners
	base := l * numCorners
	for c := 0; c < numCorners; c++ {
		corner := x
		for d := 0; d < dim; d++ {
			if c&(1<<d) != 0 {
				corner[d] += lp
			} else {
				corner[d] -= lp
			}
		}
		p.Xpc0[base+c] = grid.Vec3(corner)
		p.Xpc[base+c] = grid.Vec3(corner)
	}
}

func cellCount(length, delta float64) int {
	n := int(length / delta)
	for float64(n)*delta <= length-0.5*delta {
		n++
	}
	return n
}

func deadRange(keep, total int) []int {
	if keep >= total {
		return nil
	}
	dead := make([]int, 0, total-keep)
	for i := keep; i < total; i++ {
		dead = append(dead, i)
	}
	return dead
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
