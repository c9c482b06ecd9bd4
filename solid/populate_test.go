package solid

import (
	"math"
	"testing"

	"github.com/dylanagius/karamelo/material"
)

type boxRegion struct {
	lo, hi [3]float64
}

func (b boxRegion) Bounds() (lo, hi [3]float64) { return b.lo, b.hi }

func (b boxRegion) Inside(x [3]float64) bool {
	for d := 0; d < 3; d++ {
		if x[d] < b.lo[d] || x[d] > b.hi[d] {
			return false
		}
	}
	return true
}

// TestPopulateUnitCubeOnePointPerCell reproduces the spec's population
// round-trip: a [0,1]^3 cube tiled at dx=0.1 with one integration point per
// cell produces exactly 1000 particles whose volumes sum to 1.0.
func TestPopulateUnitCubeOnePointPerCell(t *testing.T) {
	region := boxRegion{hi: [3]float64{1, 1, 1}}
	s := &Solid{Mat: &material.Material{Rho0: 1000}}
	opts := PopulateOptions{Dim: 3, Cellsize: 0.1, NIPPerCell: 1, IsTL: true}

	if err := s.Populate(region, opts); err != nil {
		t.Fatalf("Populate: %v", err)
	}
	if s.Particles.N != 1000 {
		t.Fatalf("N = %d, want 1000", s.Particles.N)
	}
	var totalVol float64
	for _, v := range s.Particles.Vol0 {
		totalVol += v
	}
	if math.Abs(totalVol-1.0) > 1e-9 {
		t.Fatalf("sum(vol0) = %v, want 1.0", totalVol)
	}
}

// TestPopulateQuadraticCountsPerCell checks the 2^dim integration-point
// count for the quadratic order in a single cell.
func TestPopulateQuadraticCountsPerCell(t *testing.T) {
	region := boxRegion{hi: [3]float64{1, 1, 1}}
	s := &Solid{Mat: &material.Material{Rho0: 1}}
	opts := PopulateOptions{Dim: 3, Cellsize: 1, NIPPerCell: 2, IsTL: true}

	if err := s.Populate(region, opts); err != nil {
		t.Fatalf("Populate: %v", err)
	}
	if s.Particles.N != 8 {
		t.Fatalf("N = %d, want 8 (2^3)", s.Particles.N)
	}
}

// TestSetCPDICorners3DNoAliasing checks the 3D CPDI corner fix: the third
// basis vector must be (0,0,lp), not a copy of the second (the aliasing bug
// present in the original source).
func TestSetCPDICorners3DNoAliasing(t *testing.T) {
	var p Particles
	p.Grow(1, 3)
	setCPDICorners(&p, 0, 3, 0.05)

	want0 := [3]float64{0.05, 0, 0}
	want1 := [3]float64{0, 0.05, 0}
	want2 := [3]float64{0, 0, 0.05}

	if [3]float64(p.Rp0[0]) != want0 {
		t.Fatalf("Rp0[0] = %v, want %v", p.Rp0[0], want0)
	}
	if [3]float64(p.Rp0[1]) != want1 {
		t.Fatalf("Rp0[1] = %v, want %v", p.Rp0[1], want1)
	}
	if [3]float64(p.Rp0[2]) != want2 {
		t.Fatalf("Rp0[2] = %v, want %v (not aliased to Rp0[1])", p.Rp0[2], want2)
	}
}

// TestPopulateCPDI2Corners checks that CPDI2 population allocates Xpc0 with
// 2^dim corners per particle and places them at +/-lp around the particle
// center along every active axis.
func TestPopulateCPDI2Corners(t *testing.T) {
	region := boxRegion{hi: [3]float64{1, 1, 0}}
	s := &Solid{Mat: &material.Material{Rho0: 1}}
	opts := PopulateOptions{Dim: 2, Cellsize: 1, NIPPerCell: 1, IsCPDI: true, CPDI2: true, IsTL: true}

	if err := s.Populate(region, opts); err != nil {
		t.Fatalf("Populate: %v", err)
	}
	if s.Particles.N != 1 {
		t.Fatalf("N = %d, want 1", s.Particles.N)
	}
	if s.Particles.NumCorners != 4 {
		t.Fatalf("NumCorners = %d, want 4 (2^2)", s.Particles.NumCorners)
	}
	if len(s.Particles.Xpc0) != 4 {
		t.Fatalf("len(Xpc0) = %d, want 4", len(s.Particles.Xpc0))
	}
	center := s.Particles.X0[0]
	lp := 0.5
	for c, corner := range s.Particles.Xpc0 {
		for d := 0; d < 2; d++ {
			dist := math.Abs(float64(corner[d]) - float64(center[d]))
			if math.Abs(dist-lp) > 1e-9 {
				t.Fatalf("corner %d axis %d offset = %v, want %v", c, d, dist, lp)
			}
		}
	}
}

// TestPopulateDropsPointsOutsideRegion checks that a region narrower than
// the populated cell range drops the integration points outside it.
func TestPopulateDropsPointsOutsideRegion(t *testing.T) {
	region := boxRegion{lo: [3]float64{0, 0, 0}, hi: [3]float64{0.55, 1, 1}}
	s := &Solid{Mat: &material.Material{Rho0: 1}}
	opts := PopulateOptions{Dim: 3, Cellsize: 0.1, NIPPerCell: 1, IsTL: true}

	if err := s.Populate(region, opts); err != nil {
		t.Fatalf("Populate: %v", err)
	}
	// cells centered at 0.05..0.95 in x; only those with center < 0.55 survive.
	if s.Particles.N == 0 || s.Particles.N >= 1000 {
		t.Fatalf("N = %d, want a partial count strictly between 0 and 1000", s.Particles.N)
	}
	for i := 0; i < s.Particles.N; i++ {
		if s.Particles.X0[i][0] > 0.55 {
			t.Fatalf("particle %d x0.x = %v, outside region bound 0.55", i, s.Particles.X0[i][0])
		}
	}
}
