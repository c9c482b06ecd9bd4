package grid

import "testing"

func TestInitLatticeSize(t *testing.T) {
	g := &Grid{Dimension: 3, Cellsize: 0.1}
	g.Init([3]float64{0, 0, 0}, [3]float64{1, 1, 1})
	if g.Nx != 11 || g.Ny != 11 || g.Nz != 11 {
		t.Fatalf("node counts = (%d,%d,%d), want (11,11,11)", g.Nx, g.Ny, g.Nz)
	}
	if g.Nnodes != 11*11*11 {
		t.Fatalf("Nnodes = %d, want %d", g.Nnodes, 11*11*11)
	}
}

func TestResetZeroesAccumulators(t *testing.T) {
	g := &Grid{Dimension: 2, Cellsize: 0.5}
	g.Init([3]float64{0, 0, 0}, [3]float64{1, 1, 0})
	for i := range g.Mass {
		g.Mass[i] = 3.0
		g.V[i] = Vec3{1, 2, 3}
		g.F[i] = Vec3{4, 5, 6}
	}
	g.Reset()
	for i := range g.Mass {
		if g.Mass[i] != 0 {
			t.Fatalf("Mass[%d] = %v after Reset, want 0", i, g.Mass[i])
		}
		if g.V[i] != (Vec3{}) || g.F[i] != (Vec3{}) {
			t.Fatalf("node %d accumulators not zeroed after Reset", i)
		}
	}
}

func TestSetupParsesCellsize(t *testing.T) {
	g := &Grid{}
	if err := g.Setup("0.25"); err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	if g.Cellsize != 0.25 {
		t.Fatalf("Cellsize = %v, want 0.25", g.Cellsize)
	}
	if err := g.Setup("not-a-number"); err == nil {
		t.Fatalf("expected error parsing invalid cellsize")
	}
	if err := g.Setup("-1"); err == nil {
		t.Fatalf("expected error for non-positive cellsize")
	}
}

func TestNodeIndexOrdering(t *testing.T) {
	g := &Grid{Dimension: 3, Cellsize: 1}
	g.Init([3]float64{0, 0, 0}, [3]float64{2, 2, 2})
	// node (1,1,1) should not collide with (0,0,0)
	i0 := g.NodeIndex(0, 0, 0)
	i1 := g.NodeIndex(1, 1, 1)
	if i0 == i1 {
		t.Fatalf("distinct grid coordinates mapped to the same index")
	}
	if g.X0[i0] != (Vec3{0, 0, 0}) {
		t.Fatalf("node (0,0,0) position = %v, want origin", g.X0[i0])
	}
}
