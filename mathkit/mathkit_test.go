package mathkit

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestDeviatorTraceless(t *testing.T) {
	m := Mat3{
		{4, 1, 2},
		{1, 5, 3},
		{2, 3, 6},
	}
	d := Deviator(m)
	if !almostEqual(d.Trace(), 0, 1e-12) {
		t.Fatalf("deviator trace = %v, want 0", d.Trace())
	}
	// off-diagonal terms are unchanged
	if d[0][1] != m[0][1] || d[1][2] != m[1][2] {
		t.Fatalf("deviator changed off-diagonal terms")
	}
}

func TestInvIdentity(t *testing.T) {
	i := Identity3()
	inv := i.Inv()
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if !almostEqual(inv[r][c], i[r][c], 1e-12) {
				t.Fatalf("inverse of identity != identity at (%d,%d): %v", r, c, inv[r][c])
			}
		}
	}
}

func TestInvRoundTrip(t *testing.T) {
	m := Mat3{
		{2, 0.3, 0},
		{0.1, 1.5, 0.2},
		{0, 0.1, 3},
	}
	inv := m.Inv()
	prod := m.Mul(inv)
	i := Identity3()
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if !almostEqual(prod[r][c], i[r][c], 1e-9) {
				t.Fatalf("M*Minv != I at (%d,%d): %v", r, c, prod[r][c])
			}
		}
	}
}

func TestDetStretch(t *testing.T) {
	m := Mat3{
		{2, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	if got := m.Det(); !almostEqual(got, 2, 1e-12) {
		t.Fatalf("det = %v, want 2", got)
	}
}

func TestPolarDecomposeIdentity(t *testing.T) {
	r, u, ok := PolarDecompose(Identity3())
	if !ok {
		t.Fatalf("polar decomposition of identity failed")
	}
	i := Identity3()
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			if !almostEqual(r[a][b], i[a][b], 1e-9) {
				t.Fatalf("R != I at (%d,%d): %v", a, b, r[a][b])
			}
			if !almostEqual(u[a][b], i[a][b], 1e-9) {
				t.Fatalf("U != I at (%d,%d): %v", a, b, u[a][b])
			}
		}
	}
}

func TestPolarDecomposeStretchOnly(t *testing.T) {
	f := Mat3{
		{2, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	r, u, ok := PolarDecompose(f)
	if !ok {
		t.Fatalf("polar decomposition failed")
	}
	i := Identity3()
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			if !almostEqual(r[a][b], i[a][b], 1e-9) {
				t.Fatalf("pure stretch should have R=I, got R[%d][%d]=%v", a, b, r[a][b])
			}
		}
	}
	if !almostEqual(u[0][0], 2, 1e-9) {
		t.Fatalf("U[0][0] = %v, want 2", u[0][0])
	}
}

func TestPolarDecomposeReconstructsF(t *testing.T) {
	f := Mat3{
		{1.1, 0.2, 0},
		{-0.1, 0.9, 0.05},
		{0, 0.03, 1.05},
	}
	r, u, ok := PolarDecompose(f)
	if !ok {
		t.Fatalf("polar decomposition failed")
	}
	recon := r.Mul(u)
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			if !almostEqual(recon[a][b], f[a][b], 1e-8) {
				t.Fatalf("R*U != F at (%d,%d): got %v want %v", a, b, recon[a][b], f[a][b])
			}
		}
	}
}
