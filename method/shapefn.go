// Package method schedules one timestep of the solver: it selects shape
// functions, rebuilds the particle<->node neighbor lists and drives the
// sequence of Solid kernels described in spec.md §4.6, for each of the six
// supported variants (tlmpm, ulmpm, tlcpdi, ulcpdi, tlcpdi2, ulcpdi2).
package method

import "math"

// ShapeFn is a 1D interpolation kernel and its derivative, tensor-producted
// across the problem's active dimensions to build the nodal weights
// wf_pn/wfd_pn. There is no shape-function source in the retrieval pack to
// ground these against; they follow the standard MPM literature
// definitions for each named family, matching the APIC inertia-tensor
// constants already fixed in solid.ComputeInertiaTensor.
type ShapeFn interface {
	// Support returns the half-width, in multiples of cellsize, beyond
	// which the kernel is identically zero.
	Support() float64
	// Eval returns N(r) and dN/dr for the scalar offset r = (x-xnode),
	// both already scaled by cellsize (r and the returned derivative are
	// in physical length units, not cell units).
	Eval(r, cellsize float64) (n, dn float64)
}

// NewShapeFn returns the named shape function.
func NewShapeFn(name string) (ShapeFn, bool) {
	switch name {
	case "linear":
		return linearShapeFn{}, true
	case "quadratic-spline":
		return quadraticSplineShapeFn{}, true
	case "cubic-spline":
		return cubicSplineShapeFn{}, true
	case "Bernstein-quadratic":
		return bernsteinQuadraticShapeFn{}, true
	default:
		return nil, false
	}
}

type linearShapeFn struct{}

func (linearShapeFn) Support() float64 { return 1.0 }

func (linearShapeFn) Eval(r, dx float64) (float64, float64) {
	a := math.Abs(r) / dx
	if a >= 1 {
		return 0, 0
	}
	n := 1 - a
	dn := -sign(r) / dx
	return n, dn
}

type quadraticSplineShapeFn struct{}

func (quadraticSplineShapeFn) Support() float64 { return 1.5 }

// Eval implements the standard quadratic B-spline, in units of s=r/dx:
//
//	|s|<0.5:      n = 0.75 - s^2
//	0.5<=|s|<1.5: n = 0.5*(1.5-|s|)^2
func (quadraticSplineShapeFn) Eval(r, dx float64) (float64, float64) {
	s := r / dx
	a := math.Abs(s)
	switch {
	case a < 0.5:
		return 0.75 - s*s, -2 * s / dx
	case a < 1.5:
		b := 1.5 - a
		n := 0.5 * b * b
		dn := -sign(s) * b / dx
		return n, dn
	default:
		return 0, 0
	}
}

type cubicSplineShapeFn struct{}

func (cubicSplineShapeFn) Support() float64 { return 2.0 }

// Eval implements the standard cubic B-spline, in units of s=r/dx:
//
//	|s|<1:   n = 2/3 - s^2 + |s|^3/2
//	1<=|s|<2: n = (2-|s|)^3/6
func (cubicSplineShapeFn) Eval(r, dx float64) (float64, float64) {
	s := r / dx
	a := math.Abs(s)
	switch {
	case a < 1:
		n := 2.0/3.0 - a*a + a*a*a/2
		dn := (-2*a + 1.5*a*a) * sign(s) / dx
		return n, dn
	case a < 2:
		b := 2 - a
		n := b * b * b / 6.0
		dn := -sign(s) * b * b / 2.0 / dx
		return n, dn
	default:
		return 0, 0
	}
}

type bernsteinQuadraticShapeFn struct{}

func (bernsteinQuadraticShapeFn) Support() float64 { return 1.0 }

// Eval implements a quadratic Bernstein basis reparametrised onto the
// node-centered support [-dx,dx], giving the same support radius as the
// linear kernel but a C1 (rather than C0) blend.
func (bernsteinQuadraticShapeFn) Eval(r, dx float64) (float64, float64) {
	a := math.Abs(r) / dx
	if a >= 1 {
		return 0, 0
	}
	t := 1 - a // t in (0,1], Bernstein parameter
	n := t * t
	dn := -2 * t * sign(r) / dx
	return n, dn
}

func sign(x float64) float64 {
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 0
}
