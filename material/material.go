// Package material implements the three independent polymorphic model
// families consumed by the constitutive update — EOS, Strength and
// Damage — plus the Material that bundles them together. Every concrete
// model is constructed once from a parameter list and is immutable and
// thread-safe afterwards (pure functions over particle state), matching
// the per-step invocation count (np x kernels) that makes virtual-call
// overhead worth avoiding.
package material

import "github.com/cpmech/gosl/fun"

// Params is the parameter list a model is constructed from: a sequence of
// named, parsed numeric values. It is gosl's own parameter-list type, used
// the same way msolid.Model.Init(ndim, pstress, prms fun.Prms) consumes it.
type Params = fun.Prms

// Find returns the value of the parameter named n, or 0 if absent.
func Find(prms Params, n string) float64 {
	for _, p := range prms {
		if p.N == n {
			return p.V
		}
	}
	return 0
}

// Material bundles a density/elastic-constant set with its three optional
// constitutive sub-models. A Material is Neo-Hookean iff both EOS and
// Strength are nil; update_stress branches on exactly that condition.
type Material struct {
	Name           string
	Rho0           float64 // reference density
	K              float64 // bulk modulus
	G              float64 // shear modulus
	Lambda         float64 // Lame's first parameter
	SignalVelocity float64 // signal (longitudinal) wave speed, used by the CFL and plastic-strain-rate averaging window

	EOS      EOS      // nil => no pressure split: pH is taken as 0 in the EOS+Strength branch
	Strength Strength // nil together with a nil EOS => Neo-Hookean
	Damage   Damage   // nil => no damage evolution
}

// IsNeoHookean reports whether m should use the hyperelastic branch of the
// stress update (spec branch A) rather than the EOS+Strength(+Damage)
// branch (branch B).
func (m *Material) IsNeoHookean() bool {
	return m.EOS == nil && m.Strength == nil
}

// Registry is a process-wide (or per-Simulation, if callers avoid package
// globals) database of named materials, mirroring inp.MatDb's role in the
// teacher but scoped to the three model families this solver needs.
type Registry struct {
	byName map[string]*Material
	order  []string
}

// NewRegistry returns an empty material registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Material)}
}

// Add registers m under its own Name. It returns an error if the name is
// already taken (a ConfigError in the caller's taxonomy — ptag/material
// collisions are both setup-time config errors).
func (r *Registry) Add(m *Material) error {
	if _, exists := r.byName[m.Name]; exists {
		return &DuplicateNameError{Name: m.Name}
	}
	r.byName[m.Name] = m
	r.order = append(r.order, m.Name)
	return nil
}

// Find returns the material named name, or nil if none was registered.
func (r *Registry) Find(name string) *Material {
	return r.byName[name]
}

// Names returns the registered material names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// DuplicateNameError is returned by Registry.Add for a name collision.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return "material \"" + e.Name + "\" is already registered"
}
