package rankdomain

// Box is an axis-aligned rectangular region, the shape used by
// solid_rectangle.cpp in the reference implementation (limits() returning
// lo/hi per axis). It implements solid.Region.
type Box struct {
	Lo, Hi [3]float64
}

// Bounds implements solid.Region.
func (b Box) Bounds() (lo, hi [3]float64) { return b.Lo, b.Hi }

// Inside implements solid.Region.
func (b Box) Inside(x [3]float64) bool {
	for d := 0; d < 3; d++ {
		if x[d] < b.Lo[d] || x[d] > b.Hi[d] {
			return false
		}
	}
	return true
}

// RegionRegistry is a named lookup of regions, mirroring domain->regions
// in the reference implementation (the `region <id> <shape> <bounds...>`
// input command populates this).
type RegionRegistry struct {
	byName map[string]Box
	order  []string
}

// NewRegionRegistry returns an empty region registry.
func NewRegionRegistry() *RegionRegistry {
	return &RegionRegistry{byName: make(map[string]Box)}
}

// Add registers a named box region.
func (r *RegionRegistry) Add(name string, b Box) {
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, name)
	}
	r.byName[name] = b
}

// Find returns the region named name and whether it was found.
func (r *RegionRegistry) Find(name string) (Box, bool) {
	b, ok := r.byName[name]
	return b, ok
}
