// Package geodata holds the deduplicated building and street features merged
// in from OpenStreetMap, keyed by feature id, with flattened lookup views for
// the matcher and locator.
package geodata

// Building is a way-type building footprint with its service-reported
// centroid. Nodes are the ordered boundary node references.
type Building struct {
	ID    int64
	Lat   float64
	Lng   float64
	Nodes []int64
	Tags  map[string]string
}

// Street is a named way-type highway feature. The display name is resolved
// from Tags; see Name.
type Street struct {
	ID   int64
	Tags map[string]string
}

// Name resolves the street's display name: TIGER base name first, then the
// plain name tag, then the route reference, else empty.
func (s Street) Name() string {
	if v, ok := s.Tags["tiger:name_base"]; ok && v != "" {
		return v
	}
	if v, ok := s.Tags["name"]; ok && v != "" {
		return v
	}
	if v, ok := s.Tags["ref"]; ok && v != "" {
		return v
	}
	return ""
}
