package profile

import "reflect"

// DefaultVolatileField is rewritten by Claude Code itself and therefore
// excluded from equivalence
const DefaultVolatileField = "model"

// Comparator classifies profiles against the active configuration
type Comparator struct {
	VolatileField string
}

// NewComparator returns a comparator that ignores field at the top level
func NewComparator(field string) Comparator {
	return Comparator{VolatileField: field}
}

// Classify parses both contents and returns the profile's status.
// It never fails: unparseable input yields StatusReadError.
func (c Comparator) Classify(profileContent, activeContent []byte) Status {
	p, err := parseObject(profileContent)
	if err != nil {
		return StatusReadError
	}
	a, err := parseObject(activeContent)
	if err != nil {
		return StatusReadError
	}
	return c.compare(p, a)
}

// ClassifyProfile compares already-parsed documents
func (c Comparator) ClassifyProfile(p Profile, active Document) Status {
	if p.Err != nil || p.Parsed == nil || active.Err != nil || active.Parsed == nil {
		return StatusReadError
	}
	return c.compare(p.Parsed, active.Parsed)
}

// compare applies the volatile-field rule to two JSON objects
func (c Comparator) compare(p, a map[string]any) Status {
	volatile := func(k string) bool {
		return c.VolatileField != "" && k == c.VolatileField
	}

	for k, pv := range p {
		if volatile(k) {
			continue
		}
		av, ok := a[k]
		if !ok || !reflect.DeepEqual(pv, av) {
			return StatusNoMatch
		}
	}
	for k := range a {
		if volatile(k) {
			continue
		}
		if _, ok := p[k]; !ok {
			return StatusNoMatch
		}
	}

	if c.VolatileField == "" {
		return StatusFullMatch
	}

	pv, pok := p[c.VolatileField]
	av, aok := a[c.VolatileField]
	if pok != aok || !reflect.DeepEqual(pv, av) {
		return StatusPartialMatch
	}
	return StatusFullMatch
}
