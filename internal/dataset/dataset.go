// Package dataset holds the in-memory ping table consumed by the augmenters
// and the spectrogram resampler.
package dataset

import (
	"fmt"
	"slices"
)

// Measurement is one recorded ping for one individual fish.
type Measurement struct {
	IndividualID string
	Class        string
	PingTime     string
	// Numeric is aligned with Schema.NumericColumns.
	Numeric []float64
	// Categorical is aligned with Schema.CategoricalColumns.
	Categorical []string
}

// Clone returns a deep copy of m.
func (m Measurement) Clone() Measurement {
	m.Numeric = slices.Clone(m.Numeric)
	m.Categorical = slices.Clone(m.Categorical)
	return m
}

// Group is every measurement of one individual.
type Group struct {
	IndividualID string
	Members      []Measurement
}

// Dataset is an ordered set of measurements sharing one schema. Operations
// never mutate a Dataset in place; they return a new one.
type Dataset struct {
	Schema       *Schema
	Measurements []Measurement
}

// New builds a dataset from already decoded measurements.
func New(schema *Schema, measurements []Measurement) *Dataset {
	return &Dataset{Schema: schema, Measurements: measurements}
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Measurements)
}

// Classes returns the distinct class labels in order of first appearance.
func (d *Dataset) Classes() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range d.Measurements {
		if _, ok := seen[m.Class]; ok {
			continue
		}
		seen[m.Class] = struct{}{}
		out = append(out, m.Class)
	}
	return out
}

// ClassCounts returns the number of rows per class.
func (d *Dataset) ClassCounts() map[string]int {
	out := make(map[string]int)
	for _, m := range d.Measurements {
		out[m.Class]++
	}
	return out
}

// ByClass returns the measurements of one class in table order.
func (d *Dataset) ByClass(class string) []Measurement {
	var out []Measurement
	for _, m := range d.Measurements {
		if m.Class == class {
			out = append(out, m)
		}
	}
	return out
}

// Groups partitions the rows of class by individual, in order of first
// appearance of each individual.
func (d *Dataset) Groups(class string) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, m := range d.Measurements {
		if m.Class != class {
			continue
		}
		i, ok := index[m.IndividualID]
		if !ok {
			i = len(groups)
			index[m.IndividualID] = i
			groups = append(groups, Group{IndividualID: m.IndividualID})
		}
		groups[i].Members = append(groups[i].Members, m)
	}
	return groups
}

// EligibleGroups returns the groups of class with at least min members.
func (d *Dataset) EligibleGroups(class string, min int) []Group {
	var out []Group
	for _, g := range d.Groups(class) {
		if len(g.Members) >= min {
			out = append(out, g)
		}
	}
	return out
}

// Append returns a new dataset holding the rows of d followed by extra.
func (d *Dataset) Append(extra ...Measurement) *Dataset {
	out := make([]Measurement, 0, len(d.Measurements)+len(extra))
	out = append(out, d.Measurements...)
	out = append(out, extra...)
	return New(d.Schema, out)
}

// Filter keeps rows whose class is in classes (all classes when empty) and
// whose individual is not in exclude.
func (d *Dataset) Filter(classes, exclude []string) *Dataset {
	var out []Measurement
	for _, m := range d.Measurements {
		if len(classes) > 0 && !slices.Contains(classes, m.Class) {
			continue
		}
		if slices.Contains(exclude, m.IndividualID) {
			continue
		}
		out = append(out, m)
	}
	return New(d.Schema, out)
}

// InsufficientDataError reports a class that cannot feed the requested
// operation.
type InsufficientDataError struct {
	Class  string
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for class %q: %s", e.Class, e.Reason)
}
