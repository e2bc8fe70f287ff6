package dataset

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/RMahshie/pingprep/internal/pingtime"
)

// SamplePerClass draws n rows without replacement from each listed class
// (every class when classes is empty). The draw for each class uses its own
// generator keyed by seed so the result does not depend on class order.
func (d *Dataset) SamplePerClass(classes []string, n int, seed uint64) (*Dataset, error) {
	if n < 0 {
		return nil, fmt.Errorf("sample size must not be negative, got %d", n)
	}
	if len(classes) == 0 {
		classes = d.Classes()
	}

	var out []Measurement
	for _, class := range classes {
		rows := d.ByClass(class)
		if len(rows) < n {
			return nil, &InsufficientDataError{
				Class:  class,
				Reason: fmt.Sprintf("cannot sample %d rows from %d", n, len(rows)),
			}
		}
		rng := rand.New(rand.NewPCG(seed, uint64(len(rows))))
		for _, i := range rng.Perm(len(rows))[:n] {
			out = append(out, rows[i])
		}
	}
	return New(d.Schema, out), nil
}

// SortByIndividualAndTime orders rows by individual id and then by ping time.
func (d *Dataset) SortByIndividualAndTime() (*Dataset, error) {
	type keyed struct {
		m Measurement
		t pingtime.TimeOfDay
	}

	rows := make([]keyed, len(d.Measurements))
	for i, m := range d.Measurements {
		t, err := pingtime.Parse(m.PingTime)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows[i] = keyed{m: m, t: t}
	}

	slices.SortStableFunc(rows, func(a, b keyed) int {
		if c := cmp.Compare(a.m.IndividualID, b.m.IndividualID); c != 0 {
			return c
		}
		return cmp.Compare(a.t, b.t)
	})

	out := make([]Measurement, len(rows))
	for i, r := range rows {
		out[i] = r.m
	}
	return New(d.Schema, out), nil
}
