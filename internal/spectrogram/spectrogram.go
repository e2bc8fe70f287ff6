// Package spectrogram turns the irregularly timed pings of one fish into a
// fixed-size matrix: rows are evenly spaced points of normalised time and
// columns are the frequency-response columns of the ping table.
//
// The name follows the classifier's usage. No Fourier transform is involved;
// the frequency axis comes straight from the echosounder's per-frequency
// target strength columns.
package spectrogram

import (
	"cmp"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/RMahshie/pingprep/internal/dataset"
	"github.com/RMahshie/pingprep/internal/pingtime"
)

const resampleStream = 0x737065637472756d

// Spectrogram is a Length x len(Frequencies) matrix built from one fish.
type Spectrogram struct {
	Class        string
	IndividualID string
	Seed         uint64
	Frequencies  []string
	// Draw lists the rows of the individual that were sampled, in the
	// chronological order used for interpolation.
	Draw []int
	Data *mat.Dense
}

// Rows returns the matrix as a slice of rows.
func (s *Spectrogram) Rows() [][]float64 {
	r, _ := s.Data.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, s.Data)
	}
	return out
}

// HasNaN reports whether any cell is missing. Empty frequency cells in the
// ping table decode as NaN and survive interpolation.
func (s *Spectrogram) HasNaN() bool {
	r, _ := s.Data.Dims()
	for i := 0; i < r; i++ {
		if floats.HasNaN(s.Data.RawRowView(i)) {
			return true
		}
	}
	return false
}

// Resampler builds spectrograms from a ping table.
type Resampler struct {
	ds     *dataset.Dataset
	slots  []int
	labels []string
}

// NewResampler prepares ds for resampling. The table must have at least one
// frequency column.
func NewResampler(ds *dataset.Dataset) (*Resampler, error) {
	if ds == nil || ds.Schema == nil {
		return nil, errors.New("dataset is required")
	}
	slots := ds.Schema.FrequencySlots()
	if len(slots) == 0 {
		return nil, errors.New("dataset has no frequency columns")
	}
	return &Resampler{ds: ds, slots: slots, labels: ds.Schema.FrequencyColumns()}, nil
}

// Frequencies returns the frequency column names, one per matrix column.
func (r *Resampler) Frequencies() []string {
	return slices.Clone(r.labels)
}

type drawnPing struct {
	row int
	t   pingtime.TimeOfDay
	m   dataset.Measurement
}

// Generate builds one spectrogram of the given length for class. The fish is
// chosen uniformly among the individuals of the class. Its pings are sampled
// without replacement when it has at least length of them and with
// replacement otherwise, so the result always has exactly length rows.
func (r *Resampler) Generate(class string, length int, seed uint64) (*Spectrogram, error) {
	if length < 1 {
		return nil, fmt.Errorf("spectrogram length must be positive, got %d", length)
	}

	groups := r.ds.Groups(class)
	if len(groups) == 0 {
		return nil, &dataset.InsufficientDataError{Class: class, Reason: "no measurements"}
	}

	rng := rand.New(rand.NewPCG(seed, resampleStream))
	group := groups[rng.IntN(len(groups))]
	rows := sampleRows(rng, len(group.Members), length)

	drawn := make([]drawnPing, len(rows))
	for i, row := range rows {
		m := group.Members[row]
		t, err := pingtime.Parse(m.PingTime)
		if err != nil {
			return nil, fmt.Errorf("individual %s: %w", group.IndividualID, err)
		}
		drawn[i] = drawnPing{row: row, t: t, m: m}
	}
	slices.SortStableFunc(drawn, func(a, b drawnPing) int {
		return cmp.Compare(a.t, b.t)
	})

	times := normalizedTimes(drawn)
	data := mat.NewDense(length, len(r.slots), nil)

	if allEqual(times) {
		first := r.features(drawn[0].m)
		for i := 0; i < length; i++ {
			data.SetRow(i, first)
		}
	} else {
		grid := linspace(length)
		column := make([]float64, len(drawn))
		for j, slot := range r.slots {
			for i, d := range drawn {
				column[i] = d.m.Numeric[slot]
			}
			for i, x := range grid {
				data.Set(i, j, interp(x, times, column))
			}
		}
	}

	draw := make([]int, len(drawn))
	for i, d := range drawn {
		draw[i] = d.row
	}

	log.Debug().
		Str("class", class).
		Str("individual", group.IndividualID).
		Int("pings", len(group.Members)).
		Int("length", length).
		Msg("Spectrogram generated")

	return &Spectrogram{
		Class:        class,
		IndividualID: group.IndividualID,
		Seed:         seed,
		Frequencies:  slices.Clone(r.labels),
		Draw:         draw,
		Data:         data,
	}, nil
}

// GenerateClass builds count spectrograms for class using seeds seed,
// seed+1, and so on.
func (r *Resampler) GenerateClass(class string, length, count int, seed uint64) ([]*Spectrogram, error) {
	if count < 0 {
		return nil, fmt.Errorf("spectrogram count must not be negative, got %d", count)
	}
	out := make([]*Spectrogram, 0, count)
	for i := 0; i < count; i++ {
		s, err := r.Generate(class, length, seed+uint64(i))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *Resampler) features(m dataset.Measurement) []float64 {
	out := make([]float64, len(r.slots))
	for j, slot := range r.slots {
		out[j] = m.Numeric[slot]
	}
	return out
}

// sampleRows draws k row indexes from [0,n).
func sampleRows(rng *rand.Rand, n, k int) []int {
	if n >= k {
		return rng.Perm(n)[:k]
	}
	out := make([]int, k)
	for i := range out {
		out[i] = rng.IntN(n)
	}
	return out
}

// normalizedTimes maps the sorted ping times onto [0,1]. When every time is
// identical all values are zero.
func normalizedTimes(drawn []drawnPing) []float64 {
	out := make([]float64, len(drawn))
	start := drawn[0].t
	span := (drawn[len(drawn)-1].t - start).Seconds()
	if span == 0 {
		return out
	}
	for i, d := range drawn {
		out[i] = (d.t - start).Seconds() / span
	}
	return out
}

func allEqual(v []float64) bool {
	for _, x := range v[1:] {
		if x != v[0] {
			return false
		}
	}
	return true
}

// linspace returns n evenly spaced points covering [0,1]. A single point is 0.
func linspace(n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		return out
	}
	step := 1 / float64(n-1)
	for i := range out {
		out[i] = float64(i) * step
	}
	out[n-1] = 1
	return out
}

// interp evaluates the piecewise linear function through (xp, fp) at x. xp
// must be non-decreasing and may repeat. Values outside [xp[0], xp[n-1]] are
// clamped to the end points.
func interp(x float64, xp, fp []float64) float64 {
	n := len(xp)
	if x <= xp[0] {
		return fp[0]
	}
	if x >= xp[n-1] {
		return fp[n-1]
	}
	// first index with xp[hi] > x; xp[hi-1] <= x < xp[hi]
	hi, _ := slices.BinarySearchFunc(xp, x, func(e, target float64) int {
		if e <= target {
			return -1
		}
		return 1
	})
	lo := hi - 1
	slope := (fp[hi] - fp[lo]) / (xp[hi] - xp[lo])
	return fp[lo] + slope*(x-xp[lo])
}
