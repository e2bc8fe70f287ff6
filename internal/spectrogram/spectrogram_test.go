package spectrogram

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/pingprep/internal/dataset"
)

func load(t *testing.T, csv string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.ReadCSV(strings.NewReader(csv), dataset.DefaultSchemaOptions())
	require.NoError(t, err)
	return ds
}

const linearCSV = `fishNum,Spe,Ping_time,F100
A1,X, 00:00:00.0,1.0
A1,X, 00:00:01.0,2.0
A1,X, 00:00:02.0,3.0
`

const shapesCSV = `fishNum,Spe,Ping_time,Region,F38,F70,F120
SMALL,S, 10:00:00.000000,north,-40,-50,-60
SMALL,S, 10:00:03.000000,north,-41,-51,-61
EXACT,E, 11:00:00.000000,north,-30,-35,-36
EXACT,E, 11:00:01.000000,north,-31,-34,-37
EXACT,E, 11:00:02.000000,north,-32,-33,-38
EXACT,E, 11:00:03.000000,north,-33,-32,-39
BIG,B, 12:00:00.000000,east,-20,-21,-22
BIG,B, 12:00:01.000000,east,-21,-22,-23
BIG,B, 12:00:02.000000,east,-22,-23,-24
BIG,B, 12:00:03.000000,east,-23,-24,-25
BIG,B, 12:00:04.000000,east,-24,-25,-26
BIG,B, 12:00:05.000000,east,-25,-26,-27
BIG,B, 12:00:06.000000,east,-26,-27,-28
BIG,B, 12:00:07.000000,east,-27,-28,-29
SAME,D, 13:00:00.000000,west,-10,-11,-12
SAME,D, 13:00:00.000000,west,-13,-14,-15
SAME,D, 13:00:00.000000,west,-16,-17,-18
TWO1,T, 14:00:00.000000,west,-1,-1,-1
TWO1,T, 14:00:01.000000,west,-2,-2,-2
TWO2,T, 15:00:00.000000,west,-3,-3,-3
TWO2,T, 15:00:01.000000,west,-4,-4,-4
`

func TestGenerate_ShapeIsAlwaysLength(t *testing.T) {
	r, err := NewResampler(load(t, shapesCSV))
	require.NoError(t, err)

	tests := []struct {
		name  string
		class string
		pings int
	}{
		{"fewer pings than length", "S", 2},
		{"exactly length pings", "E", 4},
		{"more pings than length", "B", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := uint64(0); seed < 20; seed++ {
				s, err := r.Generate(tt.class, 4, seed)
				require.NoError(t, err)

				rows, cols := s.Data.Dims()
				assert.Equal(t, 4, rows)
				assert.Equal(t, 3, cols)
				assert.Equal(t, []string{"F38", "F70", "F120"}, s.Frequencies)
				assert.Len(t, s.Draw, 4)
				for _, row := range s.Draw {
					assert.Less(t, row, tt.pings)
				}
			}
		})
	}
}

func TestGenerate_WithoutReplacementWhenEnoughPings(t *testing.T) {
	r, err := NewResampler(load(t, shapesCSV))
	require.NoError(t, err)

	for seed := uint64(0); seed < 20; seed++ {
		s, err := r.Generate("B", 5, seed)
		require.NoError(t, err)

		seen := map[int]bool{}
		for _, row := range s.Draw {
			assert.False(t, seen[row], "row %d drawn twice", row)
			seen[row] = true
		}
		assert.True(t, slices.IsSorted(s.Draw), "pings are ordered by time, which follows row order here")
	}
}

func TestGenerate_ExactLengthKeepsEndpoints(t *testing.T) {
	r, err := NewResampler(load(t, shapesCSV))
	require.NoError(t, err)

	s, err := r.Generate("E", 4, 7)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3}, s.Draw)
	rows := s.Rows()
	assert.Equal(t, []float64{-30, -35, -36}, rows[0])
	assert.Equal(t, []float64{-33, -32, -39}, rows[3])
}

func TestGenerate_LinearScenario(t *testing.T) {
	r, err := NewResampler(load(t, linearCSV))
	require.NoError(t, err)

	// Three pings are drawn with replacement, so look for a draw that
	// covers both ends of the recording.
	var found *Spectrogram
	for seed := uint64(0); seed < 200 && found == nil; seed++ {
		s, err := r.Generate("X", 5, seed)
		require.NoError(t, err)
		if slices.Contains(s.Draw, 0) && slices.Contains(s.Draw, 2) {
			found = s
		}
	}
	require.NotNil(t, found)

	assert.Equal(t, "A1", found.IndividualID)
	want := []float64{1.0, 1.5, 2.0, 2.5, 3.0}
	for i, w := range want {
		assert.InDelta(t, w, found.Data.At(i, 0), 1e-12)
	}
}

func TestGenerate_DegenerateTimesReplicateFirstRow(t *testing.T) {
	ds := load(t, shapesCSV)
	r, err := NewResampler(ds)
	require.NoError(t, err)

	members := ds.Groups("D")[0].Members
	for seed := uint64(0); seed < 10; seed++ {
		s, err := r.Generate("D", 5, seed)
		require.NoError(t, err)

		first := members[s.Draw[0]].Numeric
		for _, row := range s.Rows() {
			assert.Equal(t, first, row)
		}
	}
}

func TestGenerate_SingleRow(t *testing.T) {
	r, err := NewResampler(load(t, shapesCSV))
	require.NoError(t, err)

	s, err := r.Generate("E", 1, 3)
	require.NoError(t, err)
	rows, _ := s.Data.Dims()
	assert.Equal(t, 1, rows)
}

func TestGenerate_PicksEveryIndividual(t *testing.T) {
	r, err := NewResampler(load(t, shapesCSV))
	require.NoError(t, err)

	picked := map[string]int{}
	for seed := uint64(0); seed < 100; seed++ {
		s, err := r.Generate("T", 3, seed)
		require.NoError(t, err)
		picked[s.IndividualID]++
	}
	assert.Positive(t, picked["TWO1"])
	assert.Positive(t, picked["TWO2"])
}

func TestGenerate_Deterministic(t *testing.T) {
	r, err := NewResampler(load(t, shapesCSV))
	require.NoError(t, err)

	a, err := r.Generate("B", 6, 42)
	require.NoError(t, err)
	b, err := r.Generate("B", 6, 42)
	require.NoError(t, err)
	assert.Equal(t, a.Rows(), b.Rows())
	assert.Equal(t, a.Draw, b.Draw)
}

func TestGenerate_Errors(t *testing.T) {
	r, err := NewResampler(load(t, shapesCSV))
	require.NoError(t, err)

	_, err = r.Generate("ZZ", 4, 1)
	var insufficient *dataset.InsufficientDataError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, "ZZ", insufficient.Class)

	_, err = r.Generate("B", 0, 1)
	assert.Error(t, err)

	_, err = NewResampler(load(t, "fishNum,Spe,Ping_time,depth\nA,X, 00:00:00.0,3\n"))
	assert.Error(t, err)

	_, err = NewResampler(nil)
	assert.Error(t, err)
}

func TestGenerate_BadPingTime(t *testing.T) {
	r, err := NewResampler(load(t, "fishNum,Spe,Ping_time,F100\nA,X,noon,1\n"))
	require.NoError(t, err)

	_, err = r.Generate("X", 2, 1)
	assert.ErrorContains(t, err, "individual A")
}

func TestGenerateClass(t *testing.T) {
	r, err := NewResampler(load(t, shapesCSV))
	require.NoError(t, err)

	out, err := r.GenerateClass("B", 4, 3, 10)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i, s := range out {
		assert.Equal(t, uint64(10+i), s.Seed, fmt.Sprintf("spectrogram %d", i))
		single, err := r.Generate("B", 4, s.Seed)
		require.NoError(t, err)
		assert.Equal(t, single.Rows(), s.Rows())
	}

	_, err = r.GenerateClass("B", 4, -1, 10)
	assert.Error(t, err)
}

func TestInterp(t *testing.T) {
	xp := []float64{0, 0.5, 0.5, 1}
	fp := []float64{0, 1, 3, 4}

	tests := []struct {
		x    float64
		want float64
	}{
		{-1, 0},
		{0, 0},
		{0.25, 0.5},
		{0.5, 3},
		{0.75, 3.5},
		{1, 4},
		{2, 4},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, interp(tt.x, xp, fp), 1e-12, "x=%v", tt.x)
	}
}

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{0}, linspace(1))
	assert.Equal(t, []float64{0, 1}, linspace(2))
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, linspace(5))
}

func TestHasNaN(t *testing.T) {
	ds := load(t, "fishNum,Spe,Ping_time,F100,F200\nA1,X, 00:00:00.0,1,\nA1,X, 00:00:01.0,2,3\n")
	r, err := NewResampler(ds)
	require.NoError(t, err)

	sg, err := r.Generate("X", 2, 0)
	require.NoError(t, err)
	assert.True(t, sg.HasNaN())

	clean, err := NewResampler(load(t, linearCSV))
	require.NoError(t, err)
	sg, err = clean.Generate("X", 3, 0)
	require.NoError(t, err)
	assert.False(t, sg.HasNaN())
}
