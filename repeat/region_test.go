package repeat_test

import (
	"strings"
	"testing"

	"github.com/repeatlabs/trview/repeat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLocus() *repeat.Locus {
	return &repeat.Locus{
		ID:         "TEST_LOCUS",
		Region:     repeat.Region{Contig: "chr4", Start: 3074876, End: 3074933},
		LeftFlank:  strings.Repeat("A", 10),
		RightFlank: strings.Repeat("T", 10),
		Motifs:     []string{"CAG", "CCG"},
		Struc:      "(CAG)n",
	}
}

func TestBuildRegionLabels(t *testing.T) {
	locus := testLocus()
	seq := strings.Repeat("N", 65)
	spans, err := repeat.DecodeSpans("0(0-20)_0(25-45)")
	require.NoError(t, err)

	labels, err := repeat.BuildRegionLabels(locus, seq, spans)
	require.NoError(t, err)
	assert.Equal(t, []repeat.RegionLabel{
		{Kind: repeat.RegionFlank, Start: 0, End: 10},
		{Kind: repeat.RegionMotif, Start: 10, End: 30, Motif: "CAG"},
		{Kind: repeat.RegionSeq, Start: 30, End: 35},
		{Kind: repeat.RegionMotif, Start: 35, End: 55, Motif: "CAG"},
		{Kind: repeat.RegionFlank, Start: 55, End: 65},
	}, labels)
}

func TestBuildRegionLabelsNoSpans(t *testing.T) {
	locus := testLocus()
	seq := strings.Repeat("N", 40)

	labels, err := repeat.BuildRegionLabels(locus, seq, nil)
	require.NoError(t, err)
	assert.Equal(t, []repeat.RegionLabel{
		{Kind: repeat.RegionFlank, Start: 0, End: 10},
		{Kind: repeat.RegionOther, Start: 10, End: 30},
		{Kind: repeat.RegionFlank, Start: 30, End: 40},
	}, labels)

	// The absence decomposition must match the coarse flank view exactly.
	assert.Equal(t, repeat.BuildFlankLabels(locus, labels), labels)
}

func TestBuildRegionLabelsTrailingFiller(t *testing.T) {
	locus := testLocus()
	seq := strings.Repeat("N", 50)

	labels, err := repeat.BuildRegionLabels(locus, seq, []repeat.Span{{MotifIndex: 1, Start: 0, End: 21}})
	require.NoError(t, err)
	assert.Equal(t, []repeat.RegionLabel{
		{Kind: repeat.RegionFlank, Start: 0, End: 10},
		{Kind: repeat.RegionMotif, Start: 10, End: 31, Motif: "CCG"},
		{Kind: repeat.RegionSeq, Start: 31, End: 40},
		{Kind: repeat.RegionFlank, Start: 40, End: 50},
	}, labels)
}

func TestBuildRegionLabelsMalformed(t *testing.T) {
	locus := testLocus()
	tests := []struct {
		name  string
		seq   string
		spans []repeat.Span
	}{
		{"span past body end", strings.Repeat("N", 40), []repeat.Span{{0, 0, 25}}},
		{"overlapping spans", strings.Repeat("N", 65), []repeat.Span{{0, 0, 20}, {0, 15, 45}}},
		{"inverted span", strings.Repeat("N", 65), []repeat.Span{{0, 20, 5}}},
		{"motif index out of range", strings.Repeat("N", 65), []repeat.Span{{7, 0, 20}}},
		{"allele shorter than flanks", strings.Repeat("N", 12), nil},
	}
	for _, tt := range tests {
		_, err := repeat.BuildRegionLabels(locus, tt.seq, tt.spans)
		assert.Error(t, err, tt.name)
	}
}

// Region labels must tile [0, len(seq)) without gaps or overlaps, and the
// summed non-flank length must equal the Other segment of the coarse view.
func TestRegionLabelInvariants(t *testing.T) {
	locus := testLocus()
	encodings := map[string]int{
		".":                40,
		"0(0-20)":          40,
		"0(0-20)_0(25-45)": 65,
		"0(0-18)_1(18-45)": 70,
		"1(5-11)_0(20-44)": 64,
	}
	for encoding, alleleLen := range encodings {
		seq := strings.Repeat("N", alleleLen)
		spans, err := repeat.DecodeSpans(encoding)
		require.NoError(t, err, encoding)
		labels, err := repeat.BuildRegionLabels(locus, seq, spans)
		require.NoError(t, err, encoding)

		cursor := 0
		nonFlank := 0
		for _, label := range labels {
			require.Equal(t, cursor, label.Start, "%s: gap before %s", encoding, label)
			require.True(t, label.End >= label.Start, "%s: inverted %s", encoding, label)
			if label.Kind != repeat.RegionFlank {
				nonFlank += label.Len()
			}
			cursor = label.End
		}
		require.Equal(t, alleleLen, cursor, encoding)

		flankLabels := repeat.BuildFlankLabels(locus, labels)
		require.Len(t, flankLabels, 3, encoding)
		assert.Equal(t, repeat.RegionOther, flankLabels[1].Kind, encoding)
		assert.Equal(t, nonFlank, flankLabels[1].Len(), encoding)
		assert.Equal(t, alleleLen, flankLabels[2].End, encoding)
	}
}

func TestBaseLabelerDispatch(t *testing.T) {
	nested := fakeLabeler{name: "nested"}
	perMotif := fakeLabeler{name: "permotif"}
	set := repeat.BaseLabelers{Nested: &nested, PerMotif: &perMotif}

	plain := testLocus()
	assert.True(t, set.For(plain) == set.PerMotif)

	nestedLocus := testLocus()
	nestedLocus.Struc = "(CAG)n<(CCG)n(CAG)n>"
	assert.True(t, set.For(nestedLocus) == set.Nested)
}

type fakeLabeler struct{ name string }

func (*fakeLabeler) Label(*repeat.Locus, []string, [][]repeat.Span) ([][]repeat.BaseLabel, error) {
	return nil, nil
}
