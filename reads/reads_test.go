package reads

import (
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/repeatlabs/trview/repeat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extractionLocus() *repeat.Locus {
	return &repeat.Locus{
		ID:         "HTT",
		Region:     repeat.Region{Contig: "chr4", Start: 3074876, End: 3074933},
		LeftFlank:  "GGGGGGGGGG",
		RightFlank: "TTTTTTTTTT",
		Motifs:     []string{"CAG"},
	}
}

func newAux(t *testing.T, name string, value interface{}) sam.Aux {
	t.Helper()
	aux, err := sam.NewAux(sam.NewTag(name), value)
	require.NoError(t, err)
	return aux
}

func newRecord(t *testing.T, name, seq string, aux ...sam.Aux) *sam.Record {
	t.Helper()
	return &sam.Record{
		Name:      name,
		Seq:       sam.NewSeq([]byte(seq)),
		AuxFields: aux,
	}
}

func TestFromRecord(t *testing.T) {
	locus := extractionLocus()
	rec := newRecord(t, "read1", "ACGTACGT",
		newAux(t, "TR", "HTT"),
		newAux(t, "AL", 1),
		newAux(t, "FL", []uint32{35, 40}),
		newAux(t, "MC", []uint8{250, 3, 17}),
	)

	read, ok, err := FromRecord(rec, locus)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Read{
		Name:       "read1",
		Seq:        "ACGTACGT",
		LeftFlank:  35,
		RightFlank: 40,
		Allele:     1,
		Meth:       []byte{250, 3, 17},
	}, read)
}

func TestFromRecordNoMeth(t *testing.T) {
	locus := extractionLocus()
	rec := newRecord(t, "read1", "ACGT",
		newAux(t, "TR", "HTT"),
		newAux(t, "AL", 0),
		newAux(t, "FL", []uint32{12, 9}),
	)

	read, ok, err := FromRecord(rec, locus)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, read.Meth)
}

// A read tagged for another locus is excluded without an error.
func TestFromRecordOtherLocus(t *testing.T) {
	locus := extractionLocus()
	rec := newRecord(t, "read1", "ACGT",
		newAux(t, "TR", "FMR1"),
		newAux(t, "AL", 0),
		newAux(t, "FL", []uint32{0, 0}),
	)

	_, ok, err := FromRecord(rec, locus)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFromRecordMissingTR(t *testing.T) {
	locus := extractionLocus()
	rec := newRecord(t, "read1", "ACGT",
		newAux(t, "AL", 0),
		newAux(t, "FL", []uint32{0, 0}),
	)

	_, _, err := FromRecord(rec, locus)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read1")
	assert.Contains(t, err.Error(), "TR tag")
}

func TestFromRecordMalformedTags(t *testing.T) {
	locus := extractionLocus()
	tests := []struct {
		name string
		aux  []sam.Aux
		want string
	}{
		{
			"TR wrong type",
			[]sam.Aux{newAux(t, "TR", 7)},
			"TR tag",
		},
		{
			"AL missing",
			[]sam.Aux{newAux(t, "TR", "HTT"), newAux(t, "FL", []uint32{0, 0})},
			"AL tag",
		},
		{
			"AL wrong type",
			[]sam.Aux{newAux(t, "TR", "HTT"), newAux(t, "AL", "1"), newAux(t, "FL", []uint32{0, 0})},
			"AL tag",
		},
		{
			"FL missing",
			[]sam.Aux{newAux(t, "TR", "HTT"), newAux(t, "AL", 0)},
			"FL tag",
		},
		{
			"FL wrong length",
			[]sam.Aux{newAux(t, "TR", "HTT"), newAux(t, "AL", 0), newAux(t, "FL", []uint32{1, 2, 3})},
			"FL tag",
		},
		{
			"FL wrong type",
			[]sam.Aux{newAux(t, "TR", "HTT"), newAux(t, "AL", 0), newAux(t, "FL", "12,9")},
			"FL tag",
		},
		{
			"MC wrong type",
			[]sam.Aux{newAux(t, "TR", "HTT"), newAux(t, "AL", 0), newAux(t, "FL", []uint32{0, 0}), newAux(t, "MC", "hi")},
			"MC tag",
		},
	}
	for _, tt := range tests {
		rec := newRecord(t, "readX", "ACGT", tt.aux...)
		_, _, err := FromRecord(rec, locus)
		require.Error(t, err, tt.name)
		assert.Contains(t, err.Error(), "readX", tt.name)
		assert.Contains(t, err.Error(), tt.want, tt.name)
	}
}

func TestFromRecordAlleleIntWidths(t *testing.T) {
	locus := extractionLocus()
	for _, value := range []interface{}{int8(-1), uint8(1), int16(2), int32(3), 4} {
		rec := newRecord(t, "read1", "ACGT",
			newAux(t, "TR", "HTT"),
			newAux(t, "AL", value),
			newAux(t, "FL", []uint32{0, 0}),
		)
		read, ok, err := FromRecord(rec, locus)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "read1", read.Name)
	}
}

func TestSearchPad(t *testing.T) {
	locus := extractionLocus()
	assert.Equal(t, DefaultSearchPad, searchPad(locus, Opts{}))
	assert.Equal(t, 2500, searchPad(locus, Opts{SearchPad: 2500}))

	// The pad never shrinks below this locus's own flank lengths.
	wide := extractionLocus()
	wide.LeftFlank = string(make([]byte, 1500))
	assert.Equal(t, 1500, searchPad(wide, Opts{SearchPad: 10}))
}
