// Package reads extracts per-read repeat annotations from aligned reads.
// The repeat genotyper tags every read it uses with the locus it supported
// (TR), the allele it was assigned to (AL), the flank lengths retained on
// each side (FL), and optionally per-base methylation calls (MC). This
// package fetches the alignments around a locus and validates those tags
// into typed Read records.
package reads

import (
	"os"

	"github.com/grailbio/hts/bam"
	htsindex "github.com/grailbio/hts/bgzf/index"
	"github.com/grailbio/hts/sam"
	"github.com/pkg/errors"
	"github.com/repeatlabs/trview/repeat"
	"v.io/x/lib/vlog"
)

var (
	trTag = sam.Tag{'T', 'R'}
	alTag = sam.Tag{'A', 'L'}
	flTag = sam.Tag{'F', 'L'}
	mcTag = sam.Tag{'M', 'C'}
)

// Read is one alignment's extracted annotation. Meth is nil when the
// alignment carries no methylation calls.
type Read struct {
	Name       string
	Seq        string
	LeftFlank  int
	RightFlank int
	Allele     int
	Meth       []byte
}

// Opts adjusts an extraction.
type Opts struct {
	// Index is the BAM index path. Defaults to the BAM path + ".bai".
	Index string

	// SearchPad widens the fetch window on both sides of the locus so that
	// reads anchored in the flanks are found. It must cover the flank
	// length the tagging genotyper used; the default matches the genotyper
	// convention and the pad never shrinks below this locus's own flanks.
	SearchPad int
}

// DefaultSearchPad is the fetch-window padding used when Opts.SearchPad is
// unset.
const DefaultSearchPad = 1000

// Extract returns the tagged reads supporting locus, in file order. Reads
// tagged for other loci are excluded; a read with a missing or malformed
// required tag fails the whole extraction. The BAM and index handles are
// released before returning on every path.
func Extract(path string, locus *repeat.Locus, opts Opts) ([]Read, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening reads")
	}
	defer f.Close() // nolint: errcheck

	br, err := bam.NewReader(f, 1)
	if err != nil {
		return nil, errors.Wrapf(err, "reading BAM header of %s", path)
	}
	defer br.Close() // nolint: errcheck

	indexPath := opts.Index
	if indexPath == "" {
		indexPath = path + ".bai"
	}
	idx, err := readIndex(indexPath)
	if err != nil {
		return nil, err
	}

	ref, err := findReference(br.Header(), locus.Region.Contig)
	if err != nil {
		return nil, err
	}
	pad := searchPad(locus, opts)
	start := max(0, locus.Region.Start-pad)
	end := min(ref.Len(), locus.Region.End+pad)

	chunks, err := idx.Chunks(ref, start, end)
	if err == htsindex.ErrInvalid || len(chunks) == 0 {
		// No alignments indexed in the window.
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "querying BAM index for %s:%d-%d", ref.Name(), start, end)
	}

	it, err := bam.NewIterator(br, chunks)
	if err != nil {
		return nil, errors.Wrap(err, "iterating BAM records")
	}
	var out []Read
	for it.Next() {
		rec := it.Record()
		if rec.Pos >= end || rec.End() <= start {
			continue
		}
		read, ok, err := FromRecord(rec, locus)
		if err != nil {
			it.Close() // nolint: errcheck
			return nil, err
		}
		if ok {
			out = append(out, read)
		}
	}
	if err := it.Close(); err != nil {
		return nil, errors.Wrap(err, "iterating BAM records")
	}
	vlog.VI(1).Infof("locus %s: extracted %d reads from %s:%d-%d", locus.ID, len(out), ref.Name(), start, end)
	return out, nil
}

// FromRecord validates one alignment's repeat-genotyper tags. ok is false
// when the read is tagged for a different locus; a missing or malformed
// required tag is an error naming the read.
func FromRecord(rec *sam.Record, locus *repeat.Locus) (Read, bool, error) {
	trID, ok := auxString(rec.AuxFields.Get(trTag))
	if !ok {
		return Read{}, false, errors.Errorf(
			"missing or malformed TR tag in read %s; was this BAM produced by the latest genotyper version?",
			rec.Name)
	}
	if trID != locus.ID {
		return Read{}, false, nil
	}

	allele, ok := auxInt(rec.AuxFields.Get(alTag))
	if !ok {
		return Read{}, false, errors.Errorf("missing or malformed AL tag in read %s", rec.Name)
	}

	flanks, ok := auxUints(rec.AuxFields.Get(flTag))
	if !ok || len(flanks) != 2 {
		return Read{}, false, errors.Errorf(
			"missing or malformed FL tag in read %s: expected 2 unsigned values", rec.Name)
	}

	meth, err := auxMeth(rec.AuxFields.Get(mcTag))
	if err != nil {
		return Read{}, false, errors.Wrapf(err, "read %s", rec.Name)
	}

	return Read{
		Name:       rec.Name,
		Seq:        string(rec.Seq.Expand()),
		LeftFlank:  flanks[0],
		RightFlank: flanks[1],
		Allele:     allele,
		Meth:       meth,
	}, true, nil
}

func readIndex(path string) (*bam.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening BAM index")
	}
	defer f.Close() // nolint: errcheck
	idx, err := bam.ReadIndex(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading BAM index %s", path)
	}
	return idx, nil
}

func findReference(header *sam.Header, contig string) (*sam.Reference, error) {
	for _, ref := range header.Refs() {
		if ref.Name() == contig {
			return ref, nil
		}
	}
	return nil, errors.Errorf("contig %s not present in the BAM header", contig)
}

func searchPad(locus *repeat.Locus, opts Opts) int {
	pad := opts.SearchPad
	if pad <= 0 {
		pad = DefaultSearchPad
	}
	if n := len(locus.LeftFlank); n > pad {
		pad = n
	}
	if n := len(locus.RightFlank); n > pad {
		pad = n
	}
	return pad
}

func auxString(aux sam.Aux) (string, bool) {
	if aux == nil {
		return "", false
	}
	v, ok := aux.Value().(string)
	return v, ok
}

func auxInt(aux sam.Aux) (int, bool) {
	if aux == nil {
		return 0, false
	}
	switch v := aux.Value().(type) {
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func auxUints(aux sam.Aux) ([]int, bool) {
	if aux == nil {
		return nil, false
	}
	switch v := aux.Value().(type) {
	case []uint32:
		out := make([]int, len(v))
		for i, x := range v {
			out[i] = int(x)
		}
		return out, true
	case []uint16:
		out := make([]int, len(v))
		for i, x := range v {
			out[i] = int(x)
		}
		return out, true
	case []uint8:
		out := make([]int, len(v))
		for i, x := range v {
			out[i] = int(x)
		}
		return out, true
	}
	return nil, false
}

func auxMeth(aux sam.Aux) ([]byte, error) {
	if aux == nil {
		return nil, nil
	}
	v, ok := aux.Value().([]uint8)
	if !ok {
		return nil, errors.New("malformed MC tag: expected a byte array")
	}
	if len(v) == 0 {
		return nil, nil
	}
	meth := make([]byte, len(v))
	copy(meth, v)
	return meth, nil
}

func min(x, y int) int {
	if x < y {
		return x
	}
	return y
}

func max(x, y int) int {
	if x > y {
		return x
	}
	return y
}
