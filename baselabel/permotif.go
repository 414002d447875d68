// Package baselabel provides base-level labelers for annotated alleles.
// Both labelers satisfy the repeat.BaseLabeler contract: one label per
// sequence position per allele. PerMotif follows the genotyper's decoded
// motif spans; Nested re-derives structure itself and stands in for the
// statistical labeler used on nested repeats.
package baselabel

import (
	"github.com/pkg/errors"
	"github.com/repeatlabs/trview/repeat"
)

// PerMotif labels each base inside a decoded motif span by comparing it
// against the cyclic repetition of the span's motif. Bases outside any
// span, including unannotated alleles, stay unlabeled; flanks match by
// construction.
type PerMotif struct{}

// Label implements repeat.BaseLabeler.
func (PerMotif) Label(locus *repeat.Locus, seqs []string, spansByAllele [][]repeat.Span) ([][]repeat.BaseLabel, error) {
	if len(spansByAllele) != len(seqs) {
		return nil, errors.Errorf("have %d span lists for %d alleles", len(spansByAllele), len(seqs))
	}
	lfLen := len(locus.LeftFlank)
	rfLen := len(locus.RightFlank)

	labelsByAllele := make([][]repeat.BaseLabel, 0, len(seqs))
	for i, seq := range seqs {
		labels := make([]repeat.BaseLabel, len(seq))
		for pos := 0; pos < lfLen && pos < len(seq); pos++ {
			labels[pos] = repeat.BaseMatch
		}
		for pos := len(seq) - rfLen; pos < len(seq); pos++ {
			if pos >= 0 {
				labels[pos] = repeat.BaseMatch
			}
		}
		for _, span := range spansByAllele[i] {
			if span.MotifIndex >= len(locus.Motifs) {
				return nil, errors.Errorf("motif index %d out of range", span.MotifIndex)
			}
			motif := locus.Motifs[span.MotifIndex]
			start := span.Start + lfLen
			end := span.End + lfLen
			if start < lfLen || end > len(seq)-rfLen || end < start {
				return nil, errors.Errorf("span %s does not fit an allele of length %d", span, len(seq))
			}
			for pos := start; pos < end; pos++ {
				if seq[pos] == motif[(pos-start)%len(motif)] {
					labels[pos] = repeat.BaseMatch
				} else {
					labels[pos] = repeat.BaseMismatch
				}
			}
		}
		labelsByAllele = append(labelsByAllele, labels)
	}
	return labelsByAllele, nil
}
