package baselabel

import (
	"github.com/pkg/errors"
	"github.com/repeatlabs/trview/repeat"
)

// Nested labels loci whose structure descriptor encodes nested or
// alternating repeat blocks. It ignores the decoded spans and greedily
// tiles the repeat body with whichever locus motif fits each position
// best by edit distance, then marks per-base agreement with that motif.
type Nested struct{}

// Label implements repeat.BaseLabeler.
func (Nested) Label(locus *repeat.Locus, seqs []string, _ [][]repeat.Span) ([][]repeat.BaseLabel, error) {
	if len(locus.Motifs) == 0 {
		return nil, errors.Errorf("locus %s has no motifs to label with", locus.ID)
	}
	lfLen := len(locus.LeftFlank)
	rfLen := len(locus.RightFlank)

	labelsByAllele := make([][]repeat.BaseLabel, 0, len(seqs))
	for _, seq := range seqs {
		if len(seq) < lfLen+rfLen {
			return nil, errors.Errorf(
				"allele of length %d is shorter than the locus flanks (%d+%d)", len(seq), lfLen, rfLen)
		}
		labels := make([]repeat.BaseLabel, len(seq))
		for pos := 0; pos < lfLen; pos++ {
			labels[pos] = repeat.BaseMatch
		}
		for pos := len(seq) - rfLen; pos < len(seq); pos++ {
			labels[pos] = repeat.BaseMatch
		}
		labelBody(labels, seq[lfLen:len(seq)-rfLen], lfLen, locus.Motifs)
		labelsByAllele = append(labelsByAllele, labels)
	}
	return labelsByAllele, nil
}

// labelBody tiles body with motif-sized windows. Each window is labeled
// against the motif with the smallest edit distance to it; ties go to the
// earlier motif in the locus definition.
func labelBody(labels []repeat.BaseLabel, body string, offset int, motifs []string) {
	pos := 0
	for pos < len(body) {
		best := -1
		bestDist := 0
		for i, motif := range motifs {
			window := body[pos:min(pos+len(motif), len(body))]
			d := editDistance(window, motif)
			if best < 0 || d < bestDist {
				best, bestDist = i, d
			}
		}
		motif := motifs[best]
		n := min(len(motif), len(body)-pos)
		for j := 0; j < n; j++ {
			if body[pos+j] == motif[j%len(motif)] {
				labels[offset+pos+j] = repeat.BaseMatch
			} else {
				labels[offset+pos+j] = repeat.BaseMismatch
			}
		}
		pos += n
	}
}

func min(x, y int) int {
	if x < y {
		return x
	}
	return y
}
