package repeat

import "strings"

// BaseLabel classifies a single allele position for rendering.
type BaseLabel uint8

const (
	// BaseNoLabel marks bases outside any motif annotation.
	BaseNoLabel BaseLabel = iota
	// BaseMatch marks bases that agree with their expected sequence.
	BaseMatch
	// BaseMismatch marks bases that disagree with their expected sequence.
	BaseMismatch
)

// BaseLabeler assigns one BaseLabel per position of each allele sequence.
// spansByAllele is indexed like seqs; implementations that derive their own
// structure (e.g. the nested-repeat labeler) may ignore it.
type BaseLabeler interface {
	Label(locus *Locus, seqs []string, spansByAllele [][]Span) ([][]BaseLabel, error)
}

// BaseLabelers holds the two labeling strategies a caller provides: one for
// loci with nested or alternating repeat structure, one for plain motif
// runs.
type BaseLabelers struct {
	Nested   BaseLabeler
	PerMotif BaseLabeler
}

// For routes a locus to its labeling strategy. Structure descriptors use
// angle brackets to mark nested/alternating blocks; their presence selects
// the nested labeler. No labeling happens here.
func (s BaseLabelers) For(locus *Locus) BaseLabeler {
	if strings.ContainsRune(locus.Struc, '<') {
		return s.Nested
	}
	return s.PerMotif
}
