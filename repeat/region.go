package repeat

import (
	"fmt"

	"github.com/pkg/errors"
)

// RegionKind distinguishes the interval flavors in an allele's label
// decomposition.
type RegionKind uint8

const (
	// RegionFlank covers flanking context bases on either end of the allele.
	RegionFlank RegionKind = iota
	// RegionOther covers the whole repeat body when no finer annotation is
	// available.
	RegionOther
	// RegionSeq covers body sequence not attributed to any cataloged motif,
	// e.g. interruptions between motif runs.
	RegionSeq
	// RegionMotif covers one decoded motif occurrence.
	RegionMotif
)

func (k RegionKind) String() string {
	switch k {
	case RegionFlank:
		return "Flank"
	case RegionOther:
		return "Other"
	case RegionSeq:
		return "Seq"
	case RegionMotif:
		return "Tr"
	}
	return fmt.Sprintf("RegionKind(%d)", uint8(k))
}

// RegionLabel is one labeled interval over full-allele coordinates,
// half-open. Motif is set only for RegionMotif labels.
type RegionLabel struct {
	Kind  RegionKind
	Start int
	End   int
	Motif string
}

func (l RegionLabel) String() string {
	if l.Kind == RegionMotif {
		return fmt.Sprintf("%s(%d,%d,%s)", l.Kind, l.Start, l.End, l.Motif)
	}
	return fmt.Sprintf("%s(%d,%d)", l.Kind, l.Start, l.End)
}

// Len returns the number of bases the label covers.
func (l RegionLabel) Len() int {
	return l.End - l.Start
}

// BuildRegionLabels produces the full ordered interval decomposition of one
// allele from its decoded motif spans. Span coordinates are body-relative
// and are shifted by the left-flank length; gaps between spans become
// RegionSeq fillers. A nil span list (absence encoding) falls back to the
// coarse three-segment decomposition. The result is contiguous,
// non-overlapping, and covers [0, len(alleleSeq)) exactly; spans that
// cannot be reconciled with the allele produce an error.
func BuildRegionLabels(locus *Locus, alleleSeq string, spans []Span) ([]RegionLabel, error) {
	lfLen := len(locus.LeftFlank)
	rfLen := len(locus.RightFlank)
	alleleLen := len(alleleSeq)
	bodyEnd := alleleLen - rfLen
	if bodyEnd < lfLen {
		return nil, errors.Errorf(
			"locus %s: allele of length %d is shorter than its flanks (%d+%d)",
			locus.ID, alleleLen, lfLen, rfLen)
	}

	if spans == nil {
		return []RegionLabel{
			{Kind: RegionFlank, Start: 0, End: lfLen},
			{Kind: RegionOther, Start: lfLen, End: bodyEnd},
			{Kind: RegionFlank, Start: bodyEnd, End: alleleLen},
		}, nil
	}

	labels := []RegionLabel{{Kind: RegionFlank, Start: 0, End: lfLen}}
	cursor := lfLen
	for _, span := range spans {
		if span.MotifIndex >= len(locus.Motifs) {
			return nil, errors.Errorf(
				"locus %s: motif index %d out of range (have %d motifs)",
				locus.ID, span.MotifIndex, len(locus.Motifs))
		}
		start := span.Start + lfLen
		end := span.End + lfLen
		if start < cursor || end < start || end > bodyEnd {
			return nil, errors.Errorf(
				"locus %s: motif span %s does not fit the repeat body [%d,%d)",
				locus.ID, span, lfLen, bodyEnd)
		}
		if start != cursor {
			labels = append(labels, RegionLabel{Kind: RegionSeq, Start: cursor, End: start})
		}
		labels = append(labels, RegionLabel{
			Kind:  RegionMotif,
			Start: start,
			End:   end,
			Motif: locus.Motifs[span.MotifIndex],
		})
		cursor = end
	}
	if cursor != bodyEnd {
		labels = append(labels, RegionLabel{Kind: RegionSeq, Start: cursor, End: bodyEnd})
	}
	labels = append(labels, RegionLabel{Kind: RegionFlank, Start: bodyEnd, End: alleleLen})

	if err := checkContiguous(labels, alleleLen); err != nil {
		return nil, errors.Wrapf(err, "locus %s", locus.ID)
	}
	return labels, nil
}

// BuildFlankLabels collapses a region-label decomposition into the stable
// coarse view: left flank, one repeat-body segment whose length is the sum
// of all non-flank labels, right flank.
func BuildFlankLabels(locus *Locus, regionLabels []RegionLabel) []RegionLabel {
	bodyLen := 0
	for _, label := range regionLabels {
		if label.Kind != RegionFlank {
			bodyLen += label.Len()
		}
	}
	bodyStart := len(locus.LeftFlank)
	bodyEnd := bodyStart + bodyLen
	return []RegionLabel{
		{Kind: RegionFlank, Start: 0, End: bodyStart},
		{Kind: RegionOther, Start: bodyStart, End: bodyEnd},
		{Kind: RegionFlank, Start: bodyEnd, End: bodyEnd + len(locus.RightFlank)},
	}
}

func checkContiguous(labels []RegionLabel, alleleLen int) error {
	cursor := 0
	for _, label := range labels {
		if label.Start != cursor || label.End < label.Start {
			return errors.Errorf("label %s breaks contiguity at %d", label, cursor)
		}
		cursor = label.End
	}
	if cursor != alleleLen {
		return errors.Errorf("labels cover [0,%d), want [0,%d)", cursor, alleleLen)
	}
	return nil
}
