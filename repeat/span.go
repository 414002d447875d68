package repeat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Span is one decoded motif occurrence within an allele's repeat body.
// Start and End are half-open coordinates relative to the start of the
// repeat body; callers add the left-flank length to place a Span on the
// full allele. MotifIndex points into Locus.Motifs.
type Span struct {
	MotifIndex int
	Start      int
	End        int
}

func (s Span) String() string {
	return fmt.Sprintf("%d(%d-%d)", s.MotifIndex, s.Start, s.End)
}

// NoSpans is the per-allele encoding that marks an allele without motif
// annotations.
const NoSpans = "."

// DecodeSpans parses one allele's motif-span encoding: either NoSpans or an
// underscore-separated list of "<motifIndex>(<start>-<end>)" occurrences,
// sorted ascending by start. A NoSpans encoding yields a nil slice. The
// decode is purely syntactic: no flank offsetting and no gap filling.
func DecodeSpans(encoding string) ([]Span, error) {
	if encoding == NoSpans {
		return nil, nil
	}
	fields := strings.Split(encoding, "_")
	spans := make([]Span, 0, len(fields))
	for _, field := range fields {
		span, err := decodeSpan(field)
		if err != nil {
			return nil, err
		}
		spans = append(spans, span)
	}
	return spans, nil
}

// DecodeMotifSpans parses a whole-record motif-span field: one encoding per
// called allele, comma-separated. The result is indexed by allele; a nil
// entry marks an allele with the absence encoding.
func DecodeMotifSpans(field string) ([][]Span, error) {
	encodings := strings.Split(field, ",")
	spansByAllele := make([][]Span, 0, len(encodings))
	for _, encoding := range encodings {
		spans, err := DecodeSpans(encoding)
		if err != nil {
			return nil, err
		}
		spansByAllele = append(spansByAllele, spans)
	}
	return spansByAllele, nil
}

// EncodeSpans is the inverse of DecodeSpans; it reproduces the per-allele
// encoding for a decoded span list. Nil spans re-encode as NoSpans.
func EncodeSpans(spans []Span) string {
	if spans == nil {
		return NoSpans
	}
	parts := make([]string, 0, len(spans))
	for _, span := range spans {
		parts = append(parts, span.String())
	}
	return strings.Join(parts, "_")
}

func decodeSpan(field string) (Span, error) {
	open := strings.IndexByte(field, '(')
	dash := strings.IndexByte(field, '-')
	if open < 0 || dash < open || !strings.HasSuffix(field, ")") {
		return Span{}, errors.Errorf("malformed motif span %q", field)
	}
	index, err := decodeCoord(field[:open])
	if err != nil {
		return Span{}, errors.Wrapf(err, "malformed motif span %q", field)
	}
	start, err := decodeCoord(field[open+1 : dash])
	if err != nil {
		return Span{}, errors.Wrapf(err, "malformed motif span %q", field)
	}
	end, err := decodeCoord(field[dash+1 : len(field)-1])
	if err != nil {
		return Span{}, errors.Wrapf(err, "malformed motif span %q", field)
	}
	return Span{MotifIndex: index, Start: start, End: end}, nil
}

func decodeCoord(s string) (int, error) {
	v, err := strconv.ParseUint(s, 10, 63)
	if err != nil {
		return 0, errors.Errorf("expected a non-negative integer, got %q", s)
	}
	return int(v), nil
}
