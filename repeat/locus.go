// Package repeat models tandem-repeat loci and the annotation layers
// derived from repeat-genotyper calls: decoded motif spans, region labels
// (flank / repeat body / filler / per-motif segments), coarse flank labels,
// and the dispatch between base-level labeling strategies.
package repeat

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Region is a 0-based half-open genomic interval.
type Region struct {
	Contig string
	Start  int
	End    int
}

func (r Region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Contig, r.Start, r.End)
}

// Locus is the immutable definition of one tandem-repeat site: its catalog
// identifier, genomic range, flanking sequence context, candidate motifs,
// and the structure descriptor emitted by the genotyper. A Locus is built
// once during lookup and read-only afterwards.
type Locus struct {
	ID         string
	Region     Region
	LeftFlank  string
	RightFlank string
	Motifs     []string
	Struc      string
}

// LocusDecoder turns one catalog line into a Locus. Catalog line formats
// vary between producers, so decoding is supplied by the caller; FindLocus
// only locates the line.
type LocusDecoder func(line string) (*Locus, error)

// FindLocus scans a line-oriented catalog for the first line containing
// "ID=<id>;" and hands it to decode. Duplicate entries are not detected;
// the first match wins. Returns an error naming the ID when the catalog is
// exhausted without a match.
func FindLocus(catalog io.Reader, id string, decode LocusDecoder) (*Locus, error) {
	query := fmt.Sprintf("ID=%s;", id)
	scanner := bufio.NewScanner(catalog)
	scanner.Buffer(nil, maxCatalogLine)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, query) {
			continue
		}
		locus, err := decode(line)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding catalog entry for %s", id)
		}
		return locus, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading repeat catalog")
	}
	return nil, errors.Errorf("unable to find locus %s", id)
}

// Catalog lines carry full locus definitions but stay well under this.
const maxCatalogLine = 4 * 1024 * 1024
