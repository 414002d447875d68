package main

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/repeatlabs/trview/refseq"
	"github.com/repeatlabs/trview/repeat"
)

// resolveLocus finds trID in the catalog and decodes its definition,
// pulling flankLen bases of reference context on each side. The catalog
// handle is released before returning.
func resolveLocus(genome refseq.Genome, catalogPath, trID string, flankLen int) (*repeat.Locus, error) {
	f, err := os.Open(catalogPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening repeat catalog")
	}
	defer f.Close() // nolint: errcheck

	var catalog io.Reader = f
	if strings.HasSuffix(catalogPath, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "opening gzipped repeat catalog")
		}
		defer gz.Close() // nolint: errcheck
		catalog = gz
	}

	return repeat.FindLocus(catalog, trID, func(line string) (*repeat.Locus, error) {
		return decodeLocus(genome, flankLen, line)
	})
}

// decodeLocus parses one catalog entry. Entries are BED-like:
//
//	<contig>\t<start>\t<end>\tID=<id>;MOTIFS=<m1>,<m2>;STRUC=<descriptor>
func decodeLocus(genome refseq.Genome, flankLen int, line string) (*repeat.Locus, error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	if len(fields) < 4 {
		return nil, errors.Errorf("expected at least 4 tab-separated fields, got %d", len(fields))
	}
	start, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, errors.Errorf("malformed interval start %q", fields[1])
	}
	end, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, errors.Errorf("malformed interval end %q", fields[2])
	}
	if start < 0 || end < start {
		return nil, errors.Errorf("invalid interval [%d,%d)", start, end)
	}

	info := parseInfo(fields[3])
	id, ok := info["ID"]
	if !ok {
		return nil, errors.New("catalog entry has no ID field")
	}
	motifs, ok := info["MOTIFS"]
	if !ok {
		return nil, errors.Errorf("catalog entry %s has no MOTIFS field", id)
	}

	contig := fields[0]
	contigLen, err := genome.Len(contig)
	if err != nil {
		return nil, err
	}
	lfStart := start - flankLen
	if lfStart < 0 {
		lfStart = 0
	}
	rfEnd := end + flankLen
	if rfEnd > contigLen {
		rfEnd = contigLen
	}
	leftFlank, err := genome.Get(contig, lfStart, start)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching left flank of %s", id)
	}
	rightFlank, err := genome.Get(contig, end, rfEnd)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching right flank of %s", id)
	}

	return &repeat.Locus{
		ID:         id,
		Region:     repeat.Region{Contig: contig, Start: start, End: end},
		LeftFlank:  leftFlank,
		RightFlank: rightFlank,
		Motifs:     strings.Split(motifs, ","),
		Struc:      info["STRUC"],
	}, nil
}

func parseInfo(field string) map[string]string {
	info := make(map[string]string)
	for _, kv := range strings.Split(field, ";") {
		if eq := strings.IndexByte(kv, '='); eq > 0 {
			info[kv[:eq]] = kv[eq+1:]
		}
	}
	return info
}

// openGenome opens the reference FASTA, using its faidx index when one
// exists alongside and loading the sequences into memory otherwise.
func openGenome(path string) (refseq.Genome, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening reference genome")
	}

	fai, err := os.Open(path + ".fai")
	if err == nil {
		defer fai.Close() // nolint: errcheck
		genome, err := refseq.NewIndexed(f, fai)
		if err != nil {
			f.Close() // nolint: errcheck
			return nil, nil, err
		}
		// The indexed store reads lazily; keep the FASTA handle open.
		return genome, func() { f.Close() }, nil // nolint: errcheck
	}
	if !os.IsNotExist(err) {
		f.Close() // nolint: errcheck
		return nil, nil, errors.Wrap(err, "opening faidx index")
	}

	defer f.Close() // nolint: errcheck
	genome, err := refseq.New(f)
	if err != nil {
		return nil, nil, err
	}
	return genome, func() {}, nil
}
