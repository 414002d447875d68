// Package refseq provides random access to reference sequences stored in
// FASTA files, either fully in memory or through a samtools faidx index.
// Coordinates are 0-based half-open, matching the conventions of the rest
// of the module.
package refseq

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Genome is a read-only reference sequence store. Implementations are safe
// for concurrent use.
type Genome interface {
	// Get returns the bases of contig in [start, end).
	Get(contig string, start, end int) (string, error)

	// Len returns the length of contig.
	Len(contig string) (int, error)

	// Contigs returns all contig names in file order.
	Contigs() []string
}

// New reads an entire FASTA stream into memory. Suitable for small
// references and tests; use NewIndexed for whole genomes.
func New(r io.Reader) (Genome, error) {
	g := &memGenome{seqs: make(map[string]string)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, maxLineBytes)
	var name string
	var seq strings.Builder
	flush := func() {
		if name != "" {
			g.seqs[name] = seq.String()
			g.names = append(g.names, name)
			seq.Reset()
		}
	}
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			flush()
			name = strings.SplitN(line[1:], " ", 2)[0]
			if name == "" {
				return nil, errors.New("malformed FASTA: empty sequence name")
			}
			continue
		}
		if name == "" {
			return nil, errors.New("malformed FASTA: sequence data before first header")
		}
		seq.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading FASTA data")
	}
	flush()
	return g, nil
}

const maxLineBytes = 64 * 1024 * 1024

type memGenome struct {
	seqs  map[string]string
	names []string
}

func (g *memGenome) Get(contig string, start, end int) (string, error) {
	seq, ok := g.seqs[contig]
	if !ok {
		return "", errors.Errorf("contig not found: %s", contig)
	}
	if err := checkRange(contig, start, end, len(seq)); err != nil {
		return "", err
	}
	return seq[start:end], nil
}

func (g *memGenome) Len(contig string) (int, error) {
	seq, ok := g.seqs[contig]
	if !ok {
		return 0, errors.Errorf("contig not found: %s", contig)
	}
	return len(seq), nil
}

func (g *memGenome) Contigs() []string { return g.names }

// faidx lines: "<name>\t<length>\t<offset>\t<bases per line>\t<bytes per line>".
var faiRegexp = regexp.MustCompile(`^(\S+)\t(\d+)\t(\d+)\t(\d+)\t(\d+)`)

type faiEntry struct {
	length    int
	offset    int64
	lineBases int
	lineWidth int
}

type indexedGenome struct {
	mu      sync.Mutex
	r       io.ReadSeeker
	entries map[string]faiEntry
	names   []string
}

// NewIndexed wraps an open FASTA file and its faidx index for random
// access without loading sequence data up front.
func NewIndexed(fasta io.ReadSeeker, fai io.Reader) (Genome, error) {
	g := &indexedGenome{r: fasta, entries: make(map[string]faiEntry)}
	scanner := bufio.NewScanner(fai)
	for scanner.Scan() {
		m := faiRegexp.FindStringSubmatch(scanner.Text())
		if m == nil {
			return nil, errors.Errorf("invalid faidx line: %q", scanner.Text())
		}
		length, _ := strconv.Atoi(m[2])
		offset, _ := strconv.ParseInt(m[3], 10, 64)
		lineBases, _ := strconv.Atoi(m[4])
		lineWidth, _ := strconv.Atoi(m[5])
		if lineBases <= 0 || lineWidth < lineBases {
			return nil, errors.Errorf("invalid faidx line widths: %q", scanner.Text())
		}
		g.entries[m[1]] = faiEntry{length, offset, lineBases, lineWidth}
		g.names = append(g.names, m[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading faidx index")
	}
	return g, nil
}

func (g *indexedGenome) Get(contig string, start, end int) (string, error) {
	ent, ok := g.entries[contig]
	if !ok {
		return "", errors.Errorf("contig not found in index: %s", contig)
	}
	if err := checkRange(contig, start, end, ent.length); err != nil {
		return "", err
	}
	if start == end {
		return "", nil
	}

	// Byte offset of the first requested base, accounting for newlines.
	sepBytes := ent.lineWidth - ent.lineBases
	offset := ent.offset + int64(start) + int64(sepBytes)*int64(start/ent.lineBases)

	// Bytes to read: requested bases plus every line separator strictly
	// between the first and last requested base.
	newlines := (end-1)/ent.lineBases - start/ent.lineBases
	span := end - start + newlines*sepBytes

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, err := g.r.Seek(offset, io.SeekStart); err != nil {
		return "", errors.Wrapf(err, "seeking to %s:%d", contig, start)
	}
	buf := make([]byte, span)
	if _, err := io.ReadFull(g.r, buf); err != nil {
		return "", errors.Wrapf(err, "reading %s:%d-%d (stale index?)", contig, start, end)
	}

	out := make([]byte, 0, end-start)
	linePos := start % ent.lineBases
	for _, b := range buf {
		if linePos < ent.lineBases {
			out = append(out, b)
		}
		linePos++
		if linePos == ent.lineWidth {
			linePos = 0
		}
	}
	return string(out[:end-start]), nil
}

func (g *indexedGenome) Len(contig string) (int, error) {
	ent, ok := g.entries[contig]
	if !ok {
		return 0, errors.Errorf("contig not found in index: %s", contig)
	}
	return ent.length, nil
}

func (g *indexedGenome) Contigs() []string { return g.names }

func checkRange(contig string, start, end, length int) error {
	if start < 0 || end < start {
		return errors.Errorf("invalid range [%d,%d) on %s", start, end, contig)
	}
	if end > length {
		return errors.Errorf("range [%d,%d) is past the end of %s (length %d)",
			start, end, contig, length)
	}
	return nil
}
