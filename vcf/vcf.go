// Package vcf reads variant call records from VCF files, plain or
// bgzip/gzip compressed. It implements the subset of the format the
// repeat-annotation pipeline consumes: per-record fixed fields, INFO
// key lookup, and per-sample FORMAT field lookup.
package vcf

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Reader scans a VCF stream record by record.
type Reader struct {
	r       *bufio.Reader
	file    *os.File
	gz      *gzip.Reader
	line    int
	samples []string
}

// Open opens a VCF file for reading. Compression is detected from the
// stream content, not the file name. Close releases the handle.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening VCF")
	}
	r, err := NewReader(file)
	if err != nil {
		file.Close() // nolint: errcheck
		return nil, err
	}
	r.file = file
	return r, nil
}

// NewReader wraps an open VCF stream and consumes its header.
func NewReader(in io.Reader) (*Reader, error) {
	r := &Reader{r: bufio.NewReaderSize(in, 1<<20)}
	magic, err := r.r.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		if r.gz, err = gzip.NewReader(r.r); err != nil {
			return nil, errors.Wrap(err, "opening gzipped VCF")
		}
		r.r = bufio.NewReaderSize(r.gz, 1<<20)
	}
	if err := r.readHeader(); err != nil {
		return nil, err
	}
	return r, nil
}

// Samples returns the sample names declared on the #CHROM header line.
func (r *Reader) Samples() []string { return r.samples }

// Next returns the next record, or io.EOF when the stream is exhausted.
func (r *Reader) Next() (*Record, error) {
	for {
		line, err := r.readLine()
		if err != nil {
			return nil, err
		}
		if line == "" {
			continue
		}
		rec, err := parseRecord(line)
		if err != nil {
			return nil, errors.Wrapf(err, "VCF line %d", r.line)
		}
		return rec, nil
	}
}

// Close releases the underlying file handle, if any.
func (r *Reader) Close() error {
	if r.gz != nil {
		if err := r.gz.Close(); err != nil {
			return err
		}
		r.gz = nil
	}
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}

func (r *Reader) readHeader() error {
	for {
		peek, err := r.r.Peek(1)
		if err == io.EOF {
			return errors.New("VCF is missing its #CHROM header line")
		}
		if err != nil {
			return errors.Wrap(err, "reading VCF header")
		}
		if peek[0] != '#' {
			return errors.Errorf("VCF line %d: expected #CHROM header line", r.line+1)
		}
		line, err := r.readLine()
		if err != nil {
			return errors.Wrap(err, "reading VCF header")
		}
		if strings.HasPrefix(line, "#CHROM") {
			fields := strings.Split(line, "\t")
			if len(fields) > 9 {
				r.samples = fields[9:]
			}
			return nil
		}
		if !strings.HasPrefix(line, "##") {
			return errors.Errorf("VCF line %d: malformed header line", r.line)
		}
	}
}

func (r *Reader) readLine() (string, error) {
	line, err := r.r.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	r.line++
	return strings.TrimRight(line, "\r\n"), nil
}
