package vcf

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MissingAllele is the genotype index of an uncalled allele (".").
const MissingAllele = -1

// Record is one variant call. Pos is 1-based, as in the file.
type Record struct {
	Chrom  string
	Pos    int
	ID     string
	Ref    string
	Alts   []string
	Qual   string
	Filter string

	info    string
	format  []string
	samples []string
}

func parseRecord(line string) (*Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return nil, errors.Errorf("expected at least 8 columns, got %d", len(fields))
	}
	pos, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, errors.Errorf("malformed POS %q", fields[1])
	}
	rec := &Record{
		Chrom:  fields[0],
		Pos:    pos,
		ID:     fields[2],
		Ref:    fields[3],
		Qual:   fields[5],
		Filter: fields[6],
		info:   fields[7],
	}
	if fields[4] != "." {
		rec.Alts = strings.Split(fields[4], ",")
	}
	if len(fields) > 8 {
		rec.format = strings.Split(fields[8], ":")
		rec.samples = fields[9:]
	}
	return rec, nil
}

// Alleles returns REF followed by the ALT sequences; genotype indexes point
// into this slice.
func (r *Record) Alleles() []string {
	alleles := make([]string, 0, len(r.Alts)+1)
	alleles = append(alleles, r.Ref)
	return append(alleles, r.Alts...)
}

// Info looks up one INFO key. Flag-style keys yield an empty value.
func (r *Record) Info(key string) (string, bool) {
	for _, kv := range strings.Split(r.info, ";") {
		if kv == key {
			return "", true
		}
		if strings.HasPrefix(kv, key) && len(kv) > len(key) && kv[len(key)] == '=' {
			return kv[len(key)+1:], true
		}
	}
	return "", false
}

// Format looks up one FORMAT key for the given sample index.
func (r *Record) Format(key string, sample int) (string, bool) {
	if sample < 0 || sample >= len(r.samples) {
		return "", false
	}
	values := strings.Split(r.samples[sample], ":")
	for i, name := range r.format {
		if name != key {
			continue
		}
		if i >= len(values) {
			return "", false
		}
		return values[i], true
	}
	return "", false
}

// ParseGenotype parses a GT value ("0/1", "1|2", "./.", ".") into allele
// indexes. Uncalled alleles come back as MissingAllele.
func ParseGenotype(gt string) ([]int, error) {
	if gt == "" {
		return nil, errors.New("empty GT value")
	}
	calls := strings.FieldsFunc(gt, func(r rune) bool { return r == '/' || r == '|' })
	alleles := make([]int, 0, len(calls))
	for _, call := range calls {
		if call == "." {
			alleles = append(alleles, MissingAllele)
			continue
		}
		index, err := strconv.Atoi(call)
		if err != nil || index < 0 {
			return nil, errors.Errorf("malformed GT value %q", gt)
		}
		alleles = append(alleles, index)
	}
	if len(alleles) == 0 {
		return nil, errors.Errorf("malformed GT value %q", gt)
	}
	return alleles, nil
}
