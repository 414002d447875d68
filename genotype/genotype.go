// Package genotype reconstructs annotated allele sequences from
// repeat-genotyper VCF calls: it locates the record for a locus, assembles
// each called allele (flank + variable region + flank), and derives the
// region, flank, and base label layers.
package genotype

import (
	"io"

	"github.com/pkg/errors"
	"github.com/repeatlabs/trview/repeat"
	"github.com/repeatlabs/trview/vcf"
)

// Allele is one called haplotype with its full sequence and annotation
// layers. Alleles are ordered to match the genotype call.
type Allele struct {
	Seq          string
	RegionLabels []repeat.RegionLabel
	FlankLabels  []repeat.RegionLabel
	BaseLabels   []repeat.BaseLabel
}

// Load opens the VCF at path and returns the annotated alleles called for
// locus. The file handle is released before returning on every path.
func Load(path string, locus *repeat.Locus, labelers repeat.BaseLabelers) ([]Allele, error) {
	r, err := vcf.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close() // nolint: errcheck
	return Scan(r, locus, labelers)
}

// Scan reads records from r until one carries INFO/TRID equal to locus.ID
// (first match wins) and builds its allele set. Scanning past the end of
// the stream yields a not-found error carrying the locus ID.
func Scan(r *vcf.Reader, locus *repeat.Locus, labelers repeat.BaseLabelers) ([]Allele, error) {
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return nil, errors.Errorf("no variant record found for locus %s", locus.ID)
		}
		if err != nil {
			return nil, err
		}
		trID, ok := rec.Info("TRID")
		if !ok || trID != locus.ID {
			continue
		}
		return build(rec, locus, labelers)
	}
}

func build(rec *vcf.Record, locus *repeat.Locus, labelers repeat.BaseLabelers) ([]Allele, error) {
	gt, ok := rec.Format("GT", 0)
	if !ok {
		return nil, errors.Errorf("record for locus %s has no genotype", locus.ID)
	}
	calls, err := vcf.ParseGenotype(gt)
	if err != nil {
		return nil, errors.Wrapf(err, "locus %s", locus.ID)
	}
	for _, call := range calls {
		if call == vcf.MissingAllele {
			return nil, errors.Errorf("locus %s misses genotyping", locus.ID)
		}
	}

	seqs, err := alleleSeqs(rec, locus, calls)
	if err != nil {
		return nil, err
	}

	ms, ok := rec.Format("MS", 0)
	if !ok {
		return nil, errors.Errorf("record for locus %s has no MS field", locus.ID)
	}
	spansByAllele, err := repeat.DecodeMotifSpans(ms)
	if err != nil {
		return nil, errors.Wrapf(err, "locus %s", locus.ID)
	}
	if len(spansByAllele) != len(seqs) {
		return nil, errors.Errorf(
			"locus %s: MS field annotates %d alleles, genotype calls %d",
			locus.ID, len(spansByAllele), len(seqs))
	}

	labeler := labelers.For(locus)
	if labeler == nil {
		return nil, errors.Errorf("no base labeler available for locus %s", locus.ID)
	}
	baseLabels, err := labeler.Label(locus, seqs, spansByAllele)
	if err != nil {
		return nil, errors.Wrapf(err, "base labeling for locus %s", locus.ID)
	}
	if len(baseLabels) != len(seqs) {
		return nil, errors.Errorf(
			"base labeler returned %d allele labelings, want %d", len(baseLabels), len(seqs))
	}

	alleles := make([]Allele, 0, len(seqs))
	for i, seq := range seqs {
		regionLabels, err := repeat.BuildRegionLabels(locus, seq, spansByAllele[i])
		if err != nil {
			return nil, err
		}
		alleles = append(alleles, Allele{
			Seq:          seq,
			RegionLabels: regionLabels,
			FlankLabels:  repeat.BuildFlankLabels(locus, regionLabels),
			BaseLabels:   baseLabels[i],
		})
	}
	return alleles, nil
}

func alleleSeqs(rec *vcf.Record, locus *repeat.Locus, calls []int) ([]string, error) {
	alleles := rec.Alleles()
	seqs := make([]string, 0, len(calls))
	for _, call := range calls {
		if call >= len(alleles) {
			return nil, errors.Errorf(
				"locus %s: genotype calls allele %d but the record defines %d",
				locus.ID, call, len(alleles))
		}
		seqs = append(seqs, locus.LeftFlank+alleles[call]+locus.RightFlank)
	}
	return seqs, nil
}
