// trview extracts the annotation bundle for one tandem-repeat locus: the
// resolved locus definition, the genotyped alleles with their region,
// flank, and base label layers, and the genotyper-tagged reads supporting
// the call. The bundle is written as JSON for downstream rendering.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/repeatlabs/trview/baselabel"
	"github.com/repeatlabs/trview/genotype"
	"github.com/repeatlabs/trview/reads"
	"github.com/repeatlabs/trview/repeat"
)

var (
	genomePath  = flag.String("genome", "", "Reference genome FASTA; a .fai index alongside enables random access")
	catalogPath = flag.String("catalog", "", "Repeat catalog (BED-like, optionally gzipped)")
	vcfPath     = flag.String("vcf", "", "Repeat genotyper VCF")
	readsPath   = flag.String("reads", "", "Indexed BAM with genotyper-tagged reads (optional)")
	trID        = flag.String("trid", "", "ID of the repeat locus to extract")
	flankLen    = flag.Int("flank-len", 50, "Number of flanking bases to attach on each side of an allele")
	searchPad   = flag.Int("search-pad", 0, "Read fetch padding around the locus; 0 selects the default")
	outPath     = flag.String("out", "", "Output JSON path; stdout when empty")
)

func trviewUsage() {
	fmt.Printf("Usage: %s -genome ref.fa -catalog repeats.bed -vcf calls.vcf.gz -reads reads.bam -trid LOCUS\n", os.Args[0])
	flag.PrintDefaults()
}

type bundle struct {
	Locus   *repeat.Locus     `json:"locus"`
	Alleles []genotype.Allele `json:"alleles"`
	Reads   []reads.Read      `json:"reads,omitempty"`
}

func main() {
	flag.Usage = trviewUsage
	shutdown := grail.Init()
	defer shutdown()

	for _, required := range []struct{ name, value string }{
		{"-genome", *genomePath},
		{"-catalog", *catalogPath},
		{"-vcf", *vcfPath},
		{"-trid", *trID},
	} {
		if required.value == "" {
			log.Fatalf("missing required flag %s", required.name)
		}
	}
	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

func run() error {
	genome, cleanup, err := openGenome(*genomePath)
	if err != nil {
		return err
	}
	defer cleanup()

	locus, err := resolveLocus(genome, *catalogPath, *trID, *flankLen)
	if err != nil {
		return err
	}
	log.Debug.Printf("resolved locus %s at %s", locus.ID, locus.Region)

	labelers := repeat.BaseLabelers{
		Nested:   baselabel.Nested{},
		PerMotif: baselabel.PerMotif{},
	}
	alleles, err := genotype.Load(*vcfPath, locus, labelers)
	if err != nil {
		return err
	}

	out := bundle{Locus: locus, Alleles: alleles}
	if *readsPath != "" {
		out.Reads, err = reads.Extract(*readsPath, locus, reads.Opts{SearchPad: *searchPad})
		if err != nil {
			return err
		}
	}
	return write(&out, *outPath)
}

func write(out *bundle, path string) error {
	w := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close() // nolint: errcheck
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
