package phase

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/huangyh09/xcltk/internal/region"
	"github.com/huangyh09/xcltk/internal/vcf"
)

// BlockCounts is the aggregated signal for one haplotype block: total
// read depth assigned to each haplotype and the number of SNPs that
// contributed.
type BlockCounts struct {
	Block region.Region
	Hap1  int64
	Hap2  int64
	SNPs  int
}

// Counts tallies a phasing aggregation run.
type Counts struct {
	Processed int
	Assigned  int
	Skipped   int // unphased, homozygous, malformed or block-less SNPs
}

// Aggregator assigns phased heterozygous SNPs to containing blocks and
// accumulates per-haplotype allele depths. A SNP inside overlapping
// blocks contributes to each of them.
type Aggregator struct {
	blocks  []BlockCounts
	indexes map[string]*blockIndex
	logger  *zap.Logger
	counts  Counts
}

// NewAggregator creates an aggregator over the given haplotype blocks.
func NewAggregator(blocks []region.Region) *Aggregator {
	agg := &Aggregator{
		blocks:  make([]BlockCounts, len(blocks)),
		indexes: newChromIndexes(blocks),
		logger:  zap.NewNop(),
	}
	for i, b := range blocks {
		agg.blocks[i].Block = b
	}
	return agg
}

// SetLogger sets the logger for per-SNP diagnostics.
func (a *Aggregator) SetLogger(l *zap.Logger) {
	a.logger = l
}

// Add processes one SNP record. Records that are not phased heterozygous
// SNVs with usable AD depths, or that fall in no block, are counted as
// skipped; Add never fails the run for a single record.
func (a *Aggregator) Add(rec *vcf.Record) {
	a.counts.Processed++

	refDepth, altDepth, hap1Alt, reason := phasedDepths(rec)
	if reason != "" {
		a.counts.Skipped++
		a.logger.Debug("skipping snp",
			zap.Int("row", rec.Row),
			zap.String("chrom", rec.Chrom),
			zap.Int64("pos", rec.Pos),
			zap.String("reason", reason))
		return
	}

	idx, ok := a.indexes[rec.Chrom]
	if !ok {
		a.counts.Skipped++
		return
	}
	hits := idx.find(rec.Pos)
	if len(hits) == 0 {
		a.counts.Skipped++
		return
	}

	// Haplotype 1 is the left slot of the phased genotype: for 0|1 it
	// carries the REF reads, for 1|0 the ALT reads.
	hap1, hap2 := refDepth, altDepth
	if hap1Alt {
		hap1, hap2 = altDepth, refDepth
	}
	for _, h := range hits {
		a.blocks[h].Hap1 += hap1
		a.blocks[h].Hap2 += hap2
		a.blocks[h].SNPs++
	}
	a.counts.Assigned++
}

// phasedDepths extracts the REF/ALT read depths and phase orientation of
// a phased heterozygous biallelic SNP. A non-empty reason means the
// record cannot contribute.
func phasedDepths(rec *vcf.Record) (refDepth, altDepth int64, hap1Alt bool, reason string) {
	if rec.Pos == 0 || len(rec.Fields) < vcf.MinColumns {
		return 0, 0, false, "cannot parse record columns"
	}

	gtVal, ok := rec.SampleValue("GT")
	if !ok {
		return 0, 0, false, "no GT field"
	}
	gt, err := vcf.ParseGenotype(gtVal)
	if err != nil {
		return 0, 0, false, err.Error()
	}
	if !gt.Phased() {
		return 0, 0, false, "genotype not phased"
	}
	if gt.A == gt.B {
		return 0, 0, false, "genotype not heterozygous"
	}
	if gt.A > 1 || gt.B > 1 {
		return 0, 0, false, "not a biallelic genotype"
	}

	adVal, ok := rec.SampleValue("AD")
	if !ok {
		return 0, 0, false, "no AD field"
	}
	depths := strings.Split(adVal, ",")
	if len(depths) < 2 {
		return 0, 0, false, fmt.Sprintf("bad AD value %q", adVal)
	}
	refDepth, err = strconv.ParseInt(depths[0], 10, 64)
	if err != nil {
		return 0, 0, false, fmt.Sprintf("bad AD value %q", adVal)
	}
	altDepth, err = strconv.ParseInt(depths[1], 10, 64)
	if err != nil {
		return 0, 0, false, fmt.Sprintf("bad AD value %q", adVal)
	}

	return refDepth, altDepth, gt.A == 1, ""
}

// Counts returns the run tallies so far.
func (a *Aggregator) Counts() Counts {
	return a.counts
}

// Results returns the per-block totals in input block order.
func (a *Aggregator) Results() []BlockCounts {
	return a.blocks
}

// WriteTSV writes per-block totals as a TSV table with a header line.
func WriteTSV(w io.Writer, blocks []BlockCounts) error {
	if _, err := fmt.Fprintln(w, "#chrom\tstart\tend\tname\thap1_dp\thap2_dp\tn_snp"); err != nil {
		return err
	}
	for _, b := range blocks {
		name := b.Block.Name
		if name == "" {
			name = "."
		}
		_, err := fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%d\t%d\t%d\n",
			b.Block.Chrom, b.Block.Start, b.Block.End, name, b.Hap1, b.Hap2, b.SNPs)
		if err != nil {
			return err
		}
	}
	return nil
}

// Run streams every record from p through the aggregator and returns the
// run tallies. Structural parse errors abort the run.
func (a *Aggregator) Run(p *vcf.Parser) (Counts, error) {
	for {
		rec, err := p.Next()
		if err != nil {
			return a.counts, err
		}
		if rec == nil {
			return a.counts, nil
		}
		a.Add(rec)
	}
}
