package phase

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangyh09/xcltk/internal/region"
	"github.com/huangyh09/xcltk/internal/vcf"
)

func snp(t *testing.T, chrom string, pos int, gt, ad string) *vcf.Record {
	t.Helper()
	line := strings.Join([]string{
		chrom, strconv.Itoa(pos), ".", "A", "G", ".", "PASS", ".", "GT:AD", gt + ":" + ad,
	}, "\t")
	p, err := vcf.NewParserFromReader(strings.NewReader(line + "\n"))
	require.NoError(t, err)
	rec, err := p.Next()
	require.NoError(t, err)
	require.NotNil(t, rec)
	return rec
}

func TestAggregator_AssignsByPhase(t *testing.T) {
	blocks := []region.Region{
		{Chrom: "1", Start: 1, End: 100, Name: "b1"},
		{Chrom: "1", Start: 101, End: 200, Name: "b2"},
	}
	agg := NewAggregator(blocks)

	agg.Add(snp(t, "1", 10, "0|1", "4,6"))  // b1: hap1=ref=4, hap2=alt=6
	agg.Add(snp(t, "1", 20, "1|0", "3,9"))  // b1: hap1=alt=9, hap2=ref=3
	agg.Add(snp(t, "1", 150, "0|1", "1,2")) // b2

	res := agg.Results()
	require.Len(t, res, 2)

	assert.Equal(t, int64(13), res[0].Hap1)
	assert.Equal(t, int64(9), res[0].Hap2)
	assert.Equal(t, 2, res[0].SNPs)

	assert.Equal(t, int64(1), res[1].Hap1)
	assert.Equal(t, int64(2), res[1].Hap2)
	assert.Equal(t, 1, res[1].SNPs)

	counts := agg.Counts()
	assert.Equal(t, 3, counts.Processed)
	assert.Equal(t, 3, counts.Assigned)
	assert.Equal(t, 0, counts.Skipped)
}

func TestAggregator_Skips(t *testing.T) {
	blocks := []region.Region{{Chrom: "1", Start: 1, End: 100}}
	agg := NewAggregator(blocks)

	agg.Add(snp(t, "1", 10, "0/1", "4,6")) // unphased
	agg.Add(snp(t, "1", 11, "1|1", "0,9")) // homozygous
	agg.Add(snp(t, "1", 12, "0|2", "4,6")) // not biallelic
	agg.Add(snp(t, "2", 13, "0|1", "4,6")) // no blocks on chromosome
	agg.Add(snp(t, "1", 999, "0|1", "4,6")) // outside every block
	agg.Add(snp(t, "1", 14, "0|1", "bad")) // malformed AD

	counts := agg.Counts()
	assert.Equal(t, 6, counts.Processed)
	assert.Equal(t, 0, counts.Assigned)
	assert.Equal(t, 6, counts.Skipped)
	assert.Equal(t, 0, agg.Results()[0].SNPs)
}

func TestAggregator_OverlappingBlocks(t *testing.T) {
	blocks := []region.Region{
		{Chrom: "1", Start: 1, End: 100},
		{Chrom: "1", Start: 50, End: 150},
	}
	agg := NewAggregator(blocks)

	agg.Add(snp(t, "1", 75, "0|1", "2,3"))

	res := agg.Results()
	assert.Equal(t, 1, res[0].SNPs)
	assert.Equal(t, 1, res[1].SNPs)
	assert.Equal(t, 1, agg.Counts().Assigned)
}

func TestAggregator_Run(t *testing.T) {
	blocks := []region.Region{{Chrom: "1", Start: 1, End: 100, Name: "b1"}}
	agg := NewAggregator(blocks)

	in := "##fileformat=VCFv4.2\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\ts1\n" +
		"1\t10\t.\tA\tG\t.\t.\t.\tGT:AD\t0|1:4,6\n" +
		"1\t20\t.\tC\tT\t.\t.\t.\tGT:AD\t1|0:2,8\n"

	p, err := vcf.NewParserFromReader(strings.NewReader(in))
	require.NoError(t, err)

	counts, err := agg.Run(p)
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Processed)
	assert.Equal(t, 2, counts.Assigned)

	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, agg.Results()))

	want := "#chrom\tstart\tend\tname\thap1_dp\thap2_dp\tn_snp\n" +
		"1\t1\t100\tb1\t12\t8\t2\n"
	assert.Equal(t, want, buf.String())
}

func TestBlockIndex_Find(t *testing.T) {
	idx := buildBlockIndex([]blockInterval{
		{start: 1, end: 10, block: 0},
		{start: 5, end: 20, block: 1},
		{start: 30, end: 40, block: 2},
	})

	assert.ElementsMatch(t, []int{0}, idx.find(3))
	assert.ElementsMatch(t, []int{0, 1}, idx.find(7))
	assert.ElementsMatch(t, []int{1}, idx.find(15))
	assert.Empty(t, idx.find(25))
	assert.ElementsMatch(t, []int{2}, idx.find(30))
	assert.Empty(t, idx.find(41))
}

// A long block sorted first must still be found when every later-sorted
// block ends before the query position.
func TestBlockIndex_FindLongEarlyBlock(t *testing.T) {
	idx := buildBlockIndex([]blockInterval{
		{start: 1, end: 100, block: 0},
		{start: 5, end: 6, block: 1},
		{start: 7, end: 8, block: 2},
	})

	assert.ElementsMatch(t, []int{0}, idx.find(50))
	assert.ElementsMatch(t, []int{0}, idx.find(100))
	assert.ElementsMatch(t, []int{0, 2}, idx.find(7))
	assert.ElementsMatch(t, []int{0, 1}, idx.find(5))
	assert.Empty(t, idx.find(101))
}

func TestAggregator_LongBlockSpansShortOnes(t *testing.T) {
	blocks := []region.Region{
		{Chrom: "1", Start: 1, End: 100, Name: "long"},
		{Chrom: "1", Start: 5, End: 6, Name: "s1"},
		{Chrom: "1", Start: 7, End: 8, Name: "s2"},
	}
	agg := NewAggregator(blocks)

	agg.Add(snp(t, "1", 50, "0|1", "4,6"))

	res := agg.Results()
	assert.Equal(t, 1, res[0].SNPs)
	assert.Equal(t, int64(4), res[0].Hap1)
	assert.Equal(t, int64(6), res[0].Hap2)
	assert.Equal(t, 0, res[1].SNPs)
	assert.Equal(t, 0, res[2].SNPs)
	assert.Equal(t, 1, agg.Counts().Assigned)
}
