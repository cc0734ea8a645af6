package vcf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRecord(t *testing.T, line string) *Record {
	t.Helper()
	p, err := NewParserFromReader(strings.NewReader(line + "\n"))
	require.NoError(t, err)
	rec, err := p.Next()
	require.NoError(t, err)
	require.NotNil(t, rec)
	return rec
}

func TestRecord_SampleValue(t *testing.T) {
	rec := makeRecord(t, "1\t100\t.\tA\tG\t30\tPASS\tDP=9\tGT:AD:DP\t0|1:4,5:9")

	gt, ok := rec.SampleValue("GT")
	require.True(t, ok)
	assert.Equal(t, "0|1", gt)

	ad, ok := rec.SampleValue("AD")
	require.True(t, ok)
	assert.Equal(t, "4,5", ad)

	_, ok = rec.SampleValue("PL")
	assert.False(t, ok)
}

func TestRecord_SampleValueMisaligned(t *testing.T) {
	// FORMAT names a field the sample column does not carry.
	rec := makeRecord(t, "1\t100\t.\tA\tG\t.\t.\t.\tDP:GT\t9")

	_, ok := rec.SampleValue("GT")
	assert.False(t, ok)
}

func TestParseGenotype(t *testing.T) {
	tests := []struct {
		gt      string
		want    Genotype
		wantErr bool
	}{
		{gt: "0/1", want: Genotype{Sep: "/", A: 0, B: 1}},
		{gt: "1|0", want: Genotype{Sep: "|", A: 1, B: 0}},
		{gt: "2/2", want: Genotype{Sep: "/", A: 2, B: 2}},
		{gt: "0", wantErr: true},        // no separator
		{gt: "0/1/2", wantErr: true},    // three alleles
		{gt: "./.", wantErr: true},      // missing indices
		{gt: "a/b", wantErr: true},      // non-numeric
		{gt: "-1/0", wantErr: true},     // negative index
		{gt: "", wantErr: true},         // empty
	}

	for _, tt := range tests {
		t.Run(tt.gt, func(t *testing.T) {
			g, err := ParseGenotype(tt.gt)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, g)
			assert.Equal(t, tt.gt, g.String())
		})
	}
}

func TestParseGenotype_SlashWins(t *testing.T) {
	// A value containing both separators splits on "/" and fails on the
	// leftover "|" in an allele index.
	_, err := ParseGenotype("0|1/2")
	assert.Error(t, err)
}
