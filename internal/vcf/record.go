// Package vcf provides streaming VCF parsing and writing.
package vcf

import (
	"fmt"
	"strconv"
	"strings"
)

// Fixed column indices for a single-sample VCF data line.
const (
	ColChrom  = 0
	ColPos    = 1
	ColID     = 2
	ColRef    = 3
	ColAlt    = 4
	ColQual   = 5
	ColFilter = 6
	ColInfo   = 7
	ColFormat = 8
	ColSample = 9
)

// MinColumns is the number of columns a single-sample record must carry.
const MinColumns = 10

// Missing is the VCF missing-value placeholder.
const Missing = "."

// Record is one VCF data line. Fields holds the tab-separated columns as
// read; Line is the original line without the trailing newline, kept so
// untouched records can be written back byte-identical.
type Record struct {
	Chrom  string
	Pos    int64 // 1-based; 0 when the position column could not be parsed
	Row    int   // 1-based data row number (header lines not counted)
	Fields []string
	Line   string
}

// Ref returns the recorded reference allele, or "" if the column is absent.
func (r *Record) Ref() string {
	if len(r.Fields) <= ColRef {
		return ""
	}
	return r.Fields[ColRef]
}

// Alt returns the recorded alternate allele column, or "" if absent.
func (r *Record) Alt() string {
	if len(r.Fields) <= ColAlt {
		return ""
	}
	return r.Fields[ColAlt]
}

// SampleValue returns the sample sub-field whose position matches name in
// the FORMAT column. The second return is false when the record has no
// FORMAT/sample columns, the name is absent, or the sample column is too
// short to align with it.
func (r *Record) SampleValue(name string) (string, bool) {
	if len(r.Fields) < MinColumns {
		return "", false
	}
	names := strings.Split(r.Fields[ColFormat], ":")
	values := strings.Split(r.Fields[ColSample], ":")
	for i, n := range names {
		if n != name {
			continue
		}
		if i >= len(values) {
			return "", false
		}
		return values[i], true
	}
	return "", false
}

// Genotype is a parsed two-allele GT value.
type Genotype struct {
	Sep  string // "/" or "|"
	A, B int    // allele indices: 0 = REF, k>0 = k-th ALT entry
}

// Phased reports whether the genotype separator is "|".
func (g Genotype) Phased() bool { return g.Sep == "|" }

// String renders the genotype back to its VCF form.
func (g Genotype) String() string {
	return strconv.Itoa(g.A) + g.Sep + strconv.Itoa(g.B)
}

// ParseGenotype parses a GT value of exactly two non-negative allele
// indices. The "/" separator is checked before "|", so a value containing
// both is split on "/".
func ParseGenotype(gt string) (Genotype, error) {
	var sep string
	switch {
	case strings.Contains(gt, "/"):
		sep = "/"
	case strings.Contains(gt, "|"):
		sep = "|"
	default:
		return Genotype{}, fmt.Errorf("no genotype separator in %q", gt)
	}

	parts := strings.Split(gt, sep)
	if len(parts) != 2 {
		return Genotype{}, fmt.Errorf("expected 2 alleles in %q, found %d", gt, len(parts))
	}

	a, err := strconv.Atoi(parts[0])
	if err != nil || a < 0 {
		return Genotype{}, fmt.Errorf("invalid allele index %q in %q", parts[0], gt)
	}
	b, err := strconv.Atoi(parts[1])
	if err != nil || b < 0 {
		return Genotype{}, fmt.Errorf("invalid allele index %q in %q", parts[1], gt)
	}

	return Genotype{Sep: sep, A: a, B: b}, nil
}
