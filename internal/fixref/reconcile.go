// Package fixref reconciles VCF records against an authoritative
// reference sequence: where the recorded REF disagrees with the true
// reference base, REF, ALT and GT are re-derived so the three stay
// consistent.
package fixref

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/huangyh09/xcltk/internal/vcf"
)

// Status classifies the result of reconciling one record.
type Status int

const (
	// Unchanged means the recorded REF already matches the true
	// reference; the record passes through verbatim.
	Unchanged Status = iota
	// Fixed means REF, ALT and GT were rewritten.
	Fixed
	// Invalid means the record is malformed or unrecoverable and is
	// excluded from output.
	Invalid
)

// Change describes an applied fix for diagnostics.
type Change struct {
	OldRef, OldAlt, OldGT string
	NewRef, NewAlt, NewGT string
}

// Outcome is the result of reconciling one record. Line is the output
// line for Unchanged and Fixed; Reason explains an Invalid outcome.
type Outcome struct {
	Status Status
	Line   string
	Reason string
	Change *Change
}

func unchanged(line string) Outcome { return Outcome{Status: Unchanged, Line: line} }
func invalid(reason string) Outcome { return Outcome{Status: Invalid, Reason: reason} }
func invalidf(f string, a ...any) Outcome {
	return invalid(fmt.Sprintf(f, a...))
}

// Reconcile checks one record against the true reference base and rewrites
// REF, ALT and GT when they disagree. It never returns an error: a record
// that cannot be fixed yields an Invalid outcome so one bad row cannot
// abort the stream.
//
// Only single-nucleotide alleles (A, C, G, T, N) are handled; multi-base
// or symbolic alleles yield Invalid rather than being silently mishandled.
func Reconcile(rec *vcf.Record, trueRef string) Outcome {
	if len(rec.Fields) < vcf.MinColumns {
		return invalidf("expected at least %d columns, found %d", vcf.MinColumns, len(rec.Fields))
	}

	ref := rec.Fields[vcf.ColRef]
	alt := rec.Fields[vcf.ColAlt]

	// No fix is needed; keep the line byte-identical, annotations included.
	if ref == trueRef {
		return unchanged(rec.Line)
	}

	gt, ok := rec.SampleValue("GT")
	if !ok {
		return invalidf("no GT field, format str: %s; format value: %s",
			rec.Fields[vcf.ColFormat], rec.Fields[vcf.ColSample])
	}

	g, err := vcf.ParseGenotype(gt)
	if err != nil {
		return invalidf("bad GT %q: %v", gt, err)
	}

	// Resolve both genotype slots to concrete bases: 0 is the recorded
	// REF, k>0 is the k-th ALT entry.
	alts := strings.Split(alt, ",")
	resolve := func(idx int) (string, bool) {
		if idx == 0 {
			return ref, true
		}
		if idx > len(alts) {
			return "", false
		}
		return alts[idx-1], true
	}
	allele1, ok := resolve(g.A)
	if !ok {
		return invalidf("GT index %d out of range of ALT %q", g.A, alt)
	}
	allele2, ok := resolve(g.B)
	if !ok {
		return invalidf("GT index %d out of range of ALT %q", g.B, alt)
	}

	if !isSNVAllele(allele1) || !isSNVAllele(allele2) {
		return invalidf("not a single-nucleotide allele: allele1 = %s; allele2 = %s", allele1, allele2)
	}

	// Renumber both alleles against the true reference, in genotype slot
	// order. A non-reference allele gets the next unused positive index;
	// a repeated allele reuses the index it was first given.
	var newAlts []string
	newIdx := make([]int, 2)
	for i, allele := range []string{allele1, allele2} {
		if allele == trueRef {
			newIdx[i] = 0
			continue
		}
		reused := false
		for j, a := range newAlts {
			if a == allele {
				newIdx[i] = j + 1
				reused = true
				break
			}
		}
		if !reused {
			newAlts = append(newAlts, allele)
			newIdx[i] = len(newAlts)
		}
	}

	newAlt := vcf.Missing
	if len(newAlts) > 0 {
		newAlt = strings.Join(newAlts, ",")
	}
	newGT := strconv.Itoa(newIdx[0]) + g.Sep + strconv.Itoa(newIdx[1])

	// ID, QUAL, FILTER and INFO referred to the old REF/ALT pairing, and
	// the non-GT FORMAT sub-fields would be misaligned after the rewrite,
	// so all of them are dropped rather than carried over wrong.
	out := make([]string, len(rec.Fields))
	copy(out, rec.Fields)
	out[vcf.ColID] = vcf.Missing
	out[vcf.ColRef] = trueRef
	out[vcf.ColAlt] = newAlt
	out[vcf.ColQual] = vcf.Missing
	out[vcf.ColFilter] = vcf.Missing
	out[vcf.ColInfo] = vcf.Missing
	out[vcf.ColFormat] = "GT"
	out[vcf.ColSample] = newGT

	return Outcome{
		Status: Fixed,
		Line:   strings.Join(out, "\t"),
		Change: &Change{
			OldRef: ref, OldAlt: alt, OldGT: gt,
			NewRef: trueRef, NewAlt: newAlt, NewGT: newGT,
		},
	}
}

// isSNVAllele reports whether the allele is exactly one of A, C, G, T, N.
func isSNVAllele(a string) bool {
	if len(a) != 1 {
		return false
	}
	switch a[0] {
	case 'A', 'C', 'G', 'T', 'N':
		return true
	}
	return false
}
