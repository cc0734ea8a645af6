package vcf

import (
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleVCF = `##fileformat=VCFv4.2
##contig=<ID=1,length=1000>
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	sample
1	14	rs1	A	G	30	PASS	DP=10	GT:DP	0/1:10
1	25	.	C	T	.	.	.	GT	1|1
`

func TestParser_HeaderAndRecords(t *testing.T) {
	p, err := NewParserFromReader(strings.NewReader(sampleVCF))
	if err != nil {
		t.Fatalf("NewParserFromReader: %v", err)
	}

	rec, err := p.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if rec == nil {
		t.Fatal("Expected a record, got nil")
	}

	if got := len(p.Header()); got != 3 {
		t.Errorf("Expected 3 header lines, got %d", got)
	}
	if rec.Chrom != "1" {
		t.Errorf("Expected chrom 1, got %s", rec.Chrom)
	}
	if rec.Pos != 14 {
		t.Errorf("Expected pos 14, got %d", rec.Pos)
	}
	if rec.Row != 1 {
		t.Errorf("Expected row 1, got %d", rec.Row)
	}
	if rec.Ref() != "A" || rec.Alt() != "G" {
		t.Errorf("Expected REF A ALT G, got %s %s", rec.Ref(), rec.Alt())
	}
	if !strings.HasPrefix(rec.Line, "1\t14\trs1") {
		t.Errorf("Line not preserved: %q", rec.Line)
	}

	rec2, err := p.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if rec2 == nil || rec2.Pos != 25 || rec2.Row != 2 {
		t.Fatalf("Unexpected second record: %+v", rec2)
	}

	rec3, err := p.Next()
	if err != nil {
		t.Fatalf("Next at EOF: %v", err)
	}
	if rec3 != nil {
		t.Errorf("Expected no more records, got %+v", rec3)
	}
}

func TestParser_GzippedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.vcf.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(sampleVCF)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}

	p, err := NewParser(path)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	defer p.Close()

	count := 0
	for {
		rec, err := p.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if rec == nil {
			break
		}
		count++
	}
	if count != 2 {
		t.Errorf("Expected 2 records, got %d", count)
	}
}

func TestParser_CommentInsideBodyIsFatal(t *testing.T) {
	in := "##header\n1\t10\t.\tA\tG\t.\t.\t.\tGT\t0/1\n#late comment\n1\t20\t.\tC\tT\t.\t.\t.\tGT\t0/1\n"
	p, _ := NewParserFromReader(strings.NewReader(in))

	if _, err := p.Next(); err != nil {
		t.Fatalf("first record: %v", err)
	}
	_, err := p.Next()
	if err == nil {
		t.Fatal("Expected structural error for comment inside body")
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected *ParseError, got %T: %v", err, err)
	}
	if pe.Line != 3 {
		t.Errorf("Expected error at line 3, got %d", pe.Line)
	}
}

func TestParser_BlankLineInsideBodyIsFatal(t *testing.T) {
	in := "1\t10\t.\tA\tG\t.\t.\t.\tGT\t0/1\n\n"
	p, _ := NewParserFromReader(strings.NewReader(in))

	if _, err := p.Next(); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if _, err := p.Next(); err == nil {
		t.Fatal("Expected structural error for blank line inside body")
	}
}

func TestParser_UnparsablePosition(t *testing.T) {
	in := "1\tnotanumber\t.\tA\tG\t.\t.\t.\tGT\t0/1\n"
	p, _ := NewParserFromReader(strings.NewReader(in))

	rec, err := p.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if rec == nil {
		t.Fatal("Expected a record")
	}
	if rec.Pos != 0 {
		t.Errorf("Expected Pos 0 for unparsable position, got %d", rec.Pos)
	}
}
