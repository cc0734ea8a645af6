package fasta

import (
	"fmt"
	"os"
)

// IndexedFasta answers coordinate-range queries against a FASTA file using
// its .fai index. Fetches go through ReadAt on the open file, so a single
// IndexedFasta is safe for concurrent use and no sequence is ever scanned
// or held in memory.
type IndexedFasta struct {
	file *os.File
	idx  *Index
}

// Open opens a FASTA file together with its index. The index is expected
// at path + ".fai" (the samtools faidx convention) unless faiPath is
// non-empty.
func Open(path, faiPath string) (*IndexedFasta, error) {
	if faiPath == "" {
		faiPath = path + ".fai"
	}

	idx, err := ReadIndex(faiPath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fasta file: %w", err)
	}

	return &IndexedFasta{file: file, idx: idx}, nil
}

// Index returns the underlying .fai index.
func (f *IndexedFasta) Index() *Index { return f.idx }

// Fetch returns the bases of chrom in the 0-based half-open interval
// [start, end), uppercased. Unknown chromosomes and out-of-range intervals
// return a *LookupError.
func (f *IndexedFasta) Fetch(chrom string, start, end int64) (string, error) {
	i, ok := f.idx.byName[chrom]
	if !ok {
		return "", &LookupError{Chrom: chrom, Pos: start + 1, Reason: "chromosome not in fasta index"}
	}
	e := f.idx.entries[i]

	if start < 0 || end <= start || end > e.length {
		return "", &LookupError{Chrom: chrom, Pos: start + 1, Reason: fmt.Sprintf("interval [%d,%d) outside sequence of length %d", start, end, e.length)}
	}

	// Byte offset of base n: whole lines before it plus its column.
	baseOffset := func(n int64) int64 {
		return e.offset + (n/e.basesPerLine)*e.bytesPerLine + n%e.basesPerLine
	}

	lo := baseOffset(start)
	hi := baseOffset(end-1) + 1
	raw := make([]byte, hi-lo)
	if _, err := f.file.ReadAt(raw, lo); err != nil {
		return "", fmt.Errorf("read fasta %s:[%d,%d): %w", chrom, start, end, err)
	}

	// Strip line terminators and uppercase in place.
	out := raw[:0]
	for _, b := range raw {
		if b == '\n' || b == '\r' {
			continue
		}
		if 'a' <= b && b <= 'z' {
			b -= 'a' - 'A'
		}
		out = append(out, b)
	}
	return string(out), nil
}

// Base returns the single reference base at the 1-based position.
func (f *IndexedFasta) Base(chrom string, pos int64) (string, error) {
	return f.Fetch(chrom, pos-1, pos)
}

// Close releases the FASTA file handle.
func (f *IndexedFasta) Close() error {
	return f.file.Close()
}

// LookupError reports a reference query that could not be answered.
type LookupError struct {
	Chrom  string
	Pos    int64 // 1-based
	Reason string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("reference lookup %s:%d: %s", e.Chrom, e.Pos, e.Reason)
}
