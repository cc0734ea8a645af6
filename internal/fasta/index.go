// Package fasta provides random access to an indexed reference FASTA.
package fasta

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// faiEntry is one line of a samtools faidx index: the layout of a single
// sequence inside the FASTA file.
type faiEntry struct {
	name         string
	length       int64 // total bases in the sequence
	offset       int64 // file offset of the first base
	basesPerLine int64
	bytesPerLine int64 // basesPerLine plus line terminator bytes
}

// Index maps sequence names to their file layout.
type Index struct {
	entries []faiEntry
	byName  map[string]int
}

// ReadIndex parses a .fai index file.
func ReadIndex(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fasta index: %w", err)
	}
	defer f.Close()

	idx := &Index{byName: make(map[string]int)}

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) != 5 {
			return nil, fmt.Errorf("malformed fasta index %s: expected 5 columns at line %d, found %d", path, lineNo, len(cols))
		}

		var e faiEntry
		e.name = cols[0]
		nums := []*int64{&e.length, &e.offset, &e.basesPerLine, &e.bytesPerLine}
		for i, dst := range nums {
			v, err := strconv.ParseInt(cols[i+1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("malformed fasta index %s at line %d: %w", path, lineNo, err)
			}
			*dst = v
		}
		if e.basesPerLine <= 0 || e.bytesPerLine <= e.basesPerLine-1 {
			return nil, fmt.Errorf("malformed fasta index %s at line %d: bad line layout", path, lineNo)
		}

		idx.byName[e.name] = len(idx.entries)
		idx.entries = append(idx.entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read fasta index: %w", err)
	}
	if len(idx.entries) == 0 {
		return nil, fmt.Errorf("fasta index %s has no sequences", path)
	}

	return idx, nil
}

// Has reports whether the index contains the named sequence.
func (idx *Index) Has(name string) bool {
	_, ok := idx.byName[name]
	return ok
}

// Length returns the number of bases in the named sequence, or 0 if the
// sequence is not in the index.
func (idx *Index) Length(name string) int64 {
	i, ok := idx.byName[name]
	if !ok {
		return 0
	}
	return idx.entries[i].length
}

// Names returns the sequence names in index order.
func (idx *Index) Names() []string {
	names := make([]string, len(idx.entries))
	for i, e := range idx.entries {
		names[i] = e.name
	}
	return names
}
