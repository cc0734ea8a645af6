// Package region reads and writes genomic region files in the formats the
// toolkit exchanges: BED, GFF and plain TSV.
package region

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Region is a named span on a chromosome. Coordinates are 1-based and
// closed regardless of the on-disk format; readers and writers convert.
type Region struct {
	Chrom string
	Start int64
	End   int64
	Name  string
}

// Length returns the number of bases the region covers.
func (r Region) Length() int64 {
	return r.End - r.Start + 1
}

// Contains reports whether the 1-based position falls inside the region.
func (r Region) Contains(pos int64) bool {
	return pos >= r.Start && pos <= r.End
}

// Supported region file formats.
const (
	FormatBED = "bed" // 0-based half-open
	FormatGFF = "gff" // 1-based closed, 9 columns
	FormatTSV = "tsv" // 1-based closed: chrom, start, end[, name]
)

// KnownFormat reports whether fmt names a supported region format.
func KnownFormat(format string) bool {
	switch format {
	case FormatBED, FormatGFF, FormatTSV:
		return true
	}
	return false
}

// ReadFile reads all regions from path in the named format. Gzipped files
// (".gz" suffix) are decompressed transparently.
func ReadFile(path, format string) ([]Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open region file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return Read(reader, format)
}

// Read reads regions in the named format.
func Read(r io.Reader, format string) ([]Region, error) {
	if !KnownFormat(format) {
		return nil, fmt.Errorf("unknown region format %q", format)
	}

	var regions []Region
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if format == FormatBED && (strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser")) {
			continue
		}

		reg, err := parseLine(line, format)
		if err != nil {
			return nil, fmt.Errorf("region line %d: %w", lineNo, err)
		}
		regions = append(regions, reg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read regions: %w", err)
	}

	return regions, nil
}

func parseLine(line, format string) (Region, error) {
	cols := strings.Split(line, "\t")

	var reg Region
	var startCol, endCol, nameCol int
	minCols := 3

	switch format {
	case FormatBED, FormatTSV:
		startCol, endCol, nameCol = 1, 2, 3
	case FormatGFF:
		startCol, endCol, nameCol = 3, 4, 8
		minCols = 9
	}
	if len(cols) < minCols {
		return reg, fmt.Errorf("expected at least %d columns, found %d", minCols, len(cols))
	}

	reg.Chrom = cols[0]
	start, err := strconv.ParseInt(cols[startCol], 10, 64)
	if err != nil {
		return reg, fmt.Errorf("invalid start %q", cols[startCol])
	}
	end, err := strconv.ParseInt(cols[endCol], 10, 64)
	if err != nil {
		return reg, fmt.Errorf("invalid end %q", cols[endCol])
	}

	if format == FormatBED {
		start++ // 0-based half-open on disk
	}
	if start > end || start < 1 {
		return reg, fmt.Errorf("bad interval %d-%d", start, end)
	}
	reg.Start, reg.End = start, end

	if len(cols) > nameCol {
		if format == FormatGFF {
			reg.Name = attributeID(cols[nameCol])
		} else {
			reg.Name = cols[nameCol]
		}
	}
	return reg, nil
}

// attributeID pulls the ID value out of a GFF attribute column, falling
// back to the raw column when no ID key is present.
func attributeID(attr string) string {
	for _, kv := range strings.Split(attr, ";") {
		kv = strings.TrimSpace(kv)
		if v, ok := strings.CutPrefix(kv, "ID="); ok {
			return v
		}
	}
	if attr == "." {
		return ""
	}
	return attr
}

// WriteFile writes regions to path in the named format, gzip-compressing
// when the path ends in ".gz". An empty path writes to stdout.
func WriteFile(path string, regions []Region, format string) error {
	if path == "" {
		return Write(os.Stdout, regions, format)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create region file: %w", err)
	}
	defer f.Close()

	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(f)
		if err := Write(gz, regions, format); err != nil {
			gz.Close()
			return err
		}
		return gz.Close()
	}
	return Write(f, regions, format)
}

// Write writes regions in the named format.
func Write(w io.Writer, regions []Region, format string) error {
	if !KnownFormat(format) {
		return fmt.Errorf("unknown region format %q", format)
	}

	bw := bufio.NewWriter(w)
	for _, reg := range regions {
		var line string
		switch format {
		case FormatBED:
			line = fmt.Sprintf("%s\t%d\t%d", reg.Chrom, reg.Start-1, reg.End)
			if reg.Name != "" {
				line += "\t" + reg.Name
			}
		case FormatTSV:
			line = fmt.Sprintf("%s\t%d\t%d", reg.Chrom, reg.Start, reg.End)
			if reg.Name != "" {
				line += "\t" + reg.Name
			}
		case FormatGFF:
			attr := "."
			if reg.Name != "" {
				attr = "ID=" + reg.Name
			}
			line = fmt.Sprintf("%s\txcltk\tregion\t%d\t%d\t.\t.\t.\t%s", reg.Chrom, reg.Start, reg.End, attr)
		}
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("write region: %w", err)
		}
	}
	return bw.Flush()
}

// Convert reads regions from inPath in the from format and writes them to
// outPath in the to format, returning the number of regions converted.
func Convert(inPath, outPath, from, to string) (int, error) {
	regions, err := ReadFile(inPath, from)
	if err != nil {
		return 0, err
	}
	if err := WriteFile(outPath, regions, to); err != nil {
		return 0, err
	}
	return len(regions), nil
}
