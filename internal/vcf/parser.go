package vcf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Parser reads data lines from a VCF file.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	row        int // data rows read so far
	header     []string
	inBody     bool
}

// NewParser creates a new VCF parser for the given file.
// Supports both plain VCF and gzipped VCF (.vcf.gz) files.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	p := &Parser{file: file}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	_, err = file.Read(buf)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read vcf header: %w", err)
	}

	// Seek back to beginning
	_, err = file.Seek(0, 0)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("seek vcf file: %w", err)
	}

	// Check for gzip magic number (0x1f, 0x8b)
	if buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
func NewParserFromReader(r io.Reader) (*Parser, error) {
	return &Parser{reader: bufio.NewReader(r)}, nil
}

// Next reads the next data line. The leading run of "#" lines is captured
// as the header; once the body has started, a comment or blank line means
// the file is structurally broken and Next returns a fatal ParseError.
// Returns nil, nil at end of input.
//
// A data line whose position column cannot be parsed is returned with
// Pos == 0 rather than as an error; callers classify such rows themselves
// so one bad row cannot abort the stream.
func (p *Parser) Next() (*Record, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read vcf line: %w", err)
		}
		if line == "" && err == io.EOF {
			return nil, nil
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")

		if strings.HasPrefix(line, "#") {
			if p.inBody {
				return nil, &ParseError{
					Line:    p.lineNumber,
					Message: fmt.Sprintf("comment line inside data section (record %d)", p.row+1),
				}
			}
			p.header = append(p.header, line)
			if err == io.EOF {
				return nil, nil
			}
			continue
		}

		if line == "" {
			if p.inBody {
				return nil, &ParseError{
					Line:    p.lineNumber,
					Message: fmt.Sprintf("blank line inside data section (record %d)", p.row+1),
				}
			}
			if err == io.EOF {
				return nil, nil
			}
			continue
		}

		p.inBody = true
		p.row++
		return p.parseLine(line), nil
	}
}

// parseLine splits a data line into a Record. Chrom and Pos are extracted
// eagerly so the reference can be queried before the rest of the columns
// are validated.
func (p *Parser) parseLine(line string) *Record {
	fields := strings.Split(line, "\t")

	rec := &Record{
		Row:    p.row,
		Fields: fields,
		Line:   line,
	}
	rec.Chrom = fields[0]
	if len(fields) > ColPos {
		if pos, err := strconv.ParseInt(fields[ColPos], 10, 64); err == nil && pos > 0 {
			rec.Pos = pos
		}
	}
	return rec
}

// Header returns the header lines read so far. All header lines have been
// consumed once the first record is returned.
func (p *Parser) Header() []string {
	return p.header
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ParseError represents a structural error in the input file. Unlike a
// malformed record, which is skipped, a ParseError aborts the run.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}
