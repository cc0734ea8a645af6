package vcf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Writer writes VCF lines to a file, gzip-compressing when the path ends
// in ".gz". An empty path writes to stdout.
type Writer struct {
	w    *bufio.Writer
	gz   *gzip.Writer
	file *os.File
}

// NewWriter creates a writer for the given output path.
func NewWriter(path string) (*Writer, error) {
	if path == "" {
		return &Writer{w: bufio.NewWriter(os.Stdout)}, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	w := &Writer{file: file}
	if strings.HasSuffix(path, ".gz") {
		w.gz = gzip.NewWriter(file)
		w.w = bufio.NewWriter(w.gz)
	} else {
		w.w = bufio.NewWriter(file)
	}
	return w, nil
}

// NewWriterTo creates a writer over an arbitrary io.Writer, uncompressed.
func NewWriterTo(out io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(out)}
}

// WriteLine writes one line, appending the newline.
func (w *Writer) WriteLine(line string) error {
	if _, err := w.w.WriteString(line); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Close flushes buffered data and closes the compressor and file. Safe to
// call when writing to stdout, which is left open.
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		return err
	}
	if w.gz != nil {
		if err := w.gz.Close(); err != nil {
			return err
		}
	}
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}
