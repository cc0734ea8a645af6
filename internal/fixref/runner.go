package fixref

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/huangyh09/xcltk/internal/fasta"
	"github.com/huangyh09/xcltk/internal/vcf"
)

// BaseLookup answers single-base reference queries at 1-based positions.
type BaseLookup interface {
	Base(chrom string, pos int64) (string, error)
}

// Counts accumulates the per-run record tallies. Processed counts every
// data row, skipped rows included.
type Counts struct {
	Processed int
	Fixed     int
	Unchanged int
	Skipped   int
}

// Runner drives a reconciliation run: header passthrough, one reference
// query and one Reconcile call per record, skip-and-report on bad rows.
type Runner struct {
	lookup  BaseLookup
	logger  *zap.Logger
	workers int
}

// NewRunner creates a runner over the given reference lookup.
func NewRunner(lookup BaseLookup) *Runner {
	return &Runner{
		lookup: lookup,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for per-record diagnostics.
func (r *Runner) SetLogger(l *zap.Logger) {
	r.logger = l
}

// SetWorkers sets the worker pool size. Zero or negative selects
// runtime.NumCPU. Output order is identical to input order regardless.
func (r *Runner) SetWorkers(n int) {
	r.workers = n
}

// reconcileOne resolves the true reference for one record and reconciles
// against it. Rows whose coordinate cannot be parsed or answered by the
// reference become Invalid outcomes rather than errors, per the
// skip-and-report policy.
func (r *Runner) reconcileOne(rec *vcf.Record) Outcome {
	if rec.Pos == 0 {
		return invalid("cannot parse chrom/pos columns")
	}
	trueRef, err := r.lookup.Base(rec.Chrom, rec.Pos)
	if err != nil {
		var le *fasta.LookupError
		if errors.As(err, &le) {
			return invalidf("no reference base: %s", le.Reason)
		}
		return invalidf("reference query failed: %v", err)
	}
	return Reconcile(rec, trueRef)
}

// Run reads every record from p, reconciles it, and writes the surviving
// lines to w in input order. The header is copied verbatim first.
// Structural errors from the parser abort the run; per-record problems
// are logged and skipped.
func (r *Runner) Run(p *vcf.Parser, w *vcf.Writer) (Counts, error) {
	var counts Counts
	headerWritten := false

	items := make(chan workItem, 64)
	var parseErr error

	go func() {
		defer close(items)
		seq := 0
		for {
			rec, err := p.Next()
			if err != nil {
				parseErr = err
				return
			}
			if rec == nil {
				return
			}
			items <- workItem{seq: seq, rec: rec}
			seq++
		}
	}()

	writeHeader := func() error {
		for _, line := range p.Header() {
			if err := w.WriteLine(line); err != nil {
				return fmt.Errorf("write header: %w", err)
			}
		}
		headerWritten = true
		return nil
	}

	results := r.reconcileParallel(items, r.workers)

	err := orderedCollect(results, func(res workResult) error {
		// The parser has consumed the full header once the first record
		// is out, so it is safe to flush it ahead of the body.
		if !headerWritten {
			if err := writeHeader(); err != nil {
				return err
			}
		}

		counts.Processed++
		rec := res.rec

		switch res.outcome.Status {
		case Invalid:
			counts.Skipped++
			r.logger.Warn("skipping record",
				zap.Int("row", rec.Row),
				zap.String("chrom", rec.Chrom),
				zap.Int64("pos", rec.Pos),
				zap.String("reason", res.outcome.Reason))
			return nil
		case Fixed:
			counts.Fixed++
			c := res.outcome.Change
			r.logger.Info("fixed record",
				zap.Int("row", rec.Row),
				zap.String("chrom", rec.Chrom),
				zap.Int64("pos", rec.Pos),
				zap.String("from", c.OldRef+":"+c.OldAlt+":"+c.OldGT),
				zap.String("to", c.NewRef+":"+c.NewAlt+":"+c.NewGT))
		case Unchanged:
			counts.Unchanged++
		}

		if err := w.WriteLine(res.outcome.Line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		return nil
	})
	if err != nil {
		return counts, err
	}

	if parseErr != nil {
		return counts, parseErr
	}

	// Header-only input still gets its header copied through.
	if !headerWritten {
		if err := writeHeader(); err != nil {
			return counts, err
		}
	}

	return counts, nil
}
