// Package phase aggregates phased heterozygous SNPs into haplotype
// blocks: per-block allele-depth totals for each haplotype.
package phase

import (
	"sort"

	"github.com/huangyh09/xcltk/internal/region"
)

// blockIndex provides O(log n + k) containment queries over the blocks of
// one chromosome using a sorted-slice approach. Blocks are loaded once and
// never modified after build.
type blockIndex struct {
	intervals []blockInterval
	maxEnd    []int64 // maxEnd[i] = max(End) for intervals[0..i]
}

type blockInterval struct {
	start int64
	end   int64
	block int // index into the Aggregator's block slice
}

// buildBlockIndex creates an index from per-chromosome intervals.
func buildBlockIndex(intervals []blockInterval) *blockIndex {
	if len(intervals) == 0 {
		return &blockIndex{}
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})

	// Build prefix-max array: maxEnd[i] = max(end) for intervals[0..i].
	// The downward scan in find breaks on it, so it must bound the
	// intervals still ahead of the scan, not the ones already passed.
	maxEnd := make([]int64, len(intervals))
	maxEnd[0] = intervals[0].end
	for i := 1; i < len(intervals); i++ {
		maxEnd[i] = intervals[i].end
		if maxEnd[i-1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i-1]
		}
	}

	return &blockIndex{intervals: intervals, maxEnd: maxEnd}
}

// find returns the indices of all blocks whose [start, end] range contains
// pos.
func (t *blockIndex) find(pos int64) []int {
	if len(t.intervals) == 0 {
		return nil
	}

	var result []int

	// Binary search: find rightmost interval with start <= pos.
	// All candidates must have start <= pos, so we only need to scan
	// from index 0 to that boundary.
	hi := sort.Search(len(t.intervals), func(i int) bool {
		return t.intervals[i].start > pos
	})
	// hi is the first index with start > pos; candidates are [0, hi).

	for i := hi - 1; i >= 0; i-- {
		// Prune: maxEnd[i] is the max end for intervals[0..i].
		// If maxEnd[i] < pos, no interval from 0..i can contain pos.
		if t.maxEnd[i] < pos {
			break
		}
		if t.intervals[i].end >= pos {
			result = append(result, t.intervals[i].block)
		}
	}

	return result
}

// newChromIndexes builds one blockIndex per chromosome over the given
// blocks, keyed by chromosome name.
func newChromIndexes(blocks []region.Region) map[string]*blockIndex {
	byChrom := make(map[string][]blockInterval)
	for i, b := range blocks {
		byChrom[b.Chrom] = append(byChrom[b.Chrom], blockInterval{
			start: b.Start,
			end:   b.End,
			block: i,
		})
	}

	indexes := make(map[string]*blockIndex, len(byChrom))
	for chrom, intervals := range byChrom {
		indexes[chrom] = buildBlockIndex(intervals)
	}
	return indexes
}
