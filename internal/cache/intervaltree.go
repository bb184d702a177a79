package cache

import "sort"

// IntervalTree answers overlap queries over a fixed set of transcripts.
// Intervals are kept sorted by start with a running maximum of ends so that
// a query only scans candidates whose start is at or before the query end.
type IntervalTree struct {
	intervals []*Transcript
	maxEnd    []int64 // maxEnd[i] = max(End) for intervals[:i+1]
}

// BuildIntervalTree creates an interval tree from a slice of transcripts.
func BuildIntervalTree(transcripts []*Transcript) *IntervalTree {
	intervals := make([]*Transcript, len(transcripts))
	copy(intervals, transcripts)
	sort.SliceStable(intervals, func(i, j int) bool {
		return intervals[i].Start < intervals[j].Start
	})

	maxEnd := make([]int64, len(intervals))
	for i, t := range intervals {
		maxEnd[i] = t.End
		if i > 0 && maxEnd[i-1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i-1]
		}
	}
	return &IntervalTree{intervals: intervals, maxEnd: maxEnd}
}

// Len returns the number of intervals in the tree.
func (t *IntervalTree) Len() int {
	return len(t.intervals)
}

// FindRange returns all transcripts overlapping [start, end], in order of
// transcript start.
func (t *IntervalTree) FindRange(start, end int64) []*Transcript {
	hi := sort.Search(len(t.intervals), func(i int) bool {
		return t.intervals[i].Start > end
	})
	// Leftmost candidate: the first index whose running max end reaches start.
	lo := sort.Search(hi, func(i int) bool {
		return t.maxEnd[i] >= start
	})

	var result []*Transcript
	for _, tx := range t.intervals[lo:hi] {
		if tx.End >= start {
			result = append(result, tx)
		}
	}
	return result
}
