package contents

import (
	"container/heap"
	"slices"
	"strings"
)

// Entry is a package and the number of files it owns.
type Entry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// less reports whether a ranks below b: fewer files first,
// and for equal counts the alphabetically later name first.
func less(a, b Entry) bool {
	if a.Count != b.Count {
		return a.Count < b.Count
	}
	return a.Name > b.Name
}

// entryHeap is a min-heap ordered by less, so the weakest
// entry kept so far is always at the root.
type entryHeap []Entry

func (h entryHeap) Len() int           { return len(h) }
func (h entryHeap) Less(i, j int) bool { return less(h[i], h[j]) }
func (h entryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(Entry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Top returns the k packages owning the most files, ordered by
// count descending and then by name ascending. If there are
// fewer than k packages, all of them are returned.
//
// Selection keeps a heap of at most k entries, so it runs in
// O(n log k) for n packages. counts is not modified.
func Top(counts Counts, k int) []Entry {
	if k <= 0 || len(counts) == 0 {
		return nil
	}
	h := make(entryHeap, 0, min(k, len(counts)))
	for name, n := range counts {
		e := Entry{Name: name, Count: n}
		if h.Len() < k {
			heap.Push(&h, e)
			continue
		}
		if less(h[0], e) {
			h[0] = e
			heap.Fix(&h, 0)
		}
	}
	out := []Entry(h)
	slices.SortFunc(out, func(a, b Entry) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}
