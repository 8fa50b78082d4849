package sorting

import "pondo/internal/core"

// amountHeapStrategy orders entries by amount, highest first, via a binary
// max-heap: all entries are pushed, then extracted until the heap is empty.
// The relative order of equal amounts is unspecified.
type amountHeapStrategy struct{}

type maxHeap struct {
	items []core.Entry
}

func (amountHeapStrategy) Sort(entries []core.Entry) []core.Entry {
	h := &maxHeap{items: make([]core.Entry, 0, len(entries))}
	for _, e := range entries {
		h.push(e)
	}
	out := make([]core.Entry, 0, len(entries))
	for h.len() > 0 {
		out = append(out, h.popMax())
	}
	return out
}

func (h *maxHeap) len() int { return len(h.items) }

func (h *maxHeap) push(e core.Entry) {
	h.items = append(h.items, e)
	h.siftUp(len(h.items) - 1)
}

func (h *maxHeap) popMax() core.Entry {
	max := h.items[0]
	last := len(h.items) - 1
	h.items[0] = h.items[last]
	h.items = h.items[:last]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return max
}

func (h *maxHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].Amount.Cents <= h.items[parent].Amount.Cents {
			return
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *maxHeap) siftDown(i int) {
	n := len(h.items)
	for {
		largest := i
		left, right := 2*i+1, 2*i+2
		if left < n && h.items[left].Amount.Cents > h.items[largest].Amount.Cents {
			largest = left
		}
		if right < n && h.items[right].Amount.Cents > h.items[largest].Amount.Cents {
			largest = right
		}
		if largest == i {
			return
		}
		h.items[i], h.items[largest] = h.items[largest], h.items[i]
		i = largest
	}
}
