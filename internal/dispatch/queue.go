package dispatch

// requestHeap is a container/heap.Interface over pending request ids,
// ordered by a caller-supplied comparator that reads live dispatcher
// state. It mirrors graphx's nodeHeap in shape (a slice-backed heap with
// an external ordering function) but orders opaque ids instead of
// pqNodes, since a request's priority is derived from mutable fields
// (waiting_minutes) rather than carried on the heap element itself.
type requestHeap struct {
	ids  []string
	less func(a, b string) bool
}

func (h *requestHeap) Len() int            { return len(h.ids) }
func (h *requestHeap) Less(i, j int) bool  { return h.less(h.ids[i], h.ids[j]) }
func (h *requestHeap) Swap(i, j int)       { h.ids[i], h.ids[j] = h.ids[j], h.ids[i] }
func (h *requestHeap) Push(x any)          { h.ids = append(h.ids, x.(string)) }
func (h *requestHeap) Pop() any {
	old := h.ids
	n := len(old)
	item := old[n-1]
	h.ids = old[:n-1]
	return item
}
