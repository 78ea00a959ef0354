package integrators

import "github.com/san-kum/stepwise/internal/dynamo"

const historyLen = 4

type sample[T dynamo.Scalar] struct {
	n  int
	y  []T
	dy []T
}

// history is a fixed-capacity ring of the most recent samples.
// Pushing into a full ring drops the oldest entry.
type history[T dynamo.Scalar] struct {
	buf   [historyLen]sample[T]
	head  int
	count int
}

func (h *history[T]) push(s sample[T]) {
	idx := (h.head + h.count) % historyLen
	if h.count == historyLen {
		h.buf[h.head] = sample[T]{}
		h.head = (h.head + 1) % historyLen
		idx = (h.head + h.count - 1) % historyLen
	} else {
		h.count++
	}
	h.buf[idx] = s
}

// back returns the k-th newest entry; back(0) is the newest.
func (h *history[T]) back(k int) sample[T] {
	return h.buf[(h.head+h.count-1-k)%historyLen]
}

func (h *history[T]) len() int { return h.count }

// ordered returns the entries oldest first.
func (h *history[T]) ordered() []sample[T] {
	out := make([]sample[T], h.count)
	for k := 0; k < h.count; k++ {
		out[k] = h.buf[(h.head+k)%historyLen]
	}
	return out
}
