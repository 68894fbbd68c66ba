package regen

import (
	"container/heap"
	"time"

	"github.com/strandnet/strand/common"
)

// EntryKind distinguishes the criticality multiplier spec.md §4.6
// names: "anchors and attestations outrank user entries".
type EntryKind int

const (
	KindUserEntry EntryKind = iota
	KindAttestation
	KindAnchor
)

func criticality(k EntryKind) float64 {
	switch k {
	case KindAnchor:
		return 4.0
	case KindAttestation:
		return 2.0
	default:
		return 1.0
	}
}

func baseSeverity(d DamageClass) float64 {
	switch d {
	case SingleAtomCorruption:
		return 1.0
	case ContiguousSegmentCorruption:
		return 2.0
	case MismatchError:
		return 2.0
	case SevereCorruption:
		return 4.0
	case TotalLoss:
		return 8.0
	default:
		return 1.0
	}
}

// Task is one entry awaiting regeneration.
type Task struct {
	EntryID    common.Hash
	Damage     DamageClass
	Kind       EntryKind
	DetectedAt time.Time

	priority float64
	index    int // heap bookkeeping, maintained by container/heap
}

// Priority computes base(severity) x age_factor x criticality(kind)
// (spec.md §4.6's ordering rule), with age_factor growing linearly with
// how long the entry has been waiting so an old, low-severity task
// eventually outranks a fresh, high-severity one rather than starving
// forever — the same aging idea geth's tx-pool priced-list ordering
// uses to keep a pool from favoring only the newest arrivals.
func Priority(t Task, now time.Time) float64 {
	age := now.Sub(t.DetectedAt)
	ageFactor := 1.0 + age.Seconds()/60.0
	return baseSeverity(t.Damage) * ageFactor * criticality(t.Kind)
}

// taskHeap is a max-heap (highest priority first) over *Task, adapted
// from geth's tx-pool priced-list container/heap idiom.
type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool { return h[i].priority > h[j].priority }
func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *taskHeap) Push(x interface{}) {
	t := x.(*Task)
	t.index = len(*h)
	*h = append(*h, t)
}
func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// Queue is a priority queue of regeneration tasks. Push scores only the
// task being added; tasks already queued keep their scores until
// Rescore re-evaluates them, so aging is reflected without a background
// re-heapify goroutine.
type Queue struct {
	h taskHeap
}

// NewQueue creates an empty regeneration priority queue.
func NewQueue() *Queue {
	q := &Queue{}
	heap.Init(&q.h)
	return q
}

// Push enqueues a task, scoring it against now.
func (q *Queue) Push(t Task, now time.Time) {
	tc := t
	tc.priority = Priority(tc, now)
	heap.Push(&q.h, &tc)
}

// Pop removes and returns the highest-priority task, or false if empty.
func (q *Queue) Pop() (Task, bool) {
	if q.h.Len() == 0 {
		return Task{}, false
	}
	t := heap.Pop(&q.h).(*Task)
	return *t, true
}

// Len reports the number of queued tasks.
func (q *Queue) Len() int { return q.h.Len() }

// Rescore re-evaluates every queued task's priority against now and
// re-heapifies, the periodic aging pass that keeps long-waiting,
// lower-severity tasks from starving behind a steady stream of fresh
// high-severity ones.
func (q *Queue) Rescore(now time.Time) {
	for _, t := range q.h {
		t.priority = Priority(*t, now)
	}
	heap.Init(&q.h)
}
