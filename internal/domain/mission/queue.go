package mission

import "streetbuilder/internal/domain/world"

// TargetQueue holds pending destination cells, consumed from the front.
type TargetQueue struct {
	items []world.Point
}

func (q *TargetQueue) Len() int { return len(q.items) }

func (q *TargetQueue) Empty() bool { return len(q.items) == 0 }

// Replace discards the previous contents; target lists are always rebuilt in full.
func (q *TargetQueue) Replace(points []world.Point) {
	q.items = append(q.items[:0:0], points...)
}

func (q *TargetQueue) Pop() (world.Point, bool) {
	if len(q.items) == 0 {
		return world.Point{}, false
	}
	p := q.items[0]
	q.items = q.items[1:]
	return p, true
}

// PushFront puts a target back at the head of the queue.
func (q *TargetQueue) PushFront(p world.Point) {
	q.items = append([]world.Point{p}, q.items...)
}

func (q *TargetQueue) Peek() (world.Point, bool) {
	if len(q.items) == 0 {
		return world.Point{}, false
	}
	return q.items[0], true
}

func (q *TargetQueue) Items() []world.Point {
	return append([]world.Point(nil), q.items...)
}

// ActionQueue holds the navigation directives for the current target. It is
// only loaded while empty and otherwise only shrinks.
type ActionQueue struct {
	items []Action
}

func (q *ActionQueue) Len() int { return len(q.items) }

func (q *ActionQueue) Empty() bool { return len(q.items) == 0 }

// Load replaces the contents with a fresh plan. It refuses to overwrite a
// non-empty queue and reports whether the plan was taken.
func (q *ActionQueue) Load(actions []Action) bool {
	if len(q.items) != 0 {
		return false
	}
	q.items = append(q.items[:0:0], actions...)
	return true
}

func (q *ActionQueue) Pop() (Action, bool) {
	if len(q.items) == 0 {
		return Action{}, false
	}
	a := q.items[0]
	q.items = q.items[1:]
	return a, true
}

func (q *ActionQueue) Clear() {
	q.items = nil
}

func (q *ActionQueue) Items() []Action {
	return append([]Action(nil), q.items...)
}
