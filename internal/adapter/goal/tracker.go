package goal

import (
	"sync"

	"streetbuilder/internal/domain/mission"
	"streetbuilder/internal/domain/world"
)

type Goal struct {
	Type     mission.GoalType
	Content  world.Content
	Required int
}

type key struct {
	goal    mission.GoalType
	content world.Content
}

type entry struct {
	required  int
	collected int
}

// Tracker accumulates reported quantities per (goal, content). Counts only
// grow; adds for goals that were never registered are ignored.
type Tracker struct {
	mu      sync.Mutex
	order   []key
	entries map[key]*entry
}

func NewTracker(goals ...Goal) *Tracker {
	t := &Tracker{entries: map[key]*entry{}}
	for _, g := range goals {
		k := key{goal: g.Type, content: g.Content}
		if _, ok := t.entries[k]; ok {
			continue
		}
		required := g.Required
		if required < 1 {
			required = 1
		}
		t.order = append(t.order, k)
		t.entries[k] = &entry{required: required}
	}
	return t
}

func (t *Tracker) Add(goal mission.GoalType, content world.Content, n int) {
	if n <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[key{goal: goal, content: content}]; ok {
		e.collected += n
	}
}

func (t *Tracker) Completed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	done := 0
	for _, e := range t.entries {
		if e.collected >= e.required {
			done++
		}
	}
	return done
}

// Progress reports the first registered goal.
func (t *Tracker) Progress() mission.Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.order) == 0 {
		return mission.Progress{}
	}
	k := t.order[0]
	e := t.entries[k]
	completed := 0
	for _, other := range t.entries {
		if other.collected >= other.required {
			completed++
		}
	}
	return mission.Progress{
		Goal:      k.goal,
		Content:   k.content,
		Collected: e.collected,
		Required:  e.required,
		Completed: completed,
	}
}
