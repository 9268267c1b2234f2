package inmemory

import (
	"sync"

	"streetbuilder/internal/domain/mission"
)

type Snapshot struct {
	TickTotal       uint64            `json:"tick_total"`
	TransitionTotal uint64            `json:"transition_total"`
	FailureTotal    uint64            `json:"failure_total"`
	TicksByPhase    map[string]uint64 `json:"ticks_by_phase"`
	Transitions     map[string]uint64 `json:"transitions"`
	FailuresByKind  map[string]uint64 `json:"failures_by_kind"`
}

type Recorder struct {
	mu          sync.Mutex
	ticks       uint64
	transitions uint64
	failures    uint64
	byPhase     map[string]uint64
	byEdge      map[string]uint64
	byFailure   map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byPhase:   map[string]uint64{},
		byEdge:    map[string]uint64{},
		byFailure: map[string]uint64{},
	}
}

func (r *Recorder) RecordTick(phase mission.Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks++
	r.byPhase[string(phase)]++
}

func (r *Recorder) RecordTransition(from, to mission.Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions++
	r.byEdge[string(from)+"->"+string(to)]++
}

func (r *Recorder) RecordFailure(kind mission.EventType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures++
	r.byFailure[string(kind)]++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Snapshot{
		TickTotal:       r.ticks,
		TransitionTotal: r.transitions,
		FailureTotal:    r.failures,
		TicksByPhase:    copyCounts(r.byPhase),
		Transitions:     copyCounts(r.byEdge),
		FailuresByKind:  copyCounts(r.byFailure),
	}
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}

func copyCounts(in map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
