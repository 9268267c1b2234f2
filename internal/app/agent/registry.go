package agent

import (
	"context"
	"errors"
	"fmt"

	"streetbuilder/internal/domain/mission"
)

var ErrIllegalTransition = errors.New("illegal phase transition")

type TransitionError struct {
	From mission.Phase
	To   mission.Phase
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrIllegalTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// PhaseHandler runs one tick of a phase and returns the phase for the next
// tick. Returning the current phase means "not done yet".
type PhaseHandler interface {
	Handle(ctx context.Context, c *Controller) mission.Phase
}

type PhaseSpec struct {
	Phase      mission.Phase
	Successors []mission.Phase
	Handler    PhaseHandler
}

// Allows reports whether next is the phase itself or a declared successor.
func (s PhaseSpec) Allows(next mission.Phase) bool {
	if next == s.Phase {
		return true
	}
	for _, p := range s.Successors {
		if p == next {
			return true
		}
	}
	return false
}

func phaseRegistry() map[mission.Phase]PhaseSpec {
	return map[mission.Phase]PhaseSpec{
		mission.PhaseReady: {
			Phase:      mission.PhaseReady,
			Successors: []mission.Phase{mission.PhaseDiscover},
			Handler:    readyHandler{},
		},
		mission.PhaseDiscover: {
			Phase:      mission.PhaseDiscover,
			Successors: []mission.Phase{mission.PhaseLocate},
			Handler:    discoverHandler{},
		},
		mission.PhaseLocate: {
			Phase:      mission.PhaseLocate,
			Successors: []mission.Phase{mission.PhaseDiscover, mission.PhaseGoto},
			Handler:    locateHandler{},
		},
		mission.PhaseFind: {
			Phase:      mission.PhaseFind,
			Successors: []mission.Phase{mission.PhaseGoto},
			Handler:    findHandler{},
		},
		mission.PhaseGoto: {
			Phase:      mission.PhaseGoto,
			Successors: []mission.Phase{mission.PhaseLocate, mission.PhaseCollect, mission.PhaseBuild},
			Handler:    gotoHandler{},
		},
		mission.PhaseCollect: {
			Phase:      mission.PhaseCollect,
			Successors: []mission.Phase{mission.PhaseGoto, mission.PhaseDiscover, mission.PhaseBuild},
			Handler:    collectHandler{},
		},
		mission.PhaseBuild: {
			Phase:      mission.PhaseBuild,
			Successors: []mission.Phase{mission.PhaseFind, mission.PhaseDiscover, mission.PhaseDance, mission.PhaseTerminate},
			Handler:    buildHandler{},
		},
		mission.PhaseDance: {
			Phase:      mission.PhaseDance,
			Successors: []mission.Phase{mission.PhaseTerminate},
			Handler:    danceHandler{},
		},
		mission.PhaseTerminate: {
			Phase:   mission.PhaseTerminate,
			Handler: terminateHandler{},
		},
	}
}
