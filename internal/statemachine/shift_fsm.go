package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/sjperalta/fintera-ledger/internal/models"
)

// ShiftFSM wraps a cashier shift with its state machine
type ShiftFSM struct {
	shift *models.Shift
	fsm   *fsm.FSM
}

// NewShiftFSM creates a new shift state machine
func NewShiftFSM(shift *models.Shift) *ShiftFSM {
	sfsm := &ShiftFSM{
		shift: shift,
	}

	sfsm.fsm = fsm.NewFSM(
		shift.Status,
		fsm.Events{
			// open → closed, exactly once
			{Name: "close", Src: []string{models.ShiftStatusOpen}, Dst: models.ShiftStatusClosed},
		},
		fsm.Callbacks{},
	)

	return sfsm
}

// Close transitions the shift to closed state
func (s *ShiftFSM) Close(ctx context.Context) error {
	if !s.shift.MayClose() {
		return fmt.Errorf("shift cannot be closed in current state: %s", s.shift.Status)
	}

	if err := s.fsm.Event(ctx, "close"); err != nil {
		return fmt.Errorf("failed to close shift: %w", err)
	}

	s.shift.Status = s.fsm.Current()
	return nil
}

// Current returns the current state
func (s *ShiftFSM) Current() string {
	return s.fsm.Current()
}

// Can checks if a transition is possible
func (s *ShiftFSM) Can(event string) bool {
	return s.fsm.Can(event)
}
