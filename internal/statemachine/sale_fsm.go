package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/sjperalta/fintera-ledger/internal/models"
)

// SaleFSM wraps a recorded sale with its state machine
type SaleFSM struct {
	sale *models.Sale
	fsm  *fsm.FSM
}

// NewSaleFSM creates a new sale state machine
func NewSaleFSM(sale *models.Sale) *SaleFSM {
	sfsm := &SaleFSM{sale: sale}

	sfsm.fsm = fsm.NewFSM(
		sale.Status,
		fsm.Events{
			{Name: "return", Src: []string{models.SaleStatusCompleted}, Dst: models.SaleStatusReturned},
		},
		fsm.Callbacks{},
	)

	return sfsm
}

// Return transitions the sale to returned state
func (s *SaleFSM) Return(ctx context.Context) error {
	if !s.sale.MayReturn() {
		return fmt.Errorf("sale cannot be returned in current state: %s", s.sale.Status)
	}

	if err := s.fsm.Event(ctx, "return"); err != nil {
		return fmt.Errorf("failed to return sale: %w", err)
	}

	s.sale.Status = s.fsm.Current()
	return nil
}
