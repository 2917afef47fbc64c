package engine

import (
	"context"
	"fmt"
)

func (e *Engine) initQueueRound(ctx context.Context, s *State) {
	if s.CurrentRound == 1 {
		s.Remaining = cloneEntities(e.roster.Fetch(ctx))
	} else {
		s.Remaining = cloneEntities(s.SetAside)
	}
	s.SetAside = []Entity{}
	e.record(s, len(s.Remaining))
}

func (e *Engine) PeekCurrent(s *State) (Entity, error) {
	if err := e.requireVariant(VariantQueue); err != nil {
		return Entity{}, err
	}
	if len(s.Remaining) == 0 {
		return Entity{}, fmt.Errorf("%w: no pokemon left in this round", ErrNotFound)
	}
	return s.Remaining[0], nil
}

// PeekAt looks ahead in the queue without consuming anything.
func (e *Engine) PeekAt(s *State, index int) (Entity, error) {
	if err := e.requireVariant(VariantQueue); err != nil {
		return Entity{}, err
	}
	if index < 0 || index >= len(s.Remaining) {
		return Entity{}, fmt.Errorf("%w: no pokemon at index %d", ErrNotFound, index)
	}
	return s.Remaining[index], nil
}

// Pass defers the current entity to the next round.
func (e *Engine) Pass(s *State) (Entity, error) {
	cur, err := e.PeekCurrent(s)
	if err != nil {
		return Entity{}, err
	}
	s.Remaining = s.Remaining[1:]
	s.SetAside = append(s.SetAside, cur)
	return cur, nil
}

// Eliminate drops the current entity for good.
func (e *Engine) Eliminate(s *State) (Entity, error) {
	cur, err := e.PeekCurrent(s)
	if err != nil {
		return Entity{}, err
	}
	s.Remaining = s.Remaining[1:]
	return cur, nil
}

func (e *Engine) advanceQueue(ctx context.Context, s *State) error {
	if len(s.Remaining) > 0 {
		return fmt.Errorf("%w: round not finished, %d pokemon remaining", ErrInvalidState, len(s.Remaining))
	}
	if len(s.SetAside) == 0 {
		return fmt.Errorf("%w: no pokemon survived this round", ErrInvalidState)
	}
	s.CurrentRound++
	e.InitializeRound(ctx, s)
	return nil
}
