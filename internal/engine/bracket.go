package engine

import (
	"context"
	"fmt"
)

func (e *Engine) initBracketRound(ctx context.Context, s *State) {
	var pool []Entity
	if s.CurrentRound == 1 {
		pool = e.roster.Fetch(ctx)
	} else {
		pool = cloneEntities(s.Winners)
	}
	s.Active = e.perm.Permute(pool)
	if s.Active == nil {
		s.Active = []Entity{}
	}
	s.Winners = []Entity{}
	e.record(s, len(s.Active))
}

func (e *Engine) CurrentMatch(s *State) (Match, error) {
	if err := e.requireVariant(VariantBracket); err != nil {
		return Match{}, err
	}
	if len(s.Active) < 2 {
		return Match{}, fmt.Errorf("%w: no matches left in this round", ErrNotFound)
	}
	return Match{
		First:            s.Active[0],
		Second:           s.Active[1],
		RemainingMatches: len(s.Active) / 2,
	}, nil
}

func (e *Engine) ChooseWinner(s *State, side Side) (ChoiceResult, error) {
	if err := e.requireVariant(VariantBracket); err != nil {
		return ChoiceResult{}, err
	}
	if side != SideFirst && side != SideSecond {
		return ChoiceResult{}, fmt.Errorf("%w: choice must be %q or %q", ErrInvalidArgument, SideFirst, SideSecond)
	}
	m, err := e.CurrentMatch(s)
	if err != nil {
		return ChoiceResult{}, err
	}

	winner, loser := m.First, m.Second
	if side == SideSecond {
		winner, loser = m.Second, m.First
	}
	s.Winners = append(s.Winners, winner)
	s.Active = s.Active[2:]

	return ChoiceResult{
		Winner:           winner,
		Loser:            loser,
		RemainingMatches: len(s.Active) / 2,
		WinnersCount:     len(s.Winners),
	}, nil
}

func (e *Engine) advanceBracket(ctx context.Context, s *State) error {
	// Odd bracket: the leftover entity gets a bye.
	if len(s.Active) == 1 {
		s.Winners = append(s.Winners, s.Active[0])
		s.Active = []Entity{}
	}
	if len(s.Active) > 0 {
		return fmt.Errorf("%w: round not finished, %d matches remaining", ErrInvalidState, len(s.Active)/2)
	}
	if len(s.Winners) < 2 {
		return fmt.Errorf("%w: tournament complete, not enough winners for another round", ErrInvalidState)
	}
	s.CurrentRound++
	e.InitializeRound(ctx, s)
	return nil
}
