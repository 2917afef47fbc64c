package engine

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("not found")
var ErrInvalidState = errors.New("invalid state")
var ErrInvalidArgument = errors.New("invalid argument")
var ErrWrongVariant = errors.New("operation not supported by this game")
var ErrUnsupportedCommand = errors.New("unsupported command")

type Variant string

const (
	VariantQueue   Variant = "queue"
	VariantBracket Variant = "bracket"
)

func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantQueue, VariantBracket:
		return Variant(s), nil
	default:
		return "", fmt.Errorf("%w: unknown variant %q", ErrInvalidArgument, s)
	}
}

type Side string

const (
	SideFirst  Side = "pokemon1"
	SideSecond Side = "pokemon2"
)

// Entity is one roster creature. Entities are never mutated once fetched.
type Entity struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

type RoundRecord struct {
	RoundNumber int       `json:"round_number"`
	EntityCount int       `json:"entity_count"`
	StartedAt   time.Time `json:"started_at"`
}

// RosterSource supplies the round 1 roster. Implementations degrade to a
// fallback list instead of failing.
type RosterSource interface {
	Fetch(ctx context.Context) []Entity
}

// Permuter reorders a bracket before each round.
type Permuter interface {
	Permute(entities []Entity) []Entity
}

type Match struct {
	First            Entity `json:"pokemon1"`
	Second           Entity `json:"pokemon2"`
	RemainingMatches int    `json:"remaining_matches"`
}

type ChoiceResult struct {
	Winner           Entity `json:"winner"`
	Loser            Entity `json:"loser"`
	RemainingMatches int    `json:"remaining_matches"`
	WinnersCount     int    `json:"winners_count"`
}

type CommandType string

const (
	CmdEnsureStarted CommandType = "EnsureStarted"
	CmdGetState      CommandType = "GetState"
	CmdPeek          CommandType = "Peek"
	CmdPeekAt        CommandType = "PeekAt"
	CmdPass          CommandType = "Pass"
	CmdEliminate     CommandType = "Eliminate"
	CmdCurrentMatch  CommandType = "CurrentMatch"
	CmdChoose        CommandType = "Choose"
	CmdAdvanceRound  CommandType = "AdvanceRound"
	CmdReset         CommandType = "Reset"
)

type Command struct {
	Type  CommandType
	Index int
	Side  Side
}

// Outcome carries whatever a command produced. Mutated tells the caller
// whether the state document has to be written back.
type Outcome struct {
	Mutated bool
	Entity  *Entity
	Match   *Match
	Choice  *ChoiceResult
}

type Engine struct {
	variant Variant
	roster  RosterSource
	perm    Permuter
	now     func() time.Time
}

type Option func(*Engine)

func WithPermuter(p Permuter) Option {
	return func(e *Engine) { e.perm = p }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(variant Variant, roster RosterSource, opts ...Option) *Engine {
	e := &Engine{
		variant: variant,
		roster:  roster,
		perm:    ShufflePermuter{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Variant() Variant { return e.variant }

// NewState returns the empty document for this engine's variant.
func (e *Engine) NewState() State {
	return NewEmptyState(e.variant)
}

func (e *Engine) Apply(ctx context.Context, s *State, cmd Command) (Outcome, error) {
	switch cmd.Type {
	case CmdGetState:
		return Outcome{}, nil

	case CmdEnsureStarted:
		if len(s.History) > 0 {
			return Outcome{}, nil
		}
		e.InitializeRound(ctx, s)
		return Outcome{Mutated: true}, nil

	case CmdPeek:
		ent, err := e.PeekCurrent(s)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Entity: &ent}, nil

	case CmdPeekAt:
		ent, err := e.PeekAt(s, cmd.Index)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Entity: &ent}, nil

	case CmdPass:
		ent, err := e.Pass(s)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Mutated: true, Entity: &ent}, nil

	case CmdEliminate:
		ent, err := e.Eliminate(s)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Mutated: true, Entity: &ent}, nil

	case CmdCurrentMatch:
		m, err := e.CurrentMatch(s)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Match: &m}, nil

	case CmdChoose:
		res, err := e.ChooseWinner(s, cmd.Side)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Mutated: true, Choice: &res}, nil

	case CmdAdvanceRound:
		before := len(s.Winners)
		err := e.AdvanceRound(ctx, s)
		// A bye is kept even when the advance itself is refused.
		mutated := err == nil || len(s.Winners) != before
		return Outcome{Mutated: mutated}, err

	case CmdReset:
		e.Reset(ctx, s)
		return Outcome{Mutated: true}, nil

	default:
		return Outcome{}, ErrUnsupportedCommand
	}
}

// InitializeRound fills the playing list for s.CurrentRound and records the
// round start. An empty roster leaves the round empty.
func (e *Engine) InitializeRound(ctx context.Context, s *State) {
	switch e.variant {
	case VariantQueue:
		e.initQueueRound(ctx, s)
	case VariantBracket:
		e.initBracketRound(ctx, s)
	}
}

func (e *Engine) AdvanceRound(ctx context.Context, s *State) error {
	switch e.variant {
	case VariantQueue:
		return e.advanceQueue(ctx, s)
	case VariantBracket:
		return e.advanceBracket(ctx, s)
	default:
		return ErrWrongVariant
	}
}

func (e *Engine) Reset(ctx context.Context, s *State) {
	*s = e.NewState()
	e.InitializeRound(ctx, s)
}

func (e *Engine) record(s *State, count int) {
	s.History = append(s.History, RoundRecord{
		RoundNumber: s.CurrentRound,
		EntityCount: count,
		StartedAt:   e.now().UTC(),
	})
}

func (e *Engine) requireVariant(v Variant) error {
	if e.variant != v {
		return fmt.Errorf("%w: %s game", ErrWrongVariant, e.variant)
	}
	return nil
}
