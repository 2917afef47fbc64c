package engine

import (
	"encoding/json"
	"fmt"
)

// State is the whole mutable document of one game. Only the lists that
// belong to Variant are used: Remaining/SetAside for the queue game,
// Active/Winners for the bracket game.
type State struct {
	Variant      Variant
	CurrentRound int
	Remaining    []Entity
	SetAside     []Entity
	Active       []Entity
	Winners      []Entity
	History      []RoundRecord
}

type queueDoc struct {
	Variant      Variant       `json:"variant"`
	CurrentRound int           `json:"current_round"`
	Remaining    []Entity      `json:"remaining_pokemon"`
	Passed       []Entity      `json:"passed_pokemon"`
	History      []RoundRecord `json:"round_history"`
}

type bracketDoc struct {
	Variant      Variant       `json:"variant"`
	CurrentRound int           `json:"current_round"`
	Active       []Entity      `json:"current_pokemon"`
	Winners      []Entity      `json:"winners"`
	History      []RoundRecord `json:"round_history"`
}

type anyDoc struct {
	Variant      Variant       `json:"variant"`
	CurrentRound int           `json:"current_round"`
	Remaining    []Entity      `json:"remaining_pokemon"`
	Passed       []Entity      `json:"passed_pokemon"`
	Active       []Entity      `json:"current_pokemon"`
	Winners      []Entity      `json:"winners"`
	History      []RoundRecord `json:"round_history"`
}

func (s State) MarshalJSON() ([]byte, error) {
	switch s.Variant {
	case VariantQueue:
		return json.Marshal(queueDoc{
			Variant:      s.Variant,
			CurrentRound: s.CurrentRound,
			Remaining:    nonNil(s.Remaining),
			Passed:       nonNil(s.SetAside),
			History:      nonNilRecords(s.History),
		})
	case VariantBracket:
		return json.Marshal(bracketDoc{
			Variant:      s.Variant,
			CurrentRound: s.CurrentRound,
			Active:       nonNil(s.Active),
			Winners:      nonNil(s.Winners),
			History:      nonNilRecords(s.History),
		})
	default:
		return nil, fmt.Errorf("marshal state: unknown variant %q", s.Variant)
	}
}

func (s *State) UnmarshalJSON(data []byte) error {
	var d anyDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	*s = State{
		Variant:      d.Variant,
		CurrentRound: d.CurrentRound,
		Remaining:    d.Remaining,
		SetAside:     d.Passed,
		Active:       d.Active,
		Winners:      d.Winners,
		History:      d.History,
	}
	if s.CurrentRound < 1 {
		s.CurrentRound = 1
	}
	return nil
}

func nonNil(es []Entity) []Entity {
	if es == nil {
		return []Entity{}
	}
	return es
}

func nonNilRecords(rs []RoundRecord) []RoundRecord {
	if rs == nil {
		return []RoundRecord{}
	}
	return rs
}
