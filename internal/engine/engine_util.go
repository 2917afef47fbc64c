package engine

import "math/rand"

func NewEmptyState(variant Variant) State {
	return State{
		Variant:      variant,
		CurrentRound: 1,
		Remaining:    []Entity{},
		SetAside:     []Entity{},
		Active:       []Entity{},
		Winners:      []Entity{},
		History:      []RoundRecord{},
	}
}

// ShufflePermuter is an unseeded uniform shuffle; order is not reproducible
// across runs.
type ShufflePermuter struct{}

func (ShufflePermuter) Permute(entities []Entity) []Entity {
	out := cloneEntities(entities)
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// IdentityPermuter keeps the order it is given.
type IdentityPermuter struct{}

func (IdentityPermuter) Permute(entities []Entity) []Entity {
	return cloneEntities(entities)
}

func cloneEntities(entities []Entity) []Entity {
	out := make([]Entity, len(entities))
	copy(out, entities)
	return out
}
