package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_PassAllKeepsOrder(t *testing.T) {
	for _, n := range []int{1, 2, 7, 151} {
		e, r := newTestEngine(VariantQueue, n)
		s := startedState(t, e)

		for i := 0; i < n; i++ {
			_, err := e.Pass(&s)
			require.NoError(t, err)
		}

		assert.Empty(t, s.Remaining)
		assert.Equal(t, ids(r.entities), ids(s.SetAside), "n=%d", n)
	}
}

func TestQueue_EliminateShrinksTotal(t *testing.T) {
	e, _ := newTestEngine(VariantQueue, 5)
	s := startedState(t, e)
	_, err := e.Pass(&s)
	require.NoError(t, err)

	for len(s.Remaining) > 0 {
		before := len(s.Remaining) + len(s.SetAside)
		setAside := len(s.SetAside)

		ent, err := e.Eliminate(&s)
		require.NoError(t, err)

		assert.Equal(t, before-1, len(s.Remaining)+len(s.SetAside))
		assert.Equal(t, setAside, len(s.SetAside))
		assert.NotContains(t, ids(s.Remaining), ent.ID)
		assert.NotContains(t, ids(s.SetAside), ent.ID)
	}
}

func TestQueue_EmptyQueueIsNotFound(t *testing.T) {
	e, _ := newTestEngine(VariantQueue, 0)
	s := startedState(t, e)

	_, err := e.PeekCurrent(&s)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.Pass(&s)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.Eliminate(&s)
	assert.ErrorIs(t, err, ErrNotFound)
	require.Len(t, s.History, 1)
	assert.Equal(t, 0, s.History[0].EntityCount)
}

func TestQueue_PeekAt(t *testing.T) {
	e, _ := newTestEngine(VariantQueue, 3)
	s := startedState(t, e)

	cases := []struct {
		name    string
		index   int
		wantID  int
		wantErr bool
	}{
		{name: "head", index: 0, wantID: 1},
		{name: "last", index: 2, wantID: 3},
		{name: "past end", index: 3, wantErr: true},
		{name: "negative", index: -1, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := e.Apply(context.Background(), &s, Command{Type: CmdPeekAt, Index: tc.index})
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.False(t, out.Mutated)
			assert.Equal(t, tc.wantID, out.Entity.ID)
		})
	}
	assert.Len(t, s.Remaining, 3)
}

func TestQueue_AdvanceRoundPreconditions(t *testing.T) {
	e, _ := newTestEngine(VariantQueue, 3)
	s := startedState(t, e)

	// unfinished round
	snapshot := s
	snapshot.Remaining = cloneEntities(s.Remaining)
	out, err := e.Apply(context.Background(), &s, Command{Type: CmdAdvanceRound})
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.False(t, out.Mutated)
	assert.Equal(t, snapshot, s)

	// nobody survived
	for len(s.Remaining) > 0 {
		_, err := e.Eliminate(&s)
		require.NoError(t, err)
	}
	err = e.AdvanceRound(context.Background(), &s)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 1, s.CurrentRound)
	assert.Len(t, s.History, 1)
}

func TestQueue_AdvanceRoundCarriesSetAside(t *testing.T) {
	e, r := newTestEngine(VariantQueue, 4)
	s := startedState(t, e)

	_, _ = e.Pass(&s)      // 1
	_, _ = e.Eliminate(&s) // 2
	_, _ = e.Pass(&s)      // 3
	_, _ = e.Eliminate(&s) // 4

	require.NoError(t, e.AdvanceRound(context.Background(), &s))

	assert.Equal(t, 2, s.CurrentRound)
	assert.Equal(t, []int{1, 3}, ids(s.Remaining))
	assert.Empty(t, s.SetAside)
	assert.Len(t, s.History, 2)
	assert.Equal(t, 2, s.History[1].EntityCount)
	assert.Equal(t, 1, r.calls, "later rounds must not refetch the roster")
}

func TestQueue_RoundCounterAfterKAdvances(t *testing.T) {
	e, _ := newTestEngine(VariantQueue, 3)
	s := startedState(t, e)

	const k = 4
	for i := 0; i < k; i++ {
		for len(s.Remaining) > 0 {
			_, err := e.Pass(&s)
			require.NoError(t, err)
		}
		require.NoError(t, e.AdvanceRound(context.Background(), &s))
	}

	assert.Equal(t, 1+k, s.CurrentRound)
	assert.Len(t, s.History, 1+k)
}
