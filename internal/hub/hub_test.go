package hub

import (
	"context"
	"testing"

	"github.com/DoyleJ11/pokeduel-backend/internal/engine"
	"github.com/DoyleJ11/pokeduel-backend/internal/session"
	"github.com/DoyleJ11/pokeduel-backend/internal/storage"
)

type emptyRoster struct{}

func (emptyRoster) Fetch(ctx context.Context) []engine.Entity { return nil }

func testFactory(built *int) Factory {
	store := storage.NewMemoryStore()
	return func(ctx context.Context, name string) *session.Session {
		if name != "swipe" {
			return nil
		}
		*built++
		return session.New(ctx, session.Config{
			Name:   name,
			Engine: engine.New(engine.VariantQueue, emptyRoster{}),
			Store:  store,
		})
	}
}

func TestHub_Ensure_Get_SamePointer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	built := 0
	h := NewHub(ctx, testFactory(&built))

	s1 := h.Session(ctx, "swipe")

	reply := make(chan *session.Session, 1)
	h.Inbox() <- GetSession{Name: "swipe", Reply: reply}
	s2 := <-reply

	if s1 == nil || s2 == nil || s1 != s2 {
		t.Fatalf("expected same session pointer")
	}
	if h.Session(ctx, "swipe") != s1 {
		t.Fatalf("ensure must reuse the running session")
	}
	if built != 1 {
		t.Fatalf("factory called %d times, want 1", built)
	}
}

func TestHub_UnknownGameIsNil(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	built := 0
	h := NewHub(ctx, testFactory(&built))

	if s := h.Session(ctx, "chess"); s != nil {
		t.Fatalf("expected nil session for unknown game")
	}
}

func TestHub_RemoveThenEnsureRebuilds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	built := 0
	h := NewHub(ctx, testFactory(&built))

	s1 := h.Session(ctx, "swipe")
	h.Inbox() <- RemoveSession{Name: "swipe"}
	s2 := h.Session(ctx, "swipe")

	if s1 == s2 {
		t.Fatalf("expected a fresh session after remove")
	}
	if built != 2 {
		t.Fatalf("factory called %d times, want 2", built)
	}
}

func TestHub_ShutdownStopsServing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	built := 0
	h := NewHub(ctx, testFactory(&built))
	_ = h.Session(ctx, "swipe")

	h.Inbox() <- ShutdownHub{}
	<-h.ctx.Done()

	if s := h.Session(ctx, "swipe"); s != nil {
		t.Fatalf("expected nil session after shutdown")
	}
}
