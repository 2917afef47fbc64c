package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/pokeduel-backend/internal/storage"
)

const DefaultKey = "tasks"

var ErrNotFound = errors.New("task not found")
var ErrInvalidTitle = errors.New("title is required")

type Task struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// Patch holds the fields of an update; nil fields are left alone.
type Patch struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Service) { s.log = log.Named("tasks") }
}

// Service keeps the task list in memory and mirrors it to the store after
// every mutation.
type Service struct {
	mu    sync.Mutex
	items []Task
	store storage.DocumentStore
	key   string
	now   func() time.Time
	log   *zap.Logger
}

func New(ctx context.Context, store storage.DocumentStore, key string, opts ...Option) (*Service, error) {
	if key == "" {
		key = DefaultKey
	}
	s := &Service{
		items: []Task{},
		store: store,
		key:   key,
		now:   time.Now,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	err := storage.LoadJSON(ctx, store, key, &s.items)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	if s.items == nil {
		s.items = []Task{}
	}
	return s, nil
}

func (s *Service) List() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Task, len(s.items))
	copy(out, s.items)
	return out
}

// Create appends a task. The id is len(items)+1, so ids repeat once a task
// has been deleted; clients relying on unique ids will see collisions.
func (s *Service) Create(ctx context.Context, title string) (Task, error) {
	if strings.TrimSpace(title) == "" {
		return Task{}, ErrInvalidTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := Task{
		ID:        len(s.items) + 1,
		Title:     title,
		Completed: false,
		CreatedAt: s.now().UTC(),
	}
	s.items = append(s.items, t)
	if err := s.save(ctx); err != nil {
		return Task{}, err
	}
	s.log.Debug("task created", zap.Int("id", t.ID))
	return t, nil
}

func (s *Service) Update(ctx context.Context, id int, p Patch) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		if p.Title != nil {
			s.items[i].Title = *p.Title
		}
		if p.Completed != nil {
			s.items[i].Completed = *p.Completed
		}
		if err := s.save(ctx); err != nil {
			return Task{}, err
		}
		return s.items[i], nil
	}
	return Task{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
}

// Delete removes every task with id. Deleting a missing id is not an error.
func (s *Service) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0:0]
	for _, t := range s.items {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.items = kept
	return s.save(ctx)
}

func (s *Service) save(ctx context.Context) error {
	if err := storage.SaveJSON(ctx, s.store, s.key, s.items); err != nil {
		s.log.Error("save tasks", zap.Error(err))
		return err
	}
	return nil
}
