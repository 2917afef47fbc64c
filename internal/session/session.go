package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/DoyleJ11/pokeduel-backend/internal/engine"
	"github.com/DoyleJ11/pokeduel-backend/internal/storage"
)

var ErrClosed = errors.New("session closed")

type Msg interface{ isSessionMsg() }

// Do runs one engine command through a full load-mutate-store cycle.
type Do struct {
	Cmd   engine.Command
	Reply chan Result
}

func (Do) isSessionMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isSessionMsg() {}

type Leave struct{ ClientID string }

func (Leave) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isSessionMsg() {}

type Snapshot struct {
	Version int
	State   engine.State
}

type View struct {
	Version    int
	NumClients int
	State      engine.State
}

type Result struct {
	Outcome engine.Outcome
	State   engine.State
	Version int
	Err     error
}

type Config struct {
	Name   string
	Key    string // document key in the store
	Engine *engine.Engine
	Store  storage.DocumentStore
	Logger *zap.Logger
}

// Session owns one game's document. All commands go through its inbox, so
// loads and stores for that game never interleave.
type Session struct {
	name    string
	key     string
	engine  *engine.Engine
	store   storage.DocumentStore
	log     *zap.Logger
	inbox   chan Msg
	version int
	clients map[string]chan Snapshot
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(parent context.Context, cfg Config) *Session {
	ctx, cancel := context.WithCancel(parent)
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	key := cfg.Key
	if key == "" {
		key = cfg.Name
	}

	s := &Session{
		name:    cfg.Name,
		key:     key,
		engine:  cfg.Engine,
		store:   cfg.Store,
		log:     log.With(zap.String("game", cfg.Name)),
		inbox:   make(chan Msg, 64),
		clients: make(map[string]chan Snapshot),
		ctx:     ctx,
		cancel:  cancel,
	}

	go s.loop()
	return s
}

func (s *Session) Name() string { return s.name }

func (s *Session) Variant() engine.Variant { return s.engine.Variant() }

// Inbox is exposed so the websocket layer and tests can talk to the actor.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Do sends cmd and waits for the result or for ctx to end.
func (s *Session) Do(ctx context.Context, cmd engine.Command) Result {
	reply := make(chan Result, 1)
	select {
	case s.inbox <- Do{Cmd: cmd, Reply: reply}:
	case <-ctx.Done():
		return Result{Err: ctx.Err()}
	case <-s.ctx.Done():
		return Result{Err: ErrClosed}
	}
	select {
	case res := <-reply:
		return res
	case <-ctx.Done():
		return Result{Err: ctx.Err()}
	case <-s.ctx.Done():
		return Result{Err: ErrClosed}
	}
}

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Do:
				msg.Reply <- s.handle(msg.Cmd)

			case Join:
				s.clients[msg.ClientID] = msg.Outbox
				st, err := s.load()
				if err != nil {
					s.log.Error("load state for new watcher", zap.Error(err))
					break
				}
				msg.Outbox <- Snapshot{Version: s.version, State: st}

			case Leave:
				delete(s.clients, msg.ClientID)

			case GetState:
				st, err := s.load()
				if err != nil {
					s.log.Error("load state", zap.Error(err))
				}
				msg.Reply <- View{
					Version:    s.version,
					NumClients: len(s.clients),
					State:      st,
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Session) handle(cmd engine.Command) Result {
	st, err := s.load()
	if err != nil {
		s.log.Error("load state", zap.Error(err), zap.String("cmd", string(cmd.Type)))
		return Result{Err: err, Version: s.version}
	}

	out, cmdErr := s.engine.Apply(s.ctx, &st, cmd)
	if out.Mutated {
		if err := storage.SaveJSON(s.ctx, s.store, s.key, st); err != nil {
			s.log.Error("save state", zap.Error(err), zap.String("cmd", string(cmd.Type)))
			return Result{Err: fmt.Errorf("save %s: %w", s.key, err), Version: s.version}
		}
		s.version++
		s.broadcast(Snapshot{Version: s.version, State: st})
		s.log.Debug("state updated",
			zap.String("cmd", string(cmd.Type)),
			zap.Int("version", s.version),
			zap.Int("round", st.CurrentRound),
		)
	}

	return Result{Outcome: out, State: st, Version: s.version, Err: cmdErr}
}

// load reads the whole document; a missing one starts a fresh game.
func (s *Session) load() (engine.State, error) {
	var st engine.State
	err := storage.LoadJSON(s.ctx, s.store, s.key, &st)
	if errors.Is(err, storage.ErrNotFound) {
		return s.engine.NewState(), nil
	}
	if err != nil {
		return engine.State{}, err
	}
	if st.Variant == "" {
		st.Variant = s.engine.Variant()
	}
	if st.Variant != s.engine.Variant() {
		return engine.State{}, fmt.Errorf("document %s holds a %q game, want %q", s.key, st.Variant, s.engine.Variant())
	}
	return st, nil
}

func (s *Session) shutdown() {
	for id, ch := range s.clients {
		close(ch) // Tell client no more snapshots
		delete(s.clients, id)
	}
	s.cancel()
}

func (s *Session) broadcast(snap Snapshot) {
	for id, ch := range s.clients {
		select {
		case ch <- snap:
			//ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(s.clients, id)
		}
	}
}
