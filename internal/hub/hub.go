package hub

import (
	"context"

	"github.com/DoyleJ11/pokeduel-backend/internal/session"
)

type HubMsg interface{ isHubMsg() }

// Factory builds the session for a game name. It returns nil for names the
// server does not host.
type Factory func(ctx context.Context, name string) *session.Session

type GetSession struct {
	Name  string
	Reply chan *session.Session
}

type EnsureSession struct {
	Name  string
	Reply chan *session.Session
}

type RemoveSession struct {
	Name string
}

type ShutdownHub struct{}

type Hub struct {
	inbox    chan HubMsg
	sessions map[string]*session.Session
	factory  Factory
	ctx      context.Context
	cancel   context.CancelFunc
}

func (GetSession) isHubMsg()    {}
func (EnsureSession) isHubMsg() {}
func (RemoveSession) isHubMsg() {}
func (ShutdownHub) isHubMsg()   {}

func NewHub(parent context.Context, factory Factory) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		sessions: make(map[string]*session.Session),
		factory:  factory,
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Session returns the running session for name, creating it on first use.
// The result is nil for unknown games or once the hub is shut down.
func (h *Hub) Session(ctx context.Context, name string) *session.Session {
	reply := make(chan *session.Session, 1)
	select {
	case h.inbox <- EnsureSession{Name: name, Reply: reply}:
	case <-ctx.Done():
		return nil
	case <-h.ctx.Done():
		return nil
	}
	select {
	case s := <-reply:
		return s
	case <-ctx.Done():
		return nil
	case <-h.ctx.Done():
		return nil
	}
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case GetSession:
				msg.Reply <- h.sessions[msg.Name] // May be nil

			case EnsureSession:
				if s := h.sessions[msg.Name]; s != nil {
					msg.Reply <- s
					break
				}
				s := h.factory(h.ctx, msg.Name)
				if s != nil {
					h.sessions[msg.Name] = s
				}
				msg.Reply <- s

			case RemoveSession:
				if s := h.sessions[msg.Name]; s != nil {
					s.Inbox() <- session.Shutdown{}
				}
				delete(h.sessions, msg.Name)

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for _, s := range h.sessions {
		select {
		case s.Inbox() <- session.Shutdown{}:
		default:
			// inbox full; cancelling the hub context still stops it
		}
	}
	clear(h.sessions)
	h.cancel()
}
