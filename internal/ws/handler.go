package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/pokeduel-backend/internal/hub"
	"github.com/DoyleJ11/pokeduel-backend/internal/session"
	"github.com/DoyleJ11/pokeduel-backend/internal/types"
)

// Handler streams state snapshots of one game: GET /ws?game=swipe.
func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		game := r.URL.Query().Get("game")
		if game == "" {
			http.Error(w, "missing game", http.StatusBadRequest)
			return
		}

		sess := h.Session(r.Context(), game)
		if sess == nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			log.Warn("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan session.Snapshot, 8)
		clientID := uuid.NewString()

		sess.Inbox() <- session.Join{ClientID: clientID, Outbox: out}
		defer func() {
			select {
			case sess.Inbox() <- session.Leave{ClientID: clientID}:
			case <-time.After(time.Second):
			}
		}()
		log.Debug("watcher joined", zap.String("game", game), zap.String("client_id", clientID))

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for {
				var snap session.Snapshot
				select {
				case s, ok := <-out:
					if !ok {
						return
					}
					snap = s
				case <-writeCtx.Done():
					return
				}
				msg := types.ServerMessage{Type: types.MsgStateSnapshot, Game: game, Version: snap.Version, State: &snap.State}
				payload, _ := json.Marshal(msg)
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop
		for {
			ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("watcher read ended", zap.String("game", game), zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(r.Context(), conn, "bad json")
				continue
			}

			switch cm.Type {
			case types.MsgPing:
				reply := make(chan session.View, 1)
				sess.Inbox() <- session.GetState{Reply: reply}
				var view session.View
				select {
				case view = <-reply:
				case <-r.Context().Done():
					return
				}
				msg := types.ServerMessage{Type: types.MsgStateSnapshot, Game: game, Version: view.Version, State: &view.State}
				payload, _ := json.Marshal(msg)
				_ = conn.Write(r.Context(), websocket.MessageText, payload)
			default:
				writeError(r.Context(), conn, "unknown type")
			}
		}
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, msg string) {
	payload, _ := json.Marshal(types.ServerMessage{Type: types.MsgError, Error: msg})
	_ = conn.Write(ctx, websocket.MessageText, payload)
}
