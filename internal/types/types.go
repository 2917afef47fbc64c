// Package types holds the websocket feed frames.
//
// Client -> Server
//
//	Ping: {} (asks for a fresh StateSnapshot)
//
// Server -> Client
//
//	StateSnapshot:
//	  game: string
//	  version: number
//	  state: queue or bracket document, same shape as GET /api/game-state
//
//	Error:
//	  error: string
package types

import "github.com/DoyleJ11/pokeduel-backend/internal/engine"

const (
	MsgStateSnapshot = "StateSnapshot"
	MsgError         = "Error"
	MsgPing          = "Ping"
)

type ClientMessage struct {
	Type string `json:"type"` // "Ping"
}

type ServerMessage struct {
	Type    string        `json:"type"` // "StateSnapshot" | "Error"
	Game    string        `json:"game,omitempty"`
	Version int           `json:"version"`
	State   *engine.State `json:"state,omitempty"`
	Error   string        `json:"error,omitempty"`
}
