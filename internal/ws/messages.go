package ws

import (
	"encoding/json"
	"time"

	"tictactoe_server/internal/domain"
	"tictactoe_server/internal/game"
)

// inbound message types
const (
	TypeAuthenticate = "authenticate"
	TypeFindMatch    = "findMatch"
	TypeMakeMove     = "makeMove"
	TypeSendMessage  = "sendMessage"
)

// outbound message types
const (
	TypeAuthenticated = "authenticated"
	TypeError         = "error"
	TypeSearching     = "searching"
	TypeMatchFound    = "matchFound"
	TypeMoveMade      = "moveMade"
	TypeGameOver      = "gameOver"
	TypeChatMessage   = "chatMessage"
)

// Inbound is the union of every client request; Type selects the fields that matter.
type Inbound struct {
	Type      string `json:"type"`
	Token     string `json:"token,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Position  *int   `json:"position,omitempty"`
	Message   string `json:"message,omitempty"`
}

func decodeInbound(raw []byte) (Inbound, error) {
	var in Inbound
	err := json.Unmarshal(raw, &in)
	return in, err
}

type authenticatedMsg struct {
	Type   string          `json:"type"`
	UserID domain.Identity `json:"userId"`
}

type errorMsg struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type searchingMsg struct {
	Type string `json:"type"`
}

type matchFoundMsg struct {
	Type        string          `json:"type"`
	SessionID   string          `json:"sessionId"`
	Symbol      game.Mark       `json:"symbol"`
	OpponentID  domain.Identity `json:"opponentId"`
	CurrentTurn bool            `json:"currentTurn"`
}

type moveMadeMsg struct {
	Type          string          `json:"type"`
	SessionID     string          `json:"sessionId"`
	Board         game.Board      `json:"board"`
	CurrentPlayer domain.Identity `json:"currentPlayer"`
}

type gameOverMsg struct {
	Type      string           `json:"type"`
	SessionID string           `json:"sessionId"`
	Board     game.Board       `json:"board"`
	Winner    *game.Mark       `json:"winner"`
	WinnerID  *domain.Identity `json:"winnerId"`
	Reason    string           `json:"reason,omitempty"`
}

type chatMsg struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	UserID    domain.Identity `json:"userId"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
}

// reasons attached to gameOver
const (
	ReasonOpponentLeft = "opponent_left"
	ReasonAbandoned    = "abandoned"
)

func newGameOver(sess *game.Session, reason string) gameOverMsg {
	msg := gameOverMsg{
		Type:      TypeGameOver,
		SessionID: sess.ID,
		Board:     sess.Board,
		Reason:    reason,
	}
	if sess.Winner != "" {
		mark := sess.MarkOf(sess.Winner)
		winner := sess.Winner
		msg.Winner = &mark
		msg.WinnerID = &winner
	}
	return msg
}
