package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"svw.info/propagenda/internal/domain"
	"svw.info/propagenda/internal/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// A full 5x5 board of objects fits comfortably.
	maxMessageSize = 16 * 1024
)

// Client message types.
const (
	MsgBoard   = "board"
	MsgAdvance = "advance"
	MsgRestart = "restart"
)

// Server message types.
const (
	MsgAgenda   = "agenda"
	MsgVerdict  = "verdict"
	MsgComplete = "complete"
	MsgError    = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ClientMessage is a command sent by the player.
type ClientMessage struct {
	Type    string               `json:"type"`
	Objects []domain.BoardObject `json:"objects,omitempty"`
}

// ServerMessage is every frame the server sends; unused fields are omitted.
type ServerMessage struct {
	Type      string             `json:"type"`
	Session   string             `json:"session"`
	Agenda    *domain.Agenda     `json:"agenda,omitempty"`
	Round     int                `json:"round,omitempty"`
	Rounds    int                `json:"rounds,omitempty"`
	Satisfied bool               `json:"satisfied"`
	Hints     []string           `json:"hints,omitempty"`
	Conflicts []domain.CellCoord `json:"conflicts,omitempty"`
	Stats     *domain.GameStats  `json:"stats,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// session is one player's game: the current agenda, what has been completed,
// and whether the last submitted board satisfied the current agenda.
type session struct {
	id     string
	h      *Handler
	conn   *websocket.Conn
	logger *slog.Logger

	progress  domain.GameProgress
	current   *domain.Agenda
	satisfied bool

	started time.Time
	moves   int
	placed  map[string]struct{}
}

// resetStats starts the clock and clears the move and placement counters.
func (s *session) resetStats() {
	s.started = time.Now()
	s.moves = 0
	s.placed = make(map[string]struct{})
}

func (s *session) stats() *domain.GameStats {
	d := time.Since(s.started)
	secs := int64(d / time.Second)
	return &domain.GameStats{
		TotalMoves:    s.moves,
		ObjectsPlaced: len(s.placed),
		TimeTakenMs:   d.Milliseconds(),
		TimeTaken:     fmt.Sprintf("%d:%02d", secs/60, secs%60),
	}
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Error("websocket upgrade", "err", err)
		return
	}
	id := uuid.NewString()
	s := &session{id: id, h: h, conn: conn, logger: h.Logger.With("session", id)}
	s.resetStats()

	metrics.SessionOpened()
	defer metrics.SessionClosed()
	s.logger.Info("session opened", "remote", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go s.ping(ctx)

	s.run(ctx)
	_ = conn.Close()
	s.logger.Info("session closed", "completed", len(s.progress.Completed))
}

func (s *session) run(ctx context.Context) {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	if err := s.pick(); err != nil {
		return
	}
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("session read", "err", err)
			}
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			if s.fail("invalid message: "+err.Error()) != nil {
				return
			}
			continue
		}
		if err := s.handle(ctx, msg); err != nil {
			s.logger.Warn("session write", "err", err)
			return
		}
	}
}

func (s *session) handle(ctx context.Context, msg ClientMessage) error {
	switch msg.Type {
	case MsgBoard:
		return s.evaluate(ctx, msg.Objects)
	case MsgAdvance:
		if s.current == nil {
			return s.fail("game is over")
		}
		if !s.satisfied {
			return s.fail("current agenda is not satisfied yet")
		}
		s.progress.Complete(s.current.ID)
		return s.pick()
	case MsgRestart:
		s.progress.Reset()
		s.resetStats()
		return s.pick()
	default:
		return s.fail(fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

func (s *session) evaluate(ctx context.Context, objects []domain.BoardObject) error {
	if s.current == nil {
		return s.fail("game is over")
	}
	v, conflicts, err := s.h.UC.Evaluate(ctx, s.current.ID, objects)
	if err != nil {
		s.satisfied = false
		return s.send(ServerMessage{Type: MsgError, Conflicts: conflicts, Error: err.Error()})
	}
	s.satisfied = v.Satisfied
	s.moves++
	for _, o := range objects {
		s.placed[o.ID] = struct{}{}
	}
	return s.send(ServerMessage{
		Type:      MsgVerdict,
		Agenda:    s.current,
		Satisfied: v.Satisfied,
		Hints:     v.Hints,
	})
}

// pick selects the next agenda, or announces victory when none remain.
func (s *session) pick() error {
	s.satisfied = false
	rounds := s.h.UC.Rounds()
	a, ok, err := s.h.UC.Next(s.progress.Completed)
	if err != nil {
		s.current = nil
		return s.fail(err.Error())
	}
	if !ok {
		s.current = nil
		st := s.stats()
		s.logger.Info("game complete", "rounds", len(s.progress.Completed), "moves", st.TotalMoves, "time", st.TimeTaken)
		return s.send(ServerMessage{Type: MsgComplete, Round: len(s.progress.Completed), Rounds: rounds, Stats: st})
	}
	s.current = &a
	s.logger.Debug("agenda selected", "agenda", a.ID, "difficulty", a.Difficulty)
	return s.send(ServerMessage{Type: MsgAgenda, Agenda: &a, Round: len(s.progress.Completed) + 1, Rounds: rounds})
}

func (s *session) fail(reason string) error {
	return s.send(ServerMessage{Type: MsgError, Error: reason})
}

func (s *session) send(m ServerMessage) error {
	m.Session = s.id
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(m)
}

// ping keeps the read deadline alive; WriteControl is safe alongside the reader's writes.
func (s *session) ping(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
				s.logger.Debug("session ping", "err", err)
				return
			}
		}
	}
}
