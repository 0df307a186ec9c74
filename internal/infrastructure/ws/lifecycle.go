package ws

import (
	"context"
	"strings"

	"github.com/dkozyar/parlor/internal/domain"
	"github.com/dkozyar/parlor/internal/infrastructure/logging"
	"github.com/dkozyar/parlor/internal/infrastructure/metrics"
)

// SessionState tracks a connection through its lifetime. Left is terminal:
// a connection that left or dropped never rejoins under the same id.
type SessionState int

const (
	StateConnected SessionState = iota
	StateJoined
	StateLeft
)

func (s SessionState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateJoined:
		return "joined"
	case StateLeft:
		return "left"
	}
	return "unknown"
}

// Session is the server-side view of one connection. All mutation happens on
// the connection's read goroutine, so no lock is needed.
type Session struct {
	ID        string
	Transport Transport

	state SessionState
	room  string
}

func (s *Session) State() SessionState { return s.state }
func (s *Session) Room() string        { return s.room }

// Lifecycle drives sessions through join, signaling, chat and departure.
type Lifecycle struct {
	dir     *Directory
	relay   *Relay
	history domain.HistoryRepository
	log     logging.Logger
	metrics *metrics.Signaling
}

func NewLifecycle(
	dir *Directory,
	relay *Relay,
	history domain.HistoryRepository,
	log logging.Logger,
	m *metrics.Signaling,
) *Lifecycle {
	return &Lifecycle{
		dir:     dir,
		relay:   relay,
		history: history,
		log:     log,
		metrics: m,
	}
}

func (l *Lifecycle) NewSession(connID string, t Transport) *Session {
	return &Session{
		ID:        connID,
		Transport: t,
		state:     StateConnected,
	}
}

// HandleMessage dispatches one inbound frame. Frames arriving after the
// session left are discarded.
func (l *Lifecycle) HandleMessage(ctx context.Context, s *Session, msg *Message) {
	if s.state == StateLeft {
		return
	}

	switch msg.Type {
	case RoomJoin:
		l.handleJoin(ctx, s, msg)
	case SignalEvent:
		l.handleSignal(s, msg)
	case ChatEvent:
		l.handleChat(ctx, s, msg)
	case RoomLeave:
		l.HandleClose(ctx, s)
		_ = s.Transport.Close()
	default:
		l.metrics.SignalsDropped.WithLabelValues(metrics.DropReasonMalformed).Inc()
		l.log.Debug(logging.Signaling, logging.Routing, "unknown frame type dropped", map[logging.ExtraKey]any{
			logging.ConnectionID: s.ID,
		})
	}
}

func (l *Lifecycle) handleJoin(ctx context.Context, s *Session, msg *Message) {
	roomKey := strings.TrimSpace(msg.Room)
	if roomKey == "" {
		s.Transport.Enqueue(NewErrorMessage("room key is required"))
		return
	}

	sameRoom := s.state == StateJoined && s.room == roomKey

	existing, prevRoom := l.dir.Join(roomKey, s.ID, s.Transport)

	// A join while already elsewhere is a move: the old room sees a normal
	// departure before the new room sees the arrival.
	if prevRoom != "" && prevRoom != roomKey {
		l.relay.RouteRoom(prevRoom, NewMemberLeft(prevRoom, s.ID))
		l.metrics.MembersLeft.Inc()
		if l.dir.RoomSize(prevRoom) == 0 {
			_ = l.history.Drop(ctx, prevRoom)
		}
	}

	s.state = StateJoined
	s.room = roomKey

	ids := make([]string, 0, len(existing))
	for _, m := range existing {
		ids = append(ids, m.ID)
	}
	s.Transport.Enqueue(NewMemberList(roomKey, s.ID, ids))

	l.replayHistory(ctx, s, roomKey)

	if !sameRoom {
		l.relay.RouteBroadcast(roomKey, s.ID, NewMemberJoined(roomKey, s.ID))
		l.metrics.MembersJoined.Inc()
		l.log.Info(logging.Signaling, logging.Membership, "member joined room", map[logging.ExtraKey]any{
			logging.ConnectionID: s.ID,
			logging.RoomKey:      roomKey,
		})
	}
}

// replayHistory sends the retained chat tail to a fresh joiner so the
// conversation has context. Replayed frames carry their original sender ids.
// A chat line fanned out between Join and the Recent read below reaches the
// joiner twice, once live and once replayed; the window is a single handler
// call wide and a repeated chat line is harmless, so no dedup is done.
func (l *Lifecycle) replayHistory(ctx context.Context, s *Session, roomKey string) {
	recent, err := l.history.Recent(ctx, roomKey)
	if err != nil {
		l.log.Error(logging.Signaling, logging.Chat, "history replay failed", map[logging.ExtraKey]any{
			logging.RoomKey:      roomKey,
			logging.ErrorMessage: err.Error(),
		})
		return
	}
	for i := range recent {
		s.Transport.Enqueue(NewChatMessage(roomKey, recent[i].From, recent[i].Body))
	}
}

func (l *Lifecycle) handleSignal(s *Session, msg *Message) {
	if s.state != StateJoined {
		l.metrics.SignalsDropped.WithLabelValues(metrics.DropReasonNotJoined).Inc()
		return
	}
	if !msg.Kind.Valid() {
		l.metrics.SignalsDropped.WithLabelValues(metrics.DropReasonMalformed).Inc()
		return
	}
	l.relay.RouteTargeted(s.room, s.ID, msg)
}

func (l *Lifecycle) handleChat(ctx context.Context, s *Session, msg *Message) {
	if s.state != StateJoined {
		l.metrics.SignalsDropped.WithLabelValues(metrics.DropReasonNotJoined).Inc()
		return
	}

	if err := l.history.Append(ctx, &domain.ChatMessage{
		RoomKey: s.room,
		From:    s.ID,
		Body:    msg.Body,
	}); err != nil {
		l.log.Error(logging.Signaling, logging.Chat, "history append failed", map[logging.ExtraKey]any{
			logging.RoomKey:      s.room,
			logging.ErrorMessage: err.Error(),
		})
	}

	l.relay.RouteRoom(s.room, NewChatMessage(s.room, s.ID, msg.Body))
	l.metrics.ChatMessages.Inc()
}

// HandleClose detaches the session from its room and announces the
// departure. Safe to call more than once; only the first call does work.
func (l *Lifecycle) HandleClose(ctx context.Context, s *Session) {
	if s.state == StateLeft {
		return
	}
	wasJoined := s.state == StateJoined
	room := s.room
	s.state = StateLeft

	if !wasJoined {
		return
	}

	if _, ok := l.dir.Leave(room, s.ID); !ok {
		return
	}

	l.relay.RouteRoom(room, NewMemberLeft(room, s.ID))
	l.metrics.MembersLeft.Inc()
	l.log.Info(logging.Signaling, logging.Membership, "member left room", map[logging.ExtraKey]any{
		logging.ConnectionID: s.ID,
		logging.RoomKey:      room,
	})

	if l.dir.RoomSize(room) == 0 {
		_ = l.history.Drop(ctx, room)
	}
}
