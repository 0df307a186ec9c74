package ws

import (
	"github.com/dkozyar/parlor/internal/infrastructure/logging"
	"github.com/dkozyar/parlor/internal/infrastructure/metrics"
)

// Relay forwards signaling envelopes between members of a room. It never
// inspects payloads and never reports routing misses back to the sender; a
// target that disconnected mid-negotiation is an expected race, not an error.
type Relay struct {
	dir     *Directory
	log     logging.Logger
	metrics *metrics.Signaling
}

func NewRelay(dir *Directory, log logging.Logger, m *metrics.Signaling) *Relay {
	return &Relay{
		dir:     dir,
		log:     log,
		metrics: m,
	}
}

// RouteTargeted delivers the envelope to msg.To in the sender's room,
// stamped with the sender's id so the recipient can correlate replies.
// Returns false when the envelope was dropped.
func (r *Relay) RouteTargeted(roomKey, senderID string, msg *Message) bool {
	if msg.To == "" {
		r.metrics.SignalsDropped.WithLabelValues(metrics.DropReasonUnaddressed).Inc()
		return false
	}

	t, ok := r.dir.Lookup(roomKey, msg.To)
	if !ok {
		// Target already gone; the protocol never reports this to the sender.
		r.metrics.SignalsDropped.WithLabelValues(metrics.DropReasonTargetGone).Inc()
		r.log.Debug(logging.Signaling, logging.Routing, "target not in room, envelope dropped", map[logging.ExtraKey]any{
			logging.RoomKey:      roomKey,
			logging.ConnectionID: senderID,
			logging.TargetID:     msg.To,
		})
		return false
	}

	out := *msg
	out.Room = roomKey
	out.From = senderID

	if !t.Enqueue(&out) {
		r.metrics.SignalsDropped.WithLabelValues(metrics.DropReasonSlowConsumer).Inc()
		r.log.Warn(logging.Signaling, logging.Routing, "recipient buffer full, envelope dropped", map[logging.ExtraKey]any{
			logging.RoomKey:  roomKey,
			logging.TargetID: msg.To,
		})
		return false
	}

	r.metrics.SignalsRelayed.WithLabelValues(string(msg.Kind)).Inc()
	return true
}

// RouteBroadcast delivers the message to every room member except the sender.
func (r *Relay) RouteBroadcast(roomKey, senderID string, msg *Message) {
	for _, m := range r.dir.MembersExcept(roomKey, senderID) {
		if !m.Transport.Enqueue(msg) {
			r.metrics.SignalsDropped.WithLabelValues(metrics.DropReasonSlowConsumer).Inc()
		}
	}
}

// RouteRoom delivers the message to every room member, sender included.
// Chat fanout uses this: clients tell their own lines apart by comparing
// the sender id with their own.
func (r *Relay) RouteRoom(roomKey string, msg *Message) {
	r.RouteBroadcast(roomKey, "", msg)
}
