package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Signaling bundles the relay's counters. Gauges for live occupancy are
// registered separately via RegisterOccupancy since they read the directory.
type Signaling struct {
	SignalsRelayed *prometheus.CounterVec
	SignalsDropped *prometheus.CounterVec
	MembersJoined  prometheus.Counter
	MembersLeft    prometheus.Counter
	ChatMessages   prometheus.Counter
}

const (
	DropReasonTargetGone   = "target_gone"
	DropReasonUnaddressed  = "unaddressed"
	DropReasonSlowConsumer = "slow_consumer"
	DropReasonMalformed    = "malformed"
	DropReasonNotJoined    = "not_joined"
)

func NewSignaling(reg prometheus.Registerer) *Signaling {
	s := &Signaling{
		SignalsRelayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parlor_signals_relayed_total",
			Help: "Signaling envelopes forwarded to a peer, by payload kind.",
		}, []string{"kind"}),
		SignalsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parlor_signals_dropped_total",
			Help: "Signaling envelopes dropped instead of delivered, by reason.",
		}, []string{"reason"}),
		MembersJoined: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parlor_members_joined_total",
			Help: "Room joins processed.",
		}),
		MembersLeft: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parlor_members_left_total",
			Help: "Room departures processed (explicit or disconnect).",
		}),
		ChatMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parlor_chat_messages_total",
			Help: "Chat messages fanned out to rooms.",
		}),
	}

	reg.MustRegister(
		s.SignalsRelayed,
		s.SignalsDropped,
		s.MembersJoined,
		s.MembersLeft,
		s.ChatMessages,
	)

	return s
}

// RegisterOccupancy exposes live room and member counts from the directory.
func RegisterOccupancy(reg prometheus.Registerer, rooms, members func() float64) {
	reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "parlor_rooms",
			Help: "Rooms with at least one member.",
		}, rooms),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "parlor_members",
			Help: "Connections currently registered in a room.",
		}, members),
	)
}

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
