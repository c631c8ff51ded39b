package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chatIntentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finchat_chat_intents_total",
		Help: "Messages classified per intent",
	}, []string{"intent"})

	chatTurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finchat_chat_turns_total",
		Help: "Chat turns handled, labeled by outcome",
	}, []string{"outcome"})

	pendingActionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "finchat_pending_actions",
		Help: "Actions currently waiting for a sim/não answer",
	})
)

// Turn outcomes used as metric labels.
const (
	outcomeHelp          = "help"
	outcomeConfirmed     = "confirmed"
	outcomeCancelled     = "cancelled"
	outcomeAwaitingReply = "awaiting_reply"
	outcomeStaged        = "staged"
	outcomeMissingAmount = "missing_amount"
	outcomeBalance       = "balance"
	outcomeRecent        = "recent"
	outcomeUnknown       = "unknown"
	outcomeError         = "error"
)
