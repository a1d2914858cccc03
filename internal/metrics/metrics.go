// Package metrics exposes SafeMail's admission and stamp counters via
// prometheus/client_golang, the ambient observability stack named in the
// cryptography/messaging corpus's domain dependencies.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesAdmitted counts successful sends, partitioned by stamp kind.
	MessagesAdmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safemail_messages_admitted_total",
		Help: "Messages accepted into a recipient's mailbox, by stamp kind.",
	}, []string{"stamp_kind"})

	// MessagesRejected counts failed sends, partitioned by the domain error category.
	MessagesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safemail_messages_rejected_total",
		Help: "Messages rejected at admission, by error category.",
	}, []string{"category"})

	// StampsIssued counts system-signed one-time stamps minted.
	StampsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safemail_stamps_issued_total",
		Help: "System-signed one-time stamps issued.",
	})

	// ProofOfWorkOutcomes counts issue_system_stamp proof-of-work checks by outcome.
	ProofOfWorkOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safemail_proof_of_work_outcomes_total",
		Help: "Proof-of-work submissions against an open stamp request, by outcome.",
	}, []string{"outcome"})

	// SessionsActivated counts successful session activations.
	SessionsActivated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safemail_sessions_activated_total",
		Help: "Sessions that completed challenge-signature activation.",
	})
)
