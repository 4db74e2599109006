// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Verification outcome labels that are not rejection reasons.
const (
	outcomeValid      = "valid"
	outcomeStoreError = "store_error"
)

// SessionVerifications counts SessionManager.Verify calls by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var SessionVerifications = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chatter_session_verifications_total",
		Help: "Total number of session verifications by outcome",
	},
	[]string{"outcome"},
)

// SessionsCreated counts sessions persisted by SessionManager.Create.
var SessionsCreated = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "chatter_sessions_created_total",
		Help: "Total number of sessions created",
	},
)

// SessionTokenCollisions counts session creations rejected because the token was taken.
var SessionTokenCollisions = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "chatter_session_token_collisions_total",
		Help: "Total number of session token collisions reported by the store",
	},
)

// AuthAttempts counts register and login attempts by result.
var AuthAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chatter_auth_attempts_total",
		Help: "Total number of account operations by operation and result",
	},
	[]string{"operation", "result"},
)

// SessionsSwept counts expired sessions removed by the sweeper.
var SessionsSwept = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "chatter_sessions_swept_total",
		Help: "Total number of expired sessions removed by the sweeper",
	},
)

// SweepFailures counts sweeper runs that failed.
var SweepFailures = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "chatter_session_sweep_failures_total",
		Help: "Total number of failed expired-session sweeps",
	},
)

// RegisterMetrics registers auth package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(SessionVerifications)
	reg.MustRegister(SessionsCreated)
	reg.MustRegister(SessionTokenCollisions)
	reg.MustRegister(AuthAttempts)
	reg.MustRegister(SessionsSwept)
	reg.MustRegister(SweepFailures)
}

func recordVerification(outcome string) {
	SessionVerifications.WithLabelValues(outcome).Inc()
}

func recordAuthAttempt(operation, result string) {
	AuthAttempts.WithLabelValues(operation, result).Inc()
}
