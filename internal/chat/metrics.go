// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package chat

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AuthorizationDenials counts requests rejected by the authorization gate.
// Use RegisterMetrics to register this with a Prometheus registry.
var AuthorizationDenials = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chatter_authorization_denials_total",
		Help: "Total number of requests denied by the authorization gate by operation",
	},
	[]string{"operation"},
)

// GroupsCreated counts groups created through Service.CreateGroup.
var GroupsCreated = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "chatter_groups_created_total",
		Help: "Total number of groups created",
	},
)

// MessagesSent counts messages stored through Service.SendMessage.
var MessagesSent = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "chatter_messages_sent_total",
		Help: "Total number of messages sent",
	},
)

// RegisterMetrics registers chat package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(AuthorizationDenials)
	reg.MustRegister(GroupsCreated)
	reg.MustRegister(MessagesSent)
}
