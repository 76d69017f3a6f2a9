// Package metrics declares the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "absensi_registrations_total",
		Help: "Users registered, by role.",
	}, []string{"role"})

	CheckIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "absensi_checkins_total",
		Help: "Attendance check-ins, by role and outcome.",
	}, []string{"role", "outcome"})

	Agendas = promauto.NewCounter(prometheus.CounterOpts{
		Name: "absensi_teaching_agendas_total",
		Help: "Teaching agendas submitted.",
	})

	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "absensi_logins_total",
		Help: "Login attempts, by outcome.",
	}, []string{"outcome"})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "absensi_http_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	})

	Requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "absensi_http_requests_total",
		Help: "HTTP requests, by route and status code.",
	}, []string{"route", "code"})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "absensi_notifications_total",
		Help: "Check-in notifications, by result.",
	}, []string{"result"})
)
