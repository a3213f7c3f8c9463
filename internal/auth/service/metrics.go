package service

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the service counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	Signups   *prometheus.CounterVec
	Signins   *prometheus.CounterVec
	Refreshes *prometheus.CounterVec
	Resets    *prometheus.CounterVec
	Mail      *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "signups_total",
			Help:      "Signup attempts by result.",
		}, []string{"result"}),
		Signins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "signins_total",
			Help:      "Signin attempts by result.",
		}, []string{"result"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "refreshes_total",
			Help:      "Refresh token rotations by result.",
		}, []string{"result"}),
		Resets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "password_resets_total",
			Help:      "Password reset steps by stage and result.",
		}, []string{"stage", "result"}),
		Mail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "mail_sent_total",
			Help:      "Mail delivery attempts by template and result.",
		}, []string{"template", "result"}),
	}

	reg.MustRegister(m.Signups, m.Signins, m.Refreshes, m.Resets, m.Mail)
	return m
}

func (m *Metrics) signup(result string) {
	if m != nil {
		m.Signups.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) signin(result string) {
	if m != nil {
		m.Signins.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) refresh(result string) {
	if m != nil {
		m.Refreshes.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) reset(stage, result string) {
	if m != nil {
		m.Resets.WithLabelValues(stage, result).Inc()
	}
}

func (m *Metrics) mail(template string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Mail.WithLabelValues(template, result).Inc()
}
