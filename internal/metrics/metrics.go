package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Gateway holds the collectors for outbound API calls.
type Gateway struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	authFailures prometheus.Counter
}

func NewGateway(reg prometheus.Registerer) *Gateway {
	m := &Gateway{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "joinup_gateway_requests_total",
			Help: "API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "joinup_gateway_request_duration_seconds",
			Help:    "API request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		authFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "joinup_gateway_auth_failures_total",
			Help: "Responses rejected with 401.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration, m.authFailures)
	}
	return m
}

func (m *Gateway) Observe(endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpoint, outcome).Inc()
	m.duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (m *Gateway) AuthFailure() {
	if m == nil {
		return
	}
	m.authFailures.Inc()
}

// Server holds the stub service collectors.
type Server struct {
	attendanceMarks *prometheus.CounterVec
	registrations   *prometheus.CounterVec
}

func NewServer(reg prometheus.Registerer) *Server {
	m := &Server{
		attendanceMarks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "joinup_attendance_marks_total",
			Help: "Attendance mark attempts by result.",
		}, []string{"result"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "joinup_registrations_total",
			Help: "Registration attempts by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.attendanceMarks, m.registrations)
	}
	return m
}

func (m *Server) AttendanceMark(result string) {
	if m == nil {
		return
	}
	m.attendanceMarks.WithLabelValues(result).Inc()
}

func (m *Server) Registration(result string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(result).Inc()
}
