package auth

import "github.com/prometheus/client_golang/prometheus"

const (
	opRegister      = "register"
	opLogin         = "login"
	opForgot        = "forgot_password"
	opReset         = "reset_password"
	opVerifyOtp     = "verify_otp"
	opOtpDispatch   = "otp_dispatch"
	outcomeOk       = "ok"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// Metrics counts auth operations by outcome. Rejected means a client caused
// failure, error an internal one.
type Metrics struct {
	operations *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg when not nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "accounts_auth_operations_total",
				Help: "Total number of auth operations, labeled by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
	}
	if reg != nil {
		if err := reg.Register(m.operations); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) inc(operation, outcome string) {
	m.operations.WithLabelValues(operation, outcome).Inc()
}
