package codec

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for codec operations. A nil *Metrics
// records nothing.
type Metrics struct {
	decoded     *prometheus.CounterVec // by factory
	encoded     prometheus.Counter
	errors      *prometheus.CounterVec // by op and class
	unknownTags prometheus.Counter
	sniffed     *prometheus.CounterVec   // by factory
	duration    *prometheus.HistogramVec // by op
}

// NewMetrics creates the codec metrics and registers them with reg. Metrics
// already registered by another codec on the same registry are shared.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil // Metrics disabled
	}

	m := &Metrics{
		decoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semactivity",
			Subsystem: "codec",
			Name:      "documents_decoded_total",
			Help:      "Total number of documents decoded, by resulting factory",
		}, []string{"factory"}),

		encoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "semactivity",
			Subsystem: "codec",
			Name:      "documents_encoded_total",
			Help:      "Total number of documents encoded",
		}),

		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semactivity",
			Subsystem: "codec",
			Name:      "errors_total",
			Help:      "Total number of codec errors",
		}, []string{"op", "class"}), // class: malformed, construction, type_mismatch, io

		unknownTags: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "semactivity",
			Subsystem: "codec",
			Name:      "unknown_type_tags_total",
			Help:      "Total number of type tags resolved to the generic document",
		}),

		sniffed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semactivity",
			Subsystem: "codec",
			Name:      "sniffed_total",
			Help:      "Total number of untagged documents typed by shape",
		}, []string{"factory"}),

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "semactivity",
			Subsystem: "codec",
			Name:      "duration_seconds",
			Help:      "Codec operation duration in seconds",
			Buckets:   []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"op"}),
	}

	var err error
	if m.decoded, err = register(reg, m.decoded); err != nil {
		return nil, err
	}
	if m.encoded, err = register(reg, m.encoded); err != nil {
		return nil, err
	}
	if m.errors, err = register(reg, m.errors); err != nil {
		return nil, err
	}
	if m.unknownTags, err = register(reg, m.unknownTags); err != nil {
		return nil, err
	}
	if m.sniffed, err = register(reg, m.sniffed); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg, returning the existing collector when an
// identical one is already registered.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) recordDecode(factory string, d time.Duration) {
	if m == nil {
		return
	}
	m.decoded.WithLabelValues(factory).Inc()
	m.duration.WithLabelValues("decode").Observe(d.Seconds())
}

func (m *Metrics) recordEncode(d time.Duration) {
	if m == nil {
		return
	}
	m.encoded.Inc()
	m.duration.WithLabelValues("encode").Observe(d.Seconds())
}

func (m *Metrics) recordError(op string, err error) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(op, errorClass(err)).Inc()
}

func (m *Metrics) recordUnknownTag() {
	if m == nil {
		return
	}
	m.unknownTags.Inc()
}

func (m *Metrics) recordSniffed(factory string) {
	if m == nil {
		return
	}
	m.sniffed.WithLabelValues(factory).Inc()
}
