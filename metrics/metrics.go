package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "prism"

// Metrics holds the Prometheus collectors of a server. A nil *Metrics is valid and records nothing.
type Metrics struct {
	sessions        prometheus.Gauge
	batches         *prometheus.CounterVec
	batchPackets    prometheus.Histogram
	batchDuration   prometheus.Histogram
	packets         *prometheus.CounterVec
	unknownPackets  *prometheus.CounterVec
	decodeErrors    *prometheus.CounterVec
	transactions    *prometheus.CounterVec
	disconnects     *prometheus.CounterVec
	inventoryResend prometheus.Counter
}

// New registers the collectors with reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		sessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Number of connected sessions",
		}),
		batches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Total number of inbound batches by result",
		}, []string{"result"}),
		batchPackets: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_packets",
			Help:      "Number of packets decoded per batch",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1000},
		}),
		batchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Time spent decoding and handling a batch",
			Buckets:   prometheus.DefBuckets,
		}),
		packets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_total",
			Help:      "Total number of decoded packets by type",
		}, []string{"packet"}),
		unknownPackets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_packets_total",
			Help:      "Total number of dropped packets with an unregistered ID",
		}, []string{"id"}),
		decodeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Total number of packets that failed to decode",
		}, []string{"packet"}),
		transactions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Total number of inventory transactions by kind and result",
		}, []string{"kind", "result"}),
		disconnects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disconnects_total",
			Help:      "Total number of forced disconnects by cause",
		}, []string{"cause"}),
		inventoryResend: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_resends_total",
			Help:      "Total number of full inventory resends",
		}),
	}
}

// SessionOpened ...
func (m *Metrics) SessionOpened() {
	if m != nil {
		m.sessions.Inc()
	}
}

// SessionClosed ...
func (m *Metrics) SessionClosed() {
	if m != nil {
		m.sessions.Dec()
	}
}

// Batch records a handled batch.
func (m *Metrics) Batch(packets int, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.batches.WithLabelValues(result).Inc()
	m.batchPackets.Observe(float64(packets))
	m.batchDuration.Observe(d.Seconds())
}

// Packet records a decoded packet.
func (m *Metrics) Packet(name string) {
	if m != nil {
		m.packets.WithLabelValues(name).Inc()
	}
}

// UnknownPacket records a dropped packet ID.
func (m *Metrics) UnknownPacket(id uint32) {
	if m != nil {
		m.unknownPackets.WithLabelValues(strconv.FormatUint(uint64(id), 10)).Inc()
	}
}

// DecodeError records a packet that failed to decode.
func (m *Metrics) DecodeError(name string) {
	if m != nil {
		m.decodeErrors.WithLabelValues(name).Inc()
	}
}

// Transaction records the outcome of an inventory transaction.
func (m *Metrics) Transaction(kind, result string) {
	if m != nil {
		m.transactions.WithLabelValues(kind, result).Inc()
	}
}

// Disconnect records a forced disconnect.
func (m *Metrics) Disconnect(cause string) {
	if m != nil {
		m.disconnects.WithLabelValues(cause).Inc()
	}
}

// InventoryResend ...
func (m *Metrics) InventoryResend() {
	if m != nil {
		m.inventoryResend.Inc()
	}
}
