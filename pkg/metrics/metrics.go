// Package metrics exposes the C4 Statistics counters over Prometheus,
// supplementing the spec's event-sink-only reporting with a scrapeable
// surface for fleet monitoring.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/librescoot/audio-mixer-bridge/pkg/wire"
)

// Registry mirrors a wire.Stats snapshot into Prometheus gauges on every
// scrape, rather than maintaining a second set of counters that could drift
// from the Stats values the rest of the bridge relies on.
type Registry struct {
	stats *wire.Stats
	reg   *prometheus.Registry

	framesSent     prometheus.GaugeFunc
	framesReceived prometheus.GaugeFunc
	bytesIn        prometheus.GaugeFunc
	bytesOut       prometheus.GaugeFunc
	crcErrors      prometheus.GaugeFunc
	framingErrors  prometheus.GaugeFunc
	overflowErrors prometheus.GaugeFunc
	timeoutErrors  prometheus.GaugeFunc
}

// NewRegistry builds a Registry backed by stats.
func NewRegistry(stats *wire.Stats) *Registry {
	r := &Registry{stats: stats, reg: prometheus.NewRegistry()}

	gauge := func(name, help string, f func() float64) prometheus.GaugeFunc {
		g := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "audio_mixer_bridge",
			Name:      name,
			Help:      help,
		}, f)
		r.reg.MustRegister(g)
		return g
	}

	r.framesSent = gauge("frames_sent_total", "Frames written to the serial transport.", func() float64 { return float64(stats.FramesSent()) })
	r.framesReceived = gauge("frames_received_total", "Frames accepted by the receive state machine.", func() float64 { return float64(stats.FramesReceived()) })
	r.bytesIn = gauge("bytes_in_total", "Raw bytes read from the serial transport.", func() float64 { return float64(stats.BytesIn()) })
	r.bytesOut = gauge("bytes_out_total", "Raw bytes written to the serial transport.", func() float64 { return float64(stats.BytesOut()) })
	r.crcErrors = gauge("crc_errors_total", "Frames rejected for a CRC mismatch.", func() float64 { return float64(stats.CRCErrors()) })
	r.framingErrors = gauge("framing_errors_total", "Frames rejected for malformed framing.", func() float64 { return float64(stats.FramingErrors()) })
	r.overflowErrors = gauge("overflow_errors_total", "Frames rejected for declaring more than the max payload size or carrying more payload than declared.", func() float64 { return float64(stats.OverflowErrors()) })
	r.timeoutErrors = gauge("timeout_errors_total", "Frames abandoned after exceeding the frame timeout, measured from the start marker.", func() float64 { return float64(stats.TimeoutErrors()) })

	return r
}

// Handler returns the HTTP handler to mount at /metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
