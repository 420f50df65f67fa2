// Package metrics wraps the CSI report decoders for use in a receive
// pipeline: every payload is validated before decoding, outcomes are counted
// in Prometheus metrics and rejected reports are logged instead of reaching
// the panicking decoder preconditions.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"k8s.io/klog/v2"

	csi "github.com/Akron/csi-go"
)

// ErrRejected is returned for reports discarded before decoding. It wraps the
// reason reported by the csi package.
var ErrRejected = errors.New("csi: report rejected")

// Channel labels.
const (
	ChannelPUCCH = "pucch"
	ChannelPUSCH = "pusch"
)

// Result labels.
const (
	ResultOK             = "ok"
	ResultInvalidConfig  = "invalid_config"
	ResultLengthMismatch = "length_mismatch"
	ResultInvalidRank    = "invalid_rank"
)

// Options configures a Codec.
type Options struct {
	// Namespace prefixes every metric name.
	Namespace string
	// Sizes memoizes payload sizes. A private cache is used when nil.
	Sizes *csi.SizeCache
}

// Codec decodes CSI reports with validation and instrumentation.
// It implements prometheus.Collector and is safe for concurrent use.
type Codec struct {
	sizes   *csi.SizeCache
	reports *prometheus.CounterVec
	payload *prometheus.HistogramVec
}

// NewCodec creates a Codec. Register it on a prometheus.Registerer to export
// its metrics.
func NewCodec(opts Options) *Codec {
	sizes := opts.Sizes
	if sizes == nil {
		sizes = csi.NewSizeCache()
	}
	return &Codec{
		sizes: sizes,
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "csi_reports_total",
			Help:      "CSI reports handled, by uplink channel and outcome.",
		}, []string{"channel", "result"}),
		payload: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Name:      "csi_payload_bits",
			Help:      "Size of accepted CSI payloads in bits (both parts on PUSCH).",
			Buckets:   prometheus.LinearBuckets(4, 4, 8),
		}, []string{"channel"}),
	}
}

// Describe implements prometheus.Collector.
func (c *Codec) Describe(ch chan<- *prometheus.Desc) {
	c.reports.Describe(ch)
	c.payload.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Codec) Collect(ch chan<- prometheus.Metric) {
	c.reports.Collect(ch)
	c.payload.Collect(ch)
}

// DecodePUCCH validates and decodes a PUCCH payload.
func (c *Codec) DecodePUCCH(payload csi.PackedBits, cfg csi.ReportConfig) (csi.Report, error) {
	want, err := c.sizes.PUCCHBits(cfg)
	if err == nil && payload.Len() != want {
		err = fmt.Errorf("%w: PUCCH payload has %d bits, want %d", csi.ErrInvalidBuffer, payload.Len(), want)
	}
	if err != nil {
		return csi.Report{}, c.reject(ChannelPUCCH, payload.Len(), err)
	}
	rep, err := csi.DecodePUCCH(payload, cfg)
	if err != nil {
		return csi.Report{}, c.reject(ChannelPUCCH, payload.Len(), err)
	}
	c.accept(ChannelPUCCH, payload.Len())
	return rep, nil
}

// DecodePUSCH validates and decodes both PUSCH parts.
func (c *Codec) DecodePUSCH(part1, part2 csi.PackedBits, cfg csi.ReportConfig) (csi.Report, error) {
	total := part1.Len() + part2.Len()
	if err := c.checkPUSCH(part1, part2, cfg); err != nil {
		return csi.Report{}, c.reject(ChannelPUSCH, total, err)
	}
	rep, err := csi.DecodePUSCH(part1, part2, cfg)
	if err != nil {
		return csi.Report{}, c.reject(ChannelPUSCH, total, err)
	}
	c.accept(ChannelPUSCH, total)
	return rep, nil
}

// Part2Bits returns the Part 2 size announced by a PUSCH Part 1, so a
// transport layer can cut Part 2 out of the UCI bit stream.
func (c *Codec) Part2Bits(part1 csi.PackedBits, cfg csi.ReportConfig) (int, error) {
	size, err := c.sizes.PUSCH(cfg)
	if err != nil {
		return 0, err
	}
	if part1.Len() != size.Part1Bits {
		return 0, fmt.Errorf("%w: PUSCH Part 1 has %d bits, want %d", csi.ErrInvalidBuffer, part1.Len(), size.Part1Bits)
	}
	return size.Part2.Part2BitsFor(part1)
}

func (c *Codec) checkPUSCH(part1, part2 csi.PackedBits, cfg csi.ReportConfig) error {
	want, err := c.Part2Bits(part1, cfg)
	if err != nil {
		return err
	}
	if part2.Len() != want {
		return fmt.Errorf("%w: PUSCH Part 2 has %d bits, want %d", csi.ErrInvalidBuffer, part2.Len(), want)
	}
	return nil
}

func (c *Codec) accept(channel string, bits int) {
	c.reports.WithLabelValues(channel, ResultOK).Inc()
	c.payload.WithLabelValues(channel).Observe(float64(bits))
}

func (c *Codec) reject(channel string, bits int, reason error) error {
	result := resultOf(reason)
	c.reports.WithLabelValues(channel, result).Inc()
	klog.V(2).InfoS("Discarding CSI report", "channel", channel, "bits", bits, "result", result, "err", reason)
	return fmt.Errorf("%w: %w", ErrRejected, reason)
}

func resultOf(err error) string {
	switch {
	case errors.Is(err, csi.ErrInvalidConfig):
		return ResultInvalidConfig
	case errors.Is(err, csi.ErrInvalidRankIndex):
		return ResultInvalidRank
	}
	return ResultLengthMismatch
}
