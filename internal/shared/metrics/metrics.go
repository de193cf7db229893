package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	scribbleBatchesTotal   atomic.Uint64
	scribbleFallbacksTotal atomic.Uint64
	captionsTotal          atomic.Uint64
	captionFallbacksTotal  atomic.Uint64

	canvasRenderDuration = newHistogram([]float64{5, 10, 25, 50, 100, 250, 500, 1000, 2000})
)

// IncScribbleBatch increments the generated scribble batch counter.
func IncScribbleBatch() {
	scribbleBatchesTotal.Add(1)
}

// IncScribbleFallback increments the counter of batches served from the
// procedural fallback instead of parsed model output.
func IncScribbleFallback() {
	scribbleFallbacksTotal.Add(1)
}

// IncCaption increments the generated caption counter.
func IncCaption() {
	captionsTotal.Add(1)
}

// IncCaptionFallback increments the counter of captions replaced by the
// fixed fallback string.
func IncCaptionFallback() {
	captionFallbacksTotal.Add(1)
}

// ObserveCanvasRenderMs records a canvas rasterization duration in milliseconds.
func ObserveCanvasRenderMs(value float64) {
	if value < 0 {
		value = 0
	}
	canvasRenderDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "scribble_batches_total", "Total scribble batches generated", scribbleBatchesTotal.Load())
	writeCounter(&buf, "scribble_fallbacks_total", "Total scribble batches served from the procedural fallback", scribbleFallbacksTotal.Load())
	writeCounter(&buf, "captions_total", "Total captions generated", captionsTotal.Load())
	writeCounter(&buf, "caption_fallbacks_total", "Total captions replaced by the fixed fallback", captionFallbacksTotal.Load())
	writeHistogram(&buf, "canvas_render_duration_ms", "Canvas rasterization duration in milliseconds", canvasRenderDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
