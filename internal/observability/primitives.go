package observability

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// family is one named counter or gauge with zero or more label dimensions.
// Samples are keyed by their rendered label set.
type family struct {
	name   string
	help   string
	kind   string
	labels []string

	mu      sync.Mutex
	samples map[string]float64
}

func newFamily(kind, name, help string, labels []string) *family {
	return &family{name: name, help: help, kind: kind, labels: labels, samples: map[string]float64{}}
}

func (f *family) add(v float64, values []string) {
	key := labelString(f.labels, values)
	f.mu.Lock()
	f.samples[key] += v
	f.mu.Unlock()
}

func (f *family) set(v float64, values []string) {
	key := labelString(f.labels, values)
	f.mu.Lock()
	f.samples[key] = v
	f.mu.Unlock()
}

func (f *family) get(values []string) float64 {
	key := labelString(f.labels, values)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.samples[key]
}

func (f *family) write(w *expoWriter) {
	w.header(f.name, f.help, f.kind)
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range sortedKeys(f.samples) {
		w.sample(f.name, key, f.samples[key])
	}
}

type Counter struct{ f *family }

func NewCounter(name, help string) *Counter {
	return &Counter{f: newFamily("counter", name, help, nil)}
}

func (c *Counter) Inc() { c.Add(1) }

func (c *Counter) Add(v float64) {
	if c == nil {
		return
	}
	c.f.add(v, nil)
}

func (c *Counter) Value() float64 {
	if c == nil {
		return 0
	}
	return c.f.get(nil)
}

func (c *Counter) WritePrometheus(w io.Writer) error { return render(w, c == nil, func(ew *expoWriter) { c.f.write(ew) }) }

type CounterVec struct{ f *family }

func NewCounterVec(name, help string, labels []string) *CounterVec {
	return &CounterVec{f: newFamily("counter", name, help, labels)}
}

func (c *CounterVec) Inc(values ...string) { c.Add(1, values...) }

func (c *CounterVec) Add(v float64, values ...string) {
	if c == nil {
		return
	}
	c.f.add(v, values)
}

func (c *CounterVec) Value(values ...string) float64 {
	if c == nil {
		return 0
	}
	return c.f.get(values)
}

func (c *CounterVec) WritePrometheus(w io.Writer) error { return render(w, c == nil, func(ew *expoWriter) { c.f.write(ew) }) }

type Gauge struct{ f *family }

func NewGauge(name, help string) *Gauge {
	return &Gauge{f: newFamily("gauge", name, help, nil)}
}

func (g *Gauge) Set(v float64) {
	if g == nil {
		return
	}
	g.f.set(v, nil)
}

func (g *Gauge) Inc() { g.add(1) }
func (g *Gauge) Dec() { g.add(-1) }

func (g *Gauge) add(v float64) {
	if g == nil {
		return
	}
	g.f.add(v, nil)
}

func (g *Gauge) Value() float64 {
	if g == nil {
		return 0
	}
	return g.f.get(nil)
}

func (g *Gauge) WritePrometheus(w io.Writer) error { return render(w, g == nil, func(ew *expoWriter) { g.f.write(ew) }) }

type GaugeVec struct{ f *family }

func NewGaugeVec(name, help string, labels []string) *GaugeVec {
	return &GaugeVec{f: newFamily("gauge", name, help, labels)}
}

func (g *GaugeVec) Set(v float64, values ...string) {
	if g == nil {
		return
	}
	g.f.set(v, values)
}

func (g *GaugeVec) WritePrometheus(w io.Writer) error { return render(w, g == nil, func(ew *expoWriter) { g.f.write(ew) }) }

// HistogramVec keeps cumulative bucket counts per label set.
type HistogramVec struct {
	name    string
	help    string
	labels  []string
	buckets []float64

	mu     sync.Mutex
	series map[string]*histogram
}

type histogram struct {
	counts []uint64 // one per bucket, cumulative; +Inf is count
	sum    float64
	count  uint64
}

var defaultBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

func NewHistogramVec(name, help string, labels []string, buckets []float64) *HistogramVec {
	if len(buckets) == 0 {
		buckets = defaultBuckets
	}
	sorted := append([]float64(nil), buckets...)
	sort.Float64s(sorted)
	return &HistogramVec{name: name, help: help, labels: labels, buckets: sorted, series: map[string]*histogram{}}
}

func (h *HistogramVec) Observe(v float64, values ...string) {
	if h == nil {
		return
	}
	key := labelString(h.labels, values)
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.series[key]
	if !ok {
		s = &histogram{counts: make([]uint64, len(h.buckets))}
		h.series[key] = s
	}
	s.sum += v
	s.count++
	for i := sort.SearchFloat64s(h.buckets, v); i < len(h.buckets); i++ {
		s.counts[i]++
	}
}

func (h *HistogramVec) WritePrometheus(w io.Writer) error {
	return render(w, h == nil, func(ew *expoWriter) {
		ew.header(h.name, h.help, "histogram")
		h.mu.Lock()
		defer h.mu.Unlock()
		for _, key := range sortedKeys(h.series) {
			s := h.series[key]
			for i, b := range h.buckets {
				ew.sample(h.name+"_bucket", withLe(key, formatFloat(b)), float64(s.counts[i]))
			}
			ew.sample(h.name+"_bucket", withLe(key, "+Inf"), float64(s.count))
			ew.sample(h.name+"_sum", key, s.sum)
			ew.sample(h.name+"_count", key, float64(s.count))
		}
	})
}

// expoWriter renders the Prometheus text format and keeps the first write
// error so callers check once.
type expoWriter struct {
	bw  *bufio.Writer
	err error
}

func render(w io.Writer, skip bool, fn func(*expoWriter)) error {
	if skip {
		return nil
	}
	ew := &expoWriter{bw: bufio.NewWriter(w)}
	fn(ew)
	if ew.err != nil {
		return ew.err
	}
	return ew.bw.Flush()
}

func (w *expoWriter) header(name, help, kind string) {
	w.printf("# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
}

func (w *expoWriter) sample(name, labels string, v float64) {
	w.printf("%s%s %s\n", name, labels, formatFloat(v))
}

func (w *expoWriter) printf(format string, args ...interface{}) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.bw, format, args...)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func labelString(names []string, values []string) string {
	if len(names) == 0 {
		return ""
	}
	parts := make([]string, len(names))
	for i, name := range names {
		val := "unknown"
		if i < len(values) && values[i] != "" {
			val = values[i]
		}
		parts[i] = name + `="` + escapeLabel(val) + `"`
	}
	return "{" + strings.Join(parts, ",") + "}"
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func escapeLabel(v string) string { return labelEscaper.Replace(v) }

func withLe(labels, le string) string {
	pair := `le="` + escapeLabel(le) + `"`
	if labels == "" {
		return "{" + pair + "}"
	}
	return strings.TrimSuffix(labels, "}") + "," + pair + "}"
}

func isServerErrorStatus(status string) bool {
	return len(status) == 3 && status[0] == '5'
}

// sortedKeys keeps the exposition output stable between scrapes.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
