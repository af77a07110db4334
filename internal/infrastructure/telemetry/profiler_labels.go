package telemetry

import (
	"context"
	"sort"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys
const (
	ProfilingLabelOperation = "operation"
	ProfilingLabelJobKind   = "job_kind"
	ProfilingLabelPaper     = "paper_size"
	ProfilingLabelRenderer  = "renderer"

	// HTTP request labels set by the gin profiling middleware
	ProfilingLabelMethod     = "method"
	ProfilingLabelRoute      = "route"
	ProfilingLabelController = "controller"
)

// MaxLabelValueLength caps label values to keep profile cardinality bounded
const MaxLabelValueLength = 128

// WithProfilingLabels runs fn with pprof labels attached so CPU samples taken
// inside it can be sliced in Pyroscope. Empty keys and values are dropped.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := labelPairs(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// labelPairs flattens labels into key/value pairs sorted by key
func labelPairs(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k, v := range labels {
		if k == "" || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		v := labels[k]
		if len(v) > MaxLabelValueLength {
			v = v[:MaxLabelValueLength]
		}
		pairs = append(pairs, k, v)
	}
	return pairs
}
