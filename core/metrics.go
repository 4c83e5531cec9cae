package core

import "context"

// NopMetricsRecorder is the default MetricsRecorder. Wallet operations
// still time themselves against it, the observations just go nowhere.
type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

var _ MetricsRecorder = NopMetricsRecorder{}
