package core

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

func (m *Manager) observeOperation(
	ctx context.Context,
	startedAt time.Time,
	operation string,
	err error,
	fields map[string]any,
) {
	if m == nil {
		return
	}
	operation = normalizeOperation(operation)
	if operation == "" {
		operation = "unknown"
	}
	status := "success"
	if err != nil {
		status = "failure"
	}

	contextFields := cloneFields(fields)
	contextFields["event_type"] = operation
	contextFields["status"] = status
	contextFields["duration_ms"] = time.Since(startedAt).Milliseconds()
	if err != nil {
		contextFields["error"] = err.Error()
	}

	tags := map[string]string{
		"operation": operation,
		"status":    status,
	}
	for _, key := range []string{"connector_id", "connector_uid", "chain_id"} {
		if value := strings.TrimSpace(fmt.Sprint(contextFields[key])); value != "" && value != "<nil>" {
			tags[key] = value
		}
	}

	m.recordCounter(ctx, "wallet."+operation+".total", 1, tags)
	m.recordHistogram(ctx, "wallet."+operation+".duration_ms", float64(time.Since(startedAt).Milliseconds()), tags)
	m.recordActivity(ctx, operation, err, contextFields)

	if err != nil {
		m.logError(ctx, operation+" failed", contextFields)
		return
	}
	m.logInfo(ctx, operation+" succeeded", contextFields)
}

// recordActivity writes one audit entry per operation. Sink failures
// never bubble into the operation result.
func (m *Manager) recordActivity(ctx context.Context, operation string, opErr error, fields map[string]any) {
	if m == nil || m.activitySink == nil {
		return
	}
	entry := WalletActivityEntry{
		Operation: operation,
		Status:    WalletActivityStatusOK,
		Metadata:  cloneFields(fields),
		CreatedAt: time.Now().UTC(),
	}
	if opErr != nil {
		entry.Status = WalletActivityStatusError
		entry.Error = opErr.Error()
	}
	if value, ok := fields["connector_id"].(string); ok {
		entry.ConnectorID = value
	}
	if value, ok := fields["connector_uid"].(string); ok {
		entry.ConnectorUID = value
	}
	if value, ok := fields["accounts"].(int); ok {
		entry.Accounts = value
	}
	switch value := fields["chain_id"].(type) {
	case ChainID:
		entry.ChainID = value
	case uint64:
		entry.ChainID = ChainID(value)
	case string:
		if parsed, err := strconv.ParseUint(value, 10, 64); err == nil {
			entry.ChainID = ChainID(parsed)
		}
	}
	if err := m.activitySink.Record(ctx, entry); err != nil {
		m.logError(ctx, "activity record failed", map[string]any{
			"operation": operation,
			"error":     err.Error(),
		})
	}
}

func (m *Manager) logInfo(ctx context.Context, message string, fields map[string]any) {
	m.logWithLevel(ctx, "info", message, fields)
}

func (m *Manager) logError(ctx context.Context, message string, fields map[string]any) {
	m.logWithLevel(ctx, "error", message, fields)
}

func (m *Manager) logWithLevel(ctx context.Context, level string, message string, fields map[string]any) {
	if m == nil || m.logger == nil {
		return
	}
	logger := m.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(cloneFields(fields))
	}
	args := flattenFields(fields)
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		logger.Error(message, args...)
	default:
		logger.Info(message, args...)
	}
}

func (m *Manager) recordCounter(ctx context.Context, name string, value int64, tags map[string]string) {
	if m == nil || m.metricsRecorder == nil {
		return
	}
	m.metricsRecorder.IncCounter(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func (m *Manager) recordHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
	if m == nil || m.metricsRecorder == nil {
		return
	}
	m.metricsRecorder.ObserveHistogram(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func cloneTags(tags map[string]string) map[string]string {
	if len(tags) == 0 {
		return map[string]string{}
	}
	copied := make(map[string]string, len(tags))
	for key, value := range tags {
		copied[key] = value
	}
	return copied
}

func cloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

func normalizeOperation(operation string) string {
	operation = strings.TrimSpace(strings.ToLower(operation))
	operation = strings.ReplaceAll(operation, " ", "_")
	operation = strings.ReplaceAll(operation, "-", "_")
	return operation
}
