package postgresengine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/AntonStoeckl/softdelete-go/safedelete"
)

const (
	logMsgBuildQueryFailed   = "failed to build sql statement"
	logMsgDBQueryFailed      = "database query execution failed"
	logMsgDBExecFailed       = "database statement execution failed"
	logMsgCloseRowsFailed    = "failed to close database rows"
	logMsgScanRowFailed      = "failed to scan database row"
	logMsgRowsAffectedFailed = "failed to get rows affected count"
	logMsgDeleteRefused      = "delete refused by policy"
	logMsgFetchCompleted     = "fetch"
	logMsgCountCompleted     = "count"
	logMsgSQLExecuted        = "executed sql for: "
	logMsgOperation          = "softdelete operation: "

	logAttrError        = "error"
	logAttrQuery        = "query"
	logAttrTable        = "table"
	logAttrPolicy       = "policy"
	logAttrOperation    = "operation"
	logAttrVisibility   = "visibility"
	logAttrRowCount     = "row_count"
	logAttrRowsAffected = "rows_affected"
	logAttrDurationMS   = "duration_ms"

	operationFetch      = "fetch"
	operationCount      = "count"
	operationSoftDelete = "soft_delete"
	operationHardDelete = "hard_delete"
	operationUndelete   = "undelete"

	metricOperationDuration = "softdelete_operation_duration_seconds"
	metricOperationsTotal   = "softdelete_operations_total"
	metricRowsAffected      = "softdelete_rows"
	metricDatabaseErrors    = "softdelete_errors_total"

	spanNamePrefix     = "softdelete."
	spanAttrOperation  = "operation"
	spanAttrTable      = "table"
	spanAttrVisibility = "visibility"
	spanAttrRows       = "rows"
	spanAttrDurationMS = "duration_ms"
	spanAttrErrorType  = "error_type"
	labelStatus        = "status"
	statusSuccess      = "success"
	statusError        = "error"

	errorTypeBuildQuery     = "build_query"
	errorTypeDatabaseQuery  = "database_query"
	errorTypeDatabaseExec   = "database_exec"
	errorTypeRowScan        = "row_scan"
	errorTypeRowsAffected   = "rows_affected"
	errorTypeLimitedQuery   = "limited_query"
	errorTypeInvisibleQuery = "invisible_query"
)

// logQueryWithDuration logs SQL statements with execution time at debug level.
func (s *Store) logQueryWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	}
}

// logOperation logs operational information at info level.
func (s *Store) logOperation(ctx context.Context, action string, args ...any) {
	if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	}
}

// logWarn logs non-critical issues at warn level.
func (s *Store) logWarn(ctx context.Context, message string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(message, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, message, args...)
	}
}

// logError logs failures at error level.
func (s *Store) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.logger != nil {
		s.logger.Error(message, allArgs...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// startOperationSpan starts a tracing span for an operation on q if the tracing collector is configured.
func (s *Store) startOperationSpan(
	ctx context.Context,
	operation string,
	q *safedelete.Query,
) (context.Context, safedelete.SpanContext) {

	if s.tracingCollector == nil {
		return ctx, nil
	}

	return s.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, map[string]string{
		spanAttrOperation:  operation,
		spanAttrTable:      s.tableName,
		spanAttrVisibility: q.EffectiveVisibility().String(),
	})
}

// succeedOperation records metrics and finishes the span of a successful operation.
func (s *Store) succeedOperation(
	ctx context.Context,
	span safedelete.SpanContext,
	operation string,
	rows int64,
	duration time.Duration,
) {

	s.recordDuration(ctx, operation, statusSuccess, duration)
	s.incrementCounter(ctx, metricOperationsTotal, map[string]string{
		spanAttrOperation: operation,
		labelStatus:       statusSuccess,
	})
	s.recordValue(ctx, metricRowsAffected, float64(rows), map[string]string{
		spanAttrOperation: operation,
	})

	if span != nil {
		span.SetStatus(statusSuccess)
		span.AddAttribute(spanAttrRows, fmt.Sprintf("%d", rows))
		span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", float64(duration.Nanoseconds())/1e6))
	}

	if s.tracingCollector != nil && span != nil {
		s.tracingCollector.FinishSpan(span, statusSuccess, map[string]string{spanAttrRows: fmt.Sprintf("%d", rows)})
	}
}

// failOperation records metrics and finishes the span of a failed operation.
func (s *Store) failOperation(
	ctx context.Context,
	span safedelete.SpanContext,
	operation string,
	errorType string,
	duration time.Duration,
) {

	if duration > 0 {
		s.recordDuration(ctx, operation, statusError, duration)
	}

	s.incrementCounter(ctx, metricDatabaseErrors, map[string]string{
		spanAttrOperation: operation,
		labelStatus:       statusError,
		spanAttrErrorType: errorType,
	})

	if span != nil {
		span.SetStatus(statusError)
		span.AddAttribute(spanAttrErrorType, errorType)
	}

	if s.tracingCollector != nil && span != nil {
		s.tracingCollector.FinishSpan(span, statusError, map[string]string{spanAttrErrorType: errorType})
	}
}

// recordDuration records an operation duration, context-aware if the collector supports it.
func (s *Store) recordDuration(ctx context.Context, operation, status string, duration time.Duration) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelStatus:       status,
	}

	if contextualCollector, ok := s.metricsCollector.(safedelete.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricOperationDuration, duration, labels)
		return
	}

	s.metricsCollector.RecordDuration(metricOperationDuration, duration, labels)
}

// incrementCounter increments a counter, context-aware if the collector supports it.
func (s *Store) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(safedelete.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	s.metricsCollector.IncrementCounter(metric, labels)
}

// recordValue records a value, context-aware if the collector supports it.
func (s *Store) recordValue(ctx context.Context, metric string, value float64, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(safedelete.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metric, value, labels)
		return
	}

	s.metricsCollector.RecordValue(metric, value, labels)
}
