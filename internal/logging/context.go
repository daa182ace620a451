// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	reportKey        contextKey = "report"
)

// GenerateCorrelationID returns the first 8 characters of a random UUID.
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

// ContextWithCorrelationID returns a context carrying id.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// ContextWithNewCorrelationID returns a context carrying a fresh correlation ID.
// An ID already present is kept.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	if CorrelationIDFromContext(ctx) != "" {
		return ctx
	}
	return ContextWithCorrelationID(ctx, GenerateCorrelationID())
}

// CorrelationIDFromContext returns the correlation ID, or "" when absent.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithReport tags the context with the report kind being generated.
func ContextWithReport(ctx context.Context, kind string) context.Context {
	return context.WithValue(ctx, reportKey, kind)
}

// ReportFromContext returns the report kind, or "" when absent.
func ReportFromContext(ctx context.Context) string {
	if kind, ok := ctx.Value(reportKey).(string); ok {
		return kind
	}
	return ""
}

// Ctx returns the global logger with correlation_id and report fields added
// when the context carries them.
//
//	logging.Ctx(ctx).Info().Int("alerts", n).Msg("scan complete")
func Ctx(ctx context.Context) *zerolog.Logger {
	logCtx := Logger().With()
	if id := CorrelationIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("correlation_id", id)
	}
	if kind := ReportFromContext(ctx); kind != "" {
		logCtx = logCtx.Str("report", kind)
	}
	l := logCtx.Logger()
	return &l
}
