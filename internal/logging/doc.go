// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

// Package logging provides the process-wide zerolog logger for Cohortlens.
//
// Logs go to stderr so that report JSON on stdout stays machine-readable.
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("report", "daily").Msg("report generated")
//
// Every report run carries a short correlation ID in its context. Loggers
// obtained through Ctx add it as the correlation_id field:
//
//	ctx = logging.ContextWithNewCorrelationID(ctx)
//	logging.Ctx(ctx).Warn().Str("source", "unity").Msg("row rejected")
//
// Environment variables (read by the config package):
//
//	LOG_LEVEL   trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  json, console (default: json)
//	LOG_CALLER  include caller file:line (default: false)
package logging
