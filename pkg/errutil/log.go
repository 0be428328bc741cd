// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package errutil provides helpers for oops errors: code extraction,
// structured logging and test assertions.
package errutil

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// Code returns the oops error code of err, or "" if err carries none.
func Code(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := oopsErr.Code().(string)
	return code
}

// Log logs an error at the given level with structured context if it's an oops error.
// For oops errors, it extracts and logs the message, code and context.
// For standard errors, it logs the error string.
func Log(ctx context.Context, logger *slog.Logger, level slog.Level, msg string, err error) {
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs := []any{
			"error", oopsErr.Error(),
		}
		if code := Code(err); code != "" {
			attrs = append(attrs, "code", code)
		}
		if octx := oopsErr.Context(); len(octx) > 0 {
			attrs = append(attrs, "context", octx)
		}
		logger.Log(ctx, level, msg, attrs...)
		return
	}
	logger.Log(ctx, level, msg, "error", err)
}

// LogError logs err at error level. See Log.
func LogError(logger *slog.Logger, msg string, err error) {
	Log(context.Background(), logger, slog.LevelError, msg, err)
}

// LogWarn logs err at warn level. See Log.
func LogWarn(ctx context.Context, logger *slog.Logger, msg string, err error) {
	Log(ctx, logger, slog.LevelWarn, msg, err)
}
