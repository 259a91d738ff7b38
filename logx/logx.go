// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logx sets up structured logging and colored terminal output
// at the verbosity level chosen by the user.
package logx

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/muesli/termenv"
)

// UserLevel is the verbosity level that the user has selected.
// Messages at levels at or above it are shown. The default is
// [slog.LevelInfo], or [slog.LevelDebug] with the debug build tag and
// [slog.LevelWarn] with the release build tag. Use [SetUserLevel] to
// change it after [SetDefault] has been called.
var UserLevel = &slog.LevelVar{}

func init() {
	UserLevel.Set(defaultUserLevel)
}

// SetUserLevel sets [UserLevel].
func SetUserLevel(level slog.Level) {
	UserLevel.Set(level)
}

// LevelFromFlags returns the level for the given verbosity flags:
//   - vv: [slog.LevelDebug]
//   - v: [slog.LevelInfo]
//   - q: [slog.LevelError]
//   - otherwise: [slog.LevelWarn]
//
// The flags are evaluated in that order.
func LevelFromFlags(vv, v, q bool) slog.Level {
	switch {
	case vv:
		return slog.LevelDebug
	case v:
		return slog.LevelInfo
	case q:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// NewLogger returns a text logger writing to w at [UserLevel].
func NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: UserLevel}))
}

// SetDefault makes a logger writing to stderr at [UserLevel]
// the default slog logger.
func SetDefault() {
	slog.SetDefault(NewLogger(os.Stderr))
}

var output = termenv.NewOutput(os.Stderr)

// SetOutput sets the writer that the Print functions write to,
// detecting its color profile.
func SetOutput(w io.Writer) {
	output = termenv.NewOutput(w)
}

var levelColors = map[slog.Level]string{
	slog.LevelDebug: "8",
	slog.LevelInfo:  "4",
	slog.LevelWarn:  "3",
	slog.LevelError: "1",
}

// Println prints the given values, colored for the level, if level is
// at or above [UserLevel].
func Println(level slog.Level, a ...any) {
	if level < UserLevel.Level() {
		return
	}
	s := output.String(fmt.Sprint(a...))
	if c, ok := levelColors[level]; ok {
		s = s.Foreground(output.Color(c))
	}
	if level >= slog.LevelError {
		s = s.Bold()
	}
	fmt.Fprintln(output, s.String())
}

// PrintlnDebug prints the values at [slog.LevelDebug].
func PrintlnDebug(a ...any) { Println(slog.LevelDebug, a...) }

// PrintlnInfo prints the values at [slog.LevelInfo].
func PrintlnInfo(a ...any) { Println(slog.LevelInfo, a...) }

// PrintlnWarn prints the values at [slog.LevelWarn].
func PrintlnWarn(a ...any) { Println(slog.LevelWarn, a...) }

// PrintlnError prints the values at [slog.LevelError].
func PrintlnError(a ...any) { Println(slog.LevelError, a...) }

// PrintError prints err at [slog.LevelError] if it is non-nil,
// and returns it.
func PrintError(err error) error {
	if err != nil {
		PrintlnError(err)
	}
	return err
}
