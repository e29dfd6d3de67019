/*
NAME
  logging.go

DESCRIPTION
  logging.go provides a scoped Logger interface matching the shape of
  github.com/ausocean/utils/logging as consumed throughout the teacher
  repo's revid/ and device/ packages, plus a rotating file-backed
  implementation for Options.Debug.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>, Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package logging provides the scoped Logger interface held in the
// mediainfo module's Options, plus a rotating-file-backed implementation.
package logging

import (
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level identifies log severity, mirroring logging.Debug/Info/Warning/
// Error/Fatal from github.com/ausocean/utils/logging.
type Level int8

// Recognized levels.
const (
	Debug Level = iota
	Info
	Warning
	Error
	Fatal
)

// Logger is the scoped logging interface held in mediainfo.Options,
// matching revid/revid.go's Logger interface shape (SetLevel,
// Log(level, message, params...)). The container parsers do not call it.
type Logger interface {
	SetLevel(Level)
	Log(level Level, message string, params ...interface{})
}

// discardLogger drops everything; used when Options.Debug is false.
type discardLogger struct{}

func (discardLogger) SetLevel(Level)                              {}
func (discardLogger) Log(Level, string, ...interface{})           {}

// Discard is a Logger that drops all output.
var Discard Logger = discardLogger{}

// fileLogger writes to a lumberjack-rotated file, in the same on-device
// log-rotation shape the teacher repo applies to revid's operational logs.
type fileLogger struct {
	level Level
	l     *log.Logger
}

// NewFileLogger returns a Logger that rotates path at 10MB/3 backups,
// mirroring the defaults revid applies to its own operational logging.
func NewFileLogger(path string) Logger {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     7, // days
	}
	return &fileLogger{level: Debug, l: log.New(w, "", log.LstdFlags|log.Lmicroseconds)}
}

func (f *fileLogger) SetLevel(lv Level) { f.level = lv }

func (f *fileLogger) Log(level Level, message string, params ...interface{}) {
	if level < f.level {
		return
	}
	f.l.Println(append([]interface{}{levelPrefix(level), message}, params...)...)
	if level == Fatal {
		os.Exit(1)
	}
}

func levelPrefix(l Level) string {
	switch l {
	case Debug:
		return "[DEBUG]"
	case Info:
		return "[INFO]"
	case Warning:
		return "[WARNING]"
	case Error:
		return "[ERROR]"
	case Fatal:
		return "[FATAL]"
	default:
		return "[?]"
	}
}
