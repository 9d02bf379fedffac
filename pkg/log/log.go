// Package log provides the minimal leveled logger used across the engine.
package log

import "fmt"

// Level controls how much output a Logger created with NewLeveled emits.
type Level int

const (
	// LevelNone silences all output.
	LevelNone Level = iota
	// LevelErrors emits errors only.
	LevelErrors
	// LevelVerbose emits everything.
	LevelVerbose
)

type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type logger struct {
	level Level
}

// New returns a logger that writes everything to stdout.
func New() Logger {
	return &logger{level: LevelVerbose}
}

// NewLeveled returns a logger filtered to the given level.
func NewLeveled(level Level) Logger {
	if level == LevelNone {
		return NewNullLogger()
	}
	return &logger{level: level}
}

func (l *logger) Infof(format string, args ...interface{}) {
	if l.level >= LevelVerbose {
		fmt.Printf("[INFO]\t"+format+"\n", args...)
	}
}

func (l *logger) Errorf(format string, args ...interface{}) {
	if l.level >= LevelErrors {
		fmt.Printf("[ERROR]\t"+format+"\n", args...)
	}
}

func (l *logger) Debugf(format string, args ...interface{}) {
	if l.level >= LevelVerbose {
		fmt.Printf("[DEBUG]\t"+format+"\n", args...)
	}
}
