package log

import (
	"go.uber.org/zap"
)

// A global variable so that log functions can be directly accessed.
// It discards everything until SetLogger is called.
var log Logger = zap.NewNop().Sugar()

// Logger is a logger abstraction
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Fatal(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

// SetLogger sets the logger instance used by the package.
// A nil logger restores the no-op default.
func SetLogger(logger Logger) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	log = logger
}

// Debug uses fmt.Sprint to construct and log a message.
func Debug(args ...interface{}) {
	log.Debug(args...)
}

// Info uses fmt.Sprint to construct and log a message.
func Info(args ...interface{}) {
	log.Info(args...)
}

// Warn uses fmt.Sprint to construct and log a message.
func Warn(args ...interface{}) {
	log.Warn(args...)
}

// Error uses fmt.Sprint to construct and log a message.
func Error(args ...interface{}) {
	log.Error(args...)
}

// Fatal uses fmt.Sprint to construct and log a message, then calls os.Exit.
func Fatal(args ...interface{}) {
	log.Fatal(args...)
}

// Debugf uses fmt.Sprintf to construct and log a message.
func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// Infof uses fmt.Sprintf to construct and log a message.
func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

// Warnf uses fmt.Sprintf to construct and log a message.
func Warnf(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

// Errorf uses fmt.Sprintf to construct and log a message.
func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

// Fatalf uses fmt.Sprintf to construct and log a message, then calls os.Exit.
func Fatalf(format string, args ...interface{}) {
	log.Fatalf(format, args...)
}

// Debugw logs a message with some additional context.
func Debugw(msg string, keysAndValues ...interface{}) {
	log.Debugw(msg, keysAndValues...)
}

// Infow logs a message with some additional context.
func Infow(msg string, keysAndValues ...interface{}) {
	log.Infow(msg, keysAndValues...)
}

// Warnw logs a message with some additional context.
func Warnw(msg string, keysAndValues ...interface{}) {
	log.Warnw(msg, keysAndValues...)
}

// Errorw logs a message with some additional context.
func Errorw(msg string, keysAndValues ...interface{}) {
	log.Errorw(msg, keysAndValues...)
}
