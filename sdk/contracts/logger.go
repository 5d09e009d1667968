package contracts

import "time"

// LogLevel represents the severity level for logging, ordered from most to
// least verbose.
type LogLevel int

const (
	DebugLevel LogLevel = iota + 1 // Developer diagnostics, e.g. per-frame traces.
	InfoLevel                      // Lifecycle: connections, devices.
	WarnLevel                      // Dropped events, unavailable inputs.
	ErrorLevel                     // Failed connections and writes.
	FatalLevel                     // Logs, then exits the process.
)

// ParseLogLevel maps a name such as "debug" to a LogLevel. Unknown names yield InfoLevel.
func ParseLogLevel(name string) LogLevel {
	switch name {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "fatal":
		return FatalLevel
	}
	return InfoLevel
}

// LogDestination selects the log sink.
type LogDestination string

const (
	ConsoleLog LogDestination = "console"
	FileLog    LogDestination = "file"
)

// Field is a typed log field builder.
type Field interface {
	Bool(key string, val bool) Field
	Int(key string, val int) Field
	Float64(key string, val float64) Field
	String(key string, val string) Field
	Time(key string, val time.Time) Field
	Duration(key string, val time.Duration) Field
	Int64(key string, val int64) Field
	Error(key string, val error) Field
	Uint64(key string, val uint64) Field
	Uint8(key string, val uint8) Field
}

// Logger records messages at several levels.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	Field() Field

	SetLevel(level LogLevel)
	SetDestination(dest LogDestination, filePath ...string)
}
