package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// LogLevel defines logging severity levels.
type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

// String returns the textual representation of the level.
func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger writes leveled messages to the console and, optionally, to a log file.
// The console only receives INFO and above; the file receives everything.
type Logger struct {
	consoleLogger *log.Logger
	fileLogger    *log.Logger
	file          *os.File
}

var globalLogger *Logger

// Init sets up the global logger. A timestamped log file is created under
// logs/<name>_<timestamp>.log next to the working directory.
func Init(name string) error {
	if err := os.MkdirAll("logs", 0755); err != nil {
		return fmt.Errorf("create logs directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := filepath.Join("logs", fmt.Sprintf("%s_%s.log", name, timestamp))

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("create log file: %w", err)
	}

	globalLogger = &Logger{
		consoleLogger: log.New(os.Stdout, "", log.LstdFlags),
		fileLogger:    log.New(file, "", log.LstdFlags),
		file:          file,
	}
	return nil
}

// Close flushes and closes the log file.
func Close() {
	if globalLogger != nil && globalLogger.file != nil {
		globalLogger.file.Close()
	}
}

// Trace logs a TRACE level message.
func Trace(format string, args ...interface{}) {
	logMessage(TRACE, format, args...)
}

// Debug logs a DEBUG level message.
func Debug(format string, args ...interface{}) {
	logMessage(DEBUG, format, args...)
}

// Info logs an INFO level message.
func Info(format string, args ...interface{}) {
	logMessage(INFO, format, args...)
}

// Warn logs a WARN level message.
func Warn(format string, args ...interface{}) {
	logMessage(WARN, format, args...)
}

// Error logs an ERROR level message.
func Error(format string, args ...interface{}) {
	logMessage(ERROR, format, args...)
}

func logMessage(level LogLevel, format string, args ...interface{}) {
	if globalLogger == nil {
		// Logging before Init is a no-op except for warnings and errors,
		// which still reach stderr.
		if level >= WARN {
			log.Printf("[%s] %s", level.String(), fmt.Sprintf(format, args...))
		}
		return
	}

	message := fmt.Sprintf("[%s] %s", level.String(), fmt.Sprintf(format, args...))

	globalLogger.fileLogger.Println(message)

	if level >= INFO {
		globalLogger.consoleLogger.Println(message)
	}
}
