package logging

// Logger provides logging functionality with structured fields
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Debug(msg string, fields map[string]interface{})
	WithRun(runID string) Logger
	WithContext(ctx map[string]interface{}) Logger
}

// LoggerFactory creates different types of loggers
type LoggerFactory interface {
	CreateLogger(component string) Logger
	CreateCommandLogger(commandName string) Logger
	CreateRunLogger(component, runID string) Logger
}

// LogRepository interface for persisting logs
type LogRepository interface {
	SaveLog(entry LogEntry) error
}

// LogEntry represents a log entry for persistence. The URL, status and body
// snippet fields carry scrape diagnostics for offline investigation.
type LogEntry struct {
	RunID       string
	Component   string
	Level       string
	Message     string
	Error       string
	URL         string
	StatusCode  int
	BodySnippet string
	Fields      map[string]interface{}
}
