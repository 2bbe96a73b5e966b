package logging

// DatabaseLogger wraps a base logger and persists WARN and ERROR entries so
// scraping breakage can be diagnosed after the fact. INFO and DEBUG stay in
// the process log only.
type DatabaseLogger struct {
	base       Logger
	component  string
	runID      string
	repository LogRepository
}

// NewDatabaseLogger creates a new database-backed logger
func NewDatabaseLogger(base Logger, component string, repository LogRepository) Logger {
	return &DatabaseLogger{
		base:       base,
		component:  component,
		repository: repository,
	}
}

// Info logs an info message
func (d *DatabaseLogger) Info(msg string, fields map[string]interface{}) {
	d.base.Info(msg, fields)
}

// Error logs an error message and persists it
func (d *DatabaseLogger) Error(msg string, err error, fields map[string]interface{}) {
	d.base.Error(msg, err, fields)
	d.persistLog("ERROR", msg, err, fields)
}

// Warn logs a warning message and persists it
func (d *DatabaseLogger) Warn(msg string, fields map[string]interface{}) {
	d.base.Warn(msg, fields)
	d.persistLog("WARN", msg, nil, fields)
}

// Debug logs a debug message
func (d *DatabaseLogger) Debug(msg string, fields map[string]interface{}) {
	d.base.Debug(msg, fields)
}

// WithRun creates a new logger carrying a sync run id
func (d *DatabaseLogger) WithRun(runID string) Logger {
	return &DatabaseLogger{
		base:       d.base.WithRun(runID),
		component:  d.component,
		runID:      runID,
		repository: d.repository,
	}
}

// WithContext creates a new logger with additional context fields
func (d *DatabaseLogger) WithContext(ctx map[string]interface{}) Logger {
	return &DatabaseLogger{
		base:       d.base.WithContext(ctx),
		component:  d.component,
		runID:      d.runID,
		repository: d.repository,
	}
}

// persistLog saves the log entry through the repository
func (d *DatabaseLogger) persistLog(level, message string, err error, fields map[string]interface{}) {
	entry := LogEntry{
		RunID:     d.runID,
		Component: d.component,
		Level:     level,
		Message:   message,
		Fields:    fields,
	}

	if err != nil {
		entry.Error = err.Error()
	}

	// Diagnostic payloads carried by the fetcher land in dedicated columns.
	if url, ok := fields["url"].(string); ok {
		entry.URL = url
	}
	if status, ok := fields["status_code"].(int); ok {
		entry.StatusCode = status
	}
	if body, ok := fields["body_snippet"].(string); ok {
		entry.BodySnippet = body
	}

	// Save to database (non-blocking to avoid impacting the harvest loop)
	go func() {
		if saveErr := d.repository.SaveLog(entry); saveErr != nil {
			d.base.Error("Failed to persist log to database", saveErr, map[string]interface{}{
				"original_message": message,
				"original_level":   level,
			})
		}
	}()
}
