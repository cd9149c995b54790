package logger

// Logger provides structured logging with context
type Logger interface {
	Info(component, message string, fields map[string]interface{})
	Error(component string, err error, fields map[string]interface{})
	Warning(component, message string, fields map[string]interface{})
	Debug(component, message string, fields map[string]interface{})
}

// Noop discards all log output. Used by tests and as the default before
// a real logger is wired up.
type Noop struct{}

func (Noop) Info(string, string, map[string]interface{})    {}
func (Noop) Error(string, error, map[string]interface{})    {}
func (Noop) Warning(string, string, map[string]interface{}) {}
func (Noop) Debug(string, string, map[string]interface{})   {}
