package core

// Logger is any leveled logging service.
//
// args may carry any extra context: an error, a map of attributes or the
// acting user; implementations decide what to do with each.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// NopLogger discards everything. Handy in tests.
type NopLogger struct{}

var _ Logger = (*NopLogger)(nil)

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (NopLogger) Enable(bool)                  {}
func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}
