package core

// Logger is implemented by the services/logger package.
// expected args: error, map[string]interface{} or a Person (at most one is reported).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Person identifies the caller an event is reported for.
type Person struct {
	ID    string
	Name  string
	Email string
}
