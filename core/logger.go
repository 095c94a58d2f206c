package core

// Logger is the application-wide logging contract. Implementations may
// interpret trailing args as structured context; an account.Account arg
// identifies the acting user to error reporters.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
