package logger

// Backend is one log sink. Calls carry a message plus alternating key/value pairs.
type Backend interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
	Fatal(msg string, keyvals ...any)
}

type dispatcher struct {
	backends []Backend
}

var current *dispatcher

// Init installs the backends every package level call fans out to. Logging
// before Init is a no-op.
func Init(backends ...Backend) {
	current = &dispatcher{backends: backends}
}

func each(fn func(Backend)) {
	d := current
	if d == nil {
		return
	}
	for _, b := range d.backends {
		fn(b)
	}
}

func Debug(msg string, keyvals ...any) { each(func(b Backend) { b.Debug(msg, keyvals...) }) }

func Info(msg string, keyvals ...any) { each(func(b Backend) { b.Info(msg, keyvals...) }) }

func Warn(msg string, keyvals ...any) { each(func(b Backend) { b.Warn(msg, keyvals...) }) }

func Error(msg string, keyvals ...any) { each(func(b Backend) { b.Error(msg, keyvals...) }) }

// Fatal logs and lets the backends terminate the process.
func Fatal(msg string, keyvals ...any) { each(func(b Backend) { b.Fatal(msg, keyvals...) }) }
