package env

import "log/slog"

type Mode string

const (
	Test Mode = "test"
	Dev  Mode = "dev"
	Prod Mode = "prod"
)

var currentMode = Test

func SetMode(mode Mode) {
	if !mode.Validate() {
		panic("invalid mode: " + mode.String())
	}
	currentMode = mode
}

func Current() Mode {
	return currentMode
}

func (e Mode) String() string {
	return string(e)
}

func (e Mode) Validate() bool {
	switch e {
	case Test, Dev, Prod:
		return true
	default:
		return false
	}
}

// IsSandbox reports whether dev-only surfaces (verification-code lookup,
// permissive CORS) may be exposed.
func (e Mode) IsSandbox() bool {
	return e == Test || e == Dev
}

func (e Mode) SlogLevel() slog.Level {
	switch e {
	case Test, Dev:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
