package entities

import "time"

// Settings is the validated configuration value set consumed by the core.
// The config package owns parsing; the core treats this as already valid.
type Settings struct {
	AutoFix           bool
	EnableBackup      bool
	AutoRollback      bool
	ConfirmEachAction bool
	MaxDepth          int
	Timeout           time.Duration
	ExcludeDirs       []string

	// PreferredCommands maps "language:entrypoint" keys to command strings,
	// read at scan time and written after a manual command selection.
	PreferredCommands map[string]string
}

// DefaultSettings mirrors the defaults of the configuration loader.
func DefaultSettings() Settings {
	return Settings{
		AutoFix:           false,
		EnableBackup:      true,
		AutoRollback:      true,
		ConfirmEachAction: false,
		MaxDepth:          10,
		Timeout:           300 * time.Second,
		PreferredCommands: map[string]string{},
	}
}
