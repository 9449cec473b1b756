package lifecycle

import (
	"fmt"
	"time"
)

// State is where an app's authoritative content currently lives
type State int

const (
	StateAbsent State = iota
	StateActive
	StateCold
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateCold:
		return "cold"
	default:
		return "absent"
	}
}

// MarshalText renders the state by name in JSON
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name produced by MarshalText
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "absent":
		*s = StateAbsent
	case "active":
		*s = StateActive
	case "cold":
		*s = StateCold
	default:
		return fmt.Errorf("unknown app state %q", text)
	}
	return nil
}

// Content is the result of EnsureActive
type Content struct {
	Name    string
	Data    []byte
	Created bool // placeholder was written by this call
	Thawed  bool // archive was restored by this call
}

// AppInfo describes one app for listings
type AppInfo struct {
	Name     string    `json:"name"`
	State    State     `json:"state"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// RecoveryReport summarizes RecoverOnStartup
type RecoveryReport struct {
	Active           int `json:"active"`
	Cold             int `json:"cold"`
	Corrupt          int `json:"corrupt"`
	Reconciled       int `json:"reconciled"`
	TempFilesRemoved int `json:"temp_files_removed"`
	FreezesScheduled int `json:"freezes_scheduled"`
}

// Placeholder returns the initial content of a new app
func Placeholder(name string) []byte {
	return []byte(fmt.Sprintf("<html><body><h1>Hello from %s!</h1></body></html>", name))
}
