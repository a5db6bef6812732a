package lock

import (
	"encoding/json"
	"strconv"
	"time"
)

// SessionInfo describes who holds a guard.
type SessionInfo struct {
	ID      string    `json:"id"`
	Target  string    `json:"target"`
	Started time.Time `json:"started"`
	PID     int       `json:"pid"`
}

// Age returns how long ago the session was opened.
func (i *SessionInfo) Age(now time.Time) time.Duration {
	return now.Sub(i.Started)
}

// Marshal serializes the SessionInfo to JSON.
func (i *SessionInfo) Marshal() ([]byte, error) {
	return json.Marshal(i)
}

// ParseSessionInfo deserializes JSON data into a SessionInfo.
func ParseSessionInfo(data []byte) (*SessionInfo, error) {
	var info SessionInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// String returns a human-readable description of the session.
func (i *SessionInfo) String() string {
	short := i.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return i.Target + " (session " + short + ", pid " + strconv.Itoa(i.PID) + ")"
}
