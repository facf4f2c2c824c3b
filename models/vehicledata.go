package models

import (
	"encoding/json"
	"fmt"
)

// VehicleData is the payload submitted by the external scan/upload flow.
// Shape: {"disks": [{"id": "...", "sessions": [{"<name>": {...}}, ...]}]}.
type VehicleData struct {
	Disks []Disk `json:"disks" validate:"required,min=1,dive"`
}

// Disk groups the sessions recorded on one physical disk.
type Disk struct {
	ID       string    `json:"id" validate:"required,min=1"`
	Sessions []Session `json:"sessions"`
}

// Session is a singleton mapping from a session name to its detail. The name
// is a caller-chosen JSON key, so decoding cannot be expressed with struct
// tags alone.
type Session struct {
	Name   string
	Detail SessionDetail
}

// SessionDetail holds what one session recorded: the external subtask
// numbers it covers plus its drop and core counters.
type SessionDetail struct {
	Subtasks []string `json:"subtasks"`
	Drops    int      `json:"drops"`
	Cores    int      `json:"cores"`
}

// UnmarshalJSON decodes the {"<name>": {...}} form and rejects session
// objects that do not have exactly one key.
func (s *Session) UnmarshalJSON(data []byte) error {
	var m map[string]SessionDetail
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if len(m) != 1 {
		return fmt.Errorf("session object must have exactly one key, got %d", len(m))
	}
	for name, detail := range m {
		s.Name = name
		s.Detail = detail
	}
	return nil
}

// MarshalJSON re-emits the singleton {"<name>": {...}} form so stored scan
// history round-trips byte-compatibly with what the producer submitted.
func (s Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]SessionDetail{s.Name: s.Detail})
}

// Validate checks the payload shape rules: at least one disk, non-empty disk
// ids, named sessions, string subtask identifiers and non-negative counters.
// Struct tags cover the parts validator can reach; the session internals are
// checked here because of the custom decode.
func (v VehicleData) Validate() error {
	if err := ValidateStruct(v); err != nil {
		return err
	}
	for _, disk := range v.Disks {
		for _, session := range disk.Sessions {
			if session.Name == "" {
				return fmt.Errorf("disk %q has a session with an empty name", disk.ID)
			}
			if session.Detail.Drops < 0 {
				return fmt.Errorf("session %q on disk %q has negative drops", session.Name, disk.ID)
			}
			if session.Detail.Cores < 0 {
				return fmt.Errorf("session %q on disk %q has negative cores", session.Name, disk.ID)
			}
			for _, num := range session.Detail.Subtasks {
				if num == "" {
					return fmt.Errorf("session %q on disk %q lists an empty subtask number", session.Name, disk.ID)
				}
			}
		}
	}
	return nil
}
