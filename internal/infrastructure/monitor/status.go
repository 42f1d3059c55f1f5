package monitor

import "time"

// Status is the last observed state of every probed dependency.
type Status struct {
	Online      bool            `json:"online"`
	Checks      map[string]bool `json:"checks"`
	BufferSize  int             `json:"buffer_size"`
	DeadEntries int             `json:"dead_entries"`
	LastCheck   time.Time       `json:"last_check"`
}

func (s Status) clone() Status {
	checks := make(map[string]bool, len(s.Checks))
	for name, ok := range s.Checks {
		checks[name] = ok
	}
	s.Checks = checks
	return s
}
