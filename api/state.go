package api

import (
	"sync"
	"time"

	"weather-client/models"
	"weather-client/present"
	"weather-client/session"
)

// State is what a browser page needs to draw the weather panel
type State struct {
	Loading    bool             `json:"loading"`
	Error      string           `json:"error,omitempty"`
	Unit       models.Unit      `json:"unit"`
	SearchText string           `json:"searchText"`
	Display    *present.Display `json:"display,omitempty"`
	Updated    time.Time        `json:"updated"`
}

// StateStore holds the latest view state pushed by the session. It is the
// session's View when the client is driven over HTTP.
type StateStore struct {
	state State
	mutex sync.RWMutex
}

// NewStateStore creates an empty state store
func NewStateStore() *StateStore {
	return &StateStore{
		state: State{Unit: models.Celsius},
	}
}

// Snapshot returns a copy of the current state
func (s *StateStore) Snapshot() State {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	st := s.state
	if st.Display != nil {
		d := *st.Display
		st.Display = &d
	}
	return st
}

func (s *StateStore) update(fn func(*State)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	fn(&s.state)
	s.state.Updated = time.Now()
}

func (s *StateStore) SetLoading(on bool) {
	s.update(func(st *State) { st.Loading = on })
}

func (s *StateStore) ShowError(msg string) {
	s.update(func(st *State) { st.Error = msg })
}

func (s *StateStore) ClearError() {
	s.update(func(st *State) { st.Error = "" })
}

func (s *StateStore) Render(d present.Display) {
	s.update(func(st *State) { st.Display = &d })
}

func (s *StateStore) SetSearchText(city string) {
	s.update(func(st *State) { st.SearchText = city })
}

func (s *StateStore) SetUnit(u models.Unit) {
	s.update(func(st *State) { st.Unit = u })
}

var _ session.View = (*StateStore)(nil)
