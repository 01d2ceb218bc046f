package classifier

import "sync"

// State is a point-in-time snapshot of the model lifecycle.
type State struct {
	Loaded    bool   `json:"loaded"`
	Loading   bool   `json:"loading"`
	LoadError string `json:"load_error,omitempty"`
}

// Handle is the session-wide model lifecycle record. It starts empty, is
// mutated only by Engine.Initialize, and is read by everything else. The
// analysis coordinator borrows a reference and never owns or disposes it.
type Handle struct {
	mu    sync.RWMutex
	model Model
	state State
}

func NewHandle() *Handle {
	return &Handle{}
}

func (h *Handle) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

func (h *Handle) Model() (Model, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.model, h.model != nil
}

func (h *Handle) beginLoad() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.Loading = true
	h.state.LoadError = ""
}

func (h *Handle) completeLoad(m Model) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.model = m
	h.state = State{Loaded: true}
}

func (h *Handle) failLoad(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.model = nil
	h.state = State{LoadError: err.Error()}
}
