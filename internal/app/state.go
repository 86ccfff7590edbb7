// Package app provides the GUI-facing application state and events.
package app

import (
	"sync"

	"litho-lamp/internal/config"
	"litho-lamp/internal/pipeline"
)

// EventType identifies application events.
type EventType int

const (
	EventImageSelected EventType = iota
	EventSettingsChanged
	EventGenerationStarted
	EventGenerationFinished
)

// EventListener receives an event with optional payload.
type EventListener func(data interface{})

// State holds everything the window needs to drive lamp generation.
// The pipeline itself is stateless; State only tracks the inputs and
// whether a run is in flight.
type State struct {
	mu sync.RWMutex

	imagePath  string
	outputPath string
	settings   config.Settings
	generating bool

	listeners map[EventType][]EventListener
}

// NewState creates application state with default settings.
func NewState() *State {
	return &State{
		settings:  config.Default(),
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers a listener for an event type.
func (s *State) On(event EventType, fn EventListener) {
	s.mu.Lock()
	s.listeners[event] = append(s.listeners[event], fn)
	s.mu.Unlock()
}

// Emit notifies all listeners of an event. Listeners run on the calling
// goroutine.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	fns := append([]EventListener(nil), s.listeners[event]...)
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(data)
	}
}

// SetImagePath records the selected source image.
func (s *State) SetImagePath(path string) {
	s.mu.Lock()
	s.imagePath = path
	s.mu.Unlock()
	s.Emit(EventImageSelected, path)
}

// ImagePath returns the selected source image path.
func (s *State) ImagePath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.imagePath
}

// SetOutputPath records the STL destination.
func (s *State) SetOutputPath(path string) {
	s.mu.Lock()
	s.outputPath = path
	s.mu.Unlock()
}

// OutputPath returns the STL destination.
func (s *State) OutputPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.outputPath
}

// SetSettings replaces the generation settings.
func (s *State) SetSettings(cfg config.Settings) {
	s.mu.Lock()
	s.settings = cfg
	s.mu.Unlock()
	s.Emit(EventSettingsChanged, cfg)
}

// Settings returns a copy of the current generation settings.
func (s *State) Settings() config.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// BeginGeneration marks a run as in flight. Returns false if one is
// already running.
func (s *State) BeginGeneration() bool {
	s.mu.Lock()
	if s.generating {
		s.mu.Unlock()
		return false
	}
	s.generating = true
	s.mu.Unlock()
	s.Emit(EventGenerationStarted, nil)
	return true
}

// FinishGeneration clears the in-flight flag and publishes the outcome:
// a *pipeline.Result on success, an error on failure.
func (s *State) FinishGeneration(result *pipeline.Result, err error) {
	s.mu.Lock()
	s.generating = false
	s.mu.Unlock()
	if err != nil {
		s.Emit(EventGenerationFinished, err)
		return
	}
	s.Emit(EventGenerationFinished, result)
}

// Generating reports whether a run is in flight.
func (s *State) Generating() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generating
}
