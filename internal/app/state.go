// Package app provides application lifecycle management, configuration, and events.
package app

import (
	"fmt"
	"log"
	"sync"

	"starmap/internal/project"
	"starmap/internal/render"
)

// State holds the open project and the latest render outcome. It implements
// render.Reporter so the window can follow the controller through events.
type State struct {
	mu sync.RWMutex

	// Project
	ProjectPath string
	Project     *project.File
	Modified    bool

	// Rendering
	Mode         render.Mode
	Generation   uint64
	Last         *render.Result
	LastError    error
	Downloadable bool

	// Event listeners
	listeners map[EventType][]EventListener
}

var _ render.Reporter = (*State)(nil)

// EventType identifies different application events.
type EventType int

const (
	EventProjectLoaded EventType = iota
	EventProjectSaved
	EventModified
	EventRenderStarted
	EventRenderFailed
	EventRenderFinished
	EventDownloadChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// RenderFailure is the payload of EventRenderFailed.
type RenderFailure struct {
	Mode render.Mode
	Err  error
}

// NewState creates a new application state with an untitled project.
func NewState() *State {
	return &State{
		Project:   project.New("Untitled"),
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the project as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	s.Modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// IsModified reports whether the project has unsaved edits.
func (s *State) IsModified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Modified
}

// CurrentProject returns the open project.
func (s *State) CurrentProject() *project.File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Project
}

// NewProject replaces the open project with a fresh one.
func (s *State) NewProject(name string) {
	p := project.New(name)
	s.mu.Lock()
	s.Project = p
	s.ProjectPath = ""
	s.Modified = false
	s.mu.Unlock()
	s.Emit(EventProjectLoaded, p)
}

// LoadProject loads a project from the specified path.
func (s *State) LoadProject(path string) error {
	p, err := project.Load(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.Project = p
	s.ProjectPath = path
	s.Modified = false
	s.mu.Unlock()

	log.Printf("Loaded project %s", path)
	s.Emit(EventProjectLoaded, p)
	return nil
}

// SaveProject writes the open project to path and remembers it.
func (s *State) SaveProject(path string) error {
	s.mu.RLock()
	p := s.Project
	s.mu.RUnlock()
	if p == nil {
		return fmt.Errorf("no project to save")
	}
	if err := p.Save(path); err != nil {
		return err
	}

	s.mu.Lock()
	s.ProjectPath = path
	s.Modified = false
	s.mu.Unlock()

	log.Printf("Saved project %s", path)
	s.Emit(EventProjectSaved, path)
	return nil
}

// LastResult returns the latest finished render, or nil.
func (s *State) LastResult() *render.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Last
}

// CanDownload reports whether the latest render may be exported.
func (s *State) CanDownload() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Downloadable
}

// RenderStarted implements render.Reporter.
func (s *State) RenderStarted(mode render.Mode, generation uint64) {
	s.mu.Lock()
	s.Mode = mode
	s.Generation = generation
	s.LastError = nil
	s.mu.Unlock()
	s.Emit(EventRenderStarted, mode)
}

// RenderFailed implements render.Reporter.
func (s *State) RenderFailed(mode render.Mode, err error) {
	s.mu.Lock()
	s.LastError = err
	s.mu.Unlock()
	s.Emit(EventRenderFailed, RenderFailure{Mode: mode, Err: err})
}

// RenderFinished implements render.Reporter. Results older than the last
// started generation are dropped.
func (s *State) RenderFinished(res *render.Result) {
	s.mu.Lock()
	if res.Generation < s.Generation {
		s.mu.Unlock()
		return
	}
	s.Last = res
	s.mu.Unlock()
	s.Emit(EventRenderFinished, res)
}

// DownloadAvailable implements render.Reporter.
func (s *State) DownloadAvailable(ok bool) {
	s.mu.Lock()
	changed := s.Downloadable != ok
	s.Downloadable = ok
	s.mu.Unlock()
	if changed {
		s.Emit(EventDownloadChanged, ok)
	}
}
