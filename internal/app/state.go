// Package app holds the preview application state: the active room profile,
// the reader built from it, the loaded frames and the latest table reading.
package app

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"sync"

	"pokervision/internal/config"
	"pokervision/internal/frame"
	"pokervision/internal/rank"
	"pokervision/internal/reader"
	"pokervision/internal/templates"
)

// State holds the preview session.
type State struct {
	mu sync.RWMutex
	// readMu is held shared for the length of a table read. Replaced
	// template libraries are closed only under the exclusive side, so no
	// read can still be matching against their Mats.
	readMu sync.RWMutex

	// Profile
	ProfilePath string
	Profile     config.Profile

	// Recognition
	Library *templates.Library
	OCR     rank.TextReader
	Reader  *reader.Reader
	Table   *reader.Table

	// Frames
	Frames  []string
	Index   int
	Current *frame.Frame

	// Latest reading of the current frame
	TableImage image.Image
	Last       reader.TableState

	listeners map[EventType][]EventListener
}

// EventType identifies state events.
type EventType int

const (
	EventProfileLoaded EventType = iota
	EventTemplatesLoaded
	EventFrameLoaded
	EventTableRead
	EventError
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a session over a profile. ocr may be nil.
func NewState(profile config.Profile, ocr rank.TextReader) (*State, error) {
	s := &State{
		Profile:   profile,
		OCR:       ocr,
		listeners: make(map[EventType][]EventListener),
	}
	if err := s.rebuild(true); err != nil {
		return nil, err
	}
	return s, nil
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

// rebuild recreates the reader, and the template library when requested or
// when the profile points at different asset directories.
func (s *State) rebuild(reloadTemplates bool) error {
	s.mu.Lock()
	ranks, suits := s.Profile.TemplateDirs()
	if s.Library != nil {
		oldRanks, oldSuits := s.Library.Dirs()
		if oldRanks != ranks || oldSuits != suits {
			reloadTemplates = true
		}
	}
	var old *templates.Library
	if reloadTemplates || s.Library == nil {
		old = s.Library
		s.Library = templates.NewLibrary(ranks, suits)
	}
	r, err := reader.New(s.Library, s.OCR, s.Profile)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to build reader: %w", err)
	}
	s.Reader = r
	s.Table = reader.NewTable(r)
	lib := s.Library
	s.mu.Unlock()

	if old != nil {
		s.readMu.Lock()
		old.Close()
		s.readMu.Unlock()
	}
	if old != nil || reloadTemplates {
		if _, err := lib.Bank(); err != nil {
			log.Printf("Templates: %v", err)
		}
		s.Emit(EventTemplatesLoaded, lib)
	}
	return nil
}

// LoadProfile loads a room profile and rebuilds the reader.
func (s *State) LoadProfile(path string) error {
	p, err := config.Load(path)
	if err != nil {
		// Load returns a usable profile alongside validation errors.
		log.Printf("Profile %s: %v", path, err)
	}
	p = p.ApplyEnv()

	s.mu.Lock()
	s.ProfilePath = path
	s.Profile = p
	s.mu.Unlock()

	if err := s.rebuild(false); err != nil {
		s.Emit(EventError, err)
		return err
	}
	s.Emit(EventProfileLoaded, p)
	return nil
}

// ReloadTemplates drops the template bank and loads it again from disk.
func (s *State) ReloadTemplates() error {
	return s.rebuild(true)
}

// SetStrict switches strict mode and rebuilds the reader over the current
// template bank.
func (s *State) SetStrict(on bool) error {
	s.mu.Lock()
	s.Profile.Strict = on
	s.mu.Unlock()
	return s.rebuild(false)
}

// Reload reacts to a watched path changing on disk: the active profile file
// reloads the profile, anything else reloads the template bank.
func (s *State) Reload(path string) error {
	s.mu.RLock()
	profilePath := s.ProfilePath
	s.mu.RUnlock()
	if profilePath != "" && sameFile(path, profilePath) {
		return s.LoadProfile(profilePath)
	}
	return s.ReloadTemplates()
}

// WatchPaths returns the files the session depends on: the template
// directories and the profile, when one was loaded.
func (s *State) WatchPaths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ranks, suits := s.Profile.TemplateDirs()
	paths := []string{ranks, suits}
	if s.ProfilePath != "" {
		paths = append(paths, s.ProfilePath)
	}
	return paths
}

// ResetHand clears the stabilized cards, e.g. when a new hand is dealt.
func (s *State) ResetHand() {
	s.mu.RLock()
	table := s.Table
	s.mu.RUnlock()
	table.Reset()
}

// HasFrame reports whether a frame is loaded.
func (s *State) HasFrame() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Current != nil
}

// Position returns the current frame index and the number of frames.
func (s *State) Position() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Index, len(s.Frames)
}

func sameFile(a, b string) bool {
	if a == b {
		return true
	}
	fa, err := os.Stat(a)
	if err != nil {
		return false
	}
	fb, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(fa, fb)
}

// SetFrames replaces the frame list and loads the first frame.
func (s *State) SetFrames(paths []string) error {
	s.mu.Lock()
	s.Frames = paths
	s.Index = 0
	s.mu.Unlock()
	if len(paths) == 0 {
		return nil
	}
	return s.LoadFrame(0)
}

// LoadFrame loads frame i of the list.
func (s *State) LoadFrame(i int) error {
	s.mu.RLock()
	if i < 0 || i >= len(s.Frames) {
		s.mu.RUnlock()
		return fmt.Errorf("frame %d out of range", i)
	}
	path := s.Frames[i]
	s.mu.RUnlock()

	f, err := frame.Load(path)
	if err != nil {
		s.Emit(EventError, err)
		return err
	}
	s.mu.Lock()
	s.Index = i
	s.Current = f
	s.mu.Unlock()
	s.Emit(EventFrameLoaded, f)
	return nil
}

// Step moves delta frames forward (or back), wrapping around.
func (s *State) Step(delta int) error {
	s.mu.RLock()
	n, i := len(s.Frames), s.Index
	s.mu.RUnlock()
	if n == 0 {
		return nil
	}
	return s.LoadFrame(((i+delta)%n + n) % n)
}

// ReadCurrent reads every slot of the current frame.
func (s *State) ReadCurrent(ctx context.Context) (reader.TableState, error) {
	state, img, err := s.readTable(ctx)
	if err != nil {
		s.Emit(EventError, err)
		return state, err
	}

	s.mu.Lock()
	s.TableImage = img
	s.Last = state
	s.mu.Unlock()
	s.Emit(EventTableRead, state)
	return state, nil
}

// readTable runs one table read while holding the read guard, so the
// template bank in use cannot be closed underneath it.
func (s *State) readTable(ctx context.Context) (reader.TableState, image.Image, error) {
	s.readMu.RLock()
	defer s.readMu.RUnlock()

	s.mu.RLock()
	f, table, p := s.Current, s.Table, s.Profile
	s.mu.RUnlock()
	if f == nil {
		return reader.TableState{}, nil, fmt.Errorf("no frame loaded")
	}

	img, err := f.Table(p.TableROI, p.DPIScale)
	if err != nil {
		return reader.TableState{}, nil, err
	}
	state, err := table.Read(ctx, img)
	return state, img, err
}

// Snapshot returns the current table image, profile and reading.
func (s *State) Snapshot() (image.Image, config.Profile, reader.TableState) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.TableImage, s.Profile, s.Last
}
