package app

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"pokervision/internal/card"
	"pokervision/internal/config"
	"pokervision/internal/testcards"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherCheck(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "room.yaml")
	require.NoError(t, os.WriteFile(path, []byte("room: a\n"), 0o644))

	w := NewWatcher(time.Hour, path, "", filepath.Join(dir, "missing"))
	assert.Len(t, w.Paths(), 2)

	_, changed := w.Check()
	assert.False(t, changed)

	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))
	got, changed := w.Check()
	assert.True(t, changed)
	assert.Equal(t, filepath.Base(path), filepath.Base(got))

	_, changed = w.Check()
	assert.False(t, changed)

	// Directories report their newest child.
	dw := NewWatcher(time.Hour, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.png"), nil, 0o644))
	future := time.Now().Add(2 * time.Minute)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "new.png"), future, future))
	_, changed = dw.Check()
	assert.True(t, changed)
}

func TestWatcherSetPaths(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.yaml")
	require.NoError(t, os.WriteFile(a, nil, 0o644))
	require.NoError(t, os.WriteFile(b, nil, 0o644))

	w := NewWatcher(time.Hour, a)
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(a, later, later))

	// a keeps its old baseline, so its pending change is still reported.
	w.SetPaths(a, b, a)
	assert.Len(t, w.Paths(), 2)
	got, changed := w.Check()
	assert.True(t, changed)
	assert.Equal(t, filepath.Base(a), filepath.Base(got))

	w.SetPaths(b)
	require.NoError(t, os.Chtimes(a, later.Add(time.Minute), later.Add(time.Minute)))
	_, changed = w.Check()
	assert.False(t, changed)
}

func TestWatcherCallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "room.yaml")
	require.NoError(t, os.WriteFile(path, []byte("room: a\n"), 0o644))

	w := NewWatcher(5*time.Millisecond, path)
	fired := make(chan string, 1)
	w.OnChange(func(p string) {
		select {
		case fired <- p:
		default:
		}
	})
	w.Start()
	defer w.Stop()

	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
}

// jackState builds a session over the synthetic bank and a single
// table-sized frame showing Jc in the left hero slot.
func jackState(t *testing.T) (*State, string) {
	t.Helper()
	root := t.TempDir()
	ranks, suits := filepath.Join(root, "ranks"), filepath.Join(root, "suits")
	require.NoError(t, testcards.WriteBank(ranks, suits))

	p := config.Default()
	p.RanksDir, p.SuitsDir = ranks, suits
	p.TableROI = config.TableROI{}
	p.Slots = map[string]config.Slot{
		config.HeroLeft: {Rel: []float64{20.0 / 160, 20.0 / 210, 120.0 / 160, 170.0 / 210}},
	}
	face, err := testcards.Render("Jc")
	require.NoError(t, err)
	table, _ := testcards.OnFelt(face, 20)

	framePath := filepath.Join(root, "frame.png")
	f, err := os.Create(framePath)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, table))
	require.NoError(t, f.Close())

	s, err := NewState(p, nil)
	require.NoError(t, err)
	return s, framePath
}

func TestStateReadsFrames(t *testing.T) {
	s, framePath := jackState(t)

	var events []EventType
	s.On(EventFrameLoaded, func(interface{}) { events = append(events, EventFrameLoaded) })
	s.On(EventTableRead, func(interface{}) { events = append(events, EventTableRead) })

	_, err := s.ReadCurrent(context.Background())
	assert.Error(t, err)
	assert.False(t, s.HasFrame())

	require.NoError(t, s.SetFrames([]string{framePath}))
	state, err := s.ReadCurrent(context.Background())
	require.NoError(t, err)
	require.Len(t, state.Hero, 1)
	assert.Equal(t, card.Label("Jc"), state.Hero[0])
	assert.Equal(t, []EventType{EventFrameLoaded, EventTableRead}, events)

	require.NoError(t, s.Step(1))
	i, n := s.Position()
	assert.Equal(t, 0, i)
	assert.Equal(t, 1, n)

	img, _, last := s.Snapshot()
	assert.NotNil(t, img)
	assert.Equal(t, state.Hero, last.Hero)
}

func TestTemplateReloadDuringReads(t *testing.T) {
	s, framePath := jackState(t)
	require.NoError(t, s.SetFrames([]string{framePath}))

	const rounds = 8
	errs := make(chan error, 2*rounds)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			if _, err := s.ReadCurrent(context.Background()); err != nil {
				errs <- err
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			if err := s.ReloadTemplates(); err != nil {
				errs <- err
			}
		}
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	state, err := s.ReadCurrent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []card.Label{"Jc"}, state.Hero)
}

func TestSetStrictKeepsBank(t *testing.T) {
	s, _ := jackState(t)
	lib := s.Library

	reloads := 0
	s.On(EventTemplatesLoaded, func(interface{}) { reloads++ })
	require.NoError(t, s.SetStrict(true))

	assert.True(t, s.Reader.Profile().Strict)
	assert.Same(t, lib, s.Library)
	assert.Zero(t, reloads)
	_, p, _ := s.Snapshot()
	assert.True(t, p.Strict)
}

func TestReloadDispatchesOnPath(t *testing.T) {
	s, _ := jackState(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "room.yaml")
	require.NoError(t, os.WriteFile(path, []byte("room: first\n"), 0o644))
	require.NoError(t, s.LoadProfile(path))
	assert.Contains(t, s.WatchPaths(), path)

	require.NoError(t, os.WriteFile(path, []byte("room: second\n"), 0o644))
	var templates int
	s.On(EventTemplatesLoaded, func(interface{}) { templates++ })
	require.NoError(t, s.Reload(path))
	_, p, _ := s.Snapshot()
	assert.Equal(t, "second", p.Room)

	ranks, _ := p.TemplateDirs()
	require.NoError(t, s.Reload(ranks))
	assert.Equal(t, 1, templates)
}

func TestStateLoadProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "room.yaml")
	require.NoError(t, os.WriteFile(path, []byte("room: loaded\nstrict: true\n"), 0o644))

	s, err := NewState(config.Default(), nil)
	require.NoError(t, err)

	loaded := false
	s.On(EventProfileLoaded, func(interface{}) { loaded = true })
	require.NoError(t, s.LoadProfile(path))
	assert.True(t, loaded)
	assert.Equal(t, "loaded", s.Profile.Room)
	assert.True(t, s.Reader.Profile().Strict)
}
