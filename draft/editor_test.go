package draft

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/eringen/artistsite/content"
)

type fakeStore struct {
	mu         sync.Mutex
	onUpdate   func(content.SiteContent)
	onError    func(error)
	subscribes int
	active     int
	saveErr    error
	saved      []content.SiteContent
}

func (f *fakeStore) Subscribe(_ context.Context, onUpdate func(content.SiteContent), onError func(error)) func() {
	f.mu.Lock()
	f.onUpdate, f.onError = onUpdate, onError
	f.subscribes++
	f.active++
	f.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			f.active--
			f.mu.Unlock()
		})
	}
}

func (f *fakeStore) Save(_ context.Context, sc content.SiteContent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, sc)
	return nil
}

func (f *fakeStore) push(sc content.SiteContent) {
	f.mu.Lock()
	fn := f.onUpdate
	f.mu.Unlock()
	fn(sc)
}

type countingInvalidator struct {
	mu   sync.Mutex
	tags []string
	err  error
}

func (c *countingInvalidator) Invalidate(_ context.Context, tag string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags = append(c.tags, tag)
	return c.err
}

func startEditor(t *testing.T, opts ...Option) (*Editor, *fakeStore, *countingInvalidator) {
	t.Helper()
	fs := &fakeStore{}
	inv := &countingInvalidator{}
	e := New(fs, inv, opts...)
	e.Start(context.Background())
	t.Cleanup(e.Close)
	fs.push(content.Defaults())
	return e, fs, inv
}

func setTagline(s string) func(*content.SiteContent) error {
	return func(c *content.SiteContent) error {
		c.Home.Tagline = s
		return nil
	}
}

func TestEditMarksDirty(t *testing.T) {
	e, _, _ := startEditor(t)
	if e.Dirty() || e.State().Status != StatusIdle {
		t.Fatalf("fresh editor state = %+v", e.State())
	}
	if err := e.Edit(setTagline("New")); err != nil {
		t.Fatal(err)
	}
	if !e.Dirty() || e.State().Status != StatusEditing {
		t.Fatalf("after edit state = %+v", e.State())
	}
	// Reverting the edit makes the draft clean again.
	if err := e.Edit(setTagline(content.Defaults().Home.Tagline)); err != nil {
		t.Fatal(err)
	}
	if e.Dirty() || e.State().Status != StatusIdle {
		t.Fatalf("after revert state = %+v", e.State())
	}
}

func TestFailedEditLeavesDraft(t *testing.T) {
	e, _, _ := startEditor(t)
	boom := errors.New("boom")
	err := e.Edit(func(c *content.SiteContent) error {
		c.Home.Tagline = "half applied"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if e.Draft().Home.Tagline != content.Defaults().Home.Tagline {
		t.Fatal("failed edit leaked into the draft")
	}
}

func TestSnapshotReplacesDirtyDraft(t *testing.T) {
	e, fs, _ := startEditor(t)
	if err := e.Edit(setTagline("local, unsaved")); err != nil {
		t.Fatal(err)
	}
	remote := content.Defaults()
	remote.Home.Tagline = "from another session"
	fs.push(remote)

	if got := e.Draft(); !reflect.DeepEqual(got, remote) {
		t.Fatalf("draft tagline = %q, want snapshot to win", got.Home.Tagline)
	}
	if e.Dirty() {
		t.Fatal("draft should equal live after a snapshot")
	}
	if e.State().Status != StatusIdle {
		t.Fatalf("status = %s", e.State().Status)
	}
}

func TestSaveFailureKeepsDraftAndRetries(t *testing.T) {
	e, fs, inv := startEditor(t)
	if err := e.Edit(setTagline("Edited")); err != nil {
		t.Fatal(err)
	}
	before := e.Draft()

	fs.saveErr = errors.New("network down")
	if err := e.Save(context.Background()); err == nil {
		t.Fatal("expected save error")
	}
	st := e.State()
	if st.Status != StatusError || st.Message != "network down" {
		t.Fatalf("state = %+v", st)
	}
	if !reflect.DeepEqual(e.Draft(), before) {
		t.Fatal("failed save changed the draft")
	}
	if len(inv.tags) != 0 {
		t.Fatal("failed save invalidated caches")
	}

	fs.saveErr = nil
	if err := e.Save(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(fs.saved) != 1 || !reflect.DeepEqual(fs.saved[0], before) {
		t.Fatal("retry did not write the unchanged draft")
	}
	if len(inv.tags) != 1 || inv.tags[0] != "site-content" {
		t.Fatalf("invalidations = %v", inv.tags)
	}
	if e.Dirty() {
		t.Fatal("draft should be clean after save")
	}
	if !reflect.DeepEqual(e.Draft(), before) {
		t.Fatal("draft should remain the editing buffer after save")
	}
}

func TestSavedReturnsToIdle(t *testing.T) {
	e, _, _ := startEditor(t, WithSavedDelay(10*time.Millisecond))
	_ = e.Edit(setTagline("x"))
	if err := e.Save(context.Background()); err != nil {
		t.Fatal(err)
	}
	if e.State().Status != StatusSaved {
		t.Fatalf("status = %s, want saved", e.State().Status)
	}
	deadline := time.Now().Add(2 * time.Second)
	for e.State().Status != StatusIdle {
		if time.Now().After(deadline) {
			t.Fatalf("status stuck at %s", e.State().Status)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestInvalidationFailureStillSaves(t *testing.T) {
	e, fs, inv := startEditor(t)
	inv.err = errors.New("redis down")
	_ = e.Edit(setTagline("x"))
	if err := e.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(fs.saved) != 1 || e.State().Status != StatusSaved {
		t.Fatalf("state = %+v", e.State())
	}
}

func TestRestartDoesNotLeakSubscription(t *testing.T) {
	e, fs, _ := startEditor(t)
	e.Start(context.Background())
	e.Start(context.Background())
	if fs.subscribes != 3 || fs.active != 1 {
		t.Fatalf("subscribes=%d active=%d", fs.subscribes, fs.active)
	}
	e.Close()
	if fs.active != 0 {
		t.Fatalf("active = %d after Close", fs.active)
	}
}

func TestReadErrorIsReported(t *testing.T) {
	e, fs, _ := startEditor(t)
	var got []State
	e.OnChange(func(s State, _ bool) { got = append(got, s) })

	fs.onUpdate(content.Defaults())
	fs.onError(errors.New("content read (subscribe): offline"))
	if st := e.State(); st.ReadError == "" {
		t.Fatalf("state = %+v", st)
	}
	// Editing still works while degraded.
	if err := e.Edit(setTagline("offline edit")); err != nil {
		t.Fatal(err)
	}
	fs.push(content.Defaults())
	if e.State().ReadError != "" {
		t.Fatal("a good snapshot should clear the read error")
	}
	if len(got) < 3 {
		t.Fatalf("listener saw %d changes", len(got))
	}
}

func TestWaitLoaded(t *testing.T) {
	fs := &fakeStore{}
	e := New(fs, nil)
	e.Start(context.Background())
	defer e.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := e.WaitLoaded(ctx); err == nil {
		t.Fatal("WaitLoaded returned before any snapshot")
	}
	fs.push(content.Defaults())
	if err := e.WaitLoaded(context.Background()); err != nil {
		t.Fatal(err)
	}
}
