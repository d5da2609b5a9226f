// Package draft holds the admin's editable copy of the site content and
// drives the save cycle.
package draft

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/eringen/artistsite/content"
	"github.com/eringen/artistsite/logging"
	"github.com/eringen/artistsite/revalidate"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusEditing Status = "editing"
	StatusSaving  Status = "saving"
	StatusSaved   Status = "saved"
	StatusError   Status = "error"
)

// SavedDelay is how long an editor reports StatusSaved before returning to
// idle.
const SavedDelay = 1200 * time.Millisecond

var ErrSaveInProgress = errors.New("draft: save already in progress")

// Store is the content client the editor reads from and writes to.
type Store interface {
	Subscribe(ctx context.Context, onUpdate func(content.SiteContent), onError func(error)) func()
	Save(ctx context.Context, sc content.SiteContent) error
}

// State is a point-in-time view of an editor.
type State struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Dirty   bool   `json:"dirty"`
	// ReadError is set while the live subscription is degraded.
	ReadError string `json:"readError,omitempty"`
}

// Editor owns one admin session's draft. Incoming snapshots replace the
// draft unconditionally; edits made since the last snapshot are lost.
type Editor struct {
	store Store
	inval revalidate.Invalidator
	log   *logging.Logger
	delay time.Duration

	mu          sync.Mutex
	draft       content.SiteContent
	live        content.SiteContent
	status      Status
	message     string
	readErr     error
	loaded      chan struct{}
	loadedOnce  sync.Once
	unsubscribe func()
	timer       *time.Timer
	listeners   map[int]func(State, bool)
	nextID      int
}

type Option func(*Editor)

func WithLogger(log *logging.Logger) Option {
	return func(e *Editor) { e.log = log }
}

// WithSavedDelay overrides SavedDelay.
func WithSavedDelay(d time.Duration) Option {
	return func(e *Editor) { e.delay = d }
}

func New(store Store, inval revalidate.Invalidator, opts ...Option) *Editor {
	e := &Editor{
		store:     store,
		inval:     inval,
		delay:     SavedDelay,
		draft:     content.Defaults(),
		live:      content.Defaults(),
		status:    StatusIdle,
		loaded:    make(chan struct{}),
		listeners: make(map[int]func(State, bool)),
	}
	for _, o := range opts {
		o(e)
	}
	if e.log == nil {
		e.log = logging.Nop()
	}
	return e
}

// Start subscribes to live content. Calling Start again replaces the
// previous subscription.
func (e *Editor) Start(ctx context.Context) {
	e.mu.Lock()
	prev := e.unsubscribe
	e.unsubscribe = nil
	e.mu.Unlock()
	if prev != nil {
		prev()
	}

	unsub := e.store.Subscribe(ctx, e.onSnapshot, e.onReadError)
	e.mu.Lock()
	e.unsubscribe = unsub
	e.mu.Unlock()
}

// WaitLoaded blocks until the first snapshot arrived or ctx is done.
func (e *Editor) WaitLoaded(ctx context.Context) error {
	select {
	case <-e.loaded:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close ends the subscription and any pending status timer.
func (e *Editor) Close() {
	e.mu.Lock()
	unsub := e.unsubscribe
	e.unsubscribe = nil
	if e.timer != nil {
		e.timer.Stop()
	}
	e.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (e *Editor) onSnapshot(sc content.SiteContent) {
	e.mu.Lock()
	e.live = content.Clone(sc)
	e.draft = content.Clone(sc)
	e.readErr = nil
	if e.status == StatusEditing {
		e.status = StatusIdle
	}
	e.mu.Unlock()
	e.loadedOnce.Do(func() { close(e.loaded) })
	e.notify(true)
}

func (e *Editor) onReadError(err error) {
	e.mu.Lock()
	e.readErr = err
	e.mu.Unlock()
	e.notify(false)
}

// Draft returns a copy of the current draft.
func (e *Editor) Draft() content.SiteContent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return content.Clone(e.draft)
}

// Live returns a copy of the last content received or saved.
func (e *Editor) Live() content.SiteContent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return content.Clone(e.live)
}

func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirtyLocked()
}

func (e *Editor) dirtyLocked() bool {
	return !content.Equal(e.draft, e.live)
}

func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Editor) stateLocked() State {
	s := State{Status: e.status, Message: e.message, Dirty: e.dirtyLocked()}
	if e.readErr != nil {
		s.ReadError = e.readErr.Error()
	}
	return s
}

// Edit applies fn to a copy of the draft and keeps the copy if fn
// succeeds.
func (e *Editor) Edit(fn func(*content.SiteContent) error) error {
	e.mu.Lock()
	next := content.Clone(e.draft)
	if err := fn(&next); err != nil {
		e.mu.Unlock()
		return err
	}
	e.draft = content.Normalize(next)
	switch e.status {
	case StatusIdle, StatusSaved, StatusError:
		if e.dirtyLocked() {
			e.status = StatusEditing
			e.message = ""
		}
	case StatusEditing:
		if !e.dirtyLocked() {
			e.status = StatusIdle
		}
	}
	e.mu.Unlock()
	e.notify(false)
	return nil
}

// Replace swaps the whole draft.
func (e *Editor) Replace(sc content.SiteContent) {
	_ = e.Edit(func(c *content.SiteContent) error {
		*c = content.Clone(sc)
		return nil
	})
}

// Save writes the whole draft and then invalidates the site content tag.
// On failure the draft is untouched and the editor reports StatusError
// with the failure message; saving again retries.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	if e.status == StatusSaving {
		e.mu.Unlock()
		return ErrSaveInProgress
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	e.status = StatusSaving
	e.message = ""
	snapshot := content.Clone(e.draft)
	e.mu.Unlock()
	e.notify(false)

	if err := e.store.Save(ctx, snapshot); err != nil {
		e.log.Error("save site content", "error", err)
		e.mu.Lock()
		e.status = StatusError
		e.message = err.Error()
		e.mu.Unlock()
		e.notify(false)
		return err
	}

	if e.inval != nil {
		if err := e.inval.Invalidate(ctx, revalidate.TagSiteContent); err != nil {
			e.log.Warn("invalidate site content", "error", err)
		}
	}

	e.mu.Lock()
	e.live = snapshot
	e.status = StatusSaved
	e.timer = time.AfterFunc(e.delay, e.settle)
	e.mu.Unlock()
	e.notify(false)
	return nil
}

func (e *Editor) settle() {
	e.mu.Lock()
	if e.status != StatusSaved {
		e.mu.Unlock()
		return
	}
	e.status = StatusIdle
	if e.dirtyLocked() {
		e.status = StatusEditing
	}
	e.mu.Unlock()
	e.notify(false)
}

// OnChange registers fn to receive the editor state after every change.
// snapshot is true when the change was a new live snapshot. The returned
// function removes fn.
func (e *Editor) OnChange(fn func(s State, snapshot bool)) func() {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	e.mu.Unlock()
	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}
}

func (e *Editor) notify(snapshot bool) {
	e.mu.Lock()
	s := e.stateLocked()
	fns := make([]func(State, bool), 0, len(e.listeners))
	for _, fn := range e.listeners {
		fns = append(fns, fn)
	}
	e.mu.Unlock()
	for _, fn := range fns {
		fn(s, snapshot)
	}
}
