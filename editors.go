package artistsite

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/artistsite/draft"
	"github.com/eringen/artistsite/logging"
	"github.com/eringen/artistsite/revalidate"
)

// UploadEvent reports media upload progress on the admin event stream.
type UploadEvent struct {
	Name    string `json:"name"`
	Percent int    `json:"percent"`
}

// editorSession is one signed-in admin's draft plus the listeners of its
// event stream.
type editorSession struct {
	editor *draft.Editor

	mu       sync.Mutex
	uploads  map[int]chan UploadEvent
	nextID   int
	streams  int
	lastUsed time.Time
}

func (s *editorSession) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

// watchUploads returns a channel of upload events and a function that
// closes it. Slow readers miss intermediate events.
func (s *editorSession) watchUploads() (<-chan UploadEvent, func()) {
	ch := make(chan UploadEvent, 16)
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.uploads[id] = ch
	s.streams++
	s.mu.Unlock()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.uploads, id)
			s.streams--
			s.mu.Unlock()
		})
	}
}

func (s *editorSession) publishUpload(ev UploadEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.uploads {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *editorSession) idle(now time.Time, max time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streams == 0 && now.Sub(s.lastUsed) > max
}

// editorRegistry keeps one editor per admin session id. Editors are created
// on first use and subscribe to the live content for their whole lifetime.
type editorRegistry struct {
	ctx   context.Context
	store draft.Store
	inval revalidate.Invalidator
	log   *logging.Logger
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*editorSession
}

func newEditorRegistry(ctx context.Context, st draft.Store, inval revalidate.Invalidator, log *logging.Logger) *editorRegistry {
	return &editorRegistry{
		ctx:      ctx,
		store:    st,
		inval:    inval,
		log:      log,
		now:      time.Now,
		sessions: make(map[string]*editorSession),
	}
}

// Get returns the session for id, starting a new editor if needed.
func (r *editorRegistry) Get(id string) *editorSession {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		s = &editorSession{
			editor:  draft.New(r.store, r.inval, draft.WithLogger(r.log.With("editor", id))),
			uploads: make(map[int]chan UploadEvent),
		}
		r.sessions[id] = s
	}
	r.mu.Unlock()
	if !ok {
		s.editor.Start(r.ctx)
		r.log.Debug("editor started", "editor", id)
	}
	s.touch(r.now())
	return s
}

// Drop closes and forgets the editor of id.
func (r *editorRegistry) Drop(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.editor.Close()
		r.log.Debug("editor dropped", "editor", id)
	}
}

func (r *editorRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// sweep drops editors without open streams that have not been used for
// maxIdle, until ctx is done.
func (r *editorRegistry) sweep(ctx context.Context, maxIdle time.Duration) {
	ticker := time.NewTicker(maxIdle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.dropIdle(maxIdle)
		}
	}
}

func (r *editorRegistry) dropIdle(maxIdle time.Duration) {
	now := r.now()
	r.mu.Lock()
	var stale []string
	for id, s := range r.sessions {
		if s.idle(now, maxIdle) {
			stale = append(stale, id)
		}
	}
	r.mu.Unlock()
	for _, id := range stale {
		r.Drop(id)
	}
}

func (r *editorRegistry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*editorSession)
	r.mu.Unlock()
	for _, s := range sessions {
		s.editor.Close()
	}
}
