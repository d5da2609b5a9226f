package artistsite

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/artistsite/content"
	"github.com/eringen/artistsite/draft"
)

const sseHeartbeat = 15 * time.Second

// snapshotEvent is sent when the stream opens and whenever a new live
// snapshot reaches the editor.
type snapshotEvent struct {
	Draft content.SiteContent `json:"draft"`
	State draft.State         `json:"state"`
}

// changeSignal coalesces editor notifications. Only the latest state is
// ever written, and a pending snapshot survives until it is sent.
type changeSignal struct {
	mu       sync.Mutex
	snapshot bool
	wake     chan struct{}
}

func newChangeSignal() *changeSignal {
	return &changeSignal{wake: make(chan struct{}, 1)}
}

func (s *changeSignal) notify(snapshot bool) {
	s.mu.Lock()
	s.snapshot = s.snapshot || snapshot
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *changeSignal) take() (snapshot bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, s.snapshot = s.snapshot, false
	return snapshot
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, b); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

// handleEvents streams the editor of the signed-in session: a snapshot
// first, then status and snapshot events as the editor changes, plus
// upload progress.
func (a *App) handleEvents(c echo.Context) error {
	w := c.Response()
	flusher, ok := w.Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "streaming unsupported")
	}
	sess := a.session(c)
	ed := sess.editor

	sig := newChangeSignal()
	stop := ed.OnChange(func(_ draft.State, snapshot bool) { sig.notify(snapshot) })
	defer stop()
	uploads, closeUploads := sess.watchUploads()
	defer closeUploads()
	defer func() { sess.touch(a.editors.now()) }()

	h := w.Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	ctx := c.Request().Context()
	if err := ed.WaitLoaded(ctx); err != nil {
		return nil
	}
	if err := writeEvent(w, flusher, "snapshot", snapshotEvent{Draft: ed.Draft(), State: ed.State()}); err != nil {
		return nil
	}

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()
	for {
		var err error
		select {
		case <-ctx.Done():
			return nil
		case <-heartbeat.C:
			_, err = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case <-sig.wake:
			if sig.take() {
				err = writeEvent(w, flusher, "snapshot", snapshotEvent{Draft: ed.Draft(), State: ed.State()})
			} else {
				err = writeEvent(w, flusher, "status", ed.State())
			}
		case ev := <-uploads:
			err = writeEvent(w, flusher, "upload", ev)
		}
		if err != nil {
			a.log.Debug("event stream closed", "error", err)
			return nil
		}
	}
}
