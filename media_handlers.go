package artistsite

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/artistsite/content"
	"github.com/eringen/artistsite/media"
)

// maxUploadSize bounds a single media upload.
const maxUploadSize = 50 << 20 // 50MB

func mediaKind(c echo.Context) (media.Kind, error) {
	k := c.QueryParam("kind")
	if k == "" {
		k = c.FormValue("kind")
	}
	kind, err := media.ParseKind(k)
	if err != nil {
		return "", badRequest(err)
	}
	return kind, nil
}

// handleMediaUpload stores the multipart "file" and, when "field" names a
// media reference in the draft, points that field at the new URL. Progress
// is published on the session's event stream.
func (a *App) handleMediaUpload(c echo.Context) error {
	kind, err := mediaKind(c)
	if err != nil {
		return a.apiError(c, err)
	}
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxUploadSize+1<<20)
	file, err := c.FormFile("file")
	if err != nil {
		return a.apiError(c, errBadRequest("no file provided"))
	}
	if file.Size > maxUploadSize {
		return a.apiError(c, errBadRequest(fmt.Sprintf("file too large (max %dMB)", maxUploadSize>>20)))
	}
	field := c.FormValue("field")
	sess := a.session(c)
	if field != "" {
		// Reject unknown fields before anything is written to the bucket.
		if _, err := content.MediaRef(sess.editor.Draft(), field); err != nil {
			return a.apiError(c, badRequest(err))
		}
	}

	src, err := file.Open()
	if err != nil {
		return a.apiError(c, err)
	}
	defer src.Close()

	url, err := a.Media.Upload(c.Request().Context(), file.Filename, file.Size, src, kind, func(pct int) {
		sess.publishUpload(UploadEvent{Name: file.Filename, Percent: pct})
	})
	if err != nil {
		return a.apiError(c, err)
	}
	if field != "" {
		if err := sess.editor.Edit(func(sc *content.SiteContent) error {
			return content.SetMediaRef(sc, field, url)
		}); err != nil {
			return a.apiError(c, badRequest(err))
		}
	}
	return c.JSON(http.StatusCreated, uploadResponse{URL: url, Field: field, State: sess.editor.State()})
}

func (a *App) handleMediaList(c echo.Context) error {
	kind, err := mediaKind(c)
	if err != nil {
		return a.apiError(c, err)
	}
	assets, err := a.Media.List(c.Request().Context(), kind)
	if err != nil {
		return a.apiError(c, err)
	}
	if assets == nil {
		assets = []media.Asset{}
	}
	return c.JSON(http.StatusOK, mediaListResponse{Kind: kind, Assets: assets})
}

// handleMediaDelete removes the object behind ?url= and clears the draft
// field named by ?field= if it still points at that URL.
func (a *App) handleMediaDelete(c echo.Context) error {
	url := c.QueryParam("url")
	if url == "" {
		return a.apiError(c, errBadRequest("url required"))
	}
	field := c.QueryParam("field")
	sess := a.session(c)
	if field != "" {
		if err := sess.editor.Edit(func(sc *content.SiteContent) error {
			cur, err := content.MediaRef(*sc, field)
			if err != nil || cur != url {
				return err
			}
			return content.SetMediaRef(sc, field, "")
		}); err != nil {
			return a.apiError(c, badRequest(err))
		}
	}
	a.Media.Remove(c.Request().Context(), url)
	return a.draftJSON(c, http.StatusOK, sess)
}
