package artistsite

import (
	"github.com/eringen/artistsite/content"
	"github.com/eringen/artistsite/draft"
	"github.com/eringen/artistsite/media"
)

// errorResponse is the body of every failed admin JSON request.
type errorResponse struct {
	Error string `json:"error"`
}

// draftResponse carries the editor's current draft and state.
type draftResponse struct {
	Draft content.SiteContent `json:"draft"`
	State draft.State         `json:"state"`
}

// stateResponse is returned by endpoints that only change editor status.
type stateResponse struct {
	State draft.State `json:"state"`
}

// paragraphsRequest replaces the bio paragraphs from newline-separated text.
type paragraphsRequest struct {
	Text string `json:"text"`
}

type uploadResponse struct {
	URL   string      `json:"url"`
	Field string      `json:"field,omitempty"`
	State draft.State `json:"state"`
}

type mediaListResponse struct {
	Kind   media.Kind    `json:"kind"`
	Assets []media.Asset `json:"assets"`
}
