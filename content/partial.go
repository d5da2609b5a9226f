package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Partial is a stored document of unknown completeness. A nil pointer or
// nil slice means the field was absent (or null) in the stored JSON; an
// empty slice means it was stored as an empty list.
type Partial struct {
	Home    *PartialHome    `json:"home,omitempty"`
	Bio     *PartialBio     `json:"bio,omitempty"`
	Live    *PartialLive    `json:"live,omitempty"`
	Work    *PartialWork    `json:"work,omitempty"`
	Contact *PartialContact `json:"contact,omitempty"`
	Lab     *PartialLab     `json:"lab,omitempty"`
}

type PartialHome struct {
	Tagline       *string         `json:"tagline,omitempty"`
	LatestRelease *PartialRelease `json:"latestRelease,omitempty"`
}

type PartialRelease struct {
	Title           *string `json:"title,omitempty"`
	Description     *string `json:"description,omitempty"`
	SpotifyEmbedURL *string `json:"spotifyEmbedUrl,omitempty"`
	AudioSrc        *string `json:"audioSrc,omitempty"`
	ArtworkSrc      *string `json:"artworkSrc,omitempty"`
}

type PartialBio struct {
	Headline    *string       `json:"headline,omitempty"`
	HeaderImage *string       `json:"headerImage,omitempty"`
	Paragraphs  []string      `json:"paragraphs"`
	Gallery     []GalleryItem `json:"gallery"`
}

type PartialLive struct {
	Headline *string `json:"headline,omitempty"`
	Subtitle *string `json:"subtitle,omitempty"`
	Shows    []Show  `json:"shows"`
}

type PartialWork struct {
	Headline *string   `json:"headline,omitempty"`
	Projects []Project `json:"projects"`
}

type PartialContact struct {
	Headline *string  `json:"headline,omitempty"`
	Email    *string  `json:"email,omitempty"`
	Socials  *Socials `json:"socials,omitempty"`
}

type PartialLab struct {
	Home      *PartialLabHome   `json:"home,omitempty"`
	Gear      *PartialGear      `json:"gear,omitempty"`
	Playlists *PartialPlaylists `json:"playlists,omitempty"`
	Tutorials *PartialTutorials `json:"tutorials,omitempty"`
}

type PartialLabHome struct {
	Headline *string   `json:"headline,omitempty"`
	Cards    []LabCard `json:"cards"`
}

type PartialGear struct {
	Headline *string       `json:"headline,omitempty"`
	Sections []GearSection `json:"sections"`
}

type PartialPlaylists struct {
	Headline *string        `json:"headline,omitempty"`
	Items    []PlaylistItem `json:"items"`
}

type PartialTutorials struct {
	Headline *string        `json:"headline,omitempty"`
	Items    []TutorialItem `json:"items"`
}

// SectionError is a stored section that could not be decoded.
type SectionError struct {
	Section string
	Err     error
}

func (e SectionError) Error() string { return e.Section + ": " + e.Err.Error() }

// DecodeError lists the sections of a stored body that failed to decode.
// The other sections decode normally.
type DecodeError struct {
	Sections []SectionError
}

func (e *DecodeError) Error() string {
	parts := make([]string, len(e.Sections))
	for i, s := range e.Sections {
		parts[i] = s.Error()
	}
	return "decode site content: " + strings.Join(parts, "; ")
}

func (e *DecodeError) Unwrap() []error {
	errs := make([]error, len(e.Sections))
	for i, s := range e.Sections {
		errs[i] = s.Err
	}
	return errs
}

// DecodePartial parses a stored document body section by section. An
// empty body decodes to an empty Partial. A body that is not a JSON object
// fails outright; sections of the wrong shape are left absent and reported
// in a *DecodeError next to the Partial holding the sections that did
// decode.
func DecodePartial(body []byte) (Partial, error) {
	var p Partial
	if len(bytes.TrimSpace(body)) == 0 {
		return p, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return Partial{}, fmt.Errorf("decode site content: %w", err)
	}
	var derr DecodeError
	decodeSection(raw, "home", &p.Home, &derr)
	decodeSection(raw, "bio", &p.Bio, &derr)
	decodeSection(raw, "live", &p.Live, &derr)
	decodeSection(raw, "work", &p.Work, &derr)
	decodeSection(raw, "contact", &p.Contact, &derr)
	decodeSection(raw, "lab", &p.Lab, &derr)
	if len(derr.Sections) > 0 {
		return p, &derr
	}
	return p, nil
}

func decodeSection[T any](raw map[string]json.RawMessage, name string, dst **T, derr *DecodeError) {
	b, ok := raw[name]
	if !ok || bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return
	}
	v, err := decodeInto[T](b)
	if err != nil {
		derr.Sections = append(derr.Sections, SectionError{Section: name, Err: err})
		return
	}
	*dst = v
}

// Partial returns c as a Partial with every field present.
func (c SiteContent) Partial() Partial {
	c = Clone(c)
	return Partial{
		Home: &PartialHome{
			Tagline: &c.Home.Tagline,
			LatestRelease: &PartialRelease{
				Title:           &c.Home.LatestRelease.Title,
				Description:     &c.Home.LatestRelease.Description,
				SpotifyEmbedURL: &c.Home.LatestRelease.SpotifyEmbedURL,
				AudioSrc:        &c.Home.LatestRelease.AudioSrc,
				ArtworkSrc:      &c.Home.LatestRelease.ArtworkSrc,
			},
		},
		Bio: &PartialBio{
			Headline:    &c.Bio.Headline,
			HeaderImage: &c.Bio.HeaderImage,
			Paragraphs:  nonNil(c.Bio.Paragraphs),
			Gallery:     nonNil(c.Bio.Gallery),
		},
		Live: &PartialLive{
			Headline: &c.Live.Headline,
			Subtitle: &c.Live.Subtitle,
			Shows:    nonNil(c.Live.Shows),
		},
		Work: &PartialWork{
			Headline: &c.Work.Headline,
			Projects: nonNil(c.Work.Projects),
		},
		Contact: &PartialContact{
			Headline: &c.Contact.Headline,
			Email:    &c.Contact.Email,
			Socials:  &c.Contact.Socials,
		},
		Lab: &PartialLab{
			Home:      &PartialLabHome{Headline: &c.Lab.Home.Headline, Cards: nonNil(c.Lab.Home.Cards)},
			Gear:      &PartialGear{Headline: &c.Lab.Gear.Headline, Sections: nonNil(c.Lab.Gear.Sections)},
			Playlists: &PartialPlaylists{Headline: &c.Lab.Playlists.Headline, Items: nonNil(c.Lab.Playlists.Items)},
			Tutorials: &PartialTutorials{Headline: &c.Lab.Tutorials.Headline, Items: nonNil(c.Lab.Tutorials.Items)},
		},
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
