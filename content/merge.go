package content

import (
	"errors"
	"reflect"
	"slices"
)

// Merge combines a partial stored document with d and always returns a
// fully-populated SiteContent. Each top-level section is merged field by
// field against its default; nested objects one level down (the latest
// release, the lab sub-pages) are merged against their own defaults. List
// fields are taken wholesale from r when present and never merged element
// by element. Merge does not retain references into r or d.
func Merge(r Partial, d SiteContent) SiteContent {
	out := SiteContent{
		Home:    mergeHome(r.Home, d.Home),
		Bio:     mergeBio(r.Bio, d.Bio),
		Live:    mergeLive(r.Live, d.Live),
		Work:    mergeWork(r.Work, d.Work),
		Contact: mergeContact(r.Contact, d.Contact),
		Lab:     mergeLab(r.Lab, d.Lab),
	}
	return Normalize(Clone(out))
}

// MergeBody decodes a stored body and merges it with d. When some sections
// fail to decode the error is a *DecodeError and the returned content is
// still complete: those sections take their value from d.
func MergeBody(body []byte, d SiteContent) (SiteContent, error) {
	p, err := DecodePartial(body)
	var derr *DecodeError
	if err != nil && !errors.As(err, &derr) {
		return SiteContent{}, err
	}
	return Merge(p, d), err
}

func str(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

func list[T any](v, def []T) []T {
	if v == nil {
		return def
	}
	return v
}

func mergeHome(r *PartialHome, d Home) Home {
	if r == nil {
		return d
	}
	return Home{
		Tagline:       str(r.Tagline, d.Tagline),
		LatestRelease: mergeRelease(r.LatestRelease, d.LatestRelease),
	}
}

func mergeRelease(r *PartialRelease, d Release) Release {
	if r == nil {
		return d
	}
	return Release{
		Title:           str(r.Title, d.Title),
		Description:     str(r.Description, d.Description),
		SpotifyEmbedURL: str(r.SpotifyEmbedURL, d.SpotifyEmbedURL),
		AudioSrc:        str(r.AudioSrc, d.AudioSrc),
		ArtworkSrc:      str(r.ArtworkSrc, d.ArtworkSrc),
	}
}

func mergeBio(r *PartialBio, d Bio) Bio {
	if r == nil {
		return d
	}
	return Bio{
		Headline:    str(r.Headline, d.Headline),
		HeaderImage: str(r.HeaderImage, d.HeaderImage),
		Paragraphs:  list(r.Paragraphs, d.Paragraphs),
		Gallery:     list(r.Gallery, d.Gallery),
	}
}

func mergeLive(r *PartialLive, d Live) Live {
	if r == nil {
		return d
	}
	return Live{
		Headline: str(r.Headline, d.Headline),
		Subtitle: str(r.Subtitle, d.Subtitle),
		Shows:    list(r.Shows, d.Shows),
	}
}

func mergeWork(r *PartialWork, d Work) Work {
	if r == nil {
		return d
	}
	return Work{
		Headline: str(r.Headline, d.Headline),
		Projects: list(r.Projects, d.Projects),
	}
}

func mergeContact(r *PartialContact, d Contact) Contact {
	if r == nil {
		return d
	}
	socials := d.Socials
	if r.Socials != nil {
		socials = *r.Socials
	}
	return Contact{
		Headline: str(r.Headline, d.Headline),
		Email:    str(r.Email, d.Email),
		Socials:  socials,
	}
}

func mergeLab(r *PartialLab, d Lab) Lab {
	if r == nil {
		return d
	}
	out := d
	if h := r.Home; h != nil {
		out.Home = LabHome{Headline: str(h.Headline, d.Home.Headline), Cards: list(h.Cards, d.Home.Cards)}
	}
	if g := r.Gear; g != nil {
		out.Gear = Gear{Headline: str(g.Headline, d.Gear.Headline), Sections: list(g.Sections, d.Gear.Sections)}
	}
	if p := r.Playlists; p != nil {
		out.Playlists = Playlists{Headline: str(p.Headline, d.Playlists.Headline), Items: list(p.Items, d.Playlists.Items)}
	}
	if t := r.Tutorials; t != nil {
		out.Tutorials = Tutorials{Headline: str(t.Headline, d.Tutorials.Headline), Items: list(t.Items, d.Tutorials.Items)}
	}
	return out
}

// Normalize replaces nil lists, including the item lists nested inside gear
// sections, with empty ones so encoded documents never carry null lists.
// It modifies c in place and returns it.
func Normalize(c SiteContent) SiteContent {
	c.Bio.Paragraphs = nonNil(c.Bio.Paragraphs)
	c.Bio.Gallery = nonNil(c.Bio.Gallery)
	c.Live.Shows = nonNil(c.Live.Shows)
	c.Work.Projects = nonNil(c.Work.Projects)
	c.Lab.Home.Cards = nonNil(c.Lab.Home.Cards)
	c.Lab.Gear.Sections = nonNil(c.Lab.Gear.Sections)
	for i := range c.Lab.Gear.Sections {
		c.Lab.Gear.Sections[i].Items = nonNil(c.Lab.Gear.Sections[i].Items)
	}
	c.Lab.Playlists.Items = nonNil(c.Lab.Playlists.Items)
	c.Lab.Tutorials.Items = nonNil(c.Lab.Tutorials.Items)
	return c
}

// Clone returns a deep copy of c.
func Clone(c SiteContent) SiteContent {
	out := c
	out.Bio.Paragraphs = slices.Clone(c.Bio.Paragraphs)
	out.Bio.Gallery = slices.Clone(c.Bio.Gallery)
	out.Live.Shows = slices.Clone(c.Live.Shows)
	out.Work.Projects = slices.Clone(c.Work.Projects)
	out.Lab.Home.Cards = slices.Clone(c.Lab.Home.Cards)
	out.Lab.Gear.Sections = slices.Clone(c.Lab.Gear.Sections)
	for i := range out.Lab.Gear.Sections {
		out.Lab.Gear.Sections[i].Items = slices.Clone(c.Lab.Gear.Sections[i].Items)
	}
	out.Lab.Playlists.Items = slices.Clone(c.Lab.Playlists.Items)
	out.Lab.Tutorials.Items = slices.Clone(c.Lab.Tutorials.Items)
	return out
}

// Equal reports whether a and b hold the same content. Nil and empty
// lists compare equal.
func Equal(a, b SiteContent) bool {
	return reflect.DeepEqual(Normalize(Clone(a)), Normalize(Clone(b)))
}
