// Package content defines the site content document: its schema, the
// hardcoded default instance, and the total merge that turns a partial
// stored document into a fully-populated one.
//
// Field names in the JSON tags are the stored document shape. All media
// references are plain URL strings; the schema does not record whether a
// URL points at managed storage or an external host.
package content

// SiteContent is the single root document rendered by every page.
type SiteContent struct {
	Home    Home    `json:"home"`
	Bio     Bio     `json:"bio"`
	Live    Live    `json:"live"`
	Work    Work    `json:"work"`
	Contact Contact `json:"contact"`
	Lab     Lab     `json:"lab"`
}

type Home struct {
	Tagline       string  `json:"tagline"`
	LatestRelease Release `json:"latestRelease"`
}

// Release is the featured release block on the home page.
type Release struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	SpotifyEmbedURL string `json:"spotifyEmbedUrl"`
	AudioSrc        string `json:"audioSrc"`
	ArtworkSrc      string `json:"artworkSrc"`
}

type Bio struct {
	Headline    string        `json:"headline"`
	HeaderImage string        `json:"headerImage"`
	Paragraphs  []string      `json:"paragraphs"`
	Gallery     []GalleryItem `json:"gallery"`
}

// GalleryItem has no identity beyond its position in Bio.Gallery.
type GalleryItem struct {
	Src         string `json:"src"`
	Alt         string `json:"alt"`
	PhraseTitle string `json:"phraseTitle"`
	PhraseBody  string `json:"phraseBody"`
}

type Live struct {
	Headline string `json:"headline"`
	Subtitle string `json:"subtitle"`
	Shows    []Show `json:"shows"`
}

// ShowStatus is the ticket availability of a show.
type ShowStatus string

const (
	StatusAvailable   ShowStatus = "available"
	StatusSoldOut     ShowStatus = "sold_out"
	StatusSellingFast ShowStatus = "selling_fast"
)

// Valid reports whether s is one of the known statuses.
func (s ShowStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusSoldOut, StatusSellingFast:
		return true
	}
	return false
}

type Show struct {
	ID         string     `json:"id"`
	Date       string     `json:"date"`
	Year       string     `json:"year"`
	Venue      string     `json:"venue"`
	City       string     `json:"city"`
	Country    string     `json:"country"`
	Status     ShowStatus `json:"status"`
	TicketLink string     `json:"ticketLink"`
}

type Work struct {
	Headline string    `json:"headline"`
	Projects []Project `json:"projects"`
}

type Project struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Role       string `json:"role"`
	Color      string `json:"color"`
	AudioSrc   string `json:"audioSrc,omitempty"`
	ArtworkSrc string `json:"artworkSrc,omitempty"`
}

type Contact struct {
	Headline string  `json:"headline"`
	Email    string  `json:"email"`
	Socials  Socials `json:"socials"`
}

// Socials holds optional profile links; empty means not shown.
type Socials struct {
	Instagram  string `json:"instagram,omitempty"`
	Twitter    string `json:"twitter,omitempty"`
	Spotify    string `json:"spotify,omitempty"`
	Soundcloud string `json:"soundcloud,omitempty"`
	Youtube    string `json:"youtube,omitempty"`
}

type Lab struct {
	Home      LabHome   `json:"home"`
	Gear      Gear      `json:"gear"`
	Playlists Playlists `json:"playlists"`
	Tutorials Tutorials `json:"tutorials"`
}

type LabHome struct {
	Headline string    `json:"headline"`
	Cards    []LabCard `json:"cards"`
}

// LabCard is a promotional tile on the home page linking into the lab.
type LabCard struct {
	ID       string `json:"id"`
	ImageSrc string `json:"imageSrc"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Link     string `json:"link"`
	Hidden   bool   `json:"hidden"`
}

// VisibleCards returns the cards not marked hidden, in order.
func (h LabHome) VisibleCards() []LabCard {
	out := make([]LabCard, 0, len(h.Cards))
	for _, c := range h.Cards {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}

type Gear struct {
	Headline string        `json:"headline"`
	Sections []GearSection `json:"sections"`
}

type GearSection struct {
	ID    string     `json:"id"`
	Title string     `json:"title"`
	Items []GearItem `json:"items"`
}

type GearItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageSrc    string `json:"imageSrc,omitempty"`
}

// Platform selects the embed player used for a playlist.
type Platform string

const (
	PlatformSpotify    Platform = "spotify"
	PlatformSoundcloud Platform = "soundcloud"
)

type Playlists struct {
	Headline string         `json:"headline"`
	Items    []PlaylistItem `json:"items"`
}

type PlaylistItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	EmbedURL    string   `json:"embedUrl"`
	Platform    Platform `json:"platform"`
	Description string   `json:"description,omitempty"`
}

// EmbedHeight is the iframe height the player for p needs.
func (p PlaylistItem) EmbedHeight() int {
	if p.Platform == PlatformSoundcloud {
		return 166
	}
	return 352
}

type Tutorials struct {
	Headline string         `json:"headline"`
	Items    []TutorialItem `json:"items"`
}

type TutorialItem struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	VideoURL     string `json:"videoUrl"`
	Description  string `json:"description,omitempty"`
	ThumbnailSrc string `json:"thumbnailSrc,omitempty"`
}
