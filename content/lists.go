package content

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrUnknownList  = errors.New("content: unknown list")
	ErrUnknownOp    = errors.New("content: unknown list operation")
	ErrItemNotFound = errors.New("content: list item not found")
)

// List names accepted by Apply.
const (
	ListGallery   = "bio.gallery"
	ListShows     = "live.shows"
	ListProjects  = "work.projects"
	ListCards     = "lab.home.cards"
	ListSections  = "lab.gear.sections"
	ListGearItems = "lab.gear.items"
	ListPlaylists = "lab.playlists.items"
	ListTutorials = "lab.tutorials.items"
)

// Operations accepted by Apply.
const (
	OpAdd    = "add"
	OpMove   = "move"
	OpRemove = "remove"
	OpToggle = "toggle"
)

// ListOp is one structural edit of a list in the document. Items are
// addressed by ID, except gallery items which only have a position and are
// addressed by Index. Parent is the gear section ID for gear item edits.
type ListOp struct {
	List   string `json:"list"`
	Op     string `json:"op"`
	ID     string `json:"id,omitempty"`
	Index  int    `json:"index,omitempty"`
	Delta  int    `json:"delta,omitempty"`
	Parent string `json:"parent,omitempty"`
}

// Prepend returns a new slice with v in front of s.
func Prepend[T any](s []T, v T) []T {
	out := make([]T, 0, len(s)+1)
	out = append(out, v)
	return append(out, s...)
}

// Move returns a copy of s with the element at i swapped with its
// neighbour at i+delta. Out-of-range moves return an unchanged copy.
func Move[T any](s []T, i, delta int) []T {
	out := slices.Clone(s)
	j := i + delta
	if i < 0 || i >= len(out) || j < 0 || j >= len(out) || delta == 0 {
		return out
	}
	out[i], out[j] = out[j], out[i]
	return out
}

// RemoveAt returns a copy of s without the element at i.
func RemoveAt[T any](s []T, i int) []T {
	if i < 0 || i >= len(s) {
		return slices.Clone(s)
	}
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

func indexOf[T any](s []T, id string, idOf func(T) string) int {
	return slices.IndexFunc(s, func(v T) bool { return idOf(v) == id })
}

// editList applies add/move/remove to an identified list.
func editList[T any](s []T, op ListOp, idOf func(T) string, fresh func() T, prepend bool) ([]T, error) {
	switch op.Op {
	case OpAdd:
		if prepend {
			return Prepend(s, fresh()), nil
		}
		return append(slices.Clone(s), fresh()), nil
	case OpMove, OpRemove:
		i := indexOf(s, op.ID, idOf)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s %q", ErrItemNotFound, op.List, op.ID)
		}
		if op.Op == OpMove {
			return Move(s, i, op.Delta), nil
		}
		return RemoveAt(s, i), nil
	default:
		return nil, fmt.Errorf("%w: %s on %s", ErrUnknownOp, op.Op, op.List)
	}
}

// Apply performs op on c. newID supplies identifiers for added items.
// On error c is left unchanged.
func Apply(c *SiteContent, op ListOp, newID func() string) error {
	var err error
	switch op.List {
	case ListGallery:
		c.Bio.Gallery, err = editGallery(c.Bio.Gallery, op)
	case ListShows:
		var shows []Show
		shows, err = editList(c.Live.Shows, op, func(s Show) string { return s.ID }, func() Show { return NewShow(newID()) }, true)
		if err == nil {
			c.Live.Shows = shows
		}
	case ListProjects:
		var projects []Project
		projects, err = editList(c.Work.Projects, op, func(p Project) string { return p.ID }, func() Project { return NewProject(newID()) }, true)
		if err == nil {
			c.Work.Projects = projects
		}
	case ListCards:
		c.Lab.Home.Cards, err = editCards(c.Lab.Home.Cards, op)
	case ListSections:
		var sections []GearSection
		sections, err = editList(c.Lab.Gear.Sections, op, func(s GearSection) string { return s.ID }, func() GearSection { return NewGearSection(newID()) }, true)
		if err == nil {
			c.Lab.Gear.Sections = sections
		}
	case ListGearItems:
		err = editGearItems(&c.Lab.Gear, op, newID)
	case ListPlaylists:
		var items []PlaylistItem
		items, err = editList(c.Lab.Playlists.Items, op, func(p PlaylistItem) string { return p.ID }, func() PlaylistItem { return NewPlaylistItem(newID()) }, true)
		if err == nil {
			c.Lab.Playlists.Items = items
		}
	case ListTutorials:
		var items []TutorialItem
		items, err = editList(c.Lab.Tutorials.Items, op, func(t TutorialItem) string { return t.ID }, func() TutorialItem { return NewTutorialItem(newID()) }, true)
		if err == nil {
			c.Lab.Tutorials.Items = items
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownList, op.List)
	}
	return err
}

func editGallery(s []GalleryItem, op ListOp) ([]GalleryItem, error) {
	switch op.Op {
	case OpAdd:
		return append(slices.Clone(s), GalleryItem{}), nil
	case OpMove, OpRemove:
		if op.Index < 0 || op.Index >= len(s) {
			return s, fmt.Errorf("%w: %s[%d]", ErrItemNotFound, op.List, op.Index)
		}
		if op.Op == OpMove {
			return Move(s, op.Index, op.Delta), nil
		}
		return RemoveAt(s, op.Index), nil
	}
	return s, fmt.Errorf("%w: %s on %s", ErrUnknownOp, op.Op, op.List)
}

func editCards(s []LabCard, op ListOp) ([]LabCard, error) {
	if op.Op != OpToggle {
		return s, fmt.Errorf("%w: %s on %s", ErrUnknownOp, op.Op, op.List)
	}
	i := indexOf(s, op.ID, func(c LabCard) string { return c.ID })
	if i < 0 {
		return s, fmt.Errorf("%w: %s %q", ErrItemNotFound, op.List, op.ID)
	}
	out := slices.Clone(s)
	out[i].Hidden = !out[i].Hidden
	return out, nil
}

func editGearItems(g *Gear, op ListOp, newID func() string) error {
	si := indexOf(g.Sections, op.Parent, func(s GearSection) string { return s.ID })
	if si < 0 {
		return fmt.Errorf("%w: %s %q", ErrItemNotFound, ListSections, op.Parent)
	}
	items, err := editList(g.Sections[si].Items, op, func(it GearItem) string { return it.ID }, func() GearItem { return NewGearItem(newID()) }, false)
	if err != nil {
		return err
	}
	sections := slices.Clone(g.Sections)
	sections[si].Items = items
	g.Sections = sections
	return nil
}

// SplitParagraphs turns newline-separated text into paragraphs, dropping
// empty lines.
func SplitParagraphs(text string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return nonNil(out)
}

func NewShow(id string) Show {
	return Show{ID: id, Date: "OCT 12", Year: "2025", Venue: "Venue Name", City: "City", Country: "Country", Status: StatusAvailable, TicketLink: "#"}
}

func NewProject(id string) Project {
	return Project{ID: id, Title: "New Project", Artist: "Artist Name", Role: "Role", Color: "bg-neutral-800"}
}

func NewGearSection(id string) GearSection {
	return GearSection{ID: id, Title: "New Section", Items: []GearItem{}}
}

func NewGearItem(id string) GearItem {
	return GearItem{ID: id, Name: "New Item"}
}

func NewPlaylistItem(id string) PlaylistItem {
	return PlaylistItem{ID: id, Title: "New Playlist", Platform: PlatformSpotify}
}

func NewTutorialItem(id string) TutorialItem {
	return TutorialItem{ID: id, Title: "New Tutorial"}
}
