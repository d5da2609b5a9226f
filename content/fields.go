package content

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnknownField = errors.New("content: unknown media field")

// SetMediaRef stores url in the media reference field named by path.
// Paths address list elements by id (by index for the gallery):
//
//	home.latestRelease.audioSrc
//	home.latestRelease.artworkSrc
//	bio.headerImage
//	bio.gallery.<index>.src
//	work.projects.<id>.audioSrc | artworkSrc
//	lab.home.cards.<id>.imageSrc
//	lab.gear.sections.<sectionID>.items.<id>.imageSrc
//	lab.tutorials.items.<id>.thumbnailSrc
func SetMediaRef(c *SiteContent, path, url string) error {
	ref, err := mediaRef(c, path)
	if err != nil {
		return err
	}
	*ref = url
	return nil
}

// MediaRef returns the current value of the media field named by path.
func MediaRef(c SiteContent, path string) (string, error) {
	ref, err := mediaRef(&c, path)
	if err != nil {
		return "", err
	}
	return *ref, nil
}

func mediaRef(c *SiteContent, path string) (*string, error) {
	parts := strings.Split(path, ".")
	bad := fmt.Errorf("%w: %q", ErrUnknownField, path)
	switch {
	case path == "home.latestRelease.audioSrc":
		return &c.Home.LatestRelease.AudioSrc, nil
	case path == "home.latestRelease.artworkSrc":
		return &c.Home.LatestRelease.ArtworkSrc, nil
	case path == "bio.headerImage":
		return &c.Bio.HeaderImage, nil
	case len(parts) == 4 && parts[0] == "bio" && parts[1] == "gallery" && parts[3] == "src":
		i, err := strconv.Atoi(parts[2])
		if err != nil || i < 0 || i >= len(c.Bio.Gallery) {
			return nil, bad
		}
		return &c.Bio.Gallery[i].Src, nil
	case len(parts) == 4 && parts[0] == "work" && parts[1] == "projects":
		i := indexOf(c.Work.Projects, parts[2], func(p Project) string { return p.ID })
		if i < 0 {
			return nil, bad
		}
		switch parts[3] {
		case "audioSrc":
			return &c.Work.Projects[i].AudioSrc, nil
		case "artworkSrc":
			return &c.Work.Projects[i].ArtworkSrc, nil
		}
	case len(parts) == 5 && strings.HasPrefix(path, "lab.home.cards.") && parts[4] == "imageSrc":
		i := indexOf(c.Lab.Home.Cards, parts[3], func(lc LabCard) string { return lc.ID })
		if i < 0 {
			return nil, bad
		}
		return &c.Lab.Home.Cards[i].ImageSrc, nil
	case len(parts) == 7 && strings.HasPrefix(path, "lab.gear.sections.") && parts[4] == "items" && parts[6] == "imageSrc":
		si := indexOf(c.Lab.Gear.Sections, parts[3], func(s GearSection) string { return s.ID })
		if si < 0 {
			return nil, bad
		}
		items := c.Lab.Gear.Sections[si].Items
		ii := indexOf(items, parts[5], func(it GearItem) string { return it.ID })
		if ii < 0 {
			return nil, bad
		}
		return &items[ii].ImageSrc, nil
	case len(parts) == 5 && strings.HasPrefix(path, "lab.tutorials.items.") && parts[4] == "thumbnailSrc":
		i := indexOf(c.Lab.Tutorials.Items, parts[3], func(t TutorialItem) string { return t.ID })
		if i < 0 {
			return nil, bad
		}
		return &c.Lab.Tutorials.Items[i].ThumbnailSrc, nil
	}
	return nil, bad
}
