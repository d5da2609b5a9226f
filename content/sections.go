package content

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownSection = errors.New("content: unknown section")

// Sections lists the top-level section names in document order.
var Sections = []string{"home", "bio", "live", "work", "contact", "lab"}

// ReplaceSection decodes raw as the named section and merges it over the
// section currently in c, so fields missing from raw keep their current
// value. Lists present in raw replace the current lists.
func ReplaceSection(c *SiteContent, name string, raw []byte) error {
	p := c.Partial()
	var err error
	switch name {
	case "home":
		p.Home, err = decodeInto[PartialHome](raw)
	case "bio":
		p.Bio, err = decodeInto[PartialBio](raw)
	case "live":
		p.Live, err = decodeInto[PartialLive](raw)
	case "work":
		p.Work, err = decodeInto[PartialWork](raw)
	case "contact":
		p.Contact, err = decodeInto[PartialContact](raw)
	case "lab":
		p.Lab, err = decodeInto[PartialLab](raw)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}
	if err != nil {
		return err
	}
	*c = Merge(p, *c)
	return nil
}

func decodeInto[T any](raw []byte) (*T, error) {
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("decode section: %w", err)
	}
	return v, nil
}
