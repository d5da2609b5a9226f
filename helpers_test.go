package artistsite

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/eringen/artistsite/content"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"https://band.test", nil, "https://band.test"},
		{"https://band.test", []string{"live"}, "https://band.test/live/"},
		{"https://band.test/", []string{"lab", "gear"}, "https://band.test/lab/gear/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
}

func TestAbsURL(t *testing.T) {
	if got := absURL("https://band.test", "/public/a.jpg"); got != "https://band.test/public/a.jpg" {
		t.Errorf("relative = %q", got)
	}
	if got := absURL("https://band.test", "https://cdn.test/a.jpg"); got != "https://cdn.test/a.jpg" {
		t.Errorf("absolute = %q", got)
	}
	if got := absURL("https://band.test", ""); got != "" {
		t.Errorf("empty = %q", got)
	}
}

func TestMusicEventJSONLD(t *testing.T) {
	cfg := SiteConfig{Author: "Charlesky", URL: "https://band.test"}
	show := content.Show{ID: "s1", Date: "OCT 12", Year: "2026", Venue: "AB", City: "Brussels", Country: "BE", Status: content.StatusSoldOut, TicketLink: "https://t.test"}

	var got map[string]any
	if err := json.Unmarshal([]byte(MusicEventJSONLD(cfg, show)), &got); err != nil {
		t.Fatal(err)
	}
	if got["@type"] != "MusicEvent" || got["startDate"] != "OCT 12 2026" {
		t.Errorf("event = %v", got)
	}
	offer := got["offers"].(map[string]any)
	if offer["availability"] != "https://schema.org/SoldOut" || offer["url"] != nil {
		t.Errorf("sold out offer = %v", offer)
	}
}

func TestMusicGroupJSONLDSameAs(t *testing.T) {
	sc := content.Defaults()
	sc.Contact.Socials = content.Socials{Instagram: "https://instagram.test/x"}
	var got map[string]any
	if err := json.Unmarshal([]byte(MusicGroupJSONLD(SiteConfig{Author: "X", URL: "https://band.test"}, sc)), &got); err != nil {
		t.Fatal(err)
	}
	same, _ := got["sameAs"].([]any)
	if len(same) != 1 || same[0] != "https://instagram.test/x" {
		t.Errorf("sameAs = %v", got["sameAs"])
	}
}

func TestShowsFeedLinks(t *testing.T) {
	cfg := SiteConfig{Name: "Band", URL: "https://band.test"}
	live := content.Live{Headline: "Tour", Shows: []content.Show{
		{ID: "a", Venue: "One", Status: content.StatusAvailable, TicketLink: "https://tix.test/a"},
		{ID: "b", Venue: "Two", Status: content.StatusSoldOut, TicketLink: "https://tix.test/b"},
	}}
	feed := showsFeed(cfg, live)
	if len(feed.Channel.Items) != 2 {
		t.Fatalf("items = %d", len(feed.Channel.Items))
	}
	if feed.Channel.Items[0].Link != "https://tix.test/a" {
		t.Errorf("available show link = %q", feed.Channel.Items[0].Link)
	}
	if feed.Channel.Items[1].Link != "https://band.test/live/" {
		t.Errorf("sold out show link = %q", feed.Channel.Items[1].Link)
	}
	if feed.Channel.Items[1].GUID != "https://band.test/live/#b" {
		t.Errorf("guid = %q", feed.Channel.Items[1].GUID)
	}
	if !strings.Contains(feed.Channel.Items[1].Description, "Sold Out") {
		t.Errorf("description = %q", feed.Channel.Items[1].Description)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("short = %q", got)
	}
	if got := truncate("one two three four", 10); got != "one two…" {
		t.Errorf("long = %q", got)
	}
}
