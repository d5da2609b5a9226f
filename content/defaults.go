package content

// Defaults returns a fresh, fully-populated default document. It is the
// fallback for missing remote data and the seed written on first use.
// Every call builds new slices so callers may mutate the result freely.
func Defaults() SiteContent {
	return SiteContent{
		Home:    defaultHome(),
		Bio:     defaultBio(),
		Live:    defaultLive(),
		Work:    defaultWork(),
		Contact: defaultContact(),
		Lab:     defaultLab(),
	}
}

func defaultHome() Home {
	return Home{
		Tagline:       "Music Producer & Mixing Engineer",
		LatestRelease: defaultRelease(),
	}
}

func defaultRelease() Release {
	return Release{
		Title:           "QQSP",
		Description:     "The latest drop from Basement Mixtape, Vol. 1. Featuring Basement, NIZ, Moon's, Benito Bxl, and Lookaa. A raw mix of energy and style.",
		SpotifyEmbedURL: "https://open.spotify.com/embed/track/2DSbT4h3BA1oIWXC9N0AG5?utm_source=generator&theme=0",
		AudioSrc:        "",
		ArtworkSrc:      "",
	}
}

func defaultBio() Bio {
	return Bio{
		Headline:    "BEHIND THE CONSOLE",
		HeaderImage: "",
		Paragraphs: []string{
			"Charlesky is a music producer and mixing engineer based in Brussels. With a passion for analog warmth and digital precision, he crafts soundscapes that resonate.",
			"Specializing in Synthwave, Electronic, and Pop, his approach combines technical expertise with artistic intuition to bring every artist's vision to life.",
		},
		Gallery: []GalleryItem{
			{
				Src:         "https://images.unsplash.com/photo-1598653222000-6b7b7a552625?q=80&w=2070&auto=format&fit=crop",
				Alt:         "Studio Gear",
				PhraseTitle: "Analog Soul",
				PhraseBody:  "Where vintage hardware meets modern workflow.",
			},
			{
				Src:         "https://images.unsplash.com/photo-1574169208507-84376144848b?q=80&w=2079&auto=format&fit=crop",
				Alt:         "Live Performance",
				PhraseTitle: "Live Energy",
				PhraseBody:  "Translating studio perfection to the stage.",
			},
			{
				Src:         "https://images.unsplash.com/photo-1516280440614-6697288d5d38?q=80&w=2070&auto=format&fit=crop",
				Alt:         "Mixing Console",
				PhraseTitle: "Sonic Precision",
				PhraseBody:  "Every detail matters in the final mix.",
			},
		},
	}
}

func defaultLive() Live {
	return Live{
		Headline: "Tour Dates",
		Subtitle: "2025 Belgium Tour",
		Shows: []Show{
			{ID: "1", Date: "OCT 12", Year: "2025", Venue: "Ancienne Belgique", City: "Brussels", Country: "Belgium", Status: StatusSoldOut, TicketLink: "#"},
			{ID: "2", Date: "OCT 15", Year: "2025", Venue: "Trix", City: "Antwerp", Country: "Belgium", Status: StatusAvailable, TicketLink: "#"},
			{ID: "3", Date: "OCT 18", Year: "2025", Venue: "Vooruit", City: "Ghent", Country: "Belgium", Status: StatusSellingFast, TicketLink: "#"},
			{ID: "4", Date: "OCT 22", Year: "2025", Venue: "Reflektor", City: "Liège", Country: "Belgium", Status: StatusAvailable, TicketLink: "#"},
			{ID: "5", Date: "NOV 05", Year: "2025", Venue: "Het Depot", City: "Leuven", Country: "Belgium", Status: StatusAvailable, TicketLink: "#"},
			{ID: "6", Date: "NOV 12", Year: "2025", Venue: "Botanique", City: "Brussels", Country: "Belgium", Status: StatusSoldOut, TicketLink: "#"},
		},
	}
}

func defaultWork() Work {
	return Work{
		Headline: "SELECTED WORK",
		Projects: []Project{
			{ID: "1", Title: "Neon Nights", Artist: "The Midnight Echo", Role: "Producer / Mix", Color: "bg-purple-500"},
			{ID: "2", Title: "Urban Jungle", Artist: "Sarah V", Role: "Mixing Engineer", Color: "bg-emerald-500"},
			{ID: "3", Title: "Deep Dive", Artist: "Ocean Sounds", Role: "Producer", Color: "bg-blue-500"},
			{ID: "4", Title: "Retrograde", Artist: "Synthwave Collective", Role: "Mastering", Color: "bg-pink-500"},
			{ID: "5", Title: "Acoustic Sessions", Artist: "John Doe", Role: "Recording / Mix", Color: "bg-amber-500"},
			{ID: "6", Title: "Future Bass", Artist: "Drop Zone", Role: "Producer / Mix", Color: "bg-cyan-500"},
		},
	}
}

func defaultContact() Contact {
	return Contact{
		Headline: "LET'S WORK TOGETHER",
		Email:    "contact@charlesky.com",
		Socials:  Socials{},
	}
}

func defaultLab() Lab {
	return Lab{
		Home:      defaultLabHome(),
		Gear:      defaultGear(),
		Playlists: defaultPlaylists(),
		Tutorials: defaultTutorials(),
	}
}

func defaultLabHome() LabHome {
	return LabHome{
		Headline: "THE LAB",
		Cards: []LabCard{
			{ID: "gear", ImageSrc: "https://images.unsplash.com/photo-1598488035139-bdbb2231ce04?q=80&w=2070&auto=format&fit=crop", Title: "Gear", Subtitle: "What's in the studio", Link: "/lab/gear/", Hidden: false},
			{ID: "playlists", ImageSrc: "https://images.unsplash.com/photo-1514525253161-7a46d19cd819?q=80&w=2074&auto=format&fit=crop", Title: "Playlists", Subtitle: "What I'm listening to", Link: "/lab/playlists/", Hidden: false},
			{ID: "tutorials", ImageSrc: "https://images.unsplash.com/photo-1511379938547-c1f69419868d?q=80&w=2070&auto=format&fit=crop", Title: "Tutorials", Subtitle: "Mixing tips and breakdowns", Link: "/lab/tutorials/", Hidden: false},
		},
	}
}

func defaultGear() Gear {
	return Gear{
		Headline: "STUDIO GEAR",
		Sections: []GearSection{
			{
				ID:    "monitoring",
				Title: "Monitoring",
				Items: []GearItem{
					{ID: "monitoring-1", Name: "Genelec 8030C", Description: "Main nearfield monitors.", ImageSrc: ""},
					{ID: "monitoring-2", Name: "Beyerdynamic DT 770 Pro", Description: "Closed-back reference headphones.", ImageSrc: ""},
				},
			},
			{
				ID:    "outboard",
				Title: "Outboard",
				Items: []GearItem{
					{ID: "outboard-1", Name: "SSL Bus Compressor", Description: "Glue on the mix bus.", ImageSrc: ""},
				},
			},
		},
	}
}

func defaultPlaylists() Playlists {
	return Playlists{
		Headline: "PLAYLISTS",
		Items: []PlaylistItem{
			{ID: "playlist-1", Title: "Studio Rotation", EmbedURL: "https://open.spotify.com/embed/playlist/37i9dQZF1DX0XUsuxWHRQd", Platform: PlatformSpotify, Description: "Records that shaped recent sessions."},
		},
	}
}

func defaultTutorials() Tutorials {
	return Tutorials{
		Headline: "TUTORIALS",
		Items: []TutorialItem{
			{ID: "tutorial-1", Title: "Parallel Compression on Drums", VideoURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", Description: "Keeping transients while adding weight.", ThumbnailSrc: ""},
		},
	}
}
