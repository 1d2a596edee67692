package background

import "fmt"

// photo is the subset of an Unsplash photo object the resolver reads.
type photo struct {
	ID             string `json:"id"`
	Description    string `json:"description"`
	AltDescription string `json:"alt_description"`
	Color          string `json:"color"`
	BlurHash       string `json:"blur_hash"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	URLs           struct {
		Raw string `json:"raw"`
	} `json:"urls"`
	Links struct {
		DownloadLocation string `json:"download_location"`
	} `json:"links"`
	User struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Links    struct {
			HTML string `json:"html"`
		} `json:"links"`
	} `json:"user"`
}

type searchResult struct {
	Total   int     `json:"total"`
	Results []photo `json:"results"`
}

// imageURL sizes a raw Unsplash URL. Raw URLs already carry a query
// string, so parameters are appended with '&'.
func imageURL(raw string, opts Options) string {
	return fmt.Sprintf("%s&w=%d&h=%d&fit=crop&crop=entropy&q=%d&fm=jpg", raw, opts.Width, opts.Height, opts.Quality)
}

func (p photo) image(source string, opts Options) Image {
	desc := p.AltDescription
	if desc == "" {
		desc = p.Description
	}
	return Image{
		ID:          p.ID,
		URL:         imageURL(p.URLs.Raw, opts),
		DownloadURL: p.Links.DownloadLocation,
		Photographer: Photographer{
			Name:     p.User.Name,
			Username: p.User.Username,
			Profile:  p.User.Links.HTML,
		},
		Description: desc,
		Color:       p.Color,
		BlurHash:    p.BlurHash,
		Width:       p.Width,
		Height:      p.Height,
		Source:      source,
	}
}
