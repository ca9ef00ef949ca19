package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// EpisodeMetadata is the normalized descriptive metadata for one episode.
// Immutable once constructed; every downstream stage reads it for filename
// construction and tagging.
type EpisodeMetadata struct {
	ID          string
	Name        string
	Show        string
	DurationMS  int64
	ReleaseDate string
	Year        string
	Description string
	ImageURL    string
	Album       string
	Artists     []string
}

// Duration returns the episode's playback duration.
func (m EpisodeMetadata) Duration() time.Duration {
	if m.DurationMS <= 0 {
		return 0
	}
	return time.Duration(m.DurationMS) * time.Millisecond
}

type apiError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

type episodeImage struct {
	URL   string `json:"url"`
	Width int    `json:"width"`
}

type episodeResponse struct {
	Error *apiError `json:"error"`
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Show  struct {
		Name string `json:"name"`
	} `json:"show"`
	DurationMS      int64          `json:"duration_ms"`
	ReleaseDate     string         `json:"release_date"`
	Description     string         `json:"description"`
	HTMLDescription string         `json:"html_description"`
	Images          []episodeImage `json:"images"`
}

// parseEpisodeMetadata normalizes a raw episode payload. Any structural
// problem is returned as an error; callers convert it to the metadata
// failure classification, never propagating raw parse errors.
func parseEpisodeMetadata(raw []byte) (*EpisodeMetadata, error) {
	var resp episodeResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode episode response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("api error %d: %s", resp.Error.Status, resp.Error.Message)
	}
	if resp.ID == "" || resp.Name == "" {
		return nil, errors.New("episode response missing id or name")
	}
	if resp.DurationMS < 0 {
		return nil, fmt.Errorf("episode duration negative: %d", resp.DurationMS)
	}

	meta := &EpisodeMetadata{
		ID:          resp.ID,
		Name:        resp.Name,
		Show:        resp.Show.Name,
		DurationMS:  resp.DurationMS,
		ReleaseDate: resp.ReleaseDate,
		Year:        yearOf(resp.ReleaseDate),
		Description: resp.Description,
		ImageURL:    largestImageURL(resp.Images),
	}
	if meta.Description == "" {
		meta.Description = resp.HTMLDescription
	}
	meta.Album = meta.Show
	if meta.Show != "" {
		meta.Artists = []string{meta.Show}
	}
	return meta, nil
}

// yearOf extracts the year segment before the first date separator.
func yearOf(releaseDate string) string {
	year, _, _ := strings.Cut(releaseDate, "-")
	return year
}

// largestImageURL picks the highest-resolution cover by declared pixel
// width; ties keep the first encountered. An absent list yields "".
func largestImageURL(images []episodeImage) string {
	best := ""
	bestWidth := -1
	for _, img := range images {
		if img.Width > bestWidth {
			best = img.URL
			bestWidth = img.Width
		}
	}
	return best
}
