package models

// RawDocument is a stored document exactly as persisted. No schema is
// enforced at read time, so every field access has to tolerate absence.
type RawDocument map[string]interface{}

// Match pairs a raw document with its cosine distance from the query vector.
// Listing queries produce matches without a distance.
type Match struct {
	Doc         RawDocument
	Distance    float64
	HasDistance bool
}

// DateValue is the canonical date shape: a single wrapped timestamp string,
// ISO-8601 when the stored value could be parsed, the original value otherwise.
type DateValue struct {
	Date string `json:"$date"`
}

type Channel struct {
	Name                    string  `json:"name"`
	AvgViewsPerVideoInRange float64 `json:"avg_views_per_video_in_range"`
}

// VideoRecord is the client-facing shape for one video document.
// Distance is only set for semantic-search results; a match that carries no
// distance defaults to 1.
type VideoRecord struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Performance float64  `json:"performance"`
	SearchQuery string   `json:"search_query"`
	UploadDate  string   `json:"upload_date"`
	URL         string   `json:"url"`
	VideoID     string   `json:"video_id"`
	Views       int64    `json:"views"`
	GuestName   string   `json:"guest_name"`
	Channel     Channel  `json:"channel"`
	Distance    *float64 `json:"distance,omitempty"`
}

// GuestRecord is the client-facing shape for one aggregated guest document.
// The guest name comes from the document key, normalized at assembly.
// CombinedScore appears on listings, Distance on semantic-search results.
type GuestRecord struct {
	GuestName                      string    `json:"guest_name"`
	AvgPerformance                 float64   `json:"avg_performance"`
	AvgViews                       float64   `json:"avg_views"`
	AvgViewsPerVideoAcrossChannels float64   `json:"avg_views_per_video_across_channels"`
	EpisodeDescriptions            string    `json:"episode_descriptions"`
	EpisodeTitles                  string    `json:"episode_titles"`
	MostRecentDate                 DateValue `json:"most_recent_date"`
	NoEpisodes                     int64     `json:"no_episodes"`
	RecentChannel                  string    `json:"recent_channel"`
	Topics                         []string  `json:"topics"`
	CombinedScore                  *float64  `json:"combined_score,omitempty"`
	Distance                       *float64  `json:"distance,omitempty"`
}

type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}
