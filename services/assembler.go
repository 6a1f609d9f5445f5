package services

import (
	"fmt"
	"log"

	"github.com/podsight/podsight/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// missingDistance is the distance reported for a semantic-search match that
// arrived without one. The literal 1 mirrors the stored default; no deeper
// meaning is attached to it.
const missingDistance = 1.0

// AssembleVideos maps raw video matches into canonical records, in stream
// order. withDistance controls whether the distance field is populated at
// all; listing results never carry one.
func AssembleVideos(matches []models.Match, withDistance bool) []models.VideoRecord {
	records := make([]models.VideoRecord, 0, len(matches))
	for _, match := range matches {
		records = append(records, assembleVideo(match, withDistance))
	}
	return records
}

func assembleVideo(match models.Match, withDistance bool) models.VideoRecord {
	doc := match.Doc
	channel := subDocument(doc, "channel")

	record := models.VideoRecord{
		ID:          documentID(doc),
		Title:       getString(doc, "title"),
		Description: getString(doc, "description"),
		Performance: getFloat(doc, "performance"),
		SearchQuery: getString(doc, "search_query"),
		UploadDate:  getString(doc, "upload_date"),
		URL:         getString(doc, "url"),
		VideoID:     getString(doc, "video_id"),
		Views:       getInt(doc, "views"),
		GuestName:   FormatGuestName(getString(doc, "guest_name")),
		Channel: models.Channel{
			Name:                    getString(channel, "name"),
			AvgViewsPerVideoInRange: getFloat(channel, "avg_views_per_video_in_range"),
		},
	}

	if withDistance {
		distance := missingDistance
		if match.HasDistance {
			distance = match.Distance
		}
		record.Distance = &distance
	}
	return record
}

// AssembleGuests maps raw guest matches into canonical records, in stream
// order. Semantic-search results carry a distance; listings carry the stored
// combined_score instead.
func AssembleGuests(matches []models.Match, withDistance bool) []models.GuestRecord {
	records := make([]models.GuestRecord, 0, len(matches))
	for _, match := range matches {
		records = append(records, assembleGuest(match, withDistance))
	}
	return records
}

func assembleGuest(match models.Match, withDistance bool) models.GuestRecord {
	doc := match.Doc

	// Guest documents are keyed by the raw guest name. The key is opaque in
	// storage; normalization happens only here.
	record := models.GuestRecord{
		GuestName:                      FormatGuestName(documentID(doc)),
		AvgPerformance:                 getFloat(doc, "avg_performance"),
		AvgViews:                       getFloat(doc, "avg_views"),
		AvgViewsPerVideoAcrossChannels: getFloat(doc, "avg_views_per_video_across_channels"),
		EpisodeDescriptions:            getString(doc, "episode_descriptions"),
		EpisodeTitles:                  getString(doc, "episode_titles"),
		MostRecentDate:                 FormatDate(doc["most_recent_date"]),
		NoEpisodes:                     getInt(doc, "no_episodes"),
		RecentChannel:                  getString(doc, "recent_channel"),
		Topics:                         assembleTopics(doc),
	}

	if withDistance {
		distance := missingDistance
		if match.HasDistance {
			distance = match.Distance
		}
		record.Distance = &distance
	} else {
		score := getFloat(doc, "combined_score")
		record.CombinedScore = &score
	}
	return record
}

// assembleTopics normalizes the topics field. Decode failures are local to
// the field: they are logged and the record keeps an empty list.
func assembleTopics(doc models.RawDocument) []string {
	topics, err := ProcessTopics(doc["topics"])
	if err != nil {
		log.Printf("Warning: dropping topics for guest %q: %v", documentID(doc), err)
		return []string{}
	}
	if topics == nil {
		return []string{}
	}
	return topics
}

func documentID(doc models.RawDocument) string {
	switch id := doc["_id"].(type) {
	case nil:
		return ""
	case string:
		return id
	case primitive.ObjectID:
		return id.Hex()
	default:
		return fmt.Sprint(id)
	}
}

func subDocument(doc models.RawDocument, key string) models.RawDocument {
	switch v := doc[key].(type) {
	case models.RawDocument:
		return v
	case bson.M:
		return models.RawDocument(v)
	case map[string]interface{}:
		return models.RawDocument(v)
	default:
		return models.RawDocument{}
	}
}

func getString(doc models.RawDocument, key string) string {
	if s, ok := doc[key].(string); ok {
		return s
	}
	return ""
}

func getFloat(doc models.RawDocument, key string) float64 {
	switch n := doc[key].(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

func getInt(doc models.RawDocument, key string) int64 {
	switch n := doc[key].(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
