package services

import (
	"sort"

	"github.com/podsight/podsight/models"
)

// Rank keys recognised by the ranker. Video results rank by performance;
// guest semantic search ranks by avg_performance.
const (
	RankPerformance    = "performance"
	RankAvgPerformance = "avg_performance"
	RankCombinedScore  = "combined_score"
)

// RankVideos sorts assembled video records descending on the named numeric
// field. The sort is stable: ties keep their stream order.
func RankVideos(records []models.VideoRecord, key string) {
	sort.SliceStable(records, func(i, j int) bool {
		return videoRankValue(records[i], key) > videoRankValue(records[j], key)
	})
}

// RankGuests sorts assembled guest records descending on the named numeric
// field, stable on ties.
func RankGuests(records []models.GuestRecord, key string) {
	sort.SliceStable(records, func(i, j int) bool {
		return guestRankValue(records[i], key) > guestRankValue(records[j], key)
	})
}

func videoRankValue(r models.VideoRecord, key string) float64 {
	switch key {
	case RankPerformance:
		return r.Performance
	default:
		return 0
	}
}

func guestRankValue(r models.GuestRecord, key string) float64 {
	switch key {
	case RankAvgPerformance:
		return r.AvgPerformance
	case RankCombinedScore:
		if r.CombinedScore != nil {
			return *r.CombinedScore
		}
		return 0
	default:
		return 0
	}
}
