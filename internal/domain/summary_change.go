package domain

import (
	"math"
	"time"
)

// SummaryChange compares a channel summary against the previously stored one.
type SummaryChange struct {
	ChannelID        string          `json:"channel_id"`
	Previous         *ChannelSummary `json:"previous"`
	Current          *ChannelSummary `json:"current"`
	SubscriberChange int64           `json:"subscriber_change"`
	ViewChange       int64           `json:"view_change"`
	VideoChange      int64           `json:"video_change"`
	SubscriberPct    float64         `json:"subscriber_pct"`
	ViewPct          float64         `json:"view_pct"`
	VideoPct         float64         `json:"video_pct"`
	Elapsed          time.Duration   `json:"elapsed"`
}

// CompareSummaries returns nil when there is no previous summary to compare with.
func CompareSummaries(previous, current *ChannelSummary) *SummaryChange {
	if previous == nil || current == nil {
		return nil
	}

	return &SummaryChange{
		ChannelID:        current.ChannelID,
		Previous:         previous,
		Current:          current,
		SubscriberChange: int64(current.SubscriberCount) - int64(previous.SubscriberCount),
		ViewChange:       int64(current.TotalViewCount) - int64(previous.TotalViewCount),
		VideoChange:      int64(current.TotalVideoCount) - int64(previous.TotalVideoCount),
		SubscriberPct:    PercentageChange(current.SubscriberCount, previous.SubscriberCount),
		ViewPct:          PercentageChange(current.TotalViewCount, previous.TotalViewCount),
		VideoPct:         PercentageChange(current.TotalVideoCount, previous.TotalVideoCount),
		Elapsed:          current.ExtractionAt.Sub(previous.ExtractionAt),
	}
}

// PercentageChange is the relative change rounded to two decimals. Growth from
// zero counts as 100%.
func PercentageChange(current, previous uint64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}

	change := (float64(current) - float64(previous)) / float64(previous) * 100
	return math.Round(change*100) / 100
}
