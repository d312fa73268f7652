package models

import (
	"math"
	"strconv"
	"time"
)

// Rating bounds, inclusive
const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is an immutable rating submitted by a student
type Feedback struct {
	ID        int64     `json:"id" db:"id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   *string   `json:"comment,omitempty" db:"comment"`
	StudentID int64     `json:"student_id" db:"student_id"`
	ChatID    *int64    `json:"chat_id,omitempty" db:"chat_id"`
	MessageID *int64    `json:"message_id,omitempty" db:"message_id"`
	CreatedAt time.Time `json:"submitted_at" db:"created_at"`

	Student *StudentSummary `json:"student,omitempty"`
}

// FeedbackStats aggregates ratings over an optional date window
type FeedbackStats struct {
	Count        int64            `json:"count"`
	Average      float64          `json:"average"`
	Distribution map[string]int64 `json:"distribution"`
}

// NewFeedbackStats builds stats from per-rating counts. Every rating in
// [MinRating, MaxRating] appears in the distribution, zero when absent.
func NewFeedbackStats(countsByRating map[int]int64) *FeedbackStats {
	stats := &FeedbackStats{Distribution: make(map[string]int64, MaxRating-MinRating+1)}

	var sum int64
	for rating := MinRating; rating <= MaxRating; rating++ {
		n := countsByRating[rating]
		stats.Distribution[strconv.Itoa(rating)] = n
		stats.Count += n
		sum += int64(rating) * n
	}
	if stats.Count > 0 {
		stats.Average = math.Round(float64(sum)/float64(stats.Count)*100) / 100
	}
	return stats
}
