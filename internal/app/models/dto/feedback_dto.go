package dto

// CreateFeedbackRequest is submitted by a student
type CreateFeedbackRequest struct {
	Rating    int     `json:"rating" binding:"required,min=1,max=5"`
	Comment   *string `json:"comment" binding:"omitempty,max=2000"`
	ChatID    *int64  `json:"chat_id" binding:"omitempty,min=1"`
	MessageID *int64  `json:"message_id" binding:"omitempty,min=1"`
}

// FeedbackStatsQuery bounds the stats window
type FeedbackStatsQuery struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}
