package dto

import (
	"planboard.app/server/internal/model"
)

type AddCommentRequest struct {
	TaskID  string `json:"taskId" binding:"required"`
	Content string `json:"content" binding:"required,max=5000"`
}

type CommentResponse struct {
	Comment *model.Comment `json:"comment"`
}

type CommentsResponse struct {
	Comments []model.Comment `json:"comments"`
}

// ErrorResponse is the body of every 4xx and of 5xx from handlers.
// Recovered panics add the remaining fields.
type ErrorResponse struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode,omitempty"`
	Timestamp  string `json:"timestamp,omitempty"`
	Path       string `json:"path,omitempty"`
}
