package models

import (
	"time"
)

// SubmissionKind identifies a kind of visitor submission held for moderation
type SubmissionKind string

const (
	KindComment     SubmissionKind = "comments"
	KindLetter      SubmissionKind = "letters"
	KindIdea        SubmissionKind = "ideas"
	KindJoinRequest SubmissionKind = "join-requests"
	KindContact     SubmissionKind = "contact"
)

// SubmissionStatus is the moderation state of a submission
type SubmissionStatus string

const (
	SubmissionPending   SubmissionStatus = "pending"
	SubmissionApproved  SubmissionStatus = "approved"
	SubmissionRejected  SubmissionStatus = "rejected"
	SubmissionPublished SubmissionStatus = "published"
	SubmissionReviewed  SubmissionStatus = "reviewed"
	SubmissionAccepted  SubmissionStatus = "accepted"
	SubmissionContacted SubmissionStatus = "contacted"
	SubmissionRead      SubmissionStatus = "read"
	SubmissionReplied   SubmissionStatus = "replied"
)

// Comment is a reader comment on an article
type Comment struct {
	ID        string           `json:"id" db:"id"`
	ArticleID string           `json:"article_id" db:"article_id"`
	Name      *string          `json:"name" db:"name"`
	Email     *string          `json:"email,omitempty" db:"email"`
	Message   string           `json:"message" db:"message"`
	Status    SubmissionStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// Letter is a letter to the editor
type Letter struct {
	ID        string           `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	Email     *string          `json:"email" db:"email"`
	Message   string           `json:"message" db:"message"`
	Status    SubmissionStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// IdeaSuggestion is a topic suggested by a reader
type IdeaSuggestion struct {
	ID        string           `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	ClassName *string          `json:"class_name" db:"class_name"`
	Topic     string           `json:"topic" db:"topic"`
	Message   *string          `json:"message" db:"message"`
	Status    SubmissionStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// JoinRequest is a student asking to join the newsroom
type JoinRequest struct {
	ID        string           `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	ClassName *string          `json:"class_name" db:"class_name"`
	Interest  string           `json:"interest" db:"interest"`
	Message   *string          `json:"message" db:"message"`
	Status    SubmissionStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// ContactMessage is a message sent through the contact form
type ContactMessage struct {
	ID        string           `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	Email     string           `json:"email" db:"email"`
	Subject   *string          `json:"subject" db:"subject"`
	Message   string           `json:"message" db:"message"`
	Status    SubmissionStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// SubmissionInput is the union of fields a visitor may send. It has no status field.
type SubmissionInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	ClassName string `json:"class_name"`
	Topic     string `json:"topic"`
	Interest  string `json:"interest"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}

// MaxCommentWords is the maximum allowed words in a comment body
const MaxCommentWords = 500
