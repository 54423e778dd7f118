package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/school-newsroom-api/internal/access"
	"github.com/school-newsroom-api/internal/apperr"
	"github.com/school-newsroom-api/internal/events"
	"github.com/school-newsroom-api/internal/lifecycle"
	"github.com/school-newsroom-api/internal/models"
	"github.com/school-newsroom-api/internal/repository"
	"github.com/school-newsroom-api/internal/validation"
)

// submissionService is the concrete implementation of SubmissionService.
// Every insert is stored as pending whatever the visitor sends.
type submissionService struct {
	repos     *repository.Repositories
	audit     AuditService
	publisher events.Publisher
	validator *validation.Validator
	log       zerolog.Logger
}

func newSubmissionService(repos *repository.Repositories, audit AuditService, publisher events.Publisher, log zerolog.Logger) *submissionService {
	return &submissionService{
		repos:     repos,
		audit:     audit,
		publisher: publisher,
		validator: validation.NewValidator(),
		log:       log.With().Str("service", "submission").Logger(),
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Submit stores a letter, idea, join request or contact message
func (s *submissionService) Submit(ctx context.Context, kind models.SubmissionKind, in *models.SubmissionInput) (string, error) {
	if kind == models.KindComment || !lifecycle.KnownKind(kind) {
		return "", apperr.Validation("kind", "unknown submission kind")
	}
	if errs := s.validator.ValidateSubmission(kind, in); len(errs) > 0 {
		return "", validation.AsError(errs)
	}

	id := uuid.New().String()
	now := time.Now()
	name := strings.TrimSpace(in.Name)
	message := strings.TrimSpace(in.Message)

	var err error
	switch kind {
	case models.KindLetter:
		err = s.repos.Submission.CreateLetter(ctx, &models.Letter{
			ID: id, Name: name, Email: optional(in.Email), Message: message,
			Status: models.SubmissionPending, CreatedAt: now,
		})
	case models.KindIdea:
		err = s.repos.Submission.CreateIdea(ctx, &models.IdeaSuggestion{
			ID: id, Name: name, ClassName: optional(in.ClassName), Topic: strings.TrimSpace(in.Topic),
			Message: optional(in.Message), Status: models.SubmissionPending, CreatedAt: now,
		})
	case models.KindJoinRequest:
		err = s.repos.Submission.CreateJoinRequest(ctx, &models.JoinRequest{
			ID: id, Name: name, ClassName: optional(in.ClassName), Interest: strings.TrimSpace(in.Interest),
			Message: optional(in.Message), Status: models.SubmissionPending, CreatedAt: now,
		})
	case models.KindContact:
		err = s.repos.Submission.CreateContact(ctx, &models.ContactMessage{
			ID: id, Name: name, Email: strings.TrimSpace(in.Email), Subject: optional(in.Subject),
			Message: message, Status: models.SubmissionPending, CreatedAt: now,
		})
	}
	if err != nil {
		return "", err
	}

	s.created(ctx, kind, id)
	return id, nil
}

// Comment stores a pending comment on a published article that accepts comments
func (s *submissionService) Comment(ctx context.Context, articleSlug string, in *models.SubmissionInput) (*models.Comment, error) {
	if errs := s.validator.ValidateSubmission(models.KindComment, in); len(errs) > 0 {
		return nil, validation.AsError(errs)
	}
	article, err := s.repos.Article.GetBySlug(ctx, articleSlug)
	if err != nil {
		return nil, err
	}
	if article == nil || !article.IsPublished() {
		return nil, apperr.NotFound("article")
	}
	if !article.CommentsEnabled {
		return nil, apperr.Validation("article", "comments are disabled for this article")
	}

	comment := &models.Comment{
		ID:        uuid.New().String(),
		ArticleID: article.ID,
		Name:      optional(in.Name),
		Email:     optional(in.Email),
		Message:   strings.TrimSpace(in.Message),
		Status:    models.SubmissionPending,
		CreatedAt: time.Now(),
	}
	if err := s.repos.Submission.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	s.created(ctx, models.KindComment, comment.ID)
	return comment, nil
}

func (s *submissionService) created(ctx context.Context, kind models.SubmissionKind, id string) {
	s.log.Info().Str("kind", string(kind)).Str("id", id).Msg("Submission received")
	payload := map[string]string{"kind": string(kind), "id": id}
	if err := s.publisher.Publish(ctx, events.SubmissionCreated, payload); err != nil {
		s.log.Warn().Err(err).Str("kind", string(kind)).Msg("Failed to publish submission event")
	}
}

// ApprovedComments lists the visible comments of a published article
func (s *submissionService) ApprovedComments(ctx context.Context, articleSlug string) ([]*models.Comment, error) {
	article, err := s.repos.Article.GetBySlug(ctx, articleSlug)
	if err != nil {
		return nil, err
	}
	if article == nil || !article.IsPublished() {
		return nil, apperr.NotFound("article")
	}
	comments, err := s.repos.Submission.ListComments(ctx, article.ID, models.SubmissionApproved)
	if err != nil {
		return nil, err
	}
	// emails stay private
	for _, c := range comments {
		c.Email = nil
	}
	return comments, nil
}

// List returns the moderation queue for kind. Store failures degrade to an empty list.
func (s *submissionService) List(ctx context.Context, p *access.Principal, kind models.SubmissionKind, status models.SubmissionStatus) (interface{}, error) {
	if err := access.RequireStaff(p); err != nil {
		return nil, err
	}
	if !lifecycle.KnownKind(kind) {
		return nil, apperr.NotFound("submission kind")
	}

	var (
		items interface{}
		err   error
	)
	switch kind {
	case models.KindComment:
		var list []*models.Comment
		if list, err = s.repos.Submission.ListComments(ctx, "", status); err == nil {
			items = list
		} else {
			items = []*models.Comment{}
		}
	case models.KindLetter:
		var list []*models.Letter
		if list, err = s.repos.Submission.ListLetters(ctx, status); err == nil {
			items = list
		} else {
			items = []*models.Letter{}
		}
	case models.KindIdea:
		var list []*models.IdeaSuggestion
		if list, err = s.repos.Submission.ListIdeas(ctx, status); err == nil {
			items = list
		} else {
			items = []*models.IdeaSuggestion{}
		}
	case models.KindJoinRequest:
		var list []*models.JoinRequest
		if list, err = s.repos.Submission.ListJoinRequests(ctx, status); err == nil {
			items = list
		} else {
			items = []*models.JoinRequest{}
		}
	case models.KindContact:
		var list []*models.ContactMessage
		if list, err = s.repos.Submission.ListContacts(ctx, status); err == nil {
			items = list
		} else {
			items = []*models.ContactMessage{}
		}
	}
	if err != nil {
		s.log.Error().Err(err).Str("kind", string(kind)).Msg("Failed to list submissions, returning empty list")
	}
	return items, nil
}

// Moderate applies a staff decision. Repeating the current decision is a
// no-op and reports changed == false.
func (s *submissionService) Moderate(ctx context.Context, p *access.Principal, kind models.SubmissionKind, id string, status models.SubmissionStatus) (bool, error) {
	if err := access.RequireStaff(p); err != nil {
		return false, err
	}
	if !lifecycle.KnownKind(kind) {
		return false, apperr.NotFound("submission kind")
	}

	current, found, err := s.repos.Submission.GetStatus(ctx, kind, id)
	if err != nil {
		return false, err
	}
	if !found {
		return false, apperr.NotFound("submission")
	}

	changed, err := lifecycle.Moderate(kind, current, status)
	switch err {
	case nil:
	case lifecycle.ErrAlreadyDecided:
		return false, apperr.Conflict(err.Error(), err).WithCode("already_moderated")
	case lifecycle.ErrInvalidDecision:
		var allowed []string
		for _, d := range lifecycle.Decisions(kind) {
			allowed = append(allowed, string(d))
		}
		return false, apperr.Validation("status", "status must be one of: "+strings.Join(allowed, ", "))
	default:
		return false, apperr.Validation("status", err.Error())
	}
	if !changed {
		return false, nil
	}

	if _, err := s.repos.Submission.SetStatus(ctx, kind, id, status); err != nil {
		return false, err
	}
	s.audit.Record(ctx, p, "submission.moderate", string(kind), id, map[string]interface{}{"status": string(status)})
	return true, nil
}

func (s *submissionService) Delete(ctx context.Context, p *access.Principal, kind models.SubmissionKind, id string) error {
	if err := access.RequireStaff(p); err != nil {
		return err
	}
	if !lifecycle.KnownKind(kind) {
		return apperr.NotFound("submission kind")
	}
	deleted, err := s.repos.Submission.Delete(ctx, kind, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("submission")
	}
	s.audit.Record(ctx, p, "submission.delete", string(kind), id, nil)
	return nil
}
