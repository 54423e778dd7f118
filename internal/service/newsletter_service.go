package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/school-newsroom-api/internal/access"
	"github.com/school-newsroom-api/internal/apperr"
	"github.com/school-newsroom-api/internal/database"
	"github.com/school-newsroom-api/internal/events"
	"github.com/school-newsroom-api/internal/models"
	"github.com/school-newsroom-api/internal/repository"
	"github.com/school-newsroom-api/internal/validation"
)

// CodeAlreadySubscribed marks a newsletter signup for an address already on the list
const CodeAlreadySubscribed = "already_subscribed"

// newsletterService is the concrete implementation of NewsletterService
type newsletterService struct {
	subscribers repository.NewsletterRepository
	publisher   events.Publisher
	validator   *validation.Validator
	log         zerolog.Logger
}

func newNewsletterService(subscribers repository.NewsletterRepository, publisher events.Publisher, log zerolog.Logger) *newsletterService {
	return &newsletterService{
		subscribers: subscribers,
		publisher:   publisher,
		validator:   validation.NewValidator(),
		log:         log.With().Str("service", "newsletter").Logger(),
	}
}

// Subscribe adds email to the list. The store's unique index decides duplicates.
func (s *newsletterService) Subscribe(ctx context.Context, email string) (*models.NewsletterSubscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if errs := s.validator.ValidateEmail(email); len(errs) > 0 {
		return nil, validation.AsError(errs)
	}

	sub := &models.NewsletterSubscriber{
		ID:        uuid.New().String(),
		Email:     email,
		Confirmed: true,
		CreatedAt: time.Now(),
	}
	if err := s.subscribers.Create(ctx, sub); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("this email is already subscribed", err).WithCode(CodeAlreadySubscribed)
		}
		s.log.Error().Err(err).Msg("Failed to store newsletter subscriber")
		return nil, apperr.Internal("could not subscribe, please try again later", err)
	}

	s.log.Info().Str("subscriber_id", sub.ID).Msg("Newsletter signup")
	if err := s.publisher.Publish(ctx, events.NewsletterSignup, map[string]string{"id": sub.ID, "email": sub.Email}); err != nil {
		s.log.Warn().Err(err).Msg("Failed to publish newsletter event")
	}
	return sub, nil
}

func (s *newsletterService) List(ctx context.Context, p *access.Principal) ([]*models.NewsletterSubscriber, error) {
	if err := access.Require(p, access.LevelEditor); err != nil {
		return nil, err
	}
	return s.subscribers.List(ctx)
}

func (s *newsletterService) Delete(ctx context.Context, p *access.Principal, id string) error {
	if err := access.Require(p, access.LevelEditor); err != nil {
		return err
	}
	deleted, err := s.subscribers.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("subscriber")
	}
	return nil
}
