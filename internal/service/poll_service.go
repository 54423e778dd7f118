package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/school-newsroom-api/internal/access"
	"github.com/school-newsroom-api/internal/apperr"
	"github.com/school-newsroom-api/internal/derive"
	"github.com/school-newsroom-api/internal/models"
	"github.com/school-newsroom-api/internal/repository"
	"github.com/school-newsroom-api/internal/validation"
)

// pollService is the concrete implementation of PollService
type pollService struct {
	polls     repository.PollRepository
	audit     AuditService
	validator *validation.Validator
	now       func() time.Time
	log       zerolog.Logger
}

func newPollService(repos *repository.Repositories, audit AuditService, log zerolog.Logger) *pollService {
	return &pollService{
		polls:     repos.Poll,
		audit:     audit,
		validator: validation.NewValidator(),
		now:       time.Now,
		log:       log.With().Str("service", "poll").Logger(),
	}
}

// result attaches totals and percentages; every option is present in the vote map
func result(p *models.Poll) *models.PollResult {
	votes := make(models.Votes, len(p.Options))
	for _, o := range p.Options {
		votes[o] = p.Votes[o]
	}
	p.Votes = votes
	return &models.PollResult{
		Poll:        *p,
		TotalVotes:  derive.TotalVotes(votes),
		Percentages: derive.PollPercentages(votes),
	}
}

func results(polls []*models.Poll) []*models.PollResult {
	out := make([]*models.PollResult, 0, len(polls))
	for _, p := range polls {
		out = append(out, result(p))
	}
	return out
}

// Active lists the polls currently open for voting
func (s *pollService) Active(ctx context.Context) ([]*models.PollResult, error) {
	polls, err := s.polls.List(ctx, true)
	if err != nil {
		return nil, err
	}
	now := s.now()
	open := polls[:0]
	for _, p := range polls {
		if p.IsOpen(now) {
			open = append(open, p)
		}
	}
	return results(open), nil
}

func (s *pollService) Get(ctx context.Context, id string) (*models.PollResult, error) {
	poll, err := s.polls.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if poll == nil {
		return nil, apperr.NotFound("poll")
	}
	return result(poll), nil
}

// Vote adds one ballot for option. The increment itself happens in the store.
func (s *pollService) Vote(ctx context.Context, id, option string) (*models.PollResult, error) {
	option = strings.TrimSpace(option)
	if option == "" {
		return nil, apperr.Validation("option", "option is required")
	}
	poll, err := s.polls.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if poll == nil {
		return nil, apperr.NotFound("poll")
	}
	if !poll.HasOption(option) {
		return nil, apperr.Validation("option", "unknown poll option")
	}
	if !poll.IsOpen(s.now()) {
		return nil, apperr.Validation("poll", "this poll is closed")
	}

	counted, err := s.polls.Vote(ctx, id, option)
	if err != nil {
		return nil, err
	}
	if !counted {
		// closed or removed between the read and the increment
		return nil, apperr.Validation("poll", "this poll is closed")
	}
	return s.Get(ctx, id)
}

func (s *pollService) List(ctx context.Context, p *access.Principal) ([]*models.PollResult, error) {
	if err := access.RequireStaff(p); err != nil {
		return nil, err
	}
	polls, err := s.polls.List(ctx, false)
	if err != nil {
		return nil, err
	}
	return results(polls), nil
}

// Create stores a new active poll with a zero count for every option
func (s *pollService) Create(ctx context.Context, p *access.Principal, in *models.PollInput) (*models.Poll, error) {
	if err := access.Require(p, access.LevelEditor); err != nil {
		return nil, err
	}
	if errs := s.validator.ValidatePoll(in); len(errs) > 0 {
		return nil, validation.AsError(errs)
	}
	endsAt, err := validation.ParseTime(in.EndsAt)
	if err != nil {
		return nil, apperr.Validation("ends_at", "invalid date")
	}

	options := make([]string, 0, len(in.Options))
	votes := make(models.Votes, len(in.Options))
	for _, o := range in.Options {
		o = strings.TrimSpace(o)
		options = append(options, o)
		votes[o] = 0
	}

	poll := &models.Poll{
		ID:        uuid.New().String(),
		Question:  strings.TrimSpace(in.Question),
		Options:   options,
		Votes:     votes,
		Active:    true,
		ArticleID: nilIfEmpty(in.ArticleID),
		CreatedAt: s.now(),
		EndsAt:    endsAt,
	}
	if err := s.polls.Create(ctx, poll); err != nil {
		return nil, err
	}
	s.log.Info().Str("poll_id", poll.ID).Int("options", len(options)).Msg("Poll created")
	s.audit.Record(ctx, p, "poll.create", "poll", poll.ID, nil)
	return poll, nil
}

func (s *pollService) SetActive(ctx context.Context, p *access.Principal, id string, active bool) error {
	if err := access.Require(p, access.LevelEditor); err != nil {
		return err
	}
	found, err := s.polls.SetActive(ctx, id, active)
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFound("poll")
	}
	return nil
}

func (s *pollService) Delete(ctx context.Context, p *access.Principal, id string) error {
	if err := access.Require(p, access.LevelEditor); err != nil {
		return err
	}
	deleted, err := s.polls.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("poll")
	}
	s.audit.Record(ctx, p, "poll.delete", "poll", id, nil)
	return nil
}
