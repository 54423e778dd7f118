package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/school-newsroom-api/internal/database"
	"github.com/school-newsroom-api/internal/derive"
	"github.com/school-newsroom-api/internal/models"
	"github.com/school-newsroom-api/internal/repository"
	"github.com/school-newsroom-api/internal/validation"
	"gopkg.in/yaml.v3"
)

// SeedResult summarizes a seed run
type SeedResult struct {
	Created int                          `json:"created"`
	Skipped int                          `json:"skipped"`
	Errors  []validation.ValidationError `json:"errors"`
}

type categorySeed struct {
	Categories []*models.Category `yaml:"categories"`
}

// seedService is the concrete implementation of SeedService
type seedService struct {
	categories repository.CategoryRepository
	log        zerolog.Logger
}

func newSeedService(categories repository.CategoryRepository, log zerolog.Logger) *seedService {
	return &seedService{
		categories: categories,
		log:        log.With().Str("service", "seed").Logger(),
	}
}

// SeedCategories inserts the categories of a YAML document. Invalid entries
// are reported, existing slugs are skipped, the rest are created.
func (s *seedService) SeedCategories(ctx context.Context, r io.Reader) (*SeedResult, error) {
	var doc categorySeed
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}

	result := &SeedResult{Errors: []validation.ValidationError{}}
	validator := validation.NewValidator()

	for i, c := range doc.Categories {
		entry := i + 1
		c.Name = strings.TrimSpace(c.Name)
		if c.Slug == "" {
			c.Slug = derive.Slug(c.Name)
		}

		if errs := validator.ValidateCategory(c, entry); len(errs) > 0 {
			result.Errors = append(result.Errors, errs...)
			continue
		}
		validator.AddCategorySlug(c.Slug)

		existing, err := s.categories.GetBySlug(ctx, c.Slug)
		if err != nil {
			return result, err
		}
		if existing != nil {
			result.Skipped++
			continue
		}

		if c.BadgeColor == "" {
			c.BadgeColor = models.DefaultBadgeColor
		}
		c.ID = uuid.New().String()
		c.CreatedAt = time.Now()
		if err := s.categories.Create(ctx, c); err != nil {
			if database.IsUniqueViolation(err) {
				result.Skipped++
				continue
			}
			return result, err
		}
		result.Created++
	}

	s.log.Info().
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Int("invalid", len(result.Errors)).
		Msg("Category seed completed")
	return result, nil
}
