package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/school-newsroom-api/internal/models"
	"github.com/school-newsroom-api/internal/repository"
)

const flushEvery = 100

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// StreamSubscribers streams the newsletter list in the specified format
func (s *exportService) StreamSubscribers(ctx context.Context, w http.ResponseWriter, format string) error {
	s.log.Info().Str("format", format).Msg("Starting subscribers export")

	switch format {
	case "ndjson":
		return s.streamNDJSON(w, "subscribers", func(emit func(interface{}) error) error {
			return s.repos.Newsletter.StreamAll(ctx, func(sub *models.NewsletterSubscriber) error { return emit(sub) })
		})
	case "json":
		return s.streamJSON(w, "subscribers", func(emit func(interface{}) error) error {
			return s.repos.Newsletter.StreamAll(ctx, func(sub *models.NewsletterSubscriber) error { return emit(sub) })
		})
	case "csv":
		return s.streamSubscribersCSV(ctx, w)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// StreamArticles streams published articles in the specified format
func (s *exportService) StreamArticles(ctx context.Context, w http.ResponseWriter, format string) error {
	s.log.Info().Str("format", format).Msg("Starting articles export")

	filter := models.ArticleFilter{Status: models.ArticleStatusPublished}
	stream := func(emit func(interface{}) error) error {
		return s.repos.Article.StreamAll(ctx, filter, func(a *models.Article) error { return emit(a) })
	}

	switch format {
	case "ndjson":
		return s.streamNDJSON(w, "articles", stream)
	case "json":
		return s.streamJSON(w, "articles", stream)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func (s *exportService) streamNDJSON(w http.ResponseWriter, name string, stream func(emit func(interface{}) error) error) error {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", "attachment; filename="+name+".ndjson")

	flusher, _ := w.(http.Flusher)
	count := 0

	err := stream(func(record interface{}) error {
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		w.Write(data)
		w.Write([]byte("\n"))
		count++

		// Flush periodically for streaming
		if count%flushEvery == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})

	s.log.Info().Str("resource", name).Int("count", count).Msg("Export completed")
	return err
}

func (s *exportService) streamJSON(w http.ResponseWriter, name string, stream func(emit func(interface{}) error) error) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename="+name+".json")

	w.Write([]byte("["))
	first := true

	err := stream(func(record interface{}) error {
		if !first {
			w.Write([]byte(","))
		}
		first = false

		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		w.Write(data)
		return nil
	})

	w.Write([]byte("]"))
	return err
}

func (s *exportService) streamSubscribersCSV(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=subscribers.csv")

	writer := csv.NewWriter(w)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"id", "email", "confirmed", "created_at"})

	return s.repos.Newsletter.StreamAll(ctx, func(sub *models.NewsletterSubscriber) error {
		return writer.Write([]string{
			sub.ID,
			sub.Email,
			strconv.FormatBool(sub.Confirmed),
			sub.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	})
}

// GetCount returns count for a resource
func (s *exportService) GetCount(ctx context.Context, resource string) (int, error) {
	switch resource {
	case "subscribers":
		return s.repos.Newsletter.Count(ctx)
	case "articles":
		return s.repos.Article.Count(ctx, models.ArticleFilter{Status: models.ArticleStatusPublished})
	default:
		return 0, fmt.Errorf("unknown resource: %s", resource)
	}
}
