package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/school-newsroom-api/internal/apperr"
	"github.com/school-newsroom-api/internal/models"
	"github.com/school-newsroom-api/internal/service"
)

var queryBase = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

// article builds a published standard article; opts adjust it before it is stored
func article(title string, publishedAt *time.Time, opts ...func(*models.Article)) *models.Article {
	a := &models.Article{
		ID:          uuid.New().String(),
		Title:       title,
		Slug:        strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		Type:        models.ArticleTypeStandard,
		Status:      models.ArticleStatusPublished,
		PublishedAt: publishedAt,
		CreatedAt:   queryBase.AddDate(0, 0, -30),
		UpdatedAt:   queryBase.AddDate(0, 0, -30),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func at(days int) *time.Time {
	t := queryBase.AddDate(0, 0, days)
	return &t
}

func ts(value string) *time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		panic(err)
	}
	return &t
}

func asDraft(a *models.Article)       { a.Status = models.ArticleStatusDraft }
func asFeatured(a *models.Article)    { a.IsFeatured = true }
func asRecommended(a *models.Article) { a.IsRecommended = true }
func asShortNotice(a *models.Article) { a.Type = models.ArticleTypeShortNotice }

func withViews(n int64) func(*models.Article) {
	return func(a *models.Article) { a.ViewCount = n }
}

func withContent(s string) func(*models.Article) {
	return func(a *models.Article) { a.Content = &s }
}

func titles(articles []*models.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.Title)
	}
	return out
}

func TestArticle_PublicQueries(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		seed  []*models.Article
		query func(svc service.ArticleService) ([]*models.Article, error)
		want  []string
	}{
		{
			name: "default list is newest published first with undated last",
			seed: []*models.Article{
				article("Alt", at(-2)),
				article("Ohne Datum", nil),
				article("Neu", at(0)),
				article("Mitte", at(-1)),
				article("Entwurf", at(1), asDraft),
			},
			query: func(svc service.ArticleService) ([]*models.Article, error) {
				page, err := svc.List(ctx, models.ArticleFilter{})
				if err != nil {
					return nil, err
				}
				return page.Articles, nil
			},
			want: []string{"Neu", "Mitte", "Alt", "Ohne Datum"},
		},
		{
			name: "featured picks the newest published featured article",
			seed: []*models.Article{
				article("Alter Aufmacher", at(-3), asFeatured),
				article("Neuer Aufmacher", at(-1), asFeatured),
				article("Nicht hervorgehoben", at(0)),
				article("Entwurf Aufmacher", at(1), asFeatured, asDraft),
			},
			query: func(svc service.ArticleService) ([]*models.Article, error) {
				a, err := svc.Featured(ctx)
				if a == nil {
					return nil, err
				}
				return []*models.Article{a}, err
			},
			want: []string{"Neuer Aufmacher"},
		},
		{
			name: "featured is empty without a featured article",
			seed: []*models.Article{article("Normal", at(0))},
			query: func(svc service.ArticleService) ([]*models.Article, error) {
				a, err := svc.Featured(ctx)
				if a == nil {
					return nil, err
				}
				return []*models.Article{a}, err
			},
			want: []string{},
		},
		{
			name: "top orders by view count",
			seed: []*models.Article{
				article("Wenig", at(0), withViews(5)),
				article("Viel", at(-5), withViews(50)),
				article("Mittel", at(-1), withViews(20)),
				article("Entwurf", at(-2), withViews(1000), asDraft),
			},
			query: func(svc service.ArticleService) ([]*models.Article, error) {
				return svc.Top(ctx, 2)
			},
			want: []string{"Viel", "Mittel"},
		},
		{
			name: "recommended honors the limit",
			seed: []*models.Article{
				article("Tipp eins", at(-1), asRecommended),
				article("Tipp zwei", at(-2), asRecommended),
				article("Tipp drei", at(-3), asRecommended),
				article("Kein Tipp", at(0)),
			},
			query: func(svc service.ArticleService) ([]*models.Article, error) {
				return svc.Recommended(ctx, 2)
			},
			want: []string{"Tipp eins", "Tipp zwei"},
		},
		{
			name: "short notices honor the limit and type",
			seed: []*models.Article{
				article("Notiz alt", at(-2), asShortNotice),
				article("Notiz neu", at(-1), asShortNotice),
				article("Bericht", at(0)),
			},
			query: func(svc service.ArticleService) ([]*models.Article, error) {
				return svc.ShortNotices(ctx, 1)
			},
			want: []string{"Notiz neu"},
		},
		{
			name: "search matches body text of published articles only",
			seed: []*models.Article{
				article("Sportfest", at(-1), withContent("Der Staffellauf war spannend")),
				article("Mensa", at(0), withContent("Neue Gerichte")),
				article("Entwurf Lauf", at(1), withContent("staffellauf intern"), asDraft),
			},
			query: func(svc service.ArticleService) ([]*models.Article, error) {
				return svc.Search(ctx, "  STAFFELLAUF ")
			},
			want: []string{"Sportfest"},
		},
		{
			name: "blank search returns nothing",
			seed: []*models.Article{article("Sportfest", at(0))},
			query: func(svc service.ArticleService) ([]*models.Article, error) {
				return svc.Search(ctx, "   ")
			},
			want: []string{},
		},
		{
			name: "archive covers exactly one calendar month",
			seed: []*models.Article{
				article("Erster", ts("2026-03-01T00:00:00Z")),
				article("Letzter", ts("2026-03-31T23:59:59.999Z")),
				article("Februar", ts("2026-02-28T23:59:59Z")),
				article("April", ts("2026-04-01T00:00:00Z")),
				article("Entwurf Maerz", ts("2026-03-10T10:00:00Z"), asDraft),
			},
			query: func(svc service.ArticleService) ([]*models.Article, error) {
				return svc.Archive(ctx, 2026, 3)
			},
			want: []string{"Letzter", "Erster"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svcs, store := newTestServices(t)
			for _, a := range tt.seed {
				if err := store.Articles.Create(ctx, a); err != nil {
					t.Fatalf("seed %q: %v", a.Title, err)
				}
			}

			got, err := tt.query(svcs.Article)
			if err != nil {
				t.Fatalf("query failed: %v", err)
			}
			if g, w := strings.Join(titles(got), ", "), strings.Join(tt.want, ", "); g != w {
				t.Errorf("Expected [%s], got [%s]", w, g)
			}
		})
	}
}

func TestArticle_SearchIsCapped(t *testing.T) {
	svcs, store := newTestServices(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		a := article(fmt.Sprintf("Schulfest %d", i), at(-i))
		if err := store.Articles.Create(ctx, a); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	got, err := svcs.Article.Search(ctx, "schulfest")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(got) != 20 {
		t.Errorf("Expected 20 results, got %d", len(got))
	}
}

func TestArticle_ArchiveRejectsBadMonth(t *testing.T) {
	svcs, _ := newTestServices(t)
	ctx := context.Background()

	for _, month := range []int{0, 13} {
		_, err := svcs.Article.Archive(ctx, 2026, month)
		wantKind(t, err, apperr.KindValidation)
	}
	_, err := svcs.Article.Archive(ctx, 12, 5)
	wantKind(t, err, apperr.KindValidation)
}

func TestArticle_PollTalliesAreServerSide(t *testing.T) {
	svcs, store := newTestServices(t)
	ctx := context.Background()
	editor := staff(t, store, "editor@schule.de", models.RoleEditor, models.UserStatusApproved)

	created, err := svcs.Article.Create(ctx, editor, &models.ArticleInput{
		Title: "Umfrage zur Projektwoche",
		Type:  models.ArticleTypePollArticle,
		PollData: &models.PollData{
			Question: "Welches Thema?",
			Options:  []string{"Theater", "Robotik"},
			Votes:    models.Votes{"Theater": 500, "Robotik": 7},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	stored := store.Articles.Articles[created.ID]
	if stored.PollData == nil || stored.PollData.Votes["Theater"] != 0 || stored.PollData.Votes["Robotik"] != 0 {
		t.Fatalf("Expected zero tallies on create, got %+v", stored.PollData)
	}

	stored.PollData.Votes["Theater"] = 4

	updated, err := svcs.Article.Update(ctx, editor, created.ID, &models.ArticleInput{
		Title: "Umfrage zur Projektwoche",
		Type:  models.ArticleTypePollArticle,
		PollData: &models.PollData{
			Question: "Welches Thema?",
			Options:  []string{"Theater", "Kochen"},
			Votes:    models.Votes{"Theater": 99, "Kochen": 42},
		},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	votes := updated.PollData.Votes
	if len(votes) != 2 || votes["Theater"] != 4 || votes["Kochen"] != 0 {
		t.Errorf("Expected kept tally for Theater and zero for Kochen, got %v", votes)
	}
}
