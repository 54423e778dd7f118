package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/school-newsroom-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestBuildArticleWhere_Empty(t *testing.T) {
	where, args := buildArticleWhere(models.ArticleFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildArticleWhere_Placeholders(t *testing.T) {
	yes := true
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	where, args := buildArticleWhere(models.ArticleFilter{
		Status:        models.ArticleStatusPublished,
		CategoryID:    "cat-1",
		Featured:      &yes,
		ExcludeID:     "art-9",
		PublishedFrom: &from,
	})

	assert.Equal(t, " WHERE a.status = $1 AND a.category_id = $2 AND a.is_featured = $3 AND a.id <> $4 AND a.published_at >= $5", where)
	assert.Equal(t, []interface{}{models.ArticleStatusPublished, "cat-1", true, "art-9", from}, args)
}

func TestBuildArticleWhere_SearchEscapesWildcards(t *testing.T) {
	where, args := buildArticleWhere(models.ArticleFilter{
		Status: models.ArticleStatusPublished,
		Search: "100%_sicher",
	})

	assert.Contains(t, where, "(a.title ILIKE $2 OR a.excerpt ILIKE $2 OR a.content ILIKE $2)")
	assert.Equal(t, `%100\%\_sicher%`, args[1])
}

func TestArticleOrderClause(t *testing.T) {
	assert.Equal(t, " ORDER BY a.published_at DESC NULLS LAST, a.created_at DESC", articleOrderClause(models.ArticleFilter{}))
	assert.Equal(t, " ORDER BY a.view_count DESC NULLS LAST, a.created_at DESC", articleOrderClause(models.ArticleFilter{OrderBy: "view_count"}))
	assert.Equal(t, " ORDER BY a.scheduled_at ASC NULLS LAST, a.created_at DESC",
		articleOrderClause(models.ArticleFilter{OrderBy: "scheduled_at", Ascending: true}))

	// unknown columns never reach the SQL text
	clause := articleOrderClause(models.ArticleFilter{OrderBy: "id; DROP TABLE articles"})
	assert.False(t, strings.Contains(clause, "DROP"))
	assert.Contains(t, clause, "a.published_at")
}

func TestListQuery(t *testing.T) {
	query, args := listQuery("id", "comments", map[string]string{"article_id": "a1", "status": "approved"})
	assert.Equal(t, "SELECT id FROM comments WHERE article_id = $1 AND status = $2 ORDER BY created_at DESC", query)
	assert.Equal(t, []interface{}{"a1", "approved"}, args)

	query, args = listQuery("id", "letters_to_editor", map[string]string{"status": ""})
	assert.Equal(t, "SELECT id FROM letters_to_editor ORDER BY created_at DESC", query)
	assert.Empty(t, args)
}

func TestTableFor(t *testing.T) {
	table, err := tableFor(models.KindJoinRequest)
	assert.NoError(t, err)
	assert.Equal(t, "join_requests", table)

	_, err = tableFor(models.SubmissionKind("users"))
	assert.Error(t, err)
}

func TestTeamOrder(t *testing.T) {
	order := teamOrder()
	assert.Len(t, order, len(models.PositionRank))
	assert.Equal(t, string(models.PositionEditorInChief), order[0])
	assert.Equal(t, string(models.PositionGuestWriter), order[len(order)-1])
}
