package access

import (
	"context"
	"testing"

	"github.com/school-newsroom-api/internal/apperr"
	"github.com/school-newsroom-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestLevelOf(t *testing.T) {
	tests := []struct {
		name   string
		role   models.Role
		status models.UserStatus
		want   Level
	}{
		{"approved admin", models.RoleAdmin, models.UserStatusApproved, LevelAdmin},
		{"approved editor", models.RoleEditor, models.UserStatusApproved, LevelEditor},
		{"approved author", models.RoleAuthor, models.UserStatusApproved, LevelAuthor},
		{"pending admin", models.RoleAdmin, models.UserStatusPending, LevelNone},
		{"pending editor", models.RoleEditor, models.UserStatusPending, LevelNone},
		{"unknown role", models.Role("superuser"), models.UserStatusApproved, LevelNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LevelOf(&models.User{Role: tt.role, Status: tt.status}))
		})
	}

	assert.Equal(t, LevelNone, LevelOf(nil))
}

func TestRequire(t *testing.T) {
	err := Require(nil, LevelAuthor)
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))

	noProfile := &Principal{IdentityID: "id-1"}
	assert.True(t, apperr.Is(Require(noProfile, LevelAuthor), apperr.KindForbidden))

	pendingAdmin := &Principal{Profile: &models.User{Role: models.RoleAdmin, Status: models.UserStatusPending}}
	pendingAuthor := &Principal{Profile: &models.User{Role: models.RoleAuthor, Status: models.UserStatusPending}}
	errAdmin := Require(pendingAdmin, LevelAdmin)
	errAuthor := Require(pendingAuthor, LevelAdmin)
	assert.True(t, apperr.Is(errAdmin, apperr.KindForbidden))
	assert.Equal(t, errAuthor.Error(), errAdmin.Error(), "pending accounts fail the same way regardless of role")

	editor := &Principal{Profile: &models.User{ID: "u1", Role: models.RoleEditor, Status: models.UserStatusApproved}}
	assert.NoError(t, RequireStaff(editor))
	assert.NoError(t, Require(editor, LevelEditor))
	assert.True(t, apperr.Is(Require(editor, LevelAdmin), apperr.KindForbidden))
	assert.Equal(t, "u1", editor.UserID())
}

func TestCanSetArticleStatus(t *testing.T) {
	assert.True(t, CanSetArticleStatus(LevelAuthor, models.ArticleStatusDraft))
	assert.True(t, CanSetArticleStatus(LevelAuthor, models.ArticleStatusReview))
	assert.False(t, CanSetArticleStatus(LevelAuthor, models.ArticleStatusScheduled))
	assert.False(t, CanSetArticleStatus(LevelAuthor, models.ArticleStatusPublished))
	assert.True(t, CanSetArticleStatus(LevelEditor, models.ArticleStatusPublished))
	assert.True(t, CanSetArticleStatus(LevelAdmin, models.ArticleStatusScheduled))
	assert.False(t, CanSetArticleStatus(LevelNone, models.ArticleStatusDraft))
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, FromContext(ctx))

	p := &Principal{IdentityID: "abc"}
	assert.Same(t, p, FromContext(WithPrincipal(ctx, p)))
}
