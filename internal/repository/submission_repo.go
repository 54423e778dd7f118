package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
	"github.com/school-newsroom-api/internal/database"
	"github.com/school-newsroom-api/internal/models"
)

// submissionTables maps each submission kind to its table
var submissionTables = map[models.SubmissionKind]string{
	models.KindComment:     "comments",
	models.KindLetter:      "letters_to_editor",
	models.KindIdea:        "idea_suggestions",
	models.KindJoinRequest: "join_requests",
	models.KindContact:     "contact_messages",
}

// submissionRepo is the concrete implementation of SubmissionRepository.
// Inserts always write status 'pending'.
type submissionRepo struct {
	db *database.DB
}

// NewSubmissionRepo creates a new submission repository
func NewSubmissionRepo(db *database.DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

func tableFor(kind models.SubmissionKind) (string, error) {
	table, ok := submissionTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown submission kind %q", kind)
	}
	return table, nil
}

// CreateComment inserts a pending comment
func (r *submissionRepo) CreateComment(ctx context.Context, c *models.Comment) error {
	query := `
		INSERT INTO comments (id, article_id, name, email, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6)
	`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.ArticleID, c.Name, c.Email, c.Message, c.CreatedAt)
	return errors.Wrap(err, "insert comment")
}

// CreateLetter inserts a pending letter to the editor
func (r *submissionRepo) CreateLetter(ctx context.Context, l *models.Letter) error {
	query := `
		INSERT INTO letters_to_editor (id, name, email, message, status, created_at)
		VALUES ($1, $2, $3, $4, 'pending', $5)
	`
	_, err := r.db.ExecContext(ctx, query, l.ID, l.Name, l.Email, l.Message, l.CreatedAt)
	return errors.Wrap(err, "insert letter")
}

// CreateIdea inserts a pending idea suggestion
func (r *submissionRepo) CreateIdea(ctx context.Context, i *models.IdeaSuggestion) error {
	query := `
		INSERT INTO idea_suggestions (id, name, class_name, topic, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6)
	`
	_, err := r.db.ExecContext(ctx, query, i.ID, i.Name, i.ClassName, i.Topic, i.Message, i.CreatedAt)
	return errors.Wrap(err, "insert idea")
}

// CreateJoinRequest inserts a pending join request
func (r *submissionRepo) CreateJoinRequest(ctx context.Context, j *models.JoinRequest) error {
	query := `
		INSERT INTO join_requests (id, name, class_name, interest, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6)
	`
	_, err := r.db.ExecContext(ctx, query, j.ID, j.Name, j.ClassName, j.Interest, j.Message, j.CreatedAt)
	return errors.Wrap(err, "insert join request")
}

// CreateContact inserts a pending contact message
func (r *submissionRepo) CreateContact(ctx context.Context, m *models.ContactMessage) error {
	query := `
		INSERT INTO contact_messages (id, name, email, subject, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6)
	`
	_, err := r.db.ExecContext(ctx, query, m.ID, m.Name, m.Email, m.Subject, m.Message, m.CreatedAt)
	return errors.Wrap(err, "insert contact message")
}

// listQuery builds a newest-first select with optional equality filters
func listQuery(columns, table string, filters map[string]string) (string, []interface{}) {
	query := "SELECT " + columns + " FROM " + table
	var args []interface{}
	// fixed column order keeps placeholders stable
	for _, col := range []string{"article_id", "status"} {
		v, ok := filters[col]
		if !ok || v == "" {
			continue
		}
		args = append(args, v)
		if len(args) == 1 {
			query += " WHERE "
		} else {
			query += " AND "
		}
		query += fmt.Sprintf("%s = $%d", col, len(args))
	}
	return query + " ORDER BY created_at DESC", args
}

// ListComments returns comments, optionally for one article and one status
func (r *submissionRepo) ListComments(ctx context.Context, articleID string, status models.SubmissionStatus) ([]*models.Comment, error) {
	query, args := listQuery("id, article_id, name, email, message, status, created_at", "comments",
		map[string]string{"article_id": articleID, "status": string(status)})
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list comments")
	}
	defer rows.Close()

	out := make([]*models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.Name, &c.Email, &c.Message, &c.Status, &c.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan comment")
		}
		out = append(out, &c)
	}
	return out, errors.Wrap(rows.Err(), "list comments")
}

// ListLetters returns letters, optionally narrowed to one status
func (r *submissionRepo) ListLetters(ctx context.Context, status models.SubmissionStatus) ([]*models.Letter, error) {
	query, args := listQuery("id, name, email, message, status, created_at", "letters_to_editor",
		map[string]string{"status": string(status)})
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list letters")
	}
	defer rows.Close()

	out := make([]*models.Letter, 0)
	for rows.Next() {
		var l models.Letter
		if err := rows.Scan(&l.ID, &l.Name, &l.Email, &l.Message, &l.Status, &l.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan letter")
		}
		out = append(out, &l)
	}
	return out, errors.Wrap(rows.Err(), "list letters")
}

// ListIdeas returns idea suggestions, optionally narrowed to one status
func (r *submissionRepo) ListIdeas(ctx context.Context, status models.SubmissionStatus) ([]*models.IdeaSuggestion, error) {
	query, args := listQuery("id, name, class_name, topic, message, status, created_at", "idea_suggestions",
		map[string]string{"status": string(status)})
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list ideas")
	}
	defer rows.Close()

	out := make([]*models.IdeaSuggestion, 0)
	for rows.Next() {
		var i models.IdeaSuggestion
		if err := rows.Scan(&i.ID, &i.Name, &i.ClassName, &i.Topic, &i.Message, &i.Status, &i.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan idea")
		}
		out = append(out, &i)
	}
	return out, errors.Wrap(rows.Err(), "list ideas")
}

// ListJoinRequests returns join requests, optionally narrowed to one status
func (r *submissionRepo) ListJoinRequests(ctx context.Context, status models.SubmissionStatus) ([]*models.JoinRequest, error) {
	query, args := listQuery("id, name, class_name, interest, message, status, created_at", "join_requests",
		map[string]string{"status": string(status)})
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list join requests")
	}
	defer rows.Close()

	out := make([]*models.JoinRequest, 0)
	for rows.Next() {
		var j models.JoinRequest
		if err := rows.Scan(&j.ID, &j.Name, &j.ClassName, &j.Interest, &j.Message, &j.Status, &j.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan join request")
		}
		out = append(out, &j)
	}
	return out, errors.Wrap(rows.Err(), "list join requests")
}

// ListContacts returns contact messages, optionally narrowed to one status
func (r *submissionRepo) ListContacts(ctx context.Context, status models.SubmissionStatus) ([]*models.ContactMessage, error) {
	query, args := listQuery("id, name, email, subject, message, status, created_at", "contact_messages",
		map[string]string{"status": string(status)})
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list contact messages")
	}
	defer rows.Close()

	out := make([]*models.ContactMessage, 0)
	for rows.Next() {
		var m models.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Status, &m.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan contact message")
		}
		out = append(out, &m)
	}
	return out, errors.Wrap(rows.Err(), "list contact messages")
}

// GetStatus returns the moderation status of one submission
func (r *submissionRepo) GetStatus(ctx context.Context, kind models.SubmissionKind, id string) (models.SubmissionStatus, bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return "", false, err
	}

	var status models.SubmissionStatus
	err = r.db.QueryRowContext(ctx, "SELECT status FROM "+table+" WHERE id = $1", id).Scan(&status)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "get %s status", kind)
	}
	return status, true, nil
}

// SetStatus writes a moderation decision
func (r *submissionRepo) SetStatus(ctx context.Context, kind models.SubmissionKind, id string, status models.SubmissionStatus) (bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	return execAffected(ctx, r.db, "set "+string(kind)+" status",
		"UPDATE "+table+" SET status = $2 WHERE id = $1", id, status)
}

// Delete hard-deletes a submission
func (r *submissionRepo) Delete(ctx context.Context, kind models.SubmissionKind, id string) (bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	return execAffected(ctx, r.db, "delete "+string(kind), "DELETE FROM "+table+" WHERE id = $1", id)
}

// CountByStatus counts submissions of kind in status
func (r *submissionRepo) CountByStatus(ctx context.Context, kind models.SubmissionKind, status models.SubmissionStatus) (int, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	var count int
	err = r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table+" WHERE status = $1", status).Scan(&count)
	return count, errors.Wrapf(err, "count %s", kind)
}
