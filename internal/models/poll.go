package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// Votes maps each poll option to its ballot count
type Votes map[string]int

// Value implements driver.Valuer
func (v Votes) Value() (driver.Value, error) {
	if v == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(v)
}

// Scan implements sql.Scanner
func (v *Votes) Scan(src interface{}) error {
	return scanJSON(src, v)
}

// Poll is a standalone reader poll
type Poll struct {
	ID        string         `json:"id" db:"id"`
	Question  string         `json:"question" db:"question"`
	Options   pq.StringArray `json:"options" db:"options"`
	Votes     Votes          `json:"votes" db:"votes"`
	Active    bool           `json:"active" db:"active"`
	ArticleID *string        `json:"article_id" db:"article_id"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	EndsAt    *time.Time     `json:"ends_at" db:"ends_at"`
}

// HasOption reports whether option is one of the poll's choices
func (p *Poll) HasOption(option string) bool {
	for _, o := range p.Options {
		if o == option {
			return true
		}
	}
	return false
}

// IsOpen reports whether the poll accepts votes at now
func (p *Poll) IsOpen(now time.Time) bool {
	if !p.Active {
		return false
	}
	return p.EndsAt == nil || now.Before(*p.EndsAt)
}

// PollInput is the admin payload for creating a poll
type PollInput struct {
	Question  string   `json:"question"`
	Options   []string `json:"options"`
	ArticleID *string  `json:"article_id"`
	EndsAt    string   `json:"ends_at"`
}

// PollResult is a poll with derived totals for display
type PollResult struct {
	Poll
	TotalVotes  int            `json:"total_votes"`
	Percentages map[string]int `json:"percentages"`
}
