package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/lib/pq"
)

// Role is the staff role of a profile
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleAuthor Role = "author"
)

// ValidRoles defines allowed user roles
var ValidRoles = map[Role]bool{
	RoleAdmin:  true,
	RoleEditor: true,
	RoleAuthor: true,
}

// UserStatus is the approval state of a profile
type UserStatus string

const (
	UserStatusPending  UserStatus = "pending"
	UserStatusApproved UserStatus = "approved"
)

// Position is the newsroom position shown on the team page
type Position string

const (
	PositionEditorInChief Position = "editor-in-chief"
	PositionDeputy        Position = "deputy"
	PositionDeskLead      Position = "desk-lead"
	PositionStaffWriter   Position = "staff-writer"
	PositionPhotographer  Position = "photographer"
	PositionGuestWriter   Position = "guest-writer"
)

// PositionRank orders the team page, lower first
var PositionRank = map[Position]int{
	PositionEditorInChief: 1,
	PositionDeputy:        2,
	PositionDeskLead:      3,
	PositionStaffWriter:   4,
	PositionPhotographer:  5,
	PositionGuestWriter:   6,
}

// ValidGrades lists the accepted grade/level tags
var ValidGrades = map[string]bool{
	"5": true, "6": true, "7": true, "8": true, "9": true, "10": true,
	"EF": true, "Q1": true, "Q2": true, "teacher": true,
}

// User represents a staff profile
type User struct {
	ID        string     `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Email     string     `json:"email" db:"email"`
	Role      Role       `json:"role" db:"role"`
	Status    UserStatus `json:"status" db:"status"`
	AvatarURL *string    `json:"avatar_url" db:"avatar_url"`
	Bio       *string    `json:"bio" db:"bio"`
	Slug      *string    `json:"slug" db:"slug"`
	Position  *Position  `json:"position" db:"position"`
	Grade     *string    `json:"grade" db:"grade"`
	Badges    BadgeSet   `json:"badges" db:"badges"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// IsApproved reports whether the profile has been approved by an admin
func (u *User) IsApproved() bool {
	return u.Status == UserStatusApproved
}

// ProfileInput carries the editable profile fields
type ProfileInput struct {
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatar_url"`
	Bio       *string   `json:"bio"`
	Slug      *string   `json:"slug"`
	Position  *Position `json:"position"`
	Grade     *string   `json:"grade"`
	Badges    *BadgeSet `json:"badges"`
}

// Badge is a newsroom skill tag
type Badge string

const (
	BadgeIT          Badge = "it"
	BadgeSocialMedia Badge = "social-media"
	BadgeLayout      Badge = "layout"
)

var badgeBits = map[Badge]BadgeSet{
	BadgeIT:          1 << 0,
	BadgeSocialMedia: 1 << 1,
	BadgeLayout:      1 << 2,
}

// BadgeSet is a set of badges; duplicates cannot be represented
type BadgeSet uint8

// NewBadgeSet builds a set from badge names, rejecting unknown ones
func NewBadgeSet(names ...string) (BadgeSet, error) {
	var s BadgeSet
	for _, n := range names {
		bit, ok := badgeBits[Badge(n)]
		if !ok {
			return 0, fmt.Errorf("unknown badge %q", n)
		}
		s |= bit
	}
	return s, nil
}

// Has reports whether b is in the set
func (s BadgeSet) Has(b Badge) bool {
	return s&badgeBits[b] != 0
}

// Add returns the set with b added
func (s BadgeSet) Add(b Badge) BadgeSet {
	return s | badgeBits[b]
}

// List returns the badges in stable order
func (s BadgeSet) List() []string {
	out := make([]string, 0, len(badgeBits))
	for b, bit := range badgeBits {
		if s&bit != 0 {
			out = append(out, string(b))
		}
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a JSON array
func (s BadgeSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

// UnmarshalJSON decodes a JSON array, collapsing duplicates
func (s *BadgeSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	set, err := NewBadgeSet(names...)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// Value stores the set as a text[] column
func (s BadgeSet) Value() (driver.Value, error) {
	return pq.StringArray(s.List()).Value()
}

// Scan reads a text[] column
func (s *BadgeSet) Scan(src interface{}) error {
	var names pq.StringArray
	if err := names.Scan(src); err != nil {
		return err
	}
	set, err := NewBadgeSet(names...)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// InviteInput is the admin payload for inviting a new staff member
type InviteInput struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// ClaimInput completes an invite
type ClaimInput struct {
	Token           string `json:"token"`
	Name            string `json:"name"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// SetupInput bootstraps the first admin account
type SetupInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// LoginInput carries sign-in credentials
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

// Identity is a sign-in account held by the local identity provider. The
// profile row in users shares its id.
type Identity struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash *string    `json:"-" db:"password_hash"`
	InvitedRole  *Role      `json:"invited_role" db:"invited_role"`
	InvitedBy    *string    `json:"invited_by" db:"invited_by"`
	InvitedAt    *time.Time `json:"invited_at" db:"invited_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}
