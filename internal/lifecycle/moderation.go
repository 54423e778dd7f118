package lifecycle

import (
	"errors"
	"sort"

	"github.com/school-newsroom-api/internal/models"
)

var (
	ErrUnknownKind     = errors.New("unknown submission kind")
	ErrInvalidDecision = errors.New("status is not a valid decision for this submission")
	ErrAlreadyDecided  = errors.New("submission has already been moderated")
)

var terminalStates = map[models.SubmissionKind]map[models.SubmissionStatus]bool{
	models.KindComment: {
		models.SubmissionApproved: true,
		models.SubmissionRejected: true,
	},
	models.KindLetter: {
		models.SubmissionApproved:  true,
		models.SubmissionRejected:  true,
		models.SubmissionPublished: true,
	},
	models.KindIdea: {
		models.SubmissionReviewed: true,
		models.SubmissionAccepted: true,
		models.SubmissionRejected: true,
	},
	models.KindJoinRequest: {
		models.SubmissionContacted: true,
		models.SubmissionAccepted:  true,
		models.SubmissionRejected:  true,
	},
	models.KindContact: {
		models.SubmissionRead:    true,
		models.SubmissionReplied: true,
	},
}

// KnownKind reports whether kind names a moderated submission type
func KnownKind(kind models.SubmissionKind) bool {
	_, ok := terminalStates[kind]
	return ok
}

// Decisions lists the terminal states allowed for kind, sorted
func Decisions(kind models.SubmissionKind) []models.SubmissionStatus {
	var out []models.SubmissionStatus
	for s := range terminalStates[kind] {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Moderate checks a staff decision on a submission currently in current.
// Every submission gets exactly one decision; repeating the same decision
// is a no-op (changed == false, err == nil).
func Moderate(kind models.SubmissionKind, current, next models.SubmissionStatus) (changed bool, err error) {
	allowed, ok := terminalStates[kind]
	if !ok {
		return false, ErrUnknownKind
	}
	if !allowed[next] {
		return false, ErrInvalidDecision
	}
	if current == next {
		return false, nil
	}
	if current != models.SubmissionPending {
		return false, ErrAlreadyDecided
	}
	return true, nil
}
