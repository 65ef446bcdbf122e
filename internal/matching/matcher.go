// Package matching decides which tasks and candidates belong to a staff
// member by comparing free-text name fields against their display name.
//
// Records reference staff by display name rather than by user id, so two
// people whose names share a token of three or more characters match each
// other's records. This mirrors the data as stored; moving records to
// stable user ids is the fix, not a smarter matcher.
package matching

import (
	"strings"
	"unicode/utf8"

	"github.com/roomportal/backend/internal/storage/models"
)

// minTokenLen is the shortest name token kept; shorter particles ("de", "la") are dropped.
const minTokenLen = 3

// Matcher tests free-text fields against one canonical display name.
// The zero value matches nothing.
type Matcher struct {
	tokens []string
}

// NewMatcher prepares a matcher for the given display name.
// The tokens are the whitespace-separated parts of the lower-cased name that
// are at least three characters long, plus the full lower-cased name.
func NewMatcher(name string) Matcher {
	full := strings.ToLower(name)
	if strings.TrimSpace(full) == "" {
		return Matcher{}
	}

	tokens := []string{full}
	for _, part := range strings.Fields(full) {
		if utf8.RuneCountInString(part) >= minTokenLen {
			tokens = append(tokens, part)
		}
	}
	return Matcher{tokens: tokens}
}

// Matches reports whether value contains the full name or any kept token,
// ignoring case. Empty values never match.
func (m Matcher) Matches(value string) bool {
	if value == "" || len(m.tokens) == 0 {
		return false
	}

	v := strings.ToLower(value)
	for _, tok := range m.tokens {
		if strings.Contains(v, tok) {
			return true
		}
	}
	return false
}

// Match is a one-shot form of NewMatcher(name).Matches(value).
func Match(name, value string) bool {
	return NewMatcher(name).Matches(value)
}

// FilterTasks returns the tasks whose assignee matches name.
func FilterTasks(tasks []models.Task, name string) []models.Task {
	m := NewMatcher(name)
	out := []models.Task{}
	for _, t := range tasks {
		if m.Matches(t.Assignee) {
			out = append(out, t)
		}
	}
	return out
}

// FilterVisits returns the candidates whose visit is assigned to name.
func FilterVisits(candidates []models.Candidate, name string) []models.Candidate {
	m := NewMatcher(name)
	out := []models.Candidate{}
	for _, c := range candidates {
		if m.Matches(c.AssignedTo) {
			out = append(out, c)
		}
	}
	return out
}

// FilterSubmitted returns the candidates that name sourced.
func FilterSubmitted(candidates []models.Candidate, name string) []models.Candidate {
	m := NewMatcher(name)
	out := []models.Candidate{}
	for _, c := range candidates {
		if m.Matches(c.SubmittedBy) {
			out = append(out, c)
		}
	}
	return out
}

// FilterCandidates returns the candidates either assigned to or submitted by
// name, each once, in their original order.
func FilterCandidates(candidates []models.Candidate, name string) []models.Candidate {
	m := NewMatcher(name)
	out := []models.Candidate{}
	for _, c := range candidates {
		if m.Matches(c.AssignedTo) || m.Matches(c.SubmittedBy) {
			out = append(out, c)
		}
	}
	return out
}
