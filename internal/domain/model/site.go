package model

import "time"

type SiteStatus string

const (
	SiteStatusPending   SiteStatus = "pending"
	SiteStatusCompleted SiteStatus = "completed"
	SiteStatusFailed    SiteStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s SiteStatus) IsTerminal() bool {
	return s == SiteStatusCompleted || s == SiteStatusFailed
}

// Valid reports whether s is one of the known statuses.
func (s SiteStatus) Valid() bool {
	switch s {
	case SiteStatusPending, SiteStatusCompleted, SiteStatusFailed:
		return true
	}
	return false
}

// CanTransition reports whether a site may move from s to next.
// Only pending sites move, and only to a terminal status.
func (s SiteStatus) CanTransition(next SiteStatus) bool {
	return s == SiteStatusPending && next.IsTerminal()
}

// Site is a single storefront generation job.
// Code stays nil until generation completes.
type Site struct {
	ID        int64      `json:"id"`
	Prompt    string     `json:"prompt"`
	Code      *string    `json:"code"`
	Status    SiteStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NewSite returns a pending site for prompt. ID and CreatedAt are assigned by the store.
func NewSite(prompt string) *Site {
	return &Site{Prompt: prompt, Status: SiteStatusPending}
}

// HasCode reports whether the site carries a generated artifact.
func (s *Site) HasCode() bool {
	return s != nil && s.Code != nil
}

// SitePatch is a partial update. Nil fields are left untouched.
type SitePatch struct {
	Code   *string
	Status *SiteStatus
}

// Completed builds the patch written after a successful generation.
func Completed(code string) SitePatch {
	st := SiteStatusCompleted
	return SitePatch{Code: &code, Status: &st}
}

// Failed builds the patch written after a failed generation. Code is left untouched.
func Failed() SitePatch {
	st := SiteStatusFailed
	return SitePatch{Status: &st}
}

// Apply validates p against s and mutates s in place.
// A status change that CanTransition rejects returns false and leaves s untouched.
func (p SitePatch) Apply(s *Site) bool {
	if p.Status != nil {
		if !s.Status.CanTransition(*p.Status) {
			return false
		}
		s.Status = *p.Status
	}
	if p.Code != nil {
		code := *p.Code
		s.Code = &code
	}
	return true
}
