package domain

import (
	"strings"
	"time"
)

// NoMentor marks a contributor without an assigned mentor.
const NoMentor = "NO_MENTOR"

// Contributor is one chat identity's onboarding progress.
type Contributor struct {
	ChatUserID         string
	LinkedAccountLogin string
	Milestone          State
	TaskNumber         int
	MentorLogin        string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewContributor returns the initial record for a chat identity.
func NewContributor(chatUserID string, now time.Time) Contributor {
	now = now.UTC()
	return Contributor{
		ChatUserID:  strings.TrimSpace(chatUserID),
		Milestone:   StateNew,
		TaskNumber:  1,
		MentorLogin: NoMentor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// HasMentor reports whether a mentor has been bound.
func (c Contributor) HasMentor() bool {
	return c.MentorLogin != "" && c.MentorLogin != NoMentor
}

// Mentor is one mentor roster entry.
type Mentor struct {
	Login      string
	ChatUserID string
}

func normalizeLogin(login string) string {
	return strings.TrimPrefix(strings.TrimSpace(login), "@")
}
