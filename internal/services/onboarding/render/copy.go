// Package render produces localized chat copy for onboarding notifications.
package render

import (
	"strings"

	"github.com/louisbranch/onboarding.space/internal/services/onboarding/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	keyWelcome             = "onboarding.welcome"
	keyAgreeLicenseLabel   = "onboarding.welcome.agree_button"
	keyAskAccountLogin     = "onboarding.license_agreed.ask_login"
	keyAccountMissing      = "onboarding.link.account_missing"
	keyAccountTaken        = "onboarding.link.account_taken"
	keyLinkNotApplicable   = "onboarding.link.not_applicable"
	keyTaskAssigned        = "onboarding.task.assigned"
	keyMarkCompleteLabel   = "onboarding.task.complete_button"
	keyTaskCompleted       = "onboarding.task.completed"
	keyActionNotApplicable = "onboarding.action.not_applicable"
	keyUnhandledAction     = "onboarding.action.unhandled"
	keyMentorPullRequest   = "onboarding.mentor.pull_request"
)

var supported = []language.Tag{language.English, language.BrazilianPortuguese}

var matcher = language.NewMatcher(supported)

// Localizer is the minimal message-printer contract required by Copy.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// Copy renders onboarding chat text through a Localizer.
type Copy struct {
	loc Localizer
}

// New returns copy for the closest supported locale, defaulting to English.
func New(locale string) Copy {
	return Copy{loc: message.NewPrinter(MatchLocale(locale))}
}

// NewWithLocalizer returns copy backed by loc.
func NewWithLocalizer(loc Localizer) Copy {
	return Copy{loc: loc}
}

// MatchLocale resolves locale to a supported tag.
func MatchLocale(locale string) language.Tag {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return language.English
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return language.English
	}
	return supported[index]
}

func (c Copy) Welcome(displayName string) string {
	return localize(c.loc, keyWelcome, displayName)
}

func (c Copy) AgreeLicenseLabel() string {
	return localize(c.loc, keyAgreeLicenseLabel)
}

func (c Copy) AskAccountLogin(displayName string) string {
	return localize(c.loc, keyAskAccountLogin, displayName)
}

func (c Copy) AccountMissing(login string) string {
	return localize(c.loc, keyAccountMissing, login)
}

func (c Copy) AccountTaken(login string) string {
	return localize(c.loc, keyAccountTaken, login)
}

func (c Copy) LinkNotApplicable() string {
	return localize(c.loc, keyLinkNotApplicable)
}

func (c Copy) TaskAssigned(login string, taskNumber int) string {
	return localize(c.loc, keyTaskAssigned, login, taskNumber)
}

func (c Copy) MarkCompleteLabel() string {
	return localize(c.loc, keyMarkCompleteLabel)
}

func (c Copy) TaskCompleted(displayName string, taskNumber int) string {
	return localize(c.loc, keyTaskCompleted, displayName, taskNumber)
}

func (c Copy) ActionNotApplicable(action string) string {
	return localize(c.loc, keyActionNotApplicable, action)
}

func (c Copy) UnhandledAction(action string) string {
	return localize(c.loc, keyUnhandledAction, action)
}

// MentorPullRequest mentions the mentor by chat identity when known.
func (c Copy) MentorPullRequest(mentor domain.Mentor, traineeLogin, pullRequestURL string) string {
	return localize(c.loc, keyMentorPullRequest, mention(mentor), traineeLogin, pullRequestURL)
}

func mention(mentor domain.Mentor) string {
	if id := strings.TrimSpace(mentor.ChatUserID); id != "" {
		return "<@" + id + "> (" + mentor.Login + ")"
	}
	return mentor.Login
}

// localize falls back to the English catalog when loc has no entry for key.
// A printer without an entry echoes the key as the format.
func localize(loc Localizer, key string, args ...any) string {
	if loc != nil {
		if value := loc.Sprintf(key, args...); value != "" && !strings.HasPrefix(value, key) {
			return value
		}
	}
	return english.Sprintf(key, args...)
}

var english = message.NewPrinter(language.English)

var _ domain.Copy = Copy{}
