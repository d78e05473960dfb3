package render

import (
	"strings"
	"testing"

	"github.com/louisbranch/onboarding.space/internal/services/onboarding/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func TestMatchLocale(t *testing.T) {
	cases := map[string]language.Tag{
		"":      language.English,
		"en-US": language.English,
		"pt-BR": language.BrazilianPortuguese,
		"pt":    language.BrazilianPortuguese,
		"!!":    language.English,
	}
	for input, want := range cases {
		if got := MatchLocale(input); got != want {
			t.Fatalf("MatchLocale(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestEnglishCopy(t *testing.T) {
	c := New("en")

	if got := c.Welcome("Mona"); !strings.Contains(got, "Mona") || !strings.Contains(got, "license") {
		t.Fatalf("Welcome() = %q", got)
	}
	if got := c.TaskAssigned("octocat", 1); !strings.Contains(got, "octocat") || !strings.Contains(got, "#1") {
		t.Fatalf("TaskAssigned() = %q", got)
	}
	if got := c.UnhandledAction("dance"); !strings.Contains(got, `"dance"`) {
		t.Fatalf("UnhandledAction() = %q", got)
	}
	if got := c.AgreeLicenseLabel(); got != "I agree" {
		t.Fatalf("AgreeLicenseLabel() = %q, want %q", got, "I agree")
	}
}

func TestPortugueseCopy(t *testing.T) {
	c := New("pt-BR")
	if got := c.AgreeLicenseLabel(); got != "Eu aceito" {
		t.Fatalf("AgreeLicenseLabel() = %q, want %q", got, "Eu aceito")
	}
	if got := c.TaskCompleted("Mona", 1); !strings.HasPrefix(got, "Parabéns Mona") {
		t.Fatalf("TaskCompleted() = %q", got)
	}
}

func TestMentorPullRequestMentions(t *testing.T) {
	c := New("en")
	const url = "https://github.com/example/repo/pull/7"

	withChat := c.MentorPullRequest(domain.Mentor{Login: "M1", ChatUserID: "UM1"}, "octocat", url)
	for _, want := range []string{"<@UM1>", "M1", "octocat", url} {
		if !strings.Contains(withChat, want) {
			t.Fatalf("message %q does not contain %q", withChat, want)
		}
	}

	loginOnly := c.MentorPullRequest(domain.Mentor{Login: "M1"}, "octocat", url)
	if strings.Contains(loginOnly, "<@") {
		t.Fatalf("message %q should not mention a chat identity", loginOnly)
	}
}

type keyEchoLocalizer struct{}

func (keyEchoLocalizer) Sprintf(key message.Reference, _ ...any) string {
	if value, ok := key.(string); ok {
		return value
	}
	return ""
}

func TestLocalizeFallsBackToEnglish(t *testing.T) {
	c := NewWithLocalizer(keyEchoLocalizer{})
	if got := c.MarkCompleteLabel(); got != "Mark complete" {
		t.Fatalf("MarkCompleteLabel() = %q, want English fallback", got)
	}
}
