package domain

import (
	"context"
	"sort"
	"strings"
)

// CompletedTaskLabel marks closed pull requests that finished a task.
const CompletedTaskLabel = "done"

// AuthorTasks groups completed task titles by pull request author.
type AuthorTasks struct {
	Login  string
	Titles []string
}

// CompletedTasks lists closed pull requests labelled done, grouped by author
// and ordered by login.
func (s *Service) CompletedTasks(ctx context.Context) ([]AuthorTasks, error) {
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	pulls, err := s.codeHost.ListPullRequestsByState(callCtx, "closed")
	if err != nil {
		return nil, unavailable("list closed pull requests", err)
	}
	return groupCompleted(pulls), nil
}

func groupCompleted(pulls []PullRequest) []AuthorTasks {
	byAuthor := make(map[string]*AuthorTasks)
	for _, pull := range pulls {
		if !hasLabel(pull.Labels, CompletedTaskLabel) {
			continue
		}
		author := strings.TrimSpace(pull.AuthorLogin)
		if author == "" {
			continue
		}
		entry, ok := byAuthor[author]
		if !ok {
			entry = &AuthorTasks{Login: author}
			byAuthor[author] = entry
		}
		entry.Titles = append(entry.Titles, pull.Title)
	}

	report := make([]AuthorTasks, 0, len(byAuthor))
	for _, entry := range byAuthor {
		report = append(report, *entry)
	}
	sort.Slice(report, func(i, j int) bool { return report[i].Login < report[j].Login })
	return report
}

func hasLabel(labels []string, want string) bool {
	for _, label := range labels {
		if strings.EqualFold(strings.TrimSpace(label), want) {
			return true
		}
	}
	return false
}
