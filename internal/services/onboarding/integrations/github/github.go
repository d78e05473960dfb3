// Package github adapts the GitHub REST API to the onboarding code-host
// collaborator.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/louisbranch/onboarding.space/internal/services/onboarding/domain"
)

const (
	defaultHost = "github.com"
	pageSize    = 100
	// maxPages bounds a single listing; larger repositories are truncated.
	maxPages = 50
)

// Config configures the GitHub client.
type Config struct {
	Host  string
	Token string
	// Repository is the owner/name whose pull requests are listed.
	Repository string
	// BaseURL overrides the REST endpoint derived from Host.
	BaseURL   string
	Transport http.RoundTripper
	Timeout   time.Duration
}

// Client implements domain.CodeHost over the GitHub REST API.
type Client struct {
	rest    *api.RESTClient
	owner   string
	repo    string
	baseURL string
}

// New builds a GitHub code-host client.
func New(cfg Config) (*Client, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, fmt.Errorf("github token is required")
	}
	owner, repo, ok := strings.Cut(strings.TrimSpace(cfg.Repository), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return nil, fmt.Errorf("github repository must be owner/name, got %q", cfg.Repository)
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = defaultHost
	}

	rest, err := api.NewRESTClient(api.ClientOptions{
		Host:      host,
		AuthToken: token,
		Transport: cfg.Transport,
		Timeout:   cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create github client: %w", err)
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{rest: rest, owner: owner, repo: repo, baseURL: baseURL}, nil
}

// AccountExists reports whether login names a GitHub user or organization.
func (c *Client) AccountExists(ctx context.Context, login string) (bool, error) {
	if c == nil || c.rest == nil {
		return false, fmt.Errorf("github client is not configured")
	}
	login = strings.TrimSpace(login)
	if login == "" {
		return false, nil
	}

	err := c.rest.DoWithContext(ctx, http.MethodGet, c.path("users/"+url.PathEscape(login)), nil, nil)
	if err == nil {
		return true, nil
	}
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
		return false, nil
	}
	return false, fmt.Errorf("lookup github account %s: %w", login, err)
}

type pullRequestPayload struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	HTMLURL string `json:"html_url"`
	State   string `json:"state"`
	User    struct {
		Login string `json:"login"`
	} `json:"user"`
	Labels []struct {
		Name string `json:"name"`
	} `json:"labels"`
}

// ListPullRequestsByState lists the repository's pull requests in state
// ("open", "closed" or "all"), following pagination.
func (c *Client) ListPullRequestsByState(ctx context.Context, state string) ([]domain.PullRequest, error) {
	if c == nil || c.rest == nil {
		return nil, fmt.Errorf("github client is not configured")
	}
	state = strings.ToLower(strings.TrimSpace(state))
	switch state {
	case "open", "closed", "all":
	default:
		return nil, fmt.Errorf("unsupported pull request state %q", state)
	}

	var pulls []domain.PullRequest
	for page := 1; page <= maxPages; page++ {
		query := url.Values{}
		query.Set("state", state)
		query.Set("per_page", fmt.Sprint(pageSize))
		query.Set("page", fmt.Sprint(page))
		path := fmt.Sprintf("repos/%s/%s/pulls?%s", url.PathEscape(c.owner), url.PathEscape(c.repo), query.Encode())

		var payload []pullRequestPayload
		if err := c.rest.DoWithContext(ctx, http.MethodGet, c.path(path), nil, &payload); err != nil {
			return nil, fmt.Errorf("list github pull requests page %d: %w", page, err)
		}
		for _, pr := range payload {
			pulls = append(pulls, pullRequestFromPayload(pr))
		}
		if len(payload) < pageSize {
			break
		}
	}
	return pulls, nil
}

func (c *Client) path(relative string) string {
	if c.baseURL == "" {
		return relative
	}
	return c.baseURL + relative
}

func pullRequestFromPayload(pr pullRequestPayload) domain.PullRequest {
	labels := make([]string, 0, len(pr.Labels))
	for _, label := range pr.Labels {
		labels = append(labels, label.Name)
	}
	return domain.PullRequest{
		Number:      pr.Number,
		Title:       pr.Title,
		AuthorLogin: pr.User.Login,
		URL:         pr.HTMLURL,
		State:       pr.State,
		Labels:      labels,
	}
}

var _ domain.CodeHost = (*Client)(nil)
