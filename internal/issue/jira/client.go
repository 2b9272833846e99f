// Package jira implements the issue source on top of the Jira REST API.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/festy23/jira_digest/internal/config"
	"github.com/festy23/jira_digest/internal/issue/model"
)

// pageSize is the number of issues requested per search call.
const pageSize = 100

// Client queries Jira. Every request is attempted once and bounded by the
// configured timeout.
type Client struct {
	baseURL    string
	email      string
	apiToken   string
	pat        string
	apiVersion string
	maxResults int
	location   *time.Location
	http       *http.Client
	logger     *zap.SugaredLogger
}

var _ model.Source = (*Client)(nil)

// NewClient creates a Jira client. loc is used to interpret due dates.
func NewClient(cfg config.TrackerConfig, loc *time.Location, logger *zap.SugaredLogger) *Client {
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		email:      cfg.Email,
		apiToken:   cfg.APIToken,
		pat:        cfg.PAT,
		apiVersion: cfg.APIVersion,
		maxResults: cfg.MaxResults,
		location:   loc,
		http:       &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Search returns the issues matching spec, following pagination until the
// result cap is reached.
func (c *Client) Search(ctx context.Context, spec model.QuerySpec) ([]model.Issue, error) {
	if spec.Project == "" {
		return nil, model.ErrInvalidQuery
	}
	limit := spec.MaxResults
	if limit <= 0 {
		limit = c.maxResults
	}

	jql := BuildJQL(spec)
	c.logger.Debugw("jira search", "jql", jql, "limit", limit)

	var (
		issues    []model.Issue
		startAt   int
		pageToken string
	)
	for len(issues) < limit {
		size := min(pageSize, limit-len(issues))

		page, err := c.searchPage(ctx, jql, startAt, pageToken, size)
		if err != nil {
			return nil, err
		}
		for _, dto := range page.Issues {
			issue, err := dto.toIssue(c.location)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", model.ErrQueryFailed, err)
			}
			issues = append(issues, issue)
		}

		if len(page.Issues) == 0 || c.lastPage(page, startAt) {
			break
		}
		startAt += len(page.Issues)
		pageToken = page.NextPageToken
	}

	if len(issues) > limit {
		issues = issues[:limit]
	}
	c.logger.Debugw("jira search completed", "jql", jql, "count", len(issues))
	return issues, nil
}

func (c *Client) lastPage(page *searchResponse, startAt int) bool {
	if c.apiVersion == "3" {
		return page.IsLast || page.NextPageToken == ""
	}
	return startAt+len(page.Issues) >= page.Total
}

func (c *Client) searchPage(ctx context.Context, jql string, startAt int, token string, size int) (*searchResponse, error) {
	var (
		method = http.MethodGet
		path   string
		body   any
		query  url.Values
	)
	if c.apiVersion == "3" {
		method = http.MethodPost
		path = "/rest/api/3/search/jql"
		req := map[string]any{
			"jql":        jql,
			"maxResults": size,
			"fields":     strings.Split(searchFields, ","),
		}
		if token != "" {
			req["nextPageToken"] = token
		}
		body = req
	} else {
		path = "/rest/api/2/search"
		query = url.Values{}
		query.Set("jql", jql)
		query.Set("startAt", strconv.Itoa(startAt))
		query.Set("maxResults", strconv.Itoa(size))
		query.Set("fields", searchFields)
	}

	var page searchResponse
	if err := c.doJSON(ctx, method, c.apiURL(path, query), body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListProjects returns every project visible to the account.
func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var dtos []projectDTO
	path := "/rest/api/" + c.apiVersion + "/project"
	if err := c.doJSON(ctx, http.MethodGet, c.apiURL(path, nil), nil, &dtos); err != nil {
		return nil, err
	}

	projects := make([]model.Project, 0, len(dtos))
	for _, p := range dtos {
		projects = append(projects, model.Project{Key: p.Key, Name: p.Name})
	}
	c.logger.Debugw("jira projects listed", "count", len(projects))
	return projects, nil
}

func (c *Client) apiURL(path string, q url.Values) string {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) authorize(req *http.Request) {
	if c.pat != "" {
		req.Header.Set("Authorization", "Bearer "+c.pat)
		return
	}
	req.SetBasicAuth(c.email, c.apiToken)
}

// doJSON performs one request and decodes a JSON response into out.
// Transport failures, auth rejections and server errors wrap ErrConnectivity;
// other non-2xx statuses wrap ErrQueryFailed.
func (c *Client) doJSON(ctx context.Context, method, u string, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("jira: encoding request: %w", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return fmt.Errorf("jira: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("jira: %s %s: %w", method, req.URL.Path, ctxErr)
		}
		return fmt.Errorf("%w: %s %s: %w", model.ErrConnectivity, method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		statusErr := fmt.Errorf("jira api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(snippet)))
		if classifyStatus(resp.StatusCode) {
			return fmt.Errorf("%w: %w", model.ErrConnectivity, statusErr)
		}
		return fmt.Errorf("%w: %w", model.ErrQueryFailed, statusErr)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %w", model.ErrQueryFailed, err)
	}
	return nil
}

// classifyStatus reports whether a status means the tracker as a whole is unusable.
func classifyStatus(code int) bool {
	return code == http.StatusUnauthorized ||
		code == http.StatusForbidden ||
		code >= http.StatusInternalServerError
}
