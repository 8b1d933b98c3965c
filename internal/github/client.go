// Package github talks to the source host: OAuth code exchange, repository
// listing, raw file reads and content writes with optimistic concurrency.
// Tokens are caller-supplied and passed through; nothing is stored.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"docfoundry/internal/chunker"
	"docfoundry/internal/models"
)

const (
	defaultAPIBaseURL   = "https://api.github.com"
	defaultOAuthBaseURL = "https://github.com"

	acceptJSON = "application/vnd.github+json"
	acceptRaw  = "application/vnd.github.v3.raw"

	fetchConcurrency = 8
)

// APIError carries the host's status and message through to the caller.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: status %d: %s", e.Status, e.Detail)
}

// Client is a thin wrapper over the host's REST API.
type Client struct {
	httpClient   *http.Client
	apiBaseURL   string
	oauthBaseURL string
	clientID     string
	clientSecret string
	redirectURI  string
}

type Option func(*Client)

// WithAPIBaseURL points the client at a different API host (tests).
func WithAPIBaseURL(base string) Option {
	return func(c *Client) { c.apiBaseURL = strings.TrimRight(base, "/") }
}

// WithOAuthBaseURL points the OAuth endpoints at a different host (tests).
func WithOAuthBaseURL(base string) Option {
	return func(c *Client) { c.oauthBaseURL = strings.TrimRight(base, "/") }
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func NewClient(clientID, clientSecret, redirectURI string, opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		apiBaseURL:   defaultAPIBaseURL,
		oauthBaseURL: defaultOAuthBaseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthorizeURL builds the host login URL the browser is sent to.
func (c *Client) AuthorizeURL() string {
	query := url.Values{}
	query.Set("client_id", c.clientID)
	query.Set("redirect_uri", c.redirectURI)
	query.Set("scope", "repo user")
	return c.oauthBaseURL + "/login/oauth/authorize?" + query.Encode()
}

// ExchangeCode trades an authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.oauthBaseURL+"/login/oauth/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var payload struct {
		AccessToken      string `json:"access_token"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		detail := payload.ErrorDescription
		if detail == "" {
			detail = payload.Error
		}
		if detail == "" {
			detail = "no access token in response"
		}
		return "", &APIError{Status: http.StatusBadRequest, Detail: "failed to fetch access token: " + detail}
	}
	return payload.AccessToken, nil
}

// FetchUser validates a token by loading the authenticated user's profile.
func (c *Client) FetchUser(ctx context.Context, token string) (*models.GitHubUser, error) {
	var user models.GitHubUser
	if err := c.getJSON(ctx, "/user", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUserRepos returns the caller's own repositories, most recently
// updated first.
func (c *Client) ListUserRepos(ctx context.Context, token string) ([]models.RepoInfo, error) {
	params := url.Values{}
	params.Set("sort", "updated")
	params.Set("per_page", "100")
	params.Set("affiliation", "owner")
	var repos []models.RepoInfo
	if err := c.getJSON(ctx, "/user/repos", token, params, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// ListCodeFiles walks the branch tree recursively and returns blob paths
// with a recognized code extension, in tree order.
func (c *Client) ListCodeFiles(ctx context.Context, owner, repo, branch, token string) ([]string, error) {
	var tree struct {
		Tree []struct {
			Path string `json:"path"`
			Type string `json:"type"`
		} `json:"tree"`
	}
	params := url.Values{}
	params.Set("recursive", "1")
	path := fmt.Sprintf("/repos/%s/%s/git/trees/%s", owner, repo, branch)
	if err := c.getJSON(ctx, path, token, params, &tree); err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range tree.Tree {
		if entry.Type == "blob" && chunker.IsCodeFile(entry.Path) {
			paths = append(paths, entry.Path)
		}
	}
	return paths, nil
}

// ReadFile fetches raw file content at a path. Returns nil when the file
// does not exist on the branch.
func (c *Client) ReadFile(ctx context.Context, owner, repo, path, branch, token string) (*string, error) {
	params := url.Values{}
	if branch != "" {
		params.Set("ref", branch)
	}
	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, path)
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, token, params, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptRaw)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, readAPIError(resp)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	content := string(body)
	return &content, nil
}

// FetchFiles lists the branch's code files and reads their contents
// concurrently, preserving tree order. Files that disappear between the
// listing and the read are skipped.
func (c *Client) FetchFiles(ctx context.Context, owner, repo, branch, token string) ([]models.FileRecord, error) {
	paths, err := c.ListCodeFiles(ctx, owner, repo, branch, token)
	if err != nil {
		return nil, err
	}
	contents := make([]*string, len(paths))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(fetchConcurrency)
	for i, path := range paths {
		group.Go(func() error {
			content, err := c.ReadFile(groupCtx, owner, repo, path, branch, token)
			if err != nil {
				return err
			}
			contents[i] = content
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	var files []models.FileRecord
	for i, content := range contents {
		if content == nil {
			continue
		}
		files = append(files, models.FileRecord{Path: paths[i], Content: *content})
	}
	return files, nil
}

// WriteFile pushes content to a path on a branch via the contents API. When
// the file already exists its blob sha must accompany the update; the probe
// sequence mirrors what the host requires for a clean failure message at
// each step.
func (c *Client) WriteFile(ctx context.Context, coords models.RepoCoordinates, content string) (*models.PublishResult, error) {
	if _, err := c.FetchUser(ctx, coords.Token); err != nil {
		return nil, err
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/repos/%s/%s", coords.Owner, coords.Repo), coords.Token, nil, &json.RawMessage{}); err != nil {
		return nil, err
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/repos/%s/%s/branches/%s", coords.Owner, coords.Repo, coords.Branch), coords.Token, nil, &json.RawMessage{}); err != nil {
		return nil, err
	}

	sha, err := c.fileSHA(ctx, coords)
	if err != nil {
		return nil, err
	}

	payload := map[string]string{
		"message": "Update " + coords.FilePath,
		"content": base64.StdEncoding.EncodeToString([]byte(content)),
		"branch":  coords.Branch,
	}
	if sha != "" {
		payload["sha"] = sha
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s", coords.Owner, coords.Repo, coords.FilePath)
	req, err := c.newRequest(ctx, http.MethodPut, endpoint, coords.Token, nil, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, readAPIError(resp)
	}

	var commit struct {
		Commit struct {
			SHA string `json:"sha"`
		} `json:"commit"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&commit); err != nil {
		return nil, fmt.Errorf("decode commit response: %w", err)
	}
	return &models.PublishResult{
		Message:   fmt.Sprintf("Pushed %s to %s/%s@%s", coords.FilePath, coords.Owner, coords.Repo, coords.Branch),
		CommitSHA: commit.Commit.SHA,
	}, nil
}

// fileSHA returns the existing blob sha at the target path, or empty when
// the file does not exist yet.
func (c *Client) fileSHA(ctx context.Context, coords models.RepoCoordinates) (string, error) {
	params := url.Values{}
	params.Set("ref", coords.Branch)
	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s", coords.Owner, coords.Repo, coords.FilePath)
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, coords.Token, params, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", readAPIError(resp)
	}
	var payload struct {
		SHA string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	return payload.SHA, nil
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, params url.Values, body io.Reader) (*http.Request, error) {
	endpoint := c.apiBaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", acceptJSON)
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, path, token string, params url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, token, params, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	detail := strings.TrimSpace(string(body))
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		detail = payload.Message
	}
	return &APIError{Status: resp.StatusCode, Detail: detail}
}
