package store

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gamedrops/droplist/ops"
)

const DefaultGitHubApiBaseUrl = "https://api.github.com"

const defaultRequestTimeout = 20 * time.Second

// HttpDoer allows tests to stand in for *http.Client.
type HttpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// GitHubStore implements DocumentStore on top of the GitHub repository
// contents API. The file's blob SHA serves as the version token: the API
// rejects updates whose "sha" field doesn't match the current blob, which
// is exactly the conditional write this package needs.
//
// https://docs.github.com/en/rest/repos/contents
type GitHubStore struct {
	BaseUrl   string
	Owner     string
	Repo      string
	AuthToken string
	Client    HttpDoer
}

func NewGitHubStore(owner, repo, authToken string) *GitHubStore {
	return &GitHubStore{
		BaseUrl:   DefaultGitHubApiBaseUrl,
		Owner:     owner,
		Repo:      repo,
		AuthToken: authToken,
		Client:    &http.Client{Timeout: defaultRequestTimeout},
	}
}

type contentsResponse struct {
	Content string `json:"content"`
	Sha     string `json:"sha"`
}

type updateRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Sha     string `json:"sha,omitempty"`
}

type updateResponse struct {
	Content struct {
		Sha string `json:"sha"`
	} `json:"content"`
}

func (gh *GitHubStore) Get(
	ctx context.Context, path string,
) (doc *Document, err error) {
	status, respBody, err := gh.doRequest(ctx, http.MethodGet, path, nil)

	if err != nil {
		return
	} else if status == http.StatusNotFound {
		err = fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
		return
	} else if status != http.StatusOK {
		err = gh.apiError("get", path, status, respBody)
		return
	}

	resp := &contentsResponse{}
	var body []byte

	if err = json.Unmarshal(respBody, resp); err != nil {
		err = fmt.Errorf("failed to parse contents of %s: %s", path, err)
	} else if body, err = decodeContent(resp.Content); err != nil {
		err = fmt.Errorf("failed to decode contents of %s: %s", path, err)
	} else {
		doc = &Document{Body: body, Token: resp.Sha}
	}
	return
}

func (gh *GitHubStore) Put(
	ctx context.Context, path string, body []byte,
	expectedToken, changelog string,
) (newToken string, err error) {
	update := &updateRequest{
		Message: changelog,
		Content: base64.StdEncoding.EncodeToString(body),
		Sha:     expectedToken,
	}
	var payload []byte

	if payload, err = json.Marshal(update); err != nil {
		err = fmt.Errorf("failed to marshal update for %s: %s", path, err)
		return
	}

	status, respBody, err := gh.doRequest(ctx, http.MethodPut, path, payload)

	if err != nil {
		return
	}

	switch status {
	case http.StatusOK, http.StatusCreated:
		resp := &updateResponse{}
		if err = json.Unmarshal(respBody, resp); err != nil {
			err = fmt.Errorf("failed to parse update of %s: %s", path, err)
		} else {
			newToken = resp.Content.Sha
		}
	case http.StatusConflict, http.StatusUnprocessableEntity:
		// The API reports stale blob SHAs with either status depending on
		// the endpoint version.
		err = fmt.Errorf("%w: %s", ErrVersionConflict, path)
	default:
		err = gh.apiError("update", path, status, respBody)
	}
	return
}

func (gh *GitHubStore) doRequest(
	ctx context.Context, method, path string, payload []byte,
) (status int, respBody []byte, err error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	url := fmt.Sprintf(
		"%s/repos/%s/%s/contents/%s", gh.BaseUrl, gh.Owner, gh.Repo, path,
	)
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)

	if err != nil {
		err = fmt.Errorf("failed to create %s request for %s: %s",
			method, path, err)
		return
	}

	req.Header.Set("Authorization", "token "+gh.AuthToken)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := gh.Client.Do(req)

	if err != nil {
		err = fmt.Errorf("%w: request for %s failed: %w",
			ops.ErrExternal, path, err)
		return
	}
	defer resp.Body.Close()

	status = resp.StatusCode
	if respBody, err = io.ReadAll(resp.Body); err != nil {
		err = fmt.Errorf("%w: failed to read response for %s: %w",
			ops.ErrExternal, path, err)
	}
	return
}

func (gh *GitHubStore) apiError(
	op, path string, status int, respBody []byte,
) error {
	detail := strings.TrimSpace(string(respBody))
	if status >= http.StatusInternalServerError {
		return fmt.Errorf("%w: failed to %s %s: status %d: %s",
			ops.ErrExternal, op, path, status, detail)
	}
	return fmt.Errorf("failed to %s %s: status %d: %s",
		op, path, status, detail)
}

// The contents API wraps base64 payloads across multiple lines.
func decodeContent(content string) ([]byte, error) {
	content = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, content)
	return base64.StdEncoding.DecodeString(content)
}
