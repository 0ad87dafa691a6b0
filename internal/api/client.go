package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/juandrep/golftrack/internal/models"
)

const basePath = "/api/v1"

// Client is a stateless request layer over the sync service: one
// method per mutation, no retries. Session credentials are supplied
// explicitly by the caller rather than looked up from ambient state.
type Client struct {
	baseURL    string
	token      string
	uid        string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetSession attaches the bearer credential and user id used on every
// subsequent call.
func (c *Client) SetSession(token, uid string) {
	c.token = token
	c.uid = uid
}

// ClearSession drops the credentials; protected calls will be rejected
// by the server from here on.
func (c *Client) ClearSession() {
	c.token = ""
	c.uid = ""
}

func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

func (c *Client) HasSession() bool {
	return c.token != "" && c.uid != ""
}

func (c *Client) UID() string {
	return c.uid
}

// UpsertCourse pushes a full course record. A 200 returns the
// account's bootstrap snapshot.
func (c *Client) UpsertCourse(course models.Course) (*Snapshot, error) {
	var snap Snapshot
	if err := c.put(fmt.Sprintf("%s/users/%s/courses/%s", basePath, c.uid, course.ID), course, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// UpsertRound pushes a full round record. This is the only endpoint
// that signals conflicts: a 409 carrying a serverRound payload is
// returned as a *ConflictError so callers can fork instead of failing.
func (c *Client) UpsertRound(round models.Round) (*Snapshot, error) {
	jsonBody, err := json.Marshal(round)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPut,
		c.baseURL+fmt.Sprintf("%s/users/%s/rounds/%s", basePath, c.uid, round.ID),
		bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.addAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusConflict {
		var cr conflictResponse
		if json.Unmarshal(body, &cr) == nil && cr.ServerRound != nil {
			return nil, &ConflictError{Message: cr.Error, ServerRound: cr.ServerRound}
		}
		return nil, fmt.Errorf("round upsert failed with status %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, errorFromBody(resp.StatusCode, body)
	}

	var snap Snapshot
	if len(body) > 0 {
		if err := json.Unmarshal(body, &snap); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return &snap, nil
}

// DeleteRound removes a round from the account.
func (c *Client) DeleteRound(id string) error {
	return c.delete(fmt.Sprintf("%s/users/%s/rounds/%s", basePath, c.uid, id))
}

// SetActiveRound points the server-side active-round record at the
// given round id; nil clears it.
func (c *Client) SetActiveRound(roundID *string) error {
	return c.put(fmt.Sprintf("%s/users/%s/active-round", basePath, c.uid), activeRoundRequest{RoundID: roundID}, nil)
}

// SaveSettings pushes the settings singleton.
func (c *Client) SaveSettings(s models.Settings) error {
	return c.put(fmt.Sprintf("%s/users/%s/settings", basePath, c.uid), s, nil)
}

// SaveProfile pushes the account profile.
func (c *Client) SaveProfile(p models.Profile) error {
	return c.put(fmt.Sprintf("%s/users/%s/profile", basePath, c.uid), p, nil)
}

// Leaderboard fetches the server-computed leaderboard verbatim.
func (c *Client) Leaderboard(timeframe, courseID, role string) ([]models.LeaderboardEntry, error) {
	params := url.Values{}
	if timeframe != "" {
		params.Set("timeframe", timeframe)
	}
	if courseID != "" {
		params.Set("courseId", courseID)
	}
	if role != "" {
		params.Set("role", role)
	}

	path := basePath + "/leaderboard"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp leaderboardResponse
	if err := c.get(path, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// FetchSnapshot pulls the full account state for reconciliation.
func (c *Client) FetchSnapshot() (*Snapshot, error) {
	var snap Snapshot
	if err := c.get(fmt.Sprintf("%s/users/%s/snapshot", basePath, c.uid), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) Ping() error {
	return c.get("/health", nil)
}

// HTTP helpers

func (c *Client) get(path string, result interface{}) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.doRequest(req, result)
}

func (c *Client) put(path string, body interface{}, result interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPut, c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doRequest(req, result)
}

func (c *Client) delete(path string) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.doRequest(req, nil)
}

// addAuthHeaders attaches the bearer token and user id when a session
// exists. Without one the call still goes out; the server rejects
// protected routes itself.
func (c *Client) addAuthHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.uid != "" {
		req.Header.Set("x-user-uid", c.uid)
	}
}

func (c *Client) doRequest(req *http.Request, result interface{}) error {
	c.addAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return errorFromBody(resp.StatusCode, body)
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func errorFromBody(status int, body []byte) error {
	var errResp errorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return fmt.Errorf("%s", errResp.Error)
	}
	return fmt.Errorf("request failed with status %d", status)
}
