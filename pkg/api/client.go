package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/qnetlab/qne-adk/pkg/logging"
)

// Client talks to the coordinator's JSON HTTP interface. It refreshes its
// access token transparently using the refresh token held by the auth store.
type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       *AuthStore
	instanceID string
	log        logging.Logger

	refreshToken string
	accessToken  string
}

// NewClient creates a client for one coordinator host. The host's stored
// refresh token, if any, seeds the session.
func NewClient(host string, auth *AuthStore) *Client {
	c := &Client{
		baseURL: strings.TrimRight(host, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		auth:       auth,
		instanceID: uuid.New().String(),
		log:        logging.With(logging.Component("api")),
	}
	if token, err := auth.Token(c.baseURL); err == nil {
		c.refreshToken = token
	}
	return c
}

// BaseURL returns the coordinator host this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type tokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login authenticates with credentials and stores the refresh token.
func (c *Client) Login(username, password string) (string, error) {
	c.refreshToken = ""
	payload := map[string]string{"username": username, "password": password}

	var tokens tokenResponse
	if err := c.post("/jwt/", payload, &tokens); err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}

	c.accessToken = tokens.Access
	c.refreshToken = tokens.Refresh
	if err := c.auth.StoreLogin(c.baseURL, c.refreshToken, username, password); err != nil {
		return "", err
	}
	c.log.Info("logged in", logging.String("host", c.baseURL))
	return c.refreshToken, nil
}

// Logout drops the stored login for this host.
func (c *Client) Logout() error {
	c.accessToken = ""
	c.refreshToken = ""
	return c.auth.DeleteLogin(c.baseURL)
}

// IsLoggedIn reports whether a usable refresh token is held.
func (c *Client) IsLoggedIn() bool {
	return c.refreshToken != "" && !tokenExpired(c.refreshToken)
}

// tokenExpired checks the exp claim without verifying the signature. The
// server is the authority on validity; this only avoids a doomed round trip.
func tokenExpired(token string) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return true
	}
	expiry, err := parsed.Claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return false
	}
	return time.Now().After(expiry.Time)
}

// ensureAccess obtains a fresh access token, refreshing when possible and
// falling back to stored credentials.
func (c *Client) ensureAccess() error {
	if c.refreshToken != "" && tokenExpired(c.refreshToken) {
		c.refreshToken = ""
	}

	if c.refreshToken != "" {
		var tokens tokenResponse
		if err := c.post("/jwt/refresh/", map[string]string{"refresh": c.refreshToken}, &tokens); err != nil {
			return fmt.Errorf("token refresh failed: %w", err)
		}
		c.accessToken = tokens.Access
		if tokens.Refresh != "" {
			c.refreshToken = tokens.Refresh
			if err := c.auth.SetToken(c.baseURL, c.refreshToken); err != nil {
				return err
			}
		}
		return nil
	}

	username, password, err := c.auth.Credentials(c.baseURL)
	if err != nil {
		return err
	}
	_, err = c.Login(username, password)
	return err
}

// Get performs an authenticated GET and decodes the JSON response into out.
func (c *Client) Get(path string, out any) error {
	if err := c.ensureAccess(); err != nil {
		return err
	}
	return c.do(http.MethodGet, path, nil, out, true)
}

// Post performs an authenticated POST with a JSON body.
func (c *Client) Post(path string, payload, out any) error {
	if err := c.ensureAccess(); err != nil {
		return err
	}
	return c.do(http.MethodPost, path, payload, out, true)
}

// Delete performs an authenticated DELETE.
func (c *Client) Delete(path string) error {
	if err := c.ensureAccess(); err != nil {
		return err
	}
	return c.do(http.MethodDelete, path, nil, nil, true)
}

// PostFile performs an authenticated multipart POST uploading one file under
// fileField alongside the given form fields.
func (c *Client) PostFile(path, fileField, filePath string, fields map[string]string, out any) error {
	if err := c.ensureAccess(); err != nil {
		return err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("opening upload file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	for key, value := range fields {
		if err := form.WriteField(key, value); err != nil {
			return fmt.Errorf("building upload form: %w", err)
		}
	}
	part, err := form.CreateFormFile(fileField, filepath.Base(filePath))
	if err != nil {
		return fmt.Errorf("building upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("reading upload file: %w", err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("building upload form: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("X-Instance-Id", c.instanceID)
	req.Header.Set("Authorization", "JWT "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("POST %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// post is the unauthenticated POST used by the token endpoints themselves.
func (c *Client) post(path string, payload, out any) error {
	return c.do(http.MethodPost, path, payload, out, false)
}

func (c *Client) do(method, path string, payload, out any, authed bool) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Instance-Id", c.instanceID)
	if authed {
		req.Header.Set("Authorization", "JWT "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
