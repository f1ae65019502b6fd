// Package client is the HTTP API client used by the command-line tool.
// Encryption happens in the CLI before payloads reach this package, so the
// client only ever carries ciphertext.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrUnauthorized is returned for 401 responses, usually an expired session.
var ErrUnauthorized = errors.New("unauthorized, log in again")

// Client talks to the vault server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Account is the server's account representation.
type Account struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	SubscriptionStatus string    `json:"subscriptionStatus"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Record is the server's record representation. EncryptedPayload is opaque to
// the server and decrypted locally.
type Record struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	EncryptedPayload string    `json:"encryptedPayload"`
	Category         string    `json:"category"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// QuotaStatus is the server's subscription and quota view.
type QuotaStatus struct {
	Status          string `json:"status"`
	RecordCount     int    `json:"recordCount"`
	Limit           int    `json:"limit"`
	CanCreateRecord bool   `json:"canCreateRecord"`
}

type credentialsRequest struct {
	Email          string `json:"email"`
	MasterPassword string `json:"masterPassword"`
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, email, masterPassword string) (Account, error) {
	var account Account
	err := c.do(ctx, http.MethodPost, "/api/auth/register", credentialsRequest{
		Email:          email,
		MasterPassword: masterPassword,
	}, &account)
	return account, err
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, masterPassword string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", credentialsRequest{
		Email:          email,
		MasterPassword: masterPassword,
	}, &resp)
	return resp.Token, err
}

// CreateRecord stores a new record with an already encrypted payload.
func (c *Client) CreateRecord(ctx context.Context, title, encryptedPayload, category string) (Record, error) {
	var record Record
	err := c.do(ctx, http.MethodPost, "/api/records", map[string]string{
		"title":            title,
		"encryptedPayload": encryptedPayload,
		"category":         category,
	}, &record)
	return record, err
}

// RecordUpdate carries the fields to change; nil fields keep their stored
// value on the server.
type RecordUpdate struct {
	Title            *string `json:"title,omitempty"`
	EncryptedPayload *string `json:"encryptedPayload,omitempty"`
	Category         *string `json:"category,omitempty"`
}

// UpdateRecord replaces the provided fields of an existing record.
func (c *Client) UpdateRecord(ctx context.Context, id string, update RecordUpdate) (Record, error) {
	var record Record
	err := c.do(ctx, http.MethodPut, "/api/records/"+url.PathEscape(id), update, &record)
	return record, err
}

// GetRecord fetches one record.
func (c *Client) GetRecord(ctx context.Context, id string) (Record, error) {
	var record Record
	err := c.do(ctx, http.MethodGet, "/api/records/"+url.PathEscape(id), nil, &record)
	return record, err
}

// ListRecords fetches records, optionally filtered by category and title
// substring.
func (c *Client) ListRecords(ctx context.Context, category, query string) ([]Record, error) {
	params := url.Values{}
	if category != "" {
		params.Set("category", category)
	}
	if query != "" {
		params.Set("q", query)
	}
	path := "/api/records"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var records []Record
	err := c.do(ctx, http.MethodGet, path, nil, &records)
	return records, err
}

// DeleteRecord removes a record.
func (c *Client) DeleteRecord(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/records/"+url.PathEscape(id), nil, nil)
}

// SubscriptionStatus fetches the quota view for the logged-in account.
func (c *Client) SubscriptionStatus(ctx context.Context) (QuotaStatus, error) {
	var status QuotaStatus
	err := c.do(ctx, http.MethodGet, "/api/subscription/status", nil, &status)
	return status, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("server: %s", apiErr.Error)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
