// Package randomdata is a client for the random-data-api.com mock data service.
package randomdata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jon4hz/bankdesk/internal/config"
	"github.com/jon4hz/bankdesk/internal/engine"
)

const (
	usersEndpoint = "/api/users/random_user"
	banksEndpoint = "/api/bank/random_bank"
)

// ErrMissingID is returned for records that carry no id.
var ErrMissingID = errors.New("record has no id")

// Client represents a random data API client.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// New creates a new random data API client.
func New(cfg *config.DataSourceConfig) *Client {
	return &Client{
		baseURL:    cfg.URL,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// user is the subset of the random user payload that bankdesk uses.
type user struct {
	ID        *engine.ID `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	BankID    *engine.ID `json:"bank_id"`
}

// bank is the subset of the random bank payload that bankdesk uses.
type bank struct {
	ID            *engine.ID `json:"id"`
	BankName      string     `json:"bank_name"`
	RoutingNumber string     `json:"routing_number"`
	SwiftBIC      string     `json:"swift_bic"`
}

// doRequest performs a GET request against the random data API.
func (c *Client) doRequest(ctx context.Context, endpoint string, queryParams url.Values) ([]byte, error) {
	reqURL := c.baseURL + endpoint
	if len(queryParams) > 0 {
		reqURL += "?" + queryParams.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

func sizeParam(n int) url.Values {
	return url.Values{"size": []string{strconv.Itoa(n)}}
}

// decodeList decodes a JSON array of records. The API answers size=1 with a
// bare object, which is decoded as a list of one.
func decodeList[T any](body []byte) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '{' {
		var one T
		if err := json.Unmarshal(body, &one); err != nil {
			return nil, err
		}
		return []T{one}, nil
	}
	var many []T
	if err := json.Unmarshal(body, &many); err != nil {
		return nil, err
	}
	return many, nil
}

// RandomUsers fetches n random users.
func (c *Client) RandomUsers(ctx context.Context, n int) ([]engine.User, error) {
	body, err := c.doRequest(ctx, usersEndpoint, sizeParam(n))
	if err != nil {
		return nil, err
	}

	raw, err := decodeList[user](body)
	if err != nil {
		return nil, fmt.Errorf("error decoding users response: %w", err)
	}

	users := make([]engine.User, 0, len(raw))
	for i, r := range raw {
		u, err := r.toUser()
		if err != nil {
			return nil, fmt.Errorf("user %d: %w", i, err)
		}
		users = append(users, u)
	}
	return users, nil
}

// RandomBanks fetches n random banks.
func (c *Client) RandomBanks(ctx context.Context, n int) ([]engine.Bank, error) {
	body, err := c.doRequest(ctx, banksEndpoint, sizeParam(n))
	if err != nil {
		return nil, err
	}

	raw, err := decodeList[bank](body)
	if err != nil {
		return nil, fmt.Errorf("error decoding banks response: %w", err)
	}

	banks := make([]engine.Bank, 0, len(raw))
	for i, r := range raw {
		b, err := r.toBank()
		if err != nil {
			return nil, fmt.Errorf("bank %d: %w", i, err)
		}
		banks = append(banks, b)
	}
	return banks, nil
}

func (u user) toUser() (engine.User, error) {
	if u.ID == nil || *u.ID == "" {
		return engine.User{}, ErrMissingID
	}
	out := engine.User{
		ID:        *u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Email:     u.Email,
	}
	if u.BankID != nil && *u.BankID != "" {
		id := *u.BankID
		out.BankID = &id
	}
	return out, nil
}

func (b bank) toBank() (engine.Bank, error) {
	if b.ID == nil || *b.ID == "" {
		return engine.Bank{}, ErrMissingID
	}
	return engine.Bank{
		ID:            *b.ID,
		BankName:      b.BankName,
		RoutingNumber: b.RoutingNumber,
		SwiftBIC:      b.SwiftBIC,
	}, nil
}
