// Package facebook reads a user's friend list from the Graph API with a
// client-supplied user access token.
package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// ErrInvalidToken is returned when Graph rejects the access token (OAuthException 190).
var ErrInvalidToken = errors.New("facebook access token invalid or expired")

// maxPages bounds pagination for a single import.
const maxPages = 50

type Friend struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Link string `json:"link,omitempty"`
}

type Client struct {
	baseURL string
}

func NewClient(baseURL string) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/")}
}

type friendsPage struct {
	Data   []Friend `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
	Error *graphError `json:"error"`
}

type graphError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

// Friends returns every friend visible to the token. Graph only lists friends who
// also use the app and granted user_friends.
func (c *Client) Friends(ctx context.Context, accessToken string) ([]Friend, error) {
	if accessToken == "" {
		return nil, ErrInvalidToken
	}
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}))

	q := url.Values{}
	q.Set("fields", "id,name,link")
	q.Set("limit", "500")
	next := c.baseURL + "/me/friends?" + q.Encode()

	var out []Friend
	for page := 0; next != "" && page < maxPages; page++ {
		p, err := c.fetch(ctx, hc, next)
		if err != nil {
			return nil, err
		}
		out = append(out, p.Data...)
		next = p.Paging.Next
	}
	return out, nil
}

func (c *Client) fetch(ctx context.Context, hc *http.Client, pageURL string) (*friendsPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph request: %w", err)
	}
	defer resp.Body.Close()

	var p friendsPage
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("graph response (status %d): %w", resp.StatusCode, err)
	}
	if p.Error != nil {
		if p.Error.Code == 190 {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("graph error %d: %s", p.Error.Code, p.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph status %d", resp.StatusCode)
	}
	return &p, nil
}
