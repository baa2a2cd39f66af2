package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bahooo22/HannaWhishlist/internal/pkg/config"
	"github.com/bahooo22/HannaWhishlist/internal/pkg/errs"

	"github.com/google/uuid"
)

// Gift mirrors the wishlist API's gift payload.
type Gift struct {
	ID                  uuid.UUID `json:"id"`
	Title               string    `json:"title"`
	Link                string    `json:"link,omitempty"`
	Status              string    `json:"status"`
	ReservedByID        string    `json:"reservedById,omitempty"`
	ReservedByNickname  string    `json:"reservedByNickname,omitempty"`
	ReservedByFirstName string    `json:"reservedByFirstName,omitempty"`
	ReservedByLastName  string    `json:"reservedByLastName,omitempty"`
}

func (g *Gift) IsFree() bool {
	return strings.EqualFold(g.Status, "Free")
}

type ReserveRequest struct {
	ReservedByID        string `json:"reservedById"`
	ReservedByNickname  string `json:"reservedByNickname"`
	ReservedByFirstName string `json:"reservedByFirstName"`
	ReservedByLastName  string `json:"reservedByLastName,omitempty"`
}

// APIError carries the raw response body so callers can surface a sanitized
// message to the user.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wishlist api returned %d: %s", e.StatusCode, e.Body)
}

type tokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// WishlistClient talks to the wishlist HTTP API with a bearer token from the
// auth server.
type WishlistClient struct {
	httpClient *http.Client
	baseURL    string
	tokens     tokenProvider
}

func NewWishlistClient(cfg config.WishlistConfig, tokens tokenProvider) *WishlistClient {
	return &WishlistClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		tokens:     tokens,
	}
}

func (c *WishlistClient) ListGifts(ctx context.Context) ([]Gift, error) {
	var gifts []Gift
	if err := c.do(ctx, http.MethodGet, "/api/gifts", nil, &gifts); err != nil {
		return nil, err
	}
	return gifts, nil
}

func (c *WishlistClient) GetGift(ctx context.Context, id uuid.UUID) (*Gift, error) {
	var gift Gift
	if err := c.do(ctx, http.MethodGet, "/api/gifts/"+id.String(), nil, &gift); err != nil {
		return nil, err
	}
	return &gift, nil
}

func (c *WishlistClient) CreateGift(ctx context.Context, title, link string) (*Gift, error) {
	body := map[string]string{"title": title}
	if link != "" {
		body["link"] = link
	}
	var gift Gift
	if err := c.do(ctx, http.MethodPost, "/api/gifts", body, &gift); err != nil {
		return nil, err
	}
	return &gift, nil
}

func (c *WishlistClient) DeleteGift(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/gifts/"+id.String(), nil, nil)
}

func (c *WishlistClient) Reserve(ctx context.Context, id uuid.UUID, req ReserveRequest) error {
	return c.do(ctx, http.MethodPost, "/api/gifts/"+id.String()+"/reserve", req, nil)
}

func (c *WishlistClient) Unreserve(ctx context.Context, id uuid.UUID, nickname string) error {
	body := map[string]string{"reservedByNickname": nickname}
	return c.do(ctx, http.MethodPost, "/api/gifts/"+id.String()+"/unreserve", body, nil)
}

func (c *WishlistClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errs.Wrap(err, "failed to encode request body")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errs.Wrap(err, "failed to build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return errs.Wrap(err, "failed to obtain access token")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.Wrap(err, "wishlist api request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errs.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return errs.Wrap(err, "failed to decode response body")
		}
	}
	return nil
}
