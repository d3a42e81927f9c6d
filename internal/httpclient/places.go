package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/yungbote/placeshare-backend/internal/domain/place"
)

// Place is a place as the API returns it.
type Place struct {
	place.Place
	ImageURL string `json:"image_url,omitempty"`
}

type CreatePlaceRequest struct {
	Title       string
	Description string
	Address     string
	ImageName   string
	Image       io.Reader
}

// PlacesClient calls the places API through a Manager, so every call shares
// its loading and error state.
type PlacesClient struct {
	m       *Manager
	baseURL string
	token   string
}

func NewPlacesClient(m *Manager, baseURL string) *PlacesClient {
	return &PlacesClient{m: m, baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

// WithToken returns a copy that sends token as a bearer credential.
func (c *PlacesClient) WithToken(token string) *PlacesClient {
	cp := *c
	cp.token = strings.TrimSpace(token)
	return &cp
}

func (c *PlacesClient) GetPlace(ctx context.Context, placeID string) (*Place, error) {
	var out struct {
		Place *Place `json:"place"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/places/"+url.PathEscape(placeID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Place, nil
}

func (c *PlacesClient) ListUserPlaces(ctx context.Context, userID string) ([]Place, error) {
	var out struct {
		Places []Place `json:"places"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/places/user/"+url.PathEscape(userID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Places, nil
}

func (c *PlacesClient) CreatePlace(ctx context.Context, in CreatePlaceRequest) (*Place, error) {
	if in.Image == nil {
		return nil, fmt.Errorf("image required")
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range [][2]string{{"title", in.Title}, {"description", in.Description}, {"address", in.Address}} {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, err
		}
	}
	name := strings.TrimSpace(in.ImageName)
	if name == "" {
		name = "image"
	}
	fw, err := w.CreateFormFile("image", name)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, in.Image); err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	var out struct {
		Place *Place `json:"place"`
	}
	headers := map[string]string{"Content-Type": w.FormDataContentType()}
	if err := c.call(ctx, http.MethodPost, "/api/places", &buf, headers, &out); err != nil {
		return nil, err
	}
	return out.Place, nil
}

func (c *PlacesClient) UpdatePlace(ctx context.Context, placeID, title, description string) (*Place, error) {
	body, err := json.Marshal(map[string]string{"title": title, "description": description})
	if err != nil {
		return nil, err
	}
	var out struct {
		Place *Place `json:"place"`
	}
	if err := c.call(ctx, http.MethodPatch, "/api/places/"+url.PathEscape(placeID), bytes.NewReader(body), nil, &out); err != nil {
		return nil, err
	}
	return out.Place, nil
}

// DeletePlace returns the server's confirmation message.
func (c *PlacesClient) DeletePlace(ctx context.Context, placeID string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.call(ctx, http.MethodDelete, "/api/places/"+url.PathEscape(placeID), nil, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *PlacesClient) call(ctx context.Context, method, path string, body io.Reader, headers map[string]string, out any) error {
	h := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		h[k] = v
	}
	if c.token != "" {
		h["Authorization"] = "Bearer " + c.token
	}
	raw, err := c.m.SendRequest(ctx, c.baseURL+path, method, body, h)
	if err != nil {
		return err
	}
	if len(raw) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
