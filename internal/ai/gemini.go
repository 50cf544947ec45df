// Package ai proxies text generation to the Gemini API over plain HTTP.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("ai: empty response")

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.0-flash"
)

// Gemini calls the generateContent endpoint with a fixed model.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// NewGemini creates a Gemini client.
func NewGemini(apiKey string) *Gemini {
	return &Gemini{
		apiKey:  apiKey,
		model:   defaultModel,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// generate sends one prompt and returns the first candidate's text.
func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("gemini decode: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if result.Error != nil {
			return "", fmt.Errorf("gemini: %s", result.Error.Message)
		}
		return "", fmt.Errorf("gemini: status %d", resp.StatusCode)
	}

	for _, cand := range result.Candidates {
		for _, p := range cand.Content.Parts {
			if text := strings.TrimSpace(p.Text); text != "" {
				return text, nil
			}
		}
	}
	return "", ErrEmptyResponse
}

// Discover answers a vibe-based music discovery prompt.
func (g *Gemini) Discover(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, fmt.Sprintf(
		`You are a music discovery guru. A user is looking for music with this vibe: %q. Suggest 3 distinct albums with a brief 1-sentence explanation for each. Format nicely.`,
		prompt,
	))
}

// AlbumInsight writes a short "About" description for an album.
func (g *Gemini) AlbumInsight(ctx context.Context, artist, title string) (string, error) {
	return g.generate(ctx, fmt.Sprintf(
		`Write a 2-3 sentence "About" description for the album %q by %s. Cover the sound, themes, and why it matters. Tone: knowledgeable but accessible, like a music critic's intro.`,
		title, artist,
	))
}

// PolishReview rewrites rough notes into a short review.
func (g *Gemini) PolishReview(ctx context.Context, text string) (string, error) {
	return g.generate(ctx, fmt.Sprintf(
		`You are a world-class music critic. Transform these rough notes into a polished, insightful album review. Keep it around 100 words. Rough notes: %q`,
		text,
	))
}
