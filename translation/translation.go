// Package translation translates business descriptions through a
// LibreTranslate-compatible provider. Failures never reach the caller: the
// original text is returned with Translated set to false.
package translation

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	requestTimeout = 10 * time.Second
	keyPrefix      = "translation:"
)

type Result struct {
	Text       string `json:"text"`
	Language   string `json:"language"`
	Translated bool   `json:"translated"`
}

type Translator struct {
	baseURL string
	apiKey  string
	client  *http.Client
	cache   Cache
	ttl     time.Duration
}

// New returns a Translator for baseURL. An empty baseURL disables the
// provider; cache may be nil.
func New(baseURL, apiKey string, cache Cache, ttl time.Duration) *Translator {
	return &Translator{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: requestTimeout},
		cache:   cache,
		ttl:     ttl,
	}
}

type providerRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type providerResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

func cacheKey(target, text string) string {
	sum := sha256.Sum256([]byte(target + "\x00" + text))
	return keyPrefix + hex.EncodeToString(sum[:])
}

func (t *Translator) Translate(ctx context.Context, text, target string) Result {
	original := Result{Text: text, Language: target, Translated: false}
	if strings.TrimSpace(text) == "" || t.baseURL == "" {
		return original
	}

	key := cacheKey(target, text)
	if t.cache != nil {
		cached, ok, err := t.cache.Get(ctx, key)
		if err != nil {
			logrus.WithError(err).Warn("translation cache read failed")
		} else if ok {
			return Result{Text: cached, Language: target, Translated: true}
		}
	}

	translated, err := t.fetch(ctx, text, target)
	if err != nil {
		logrus.WithError(err).WithField("target", target).Warn("translation failed, serving original text")
		return original
	}

	if t.cache != nil {
		if err := t.cache.Set(ctx, key, translated, t.ttl); err != nil {
			logrus.WithError(err).Warn("translation cache write failed")
		}
	}
	return Result{Text: translated, Language: target, Translated: true}
}

func (t *Translator) fetch(ctx context.Context, text, target string) (string, error) {
	body, err := json.Marshal(providerRequest{
		Q:      text,
		Source: "auto",
		Target: target,
		Format: "text",
		APIKey: t.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("encoding translate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building translate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling translate provider: %w", err)
	}
	defer resp.Body.Close()

	var out providerResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding translate response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate provider returned %d: %s", resp.StatusCode, out.Error)
	}
	if out.TranslatedText == "" {
		return "", fmt.Errorf("translate provider returned empty text")
	}
	return out.TranslatedText, nil
}
