// Package hibp checks passwords against the Have I Been Pwned range API
// using k-anonymity: only the first five hex characters of the SHA-1 leave
// the process.
package hibp

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const prefixLen = 5

type Client struct {
	http *resty.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}

	rc := resty.NewWithClient(httpClient).
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("User-Agent", "social-hub-backend").
		// Padding скрывает реальный размер ответа
		SetHeader("Add-Padding", "true").
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return resp.StatusCode() >= http.StatusInternalServerError || resp.StatusCode() == http.StatusTooManyRequests
		})

	c := &Client{http: rc}
	return c.WithRetry(2, 100*time.Millisecond)
}

// WithRetry задает число повторов и начальную паузу между ними.
func (c *Client) WithRetry(retries int, wait time.Duration) *Client {
	c.http.SetRetryCount(retries).
		SetRetryWaitTime(wait).
		SetRetryMaxWaitTime(10 * wait)
	return c
}

// HashParts returns the upper-case SHA-1 prefix and suffix of password.
func HashParts(password string) (prefix, suffix string) {
	sum := sha1.Sum([]byte(password))
	h := strings.ToUpper(hex.EncodeToString(sum[:]))
	return h[:prefixLen], h[prefixLen:]
}

// BreachCount returns how many times password appears in known breaches.
func (c *Client) BreachCount(ctx context.Context, password string) (int, error) {
	prefix, suffix := HashParts(password)

	resp, err := c.http.R().
		SetContext(ctx).
		Get("/range/" + prefix)
	if err != nil {
		return 0, fmt.Errorf("hibp request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return 0, fmt.Errorf("hibp status %d", resp.StatusCode())
	}

	return countSuffix(resp.Body(), suffix)
}

// countSuffix ищет suffix в ответе вида "SUFFIX:COUNT" построчно
func countSuffix(body []byte, suffix string) (int, error) {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		hashSuffix, n, ok := strings.Cut(strings.TrimSpace(scanner.Text()), ":")
		if !ok || !strings.EqualFold(hashSuffix, suffix) {
			continue
		}
		count, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("hibp count %q: %w", n, err)
		}
		return count, nil
	}
	return 0, scanner.Err()
}
