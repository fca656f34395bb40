// Package fetcher retrieves a URL and reduces its HTML body to plain text.
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"docchat/internal/core/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

type Client struct {
	httpClient *http.Client
}

func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads url and returns its visible text with all whitespace runs
// collapsed to single spaces. Script and style subtrees carry no prose and
// are skipped entirely.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "create fetch request", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.WrapError(domain.ErrUpstream, "fetch url", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", domain.WrapError(domain.ErrUpstream, "fetch url", fmt.Errorf("unexpected status: %s", resp.Status))
	}

	root, err := html.Parse(resp.Body)
	if err != nil {
		return "", domain.WrapError(domain.ErrUpstream, "parse html", err)
	}

	text := normalizeWhitespace(extractText(root))
	if text == "" {
		return "", domain.WrapError(domain.ErrEmptyDocument, "extract text", fmt.Errorf("url %s", url))
	}
	return text, nil
}

func extractText(root *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return sb.String()
}

func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
