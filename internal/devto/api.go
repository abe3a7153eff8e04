package devto

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// PublishedArticlesPath lists the authenticated user's published articles
const PublishedArticlesPath = "/articles/me/published"

// Article is a published dev.to article. Only Slug and BodyMarkdown drive the export.
type Article struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Slug         string   `json:"slug"`
	BodyMarkdown string   `json:"body_markdown"`
	URL          string   `json:"url,omitempty"`
	PublishedAt  string   `json:"published_at,omitempty"`
	TagList      []string `json:"tag_list,omitempty"`
}

// PublishedArticlesJSON returns the published-articles payload exactly as the API sent it.
// Only the first page the API returns is fetched.
func (c *Client) PublishedArticlesJSON(ctx context.Context) ([]byte, error) {
	resp, err := c.Do(ctx, http.MethodGet, PublishedArticlesPath, nil)
	if err != nil {
		return nil, err
	}

	if !resp.OK() {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	return resp.Body, nil
}

// PublishedArticles retrieves and decodes the published articles
func (c *Client) PublishedArticles(ctx context.Context) ([]Article, error) {
	body, err := c.PublishedArticlesJSON(ctx)
	if err != nil {
		return nil, err
	}

	if err := ValidateArticleList(body); err != nil {
		return nil, err
	}

	var articles []Article
	if err := json.Unmarshal(body, &articles); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return articles, nil
}
