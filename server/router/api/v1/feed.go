package v1

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"
	"github.com/yuin/goldmark"

	"github.com/topicinsights/topicinsights/store"
)

const feedItemLimit = 20

// GetTopicFeed renders a topic's recent summaries as an RSS feed.
// Summary content is treated as markdown and rendered to HTML.
// GET /api/v1/topics/:uid/feed
func (s *APIV1Service) GetTopicFeed(c echo.Context) error {
	ctx := c.Request().Context()
	topic, err := s.ownedTopic(c)
	if err != nil {
		return storeErrorResponse(c, err)
	}

	summaries, err := s.Store.GetTopicSummaries(ctx, topic.ID, nil, nil, feedItemLimit)
	if err != nil {
		return storeErrorResponse(c, err)
	}

	baseURL := fmt.Sprintf("%s://%s", c.Scheme(), c.Request().Host)
	description := topic.Name
	if topic.Description != nil && *topic.Description != "" {
		description = *topic.Description
	}
	feed := &feeds.Feed{
		Title:       topic.Name,
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/api/v1/topics/%s", baseURL, topic.UID)},
		Description: description,
		Created:     topic.CreatedAt,
		Updated:     topic.UpdatedAt,
	}

	feed.Items = make([]*feeds.Item, 0, len(summaries))
	for _, summary := range summaries {
		feed.Items = append(feed.Items, summaryFeedItem(baseURL, topic, summary))
	}

	rss, err := feed.ToRss()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to render feed"})
	}
	return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}

func summaryFeedItem(baseURL string, topic *store.Topic, summary *store.Summary) *feeds.Item {
	item := &feeds.Item{
		Title:       fmt.Sprintf("%s: %s", topic.Name, summary.CreatedAt.Format(time.DateOnly)),
		Id:          summary.ID.String(),
		Description: renderMarkdown(summary.Content),
		Created:     summary.CreatedAt,
	}
	if summary.SourceURL != nil && *summary.SourceURL != "" {
		item.Link = &feeds.Link{Href: *summary.SourceURL}
	} else {
		item.Link = &feeds.Link{Href: fmt.Sprintf("%s/api/v1/topics/%s/summaries", baseURL, topic.UID)}
	}
	return item
}

// renderMarkdown converts markdown to HTML, falling back to the raw text
// when conversion fails.
func renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(content), &buf); err != nil {
		return content
	}
	return buf.String()
}
