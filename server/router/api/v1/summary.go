package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/topicinsights/topicinsights/store"
)

type summaryResponse struct {
	ID          string         `json:"id"`
	TopicID     string         `json:"topic_id"`
	Content     string         `json:"content"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"created_at"`
	SourceURL   *string        `json:"source_url,omitempty"`
	SourceType  *string        `json:"source_type,omitempty"`
	Sentiment   *string        `json:"sentiment,omitempty"`
	KeyConcepts []string       `json:"key_concepts,omitempty"`
}

func convertSummary(summary *store.Summary) *summaryResponse {
	return &summaryResponse{
		ID:          summary.ID.String(),
		TopicID:     summary.TopicID.String(),
		Content:     summary.Content,
		Metadata:    summary.Metadata,
		CreatedAt:   summary.CreatedAt,
		SourceURL:   summary.SourceURL,
		SourceType:  summary.SourceType,
		Sentiment:   summary.Sentiment,
		KeyConcepts: summary.KeyConcepts,
	}
}

type createSummaryRequest struct {
	Content     string         `json:"content"`
	Metadata    map[string]any `json:"metadata"`
	SourceURL   *string        `json:"source_url"`
	SourceType  *string        `json:"source_type"`
	Sentiment   *string        `json:"sentiment"`
	KeyConcepts []string       `json:"key_concepts"`
}

func (r *createSummaryRequest) toStore(topic *store.Topic) *store.Summary {
	return &store.Summary{
		TopicID:     topic.ID,
		Content:     r.Content,
		Metadata:    r.Metadata,
		SourceURL:   r.SourceURL,
		SourceType:  r.SourceType,
		Sentiment:   r.Sentiment,
		KeyConcepts: r.KeyConcepts,
	}
}

// CreateSummary appends a summary to a topic.
// POST /api/v1/topics/:uid/summaries
func (s *APIV1Service) CreateSummary(c echo.Context) error {
	topic, err := s.ownedTopic(c)
	if err != nil {
		return storeErrorResponse(c, err)
	}

	req := &createSummaryRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}

	summary, err := s.Store.CreateSummary(c.Request().Context(), req.toStore(topic))
	if err != nil {
		return storeErrorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, convertSummary(summary))
}

type batchCreateSummariesRequest struct {
	Summaries []*createSummaryRequest `json:"summaries"`
}

// BatchCreateSummaries inserts several summaries in one transaction.
// The batch either fully commits or fails as a whole.
// POST /api/v1/topics/:uid/summaries/batch
func (s *APIV1Service) BatchCreateSummaries(c echo.Context) error {
	topic, err := s.ownedTopic(c)
	if err != nil {
		return storeErrorResponse(c, err)
	}

	req := &batchCreateSummariesRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}

	creates := make([]*store.Summary, len(req.Summaries))
	for i, item := range req.Summaries {
		creates[i] = item.toStore(topic)
	}

	summaries, err := s.Store.BatchCreateSummaries(c.Request().Context(), creates)
	if err != nil {
		return storeErrorResponse(c, err)
	}

	responses := make([]*summaryResponse, len(summaries))
	for i, summary := range summaries {
		responses[i] = convertSummary(summary)
	}
	return c.JSON(http.StatusCreated, responses)
}

// ListTopicSummaries returns a topic's summaries newest first, optionally
// bounded by an inclusive RFC 3339 date range.
// GET /api/v1/topics/:uid/summaries?start=...&end=...&limit=...
func (s *APIV1Service) ListTopicSummaries(c echo.Context) error {
	topic, err := s.ownedTopic(c)
	if err != nil {
		return storeErrorResponse(c, err)
	}

	var start, end *time.Time
	if raw := c.QueryParam("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed start date"})
		}
		start = &t
	}
	if raw := c.QueryParam("end"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed end date"})
		}
		end = &t
	}
	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed limit"})
		}
	}

	summaries, err := s.Store.GetTopicSummaries(c.Request().Context(), topic.ID, start, end, limit)
	if err != nil {
		return storeErrorResponse(c, err)
	}

	responses := make([]*summaryResponse, len(summaries))
	for i, summary := range summaries {
		responses[i] = convertSummary(summary)
	}
	return c.JSON(http.StatusOK, responses)
}

// GetTopicDigest aggregates the topic's summaries over a trailing window.
// GET /api/v1/topics/:uid/digest?days_back=7
func (s *APIV1Service) GetTopicDigest(c echo.Context) error {
	topic, err := s.ownedTopic(c)
	if err != nil {
		return storeErrorResponse(c, err)
	}

	daysBack := 7
	if raw := c.QueryParam("days_back"); raw != "" {
		if err := echo.QueryParamsBinder(c).Int("days_back", &daysBack).BindError(); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed days_back"})
		}
	}

	digest, err := s.Store.AggregateTopicSummary(c.Request().Context(), topic.ID, daysBack)
	if err != nil {
		return storeErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, digest)
}
