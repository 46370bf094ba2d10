package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/topicinsights/topicinsights/store"
)

type storeEmbeddingRequest struct {
	// Exactly one of Vector and Text must be set; Text is embedded
	// server-side before storage.
	Vector   []float32      `json:"vector"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

type embeddingResponse struct {
	ID        string    `json:"id"`
	TopicID   string    `json:"topic_id"`
	CreatedAt time.Time `json:"created_at"`
}

// StoreEmbedding persists a vector for a topic.
// POST /api/v1/topics/:uid/embeddings
func (s *APIV1Service) StoreEmbedding(c echo.Context) error {
	topic, err := s.ownedTopic(c)
	if err != nil {
		return storeErrorResponse(c, err)
	}

	req := &storeEmbeddingRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}

	vector, err := s.resolveVector(c, req.Vector, req.Text)
	if err != nil {
		return err
	}

	embedding, err := s.Store.StoreEmbedding(c.Request().Context(), topic.ID, vector, req.Metadata)
	if err != nil {
		return storeErrorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, &embeddingResponse{
		ID:        embedding.ID.String(),
		TopicID:   embedding.TopicID.String(),
		CreatedAt: embedding.CreatedAt,
	})
}

type searchSimilarRequest struct {
	Vector    []float32 `json:"vector"`
	Text      string    `json:"text"`
	Threshold float32   `json:"threshold"`
	Limit     int       `json:"limit"`
}

// SearchSimilar ranks topics by cosine similarity against the query.
// POST /api/v1/search/similar
func (s *APIV1Service) SearchSimilar(c echo.Context) error {
	req := &searchSimilarRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}

	vector, err := s.resolveVector(c, req.Vector, req.Text)
	if err != nil {
		return err
	}

	results, err := s.Store.SearchSimilar(c.Request().Context(), &store.SearchSimilarOptions{
		Vector:    vector,
		Threshold: req.Threshold,
		Limit:     req.Limit,
	})
	if err != nil {
		return storeErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, results)
}

// AnalyzeTopic runs the agent over a topic and records the analysis as a
// new summary, with extracted entities as key concepts and generated
// follow-up questions in the summary metadata.
// POST /api/v1/topics/:uid/analyze
func (s *APIV1Service) AnalyzeTopic(c echo.Context) error {
	if s.Agent == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "AI is not configured"})
	}

	ctx := c.Request().Context()
	topic, err := s.ownedTopic(c)
	if err != nil {
		return storeErrorResponse(c, err)
	}

	extra := map[string]any{"keywords": topic.Keywords}
	if topic.Description != nil {
		extra["description"] = *topic.Description
	}
	analysis, err := s.Agent.AnalyzeTopic(ctx, topic.Name, extra)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	entities, err := s.Agent.ExtractEntities(ctx, analysis.Analysis)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	keyConcepts := make([]string, 0, len(entities))
	for _, entity := range entities {
		keyConcepts = append(keyConcepts, entity.Entity)
	}

	questions, err := s.Agent.GenerateQuestions(ctx, analysis.Analysis, 3)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	sourceType := "agent"
	summary, err := s.Store.CreateSummary(ctx, &store.Summary{
		TopicID: topic.ID,
		Content: analysis.Analysis,
		Metadata: map[string]any{
			"model":       analysis.Model,
			"tokens_used": analysis.TokensUsed,
			"questions":   questions,
		},
		SourceType:  &sourceType,
		KeyConcepts: keyConcepts,
	})
	if err != nil {
		return storeErrorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, convertSummary(summary))
}

type summarizeRequest struct {
	Content   string `json:"content"`
	MaxLength int    `json:"max_length"`
}

// SummarizeContent summarizes arbitrary content without storing it.
// POST /api/v1/summarize
func (s *APIV1Service) SummarizeContent(c echo.Context) error {
	if s.Agent == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "AI is not configured"})
	}

	req := &summarizeRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "content must not be empty"})
	}

	summary, err := s.Agent.SummarizeContent(c.Request().Context(), req.Content, req.MaxLength)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"summary": summary})
}

// resolveVector returns the query vector, embedding the text when a raw
// vector was not supplied. Failures surface as echo HTTP errors.
func (s *APIV1Service) resolveVector(c echo.Context, vector []float32, text string) ([]float32, error) {
	if len(vector) > 0 {
		return vector, nil
	}
	if text == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "either vector or text is required")
	}
	if s.Embedder == nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "AI is not configured")
	}
	embedded, err := s.Embedder.Embed(c.Request().Context(), text)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return embedded, nil
}
