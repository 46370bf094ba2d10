package v1

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/topicinsights/topicinsights/internal/profile"
	"github.com/topicinsights/topicinsights/plugin/ai"
	"github.com/topicinsights/topicinsights/plugin/ai/agent"
	"github.com/topicinsights/topicinsights/store"
)

// APIV1Service translates REST requests into store and agent operations.
type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store

	// Agent and Embedder are nil when AI is not configured; the routes
	// that need them answer 503.
	Agent    agent.Agent
	Embedder ai.EmbeddingService
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store) *APIV1Service {
	service := &APIV1Service{
		Profile: profile,
		Store:   store,
	}

	if profile.IsAIEnabled() {
		cfg := ai.NewConfigFromProfile(profile)
		if err := cfg.Validate(); err != nil {
			slog.Warn("AI configuration invalid, AI routes disabled", "error", err)
			return service
		}
		embedder, err := ai.NewEmbeddingService(&cfg.Embedding)
		if err != nil {
			slog.Warn("failed to create embedding service", "error", err)
			return service
		}
		llmAgent, err := agent.NewOpenAIAgent(&cfg.LLM)
		if err != nil {
			slog.Warn("failed to create agent", "error", err)
			return service
		}
		service.Embedder = embedder
		service.Agent = llmAgent
	}

	return service
}

// RegisterRoutes registers all API v1 routes with the Echo instance.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")

	g.GET("/health", s.GetHealth)

	g.POST("/topics", s.CreateTopic)
	g.GET("/topics", s.ListTopics)
	g.GET("/topics/:uid", s.GetTopic)
	g.PATCH("/topics/:uid", s.UpdateTopic)
	g.DELETE("/topics/:uid", s.DeleteTopic)

	g.POST("/topics/:uid/summaries", s.CreateSummary)
	g.POST("/topics/:uid/summaries/batch", s.BatchCreateSummaries)
	g.GET("/topics/:uid/summaries", s.ListTopicSummaries)
	g.GET("/topics/:uid/digest", s.GetTopicDigest)
	g.GET("/topics/:uid/feed", s.GetTopicFeed)

	g.POST("/topics/:uid/embeddings", s.StoreEmbedding)
	g.POST("/topics/:uid/analyze", s.AnalyzeTopic)
	g.POST("/search/similar", s.SearchSimilar)
	g.POST("/summarize", s.SummarizeContent)
}

const ownerHeader = "X-Owner-ID"

// ownerID extracts the caller identity. Authentication itself is handled
// upstream; the service only threads the owner reference through.
func ownerID(c echo.Context) (uuid.UUID, error) {
	raw := c.Request().Header.Get(ownerHeader)
	if raw == "" {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "missing "+ownerHeader+" header")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "malformed "+ownerHeader+" header")
	}
	return id, nil
}

// ownedTopic resolves the :uid path parameter to a topic owned by the
// caller. Topics of other owners surface as not found.
func (s *APIV1Service) ownedTopic(c echo.Context) (*store.Topic, error) {
	owner, err := ownerID(c)
	if err != nil {
		return nil, err
	}
	return s.Store.GetTopicByUID(c.Request().Context(), c.Param("uid"), owner)
}

// storeErrorResponse maps the store's typed errors onto HTTP statuses.
// Echo HTTP errors pass through untouched.
func storeErrorResponse(c echo.Context, err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	switch {
	case store.IsCode(err, store.ErrCodeNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case store.IsCode(err, store.ErrCodeDimensionMismatch),
		store.IsCode(err, store.ErrCodeConstraintViolation):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case store.IsCode(err, store.ErrCodeConnectionFailed):
		slog.Error("store unavailable", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "store unavailable"})
	default:
		slog.Error("internal error", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
