package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/topicinsights/topicinsights/plugin/filter"
	"github.com/topicinsights/topicinsights/store"
)

type topicResponse struct {
	ID          string         `json:"id"`
	UID         string         `json:"uid"`
	Name        string         `json:"name"`
	Description *string        `json:"description,omitempty"`
	Keywords    []string       `json:"keywords"`
	OwnerID     string         `json:"owner_id"`
	IsActive    bool           `json:"is_active"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func convertTopic(topic *store.Topic) *topicResponse {
	return &topicResponse{
		ID:          topic.ID.String(),
		UID:         topic.UID,
		Name:        topic.Name,
		Description: topic.Description,
		Keywords:    topic.Keywords,
		OwnerID:     topic.OwnerID.String(),
		IsActive:    topic.IsActive,
		Metadata:    topic.Metadata,
		CreatedAt:   topic.CreatedAt,
		UpdatedAt:   topic.UpdatedAt,
	}
}

type createTopicRequest struct {
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	Keywords    []string       `json:"keywords"`
	Metadata    map[string]any `json:"metadata"`
}

// CreateTopic creates a new topic.
// POST /api/v1/topics
func (s *APIV1Service) CreateTopic(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}

	req := &createTopicRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}

	topic, err := s.Store.CreateTopic(c.Request().Context(), &store.Topic{
		Name:        req.Name,
		Description: req.Description,
		Keywords:    req.Keywords,
		OwnerID:     owner,
		IsActive:    true,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return storeErrorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, convertTopic(topic))
}

// GetTopic returns a topic by its uid.
// GET /api/v1/topics/:uid
func (s *APIV1Service) GetTopic(c echo.Context) error {
	topic, err := s.ownedTopic(c)
	if err != nil {
		return storeErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, convertTopic(topic))
}

// ListTopics lists the caller's topics, optionally narrowed by a name
// search and a CEL filter expression.
// GET /api/v1/topics?q=...&filter=...&limit=...
func (s *APIV1Service) ListTopics(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}

	find := &store.FindTopic{OwnerID: &owner}
	if q := c.QueryParam("q"); q != "" {
		find.NameSearch = &q
	}
	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed limit"})
		}
	}
	find.Limit = &limit

	topics, err := s.Store.ListTopics(c.Request().Context(), find)
	if err != nil {
		return storeErrorResponse(c, err)
	}

	if expression := c.QueryParam("filter"); expression != "" {
		topicFilter, err := filter.New(expression)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		if topics, err = topicFilter.Apply(topics); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
	}

	responses := make([]*topicResponse, len(topics))
	for i, topic := range topics {
		responses[i] = convertTopic(topic)
	}
	return c.JSON(http.StatusOK, responses)
}

type updateTopicRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Keywords    []string       `json:"keywords"`
	IsActive    *bool          `json:"is_active"`
	Metadata    map[string]any `json:"metadata"`
}

// UpdateTopic applies a partial update to a topic.
// PATCH /api/v1/topics/:uid
func (s *APIV1Service) UpdateTopic(c echo.Context) error {
	topic, err := s.ownedTopic(c)
	if err != nil {
		return storeErrorResponse(c, err)
	}

	req := &updateTopicRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}

	updated, err := s.Store.UpdateTopic(c.Request().Context(), &store.UpdateTopic{
		ID:          topic.ID,
		Name:        req.Name,
		Description: req.Description,
		Keywords:    req.Keywords,
		IsActive:    req.IsActive,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return storeErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, convertTopic(updated))
}

// DeleteTopic removes a topic and all its summaries and embeddings.
// DELETE /api/v1/topics/:uid
func (s *APIV1Service) DeleteTopic(c echo.Context) error {
	topic, err := s.ownedTopic(c)
	if err != nil {
		return storeErrorResponse(c, err)
	}
	if err := s.Store.DeleteTopic(c.Request().Context(), topic.ID); err != nil {
		return storeErrorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
