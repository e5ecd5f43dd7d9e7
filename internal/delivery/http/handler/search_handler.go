package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kidsactivitytracker/backend/internal/domain"
	"github.com/kidsactivitytracker/backend/internal/merge"
	"github.com/kidsactivitytracker/backend/internal/usecase/search"
)

type SearchHandler struct {
	searchUseCase *search.SearchUseCase
}

func NewSearchHandler(searchUseCase *search.SearchUseCase) *SearchHandler {
	return &SearchHandler{
		searchUseCase: searchUseCase,
	}
}

// SearchActivities handles GET /search/activities
// @Summary Search the activity catalog for selected children
// @Description mode=any finds activities that fit at least one child,
// @Description mode=all finds activities that fit every child together.
// @Tags search
// @Security BearerAuth
// @Produce json
// @Param mode query string true "any or all"
// @Param child_ids query string false "comma-separated child ids; all children when omitted"
// @Success 200 {object} search.SearchResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /search/activities [get]
func (h *SearchHandler) SearchActivities(c *gin.Context) {
	gid, ok := guardianID(c)
	if !ok {
		return
	}

	mode, ok := parseMode(c.DefaultQuery("mode", string(merge.ModeAny)))
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "mode must be any or all"})
		return
	}

	childIDs, err := parseChildIDs(c.Query("child_ids"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid child_ids"})
		return
	}

	resp, err := h.searchUseCase.Search(c.Request.Context(), &search.SearchRequest{
		GuardianID: gid,
		ChildIDs:   childIDs,
		Mode:       mode,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrChildNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "child profile not found"})
		case errors.Is(err, domain.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "child profile belongs to another guardian"})
		case errors.Is(err, domain.ErrCatalogUnreachable):
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: "activity catalog unreachable"})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "search failed"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

func parseMode(raw string) (merge.Mode, bool) {
	switch merge.Mode(raw) {
	case merge.ModeAny:
		return merge.ModeAny, true
	case merge.ModeAll:
		return merge.ModeAll, true
	}
	return "", false
}

func parseChildIDs(raw string) ([]uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
