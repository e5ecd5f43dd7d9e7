package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kidsactivitytracker/backend/internal/domain"
	"github.com/kidsactivitytracker/backend/internal/usecase/children"
)

type ChildrenHandler struct {
	childrenUseCase *children.ChildrenUseCase
}

func NewChildrenHandler(childrenUseCase *children.ChildrenUseCase) *ChildrenHandler {
	return &ChildrenHandler{
		childrenUseCase: childrenUseCase,
	}
}

func guardianID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("guardian_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return uuid.Nil, false
	}
	return v.(uuid.UUID), true
}

func childID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("child_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid child id"})
		return uuid.Nil, false
	}
	return id, true
}

// CreateChild handles POST /children
// @Summary Create a child profile
// @Tags children
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body children.CreateChildRequest true "Child profile"
// @Success 201 {object} domain.ChildProfile
// @Failure 400 {object} ErrorResponse
// @Router /children [post]
func (h *ChildrenHandler) CreateChild(c *gin.Context) {
	gid, ok := guardianID(c)
	if !ok {
		return
	}

	var req children.CreateChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	child, err := h.childrenUseCase.Create(c.Request.Context(), gid, &req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to create child profile"})
		return
	}

	c.JSON(http.StatusCreated, child)
}

// ListChildren handles GET /children
// @Summary List my children
// @Tags children
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.ChildProfile
// @Router /children [get]
func (h *ChildrenHandler) ListChildren(c *gin.Context) {
	gid, ok := guardianID(c)
	if !ok {
		return
	}

	list, err := h.childrenUseCase.List(c.Request.Context(), gid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list child profiles"})
		return
	}
	if list == nil {
		list = []*domain.ChildProfile{}
	}

	c.JSON(http.StatusOK, list)
}

// GetChild handles GET /children/:child_id
// @Summary Get a child profile
// @Tags children
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.ChildProfile
// @Failure 404 {object} ErrorResponse
// @Router /children/{child_id} [get]
func (h *ChildrenHandler) GetChild(c *gin.Context) {
	gid, ok := guardianID(c)
	if !ok {
		return
	}
	cid, ok := childID(c)
	if !ok {
		return
	}

	child, err := h.childrenUseCase.Get(c.Request.Context(), gid, cid)
	if err != nil {
		h.writeChildError(c, err)
		return
	}

	c.JSON(http.StatusOK, child)
}

// UpdateChild handles PUT /children/:child_id
// @Summary Update a child profile
// @Tags children
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body children.UpdateChildRequest true "Fields to update"
// @Success 200 {object} domain.ChildProfile
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /children/{child_id} [put]
func (h *ChildrenHandler) UpdateChild(c *gin.Context) {
	gid, ok := guardianID(c)
	if !ok {
		return
	}
	cid, ok := childID(c)
	if !ok {
		return
	}

	var req children.UpdateChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	child, err := h.childrenUseCase.Update(c.Request.Context(), gid, cid, &req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		h.writeChildError(c, err)
		return
	}

	c.JSON(http.StatusOK, child)
}

// DeleteChild handles DELETE /children/:child_id
// @Summary Delete a child profile
// @Tags children
// @Security BearerAuth
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /children/{child_id} [delete]
func (h *ChildrenHandler) DeleteChild(c *gin.Context) {
	gid, ok := guardianID(c)
	if !ok {
		return
	}
	cid, ok := childID(c)
	if !ok {
		return
	}

	if err := h.childrenUseCase.Delete(c.Request.Context(), gid, cid); err != nil {
		h.writeChildError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ChildrenHandler) writeChildError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrChildNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "child profile not found"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "child profile belongs to another guardian"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
