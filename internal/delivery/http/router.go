package http

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/kidsactivitytracker/backend/internal/delivery/http/handler"
	"github.com/kidsactivitytracker/backend/internal/delivery/http/middleware"
	"github.com/kidsactivitytracker/backend/internal/domain"
)

type Router struct {
	childrenHandler *handler.ChildrenHandler
	searchHandler   *handler.SearchHandler
	authMiddleware  *middleware.AuthMiddleware
}

func NewRouter(
	childrenHandler *handler.ChildrenHandler,
	searchHandler *handler.SearchHandler,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		childrenHandler: childrenHandler,
		searchHandler:   searchHandler,
		authMiddleware:  authMiddleware,
	}
}

func (r *Router) Setup() *gin.Engine {
	registerValidators()

	router := gin.Default()

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	// API v1
	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(r.authMiddleware.RequireAuth())
		{
			// Child profile routes
			childrenGroup := protected.Group("/children")
			{
				childrenGroup.POST("", r.childrenHandler.CreateChild)
				childrenGroup.GET("", r.childrenHandler.ListChildren)
				childrenGroup.GET("/:child_id", r.childrenHandler.GetChild)
				childrenGroup.PUT("/:child_id", r.childrenHandler.UpdateChild)
				childrenGroup.DELETE("/:child_id", r.childrenHandler.DeleteChild)
			}

			// Catalog search routes
			searchGroup := protected.Group("/search")
			{
				searchGroup.GET("/activities", r.searchHandler.SearchActivities)
			}
		}
	}

	return router
}

// registerValidators adds the weekday tag to gin's binding validator so
// request day-sets are rejected before they reach a use case.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		return domain.WeekdayOrder(domain.Weekday(fl.Field().String())) >= 0
	})
}
