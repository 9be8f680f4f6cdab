package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumabill/biller/internal/app/api/middleware"
	"github.com/lumabill/biller/internal/app/service/notification"
	"github.com/lumabill/biller/pkg/response"
)

// @Summary      List notifications
// @Description  Returns the caller's lifecycle notifications, newest first.
// @Tags         Notification
// @Produce      json
// @Param        unread query bool false "Only unread notifications"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/notifications [get]
func ApiListNotifications(svc *notification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		unreadOnly := c.Query("unread") == "true"
		items, err := svc.ListForUser(c.Request.Context(), middleware.CallerID(c), unreadOnly)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, "failed to list notifications"))
			return
		}
		c.JSON(http.StatusOK, response.OKT(items))
	}
}

// @Summary      Mark notification read
// @Tags         Notification
// @Produce      json
// @Param        id path string true "Notification ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/notifications/{id}/read [post]
func ApiMarkNotificationRead(svc *notification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := svc.MarkRead(c.Request.Context(), middleware.CallerID(c), c.Param("id"))
		if err != nil {
			if errors.Is(err, notification.ErrNotificationNotFound) {
				c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, "failed to mark notification read"))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterNotificationRoutes(r gin.IRouter, svc *notification.Service) {
	r.GET("/notifications", ApiListNotifications(svc))
	r.POST("/notifications/:id/read", ApiMarkNotificationRead(svc))
}
