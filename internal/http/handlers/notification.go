package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/apns-backend/internal/http/response"
	"github.com/yungbote/apns-backend/internal/services"
)

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (nh *NotificationHandler) List(c *gin.Context) {
	views, err := nh.notificationService.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err, "Unable to fetch notifications")
		return
	}
	response.RespondOK(c, views)
}

func (nh *NotificationHandler) Create(c *gin.Context) {
	var req services.CreateNotificationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	notification, err := nh.notificationService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err, "Unable to create notification")
		return
	}
	response.RespondCreated(c, notification)
}
