// internal/interfaces/http/handlers/newsletter.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/fashion-store/internal/domain/contact"
	"github.com/your-org/fashion-store/internal/domain/newsletter"
)

// EngagementHandler handles the newsletter signup and contact form, and their
// admin views
type EngagementHandler struct {
	newsletterService *newsletter.Service
	contactService    *contact.Service
}

// NewEngagementHandler creates a new engagement handler
func NewEngagementHandler(newsletterService *newsletter.Service, contactService *contact.Service) *EngagementHandler {
	return &EngagementHandler{
		newsletterService: newsletterService,
		contactService:    contactService,
	}
}

// Subscribe handles POST /newsletter/subscribe
func (h *EngagementHandler) Subscribe(c *gin.Context) {
	var req newsletter.SubscribeRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	subscription, err := h.newsletterService.Subscribe(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Subscribed successfully",
		"data":    subscription,
	})
}

// Unsubscribe handles POST /newsletter/unsubscribe
func (h *EngagementHandler) Unsubscribe(c *gin.Context) {
	var req newsletter.SubscribeRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.newsletterService.Unsubscribe(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Unsubscribed successfully",
	})
}

// SubmitContact handles POST /contact
func (h *EngagementHandler) SubmitContact(c *gin.Context) {
	var req contact.SubmitRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	msg, err := h.contactService.Submit(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Thank you for your message. We will get back to you soon.",
		"data":    gin.H{"id": msg.ID},
	})
}

// Admin endpoints

// AdminGetSubscriptions handles GET /admin/newsletter
func (h *EngagementHandler) AdminGetSubscriptions(c *gin.Context) {
	var req newsletter.SubscriptionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	response, err := h.newsletterService.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Subscriptions retrieved successfully",
		"data":    response,
	})
}

// AdminGetMessages handles GET /admin/contact-messages
func (h *EngagementHandler) AdminGetMessages(c *gin.Context) {
	var req contact.MessageListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	response, err := h.contactService.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Messages retrieved successfully",
		"data":    response,
	})
}

// AdminMarkMessage handles PATCH /admin/contact-messages/:id
func (h *EngagementHandler) AdminMarkMessage(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "message")
	if !ok {
		return
	}

	var req contact.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.contactService.MarkRead(c.Request.Context(), id, req.IsRead); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Message updated successfully",
		"data":    gin.H{"id": id, "is_read": req.IsRead},
	})
}
