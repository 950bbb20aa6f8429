package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gocampus/internal/ticket"
)

// CreateTicket opens a help-desk ticket from the public verification page.
func (h *Handler) CreateTicket(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		USN   string `json:"usn" binding:"required"`
		Email string `json:"email" binding:"required,email"`
		Issue string `json:"issue" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.tickets.Create(c.Request.Context(), ticket.Ticket{
		Name: req.Name, USN: req.USN, Email: req.Email, Issue: req.Issue,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, t)
}

// ListTickets prunes stale resolved tickets and returns the rest.
func (h *Handler) ListTickets(c *gin.Context) {
	tickets, err := h.tickets.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

// ResolveTicket stamps a ticket resolved.
func (h *Handler) ResolveTicket(c *gin.Context) {
	if err := h.tickets.Resolve(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, ticket.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"resolved": c.Param("id")})
}
