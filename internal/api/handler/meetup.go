package handler

import (
	"errors"
	"math"
	"net/http"

	"meetgo/backend/internal/meetup"
	"meetgo/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// respondMeetupError maps the manager's error taxonomy onto HTTP statuses.
func respondMeetupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, meetup.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, meetup.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, meetup.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, meetup.ErrSessionClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// RequestMeetup starts (or joins) a meetup session with the addressee.
// POST /api/meetups/request
func (h *Handler) RequestMeetup(c *gin.Context) {
	var body struct {
		AddresseeID string `json:"addressee_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "addressee_id is required"})
		return
	}

	requesterID := c.GetString("user_id")
	session, err := h.Manager.Request(requesterID, body.AddresseeID)
	if err != nil {
		respondMeetupError(c, err)
		return
	}

	status := http.StatusCreated
	if session.RequesterID != requesterID {
		// Joined a session the other party had already opened.
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"session_id": session.ID})
}

// ConfirmMeetup records the caller's confirmation and location.
// POST /api/meetups/confirm/:sessionId
func (h *Handler) ConfirmMeetup(c *gin.Context) {
	var body struct {
		Latitude  *float64 `json:"latitude" binding:"required"`
		Longitude *float64 `json:"longitude" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude are required"})
		return
	}
	if *body.Latitude < -90 || *body.Latitude > 90 || *body.Longitude < -180 || *body.Longitude > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude or longitude out of range"})
		return
	}

	result, err := h.Manager.Confirm(
		c.Param("sessionId"),
		c.GetString("user_id"),
		models.Location{Latitude: *body.Latitude, Longitude: *body.Longitude},
	)
	if err != nil {
		respondMeetupError(c, err)
		return
	}

	resp := gin.H{"final_status": result.Status}
	if result.DistanceFeet != nil {
		resp["distance_feet"] = math.Round(*result.DistanceFeet*100) / 100
		resp["proximity_success"] = result.Status == models.StatusCompleted
	}
	c.JSON(http.StatusOK, resp)
}

// DenyMeetup declines a pending session.
// PUT /api/meetups/deny/:sessionId
func (h *Handler) DenyMeetup(c *gin.Context) {
	if err := h.Manager.Deny(c.Param("sessionId"), c.GetString("user_id")); err != nil {
		respondMeetupError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request denied."})
}

// EndMeetup terminates a pending or completed session.
// POST /api/meetups/end/:sessionId
func (h *Handler) EndMeetup(c *gin.Context) {
	if err := h.Manager.End(c.Param("sessionId"), c.GetString("user_id")); err != nil {
		respondMeetupError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session ended successfully."})
}

// MeetupStatus returns the full session snapshot for a participant.
// GET /api/meetups/status/:sessionId
func (h *Handler) MeetupStatus(c *gin.Context) {
	snapshot, err := h.Manager.Status(c.Param("sessionId"), c.GetString("user_id"))
	if err != nil {
		respondMeetupError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// PendingMeetups lists the caller's incoming meetup requests.
// GET /api/meetups/pending
func (h *Handler) PendingMeetups(c *gin.Context) {
	requests, err := h.Manager.PendingFor(c.GetString("user_id"))
	if err != nil {
		respondMeetupError(c, err)
		return
	}
	if requests == nil {
		requests = []models.PendingRequest{}
	}
	c.JSON(http.StatusOK, requests)
}
