// Package handler wires the HTTP surface: the public verification endpoint
// used by boarding-point scanners and the JWT-protected admin API.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gocampus/internal/auth"
	"gocampus/internal/blob"
	"gocampus/internal/config"
	"gocampus/internal/metrics"
	"gocampus/internal/qr"
	"gocampus/internal/queue"
	"gocampus/internal/scan"
	"gocampus/internal/student"
	"gocampus/internal/ticket"
)

type Handler struct {
	cfg      config.App
	creds    *auth.Credentials
	students *student.Repository
	svc      *student.Service
	scans    *scan.Service
	encoder  *qr.Encoder
	blobs    blob.Store
	tickets  *ticket.Repository
	queue    queue.Queue
}

func New(cfg config.App, creds *auth.Credentials, students *student.Repository,
	svc *student.Service, scans *scan.Service, encoder *qr.Encoder,
	blobs blob.Store, tickets *ticket.Repository, q queue.Queue) *Handler {
	return &Handler{
		cfg: cfg, creds: creds, students: students, svc: svc, scans: scans,
		encoder: encoder, blobs: blobs, tickets: tickets, queue: q,
	}
}

// Routes registers everything on the router. The verify endpoint stays
// outside the admin group: scanners authenticate by network placement, not
// by credential.
func (h *Handler) Routes(r *gin.Engine, adminMiddleware gin.HandlerFunc) {
	r.POST("/v1/admin/login", h.Login)
	r.POST("/v1/verify", h.Verify)
	r.POST("/v1/tickets", h.CreateTicket)

	admin := r.Group("/v1", adminMiddleware)
	admin.GET("/students", h.ListStudents)
	admin.POST("/students", h.RegisterStudent)
	admin.GET("/students/:id", h.GetStudent)
	admin.DELETE("/students/:id", h.DeleteStudent)
	admin.POST("/students/:id/payments", h.MarkPaid)
	admin.POST("/students/:id/renewal", h.Renew)
	admin.POST("/students/:id/qr", h.RegenerateQR)
	admin.POST("/students/:id/photo", h.UploadPhoto)
	admin.POST("/students/search", h.SearchStudents)
	admin.POST("/phone-check", h.CheckPhone)
	admin.GET("/export", h.ExportExcel)
	admin.GET("/tickets", h.ListTickets)
	admin.POST("/tickets/:id/resolve", h.ResolveTicket)
}

// Login exchanges the configured admin credential for a session token.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.creds.Verify(req.Username, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	token, exp, err := auth.Issue(req.Username, "admin", h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.AccessTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "expires_at": exp.Unix()})
}

// Verify resolves a scanner query to an access decision. Response statuses
// match what the scanner app expects: Error, Multiple, duplicate, success.
func (h *Handler) Verify(c *gin.Context) {
	var req struct {
		StudentID string `json:"student_id"`
		Query     string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "Error", "message": err.Error(), "student_data": nil})
		return
	}
	query := req.StudentID
	if query == "" {
		query = req.Query
	}

	res, err := h.scans.Verify(c.Request.Context(), query, time.Now())
	if err != nil {
		if errors.Is(err, scan.ErrEmptyQuery) {
			metrics.ScansTotal.WithLabelValues("error").Inc()
			c.JSON(http.StatusBadRequest, gin.H{
				"status": "Error", "message": "No student identifier provided.", "student_data": nil,
			})
			return
		}
		metrics.ScansTotal.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "Error", "message": "verification unavailable", "student_data": nil,
		})
		return
	}

	switch res.Outcome.Kind {
	case scan.NotFound:
		metrics.ScansTotal.WithLabelValues("not_found").Inc()
		c.JSON(http.StatusOK, gin.H{
			"status": "Error", "message": "Student not found!", "student_data": nil,
		})
	case scan.Ambiguous:
		metrics.ScansTotal.WithLabelValues("ambiguous").Inc()
		c.JSON(http.StatusOK, gin.H{
			"status":       "Multiple",
			"message":      "Multiple students matched. Select correct Student ID.",
			"matches":      res.Outcome.Candidates,
			"student_data": nil,
		})
	case scan.Single:
		metrics.ScansTotal.WithLabelValues(metrics.ScanOutcome(res.Decision.Granted)).Inc()
		status := "success"
		if res.Decision.Duplicate {
			status = "duplicate"
			metrics.DuplicateScans.Inc()
		}
		c.JSON(http.StatusOK, gin.H{
			"status":       status,
			"message":      res.Decision.Message,
			"student_data": studentData(*res.Outcome.Student),
			"duplicate":    res.Decision.Duplicate,
		})
	}
}

// studentData is the scanner/verification view of a record, with display
// formatting applied.
func studentData(s student.Student) gin.H {
	data := gin.H{
		"student_id":       s.StudentID,
		"name":             s.Name,
		"bus_id":           s.BusID,
		"fee_paid":         s.FeePaid,
		"semester":         "N/A",
		"branch":           "N/A",
		"amount_paid":      s.AmountPaid,
		"transaction_date": nil,
		"parent_contact":   "",
		"email":            "",
		"photo_url":        s.PhotoURL,
		"qr_url":           s.QRURL,
	}
	if s.Semester != nil && *s.Semester != "" {
		data["semester"] = *s.Semester
	}
	if s.Branch != nil && *s.Branch != "" {
		data["branch"] = *s.Branch
	}
	if s.ParentContact != nil {
		data["parent_contact"] = student.FormatPhoneDisplay(*s.ParentContact)
	}
	if s.Email != nil {
		data["email"] = *s.Email
	}
	if s.TransactionDate != nil {
		data["transaction_date"] = student.FormatDate(*s.TransactionDate)
	}
	return data
}
