package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"gocampus/internal/export"
	"gocampus/internal/metrics"
	"gocampus/internal/qr"
	"gocampus/internal/queue"
	"gocampus/internal/student"
)

var photoExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

type registerRequest struct {
	Name          string `form:"name" json:"name" binding:"required"`
	BusID         string `form:"bus_id" json:"bus_id" binding:"required"`
	FeePaid       bool   `form:"fee_paid" json:"fee_paid"`
	AmountPaid    int    `form:"amount_paid" json:"amount_paid"`
	ParentContact string `form:"parent_contact" json:"parent_contact"`
	Semester      string `form:"semester" json:"semester"`
	Branch        string `form:"branch" json:"branch"`
	Email         string `form:"email" json:"email"`
}

// RegisterStudent creates a record, stores the photo when supplied, and
// enqueues QR generation.
func (h *Handler) RegisterStudent(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.svc.Register(c.Request.Context(), student.RegisterInput{
		Name:          req.Name,
		BusID:         req.BusID,
		FeePaid:       req.FeePaid,
		AmountPaid:    req.AmountPaid,
		ParentContact: req.ParentContact,
		Semester:      req.Semester,
		Branch:        req.Branch,
		Email:         req.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, student.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, student.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": "A student with same name & phone already exists."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	// Photo rides along on multipart registrations; JSON clients use the
	// dedicated photo endpoint afterwards.
	if file, header, ferr := c.Request.FormFile("photo"); ferr == nil {
		defer file.Close()
		if ref, perr := h.storePhoto(c.Request.Context(), rec.StudentID, file, header.Filename, header.Size); perr != nil {
			log.Printf("photo store failed for %s: %v", rec.StudentID, perr)
		} else {
			rec.PhotoURL = &ref
		}
	}

	if err := h.queue.Publish(c.Request.Context(), queue.Message{
		Type: queue.TypeGenerateQR,
		Body: []byte(rec.StudentID),
	}); err != nil {
		log.Printf("queue publish failed for %s: %v", rec.StudentID, err)
	}

	c.JSON(http.StatusCreated, rec)
}

// ListStudents returns all records plus chart data and renewal alerts, the
// dashboard payload.
func (h *Handler) ListStudents(c *gin.Context) {
	students, err := h.students.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	// Dashboard load doubles as the ticket housekeeping pass.
	if err := h.tickets.PruneResolved(c.Request.Context()); err != nil {
		log.Printf("ticket prune failed: %v", err)
	}

	paid := 0
	for _, s := range students {
		if s.FeePaid {
			paid++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"students": students,
		"chart_data": gin.H{
			"paid":   paid,
			"unpaid": len(students) - paid,
			"total":  len(students),
		},
		"renewal_alerts": h.svc.RenewalAlerts(students, time.Now()),
	})
}

func (h *Handler) GetStudent(c *gin.Context) {
	rec, err := h.students.FindByStudentID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, student.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Student ID not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// DeleteStudent removes the record and best-effort deletes the QR artifact
// and photo blobs.
func (h *Handler) DeleteStudent(c *gin.Context) {
	id := c.Param("id")
	if err := h.students.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, student.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Student ID not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := h.blobs.Delete(ctx, qr.ArtifactKey(id)); err != nil {
		log.Printf("qr artifact delete failed for %s: %v", id, err)
	}
	for ext := range photoExtensions {
		if err := h.blobs.Delete(ctx, "photos/"+id+ext); err != nil {
			log.Printf("photo delete failed for %s%s: %v", id, ext, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// MarkPaid records a fee payment dated today.
func (h *Handler) MarkPaid(c *gin.Context) {
	var req struct {
		Amount int `json:"amount_paid" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.MarkPaid(c.Request.Context(), c.Param("id"), req.Amount); err != nil {
		switch {
		case errors.Is(err, student.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, student.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Student ID not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"student_id": c.Param("id"), "fee_paid": true})
}

// Renew extends the validity window by a year from today.
func (h *Handler) Renew(c *gin.Context) {
	next, err := h.svc.Renew(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, student.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Student ID not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"student_id": c.Param("id"), "valid_till": student.FormatDate(next)})
}

// RegenerateQR renders and stores the artifact synchronously; the record's
// reference is only updated after the artifact is safely stored.
func (h *Handler) RegenerateQR(c *gin.Context) {
	id := c.Param("id")
	rec, err := h.students.FindByStudentID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, student.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Student ID not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ref, err := h.encoder.Encode(c.Request.Context(), rec.StudentID)
	if err != nil {
		metrics.QRRenders.WithLabelValues("error").Inc()
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("QR generation failed: %v", err)})
		return
	}
	metrics.QRRenders.WithLabelValues("ok").Inc()

	if err := h.students.UpdateQRRef(c.Request.Context(), rec.StudentID, ref); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"student_id": rec.StudentID, "qr_url": ref})
}

// UploadPhoto validates and stores the student photo.
func (h *Handler) UploadPhoto(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.students.FindByStudentID(c.Request.Context(), id); err != nil {
		if errors.Is(err, student.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Student ID not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	defer file.Close()

	ref, err := h.storePhoto(c.Request.Context(), id, file, header.Filename, header.Size)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.students.UpdatePhotoRef(c.Request.Context(), id, ref); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"student_id": id, "photo_url": ref})
}

func (h *Handler) storePhoto(ctx context.Context, studentID string, file io.Reader, filename string, size int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !photoExtensions[ext] {
		return "", fmt.Errorf("photo must be jpg, jpeg or png")
	}
	if size > h.cfg.MaxPhotoBytes {
		return "", fmt.Errorf("photo exceeds %d bytes", h.cfg.MaxPhotoBytes)
	}
	data, err := io.ReadAll(io.LimitReader(file, h.cfg.MaxPhotoBytes+1))
	if err != nil {
		return "", fmt.Errorf("read photo: %w", err)
	}
	if int64(len(data)) > h.cfg.MaxPhotoBytes {
		return "", fmt.Errorf("photo exceeds %d bytes", h.cfg.MaxPhotoBytes)
	}
	ref, err := h.blobs.Put(ctx, "photos/"+studentID+ext, data)
	if err != nil {
		return "", fmt.Errorf("store photo: %w", err)
	}
	return ref, nil
}

// SearchStudents runs the admin free-text search.
func (h *Handler) SearchStudents(c *gin.Context) {
	var req struct {
		Query string `json:"query" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Empty query"})
		return
	}
	students, err := h.students.Search(c.Request.Context(), strings.TrimSpace(req.Query), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	results := make([]gin.H, 0, len(students))
	for _, s := range students {
		entry := gin.H{
			"student_id": s.StudentID,
			"name":       s.Name,
			"bus_id":     s.BusID,
			"fee_paid":   s.FeePaid,
		}
		if s.ParentContact != nil {
			entry["parent_contact"] = student.FormatPhoneDisplay(*s.ParentContact)
		}
		if s.Branch != nil {
			entry["branch"] = *s.Branch
		}
		if s.Semester != nil {
			entry["semester"] = *s.Semester
		}
		results = append(results, entry)
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "results": results})
}

// CheckPhone reports whether a contact number is already registered.
func (h *Handler) CheckPhone(c *gin.Context) {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	digits := student.NormalizePhone(req.Phone)
	if digits == "" {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "exists": false})
		return
	}
	rec, err := h.students.FindByPhone(c.Request.Context(), "+91"+digits)
	if err != nil {
		if errors.Is(err, student.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "exists": false})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "exists", "exists": true, "name": rec.Name})
}

// ExportExcel streams the students workbook.
func (h *Handler) ExportExcel(c *gin.Context) {
	students, err := h.students.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	data, err := export.StudentsWorkbook(students)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Export failed: %v", err)})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="students_report.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
