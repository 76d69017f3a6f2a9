package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"absensi/internal/attendance"
	"absensi/internal/auth"
	"absensi/internal/metrics"
	"absensi/internal/notify"
	"absensi/internal/qr"
	"absensi/internal/queue"
	"absensi/internal/report"
	"absensi/internal/store"
)

// TokenConfig controls the access tokens handed out at login.
type TokenConfig struct {
	Issuer     string
	SigningKey string
	TTL        time.Duration
}

type Handler struct {
	state  *attendance.Store
	kv     store.KV
	queue  queue.Queue // nil disables check-in notifications
	tokens TokenConfig
	log    *zap.Logger
}

func New(state *attendance.Store, kv store.KV, q queue.Queue, tokens TokenConfig, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{state: state, kv: kv, queue: q, tokens: tokens, log: log}
}

// ---------- Health ----------

func (h *Handler) Healthz(c *gin.Context) {
	healthy := h.kv.Healthy(c.Request.Context())
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "store": healthy})
}

// Refresh reloads the state so writes made by attendctl or another api
// process are visible. A failing KV is logged and the request goes on with
// the in-memory copy.
func (h *Handler) Refresh(c *gin.Context) {
	if err := h.state.Refresh(c.Request.Context()); err != nil {
		h.log.Warn("state refresh failed", zap.Error(err))
	}
	c.Next()
}

// ---------- Users ----------

type registerRequest struct {
	Name    string `json:"name" binding:"required"`
	Role    string `json:"role" binding:"required,oneof=student teacher"`
	Class   string `json:"class" binding:"required_if=Role student"`
	Subject string `json:"subject" binding:"required_if=Role teacher"`
}

// Register creates a student or teacher. Class is only kept for students
// and subject only for teachers.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := attendance.NewUser{Name: req.Name, Role: attendance.Role(req.Role)}
	if in.Role == attendance.RoleStudent {
		in.Class = req.Class
	} else {
		in.Subject = req.Subject
	}

	id, err := h.state.RegisterUser(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	metrics.Registrations.WithLabelValues(req.Role).Inc()

	user, _ := h.state.User(id)
	c.JSON(http.StatusCreated, gin.H{"id": id, "qrCode": user.QRCode, "user": user})
}

func (h *Handler) GetUser(c *gin.Context) {
	user, ok := h.state.User(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// UserQR serves the user's scannable code as a PNG.
func (h *Handler) UserQR(c *gin.Context) {
	user, ok := h.state.User(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	png, err := qr.Encode(user.QRCode, qr.DefaultSize)
	if err != nil {
		h.log.Error("qr encode failed", zap.String("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render code"})
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}

// ---------- Session ----------

type loginRequest struct {
	ID string `json:"id" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.state.Login(c.Request.Context(), req.ID)
	if err != nil {
		if errors.Is(err, attendance.ErrUserNotFound) {
			metrics.Logins.WithLabelValues("not_found").Inc()
		}
		h.fail(c, err)
		return
	}

	tok, err := auth.Issue(user.ID, string(user.Role), h.tokens.Issuer, h.tokens.SigningKey, h.tokens.TTL)
	if err != nil {
		h.log.Error("token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	if err := h.state.BindToken(user.ID, tok.ID); err != nil {
		h.fail(c, err)
		return
	}
	metrics.Logins.WithLabelValues("ok").Inc()

	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"access_token": tok.AccessToken,
		"expires_at":   tok.ExpiresAt.Unix(),
	})
}

// Session shows the logged in user and whether they checked in today.
func (h *Handler) Session(c *gin.Context) {
	user, _ := auth.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"user":             user,
		"today":            h.state.Today(),
		"checked_in_today": h.state.HasCheckedIn(user.ID, h.state.Today()),
	})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.state.Logout(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- Attendance ----------

type checkInRequest struct {
	Code string `json:"code"`
}

// CheckIn records today's attendance for the session user. A scanned code,
// when sent, must be the user's own.
func (h *Handler) CheckIn(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, _ := auth.CurrentUser(c)

	if req.Code != "" {
		code, err := qr.Parse(req.Code)
		if err != nil || code.ID != user.ID || req.Code != user.QRCode {
			c.JSON(http.StatusBadRequest, gin.H{"error": "code does not belong to the current user"})
			return
		}
	}

	rec, err := h.state.AddAttendance(c.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
			metrics.CheckIns.WithLabelValues(string(user.Role), "duplicate").Inc()
		}
		h.fail(c, err)
		return
	}
	metrics.CheckIns.WithLabelValues(string(rec.Role), "ok").Inc()
	h.publish(c.Request.Context(), rec)

	c.JSON(http.StatusCreated, rec)
}

// MyAttendance is the dashboard history of the session user.
func (h *Handler) MyAttendance(c *gin.Context) {
	user, _ := auth.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{"records": report.History(h.state.AttendanceRecords(), user.ID)})
}

// ---------- Teaching agendas ----------

type agendaRequest struct {
	Date     string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Class    string `json:"class" binding:"required"`
	Subject  string `json:"subject"`
	Material string `json:"material" binding:"required"`
}

func (h *Handler) AddAgenda(c *gin.Context) {
	var req agendaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, _ := auth.CurrentUser(c)

	in := attendance.NewAgenda{Date: req.Date, Class: req.Class, Subject: req.Subject, Material: req.Material}
	if in.Date == "" {
		in.Date = h.state.Today()
	}
	if in.Subject == "" {
		in.Subject = user.Subject
	}

	agenda, err := h.state.AddTeachingAgenda(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	metrics.Agendas.Inc()
	c.JSON(http.StatusCreated, agenda)
}

func (h *Handler) MyAgendas(c *gin.Context) {
	user, _ := auth.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{"agendas": report.Agendas(h.state.TeachingAgendas(), user.ID)})
}

// ---------- Public report ----------

func (h *Handler) AttendanceReport(c *gin.Context) {
	f := report.Filter{
		Search: c.Query("search"),
		Date:   c.Query("date"),
		Class:  c.Query("class"),
	}
	records := report.Public(h.state.AttendanceRecords(), h.state.Users(), f)
	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

func (h *Handler) Classes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"classes": report.Classes(h.state.Users())})
}

// ---------- helpers ----------

func (h *Handler) publish(ctx context.Context, rec attendance.AttendanceRecord) {
	if h.queue == nil {
		return
	}
	if err := notify.Publish(ctx, h.queue, rec); err != nil {
		h.log.Warn("queue publish failed", zap.String("record_id", rec.ID), zap.Error(err))
	}
}

// fail maps store errors onto HTTP responses.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, attendance.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, attendance.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, attendance.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
