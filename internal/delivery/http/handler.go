package http

import (
	"fmt"
	"image"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nutriscan/backend/internal/domain"
	"github.com/nutriscan/backend/internal/infrastructure/imageio"
	"github.com/nutriscan/backend/internal/usecase"
	"go.uber.org/zap"
)

const defaultMaxUploadBytes = 10 << 20

// Services are the usecases the HTTP API exposes
type Services struct {
	Auth     *usecase.AuthService
	Profiles *usecase.ProfileService
	Scans    *usecase.ScanService
	Analyses *usecase.AnalysisService
	History  *usecase.HistoryService
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	auth           *usecase.AuthService
	profiles       *usecase.ProfileService
	scans          *usecase.ScanService
	analyses       *usecase.AnalysisService
	history        *usecase.HistoryService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(services Services, maxUploadBytes int64, logger *zap.Logger) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{
		auth:           services.Auth,
		profiles:       services.Profiles,
		scans:          services.Scans,
		analyses:       services.Analyses,
		history:        services.History,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.Named("handler"),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "nutriscan-backend",
		"version": "1.0.0",
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type analyzeRequest struct {
	Barcode string `json:"barcode"`
}

// Register creates an account
func (h *Handler) Register(c *gin.Context) {
	var req usecase.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"username": user.Username,
		"email":    user.Email,
		"name":     user.Name,
	})
}

// Login returns a session token and the stored profile
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// ResetPassword replaces the password of a matching account with a temporary one
func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	temp, err := h.auth.ResetPassword(c.Request.Context(), req.Username, req.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":            "Password reset successful. Log in with the temporary password and change it.",
		"temporary_password": temp,
	})
}

// ChangePassword updates the signed-in user's password
func (h *Handler) ChangePassword(c *gin.Context) {
	var req usecase.ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), username(c), req); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// GetProfile returns the signed-in user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.profiles.Get(c.Request.Context(), username(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":  profile,
		"complete": profile.IsComplete(),
	})
}

// SavePersonalInfo stores the first profile step
func (h *Handler) SavePersonalInfo(c *gin.Context) {
	var info domain.PersonalInfo
	if !h.bindJSON(c, &info) {
		return
	}
	flow, ok := h.flowParam(c)
	if !ok {
		return
	}

	profile, next, err := h.profiles.SavePersonalInfo(c.Request.Context(), username(c), info, flow)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile, "next": next})
}

// SaveHealthInfo stores the second profile step
func (h *Handler) SaveHealthInfo(c *gin.Context) {
	var info domain.HealthInfo
	if !h.bindJSON(c, &info) {
		return
	}
	flow, ok := h.flowParam(c)
	if !ok {
		return
	}

	profile, next, err := h.profiles.SaveHealthInfo(c.Request.Context(), username(c), info, flow)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile, "next": next})
}

// NextStep tells the client which screen follows an action
func (h *Handler) NextStep(c *gin.Context) {
	flow, ok := h.flowParam(c)
	if !ok {
		return
	}

	next, err := h.profiles.NextStep(c.Request.Context(), username(c), usecase.FlowAction(c.Query("action")), flow)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, next)
}

// DietaryRestrictions lists the accepted restriction options
func (h *Handler) DietaryRestrictions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"dietary_restrictions": domain.DietaryRestrictions})
}

// Scan decodes an uploaded barcode photo and resolves the product
func (h *Handler) Scan(c *gin.Context) {
	img, err := h.readImage(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.scans.ScanImage(c.Request.Context(), username(c), img)
	if err != nil {
		h.respondScanError(c, result, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetProduct resolves a manually entered barcode
func (h *Handler) GetProduct(c *gin.Context) {
	result, err := h.scans.Resolve(c.Request.Context(), username(c), c.Param("barcode"))
	if err != nil {
		h.respondScanError(c, result, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Analyze produces a safety assessment for a barcode
func (h *Handler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	assessment, err := h.analyses.AnalyzeBarcode(c.Request.Context(), username(c), req.Barcode)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}

// AnalyzeLabel produces a safety assessment for an uploaded nutrition label photo
func (h *Handler) AnalyzeLabel(c *gin.Context) {
	img, err := h.readImage(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	assessment, err := h.analyses.AnalyzeLabel(c.Request.Context(), username(c), img)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}

// ListHistory returns the user's analyzed products, most recent first
func (h *Handler) ListHistory(c *gin.Context) {
	history, err := h.history.List(c.Request.Context(), username(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

// HistoryByRating returns the user's history grouped by safety rating
func (h *Handler) HistoryByRating(c *gin.Context) {
	grouped, err := h.history.GroupByRating(c.Request.Context(), username(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, grouped)
}

// GetHistoryEntry returns one history entry by barcode
func (h *Handler) GetHistoryEntry(c *gin.Context) {
	entry, err := h.history.Get(c.Request.Context(), username(c), c.Param("barcode"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DeleteHistoryEntry removes one history entry by barcode
func (h *Handler) DeleteHistoryEntry(c *gin.Context) {
	if err := h.history.Delete(c.Request.Context(), username(c), c.Param("barcode")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// respondScanError keeps the scan state alongside the error so the client can stay on the scanner
func (h *Handler) respondScanError(c *gin.Context, result *domain.ScanResult, err error) {
	status, message := statusFor(err)
	body := gin.H{"error": message}
	if result != nil {
		body["state"] = result.State
		if result.Barcode != nil {
			body["barcode"] = result.Barcode
		}
	}
	c.JSON(status, body)
}

func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

func (h *Handler) flowParam(c *gin.Context) (domain.FlowType, bool) {
	switch flow := domain.FlowType(c.Query("flow")); flow {
	case "", domain.FlowOnboarding, domain.FlowProfileUpdate:
		return flow, true
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown flow %q", flow)})
		return "", false
	}
}

// readImage reads the multipart "image" field, enforcing the upload limit and accepted formats
func (h *Handler) readImage(c *gin.Context) (image.Image, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)

	header, err := c.FormFile("image")
	if err != nil {
		return nil, fmt.Errorf("%w: image file is required", domain.ErrInvalidRequest)
	}
	if header.Size > h.maxUploadBytes {
		return nil, fmt.Errorf("%w: image larger than %d bytes", domain.ErrInvalidRequest, h.maxUploadBytes)
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	defer f.Close()

	data, err := imageio.ReadLimited(f, h.maxUploadBytes)
	if err != nil {
		return nil, err
	}

	img, _, err := imageio.Decode(data)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func username(c *gin.Context) string {
	return c.GetString(usernameKey)
}
