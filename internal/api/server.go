package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rsmonitor/internal/alert"
	"github.com/rsmonitor/internal/auth"
	"github.com/rsmonitor/internal/models"
	"github.com/rsmonitor/internal/monitor"
	"github.com/rsmonitor/internal/report"
)

type Server struct {
	orchestrator *monitor.Orchestrator
	alerts       *alert.Manager
	auth         *auth.Authenticator
	router       *gin.Engine
}

func NewServer(orchestrator *monitor.Orchestrator, alerts *alert.Manager, authenticator *auth.Authenticator) *Server {
	server := &Server{
		orchestrator: orchestrator,
		alerts:       alerts,
		auth:         authenticator,
		router:       gin.Default(),
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	// Public routes
	s.router.GET("/health", s.healthz)
	s.router.POST("/api/v1/auth/login", s.login)

	// Protected routes (require authentication)
	api := s.router.Group("/api/v1")
	api.Use(s.auth.Middleware())

	// Health endpoints
	api.GET("/health/summary", s.healthSummary)
	api.GET("/monitors/:name", s.checkMonitor)

	// Alert endpoints
	alerts := api.Group("/alerts")
	{
		alerts.GET("", s.listAlerts)
		alerts.POST("", s.createAlert)
		alerts.GET("/history", s.alertHistory)
		alerts.GET("/summary", s.alertSummary)
		alerts.PUT("/:id/resolve", s.resolveAlert)
	}

	// Monitoring control endpoints
	monitoring := api.Group("/monitoring")
	{
		monitoring.POST("/start", s.startMonitoring)
		monitoring.POST("/stop", s.stopMonitoring)
		monitoring.GET("/status", s.monitoringStatus)
	}
}

func (s *Server) Start(port int) error {
	return s.router.Run(fmt.Sprintf(":%d", port))
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}

func (s *Server) login(c *gin.Context) {
	var loginReq struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&loginReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !s.auth.VerifyCredentials(loginReq.Username, loginReq.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := s.auth.GenerateToken(loginReq.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) healthSummary(c *gin.Context) {
	includeDetails := c.Query("details") == "true"

	var components []string
	if raw := c.Query("components"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				components = append(components, part)
			}
		}
	}

	summary := s.orchestrator.HealthSummary(c.Request.Context(), components, includeDetails)
	if c.Query("format") == "text" {
		c.String(http.StatusOK, report.RenderHealthSummary(&summary))
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) checkMonitor(c *gin.Context) {
	result, err := s.orchestrator.CheckComponent(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) listAlerts(c *gin.Context) {
	severity := c.Query("severity")
	if severity != "" && !models.ValidSeverity(models.Severity(severity)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid severity: %s", severity)})
		return
	}
	component := c.Query("component")

	active := s.alerts.ActiveAlerts()
	filtered := make([]models.Alert, 0, len(active))
	for _, a := range active {
		if severity != "" && a.Severity != models.Severity(severity) {
			continue
		}
		if component != "" && a.Component != component {
			continue
		}
		filtered = append(filtered, a)
	}

	c.JSON(http.StatusOK, gin.H{"alerts": filtered, "count": len(filtered)})
}

func (s *Server) createAlert(c *gin.Context) {
	var req struct {
		Severity       string                 `json:"severity" binding:"required"`
		Component      string                 `json:"component" binding:"required"`
		Title          string                 `json:"title" binding:"required"`
		Message        string                 `json:"message" binding:"required"`
		ThresholdValue *float64               `json:"threshold_value"`
		ActualValue    *float64               `json:"actual_value"`
		Metadata       map[string]interface{} `json:"metadata"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	severity := models.Severity(req.Severity)
	if !models.ValidSeverity(severity) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid severity: %s", req.Severity)})
		return
	}

	created := s.alerts.CreateAlert(c.Request.Context(), severity, req.Component,
		req.Title, req.Message, req.ThresholdValue, req.ActualValue, req.Metadata)

	c.JSON(http.StatusCreated, created)
}

func (s *Server) resolveAlert(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "alert id is required"})
		return
	}

	if !s.alerts.ResolveAlert(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "alert resolved"})
}

func (s *Server) alertHistory(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid limit: %s", raw)})
			return
		}
		limit = parsed
	}

	history := s.alerts.AlertHistory(limit)
	c.JSON(http.StatusOK, gin.H{"alerts": history, "count": len(history)})
}

func (s *Server) alertSummary(c *gin.Context) {
	summary := s.alerts.Summary()
	if c.Query("format") == "text" {
		c.String(http.StatusOK, report.RenderAlertSummary(&summary))
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) startMonitoring(c *gin.Context) {
	var req struct {
		IntervalSeconds int `json:"interval_seconds"`
	}

	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !s.orchestrator.Start(time.Duration(req.IntervalSeconds) * time.Second) {
		c.JSON(http.StatusConflict, gin.H{"error": "monitoring already running"})
		return
	}

	status := s.orchestrator.Status()
	c.JSON(http.StatusOK, gin.H{"message": "monitoring started", "interval_seconds": status.IntervalSeconds})
}

func (s *Server) stopMonitoring(c *gin.Context) {
	if !s.orchestrator.Stop() {
		c.JSON(http.StatusConflict, gin.H{"error": "monitoring not running"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "monitoring stopped"})
}

func (s *Server) monitoringStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.orchestrator.Status())
}
