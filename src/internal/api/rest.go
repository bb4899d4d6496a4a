package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"proteomorphic/src/internal/analysis"
)

// msgNameRequired is the client-facing text for analysis.ErrProteinNameRequired.
const msgNameRequired = "Protein name is required"

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analysis.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	report, err := s.analyzer.Analyze(c.Request.Context(), req, nil)
	if err != nil {
		if errors.Is(err, analysis.ErrProteinNameRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgNameRequired})
			return
		}
		slog.Error("analysis failed", "request_id", c.GetString("request_id"), "protein", req.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	slog.Info("analyze request",
		"request_id", c.GetString("request_id"),
		"protein", report.ProteinName,
		"risk", report.MisfoldingRisk,
		"hotspots", len(report.Hotspots),
		"duration", time.Since(start),
	)
	c.JSON(http.StatusOK, report)
}

type healthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Device      string `json:"device"`
	Provider    string `json:"provider"`
}

func (s *Server) handleHealth(c *gin.Context) {
	resp := healthResponse{Status: "healthy", Device: "cpu", Provider: "none"}
	if s.model != nil {
		resp.ModelLoaded = s.model.Loaded()
		resp.Device = s.model.Device()
		resp.Provider = s.model.Provider()
	}
	c.JSON(http.StatusOK, resp)
}
