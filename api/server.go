package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gorqa/app"
	"gorqa/domain/core"
	"gorqa/domain/series"
	"gorqa/internal"
	"gorqa/internal/errors"
	"gorqa/ports"
)

// Server exposes the seasonal RQA pipeline over HTTP. The repository is
// optional; without it runs are computed and returned but not stored.
type Server struct {
	router   *gin.Engine
	service  *app.SeasonalService
	repo     ports.ResultRepository
	series   series.TimeSeries
	defaults app.SeasonalParams
	logger   *internal.Logger
}

// NewServer wires the routes for an already-loaded series.
func NewServer(ts series.TimeSeries, defaults app.SeasonalParams, repo ports.ResultRepository, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:   gin.Default(),
		service:  app.NewSeasonalService(logger),
		repo:     repo,
		series:   ts,
		defaults: defaults,
		logger:   logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/api/years", s.handleYears)
	s.router.POST("/api/analyze", s.handleAnalyze)
	s.router.GET("/api/runs", s.handleListRuns)
	s.router.GET("/api/runs/:id", s.handleGetRun)
	s.router.GET("/report/:id", s.handleReport)
}

// Run starts the HTTP server on the given address.
func (s *Server) Run(addr string) error {
	s.logger.Info("listening on %s", addr)
	return s.router.Run(addr)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "samples": s.series.Len()})
}

func (s *Server) handleYears(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"years": s.series.Years()})
}

// AnalyzeRequest is the POST /api/analyze body. Zero-valued parameters fall
// back to the server defaults.
type AnalyzeRequest struct {
	TreatmentYears    []int   `json:"treatment_years" binding:"required"`
	ControlYears      []int   `json:"control_years" binding:"required"`
	EmbeddingDim      int     `json:"embedding_dim"`
	Delay             int     `json:"delay"`
	ThresholdQuantile float64 `json:"threshold_quantile"`
	StartMonth        int     `json:"start_month"`
	EndMonth          int     `json:"end_month"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := s.defaults
	if req.EmbeddingDim > 0 {
		params.EmbeddingDim = req.EmbeddingDim
	}
	if req.Delay > 0 {
		params.Delay = req.Delay
	}
	if req.ThresholdQuantile > 0 {
		params.ThresholdQuantile = req.ThresholdQuantile
	}
	if req.StartMonth > 0 {
		params.StartMonth = time.Month(req.StartMonth)
	}
	if req.EndMonth > 0 {
		params.EndMonth = time.Month(req.EndMonth)
	}

	batch, err := s.service.AnalyzeBatch(c.Request.Context(), s.series, app.BatchSpec{
		TreatmentYears: req.TreatmentYears,
		ControlYears:   req.ControlYears,
		Params:         params,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
		return
	}

	if s.repo != nil {
		if err := s.repo.SaveBatch(c.Request.Context(), batch); err != nil {
			s.logger.Error("failed to persist run %s: %v", batch.RunID, err)
		}
	}

	c.JSON(http.StatusOK, batch)
}

func (s *Server) handleListRuns(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "result persistence not configured"})
		return
	}
	runs, err := s.repo.ListRuns(c.Request.Context(), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) handleGetRun(c *gin.Context) {
	batch, ok := s.loadRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, batch)
}

func (s *Server) handleReport(c *gin.Context) {
	batch, ok := s.loadRun(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", RenderHTMLReport(batch))
}

func (s *Server) loadRun(c *gin.Context) (*app.BatchResult, bool) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "result persistence not configured"})
		return nil, false
	}
	runID, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	batch, err := s.repo.GetBatch(c.Request.Context(), runID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.GetCode(err) == errors.CodeNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return nil, false
	}
	return batch, true
}
