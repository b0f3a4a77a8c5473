package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"tripletuploader/internal/csv"
	"tripletuploader/internal/models"
	"tripletuploader/internal/uploader"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server exposes the import/review/submit/export pipeline over HTTP,
// mirroring the CLI flow. It holds at most one dataset; a new upload
// replaces it wholesale.
type Server struct {
	router    *gin.Engine
	logger    *zap.Logger
	submitter *uploader.Submitter

	mu      sync.Mutex
	dataset *models.Dataset
}

func New(logger *zap.Logger, submitter *uploader.Submitter) *Server {
	s := &Server{
		router:    gin.New(),
		logger:    logger,
		submitter: submitter,
	}

	s.router.Use(gin.Recovery())
	s.router.Use(RequestLogger(logger))

	s.router.POST("/dataset", s.uploadDataset)
	s.router.GET("/dataset", s.getDataset)
	s.router.PUT("/dataset/rows/:index", s.editCell)
	s.router.POST("/dataset/submit", s.submitDataset)
	s.router.GET("/dataset/export", s.exportDataset)

	return s
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Run(addr string) error {
	s.logger.Info("listening", zap.String("addr", addr))
	return s.router.Run(addr)
}

type rowResponse struct {
	Fields map[string]string `json:"fields"`
	Status string            `json:"status"`
}

type datasetResponse struct {
	ID      string        `json:"id"`
	Headers []string      `json:"headers"`
	Rows    []rowResponse `json:"rows"`
}

func toResponse(ds *models.Dataset) datasetResponse {
	resp := datasetResponse{
		ID:      ds.ID,
		Headers: ds.Headers,
		Rows:    make([]rowResponse, 0, len(ds.Records)),
	}
	for _, rec := range ds.Records {
		fields := make(map[string]string, len(rec.Fields))
		for k, v := range rec.Fields {
			fields[k] = v
		}
		resp.Rows = append(resp.Rows, rowResponse{Fields: fields, Status: string(rec.Status)})
	}
	return resp
}

func (s *Server) uploadDataset(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}

	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".csv") {
		c.JSON(http.StatusBadRequest, gin.H{"error": csv.ErrNotCSV.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload"})
		return
	}
	defer file.Close()

	ds, err := csv.ReadDataset(file)
	if err != nil {
		// A failed import clears the previous dataset, matching the
		// interactive flow where a bad file leaves nothing to submit.
		s.mu.Lock()
		s.dataset = nil
		s.mu.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	s.dataset = ds
	s.mu.Unlock()

	s.logger.Info("dataset imported",
		zap.String("dataset_id", ds.ID),
		zap.String("filename", fileHeader.Filename),
		zap.Int("rows", len(ds.Records)),
	)
	c.JSON(http.StatusCreated, toResponse(ds))
}

func (s *Server) getDataset(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dataset.Empty() {
		c.JSON(http.StatusNotFound, gin.H{"error": "no dataset imported"})
		return
	}
	c.JSON(http.StatusOK, toResponse(s.dataset))
}

type editCellRequest struct {
	DatasetID string `json:"dataset_id"`
	Column    string `json:"column" binding:"required"`
	Value     string `json:"value"`
}

func (s *Server) editCell(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "row index must be an integer"})
		return
	}

	var req editCellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dataset.Empty() {
		c.JSON(http.StatusNotFound, gin.H{"error": "no dataset imported"})
		return
	}
	if req.DatasetID != "" && req.DatasetID != s.dataset.ID {
		c.JSON(http.StatusConflict, gin.H{"error": "dataset has been replaced"})
		return
	}
	if err := s.dataset.SetCell(index, req.Column, req.Value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"row": index, "column": req.Column, "value": req.Value})
}

type submitResponse struct {
	DatasetID     string        `json:"dataset_id"`
	TotalRows     int           `json:"total_rows"`
	Succeeded     int           `json:"succeeded"`
	Failed        int           `json:"failed"`
	DataIncorrect int           `json:"data_incorrect"`
	Rows          []rowResponse `json:"rows"`
}

func (s *Server) submitDataset(c *gin.Context) {
	// The lock is held for the whole pass: rows mutate as they are
	// submitted, and a cell edit landing mid-flight would race with them.
	// Edits and reads queue behind the submission instead.
	s.mu.Lock()
	defer s.mu.Unlock()

	ds := s.dataset
	if ds.Empty() {
		c.JSON(http.StatusNotFound, gin.H{"error": "no dataset imported"})
		return
	}

	result := s.submitter.SubmitDataset(c.Request.Context(), ds, nil)
	s.logger.Info("submission finished",
		zap.String("dataset_id", ds.ID),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Int("data_incorrect", result.DataIncorrect),
	)

	resp := submitResponse{
		DatasetID:     ds.ID,
		TotalRows:     result.TotalRows,
		Succeeded:     result.Succeeded,
		Failed:        result.Failed,
		DataIncorrect: result.DataIncorrect,
		Rows:          toResponse(ds).Rows,
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) exportDataset(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dataset.Empty() {
		c.JSON(http.StatusNotFound, gin.H{"error": "no dataset imported"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", csv.DefaultExportName))
	c.Header("Content-Type", "text/csv")
	if err := csv.WriteDataset(c.Writer, s.dataset); err != nil {
		s.logger.Error("export failed", zap.Error(err))
	}
}
