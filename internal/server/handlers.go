package server

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/freshbudget/freshbudget/internal/config"
	"github.com/freshbudget/freshbudget/internal/domain"
	"github.com/freshbudget/freshbudget/internal/ingest"
)

// Health reports liveness.
// GET /api/health
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CalculateRevenue runs a full projection for the posted request.
// POST /api/revenue/calculate
func (s *Server) CalculateRevenue(c *gin.Context) {
	var req domain.CalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parser := config.NewInputParser()
	parser.ApplyDefaults(&req)
	if err := parser.ValidateRequest(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.engine.Calculate(&req)
	if err != nil {
		s.logger.Warn("calculation failed", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// CalculateVolumes summarizes monthly volumes without any financials.
// POST /api/volume/calculate
func (s *Server) CalculateVolumes(c *gin.Context) {
	var req domain.VolumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.engine.SummarizeVolumes(&req))
}

// WorkingOpexCatalog returns the reference OPEX item catalog.
// GET /api/opex/working
func (s *Server) WorkingOpexCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": domain.DefaultOpexItems()})
}

// WorkingCapexCatalog returns the reference CAPEX item catalog.
// GET /api/capex/working
func (s *Server) WorkingCapexCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": domain.DefaultCapexItems(), "groups": domain.CapexGroupHeaders})
}

type saveLOBRequest struct {
	LOB        string          `json:"lob"`
	FiscalYear string          `json:"fiscal_year"`
	Data       json.RawMessage `json:"data"`
}

// SaveLOB upserts a named LOB snapshot.
// POST /api/lob/save
func (s *Server) SaveLOB(c *gin.Context) {
	var req saveLOBRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.LOB) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lob is required"})
		return
	}
	if err := s.store.Save(req.LOB, req.FiscalYear, req.Data); err != nil {
		s.logger.Error("snapshot save failed", zap.String("lob", req.LOB), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved", "lob": req.LOB, "fiscal_year": req.FiscalYear})
}

// LoadLOB returns a saved snapshot. Without a fiscal_year query the most
// recently updated snapshot for the LOB wins.
// GET /api/lob/get/:lob
func (s *Server) LoadLOB(c *gin.Context) {
	lob := c.Param("lob")
	snap, err := s.store.Load(lob, c.Query("fiscal_year"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if snap == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot for " + lob})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// ExistingRevenueTemplate serves the existing-revenue upload template.
// GET /api/template/existing
func (s *Server) ExistingRevenueTemplate(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="existing_revenue_template.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(ingest.ExistingRevenueTemplate()))
}

// OpexOverrideTemplate serves the existing-OPEX upload template.
// GET /api/template/opex_existing
func (s *Server) OpexOverrideTemplate(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="existing_opex_template.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(ingest.OpexOverrideTemplate()))
}

// uploadBody pulls the uploaded file out of the multipart form. The caller
// closes the returned file.
func uploadBody(c *gin.Context) (multipart.File, string, bool) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return nil, "", false
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return nil, "", false
	}
	return f, strings.ToLower(filepath.Ext(file.Filename)), true
}

func respondUploadError(c *gin.Context, err error) {
	var verrs *ingest.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": verrs.Errors})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// UploadExistingRevenue validates and aggregates an existing-revenue upload.
// POST /api/upload/existing
func (s *Server) UploadExistingRevenue(c *gin.Context) {
	body, ext, ok := uploadBody(c)
	if !ok {
		return
	}
	defer body.Close()

	var rows []ingest.ExistingRevenueRow
	var err error
	if ext == ".xlsx" {
		rows, err = ingest.ParseExistingRevenueXLSX(body)
	} else {
		rows, err = ingest.ParseExistingRevenueCSV(body)
	}
	if err != nil {
		respondUploadError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows, "count": len(rows)})
}

// UploadOpexOverrides validates and aggregates an existing-OPEX upload.
// POST /api/upload/opex_existing
func (s *Server) UploadOpexOverrides(c *gin.Context) {
	body, ext, ok := uploadBody(c)
	if !ok {
		return
	}
	defer body.Close()

	var rows []ingest.OpexOverrideRow
	var err error
	if ext == ".xlsx" {
		rows, err = ingest.ParseOpexOverridesXLSX(body)
	} else {
		rows, err = ingest.ParseOpexOverridesCSV(body)
	}
	if err != nil {
		respondUploadError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows, "count": len(rows)})
}
