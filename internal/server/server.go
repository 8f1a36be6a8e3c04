// Package server exposes the invoice core over HTTP for the form frontend:
// validation reports, live totals, and the two export formats.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/rezonia/erechnung/internal/logger"
	"github.com/rezonia/erechnung/internal/model"
	"github.com/rezonia/erechnung/internal/totals"
	"github.com/rezonia/erechnung/internal/validation"
	"github.com/rezonia/erechnung/internal/xrechnung"
	"github.com/rezonia/erechnung/internal/zugferd"
)

// maxPDFSize caps the uploaded source PDF for ZUGFeRD export.
const maxPDFSize = 32 << 20

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server represents the HTTP API server
type Server struct {
	config *Config
	router *gin.Engine
	log    zerolog.Logger
}

// NewServer creates a new API server
func NewServer(config *Config) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	s := &Server{
		config: config,
		router: router,
		log:    logger.WithComponent("server"),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/validate", s.handleValidate)
		v1.POST("/totals", s.handleTotals)
		v1.POST("/export/xrechnung", s.handleExportXRechnung)
		v1.POST("/export/zugferd", s.handleExportZUGFeRD)
		v1.GET("/unitcodes", s.handleUnitCodes)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.log.Info().Str("address", s.config.Address).Msg("starting HTTP server")
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) bindInvoice(c *gin.Context) (*model.Invoice, bool) {
	var inv model.Invoice
	if err := c.ShouldBindJSON(&inv); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid invoice payload", Details: err.Error()})
		return nil, false
	}
	return &inv, true
}

func (s *Server) handleValidate(c *gin.Context) {
	inv, ok := s.bindInvoice(c)
	if !ok {
		return
	}
	result := validation.Validate(inv)
	s.log.Debug().
		Str("number", inv.Number).
		Bool("valid", result.Valid).
		Int("errors", len(result.Errors)).
		Int("warnings", len(result.Warnings)).
		Msg("invoice validated")
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleTotals(c *gin.Context) {
	inv, ok := s.bindInvoice(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, totals.Calculate(inv.Items))
}

func (s *Server) handleExportXRechnung(c *gin.Context) {
	inv, ok := s.bindInvoice(c)
	if !ok {
		return
	}

	result := validation.Validate(inv)
	if !result.Valid {
		c.JSON(http.StatusUnprocessableEntity, ValidationFailedResponse{
			Error:  "validation failed",
			Report: result,
		})
		return
	}

	xml, err := xrechnung.Generate(inv)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "generation rejected", Details: err.Error()})
		return
	}

	s.log.Info().Str("number", inv.Number).Msg("XRechnung exported")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", xrechnung.FileName(inv)))
	c.Data(http.StatusOK, "application/xml", []byte(xml))
}

// handleExportZUGFeRD expects a multipart form with an "invoice" field (JSON
// data model) and a "pdf" file (the rendered visual invoice).
func (s *Server) handleExportZUGFeRD(c *gin.Context) {
	invoiceField := c.PostForm("invoice")
	if invoiceField == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing invoice form field"})
		return
	}
	var inv model.Invoice
	if err := json.Unmarshal([]byte(invoiceField), &inv); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid invoice payload", Details: err.Error()})
		return
	}

	fileHeader, err := c.FormFile("pdf")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing pdf form file", Details: err.Error()})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read pdf upload", Details: err.Error()})
		return
	}
	defer file.Close()
	sourcePDF, err := io.ReadAll(io.LimitReader(file, maxPDFSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read pdf upload", Details: err.Error()})
		return
	}

	result := validation.Validate(&inv)
	if !result.Valid {
		c.JSON(http.StatusUnprocessableEntity, ValidationFailedResponse{
			Error:  "validation failed",
			Report: result,
		})
		return
	}

	out, err := zugferd.Export(&inv, sourcePDF, time.Now())
	if err != nil {
		var exportErr *model.ExportError
		if errors.As(err, &exportErr) {
			s.log.Error().Err(err).Str("number", inv.Number).Msg("ZUGFeRD export failed")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "export failed", Details: err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "generation rejected", Details: err.Error()})
		return
	}

	s.log.Info().Str("number", inv.Number).Int("bytes", len(out)).Msg("ZUGFeRD exported")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", zugferd.FileName(&inv)))
	c.Data(http.StatusOK, "application/pdf", out)
}

func (s *Server) handleUnitCodes(c *gin.Context) {
	c.JSON(http.StatusOK, model.UnitCodes())
}
