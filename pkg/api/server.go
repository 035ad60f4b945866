// Package api provides the REST API server for bpm2ms
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/james-see/bpm2ms/pkg/converter"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title bpm2ms API
// @version 1.0
// @description API for converting a tempo in BPM to note durations
// @host localhost:8080
// @BasePath /api/v1

const maxUploadSize = 4 << 20

// Options configures the router
type Options struct {
	DefaultNote converter.Subdivision
	Click       converter.ClickOptions
	Log         *logrus.Logger
}

// DefaultOptions returns router options matching the CLI defaults
func DefaultOptions() Options {
	return Options{
		DefaultNote: converter.Quarter,
		Click:       converter.DefaultClickOptions(),
		Log:         logrus.StandardLogger(),
	}
}

type handler struct {
	opts Options
}

// StartServer starts the API server on the specified port
func StartServer(port int, opts Options) error {
	r := NewRouter(opts)
	opts.Log.WithField("port", port).Info("starting API server")
	return r.Run(fmt.Sprintf(":%d", port))
}

// NewRouter builds the gin engine with all routes registered
func NewRouter(opts Options) *gin.Engine {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	h := &handler{opts: opts}

	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/convert", h.handleConvert)
		v1.GET("/table", h.handleTable)
		v1.GET("/subdivisions", listSubdivisions)
		v1.POST("/tempo", h.handleTempoFromMIDI)
		v1.GET("/click", h.handleClick)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "bpm2ms",
	})
}

// listSubdivisions godoc
// @Summary List supported note values
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]SubdivisionResponse
// @Router /api/v1/subdivisions [get]
func listSubdivisions(c *gin.Context) {
	subs := converter.Subdivisions()
	out := make([]SubdivisionResponse, 0, len(subs))
	for _, s := range subs {
		out = append(out, newSubdivisionResponse(s))
	}
	c.JSON(http.StatusOK, gin.H{"subdivisions": out})
}

// handleConvert godoc
// @Summary Convert BPM to the duration of one note value
// @Tags convert
// @Produce json
// @Param bpm query string true "Tempo in BPM"
// @Param note query string false "Note value key, fraction or label (default: quarter)"
// @Success 200 {object} ConvertResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/convert [get]
func (h *handler) handleConvert(c *gin.Context) {
	tempo, warnings, ok := h.tempoParam(c)
	if !ok {
		return
	}
	sub, ok := h.noteParam(c)
	if !ok {
		return
	}

	d := converter.Convert(tempo, sub)
	h.opts.Log.WithFields(logrus.Fields{"bpm": tempo.BPM(), "note": sub.Key()}).Debug("converted")

	c.JSON(http.StatusOK, ConvertResponse{
		BPM:                 tempo.BPM(),
		SubdivisionResponse: newSubdivisionResponse(sub),
		Milliseconds:        d.Milliseconds,
		Seconds:             d.Seconds,
		Display:             newDisplay(d),
		Warnings:            warnings,
	})
}

// handleTable godoc
// @Summary Durations of every note value from 1/4 to 1/128
// @Tags convert
// @Produce json
// @Param bpm query string true "Tempo in BPM"
// @Success 200 {object} TableResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/table [get]
func (h *handler) handleTable(c *gin.Context) {
	tempo, warnings, ok := h.tempoParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newTableResponse(converter.BuildTable(tempo), warnings))
}

// handleTempoFromMIDI godoc
// @Summary Read the tempo of a MIDI file
// @Tags convert
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file"
// @Success 200 {object} TableResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/tempo [post]
func (h *handler) handleTempoFromMIDI(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No file uploaded", Code: "no_file"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to read file", Code: "read_failed"})
		return
	}

	tempo, err := converter.ReadTempo(data)
	if err != nil {
		h.opts.Log.WithError(err).WithField("file", header.Filename).Warn("rejected MIDI upload")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "invalid_midi"})
		return
	}

	var warnings []string
	if tempo.IsHigh() {
		warnings = append(warnings, converter.AdvisoryHighTempo.String())
	}
	c.JSON(http.StatusOK, newTableResponse(converter.BuildTable(tempo), warnings))
}

// handleClick godoc
// @Summary Download a MIDI click track
// @Tags convert
// @Produce audio/midi
// @Param bpm query string true "Tempo in BPM"
// @Param note query string false "Note value (default: quarter)"
// @Param bars query int false "Number of 4/4 bars (default: 1)"
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/click [get]
func (h *handler) handleClick(c *gin.Context) {
	tempo, _, ok := h.tempoParam(c)
	if !ok {
		return
	}
	sub, ok := h.noteParam(c)
	if !ok {
		return
	}

	opts := h.opts.Click
	if raw := c.Query("bars"); raw != "" {
		bars, err := strconv.Atoi(raw)
		if err != nil || bars <= 0 || bars > 1024 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "bars must be between 1 and 1024", Code: "invalid_bars"})
			return
		}
		opts.Bars = bars
	}

	data, err := converter.ClickTrack(tempo, sub, opts)
	if errors.Is(err, converter.ErrTempoOutOfRange) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: errorCode(err)})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "click_failed"})
		return
	}

	outputName := fmt.Sprintf("click-%sbpm-%s.mid", converter.FormatBPM(tempo), sub.Key())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputName))
	c.Data(http.StatusOK, "audio/midi", data)
}

func (h *handler) tempoParam(c *gin.Context) (converter.Tempo, []string, bool) {
	tempo, advisory, err := converter.ParseTempo(c.Query("bpm"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: errorCode(err)})
		return 0, nil, false
	}

	warnings := []string{}
	if advisory != converter.AdvisoryNone {
		h.opts.Log.WithField("bpm", tempo.BPM()).Warn(advisory.String())
		warnings = append(warnings, advisory.String())
	}
	return tempo, warnings, true
}

func (h *handler) noteParam(c *gin.Context) (converter.Subdivision, bool) {
	raw := c.Query("note")
	if raw == "" {
		return h.opts.DefaultNote, true
	}
	sub, err := converter.ParseSubdivision(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: errorCode(err)})
		return 0, false
	}
	return sub, true
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, converter.ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, converter.ErrNotANumber):
		return "not_a_number"
	case errors.Is(err, converter.ErrNonPositive):
		return "non_positive"
	case errors.Is(err, converter.ErrUnknownSubdivision):
		return "unknown_note"
	case errors.Is(err, converter.ErrTempoOutOfRange):
		return "tempo_out_of_range"
	default:
		return "invalid_request"
	}
}
