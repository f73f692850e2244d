// Package server exposes plate recognition over HTTP.
package server

import (
	"image"

	"github.com/MeKo-Tech/platecrnn/internal/recognizer"
)

// plateRecognizer defines the methods the server needs from a recognizer.
type plateRecognizer interface {
	Recognize(img image.Image) (*recognizer.Result, error)
	Close() error
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	recognizer  plateRecognizer
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
}

// Config holds server configuration.
type Config struct {
	Host             string
	Port             int
	CORSOrigin       string
	MaxUploadMB      int64
	TimeoutSec       int
	RecognizerConfig recognizer.Config
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// PlateResult is the recognized text for one uploaded image.
type PlateResult struct {
	Text            string    `json:"text"`
	Confidence      float64   `json:"confidence"`
	CharConfidences []float64 `json:"char_confidences,omitempty"`
	Width           int       `json:"width"`
	Height          int       `json:"height"`
	Processing      struct {
		ModelTimeMs int64 `json:"model_time_ms"`
		TotalTimeMs int64 `json:"total_time_ms"`
	} `json:"processing"`
}

// PlateResponse is the envelope for recognition responses.
type PlateResponse struct {
	Success bool        `json:"success"`
	Result  PlateResult `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// NewServer creates a recognition server, building the recognizer from the
// provided config.
func NewServer(config Config) (*Server, error) {
	rec, err := recognizer.New(config.RecognizerConfig)
	if err != nil {
		return nil, err
	}
	return &Server{
		recognizer:  rec,
		corsOrigin:  config.CORSOrigin,
		maxUploadMB: config.MaxUploadMB,
		timeoutSec:  config.TimeoutSec,
	}, nil
}

// Close releases server resources.
func (s *Server) Close() error {
	if s.recognizer != nil {
		return s.recognizer.Close()
	}
	return nil
}
