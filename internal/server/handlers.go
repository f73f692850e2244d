package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "golang.org/x/image/bmp"

	"github.com/MeKo-Tech/platecrnn/internal/version"
)

// SetupRoutes registers all HTTP routes on the given mux.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/recognize", s.corsMiddleware(s.recognizeHandler))
	mux.Handle("/metrics", promhttp.Handler())
}

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding health response: %v\n", err)
	}
}

// recognizeHandler processes plate recognition requests.
func (s *Server) recognizeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(s.maxUploadMB * 1024 * 1024); err != nil {
		s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > s.maxUploadMB*1024*1024 {
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read image data", http.StatusInternalServerError)
		return
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
		return
	}

	if s.recognizer == nil {
		s.writeErrorResponse(w, "Recognizer not initialized", http.StatusServiceUnavailable)
		return
	}

	res, err := s.recognizer.Recognize(img)
	if err != nil {
		recognitionRequestsTotal.WithLabelValues("error").Inc()
		s.writeErrorResponse(w, fmt.Sprintf("Recognition failed: %v", err), http.StatusInternalServerError)
		return
	}

	recognitionRequestsTotal.WithLabelValues("success").Inc()
	recognitionDuration.Observe(float64(res.TimingNs.Total) / 1e9)
	recognitionTextLength.Observe(float64(len([]rune(res.Text))))
	recognitionConfidence.Observe(res.Confidence)

	result := PlateResult{
		Text:            res.Text,
		Confidence:      res.Confidence,
		CharConfidences: res.CharConfidences,
		Width:           res.Width,
		Height:          res.Height,
	}
	result.Processing.ModelTimeMs = res.TimingNs.Model / 1e6
	result.Processing.TotalTimeMs = res.TimingNs.Total / 1e6

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(PlateResponse{Success: true, Result: result}); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding recognition response: %v\n", err)
	}
}

// writeErrorResponse writes a JSON error envelope with the given status.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(PlateResponse{Success: false, Error: message}); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding error response: %v\n", err)
	}
}
