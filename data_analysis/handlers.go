package data_analysis

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

//go:embed visualizer.html
var visualizerPage []byte

// Handlers serves the visualizer page and the data-analysis and playback API
type Handlers struct {
	ws        *Workspace
	uploadDir string
}

func SetupHandlers(mux *http.ServeMux, ws *Workspace, uploadDir string) *Handlers {
	h := &Handlers{ws: ws, uploadDir: uploadDir}

	mux.HandleFunc("/", h.serveVisualizerPage)
	mux.HandleFunc("/data-analysis/upload", h.handleUpload)
	mux.HandleFunc("/data-analysis/params", h.handleParams)
	mux.HandleFunc("/data-analysis/status", h.handleStatus)
	mux.HandleFunc("/data-analysis/dataset", h.handleDataset)
	mux.HandleFunc("/data-analysis/statistics", h.handleGetStatistics)
	mux.HandleFunc("/data-analysis/chart", h.handleChart)
	mux.HandleFunc("/data-analysis/snapshot.png", h.handleSnapshot)
	mux.HandleFunc("/playback/start", h.handleStart)
	mux.HandleFunc("/playback/stop", h.handleStop)
	return h
}

func (h *Handlers) serveVisualizerPage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(visualizerPage)
}

func (h *Handlers) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse multipart form
	err := r.ParseMultipartForm(32 << 20) // 32 MB max
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		// No file chosen: the selection was cancelled, keep everything as it is
		w.WriteHeader(http.StatusNoContent)
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if header.Filename == "" || filename == "." || filename == string(filepath.Separator) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		http.Error(w, "Failed to create upload directory", http.StatusInternalServerError)
		return
	}

	// Keep the extension so the reader can pick the format
	timestamp := time.Now().Format("20060102_150405")
	tempPath := filepath.Join(h.uploadDir, fmt.Sprintf("uploaded_%s_%s", timestamp, filename))

	if err := saveUpload(tempPath, file); err != nil {
		log.Printf("Failed to save upload %s: %v", filename, err)
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}
	defer os.Remove(tempPath)

	if err := h.ws.Load(tempPath, filename); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := h.ws.Status()
	writeJSON(w, map[string]interface{}{
		"status":  "success",
		"message": status.Message,
		"samples": status.Samples,
	})
}

func saveUpload(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to copy upload: %w", err)
	}
	return nil
}

func (h *Handlers) handleParams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	params := h.ws.Params()
	var err error
	if params.MedianWindow, err = windowParam(r, "median_window", params.MedianWindow); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if params.MeanWindow, err = windowParam(r, "mean_window", params.MeanWindow); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if r.Form.Has("polynomial_filter") {
		params.PolynomialFilter = parseCheckbox(r.Form.Get("polynomial_filter"))
	} else if r.Form.Has("median_window") || r.Form.Has("mean_window") {
		// An unchecked checkbox is not submitted with the rest of the form
		params.PolynomialFilter = false
	}

	if err := h.ws.Apply(params); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, h.ws.Status())
}

// windowParam reads a smoothing window from the form, clamped to 1..MaxWindow.
// A missing field keeps the current value.
func windowParam(r *http.Request, key string, current int) (int, error) {
	raw := strings.TrimSpace(r.Form.Get(key))
	if raw == "" {
		return current, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return current, fmt.Errorf("invalid %s %q", key, raw)
	}
	return min(ClampWindowFloat(v), MaxWindow), nil
}

func parseCheckbox(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}

func (h *Handlers) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := h.ws.Status()
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		writeJSON(w, status)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	if err := StatusPanel(status).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handlers) handleDataset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ds := h.ws.Dataset()
	if ds == nil {
		writeJSONError(w, http.StatusNotFound, "no dataset loaded")
		return
	}
	writeJSON(w, ds)
}

// handleGetStatistics handles requests for dataset statistics
func (h *Handlers) handleGetStatistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ds := h.ws.Dataset()
	if ds == nil {
		writeJSONError(w, http.StatusNotFound, "no dataset loaded")
		return
	}
	writeJSON(w, CalculateDatasetStatistics(ds))
}

func (h *Handlers) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ds := h.ws.Dataset()
	if ds == nil {
		http.Error(w, "No dataset loaded", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := RenderChartPage(&buf, ds); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (h *Handlers) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	frame, ok := h.ws.Current()
	if !ok {
		http.Error(w, "No frame rendered", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := RenderSnapshot(&buf, frame); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (h *Handlers) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Starting without data is ignored; the status tells the client nothing runs
	h.ws.Start()
	writeJSON(w, h.ws.Status())
}

func (h *Handlers) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.ws.Stop()
	writeJSON(w, h.ws.Status())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "error",
		"message": message,
	})
}
