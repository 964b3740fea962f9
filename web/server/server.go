package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/df07/fp-pathtracer/pkg/integrator"
	"github.com/df07/fp-pathtracer/pkg/loaders"
	"github.com/df07/fp-pathtracer/pkg/log"
	"github.com/df07/fp-pathtracer/pkg/renderer"
	"github.com/df07/fp-pathtracer/pkg/scene"
	"github.com/gorilla/websocket"
)

var logger = log.New("web")

// Request limits shared by the render, inspect and scene-config endpoints
const (
	minImageSize   = 16
	maxImageSize   = 2000
	maxSamples     = 10000
	maxThreads     = 256
	maxPathDepth   = 64
	defaultScene   = "cornell"
	defaultSamples = 40
)

// Server handles web requests for the path tracer
type Server struct {
	port      int
	sceneDir  string
	staticDir string
	upgrader  websocket.Upgrader
}

// NewServer creates a new web server. Scene files are listed from sceneDir
// and static files are served from staticDir.
func NewServer(port int, sceneDir, staticDir string) *Server {
	return &Server{
		port:      port,
		sceneDir:  sceneDir,
		staticDir: staticDir,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene         string `json:"scene"`         // Built-in scene name or scene file name
	Width         int    `json:"width"`         // Image width
	Height        int    `json:"height"`        // Image height
	Samples       int    `json:"samples"`       // Frames to accumulate, one sample per pixel each
	Threads       int    `json:"threads"`       // Frames per wave (0 = all CPUs)
	MaxDepth      int    `json:"maxDepth"`      // Path depth limit
	Preview       bool   `json:"preview"`       // Flat diffuse shading
	SnapshotEvery int    `json:"snapshotEvery"` // Send an image every N frames
}

// Handler returns the HTTP routes served by the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/ws", s.handleWebSocket)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	logger.Noticef("starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in scenes followed by scene files
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes := scene.List()
	files, err := scene.ListSceneFiles(s.sceneDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for _, info := range files {
		info.ID = filepath.Base(info.FilePath)
		info.FilePath = ""
		scenes = append(scenes, info)
	}
	writeJSON(w, http.StatusOK, scenes)
}

// handleSceneConfig returns the default render settings for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = defaultScene
	}

	sceneObj, err := s.createScene(sceneName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scene":       sceneName,
		"description": sceneObj.Description,
		"primitives":  sceneObj.PrimitiveCount(),
		"defaults": map[string]interface{}{
			"width":    sceneObj.Width,
			"height":   sceneObj.Height,
			"samples":  defaultSamples,
			"maxDepth": integrator.MaxDepth,
			"vfov":     sceneObj.Camera.VerticalFOV,
		},
		"limits": map[string]interface{}{
			"width":   map[string]int{"min": minImageSize, "max": maxImageSize},
			"height":  map[string]int{"min": minImageSize, "max": maxImageSize},
			"samples": map[string]int{"min": 1, "max": maxSamples},
			"threads": map[string]int{"min": 0, "max": maxThreads},
		},
	})
}

// parseRenderRequest reads render parameters from the query string
func (s *Server) parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{Scene: values.Get("scene")}

	var err error
	if req.Width, err = parseIntParam(values, "width", 0, 0, maxImageSize); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", 0, 0, maxImageSize); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(values, "samples", defaultSamples, 1, maxSamples); err != nil {
		return nil, err
	}
	if req.Threads, err = parseIntParam(values, "threads", 0, 0, maxThreads); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(values, "maxDepth", integrator.MaxDepth, 1, maxPathDepth); err != nil {
		return nil, err
	}
	if req.SnapshotEvery, err = parseIntParam(values, "snapshotEvery", 1, 1, maxSamples); err != nil {
		return nil, err
	}
	if req.Preview, err = parseBoolParam(values, "preview"); err != nil {
		return nil, err
	}
	return req, s.normalizeRenderRequest(req)
}

// normalizeRenderRequest fills defaults and checks limits. Zero width or
// height falls back to the scene's size.
func (s *Server) normalizeRenderRequest(req *RenderRequest) error {
	if req.Scene == "" {
		req.Scene = defaultScene
	}
	if req.Samples == 0 {
		req.Samples = defaultSamples
	}
	if req.MaxDepth == 0 {
		req.MaxDepth = integrator.MaxDepth
	}
	if req.SnapshotEvery <= 0 {
		req.SnapshotEvery = 1
	}

	for _, check := range []struct {
		name     string
		value    int
		min, max int
	}{
		{"width", req.Width, 0, maxImageSize},
		{"height", req.Height, 0, maxImageSize},
		{"samples", req.Samples, 1, maxSamples},
		{"threads", req.Threads, 0, maxThreads},
		{"maxDepth", req.MaxDepth, 1, maxPathDepth},
	} {
		if check.value < check.min || check.value > check.max {
			return fmt.Errorf("%s must be between %d and %d, got: %d", check.name, check.min, check.max, check.value)
		}
	}
	if (req.Width != 0 && req.Width < minImageSize) || (req.Height != 0 && req.Height < minImageSize) {
		return fmt.Errorf("image must be at least %dx%d", minImageSize, minImageSize)
	}

	if req.Width*req.Height > 800*600 && req.Samples > 100 {
		logger.Warningf("large image with high samples may render slowly")
	}
	return nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseBoolParam parses an optional boolean parameter
func parseBoolParam(values url.Values, key string) (bool, error) {
	value := values.Get(key)
	if value == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %s", key, value)
	}
	return parsed, nil
}

// createScene builds a built-in scene, or loads a JSON file from the scene
// directory. File names are reduced to their base name.
func (s *Server) createScene(name string) (*scene.Scene, error) {
	if strings.EqualFold(filepath.Ext(name), ".json") {
		return loaders.LoadScene(filepath.Join(s.sceneDir, filepath.Base(name)))
	}
	return scene.Lookup(name)
}

// setupRender prepares the camera, output buffer and progressive config for req
func (s *Server) setupRender(req *RenderRequest) (*scene.Scene, *renderer.Camera, *renderer.SampleBuffer, renderer.ProgressiveConfig, error) {
	sceneObj, err := s.createScene(req.Scene)
	if err != nil {
		return nil, nil, nil, renderer.ProgressiveConfig{}, err
	}

	width, height := req.Width, req.Height
	if width == 0 {
		width = sceneObj.Width
	}
	if height == 0 {
		height = sceneObj.Height
	}

	config := renderer.DefaultProgressiveConfig()
	config.Options.SamplesPerPixel = req.Samples
	config.Options.NumThreads = req.Threads
	config.Options.Preview = req.Preview
	config.Options.Integrator = integrator.Config{MaxDepth: req.MaxDepth}
	config.SnapshotEvery = req.SnapshotEvery
	if err := config.Options.Validate(); err != nil {
		return nil, nil, nil, renderer.ProgressiveConfig{}, err
	}

	camera := renderer.NewCamera(sceneObj.Camera, float64(width)/float64(height))
	return sceneObj, camera, renderer.NewSampleBuffer(width, height), config, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warningf("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func elapsedMs(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
