package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"time"

	"github.com/df07/fp-pathtracer/pkg/renderer"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// ProgressUpdate reports one merged frame
type ProgressUpdate struct {
	Frame       int    `json:"frame"`
	TotalFrames int    `json:"totalFrames"`
	ImageData   string `json:"imageData,omitempty"` // Base64 encoded PNG
	ElapsedMs   int64  `json:"elapsedMs"`
	IsComplete  bool   `json:"isComplete"`
}

// Stats summarizes a finished render
type Stats struct {
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	TotalSamples   int     `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	ElapsedMs      int64   `json:"elapsedMs"`
}

// StreamMessage is one event of a streamed render. The same messages are
// sent as SSE events (named by Type) and as websocket JSON frames.
type StreamMessage struct {
	Type     string          `json:"type"` // "progress", "console", "error", "complete"
	Progress *ProgressUpdate `json:"progress,omitempty"`
	Console  *ConsoleMessage `json:"console,omitempty"`
	Error    string          `json:"error,omitempty"`
	Stats    *Stats          `json:"stats,omitempty"`
}

// handleRender streams a progressive render as Server-Sent Events
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	req, err := s.parseRenderRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	setSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	s.streamRender(r.Context(), req, func(msg StreamMessage) error {
		data, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Type, data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
}

// handleWebSocket runs one render per connection. The client sends a
// RenderRequest as its first message; closing the connection cancels the render.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warningf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	var req RenderRequest
	if err := conn.ReadJSON(&req); err != nil {
		logger.Warningf("websocket request: %v", err)
		return
	}

	send := func(msg StreamMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(msg)
	}

	if err := s.normalizeRenderRequest(&req); err != nil {
		_ = send(StreamMessage{Type: "error", Error: fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Nothing is expected after the request, so any read error means the
	// client went away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.streamRender(ctx, &req, send)

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

// streamRender runs req and passes every event to emit. A failing emit or a
// cancelled ctx stops the render.
func (s *Server) streamRender(ctx context.Context, req *RenderRequest, emit func(StreamMessage) error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	consoleChan := make(chan ConsoleMessage, 50)
	webLogger := NewWebLogger(fmt.Sprintf("render-%d", time.Now().UnixNano()), consoleChan)
	flushConsole := func() {
		for {
			select {
			case msg := <-consoleChan:
				_ = emit(StreamMessage{Type: "console", Console: &msg})
			default:
				return
			}
		}
	}

	sceneObj, camera, output, config, err := s.setupRender(req)
	if err != nil {
		webLogger.Errorf("invalid render: %v", err)
		flushConsole()
		_ = emit(StreamMessage{Type: "error", Error: err.Error()})
		return
	}

	webLogger.Infof("rendering %q at %dx%d, %d frames", sceneObj.Name, output.Width(), output.Height(), config.Options.SamplesPerPixel)
	start := time.Now()
	progressChan, errChan := renderer.RenderProgressive(ctx, camera, sceneObj, output, config)

	for progressChan != nil {
		select {
		case p, ok := <-progressChan:
			if !ok {
				progressChan = nil
				continue
			}
			update, err := newProgressUpdate(p)
			if err == nil {
				err = emit(StreamMessage{Type: "progress", Progress: &update})
			}
			if err != nil {
				logger.Warningf("stopping render: %v", err)
				cancel()
				return
			}
		case msg := <-consoleChan:
			if err := emit(StreamMessage{Type: "console", Console: &msg}); err != nil {
				cancel()
				return
			}
		}
	}

	if err := <-errChan; err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Noticef("render of %q cancelled", sceneObj.Name)
			return
		}
		webLogger.Errorf("render failed: %v", err)
		flushConsole()
		_ = emit(StreamMessage{Type: "error", Error: err.Error()})
		return
	}

	webLogger.Infof("render finished in %v", time.Since(start).Round(time.Millisecond))
	flushConsole()

	total := output.TotalSamples()
	_ = emit(StreamMessage{Type: "complete", Stats: &Stats{
		Width:          output.Width(),
		Height:         output.Height(),
		TotalSamples:   total,
		AverageSamples: float64(total) / float64(output.Width()*output.Height()),
		ElapsedMs:      elapsedMs(start),
	}})
}

func newProgressUpdate(p renderer.Progress) (ProgressUpdate, error) {
	update := ProgressUpdate{
		Frame:       p.Done,
		TotalFrames: p.Total,
		ElapsedMs:   p.Elapsed.Milliseconds(),
		IsComplete:  p.Done == p.Total,
	}
	if p.Snapshot != nil {
		imageData, err := imageToBase64PNG(p.Snapshot)
		if err != nil {
			return update, fmt.Errorf("failed to encode image: %w", err)
		}
		update.ImageData = imageData
	}
	return update, nil
}

// setSSEHeaders sets the required headers for Server-Sent Events
func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := renderer.WritePNG(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
