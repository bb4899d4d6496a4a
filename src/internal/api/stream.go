package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"proteomorphic/src/internal/analysis"
)

// Frame is one message written to a /ws client.
type Frame struct {
	Type   string `json:"type"`
	Stage  string `json:"stage,omitempty"`
	Data   any    `json:"data,omitempty"`
	Report any    `json:"report,omitempty"`
	Error  string `json:"error,omitempty"`
}

// handleWebsocket streams stage results for every request the client sends,
// followed by the full report or an error frame.
func (s *Server) handleWebsocket(c *gin.Context) {
	requestID := c.GetString("request_id")
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.allowOrigin(origin) != ""
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("ws upgrade failed", "request_id", requestID, "error", err)
		return
	}
	defer ws.Close()

	ctx := c.Request.Context()
	for {
		var req analysis.Request
		if err := ws.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("ws read ended", "request_id", requestID, "error", err)
			}
			return
		}

		var writeErr error
		obs := func(ev analysis.Event) {
			if writeErr != nil {
				return
			}
			writeErr = ws.WriteJSON(Frame{Type: "stage", Stage: ev.Stage, Data: ev.Data})
		}

		report, err := s.analyzer.Analyze(ctx, req, obs)
		if writeErr != nil {
			slog.Warn("ws write failed", "request_id", requestID, "error", writeErr)
			return
		}
		var frame Frame
		switch {
		case errors.Is(err, analysis.ErrProteinNameRequired):
			frame = Frame{Type: "error", Error: msgNameRequired}
		case err != nil:
			slog.Error("analysis failed", "request_id", requestID, "protein", req.Name, "error", err)
			frame = Frame{Type: "error", Error: err.Error()}
		default:
			slog.Info("ws analysis", "request_id", requestID, "protein", report.ProteinName, "risk", report.MisfoldingRisk)
			frame = Frame{Type: "report", Report: report}
		}
		if err := ws.WriteJSON(frame); err != nil {
			slog.Warn("ws write failed", "request_id", requestID, "error", err)
			return
		}
	}
}
