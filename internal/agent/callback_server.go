package agent

import (
	"net/http"

	"github.com/deskbridge/deskbridge/internal/desktop"
	"github.com/deskbridge/deskbridge/internal/httputil"
)

// writeCoordsCallbackRequest mirrors agentclient.WriteCoordsRequest on the
// wire; kept as a separate type so this package has no dependency on the
// interpreter's HTTP client.
type writeCoordsCallbackRequest struct {
	X            int    `json:"x"`
	Y            int    `json:"y"`
	Content      string `json:"content"`
	InsertMethod string `json:"insert_method"`
	KeySequence  string `json:"key_sequence,omitempty"`
}

// NewCallbackServer builds the agent's local HTTP handler: a single
// endpoint, POST /execute/write_coords, that performs one UI write
// locally. This is the channel the visual interpreter uses to reach back
// into the desktop.
func NewCallbackServer(io desktop.IO) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /execute/write_coords", handleWriteCoords(io))
	return mux
}

func handleWriteCoords(io desktop.IO) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req writeCoordsCallbackRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "error": "invalid request body"})
			return
		}

		if err := io.Click(req.X, req.Y); err != nil {
			httputil.WriteJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "error": err.Error()})
			return
		}

		if err := insertContent(io, req.Content, req.InsertMethod); err != nil {
			httputil.WriteJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "error": err.Error()})
			return
		}

		if req.KeySequence != "" {
			if err := RunNavigation(io, req.KeySequence); err != nil {
				httputil.WriteJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "error": err.Error()})
				return
			}
		}

		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"status":      "success",
			"coordinates": map[string]int{"x": req.X, "y": req.Y},
		})
	}
}
