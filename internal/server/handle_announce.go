package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/playperu/resultboard/internal/announce"
)

const defaultAnnounceMaxBytes = 8 << 20

// Announcer classifies and dispatches an announcement.
type Announcer interface {
	Announce(ctx context.Context, req announce.Request) (announce.Message, error)
}

// StatusResponse acknowledges an announcement.
type StatusResponse struct {
	Status string `json:"status"`
}

// handleAnnounce accepts any well-formed or malformed body. Malformed input is
// treated as an announcement with every field absent. A body that cannot be
// read in full is rejected and nothing is broadcast.
func handleAnnounce(logger *slog.Logger, announcer Announcer, maxBytes int64) http.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = defaultAnnounceMaxBytes
	}
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				logger.Warn("announce body too large", "limit", tooLarge.Limit)
				writeError(w, http.StatusRequestEntityTooLarge, "announcement too large")
				return
			}
			logger.Warn("reading announce body", "error", err)
			writeError(w, http.StatusBadRequest, "could not read announcement")
			return
		}

		if _, err := announcer.Announce(r.Context(), announce.Decode(body)); err != nil {
			logger.Error("announcement not dispatched", "error", err)
			writeError(w, http.StatusServiceUnavailable, "announcement not dispatched")
			return
		}
		writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
	}
}
