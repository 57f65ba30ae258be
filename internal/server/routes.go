package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, programs Catalog, announcer Announcer, opts Options) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Result Display API", "/openapi.json", "/docs"))

	r.Get("/programs", handleListPrograms(programs))
	r.Get("/programs/{key}", handleGetProgram(programs))
	r.Post("/announce", handleAnnounce(logger, announcer, opts.AnnounceMaxBytes))

	if opts.SPADir != "" {
		if info, err := os.Stat(opts.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", opts.SPADir)
			r.NotFound(handleSPA(opts.SPADir))
		}
	}
}
