package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/resultboard/internal/announce"
	"github.com/playperu/resultboard/internal/handler/health"
	"github.com/playperu/resultboard/internal/resultboard"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Result Display API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Competition programs, results and live announcements.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Reports dependency status and the number of connected viewers.")
	getHealthz.AddRespStructure(health.Response{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(health.Response{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /programs
	listPrograms, _ := r.NewOperationContext(http.MethodGet, "/programs")
	listPrograms.SetSummary("List programs")
	listPrograms.SetDescription("Returns every program in catalog order. Results are never included.")
	listPrograms.AddRespStructure([]resultboard.Program{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listPrograms)

	// GET /programs/{key}
	getProgram, _ := r.NewOperationContext(http.MethodGet, "/programs/{key}")
	getProgram.SetSummary("Get program")
	getProgram.SetDescription("Returns a program with its results ordered by position.")
	getProgram.AddReqStructure(struct {
		Key string `path:"key"`
	}{})
	getProgram.AddRespStructure(resultboard.Program{}, openapi.WithHTTPStatus(http.StatusOK))
	getProgram.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getProgram)

	// POST /announce
	postAnnounce, _ := r.NewOperationContext(http.MethodPost, "/announce")
	postAnnounce.SetSummary("Announce")
	postAnnounce.SetDescription("Broadcasts a program, or a result when one is given, to every connected viewer. Missing or malformed fields are treated as null.")
	postAnnounce.AddReqStructure(struct {
		ProgramName *string             `json:"program_name"`
		Section     *string             `json:"section"`
		Result      *resultboard.Result `json:"result,omitempty"`
	}{})
	postAnnounce.AddRespStructure(StatusResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAnnounce.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postAnnounce.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusRequestEntityTooLarge))
	postAnnounce.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(postAnnounce)

	// GET /ws
	getWS, _ := r.NewOperationContext(http.MethodGet, "/ws")
	getWS.SetSummary("Viewer socket")
	getWS.SetDescription("Upgrades to a WebSocket that receives every announcement. Incoming frames are ignored.")
	getWS.AddRespStructure(announce.Message{}, openapi.WithHTTPStatus(http.StatusSwitchingProtocols))
	_ = r.AddOperation(getWS)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
