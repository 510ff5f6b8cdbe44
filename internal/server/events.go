package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/guardrail/internal/engine"
	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
)

type eventsHandler struct {
	engine  engine.Engine
	maxBody int64
}

// ServeHTTP hands the body to the engine. Every terminal status, error
// included, is a 200: the status document is the result. Only a body that
// cannot be read at all is a 400.
func (h *eventsHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	log := zerolog.Ctx(req.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, h.maxBody))
	if err != nil {
		log.Warn().Err(err).Msg("unreadable request body")
		writeJSON(w, http.StatusBadRequest, models.Failed(fmt.Errorf("read body: %w", err)))
		return
	}
	if len(body) == 0 {
		writeJSON(w, http.StatusBadRequest, models.Status{Status: models.StatusError, Reason: "empty body"})
		return
	}

	ctx := engine.WithInvocationID(req.Context(), middleware.GetReqID(req.Context()))
	status := h.engine.Handle(ctx, json.RawMessage(body))
	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
