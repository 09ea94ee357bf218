// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/poiesic/placefinder/core"
)

// Handlers holds the request handlers and their dependencies.
type Handlers struct {
	pipeline ConversationRunner
	store    CatalogReader
	logger   *slog.Logger
}

// NewHandlers wires the handlers to the pipeline and catalog store.
func NewHandlers(pipeline ConversationRunner, store CatalogReader, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		pipeline: pipeline,
		store:    store,
		logger:   logger.With("component", "api"),
	}
}

type conversationRequest struct {
	Conversation []core.ConversationMessage `json:"conversation"`
}

// HandleConversation runs one conversation turn. An empty conversation is
// not an error status: the response still carries an empty location list
// and a clarifying question, with an error field explaining why.
func (h *Handlers) HandleConversation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req conversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	for i := range req.Conversation {
		if err := core.ValidateMessage(&req.Conversation[i]); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	result := h.pipeline.Run(r.Context(), req.Conversation)

	if len(req.Conversation) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"error":               "no messages provided",
			"locations":           []core.RetrievedLocation{},
			"clarifying_question": result.ClarifyingQuestion,
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleLocations returns the formatted catalog.
func (h *Handlers) HandleLocations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	locations, err := h.store.Formatted()
	if err != nil {
		h.logger.Error("failed to load catalog", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "location data unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"locations": locations})
}

// HandleHealth reports service liveness and the catalog size.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.Count()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": "location data unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "locations": count})
}
