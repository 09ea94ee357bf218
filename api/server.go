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
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/placefinder/core"
)

// ConversationRunner is the slice of the conversation pipeline the API needs.
type ConversationRunner interface {
	Run(ctx context.Context, history []core.ConversationMessage) *core.PipelineResult
}

// CatalogReader is the slice of the catalog store the API needs.
type CatalogReader interface {
	Formatted() ([]core.LocationRecord, error)
	Count() (int, error)
}

// New builds the HTTP server: the conversation and catalog endpoints plus a
// static file server over the per-record image directories.
func New(port string, imageRoot string, pipeline ConversationRunner, store CatalogReader, logger *slog.Logger) *http.Server {
	h := NewHandlers(pipeline, store, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/conversation", h.HandleConversation)
	mux.HandleFunc("/api/locations", h.HandleLocations)
	mux.HandleFunc("/api/health", h.HandleHealth)
	mux.Handle("/images/", http.StripPrefix("/images/", http.FileServer(http.Dir(imageRoot))))

	return &http.Server{
		Addr:              ":" + port,
		Handler:           withCORS(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
