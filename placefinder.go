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


package placefinder

import (
	"context"
	"log/slog"

	"github.com/poiesic/placefinder/ai"
	"github.com/poiesic/placefinder/ai/openai"
	"github.com/poiesic/placefinder/catalog"
	"github.com/poiesic/placefinder/convo"
	"github.com/poiesic/placefinder/index"
	"github.com/poiesic/placefinder/storage"
	"github.com/poiesic/placefinder/storage/badger"
)

const defaultCollectionName = "locations"

// Service wires the whole retrieval stack together: the catalog store, the
// badger-backed vector collection, the AI provider, the semantic index, and
// the conversation pipeline.
type Service struct {
	store      *catalog.Store
	backend    *badger.Backend
	collection storage.Collection
	provider   ai.AIProvider
	index      *index.Index
	pipeline   *convo.Pipeline
	logger     *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	aiConfig       *ai.Config
	collectionName string
	topK           int
	imageRoot      string
	inMemory       bool
}

// WithAIConfig sets the embedding and chat model configuration.
func WithAIConfig(config *ai.Config) ServiceOption {
	return func(o *serviceOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithCollectionName sets the vector collection name.
// Default is "locations".
func WithCollectionName(name string) ServiceOption {
	return func(o *serviceOptions) {
		if name != "" {
			o.collectionName = name
		}
	}
}

// WithTopK sets the number of locations retrieved per conversation turn.
func WithTopK(k int) ServiceOption {
	return func(o *serviceOptions) {
		if k > 0 {
			o.topK = k
		}
	}
}

// WithImageRoot sets the directory holding per-record image directories.
func WithImageRoot(dir string) ServiceOption {
	return func(o *serviceOptions) {
		if dir != "" {
			o.imageRoot = dir
		}
	}
}

// WithInMemoryStorage keeps the vector collection in memory. The index is
// rebuilt on every start; intended for tests and local experiments.
func WithInMemoryStorage() ServiceOption {
	return func(o *serviceOptions) {
		o.inMemory = true
	}
}

// NewService loads the catalog, opens the vector collection, and brings the
// semantic index up to date before returning. A catalog that cannot be read
// is fatal; an incomplete index sync is not, since failed batches are
// retried on the next start.
func NewService(ctx context.Context, csvPath, dbPath string, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{
		aiConfig:       ai.DefaultConfig(),
		collectionName: defaultCollectionName,
		topK:           convo.DefaultTopK,
		imageRoot:      "data/images",
	}
	for _, opt := range opts {
		opt(options)
	}

	store := catalog.NewStore(csvPath, catalog.WithImageRoot(options.imageRoot))
	if err := store.Load(); err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackend(dbPath, options.inMemory)
	if err != nil {
		return nil, err
	}

	collection, err := badger.OpenCollection(backend, options.collectionName, storage.MetricCosine)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		backend.Close()
		return nil, err
	}

	documents, metadatas, ids, err := store.PrepareDocuments()
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	ix, err := index.BuildOrLoad(ctx, collection, provider.Embedder(), documents, metadatas, ids)
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	pipeline, err := convo.NewPipeline(ix, provider.Chat(), convo.WithTopK(options.topK))
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	return &Service{
		store:      store,
		backend:    backend,
		collection: collection,
		provider:   provider,
		index:      ix,
		pipeline:   pipeline,
		logger:     slog.Default(),
	}, nil
}

// Store returns the catalog store.
func (s *Service) Store() *catalog.Store {
	return s.store
}

// Pipeline returns the conversation pipeline.
func (s *Service) Pipeline() *convo.Pipeline {
	return s.pipeline
}

// Index returns the semantic index.
func (s *Service) Index() *index.Index {
	return s.index
}

// Reconcile runs a full catalog-to-collection reconciliation, deleting
// stale entries and re-embedding changed ones.
func (s *Service) Reconcile(ctx context.Context) (*index.ReconcileStats, error) {
	documents, metadatas, ids, err := s.store.PrepareDocuments()
	if err != nil {
		return nil, err
	}
	return s.index.Reconcile(ctx, documents, metadatas, ids)
}

// Close releases the AI provider and the storage backend.
func (s *Service) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	if err := s.collection.Close(); err != nil {
		s.logger.Error("error closing collection", "err", err)
	}

	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
