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


package catalog

import "fmt"

// PrepareDocuments projects the catalog into embedding-ready triples: one
// (document, metadata, id) per record, in catalog iteration order.
//
// The projection is deterministic: the same catalog always yields the same
// triples. This is what makes index synchronization idempotent, so the
// document template and the missing-field rendering below must stay stable.
func (s *Store) PrepareDocuments() (documents []string, metadatas []map[string]string, ids []string, err error) {
	if err := s.Load(); err != nil {
		return nil, nil, nil, err
	}

	documents = make([]string, 0, len(s.rows))
	metadatas = make([]map[string]string, 0, len(s.rows))
	ids = make([]string, 0, len(s.rows))

	for _, r := range s.rows {
		documents = append(documents, embeddingText(r))
		metadatas = append(metadatas, s.metadata(r))
		ids = append(ids, r.id)
	}

	s.logger.Info("prepared documents for embedding", "count", len(documents))
	return documents, metadatas, ids, nil
}

// embeddingText renders a record into the fixed template fed to the
// embedding model.
func embeddingText(r row) string {
	return fmt.Sprintf("Title: %s\n"+
		"Area: %s\n"+
		"Category: %s\n"+
		"Themes: %s\n"+
		"Audience: %s\n"+
		"Price: %s\n"+
		"Summary: %s\n"+
		"Attributes: %s",
		r.title, r.area, r.category, r.themeHighlights,
		r.audienceSuitability, r.priceRange, r.summary, r.additionalAttributes)
}

// metadata is the subset of record fields needed for response formatting.
// Operating hours render as "N/A" when the column is absent from the source
// (a present-but-empty value stays empty).
func (s *Store) metadata(r row) map[string]string {
	hours := r.operatingHours
	if !s.present["operating_hours"] {
		hours = "N/A"
	}
	return map[string]string{
		"index":           r.id,
		"title":           r.title,
		"link":            r.link,
		"image":           r.image,
		"address":         r.address,
		"location_area":   r.area,
		"category_type":   r.category,
		"price_range":     r.priceRange,
		"operating_hours": hours,
	}
}
