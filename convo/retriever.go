package convo

import (
	"context"
	"strings"

	"github.com/poiesic/placefinder/core"
)

// Retrieve queries the semantic index and converts neighbors into scored
// locations. The score is 1 - cosine distance, so higher means closer. An
// empty query or a failing index yields an empty slice rather than an
// error; the clarifying question still gives the caller something to show.
func (p *Pipeline) Retrieve(ctx context.Context, query string) []core.RetrievedLocation {
	if strings.TrimSpace(query) == "" {
		return []core.RetrievedLocation{}
	}

	neighbors, err := p.index.Query(ctx, query, p.topK)
	if err != nil {
		p.logger.Error("retrieval failed, returning no locations", "err", err)
		return []core.RetrievedLocation{}
	}

	locations := make([]core.RetrievedLocation, 0, len(neighbors))
	for _, n := range neighbors {
		id := n.Metadata["index"]
		if id == "" {
			id = n.Id
		}
		locations = append(locations, core.RetrievedLocation{
			Id:    id,
			Score: 1 - float64(n.Distance),
			Title: n.Metadata["title"],
		})
	}
	return locations
}
