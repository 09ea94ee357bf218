package placefinder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeCatalog writes a minimal catalog CSV and returns its path. Only the
// header row is written so service startup never reaches the embedding host.
func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "locations.csv")
	header := "index,title,content_shorter_version,location_area,category_type," +
		"theme_highlights,audience_suitability,additional_attributes,price_range\n"
	require.NoError(t, os.WriteFile(path, []byte(header), 0644))
	return path
}

func TestNewService(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a working service", func(t *testing.T) {
		svc, err := NewService(ctx, writeCatalog(t), "", WithInMemoryStorage())
		require.NoError(t, err)
		require.NotNil(t, svc)
		defer svc.Close()

		assert.NotNil(t, svc.Store())
		assert.NotNil(t, svc.Pipeline())
		assert.NotNil(t, svc.Index())
	})

	t.Run("missing catalog is fatal", func(t *testing.T) {
		svc, err := NewService(ctx, filepath.Join(t.TempDir(), "missing.csv"), "", WithInMemoryStorage())
		assert.Error(t, err)
		assert.Nil(t, svc)
	})

	t.Run("empty catalog still answers a turn", func(t *testing.T) {
		svc, err := NewService(ctx, writeCatalog(t), "", WithInMemoryStorage())
		require.NoError(t, err)
		defer svc.Close()

		result := svc.Pipeline().Run(ctx, nil)
		require.NotNil(t, result)
		assert.Empty(t, result.RetrievedLocations)
		assert.NotEmpty(t, result.ClarifyingQuestion)
	})
}

func TestService_Close(t *testing.T) {
	svc, err := NewService(context.Background(), writeCatalog(t), filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	require.NotNil(t, svc)

	assert.NoError(t, svc.Close())
}
