package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/poiesic/placefinder/core"
)

// Expected text columns. Missing values in these columns become the empty
// string; a column absent from the source is logged and skipped.
var textColumns = []string{
	"title",
	"content_shorter_version",
	"location_area",
	"category_type",
	"theme_highlights",
	"audience_suitability",
	"additional_attributes",
	"price_range",
}

// Optional columns that may or may not exist in the source.
var optionalColumns = []string{
	"link",
	"address",
	"content",
	"operating_hours",
	"image",
}

// idColumn uniquely identifies a record within the catalog.
const idColumn = "index"

// imageIDWidth is the zero-padded width of per-record image directories.
const imageIDWidth = 6

// row is one cleaned catalog record in its raw, unsplit form. List-valued
// fields stay comma-joined here; Formatted splits them.
type row struct {
	id                   string
	title                string
	link                 string
	address              string
	content              string
	summary              string
	area                 string
	category             string
	themeHighlights      string
	audienceSuitability  string
	additionalAttributes string
	priceRange           string
	operatingHours       string
	image                string
}

// Store loads and caches the location catalog from a CSV source.
//
// The source is read at most once for the lifetime of the Store; both the
// raw table and the formatted view are populated under single-initialization
// barriers so concurrent first access never duplicates the load.
type Store struct {
	csvPath   string
	imageRoot string
	logger    *slog.Logger

	loadOnce sync.Once
	loadErr  error
	rows     []row
	present  map[string]bool

	formatOnce sync.Once
	formatted  []core.LocationRecord
}

// Option configures a Store.
type Option func(*Store)

// WithImageRoot sets the directory holding per-record image directories.
// Default is "data/images".
func WithImageRoot(dir string) Option {
	return func(s *Store) {
		s.imageRoot = dir
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewStore creates a catalog store backed by the CSV file at csvPath.
// The file is not read until the first accessor call.
func NewStore(csvPath string, opts ...Option) *Store {
	s := &Store{
		csvPath:   csvPath,
		imageRoot: "data/images",
		logger:    slog.Default().With("component", "catalog"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads and cleans the catalog source. Subsequent calls return the
// cached result without re-reading. Returns ErrDataUnavailable if the source
// cannot be located or parsed; callers must treat that as fatal for any
// retrieval-dependent operation.
func (s *Store) Load() error {
	s.loadOnce.Do(func() {
		s.loadErr = s.read()
	})
	return s.loadErr
}

func (s *Store) read() error {
	f, err := os.Open(s.csvPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDataUnavailable, s.csvPath, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("%w: reading header of %s: %v", ErrDataUnavailable, s.csvPath, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	if _, ok := columns[idColumn]; !ok {
		return fmt.Errorf("%w: %s: missing %q column", ErrDataUnavailable, s.csvPath, idColumn)
	}

	s.present = make(map[string]bool)
	for _, col := range textColumns {
		if _, ok := columns[col]; ok {
			s.present[col] = true
		} else {
			s.logger.Warn("column not found in CSV, skipping", "column", col)
		}
	}
	for _, col := range optionalColumns {
		if _, ok := columns[col]; ok {
			s.present[col] = true
		}
	}

	cell := func(record []string, col string) string {
		idx, ok := columns[col]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	var rows []row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: parsing %s: %v", ErrDataUnavailable, s.csvPath, err)
		}
		rows = append(rows, row{
			id:                   cell(record, idColumn),
			title:                cell(record, "title"),
			link:                 cell(record, "link"),
			address:              cell(record, "address"),
			content:              cell(record, "content"),
			summary:              cell(record, "content_shorter_version"),
			area:                 cell(record, "location_area"),
			category:             cell(record, "category_type"),
			themeHighlights:      cell(record, "theme_highlights"),
			audienceSuitability:  cell(record, "audience_suitability"),
			additionalAttributes: cell(record, "additional_attributes"),
			priceRange:           cell(record, "price_range"),
			operatingHours:       cell(record, "operating_hours"),
			image:                cell(record, "image"),
		})
	}

	s.rows = rows
	s.logger.Info("loaded locations", "count", len(rows), "path", s.csvPath)
	return nil
}

// Count returns the number of catalog records.
func (s *Store) Count() (int, error) {
	if err := s.Load(); err != nil {
		return 0, err
	}
	return len(s.rows), nil
}

// Formatted returns the formatted view of the catalog: list fields split
// from their comma-joined source form and image paths resolved from the
// per-record image directory. Computed lazily on first call and cached.
func (s *Store) Formatted() ([]core.LocationRecord, error) {
	if err := s.Load(); err != nil {
		return nil, err
	}
	s.formatOnce.Do(func() {
		s.formatted = make([]core.LocationRecord, 0, len(s.rows))
		for _, r := range s.rows {
			s.formatted = append(s.formatted, s.formatRow(r))
		}
	})
	return s.formatted, nil
}

func (s *Store) formatRow(r row) core.LocationRecord {
	return core.LocationRecord{
		Id:                   r.id,
		Title:                r.title,
		Link:                 r.link,
		Address:              r.address,
		Images:               s.resolveImages(r.id),
		Content:              r.content,
		Summary:              r.summary,
		Area:                 r.area,
		Category:             r.category,
		ThemeHighlights:      splitList(r.themeHighlights),
		PriceRange:           r.priceRange,
		AudienceSuitability:  splitList(r.audienceSuitability),
		OperatingHours:       r.operatingHours,
		AdditionalAttributes: splitList(r.additionalAttributes),
	}
}

// resolveImages lists the image assets for a record. Assets live under a
// directory keyed by the zero-padded record id; a missing directory simply
// yields an empty list.
func (s *Store) resolveImages(id string) []string {
	padded := PadId(id)
	dir := filepath.Join(s.imageRoot, padded)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []string{}
	}
	images := []string{}
	for _, entry := range entries {
		name := entry.Name()
		switch strings.ToLower(filepath.Ext(name)) {
		case ".png", ".jpg", ".jpeg":
			images = append(images, path.Join("/images", padded, name))
		}
	}
	return images
}

// PadId zero-pads a record id to the width used by image directories.
func PadId(id string) string {
	if len(id) >= imageIDWidth {
		return id
	}
	return strings.Repeat("0", imageIDWidth-len(id)) + id
}

// splitList splits a comma-joined source field into its elements.
// An empty field yields an empty list, never a one-element list of "".
func splitList(value string) []string {
	if value == "" {
		return []string{}
	}
	return strings.Split(value, ",")
}
