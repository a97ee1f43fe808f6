// Package catalogservice coordinates fetching, conversion, merging,
// and persistence of the template catalog.
package catalogservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/norland/catena/internal/apperr"
	"github.com/norland/catena/internal/catalog"
	"github.com/norland/catena/internal/compare"
	"github.com/norland/catena/internal/convert"
	"github.com/norland/catena/internal/detect"
	"github.com/norland/catena/internal/fetch"
	"github.com/norland/catena/internal/merge"
	"github.com/norland/catena/internal/models"
	"github.com/norland/catena/internal/schema"
	"github.com/norland/catena/internal/storage"
)

// ErrEmptyCatalog signals an attempt to persist a catalog with no
// templates. This is a user-facing validation condition, not a merge
// failure.
var ErrEmptyCatalog = errors.New("catalog is empty; merge at least one source before saving")

// SourceStatus reports the outcome of processing one source during a
// merge run.
type SourceStatus struct {
	ID        string `json:"id"`
	Format    string `json:"format,omitempty"`
	Templates int    `json:"templates"`
	Unchanged bool   `json:"unchanged,omitempty"`
	Error     string `json:"error,omitempty"`
}

// RunReport summarises a merge run.
type RunReport struct {
	RunID             string         `json:"run_id"`
	OriginalCount     int            `json:"original_count"`
	FinalCount        int            `json:"final_count"`
	DuplicatesRemoved int            `json:"duplicates_removed"`
	Saved             bool           `json:"saved"`
	Sources           []SourceStatus `json:"sources"`
}

// Options configures the service.
type Options struct {
	// Sources are URLs and file paths in merge order; the first source
	// acts as the base collection.
	Sources    []string
	OutputFile string
	Threshold  float64
}

// Service ties the fetch collaborator, the pure pipeline, and the
// catalog store together.
type Service struct {
	db     catalog.Store
	store  storage.Provider
	client *fetch.Client
	opts   Options
	logger *slog.Logger

	mu            sync.Mutex
	lastChecksums map[string]string
}

// New creates a catalog service.
func New(db catalog.Store, store storage.Provider, client *fetch.Client, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:            db,
		store:         store,
		client:        client,
		opts:          opts,
		logger:        logger,
		lastChecksums: make(map[string]string),
	}
}

// Refresh fetches every configured source, converts and merges them
// together with manual records, and persists the result. Per-source
// failures degrade the result but never abort the run.
func (s *Service) Refresh(ctx context.Context) (*RunReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := &RunReport{RunID: uuid.NewString()}

	results := s.client.FetchAll(ctx, s.opts.Sources)
	var sources []merge.Source
	for _, res := range results {
		status := SourceStatus{ID: res.ID}
		if res.Err != nil {
			status.Error = res.Err.Error()
			s.logger.Warn("source fetch failed",
				slog.String("source", res.ID),
				slog.String("error", res.Err.Error()))
			report.Sources = append(report.Sources, status)
			continue
		}
		status.Unchanged = res.Checksum != "" && s.lastChecksums[res.ID] == res.Checksum

		format := detect.Detect(res.Doc)
		status.Format = string(format)
		collection, err := convert.Convert(res.Doc, format)
		if err != nil {
			status.Error = err.Error()
			s.logger.Warn("source conversion failed",
				slog.String("source", res.ID),
				slog.String("format", string(format)),
				slog.String("error", err.Error()))
			report.Sources = append(report.Sources, status)
			continue
		}

		s.lastChecksums[res.ID] = res.Checksum
		status.Templates = len(collection.Templates)
		report.Sources = append(report.Sources, status)
		sources = append(sources, merge.Source{ID: res.ID, Collection: collection})
	}

	manual, err := s.db.ListManual()
	if err != nil {
		return nil, fmt.Errorf("load manual templates: %w", err)
	}
	if len(manual) > 0 {
		report.Sources = append([]SourceStatus{{
			ID:        models.ManualSource,
			Templates: len(manual),
		}}, report.Sources...)
	}

	result := merge.Merge(sources, manual, s.opts.Threshold)
	report.OriginalCount = result.OriginalCount
	report.FinalCount = result.FinalCount
	report.DuplicatesRemoved = result.DuplicatesRemoved()

	if err := schema.ValidateCollection(result.Collection); err != nil {
		return nil, fmt.Errorf("merged catalog failed validation: %w", err)
	}
	if err := s.db.ReplaceAll(result.Collection.Templates); err != nil {
		return nil, fmt.Errorf("store catalog: %w", err)
	}

	if err := s.saveOutput(result.Collection); err != nil {
		if errors.Is(err, ErrEmptyCatalog) {
			s.logger.Warn("skipping catalog save", slog.String("reason", err.Error()))
		} else {
			return nil, err
		}
	} else {
		report.Saved = true
	}

	s.logger.Info("merge completed",
		slog.String("run_id", report.RunID),
		slog.Int("original", report.OriginalCount),
		slog.Int("final", report.FinalCount))
	return report, nil
}

// saveOutput writes the collection document to the configured output
// file. An empty catalog is never persisted.
func (s *Service) saveOutput(c *models.Collection) error {
	if len(c.Templates) == 0 {
		return ErrEmptyCatalog
	}
	data, err := storage.EncodeJSON(c)
	if err != nil {
		return err
	}
	return s.store.Write(s.opts.OutputFile, data)
}

// CollectionDocument returns the persisted catalog document bytes.
func (s *Service) CollectionDocument(_ context.Context) ([]byte, error) {
	data, err := s.store.Read(s.opts.OutputFile)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	return data, nil
}

// ListTemplates returns stored templates with pagination and optional
// category filtering.
func (s *Service) ListTemplates(_ context.Context, limit, offset int, category string) ([]models.Template, int, error) {
	return s.db.List(limit, offset, category)
}

// GetTemplate looks a template up by exact title, then falls back to
// normalized-title matching ("  Docker-Nginx Container  " finds
// "nginx").
func (s *Service) GetTemplate(_ context.Context, title string) (*models.Template, error) {
	t, err := s.db.Get(title)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	want := compare.NormalizeTitle(title)
	if want == "" {
		return nil, apperr.ErrNotFound
	}
	titles, err := s.db.Titles()
	if err != nil {
		return nil, err
	}
	for _, candidate := range titles {
		if compare.NormalizeTitle(candidate) == want {
			return s.db.Get(candidate)
		}
	}
	return nil, apperr.ErrNotFound
}

// Search delegates to the catalog store.
func (s *Service) Search(_ context.Context, query string, limit int) ([]catalog.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Categories returns the distinct categories across the catalog.
func (s *Service) Categories(_ context.Context) ([]string, error) {
	return s.db.Categories()
}

// AddManual validates and stores a manually entered template. The
// boundary requires a non-empty title and image; everything else is
// optional.
func (s *Service) AddManual(_ context.Context, t *models.Template) error {
	if err := validateManual(t); err != nil {
		return err
	}
	t.Title = strings.TrimSpace(t.Title)
	return s.db.UpsertManual(t)
}

// DeleteManual removes a manually entered template.
func (s *Service) DeleteManual(_ context.Context, title string) error {
	return s.db.DeleteManual(title)
}

// ListManual returns the stored manual templates.
func (s *Service) ListManual(_ context.Context) ([]models.Template, error) {
	return s.db.ListManual()
}

func validateManual(t *models.Template) error {
	return validation.ValidateStruct(t,
		validation.Field(&t.Title, validation.Required, validation.By(notBlank)),
		validation.Field(&t.Image, validation.Required),
	)
}

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("must not be blank")
	}
	return nil
}
