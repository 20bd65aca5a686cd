package services

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dermatologica/assistant/internal/domain/entities"
	"github.com/dermatologica/assistant/internal/domain/providers"
	"github.com/dermatologica/assistant/internal/domain/repositories"
	apperrors "github.com/dermatologica/assistant/pkg/errors"
)

// WorkspaceService keeps the in-memory view state consistent with the
// persistent store. Every copy it hands out is independent; every mutation
// is written through to the repository before the in-memory mirror
// advances, so a storage failure never leaves memory ahead of disk.
type WorkspaceService struct {
	historyRepo      repositories.HistoryRepository
	savedRepo        repositories.SavedFormulaRepository
	productRepo      repositories.ProductRepository
	prescriptionRepo repositories.PrescriptionRepository
	settingsRepo     repositories.SettingsRepository
	suggestions      providers.SuggestionProvider
	assembler        *Assembler
	icons            *IconService

	mu                sync.Mutex
	currentResponse   *entities.SuggestionResponse
	currentSources    []entities.GroundingSource
	historyItems      []*entities.HistoryItem
	savedFormulas     []*entities.Formula
	productList       []*entities.Product
	selectedHistoryID string
}

// NewWorkspaceService creates the reconciler over its repositories and
// collaborators.
func NewWorkspaceService(
	historyRepo repositories.HistoryRepository,
	savedRepo repositories.SavedFormulaRepository,
	productRepo repositories.ProductRepository,
	prescriptionRepo repositories.PrescriptionRepository,
	settingsRepo repositories.SettingsRepository,
	suggestions providers.SuggestionProvider,
	assembler *Assembler,
	icons *IconService,
) *WorkspaceService {
	return &WorkspaceService{
		historyRepo:      historyRepo,
		savedRepo:        savedRepo,
		productRepo:      productRepo,
		prescriptionRepo: prescriptionRepo,
		settingsRepo:     settingsRepo,
		suggestions:      suggestions,
		assembler:        assembler,
		icons:            icons,
	}
}

// Load populates the in-memory mirror from the store. History is ordered by
// recency, products alphabetically by name.
func (s *WorkspaceService) Load(ctx context.Context) error {
	history, err := s.historyRepo.GetAll(ctx)
	if err != nil {
		return err
	}
	saved, err := s.savedRepo.GetAll(ctx)
	if err != nil {
		return err
	}
	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return err
	}

	sort.Slice(history, func(i, j int) bool {
		return history[i].Timestamp > history[j].Timestamp
	})
	sortProducts(products)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.historyItems = history
	s.savedFormulas = saved
	s.productList = products
	return nil
}

// SearchRequest describes one suggestion search.
type SearchRequest struct {
	Disease          string
	DoctorName       string
	PatientName      string
	ConsiderProducts bool
}

// Search runs a streamed suggestion call, assembles the result, commits it
// to history and returns the new history item. On any failure the in-flight
// view is left empty and nothing reaches history. Icon generation for the
// new formulas starts in the background and is not canceled by later
// searches.
func (s *WorkspaceService) Search(ctx context.Context, req SearchRequest) (*entities.HistoryItem, error) {
	if strings.TrimSpace(req.Disease) == "" {
		return nil, apperrors.NewValidationError("a condition is required")
	}

	searchID := uuid.NewString()
	logger := log.With().Str("search_id", searchID).Str("disease", req.Disease).Logger()

	// A new search invalidates the previous view before any work starts.
	s.mu.Lock()
	s.currentResponse = nil
	s.currentSources = nil
	s.selectedHistoryID = ""
	var contextProducts []*entities.Product
	if req.ConsiderProducts {
		contextProducts = cloneProducts(s.productList)
	}
	s.mu.Unlock()

	stream, err := s.suggestions.StreamSuggestions(ctx, req.Disease, contextProducts)
	if err != nil {
		logger.Error().Err(err).Msg("suggestion call failed to start")
		return nil, apperrors.NewTransportError("failed to reach the suggestion backend", err)
	}

	result, err := s.assembler.Assemble(stream)
	if err != nil {
		logger.Error().Err(err).Msg("suggestion assembly failed")
		return nil, err
	}

	item := &entities.HistoryItem{
		ID:          strconv.FormatInt(result.Stamp, 10),
		Timestamp:   result.Stamp,
		Disease:     req.Disease,
		DoctorName:  req.DoctorName,
		PatientName: req.PatientName,
		Response:    result.Response,
		Sources:     result.Sources,
	}

	if err := s.historyRepo.Put(ctx, item.Clone()); err != nil {
		logger.Error().Err(err).Msg("failed to persist history item")
		return nil, err
	}

	s.mu.Lock()
	s.currentResponse = result.Response.Clone()
	s.currentSources = append([]entities.GroundingSource(nil), result.Sources...)
	s.historyItems = append([]*entities.HistoryItem{item.Clone()}, s.historyItems...)
	s.selectedHistoryID = item.ID
	s.mu.Unlock()

	logger.Info().Int("formulas", len(result.Response.Formulas)).Int("sources", len(result.Sources)).Msg("search committed")

	if s.icons != nil {
		go s.icons.EnsureIcons(context.WithoutCancel(ctx), result.Response.Clone().Formulas)
	}
	return item.Clone(), nil
}

// SelectHistory restores a past search into the current view and re-runs
// icon assurance for its formulas.
func (s *WorkspaceService) SelectHistory(ctx context.Context, id string) (*entities.HistoryItem, error) {
	s.mu.Lock()
	var selected *entities.HistoryItem
	for _, item := range s.historyItems {
		if item.ID == id {
			selected = item.Clone()
			break
		}
	}
	if selected == nil {
		s.mu.Unlock()
		return nil, apperrors.NewNotFoundError("history item not found")
	}
	s.currentResponse = selected.Response.Clone()
	s.currentSources = append([]entities.GroundingSource(nil), selected.Sources...)
	s.selectedHistoryID = selected.ID
	s.mu.Unlock()

	if s.icons != nil {
		go s.icons.EnsureIcons(context.WithoutCancel(ctx), selected.Response.Clone().Formulas)
	}
	return selected, nil
}

// ClearHistory removes every history item and resets the current view.
func (s *WorkspaceService) ClearHistory(ctx context.Context) error {
	if err := s.historyRepo.Clear(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.historyItems = nil
	s.selectedHistoryID = ""
	s.currentResponse = nil
	s.currentSources = nil
	return nil
}

// CurrentResponse returns an independent copy of the displayed response,
// or nil when no search is displayed.
func (s *WorkspaceService) CurrentResponse() *entities.SuggestionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentResponse.Clone()
}

// CurrentSources returns a copy of the citations for the displayed response.
func (s *WorkspaceService) CurrentSources() []entities.GroundingSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.GroundingSource(nil), s.currentSources...)
}

// History returns independent copies of every history item, most recent first.
func (s *WorkspaceService) History() []*entities.HistoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]*entities.HistoryItem, 0, len(s.historyItems))
	for _, item := range s.historyItems {
		items = append(items, item.Clone())
	}
	return items
}

// SelectedHistoryID returns the id of the history item backing the current
// view, or "" when the view is not from history.
func (s *WorkspaceService) SelectedHistoryID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedHistoryID
}

func sortProducts(products []*entities.Product) {
	sort.Slice(products, func(i, j int) bool {
		a, b := strings.ToLower(products[i].Name), strings.ToLower(products[j].Name)
		if a == b {
			return products[i].Name < products[j].Name
		}
		return a < b
	})
}

func cloneProducts(products []*entities.Product) []*entities.Product {
	out := make([]*entities.Product, 0, len(products))
	for _, p := range products {
		dup := *p
		out = append(out, &dup)
	}
	return out
}
