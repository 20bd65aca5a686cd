package services

import (
	"context"

	"github.com/dermatologica/assistant/internal/domain/entities"
	apperrors "github.com/dermatologica/assistant/pkg/errors"
)

// SavedFormulas returns independent copies of the saved formulas, most
// recently saved first.
func (s *WorkspaceService) SavedFormulas() []*entities.Formula {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entities.Formula, 0, len(s.savedFormulas))
	for _, f := range s.savedFormulas {
		out = append(out, f.Clone())
	}
	return out
}

// ToggleSaveFormula saves the formula when it is not in the saved list and
// removes it when it is. The decision and the mutation happen under one
// lock, so back-to-back calls cannot toggle from stale state. Returns
// whether the formula is saved after the call.
func (s *WorkspaceService) ToggleSaveFormula(ctx context.Context, formula *entities.Formula) (bool, error) {
	if formula == nil || formula.ID == "" {
		return false, apperrors.NewValidationError("formula requires an id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.savedFormulas {
		if existing.ID == formula.ID {
			if err := s.savedRepo.Delete(ctx, formula.ID); err != nil {
				return true, err
			}
			s.savedFormulas = append(s.savedFormulas[:i], s.savedFormulas[i+1:]...)
			return false, nil
		}
	}

	saved := formula.Clone()
	if err := s.savedRepo.Put(ctx, saved); err != nil {
		return false, err
	}
	s.savedFormulas = append([]*entities.Formula{saved}, s.savedFormulas...)
	return true, nil
}

// ClearSavedFormulas removes every saved formula.
func (s *WorkspaceService) ClearSavedFormulas(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.savedRepo.Clear(ctx); err != nil {
		return err
	}
	s.savedFormulas = nil
	return nil
}

// UpdateFormula patches the edited formula in every location that holds an
// independent copy of it: the displayed response, the selected history
// item and the saved list. Each location is patched by value and written
// through before the in-memory copy advances; locations that do not hold
// the id are silently skipped, so editing a formula present nowhere still
// succeeds.
func (s *WorkspaceService) UpdateFormula(ctx context.Context, updated *entities.Formula) error {
	if updated == nil || updated.ID == "" {
		return apperrors.NewValidationError("formula requires an id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentResponse != nil && containsFormula(s.currentResponse.Formulas, updated.ID) {
		patched := s.currentResponse.Clone()
		replaceFormula(patched.Formulas, updated)
		s.currentResponse = patched
	}

	if s.selectedHistoryID != "" {
		for i, item := range s.historyItems {
			if item.ID != s.selectedHistoryID {
				continue
			}
			if item.Response != nil && containsFormula(item.Response.Formulas, updated.ID) {
				patched := item.Clone()
				replaceFormula(patched.Response.Formulas, updated)
				if err := s.historyRepo.Put(ctx, patched.Clone()); err != nil {
					return err
				}
				s.historyItems[i] = patched
			}
			break
		}
	}

	for i, f := range s.savedFormulas {
		if f.ID == updated.ID {
			patched := updated.Clone()
			if err := s.savedRepo.Put(ctx, patched); err != nil {
				return err
			}
			s.savedFormulas[i] = patched
			break
		}
	}

	return nil
}

func containsFormula(formulas []*entities.Formula, id string) bool {
	for _, f := range formulas {
		if f.ID == id {
			return true
		}
	}
	return false
}

func replaceFormula(formulas []*entities.Formula, updated *entities.Formula) {
	for i, f := range formulas {
		if f.ID == updated.ID {
			formulas[i] = updated.Clone()
		}
	}
}
