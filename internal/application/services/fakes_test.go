package services_test

import (
	"context"
	"io"
	"sync"

	"github.com/dermatologica/assistant/internal/domain/entities"
	"github.com/dermatologica/assistant/internal/domain/providers"
)

// fakeStream replays scripted chunks and terminates with err (io.EOF for
// normal completion).
type fakeStream struct {
	chunks []*providers.SuggestionChunk
	err    error
	pos    int
}

func (s *fakeStream) Recv() (*providers.SuggestionChunk, error) {
	if s.pos < len(s.chunks) {
		chunk := s.chunks[s.pos]
		s.pos++
		return chunk, nil
	}
	if s.err != nil {
		return nil, s.err
	}
	return nil, io.EOF
}

func textStream(fragments ...string) *fakeStream {
	s := &fakeStream{}
	for _, frag := range fragments {
		s.chunks = append(s.chunks, &providers.SuggestionChunk{Text: frag})
	}
	return s
}

type fakeSuggestionProvider struct {
	stream  providers.SuggestionStream
	callErr error
	calls   int
}

func (p *fakeSuggestionProvider) StreamSuggestions(context.Context, string, []*entities.Product) (providers.SuggestionStream, error) {
	p.calls++
	if p.callErr != nil {
		return nil, p.callErr
	}
	return p.stream, nil
}

type fakeHistoryRepo struct {
	mu    sync.Mutex
	items map[string]*entities.HistoryItem
	fail  error
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{items: make(map[string]*entities.HistoryItem)}
}

func (r *fakeHistoryRepo) GetAll(context.Context) ([]*entities.HistoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.HistoryItem
	for _, item := range r.items {
		out = append(out, item.Clone())
	}
	return out, nil
}

func (r *fakeHistoryRepo) Put(_ context.Context, item *entities.HistoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.items[item.ID] = item.Clone()
	return nil
}

func (r *fakeHistoryRepo) Clear(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = make(map[string]*entities.HistoryItem)
	return nil
}

type fakeFormulaRepo struct {
	mu       sync.Mutex
	formulas map[string]*entities.Formula
}

func newFakeFormulaRepo() *fakeFormulaRepo {
	return &fakeFormulaRepo{formulas: make(map[string]*entities.Formula)}
}

func (r *fakeFormulaRepo) GetAll(context.Context) ([]*entities.Formula, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Formula
	for _, f := range r.formulas {
		out = append(out, f.Clone())
	}
	return out, nil
}

func (r *fakeFormulaRepo) Put(_ context.Context, f *entities.Formula) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formulas[f.ID] = f.Clone()
	return nil
}

func (r *fakeFormulaRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.formulas, id)
	return nil
}

func (r *fakeFormulaRepo) Clear(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formulas = make(map[string]*entities.Formula)
	return nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*entities.Product
	puts     int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]*entities.Product)}
}

func (r *fakeProductRepo) GetAll(context.Context) ([]*entities.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Product
	for _, p := range r.products {
		dup := *p
		out = append(out, &dup)
	}
	return out, nil
}

func (r *fakeProductRepo) Put(_ context.Context, p *entities.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dup := *p
	r.products[p.ID] = &dup
	r.puts++
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) Clear(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = make(map[string]*entities.Product)
	return nil
}

type fakePrescriptionRepo struct {
	mu    sync.Mutex
	items map[string]*entities.SavedPrescription
}

func newFakePrescriptionRepo() *fakePrescriptionRepo {
	return &fakePrescriptionRepo{items: make(map[string]*entities.SavedPrescription)}
}

func (r *fakePrescriptionRepo) GetAll(context.Context) ([]*entities.SavedPrescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.SavedPrescription
	for _, item := range r.items {
		dup := *item
		out = append(out, &dup)
	}
	return out, nil
}

func (r *fakePrescriptionRepo) Put(_ context.Context, item *entities.SavedPrescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dup := *item
	r.items[item.ID] = &dup
	return nil
}

func (r *fakePrescriptionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *fakePrescriptionRepo) Clear(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = make(map[string]*entities.SavedPrescription)
	return nil
}

type fakeSettingsRepo struct {
	mu     sync.Mutex
	values map[string][]byte
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{values: make(map[string][]byte)}
}

func (r *fakeSettingsRepo) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	value, ok := r.values[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), value...), nil
}

func (r *fakeSettingsRepo) Set(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = append([]byte(nil), value...)
	return nil
}

func (r *fakeSettingsRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, key)
	return nil
}
