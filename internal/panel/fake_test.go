package panel

import (
	"context"
	"slices"
	"sync"

	"github.com/tphakala/vocab-manager/internal/errors"
	"github.com/tphakala/vocab-manager/internal/model"
)

// fakeLanguages is an in-memory language store counting calls per method.
type fakeLanguages struct {
	mu     sync.Mutex
	rows   []model.Language
	nextID int64
	calls  map[string]int

	// failWith makes the next calls fail
	failWith error
	// gate blocks List until a value is received, when non-nil
	gate chan struct{}
}

func newFakeLanguages(rows ...model.Language) *fakeLanguages {
	f := &fakeLanguages{calls: map[string]int{}, nextID: 1}
	for _, r := range rows {
		if r.ID >= f.nextID {
			f.nextID = r.ID + 1
		}
		f.rows = append(f.rows, r)
	}
	return f
}

func (f *fakeLanguages) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeLanguages) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeLanguages) enter(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	return f.failWith
}

func (f *fakeLanguages) setFailure(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith = err
}

func (f *fakeLanguages) List(ctx context.Context) ([]model.Language, error) {
	if err := f.enter("list"); err != nil {
		return nil, err
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.rows), nil
}

func (f *fakeLanguages) Create(_ context.Context, fields model.LanguageFields) (model.Language, error) {
	if err := f.enter("create"); err != nil {
		return model.Language{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	row := model.Language{ID: f.nextID, LanguageFields: fields}
	f.nextID++
	f.rows = append(f.rows, row)
	return row, nil
}

func (f *fakeLanguages) Update(_ context.Context, id int64, fields model.LanguageFields) (model.Language, error) {
	if err := f.enter("update"); err != nil {
		return model.Language{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].LanguageFields = fields
			return f.rows[i], nil
		}
	}
	return model.Language{}, errors.NewStd("request failed with status code 404")
}

func (f *fakeLanguages) Delete(_ context.Context, id int64) error {
	if err := f.enter("delete"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := slices.IndexFunc(f.rows, func(l model.Language) bool { return l.ID == id })
	if idx < 0 {
		return errors.NewStd("request failed with status code 404")
	}
	f.rows = slices.Delete(f.rows, idx, idx+1)
	return nil
}

// fakeEntries is an in-memory entry store for one language.
type fakeEntries struct {
	languageID int64
	mu         sync.Mutex
	rows       []model.VocabularyEntry
	lists      int
	gate       chan struct{}
}

func (f *fakeEntries) List(ctx context.Context) ([]model.VocabularyEntry, error) {
	f.mu.Lock()
	f.lists++
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.rows), nil
}

func (f *fakeEntries) Create(_ context.Context, fields model.EntryFields) (model.VocabularyEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row := model.VocabularyEntry{ID: int64(len(f.rows) + 1), LanguageID: f.languageID, EntryFields: fields}
	f.rows = append(f.rows, row)
	return row, nil
}

func (f *fakeEntries) Update(context.Context, int64, model.EntryFields) (model.VocabularyEntry, error) {
	return model.VocabularyEntry{}, errors.NewStd("not implemented")
}

func (f *fakeEntries) Delete(context.Context, int64) error {
	return errors.NewStd("not implemented")
}

func (f *fakeEntries) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}
