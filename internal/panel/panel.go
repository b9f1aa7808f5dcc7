// Package panel implements the resource panel: a unit that owns one entity
// collection, mirrors it from the remote API and edits it through a single
// shared form.
//
// Panel state is guarded by a mutex that is never held across a network
// call. Overlapping operations race and the last response applied wins.
// Results of operations started before a Rebind or Close are discarded.
package panel

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/tphakala/vocab-manager/internal/errors"
	"github.com/tphakala/vocab-manager/internal/logger"
	"github.com/tphakala/vocab-manager/internal/observability/metrics"
)

// DefaultMessageTTL is how long a success message stays visible.
const DefaultMessageTTL = 3 * time.Second

// Action names reported to the ActionRecorder.
const (
	ActionRefresh = "refresh"
	ActionSubmit  = "submit"
	ActionRemove  = "remove"
)

// Sentinel errors for operations the panel cannot perform.
var (
	ErrNotBound = errors.NewStd("panel has no scoping parent")
	ErrClosed   = errors.NewStd("panel is closed")
)

// Entity is a stored record exposing its identifier and editable fields.
type Entity[F any] interface {
	Key() int64
	Editable() F
}

// Fields is an editable field record with its required-field check.
type Fields interface {
	Validate() error
}

// Resource is the remote collection a panel is bound to.
type Resource[E Entity[F], F Fields] interface {
	List(ctx context.Context) ([]E, error)
	Create(ctx context.Context, fields F) (E, error)
	Update(ctx context.Context, id int64, fields F) (E, error)
	Delete(ctx context.Context, id int64) error
}

// Confirmer asks the user to confirm an irreversible action.
type Confirmer func(prompt string) bool

// Confirmed and Declined are fixed answers for callers that already know the user's choice.
var (
	Confirmed Confirmer = func(string) bool { return true }
	Declined  Confirmer = func(string) bool { return false }
)

// ActionRecorder receives one event per panel operation.
type ActionRecorder interface {
	RecordPanelAction(panel, action, status string)
}

// Messages are the user-facing texts of one panel. Format strings take the
// underlying error text.
type Messages struct {
	FetchError    string
	SaveError     string
	DeleteError   string
	Created       string
	Updated       string
	Deleted       string
	ConfirmDelete string
	NotBound      string // shown when a write is attempted without a scoping parent
}

// Options configure a panel.
type Options struct {
	MessageTTL time.Duration
	Logger     logger.Logger
	Actions    ActionRecorder
}

// Snapshot is a copy of the panel state for rendering.
type Snapshot[E any, F any] struct {
	Items          []E
	Form           F
	EditingID      int64
	Editing        bool
	Loading        bool
	ErrorMessage   string
	SuccessMessage string
	Bound          bool
	ScopeKey       int64
}

// Panel owns one resource collection and its form.
type Panel[E Entity[F], F Fields] struct {
	name     string
	messages Messages
	blank    func() F
	ttl      time.Duration
	log      logger.Logger
	actions  ActionRecorder

	mu          sync.Mutex
	resource    Resource[E, F]
	bound       bool
	scopeKey    int64
	scopeCtx    context.Context
	scopeCancel context.CancelFunc
	generation  uint64
	closed      bool

	items          []E
	form           F
	editingID      int64
	editing        bool
	pending        int
	errorMessage   string
	successMessage string
	successSeq     uint64
	successTimer   *time.Timer
}

// New creates a panel. A nil resource leaves the panel unbound until Rebind.
func New[E Entity[F], F Fields](name string, resource Resource[E, F], blank func() F, messages Messages, opts Options) *Panel[E, F] {
	if opts.MessageTTL <= 0 {
		opts.MessageTTL = DefaultMessageTTL
	}
	if opts.Logger == nil {
		opts.Logger = logger.Global("panel")
	}

	scopeCtx, scopeCancel := context.WithCancel(context.Background())
	return &Panel[E, F]{
		name:        name,
		messages:    messages,
		blank:       blank,
		ttl:         opts.MessageTTL,
		log:         opts.Logger.With(logger.String("panel", name)),
		actions:     opts.Actions,
		resource:    resource,
		bound:       resource != nil,
		scopeCtx:    scopeCtx,
		scopeCancel: scopeCancel,
		form:        blank(),
	}
}

// Name returns the panel name.
func (p *Panel[E, F]) Name() string { return p.name }

// ConfirmPrompt returns the question asked before Remove.
func (p *Panel[E, F]) ConfirmPrompt() string { return p.messages.ConfirmDelete }

// Snapshot returns a copy of the current state.
func (p *Panel[E, F]) Snapshot() Snapshot[E, F] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot[E, F]{
		Items:          slices.Clone(p.items),
		Form:           p.form,
		EditingID:      p.editingID,
		Editing:        p.editing,
		Loading:        p.pending > 0,
		ErrorMessage:   p.errorMessage,
		SuccessMessage: p.successMessage,
		Bound:          p.bound,
		ScopeKey:       p.scopeKey,
	}
}

// Mount resets the form, edit mode and messages, then refreshes.
func (p *Panel[E, F]) Mount(ctx context.Context) error {
	p.mu.Lock()
	p.form = p.blank()
	p.editing, p.editingID = false, 0
	p.errorMessage = ""
	p.clearSuccessLocked()
	p.mu.Unlock()

	return p.Refresh(ctx)
}

// Rebind switches the panel to a new scoping parent. When scopeKey differs
// from the current one, in-flight operations of the old parent are
// cancelled and their results ignored, and items and form are cleared. The
// list is then fetched for the new parent.
func (p *Panel[E, F]) Rebind(ctx context.Context, resource Resource[E, F], scopeKey int64) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	changed := !p.bound || p.scopeKey != scopeKey
	p.resource = resource
	p.bound = resource != nil
	if changed {
		p.scopeCancel()
		p.scopeCtx, p.scopeCancel = context.WithCancel(context.Background())
		p.generation++
		p.scopeKey = scopeKey
		p.items = nil
		p.form = p.blank()
		p.editing, p.editingID = false, 0
		p.pending = 0
		p.errorMessage = ""
		p.clearSuccessLocked()
	}
	p.mu.Unlock()

	if changed {
		p.log.Debug("panel rebound", logger.Int64("scope", scopeKey))
	}
	return p.Refresh(ctx)
}

// Refresh replaces the items with a fresh list from the resource. An
// unbound panel has nothing to list and returns nil.
func (p *Panel[E, F]) Refresh(ctx context.Context) error {
	op, err := p.begin(ctx)
	if errors.Is(err, ErrNotBound) {
		return nil
	}
	if err != nil {
		return err
	}
	defer op.end()

	items, err := op.resource.List(op.ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.currentLocked(op) {
		return nil
	}
	if err != nil {
		p.errorMessage = fmt.Sprintf(p.messages.FetchError, err.Error())
		p.record(ActionRefresh, err)
		return err
	}
	p.items = items
	p.record(ActionRefresh, nil)
	return nil
}

// Submit validates fields and creates a new entity, or updates the entity
// being edited. On success the form is reset and the list refreshed. On
// failure the form and edit mode are kept so the user can retry.
func (p *Panel[E, F]) Submit(ctx context.Context, fields F) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.form = fields
	if err := fields.Validate(); err != nil {
		p.errorMessage = err.Error()
		p.mu.Unlock()
		p.log.Debug("submit rejected", logger.Error(err))
		p.record(ActionSubmit, err)
		return err
	}
	editing, editingID := p.editing, p.editingID
	p.mu.Unlock()

	op, err := p.begin(ctx)
	if err != nil {
		p.failUnbound(ActionSubmit, err)
		return err
	}

	var success string
	if editing {
		_, err = op.resource.Update(op.ctx, editingID, fields)
		success = p.messages.Updated
	} else {
		_, err = op.resource.Create(op.ctx, fields)
		success = p.messages.Created
	}

	p.mu.Lock()
	if !p.currentLocked(op) {
		p.mu.Unlock()
		op.end()
		return nil
	}
	if err != nil {
		p.errorMessage = fmt.Sprintf(p.messages.SaveError, err.Error())
		p.mu.Unlock()
		op.end()
		p.record(ActionSubmit, err)
		return err
	}
	p.setSuccessLocked(success)
	p.form = p.blank()
	p.editing, p.editingID = false, 0
	p.mu.Unlock()
	op.end()

	p.record(ActionSubmit, nil)
	p.log.Info("entity saved", logger.Bool("update", editing), logger.Int64("id", editingID))
	return p.Refresh(ctx)
}

// BeginEdit copies the entity's fields into the form and enters edit mode.
func (p *Panel[E, F]) BeginEdit(entity E) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form = entity.Editable()
	p.editing, p.editingID = true, entity.Key()
}

// BeginEditByID enters edit mode for the listed item with id. It reports
// false when no such item is currently listed.
func (p *Panel[E, F]) BeginEditByID(id int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := slices.IndexFunc(p.items, func(e E) bool { return e.Key() == id })
	if idx < 0 {
		return false
	}
	p.form = p.items[idx].Editable()
	p.editing, p.editingID = true, id
	return true
}

// CancelEdit leaves edit mode and resets the form.
func (p *Panel[E, F]) CancelEdit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form = p.blank()
	p.editing, p.editingID = false, 0
}

// Remove deletes entity id after confirm approves the prompt. Without
// confirmation it does nothing.
func (p *Panel[E, F]) Remove(ctx context.Context, id int64, confirm Confirmer) error {
	if confirm == nil || !confirm(p.messages.ConfirmDelete) {
		return nil
	}

	op, err := p.begin(ctx)
	if err != nil {
		p.failUnbound(ActionRemove, err)
		return err
	}
	err = op.resource.Delete(op.ctx, id)

	p.mu.Lock()
	if !p.currentLocked(op) {
		p.mu.Unlock()
		op.end()
		return nil
	}
	if err != nil {
		p.errorMessage = fmt.Sprintf(p.messages.DeleteError, err.Error())
		p.mu.Unlock()
		op.end()
		p.record(ActionRemove, err)
		return err
	}
	p.setSuccessLocked(p.messages.Deleted)
	p.mu.Unlock()
	op.end()

	p.record(ActionRemove, nil)
	p.log.Info("entity deleted", logger.Int64("id", id))
	return p.Refresh(ctx)
}

// Close stops the message timer and cancels in-flight operations. Their
// results are discarded.
func (p *Panel[E, F]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.generation++
	p.scopeCancel()
	p.clearSuccessLocked()
}

// operation carries what a network call needs after the lock is released
type operation[E Entity[F], F Fields] struct {
	ctx        context.Context
	resource   Resource[E, F]
	generation uint64
	end        func()
}

// begin marks the panel loading, clears the error message and derives a
// context cancelled by either ctx or the panel scope
func (p *Panel[E, F]) begin(ctx context.Context) (*operation[E, F], error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	if !p.bound {
		p.mu.Unlock()
		return nil, ErrNotBound
	}
	p.pending++
	p.errorMessage = ""
	generation := p.generation
	resource := p.resource
	scope := p.scopeCtx
	p.mu.Unlock()

	opCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(scope, cancel)

	var once sync.Once
	return &operation[E, F]{
		ctx:        opCtx,
		resource:   resource,
		generation: generation,
		end: func() {
			once.Do(func() {
				stop()
				cancel()
				p.mu.Lock()
				if p.generation == generation && p.pending > 0 {
					p.pending--
				}
				p.mu.Unlock()
			})
		},
	}, nil
}

// failUnbound makes a write rejected for lack of a scoping parent visible
// through the error message.
func (p *Panel[E, F]) failUnbound(action string, err error) {
	if !errors.Is(err, ErrNotBound) {
		return
	}
	p.mu.Lock()
	p.errorMessage = p.messages.NotBound
	if p.errorMessage == "" {
		p.errorMessage = fmt.Sprintf(p.messages.SaveError, err.Error())
	}
	p.mu.Unlock()
	p.record(action, err)
}

func (p *Panel[E, F]) currentLocked(op *operation[E, F]) bool {
	return !p.closed && p.generation == op.generation
}

// setSuccessLocked shows msg and arms its expiry. Only the timer armed for
// the current message may clear it.
func (p *Panel[E, F]) setSuccessLocked(msg string) {
	p.clearSuccessLocked()
	p.successMessage = msg
	seq := p.successSeq
	p.successTimer = time.AfterFunc(p.ttl, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.successSeq == seq {
			p.successMessage = ""
			p.successTimer = nil
		}
	})
}

func (p *Panel[E, F]) clearSuccessLocked() {
	p.successSeq++
	p.successMessage = ""
	if p.successTimer != nil {
		p.successTimer.Stop()
		p.successTimer = nil
	}
}

func (p *Panel[E, F]) record(action string, err error) {
	if p.actions == nil {
		return
	}
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}
	p.actions.RecordPanelAction(p.name, action, status)
}
