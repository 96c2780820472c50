package resource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrBusy is returned when another operation is in flight. The call had
	// no side effect.
	ErrBusy = errors.New("resource: another operation is in flight")
	// ErrInvalidPage is returned for page numbers below 1 or page sizes below 1.
	ErrInvalidPage = errors.New("resource: invalid page")
	// ErrNoDeleteRequested is returned by ConfirmDelete when no confirmation is open.
	ErrNoDeleteRequested = errors.New("resource: no delete requested")
	// ErrEmptyID is returned when an update or delete names no resource.
	ErrEmptyID = errors.New("resource: empty id")
)

// DefaultPageSize is used when a Manager is built without WithPageSize.
const DefaultPageSize = 10

// Snapshot is the read side of the view contract: a consistent copy of the
// manager state taken under its lock.
type Snapshot[T any] struct {
	Items        []T
	Page         Page[T]
	Metadata     Metadata
	Pending      PendingOperation
	LastError    error
	Confirmation DeleteConfirmation
}

// Controller is the command side of the view contract. *Manager implements it.
type Controller[T Identifiable, P any] interface {
	LoadPage(ctx context.Context, n int) error
	Create(ctx context.Context, payload P) (T, error)
	Update(ctx context.Context, id string, payload P) (T, error)
	RequestDelete(id string) error
	ConfirmDelete(ctx context.Context) error
	CancelDelete() error
	SetPageSize(ctx context.Context, size int) error
	Snapshot() Snapshot[T]
}

var _ Controller[Identifiable, any] = (*Manager[Identifiable, any])(nil)

// Manager owns the list state of one resource page.
//
// At most one operation is in flight. Client calls happen without the lock
// held; a call that arrives while another is pending returns ErrBusy.
// Successful mutations refetch the current page before releasing the slot, so
// the list always reflects the server after a mutation completes.
type Manager[T Identifiable, P any] struct {
	client   Client[T, P]
	labels   Labels
	notifier Notifier
	logger   *zap.Logger

	mu         sync.Mutex
	pending    PendingOperation
	page       Page[T]
	pageNumber int
	pageSize   int
	lastErr    error
	confirm    DeleteConfirmation
}

// Option configures a Manager.
type Option func(*options)

type options struct {
	pageSize int
	notifier Notifier
	logger   *zap.Logger
}

func WithPageSize(n int) Option { return func(o *options) { o.pageSize = n } }

func WithNotifier(n Notifier) Option { return func(o *options) { o.notifier = n } }

func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

// NewManager returns an idle manager on page 1 with an empty page. Nothing is
// fetched until LoadPage is called.
func NewManager[T Identifiable, P any](client Client[T, P], labels Labels, opts ...Option) *Manager[T, P] {
	o := options{pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.pageSize < 1 {
		o.pageSize = DefaultPageSize
	}
	if o.notifier == nil {
		o.notifier = nopNotifier{}
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return &Manager[T, P]{
		client:     client,
		labels:     labels,
		notifier:   o.notifier,
		logger:     o.logger.With(zap.String("resource", labels.Plural)),
		pending:    Idle,
		page:       Page[T]{Items: []T{}, PageNumber: 1, PageSize: o.pageSize},
		pageNumber: 1,
		pageSize:   o.pageSize,
	}
}

// Client returns the client the manager dispatches to. Detail views use it
// for Get.
func (m *Manager[T, P]) Client() Client[T, P] { return m.client }

func (m *Manager[T, P]) Labels() Labels { return m.labels }

// Snapshot returns a copy of the current state.
func (m *Manager[T, P]) Snapshot() Snapshot[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	page := m.page
	page.Items = append([]T(nil), m.page.Items...)
	return Snapshot[T]{
		Items:        page.Items,
		Page:         page,
		Metadata:     page.Metadata(),
		Pending:      m.pending,
		LastError:    m.lastErr,
		Confirmation: m.confirm,
	}
}

// begin claims the in-flight slot.
func (m *Manager[T, P]) begin(op PendingOperation) bool {
	if !m.pending.IsIdle() {
		return false
	}
	m.pending = op
	return true
}

// LoadPage fetches page n and replaces the current page with it.
func (m *Manager[T, P]) LoadPage(ctx context.Context, n int) error {
	if n < 1 {
		return ErrInvalidPage
	}
	m.mu.Lock()
	if !m.begin(Fetching()) {
		m.mu.Unlock()
		return ErrBusy
	}
	size := m.pageSize
	m.mu.Unlock()

	err := m.fetch(ctx, n, size)
	if err != nil {
		m.notifier.Notify(NotifyError, fmt.Sprintf("Failed to fetch %s", m.labels.Plural))
		return err
	}
	m.notifier.Notify(NotifySuccess, m.loadedMessage())
	return nil
}

// SetPageSize changes the page size and loads page 1.
func (m *Manager[T, P]) SetPageSize(ctx context.Context, size int) error {
	if size < 1 {
		return ErrInvalidPage
	}
	m.mu.Lock()
	if !m.begin(Fetching()) {
		m.mu.Unlock()
		return ErrBusy
	}
	m.pageSize = size
	m.mu.Unlock()

	if err := m.fetch(ctx, 1, size); err != nil {
		m.notifier.Notify(NotifyError, fmt.Sprintf("Failed to fetch %s", m.labels.Plural))
		return err
	}
	m.notifier.Notify(NotifySuccess, m.loadedMessage())
	return nil
}

// fetch runs a List call for a slot already claimed as Fetching and releases
// the slot when done.
func (m *Manager[T, P]) fetch(ctx context.Context, n, size int) error {
	page, err := m.client.List(ctx, n, size)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = Idle
	if err != nil {
		m.lastErr = err
		m.logger.Warn("list failed", zap.Int("page", n), zap.Error(err))
		return err
	}
	page = page.Clamp()
	if page.Items == nil {
		page.Items = []T{}
	}
	page.PageNumber = n
	page.PageSize = size
	m.page = page
	m.pageNumber = n
	m.lastErr = nil
	m.logger.Debug("page loaded",
		zap.Int("page", n),
		zap.Int("items", len(page.Items)),
		zap.Int("total", page.TotalItems))
	return nil
}

// refetch moves a held mutation slot to Fetching and reloads the current page.
func (m *Manager[T, P]) refetch(ctx context.Context) {
	m.mu.Lock()
	m.pending = Fetching()
	n, size := m.pageNumber, m.pageSize
	m.mu.Unlock()
	if err := m.fetch(ctx, n, size); err != nil {
		m.notifier.Notify(NotifyError, fmt.Sprintf("Failed to fetch %s", m.labels.Plural))
	}
}

// fail records err and releases the slot.
func (m *Manager[T, P]) fail(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.pending = Idle
	m.mu.Unlock()
}

// Create sends payload to the client. On success the current page is
// refetched. A ValidationError is returned to the caller and the list is left
// untouched.
func (m *Manager[T, P]) Create(ctx context.Context, payload P) (T, error) {
	var zero T
	m.mu.Lock()
	if !m.begin(Creating()) {
		m.mu.Unlock()
		return zero, ErrBusy
	}
	m.mu.Unlock()

	item, err := m.client.Create(ctx, payload)
	if err != nil {
		m.fail(err)
		m.logger.Warn("create failed", zap.Error(err))
		m.notifier.Notify(NotifyError, m.failureMessage("create", err))
		return zero, err
	}
	m.logger.Info("created", zap.String("id", item.ResourceID()))
	m.notifier.Notify(NotifySuccess, fmt.Sprintf("%s created successfully", m.labels.Singular))
	m.refetch(ctx)
	return item, nil
}

// Update sends payload for id. Same policy as Create.
func (m *Manager[T, P]) Update(ctx context.Context, id string, payload P) (T, error) {
	var zero T
	if id == "" {
		return zero, ErrEmptyID
	}
	m.mu.Lock()
	if !m.begin(Updating(id)) {
		m.mu.Unlock()
		return zero, ErrBusy
	}
	m.mu.Unlock()

	item, err := m.client.Update(ctx, id, payload)
	if err != nil {
		m.fail(err)
		m.logger.Warn("update failed", zap.String("id", id), zap.Error(err))
		m.notifier.Notify(NotifyError, m.failureMessage("update", err))
		return zero, err
	}
	m.logger.Info("updated", zap.String("id", id))
	m.notifier.Notify(NotifySuccess, fmt.Sprintf("%s updated successfully", m.labels.Singular))
	m.refetch(ctx)
	return item, nil
}

// RequestDelete opens the confirmation for id. The client is not called.
// A different target replaces an open confirmation unless a delete is running.
func (m *Manager[T, P]) RequestDelete(id string) error {
	if id == "" {
		return ErrEmptyID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending.Op == OpDeleting {
		return ErrBusy
	}
	m.confirm.open(id)
	return nil
}

// CancelDelete closes the confirmation. Not allowed while the delete runs.
func (m *Manager[T, P]) CancelDelete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending.Op == OpDeleting {
		return ErrBusy
	}
	m.confirm.close()
	return nil
}

// ConfirmDelete deletes the confirmed target. Without an open confirmation it
// does nothing and returns ErrNoDeleteRequested. The confirmation is closed
// whether the delete succeeds or fails; on success the current page is
// refetched even if it is now empty.
func (m *Manager[T, P]) ConfirmDelete(ctx context.Context) error {
	m.mu.Lock()
	if !m.confirm.Open {
		m.mu.Unlock()
		return ErrNoDeleteRequested
	}
	id := m.confirm.TargetID
	if !m.begin(Deleting(id)) {
		m.mu.Unlock()
		return ErrBusy
	}
	m.mu.Unlock()

	err := m.client.Delete(ctx, id)

	m.mu.Lock()
	m.confirm.close()
	m.mu.Unlock()

	if err != nil {
		m.fail(err)
		m.logger.Warn("delete failed", zap.String("id", id), zap.Error(err))
		m.notifier.Notify(NotifyError, m.failureMessage("delete", err))
		return err
	}
	m.logger.Info("deleted", zap.String("id", id))
	m.notifier.Notify(NotifySuccess, fmt.Sprintf("%s deleted successfully", m.labels.Singular))
	m.refetch(ctx)
	return nil
}

func (m *Manager[T, P]) loadedMessage() string {
	s := m.Snapshot()
	if s.Metadata.TotalPages == 0 {
		return fmt.Sprintf("No %s found", m.labels.Plural)
	}
	return fmt.Sprintf("%s: page %d of %d", capitalize(m.labels.Plural), s.Metadata.PageNumber, s.Metadata.TotalPages)
}

func (m *Manager[T, P]) failureMessage(verb string, err error) string {
	msg := fmt.Sprintf("Failed to %s %s", verb, strings.ToLower(m.labels.Singular))
	if IsValidation(err) {
		return msg + ": please fix the highlighted fields"
	}
	if detail := Message(err); detail != "" {
		return msg + ": " + detail
	}
	return msg
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
