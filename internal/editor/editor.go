// Package editor holds the client-side state of the editable table: the
// rows last fetched from the API, sorting, the global filter, row
// selection, per-row edit buffers and the draft of a row being added.
//
// Edits are staged. BeginEdit copies a row into a buffer, SetField changes
// only that buffer, and the displayed row is replaced only after the server
// accepts Save. Cancel discards the buffer. A failed API call leaves every
// piece of state as it was and is reported through the Notifier.
//
// A Model is meant to be driven from a single UI goroutine and does no
// locking of its own.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aanand-mishra/table-api/internal/types"
)

// Notification messages shown after API calls.
const (
	MsgFetchFailed  = "Error fetching data..."
	MsgAdded        = "Row added successfully!"
	MsgAddFailed    = "Error adding row!"
	MsgUpdated      = "Row updated successfully!"
	MsgUpdateFailed = "Error updating row!"
	MsgDeleted      = "Row deleted successfully!"
	MsgDeleteFailed = "Error deleting row!"
)

var (
	ErrUnknownRow   = errors.New("editor: unknown row")
	ErrNotEditing   = errors.New("editor: row is not being edited")
	ErrNoDraft      = errors.New("editor: no draft row")
	ErrUnknownField = errors.New("editor: unknown column")
)

// API is the server surface the model drives. *client.Client satisfies it.
type API interface {
	List(ctx context.Context) ([]types.Row, error)
	Create(ctx context.Context, row types.Row) (types.Row, error)
	Update(ctx context.Context, id string, newData types.Row) (types.Row, error)
	Delete(ctx context.Context, id string) error
}

// Notifier surfaces transient messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Option configures a Model.
type Option func(*Model)

// WithClock overrides the clock used for the draft's default birth date.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

type Model struct {
	api    API
	notify Notifier
	now    func() time.Time

	rows     []types.Row
	sorting  Sorting
	filter   string
	selected map[string]bool
	edits    map[string]*types.Row
	draft    *types.Row
}

// New builds a model over api. A nil notify logs through slog.Default.
func New(api API, notify Notifier, opts ...Option) *Model {
	if notify == nil {
		notify = LogNotifier{}
	}
	m := &Model{
		api:      api,
		notify:   notify,
		now:      time.Now,
		rows:     make([]types.Row, 0),
		selected: make(map[string]bool),
		edits:    make(map[string]*types.Row),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load replaces the rows with the server's current list.
func (m *Model) Load(ctx context.Context) error {
	all, err := m.api.List(ctx)
	if err != nil {
		m.notify.Error(MsgFetchFailed)
		return fmt.Errorf("Load: %w", err)
	}
	m.rows = all
	m.prune()
	return nil
}

// Rows returns the loaded rows in server order, ignoring sort and filter.
func (m *Model) Rows() []types.Row {
	out := make([]types.Row, len(m.rows))
	copy(out, m.rows)
	return out
}

// Select marks or unmarks a row as selected.
func (m *Model) Select(id string, on bool) error {
	if m.indexOf(id) == -1 {
		return ErrUnknownRow
	}
	if on {
		m.selected[id] = true
	} else {
		delete(m.selected, id)
	}
	return nil
}

// SelectAll selects every visible row, or clears the selection.
func (m *Model) SelectAll(on bool) {
	if !on {
		m.selected = make(map[string]bool)
		return
	}
	for _, row := range m.Visible() {
		m.selected[row.ID] = true
	}
}

func (m *Model) IsSelected(id string) bool { return m.selected[id] }

// SelectedIDs returns the selected ids in display order.
func (m *Model) SelectedIDs() []string {
	ids := make([]string, 0, len(m.selected))
	for _, row := range m.Visible() {
		if m.selected[row.ID] {
			ids = append(ids, row.ID)
		}
	}
	return ids
}

// BeginEdit opens an edit buffer holding a copy of the row. Calling it on a
// row already being edited keeps the existing buffer.
func (m *Model) BeginEdit(id string) error {
	i := m.indexOf(id)
	if i == -1 {
		return ErrUnknownRow
	}
	if _, ok := m.edits[id]; ok {
		return nil
	}
	buf := m.rows[i]
	m.edits[id] = &buf
	return nil
}

// Editing reports the staged values for a row under edit.
func (m *Model) Editing(id string) (types.Row, bool) {
	buf, ok := m.edits[id]
	if !ok {
		return types.Row{}, false
	}
	return *buf, true
}

// SetField changes one column of the edit buffer.
func (m *Model) SetField(id string, col Column, value string) error {
	buf, ok := m.edits[id]
	if !ok {
		return ErrNotEditing
	}
	return setField(buf, col, value)
}

// Cancel discards the edit buffer; the displayed row never changed.
func (m *Model) Cancel(id string) {
	delete(m.edits, id)
}

// Save sends the edit buffer to the server. On success the displayed row
// becomes the server's stored row and the buffer closes.
func (m *Model) Save(ctx context.Context, id string) error {
	buf, ok := m.edits[id]
	if !ok {
		return ErrNotEditing
	}

	stored, err := m.api.Update(ctx, id, *buf)
	if err != nil {
		m.notify.Error(MsgUpdateFailed)
		return fmt.Errorf("Save: %w", err)
	}

	if i := m.indexOf(id); i != -1 {
		m.rows[i] = stored
	}
	delete(m.edits, id)
	m.notify.Success(MsgUpdated)
	return nil
}

// StartDraft opens a new-row draft prefilled with defaults. An open draft
// is kept.
func (m *Model) StartDraft() types.Row {
	if m.draft == nil {
		m.draft = &types.Row{
			Age:       0,
			BirthDate: m.now().Format(types.DateLayout),
			Education: types.EducationOptions[0],
		}
	}
	return *m.draft
}

// Draft returns the row being added, if any.
func (m *Model) Draft() (types.Row, bool) {
	if m.draft == nil {
		return types.Row{}, false
	}
	return *m.draft, true
}

func (m *Model) SetDraftField(col Column, value string) error {
	if m.draft == nil {
		return ErrNoDraft
	}
	return setField(m.draft, col, value)
}

func (m *Model) DiscardDraft() { m.draft = nil }

// AddDraft posts the draft. On success the created row is appended and the
// draft closes; on failure the draft stays open for correction.
func (m *Model) AddDraft(ctx context.Context) error {
	if m.draft == nil {
		return ErrNoDraft
	}

	created, err := m.api.Create(ctx, *m.draft)
	if err != nil {
		m.notify.Error(MsgAddFailed)
		return fmt.Errorf("AddDraft: %w", err)
	}

	m.rows = append(m.rows, created)
	m.draft = nil
	m.notify.Success(MsgAdded)
	return nil
}

// Delete removes a row on the server, then locally.
func (m *Model) Delete(ctx context.Context, id string) error {
	if err := m.api.Delete(ctx, id); err != nil {
		m.notify.Error(MsgDeleteFailed)
		return fmt.Errorf("Delete: %w", err)
	}

	if i := m.indexOf(id); i != -1 {
		m.rows = append(m.rows[:i], m.rows[i+1:]...)
	}
	delete(m.edits, id)
	delete(m.selected, id)
	m.notify.Success(MsgDeleted)
	return nil
}

func (m *Model) indexOf(id string) int {
	for i, row := range m.rows {
		if row.ID == id {
			return i
		}
	}
	return -1
}

// prune drops buffers and selections for rows that no longer exist.
func (m *Model) prune() {
	for id := range m.edits {
		if m.indexOf(id) == -1 {
			delete(m.edits, id)
		}
	}
	for id := range m.selected {
		if m.indexOf(id) == -1 {
			delete(m.selected, id)
		}
	}
}

func setField(row *types.Row, col Column, value string) error {
	switch col {
	case ColumnName:
		row.Name = value
	case ColumnAge:
		value = strings.TrimSpace(value)
		if value == "" {
			row.Age = 0
			return nil
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("editor: age %q is not a whole number", value)
		}
		row.Age = types.Age(n)
	case ColumnGender:
		row.Gender = value
	case ColumnCity:
		row.City = value
	case ColumnBirthDate:
		if _, err := time.Parse(types.DateLayout, value); err != nil {
			return fmt.Errorf("editor: birth date %q is not YYYY-MM-DD", value)
		}
		row.BirthDate = value
	case ColumnEducation:
		row.Education = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, col)
	}
	return nil
}

// sortRows orders rows in place by the given sorting; SortNone keeps the
// server order.
func sortRows(rows []types.Row, s Sorting) {
	if s.Direction == SortNone {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		c := compare(rows[i], rows[j], s.Column)
		if s.Direction == SortDesc {
			return c > 0
		}
		return c < 0
	})
}
