// Package browser is the client-side diff browser. It fetches the full
// change-set between two snapshots once and then searches, filters, groups
// and pages it locally.
package browser

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/yairfalse/apidrift/internal/api"
	"github.com/yairfalse/apidrift/internal/errors"
	"github.com/yairfalse/apidrift/internal/logger"
	"github.com/yairfalse/apidrift/pkg/types"
)

// State is the fetch state of the browser
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateError   State = "error"
)

// ErrSuperseded is returned by a load whose result was discarded because a
// newer load started after it
var ErrSuperseded = stderrors.New("load superseded by a newer request")

// Fetcher loads a change-set
type Fetcher interface {
	Diff(ctx context.Context, q api.DiffQuery) (*types.DiffResponse, error)
}

// Options configures a Browser
type Options struct {
	PageSize       int
	Display        DisplayOptions
	SearchDebounce time.Duration
	Copier         Copier
}

// DefaultOptions matches the config defaults
func DefaultOptions() Options {
	return Options{
		PageSize:       20,
		Display:        DefaultDisplayOptions(),
		SearchDebounce: 300 * time.Millisecond,
	}
}

// TypeCounts counts the loaded changes per type, ignoring filters
type TypeCounts struct {
	Added    int `json:"added" yaml:"added"`
	Deleted  int `json:"deleted" yaml:"deleted"`
	Modified int `json:"modified" yaml:"modified"`
}

// View is a consistent copy of what the browser shows
type View struct {
	State      State          `json:"state" yaml:"state"`
	Query      api.DiffQuery  `json:"-" yaml:"-"`
	Err        error          `json:"-" yaml:"-"`
	Criteria   Criteria       `json:"criteria" yaml:"criteria"`
	Total      int            `json:"total" yaml:"total"`
	Visible    int            `json:"visible" yaml:"visible"`
	Counts     TypeCounts     `json:"counts" yaml:"counts"`
	Page       int            `json:"page" yaml:"page"`
	PageSize   int            `json:"page_size" yaml:"page_size"`
	TotalPages int            `json:"total_pages" yaml:"total_pages"`
	Items      []types.Change `json:"items" yaml:"items"`
	Groups     []Group        `json:"groups,omitempty" yaml:"groups,omitempty"`
	SelectedID string         `json:"selected_id,omitempty" yaml:"selected_id,omitempty"`
}

// Browser is the diff browser state machine
type Browser struct {
	fetcher   Fetcher
	log       logger.Logger
	opts      Options
	debouncer *Debouncer

	mu             sync.Mutex
	state          State
	query          api.DiffQuery
	hasQuery       bool
	identity       string
	changes        []types.Change
	err            error
	criteria       Criteria
	visible        []types.Change
	page           int
	selectedID     string
	expandedGroups map[string]bool
	expandedValues map[string]bool
	seq            uint64
	cancel         context.CancelFunc
}

// New creates an idle browser
func New(fetcher Fetcher, opts Options, log logger.Logger) *Browser {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultOptions().PageSize
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Browser{
		fetcher:        fetcher,
		log:            log.WithField("component", "browser"),
		opts:           opts,
		debouncer:      NewDebouncer(opts.SearchDebounce),
		state:          StateIdle,
		criteria:       DefaultCriteria(),
		page:           1,
		expandedGroups: make(map[string]bool),
		expandedValues: make(map[string]bool),
	}
}

// Load fetches the change-set for a snapshot pair. A newer Load cancels an
// older one still in flight, and the older result is discarded.
func (b *Browser) Load(ctx context.Context, q api.DiffQuery) error {
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	b.seq++
	seq := b.seq
	b.cancel = cancel
	b.state = StateLoading
	b.query = q
	b.hasQuery = true
	b.err = nil
	b.mu.Unlock()

	log := b.log.WithFields(map[string]interface{}{
		"collection_id":   q.CollectionID,
		"old_snapshot_id": q.OldSnapshotID,
		"new_snapshot_id": q.NewSnapshotID,
		"seq":             seq,
	})

	diff, err := b.fetcher.Diff(loadCtx, q)

	b.mu.Lock()
	defer b.mu.Unlock()

	if seq != b.seq {
		cancel()
		log.Debug("discarding stale diff response")
		return ErrSuperseded
	}
	b.cancel = nil
	cancel()

	if err != nil {
		b.state = StateError
		b.err = err
		log.Error("failed to load diff", err)
		return err
	}

	checkInvariants(diff, log)

	identity := q.CollectionID + "\x00" + q.OldSnapshotID + "\x00" + q.NewSnapshotID
	changed := identity != b.identity

	b.state = StateLoaded
	b.identity = identity
	b.changes = diff.Changes
	b.refilter()

	if changed {
		b.page = 1
		b.expandedValues = make(map[string]bool)
		b.selectFirstVisible()
	} else {
		b.clampPage()
		if b.indexOf(b.selectedID) < 0 {
			b.selectFirstOnPage()
		}
	}

	log.WithField("changes", len(diff.Changes)).Info("diff loaded")
	return nil
}

// Retry re-issues the last request
func (b *Browser) Retry(ctx context.Context) error {
	b.mu.Lock()
	q, ok := b.query, b.hasQuery
	b.mu.Unlock()

	if !ok {
		return errors.ValidationError("Nothing to retry: no snapshot pair selected")
	}
	return b.Load(ctx, q)
}

// Cancel aborts the load in flight, if any
func (b *Browser) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.debouncer.Stop()
}

// SetSearch applies a search term immediately
func (b *Browser) SetSearch(term string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.criteria.Search == term {
		return
	}
	b.criteria.Search = term
	b.criteriaChanged()
}

// QueueSearch applies a search term once typing settles
func (b *Browser) QueueSearch(term string) {
	b.debouncer.Trigger(func() { b.SetSearch(term) })
}

// FlushSearch applies a queued search term now
func (b *Browser) FlushSearch() {
	b.debouncer.Flush()
}

// SetTypeFilter restricts the list to one change type
func (b *Browser) SetTypeFilter(f TypeFilter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if f == "" {
		f = FilterAll
	}
	if b.criteria.Type == f {
		return
	}
	b.criteria.Type = f
	b.criteriaChanged()
}

// SetGroupBy changes the grouping. Group expansion is kept by label.
func (b *Browser) SetGroupBy(g GroupBy) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if g == "" {
		g = GroupNone
	}
	if b.criteria.GroupBy == g {
		return
	}
	b.criteria.GroupBy = g
	b.criteriaChanged()
}

// ToggleGroup flips a group between expanded and collapsed
func (b *Browser) ToggleGroup(label string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.expandedGroups[label] {
		delete(b.expandedGroups, label)
	} else {
		b.expandedGroups[label] = true
	}
}

// IsGroupExpanded reports whether the group with label is expanded
func (b *Browser) IsGroupExpanded(label string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.expandedGroups[label]
}

// SetPage moves to page. Pages outside [1, TotalPages] are ignored.
func (b *Browser) SetPage(page int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if page < 1 || page > PageCount(len(b.visible), b.opts.PageSize) || page == b.page {
		return false
	}
	b.page = page
	b.selectFirstOnPage()
	return true
}

// NextPage moves one page forward
func (b *Browser) NextPage() bool {
	b.mu.Lock()
	page := b.page
	b.mu.Unlock()
	return b.SetPage(page + 1)
}

// PrevPage moves one page back
func (b *Browser) PrevPage() bool {
	b.mu.Lock()
	page := b.page
	b.mu.Unlock()
	return b.SetPage(page - 1)
}

// Select picks a visible change by id. The page follows the selection.
func (b *Browser) Select(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(id)
	if i < 0 {
		return false
	}
	b.selectIndex(i)
	return true
}

// Next selects the following change in the visible list. It does not wrap.
func (b *Browser) Next() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(b.selectedID)
	if i < 0 || i+1 >= len(b.visible) {
		return false
	}
	b.selectIndex(i + 1)
	return true
}

// Prev selects the preceding change in the visible list. It does not wrap.
func (b *Browser) Prev() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(b.selectedID)
	if i <= 0 {
		return false
	}
	b.selectIndex(i - 1)
	return true
}

// Selected returns the selected change
func (b *Browser) Selected() (types.Change, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(b.selectedID)
	if i < 0 {
		return types.Change{}, false
	}
	return b.visible[i], true
}

// Detail returns the detail pane of the selected change
func (b *Browser) Detail() (Detail, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(b.selectedID)
	if i < 0 {
		return Detail{}, false
	}
	c := b.visible[i]
	return BuildDetail(c, b.opts.Display, func(side Side) bool {
		return b.expandedValues[valueKey(c.ID, side)]
	}), true
}

// ToggleValue expands or collapses a large value of the selected change
func (b *Browser) ToggleValue(side Side) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.selectedID == "" {
		return false
	}
	key := valueKey(b.selectedID, side)
	if b.expandedValues[key] {
		delete(b.expandedValues, key)
	} else {
		b.expandedValues[key] = true
	}
	return true
}

// Copy puts one full value of the selected change on the clipboard.
// Failures are logged and otherwise ignored.
func (b *Browser) Copy(side Side) {
	d, ok := b.Detail()
	if !ok {
		return
	}
	p, ok := d.Panel(side)
	if !ok {
		return
	}
	if b.opts.Copier == nil {
		b.log.Debug("no clipboard available")
		return
	}
	if err := b.opts.Copier.Copy(p.Value.String()); err != nil {
		b.log.WithField("change_id", d.Change.ID).Error("copy to clipboard failed", err)
	}
}

// View returns a copy of the current state
func (b *Browser) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := Paginate(b.visible, b.page, b.opts.PageSize)
	v := View{
		State:      b.state,
		Query:      b.query,
		Err:        b.err,
		Criteria:   b.criteria,
		Total:      len(b.changes),
		Visible:    len(b.visible),
		Counts:     countTypes(b.changes),
		Page:       b.page,
		PageSize:   b.opts.PageSize,
		TotalPages: PageCount(len(b.visible), b.opts.PageSize),
		Items:      append([]types.Change(nil), items...),
		SelectedID: b.selectedID,
	}
	if b.criteria.GroupBy != GroupNone {
		totals := make(map[string]int)
		for _, g := range GroupChanges(b.visible, b.criteria.GroupBy) {
			totals[g.Label] = g.Total
		}
		v.Groups = GroupChanges(items, b.criteria.GroupBy)
		for i := range v.Groups {
			v.Groups[i].Total = totals[v.Groups[i].Label]
			v.Groups[i].Expanded = b.expandedGroups[v.Groups[i].Label]
		}
	}
	return v
}

// Close stops pending work
func (b *Browser) Close() {
	b.Cancel()
}

// criteriaChanged resets paging and selection. Callers hold mu.
func (b *Browser) criteriaChanged() {
	b.refilter()
	b.page = 1
	b.selectFirstVisible()
}

func (b *Browser) refilter() {
	b.visible = Order(Filter(b.changes, b.criteria.Search, b.criteria.Type), b.criteria.GroupBy)
}

func (b *Browser) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range b.visible {
		if b.visible[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *Browser) selectIndex(i int) {
	b.selectedID = b.visible[i].ID
	b.page = i/b.opts.PageSize + 1
}

func (b *Browser) selectFirstVisible() {
	if len(b.visible) == 0 {
		b.selectedID = ""
		return
	}
	b.selectedID = b.visible[0].ID
}

func (b *Browser) selectFirstOnPage() {
	items := Paginate(b.visible, b.page, b.opts.PageSize)
	if len(items) == 0 {
		b.selectedID = ""
		return
	}
	b.selectedID = items[0].ID
}

func (b *Browser) clampPage() {
	pages := PageCount(len(b.visible), b.opts.PageSize)
	if b.page > pages {
		b.page = pages
	}
	if b.page < 1 {
		b.page = 1
	}
}

func valueKey(changeID string, side Side) string {
	return changeID + "/" + string(side)
}

func countTypes(changes []types.Change) TypeCounts {
	var c TypeCounts
	for i := range changes {
		switch changes[i].ChangeType {
		case types.ChangeTypeAdded:
			c.Added++
		case types.ChangeTypeDeleted:
			c.Deleted++
		case types.ChangeTypeModified:
			c.Modified++
		}
	}
	return c
}

// checkInvariants logs data-model violations. The backend owns the data, so
// nothing is rejected.
func checkInvariants(diff *types.DiffResponse, log logger.Logger) {
	for i := range diff.Changes {
		c := &diff.Changes[i]
		if err := c.CheckInvariants(); err != nil {
			log.WithField("change_id", c.ID).Warn(err.Error())
		}
		if diff.CollectionID != "" && c.CollectionID != "" && c.CollectionID != diff.CollectionID {
			log.WithFields(map[string]interface{}{
				"change_id":     c.ID,
				"collection_id": c.CollectionID,
			}).Warn("change belongs to a different collection than the diff")
		}
	}
}
