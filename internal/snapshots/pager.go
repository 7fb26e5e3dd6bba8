// Package snapshots pages through a collection's snapshot history and
// captures new snapshots on demand.
package snapshots

import (
	"context"
	"strings"
	"sync"

	"github.com/yairfalse/apidrift/internal/errors"
	"github.com/yairfalse/apidrift/internal/logger"
	"github.com/yairfalse/apidrift/pkg/types"
)

// State is the fetch state of a pager
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateError   State = "error"
)

// Backend is what the pager needs from the API client
type Backend interface {
	ListSnapshots(ctx context.Context, collectionID string, page, pageSize int) (*types.SnapshotPage, error)
	SaveCollection(ctx context.Context, req types.SaveCollectionRequest) (*types.Collection, error)
}

// View is a consistent copy of the pager state
type View struct {
	State      State            `json:"state" yaml:"state"`
	Page       int              `json:"page" yaml:"page"`
	PageSize   int              `json:"page_size" yaml:"page_size"`
	TotalPages int              `json:"total_pages" yaml:"total_pages"`
	Total      int              `json:"total" yaml:"total"`
	Snapshots  []types.Snapshot `json:"snapshots" yaml:"snapshots"`
	Err        error            `json:"-" yaml:"-"`
}

// Pager holds one page of snapshots. The backend stays authoritative for
// ordering; nothing is inserted locally.
type Pager struct {
	backend Backend
	log     logger.Logger

	mu             sync.Mutex
	collectionID   string
	collectionName string
	pageSize       int
	page           int
	lastPage       int
	totalPages     int
	total          int
	state          State
	err            error
	snapshots      []types.Snapshot
	seq            uint64
}

// New creates a pager for one collection
func New(backend Backend, collectionID, collectionName string, pageSize int, log logger.Logger) *Pager {
	if pageSize <= 0 {
		pageSize = 10
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Pager{
		backend:        backend,
		log:            log.WithFields(map[string]interface{}{"component": "snapshots", "collection_id": collectionID}),
		collectionID:   strings.TrimSpace(collectionID),
		collectionName: strings.TrimSpace(collectionName),
		pageSize:       pageSize,
		page:           1,
		lastPage:       1,
		state:          StateIdle,
	}
}

// SetCollectionName records the name once it becomes known
func (p *Pager) SetCollectionName(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.collectionName = strings.TrimSpace(name)
}

// Load fetches the current page
func (p *Pager) Load(ctx context.Context) error {
	p.mu.Lock()
	page := p.page
	p.mu.Unlock()
	return p.fetch(ctx, page)
}

// GoTo fetches page. Pages outside [1, TotalPages] are ignored.
func (p *Pager) GoTo(ctx context.Context, page int) error {
	p.mu.Lock()
	total := p.totalPages
	p.mu.Unlock()

	if page < 1 || page > total {
		return nil
	}
	return p.fetch(ctx, page)
}

// Next moves one page forward
func (p *Pager) Next(ctx context.Context) error {
	return p.GoTo(ctx, p.View().Page+1)
}

// Prev moves one page back
func (p *Pager) Prev(ctx context.Context) error {
	return p.GoTo(ctx, p.View().Page-1)
}

// Retry re-issues the last request
func (p *Pager) Retry(ctx context.Context) error {
	p.mu.Lock()
	page := p.lastPage
	p.mu.Unlock()
	return p.fetch(ctx, page)
}

// CanCreate reports whether a new snapshot can be captured
func (p *Pager) CanCreate() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.collectionID != "" && p.collectionName != ""
}

// Create captures a new snapshot by re-saving the collection, then
// refetches the current page in place
func (p *Pager) Create(ctx context.Context) (*types.Collection, error) {
	if !p.CanCreate() {
		return nil, errors.ValidationError("Collection id and name are required to capture a snapshot")
	}

	p.mu.Lock()
	req := types.SaveCollectionRequest{CollectionID: p.collectionID, Name: p.collectionName}
	page := p.page
	p.mu.Unlock()

	saved, err := p.backend.SaveCollection(ctx, req)
	if err != nil {
		return nil, err
	}
	p.log.Info("snapshot captured")

	if err := p.fetch(ctx, page); err != nil {
		return saved, err
	}
	return saved, nil
}

// View returns a copy of the current state
func (p *Pager) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return View{
		State:      p.state,
		Page:       p.page,
		PageSize:   p.pageSize,
		TotalPages: p.totalPages,
		Total:      p.total,
		Snapshots:  append([]types.Snapshot(nil), p.snapshots...),
		Err:        p.err,
	}
}

func (p *Pager) fetch(ctx context.Context, page int) error {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.state = StateLoading
	p.lastPage = page
	p.err = nil
	collectionID, pageSize := p.collectionID, p.pageSize
	p.mu.Unlock()

	result, err := p.backend.ListSnapshots(ctx, collectionID, page, pageSize)

	p.mu.Lock()
	defer p.mu.Unlock()

	if seq != p.seq {
		// superseded by a newer fetch
		return nil
	}
	if err != nil {
		p.state = StateError
		p.err = err
		p.log.WithField("page", page).Error("failed to list snapshots", err)
		return err
	}

	p.state = StateLoaded
	p.page = page
	p.snapshots = result.Snapshots
	p.total = result.Total
	p.totalPages = result.Pages()
	return nil
}
