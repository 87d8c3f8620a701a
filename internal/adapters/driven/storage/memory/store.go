package memory

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/custodia-labs/restgate/internal/core/domain"
	"github.com/custodia-labs/restgate/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.Store = (*Store)(nil)

// errReadOnly is returned by writes attempted inside View.
var errReadOnly = errors.New("write in read-only transaction")

// Store is an in-memory implementation of driven.Store.
// Update works on a copy of the data and swaps it in on commit, so a failed
// callback leaves no trace.
type Store struct {
	mu   sync.RWMutex
	data *snapshot
}

type snapshot struct {
	hosts        map[domain.ID]domain.URLHost
	services     map[domain.ID]domain.Service
	authApps     map[domain.ID]domain.AuthApp
	contentSets  map[domain.ID]domain.ContentSet
	contentFiles map[domain.ID]domain.ContentFile
	vendors      map[domain.ID]domain.AuthVendor
}

// NewStore creates an in-memory store seeded with the built-in auth vendors.
func NewStore() *Store {
	data := &snapshot{
		hosts:        make(map[domain.ID]domain.URLHost),
		services:     make(map[domain.ID]domain.Service),
		authApps:     make(map[domain.ID]domain.AuthApp),
		contentSets:  make(map[domain.ID]domain.ContentSet),
		contentFiles: make(map[domain.ID]domain.ContentFile),
		vendors:      make(map[domain.ID]domain.AuthVendor),
	}
	for _, v := range domain.BuiltInVendors() {
		data.vendors[v.ID] = v
	}
	return &Store{data: data}
}

// View runs fn against the committed data.
func (s *Store) View(ctx context.Context, fn func(tx driven.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&tx{data: s.data, readOnly: true})
}

// Update runs fn against a private copy and commits it when fn succeeds.
func (s *Store) Update(ctx context.Context, fn func(tx driven.Tx) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("transaction rolled back: %v", p)
		}
	}()
	if err := fn(&tx{data: work}); err != nil {
		return err
	}
	s.data = work
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func (d *snapshot) clone() *snapshot {
	c := &snapshot{
		hosts:        maps.Clone(d.hosts),
		services:     make(map[domain.ID]domain.Service, len(d.services)),
		authApps:     maps.Clone(d.authApps),
		contentSets:  make(map[domain.ID]domain.ContentSet, len(d.contentSets)),
		contentFiles: maps.Clone(d.contentFiles),
		vendors:      maps.Clone(d.vendors),
	}
	for id, svc := range d.services {
		svc.Options = maps.Clone(svc.Options)
		c.services[id] = svc
	}
	for id, cs := range d.contentSets {
		cs.Options = maps.Clone(cs.Options)
		c.contentSets[id] = cs
	}
	return c
}

type tx struct {
	data     *snapshot
	readOnly bool
}

func (t *tx) Hosts() driven.HostStore               { return hostStore{t} }
func (t *tx) Services() driven.ServiceStore         { return serviceStore{t} }
func (t *tx) AuthApps() driven.AuthAppStore         { return authAppStore{t} }
func (t *tx) ContentSets() driven.ContentSetStore   { return contentSetStore{t} }
func (t *tx) ContentFiles() driven.ContentFileStore { return contentFileStore{t} }
func (t *tx) Vendors() driven.AuthVendorStore       { return vendorStore{t} }

func (t *tx) writable() error {
	if t.readOnly {
		return errReadOnly
	}
	return nil
}

// hostName returns the name of a stored host or "" when unknown.
func (t *tx) hostName(id domain.ID) string {
	return t.data.hosts[id].Name
}

// hostCtx returns the host name and context root of a stored service.
func (t *tx) hostCtx(serviceID domain.ID) string {
	svc := t.data.services[serviceID]
	return t.hostName(svc.HostID) + svc.ContextRoot
}
