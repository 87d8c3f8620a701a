package driven

import (
	"context"

	"github.com/custodia-labs/restgate/internal/core/domain"
)

// Store opens transactions over the gateway metadata schema.
// Every operation runs inside exactly one View or Update call.
type Store interface {
	// View runs fn in a read-only transaction.
	View(ctx context.Context, fn func(tx Tx) error) error

	// Update runs fn in a read-write transaction. The transaction commits
	// when fn returns nil and rolls back on error or panic.
	Update(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying session.
	Close() error
}

// Tx exposes the per-entity stores bound to one transaction.
type Tx interface {
	Hosts() HostStore
	Services() ServiceStore
	AuthApps() AuthAppStore
	ContentSets() ContentSetStore
	ContentFiles() ContentFileStore
	Vendors() AuthVendorStore
}

// HostStore persists url_host rows.
type HostStore interface {
	// GetByName returns the host with the given name (case-insensitive).
	// Returns domain.ErrNotFound when absent.
	GetByName(ctx context.Context, name string) (*domain.URLHost, error)

	// Insert stores a new host.
	Insert(ctx context.Context, host domain.URLHost) error
}

// ServiceStore persists services. Returned services carry HostName but not
// AuthApps.
type ServiceStore interface {
	// Get retrieves a service by ID. Returns domain.ErrNotFound when absent.
	Get(ctx context.Context, id domain.ID) (*domain.Service, error)

	// GetByHostCtx retrieves a service by its unique (host, context root) key.
	GetByHostCtx(ctx context.Context, host, contextRoot string) (*domain.Service, error)

	// List returns all services ordered by host name and context root.
	List(ctx context.Context) ([]domain.Service, error)

	// Insert stores a new service. A duplicate (host, context root) key
	// returns domain.ErrPathConflict.
	Insert(ctx context.Context, svc domain.Service) error

	// Update overwrites the stored row of svc.ID.
	Update(ctx context.Context, svc domain.Service) error

	// Delete removes a service with its auth apps and content sets.
	Delete(ctx context.Context, id domain.ID) error

	// SetDefault marks id as the default service and clears the flag on
	// every other service.
	SetDefault(ctx context.Context, id domain.ID) error
}

// AuthAppStore persists auth apps.
type AuthAppStore interface {
	Get(ctx context.Context, id domain.ID) (*domain.AuthApp, error)

	// ListByService returns the apps of a service ordered by name.
	ListByService(ctx context.Context, serviceID domain.ID) ([]domain.AuthApp, error)

	Insert(ctx context.Context, app domain.AuthApp) error
	Update(ctx context.Context, app domain.AuthApp) error
	Delete(ctx context.Context, id domain.ID) error
}

// ContentSetStore persists content sets. Returned sets carry HostCtx.
type ContentSetStore interface {
	Get(ctx context.Context, id domain.ID) (*domain.ContentSet, error)

	// GetByPath retrieves a content set by its unique (service, request
	// path) key.
	GetByPath(ctx context.Context, serviceID domain.ID, requestPath string) (*domain.ContentSet, error)

	// List returns the content sets of one service, or of all services when
	// serviceID is nil, ordered by full path.
	List(ctx context.Context, serviceID *domain.ID) ([]domain.ContentSet, error)

	// Insert stores a new content set. A duplicate (service, request path)
	// key returns domain.ErrPathConflict.
	Insert(ctx context.Context, cs domain.ContentSet) error

	Update(ctx context.Context, cs domain.ContentSet) error

	// Delete removes a content set with its files.
	Delete(ctx context.Context, id domain.ID) error
}

// ContentFileStore persists the files of content sets.
type ContentFileStore interface {
	// List returns the files of a content set ordered by request path,
	// without their content.
	List(ctx context.Context, contentSetID domain.ID) ([]domain.ContentFile, error)

	Insert(ctx context.Context, file domain.ContentFile) error

	// DeleteAll removes every file of a content set and returns how many
	// were removed.
	DeleteAll(ctx context.Context, contentSetID domain.ID) (int, error)
}

// AuthVendorStore reads the auth vendor catalog.
type AuthVendorStore interface {
	Get(ctx context.Context, id domain.ID) (*domain.AuthVendor, error)

	// GetByName matches case-insensitively.
	GetByName(ctx context.Context, name string) (*domain.AuthVendor, error)

	List(ctx context.Context) ([]domain.AuthVendor, error)
}
