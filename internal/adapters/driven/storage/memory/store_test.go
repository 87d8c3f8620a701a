package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/restgate/internal/core/domain"
	"github.com/custodia-labs/restgate/internal/core/ports/driven"
)

var (
	hostID    = domain.MustParseID("0x01000000000000000000000000000001")
	serviceID = domain.MustParseID("0x02000000000000000000000000000001")
	appID     = domain.MustParseID("0x03000000000000000000000000000001")
	setID     = domain.MustParseID("0x04000000000000000000000000000001")
	fileID    = domain.MustParseID("0x05000000000000000000000000000001")
)

func seed(t *testing.T, store *Store) {
	t.Helper()
	err := store.Update(context.Background(), func(tx driven.Tx) error {
		ctx := context.Background()
		if err := tx.Hosts().Insert(ctx, domain.URLHost{ID: hostID, Name: "localhost"}); err != nil {
			return err
		}
		svc := domain.Service{ID: serviceID, HostID: hostID, ContextRoot: "/test", Enabled: true}
		if err := tx.Services().Insert(ctx, svc); err != nil {
			return err
		}
		app := domain.NewAuthApp(appID, serviceID)
		app.AuthVendorID = domain.VendorMRS
		app.Name = "web"
		if err := tx.AuthApps().Insert(ctx, app); err != nil {
			return err
		}
		cs := domain.ContentSet{ID: setID, ServiceID: serviceID, RequestPath: "/static", Enabled: true}
		if err := tx.ContentSets().Insert(ctx, cs); err != nil {
			return err
		}
		return tx.ContentFiles().Insert(ctx, domain.ContentFile{
			ID: fileID, ContentSetID: setID, RequestPath: "/index.html", Content: []byte("hi"), Size: 2,
		})
	})
	require.NoError(t, err)
}

func TestStore_SeedsVendors(t *testing.T) {
	store := NewStore()
	err := store.View(context.Background(), func(tx driven.Tx) error {
		vendors, err := tx.Vendors().List(context.Background())
		require.NoError(t, err)
		require.Len(t, vendors, 5)
		assert.Equal(t, domain.VendorMRS, vendors[0].ID)

		v, err := tx.Vendors().GetByName(context.Background(), "google")
		require.NoError(t, err)
		assert.Equal(t, domain.VendorGoogle, v.ID)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_ReadsJoinedFields(t *testing.T) {
	store := NewStore()
	seed(t, store)
	ctx := context.Background()

	err := store.View(ctx, func(tx driven.Tx) error {
		svc, err := tx.Services().GetByHostCtx(ctx, "LOCALHOST", "/test")
		require.NoError(t, err)
		assert.Equal(t, "localhost/test", svc.HostCtx())

		app, err := tx.AuthApps().Get(ctx, appID)
		require.NoError(t, err)
		assert.Equal(t, "MRS", app.AuthVendorName)

		cs, err := tx.ContentSets().Get(ctx, setID)
		require.NoError(t, err)
		assert.Equal(t, "localhost/test/static", cs.FullPath())

		files, err := tx.ContentFiles().List(ctx, setID)
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Nil(t, files[0].Content)
		assert.EqualValues(t, 2, files[0].Size)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_Update_RollsBackOnError(t *testing.T) {
	store := NewStore()
	seed(t, store)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.Update(ctx, func(tx driven.Tx) error {
		svc, err := tx.Services().Get(ctx, serviceID)
		require.NoError(t, err)
		svc.Comments = "changed"
		require.NoError(t, tx.Services().Update(ctx, *svc))
		require.NoError(t, tx.AuthApps().Delete(ctx, appID))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_ = store.View(ctx, func(tx driven.Tx) error {
		svc, err := tx.Services().Get(ctx, serviceID)
		require.NoError(t, err)
		assert.Empty(t, svc.Comments)
		_, err = tx.AuthApps().Get(ctx, appID)
		assert.NoError(t, err)
		return nil
	})
}

func TestStore_Update_RecoversPanic(t *testing.T) {
	store := NewStore()
	err := store.Update(context.Background(), func(tx driven.Tx) error {
		panic("bad")
	})
	assert.Error(t, err)

	// the store stays usable
	seed(t, store)
}

func TestStore_View_RejectsWrites(t *testing.T) {
	store := NewStore()
	err := store.View(context.Background(), func(tx driven.Tx) error {
		return tx.Hosts().Insert(context.Background(), domain.URLHost{ID: hostID})
	})
	assert.ErrorIs(t, err, errReadOnly)
}

func TestStore_UniqueKeys(t *testing.T) {
	store := NewStore()
	seed(t, store)
	ctx := context.Background()

	err := store.Update(ctx, func(tx driven.Tx) error {
		return tx.Services().Insert(ctx, domain.Service{
			ID: domain.MustParseID("0x02000000000000000000000000000002"), HostID: hostID, ContextRoot: "/test",
		})
	})
	assert.ErrorIs(t, err, domain.ErrPathConflict)

	err = store.Update(ctx, func(tx driven.Tx) error {
		return tx.ContentSets().Insert(ctx, domain.ContentSet{
			ID: domain.MustParseID("0x04000000000000000000000000000002"), ServiceID: serviceID, RequestPath: "/static",
		})
	})
	assert.ErrorIs(t, err, domain.ErrPathConflict)
}

func TestStore_DeleteServiceCascades(t *testing.T) {
	store := NewStore()
	seed(t, store)
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, func(tx driven.Tx) error {
		return tx.Services().Delete(ctx, serviceID)
	}))

	_ = store.View(ctx, func(tx driven.Tx) error {
		_, err := tx.AuthApps().Get(ctx, appID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = tx.ContentSets().Get(ctx, setID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		files, err := tx.ContentFiles().List(ctx, setID)
		require.NoError(t, err)
		assert.Empty(t, files)
		return nil
	})
}

func TestStore_SetDefault(t *testing.T) {
	store := NewStore()
	seed(t, store)
	ctx := context.Background()
	otherID := domain.MustParseID("0x02000000000000000000000000000002")

	require.NoError(t, store.Update(ctx, func(tx driven.Tx) error {
		if err := tx.Services().Insert(ctx, domain.Service{ID: otherID, HostID: hostID, ContextRoot: "/other"}); err != nil {
			return err
		}
		if err := tx.Services().SetDefault(ctx, serviceID); err != nil {
			return err
		}
		return tx.Services().SetDefault(ctx, otherID)
	}))

	_ = store.View(ctx, func(tx driven.Tx) error {
		services, err := tx.Services().List(ctx)
		require.NoError(t, err)
		require.Len(t, services, 2)
		assert.Equal(t, "/other", services[0].ContextRoot)
		assert.True(t, services[0].IsDefault)
		assert.False(t, services[1].IsDefault)
		return nil
	})
}

func TestStore_AuthAppUnknownVendor(t *testing.T) {
	store := NewStore()
	seed(t, store)
	ctx := context.Background()

	err := store.Update(ctx, func(tx driven.Tx) error {
		app := domain.NewAuthApp(domain.MustParseID("0x03000000000000000000000000000002"), serviceID)
		app.AuthVendorID = domain.MustParseID("0x99000000000000000000000000000000")
		return tx.AuthApps().Insert(ctx, app)
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ContextCancelled(t *testing.T) {
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Update(ctx, func(tx driven.Tx) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
