package sqlstore

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
	otherID   = domain.MustParseID("0x02000000000000000000000000000002")
	appID     = domain.MustParseID("0x03000000000000000000000000000001")
	roleID    = domain.MustParseID("0x09000000000000000000000000000001")
	setID     = domain.MustParseID("0x04000000000000000000000000000001")
	fileID    = domain.MustParseID("0x05000000000000000000000000000001")
	fileID2   = domain.MustParseID("0x05000000000000000000000000000002")
)

// opener returns an empty, migrated store.
type opener func(t *testing.T) *Store

func seed(t *testing.T, store *Store) {
	t.Helper()
	ctx := context.Background()
	err := store.Update(ctx, func(tx driven.Tx) error {
		if err := tx.Hosts().Insert(ctx, domain.URLHost{ID: hostID, Name: "localhost"}); err != nil {
			return err
		}
		svc := domain.Service{
			ID: serviceID, HostID: hostID, ContextRoot: "/test", Enabled: true,
			Protocols: domain.ProtocolSet{domain.ProtocolHTTP, domain.ProtocolHTTPS},
			AuthPath:  domain.DefaultAuthPath,
			Options:   map[string]any{"logging": map[string]any{"exceptions": true}},
		}
		if err := tx.Services().Insert(ctx, svc); err != nil {
			return err
		}
		app := domain.NewAuthApp(appID, serviceID)
		app.AuthVendorID = domain.VendorMRS
		app.Name = "web"
		app.DefaultRoleID = &roleID
		if err := tx.AuthApps().Insert(ctx, app); err != nil {
			return err
		}
		cs := domain.ContentSet{ID: setID, ServiceID: serviceID, RequestPath: "/static", Enabled: true}
		if err := tx.ContentSets().Insert(ctx, cs); err != nil {
			return err
		}
		if err := tx.ContentFiles().Insert(ctx, domain.ContentFile{
			ID: fileID2, ContentSetID: setID, RequestPath: "/z.css", Content: []byte("body{}"), Size: 6,
		}); err != nil {
			return err
		}
		return tx.ContentFiles().Insert(ctx, domain.ContentFile{
			ID: fileID, ContentSetID: setID, RequestPath: "/index.html", Content: []byte("hi"), Size: 2,
		})
	})
	require.NoError(t, err)
}

// runConformance exercises the driven.Store contract against one backend.
func runConformance(t *testing.T, open opener) {
	t.Run("SeedsVendors", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()
		err := store.View(ctx, func(tx driven.Tx) error {
			vendors, err := tx.Vendors().List(ctx)
			require.NoError(t, err)
			require.Len(t, vendors, 5)
			assert.Equal(t, domain.VendorMRS, vendors[0].ID)
			assert.Equal(t, domain.VendorGoogle, vendors[4].ID)

			v, err := tx.Vendors().GetByName(ctx, "GOOGLE")
			require.NoError(t, err)
			assert.Equal(t, domain.VendorGoogle, v.ID)

			_, err = tx.Vendors().Get(ctx, roleID)
			assert.ErrorIs(t, err, domain.ErrNotFound)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("ReadsJoinedFields", func(t *testing.T) {
		store := open(t)
		seed(t, store)
		ctx := context.Background()

		err := store.View(ctx, func(tx driven.Tx) error {
			host, err := tx.Hosts().GetByName(ctx, "LocalHost")
			require.NoError(t, err)
			assert.Equal(t, hostID, host.ID)

			svc, err := tx.Services().GetByHostCtx(ctx, "LOCALHOST", "/test")
			require.NoError(t, err)
			assert.Equal(t, "localhost/test", svc.HostCtx())
			assert.Equal(t, "HTTP,HTTPS", svc.Protocols.String())
			assert.Equal(t, map[string]any{"logging": map[string]any{"exceptions": true}}, svc.Options)
			assert.True(t, svc.Enabled)

			app, err := tx.AuthApps().Get(ctx, appID)
			require.NoError(t, err)
			assert.Equal(t, "MRS", app.AuthVendorName)
			require.NotNil(t, app.DefaultRoleID)
			assert.Equal(t, roleID, *app.DefaultRoleID)
			assert.True(t, app.UseBuiltInAuthorization)

			cs, err := tx.ContentSets().GetByPath(ctx, serviceID, "/static")
			require.NoError(t, err)
			assert.Equal(t, "localhost/test/static", cs.FullPath())
			assert.Equal(t, map[string]any{}, cs.Options)

			files, err := tx.ContentFiles().List(ctx, setID)
			require.NoError(t, err)
			require.Len(t, files, 2)
			assert.Equal(t, "/index.html", files[0].RequestPath)
			assert.Nil(t, files[0].Content)
			assert.EqualValues(t, 2, files[0].Size)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("MissingRowsAreNotFound", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()
		err := store.View(ctx, func(tx driven.Tx) error {
			_, err := tx.Services().Get(ctx, serviceID)
			assert.ErrorIs(t, err, domain.ErrNotFound)
			_, err = tx.Hosts().GetByName(ctx, "nowhere")
			assert.ErrorIs(t, err, domain.ErrNotFound)
			_, err = tx.ContentSets().Get(ctx, setID)
			assert.ErrorIs(t, err, domain.ErrNotFound)
			return nil
		})
		require.NoError(t, err)

		err = store.Update(ctx, func(tx driven.Tx) error {
			return tx.Services().Update(ctx, domain.Service{ID: serviceID, HostID: hostID})
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)

		err = store.Update(ctx, func(tx driven.Tx) error {
			return tx.AuthApps().Delete(ctx, appID)
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("UpdateClearsNullableColumns", func(t *testing.T) {
		store := open(t)
		seed(t, store)
		ctx := context.Background()

		require.NoError(t, store.Update(ctx, func(tx driven.Tx) error {
			app, err := tx.AuthApps().Get(ctx, appID)
			if err != nil {
				return err
			}
			app.DefaultRoleID = nil
			app.Description = "changed"
			return tx.AuthApps().Update(ctx, *app)
		}))

		_ = store.View(ctx, func(tx driven.Tx) error {
			app, err := tx.AuthApps().Get(ctx, appID)
			require.NoError(t, err)
			assert.Nil(t, app.DefaultRoleID)
			assert.Equal(t, "changed", app.Description)
			return nil
		})
	})

	t.Run("RollsBackOnError", func(t *testing.T) {
		store := open(t)
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
	})

	t.Run("RecoversPanic", func(t *testing.T) {
		store := open(t)
		err := store.Update(context.Background(), func(tx driven.Tx) error {
			panic("bad")
		})
		assert.Error(t, err)
		seed(t, store)
	})

	t.Run("UniqueKeys", func(t *testing.T) {
		store := open(t)
		seed(t, store)
		ctx := context.Background()

		err := store.Update(ctx, func(tx driven.Tx) error {
			return tx.Services().Insert(ctx, domain.Service{
				ID: otherID, HostID: hostID, ContextRoot: "/test", Protocols: domain.ProtocolSet{domain.ProtocolHTTP},
			})
		})
		assert.ErrorIs(t, err, domain.ErrPathConflict)

		err = store.Update(ctx, func(tx driven.Tx) error {
			return tx.ContentSets().Insert(ctx, domain.ContentSet{
				ID: domain.MustParseID("0x04000000000000000000000000000002"), ServiceID: serviceID, RequestPath: "/static",
			})
		})
		assert.ErrorIs(t, err, domain.ErrPathConflict)

		err = store.Update(ctx, func(tx driven.Tx) error {
			return tx.Hosts().Insert(ctx, domain.URLHost{ID: domain.MustParseID("0x01000000000000000000000000000002"), Name: "LOCALHOST"})
		})
		assert.ErrorIs(t, err, domain.ErrPathConflict)
	})

	t.Run("DanglingReferenceIsNotFound", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()
		err := store.Update(ctx, func(tx driven.Tx) error {
			return tx.ContentSets().Insert(ctx, domain.ContentSet{ID: setID, ServiceID: serviceID, RequestPath: "/x"})
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("DeleteServiceCascades", func(t *testing.T) {
		store := open(t)
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
	})

	t.Run("DeleteAllFiles", func(t *testing.T) {
		store := open(t)
		seed(t, store)
		ctx := context.Background()

		var n int
		require.NoError(t, store.Update(ctx, func(tx driven.Tx) error {
			var err error
			n, err = tx.ContentFiles().DeleteAll(ctx, setID)
			return err
		}))
		assert.Equal(t, 2, n)
	})

	t.Run("SetDefault", func(t *testing.T) {
		store := open(t)
		seed(t, store)
		ctx := context.Background()

		require.NoError(t, store.Update(ctx, func(tx driven.Tx) error {
			if err := tx.Services().Insert(ctx, domain.Service{
				ID: otherID, HostID: hostID, ContextRoot: "/other", Protocols: domain.ProtocolSet{domain.ProtocolHTTP},
			}); err != nil {
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

		err := store.Update(ctx, func(tx driven.Tx) error {
			return tx.Services().SetDefault(ctx, appID)
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ListContentSets", func(t *testing.T) {
		store := open(t)
		seed(t, store)
		ctx := context.Background()

		require.NoError(t, store.Update(ctx, func(tx driven.Tx) error {
			if err := tx.Services().Insert(ctx, domain.Service{
				ID: otherID, HostID: hostID, ContextRoot: "/aaa", Protocols: domain.ProtocolSet{domain.ProtocolHTTP},
			}); err != nil {
				return err
			}
			return tx.ContentSets().Insert(ctx, domain.ContentSet{
				ID: domain.MustParseID("0x04000000000000000000000000000002"), ServiceID: otherID, RequestPath: "/docs",
			})
		}))

		_ = store.View(ctx, func(tx driven.Tx) error {
			all, err := tx.ContentSets().List(ctx, nil)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "localhost/aaa/docs", all[0].FullPath())
			assert.Equal(t, "localhost/test/static", all[1].FullPath())

			sid := serviceID
			one, err := tx.ContentSets().List(ctx, &sid)
			require.NoError(t, err)
			require.Len(t, one, 1)
			assert.Equal(t, setID, one[0].ID)
			return nil
		})
	})
}
