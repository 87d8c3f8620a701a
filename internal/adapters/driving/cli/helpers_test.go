package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/restgate/internal/adapters/driven/idgen"
	"github.com/custodia-labs/restgate/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/restgate/internal/core/domain"
	"github.com/custodia-labs/restgate/internal/core/services"
)

// testEnv holds the services the commands run against.
type testEnv struct {
	services *services.ServiceAdmin
	apps     *services.AuthAppAdmin
	sets     *services.ContentSetAdmin
	vendors  *services.VendorCatalog
}

// setupTestServices installs services backed by an in-memory store and
// returns a cleanup function that restores the package state.
func setupTestServices() (*testEnv, func()) {
	store := memory.NewStore()
	ids := idgen.New()
	current := memory.NewConfigStore()

	env := &testEnv{
		services: services.NewServiceAdmin(store, ids),
		apps:     services.NewAuthAppAdmin(store, ids),
		sets:     services.NewContentSetAdmin(store, ids),
		vendors:  services.NewVendorCatalog(store),
	}
	env.services.SetCurrentServiceStore(current)
	env.apps.SetCurrentServiceStore(current)
	env.sets.SetCurrentServiceStore(current)

	SetServices(Services{
		Services:    env.services,
		AuthApps:    env.apps,
		ContentSets: env.sets,
		Vendors:     env.vendors,
	})

	return env, func() {
		SetServices(Services{})
		resetFlags(rootCmd)
	}
}

// resetFlags puts every flag of the command tree back to its default.
// Cobra keeps flag values between Execute calls.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func (e *testEnv) addService(t *testing.T, host, contextRoot string) *domain.Service {
	t.Helper()
	svc, err := e.services.Add(context.Background(), domain.Scripted, domain.NewService{
		HostName: host, ContextRoot: contextRoot,
	})
	require.NoError(t, err)
	return svc
}

func (e *testEnv) addContentSet(t *testing.T, svc *domain.Service, requestPath, dir string) domain.ID {
	t.Helper()
	res, err := e.sets.Add(context.Background(), domain.Scripted, domain.ByID(svc.ID), domain.NewContentSet{
		RequestPath: requestPath, ContentDir: dir,
	})
	require.NoError(t, err)
	return res.ContentSetID
}

// syncBuffer is a bytes.Buffer safe for a command running in a goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
