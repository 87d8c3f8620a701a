package services

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/restgate/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/restgate/internal/core/domain"
)

// seqIDs hands out predictable identities.
type seqIDs struct{ n uint64 }

func (g *seqIDs) NewID() domain.ID {
	g.n++
	var id domain.ID
	id[0] = 0xaa
	binary.BigEndian.PutUint64(id[8:], g.n)
	return id
}

// scriptedPrompter replays canned answers.
type scriptedPrompter struct {
	selects [][]int
	inputs  []string
	secrets []string
	titles  []string
	multi   []bool
}

func (p *scriptedPrompter) Select(_ context.Context, title string, _ []string, multi bool) ([]int, error) {
	p.titles = append(p.titles, title)
	p.multi = append(p.multi, multi)
	if len(p.selects) == 0 {
		return nil, domain.ErrOperationCancelled
	}
	next := p.selects[0]
	p.selects = p.selects[1:]
	return next, nil
}

func (p *scriptedPrompter) Input(_ context.Context, label, def string) (string, error) {
	p.titles = append(p.titles, label)
	if len(p.inputs) == 0 {
		return def, nil
	}
	next := p.inputs[0]
	p.inputs = p.inputs[1:]
	if next == "" {
		return def, nil
	}
	return next, nil
}

func (p *scriptedPrompter) Secret(_ context.Context, label string) (string, error) {
	p.titles = append(p.titles, label)
	if len(p.secrets) == 0 {
		return "", nil
	}
	next := p.secrets[0]
	p.secrets = p.secrets[1:]
	return next, nil
}

type fixture struct {
	store    *memory.Store
	ids      *seqIDs
	prompter *scriptedPrompter
	current  *memory.ConfigStore
	services *ServiceAdmin
	apps     *AuthAppAdmin
	sets     *ContentSetAdmin
	vendors  *VendorCatalog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    memory.NewStore(),
		ids:      &seqIDs{},
		prompter: &scriptedPrompter{},
		current:  memory.NewConfigStore(),
	}
	f.services = NewServiceAdmin(f.store, f.ids)
	f.services.SetPrompter(f.prompter)
	f.services.SetCurrentServiceStore(f.current)
	f.apps = NewAuthAppAdmin(f.store, f.ids)
	f.apps.SetPrompter(f.prompter)
	f.apps.SetCurrentServiceStore(f.current)
	f.sets = NewContentSetAdmin(f.store, f.ids)
	f.sets.SetPrompter(f.prompter)
	f.sets.SetCurrentServiceStore(f.current)
	f.vendors = NewVendorCatalog(f.store)
	return f
}

func (f *fixture) addService(t *testing.T, host, contextRoot string) *domain.Service {
	t.Helper()
	svc, err := f.services.Add(context.Background(), domain.Scripted, domain.NewService{
		HostName: host, ContextRoot: contextRoot,
	})
	require.NoError(t, err)
	return svc
}

func (f *fixture) addDisabledService(t *testing.T, host, contextRoot string) *domain.Service {
	t.Helper()
	disabled := false
	svc, err := f.services.Add(context.Background(), domain.Scripted, domain.NewService{
		HostName: host, ContextRoot: contextRoot, Enabled: &disabled,
	})
	require.NoError(t, err)
	return svc
}

func strPtr(s string) *string { return &s }

func idPtr(id domain.ID) *domain.ID { return &id }
