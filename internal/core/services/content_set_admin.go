package services

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/custodia-labs/restgate/internal/core/domain"
	"github.com/custodia-labs/restgate/internal/core/ports/driven"
	"github.com/custodia-labs/restgate/internal/core/ports/driving"
	"github.com/custodia-labs/restgate/internal/logger"
)

// Ensure ContentSetAdmin implements the interface.
var _ driving.ContentSetAdmin = (*ContentSetAdmin)(nil)

// ContentSetAdmin manages content sets and their files.
type ContentSetAdmin struct {
	store    driven.Store
	ids      driven.IDGenerator
	resolver *resolver
	paths    PathValidator
}

// NewContentSetAdmin creates a new content set admin.
func NewContentSetAdmin(store driven.Store, ids driven.IDGenerator) *ContentSetAdmin {
	return &ContentSetAdmin{
		store:    store,
		ids:      ids,
		resolver: &resolver{},
	}
}

// SetPrompter enables interactive prompts.
func (s *ContentSetAdmin) SetPrompter(p driven.Prompter) {
	s.resolver.prompter = p
}

// SetCurrentServiceStore enables the persisted current service.
func (s *ContentSetAdmin) SetCurrentServiceStore(c driven.CurrentServiceStore) {
	s.resolver.current = c
}

func (s *ContentSetAdmin) claim(cs *domain.ContentSet) domain.PathClaim {
	return domain.PathClaim{Kind: domain.KindContentSet, ID: cs.ID, ServiceID: cs.ServiceID, Path: cs.FullPath()}
}

// Add creates a content set and uploads req.ContentDir when set.
func (s *ContentSetAdmin) Add(
	ctx context.Context, mode domain.Interaction, sel domain.ServiceSelector, req domain.NewContentSet,
) (domain.UploadResult, error) {
	if s.store == nil {
		return domain.UploadResult{}, domain.ErrNotImplemented
	}
	ctx, log := logger.WithOperation(ctx, "contentset.add")

	if req.RequestPath == "" && s.resolver.canPrompt(mode) {
		answer, err := s.resolver.prompter.Input(ctx, "Please enter the request path for this content set", "")
		if err != nil {
			return domain.UploadResult{}, err
		}
		req.RequestPath = answer
	}
	if err := domain.ValidatePath("request_path", req.RequestPath); err != nil {
		return domain.UploadResult{}, err
	}
	if err := ValidateOptions(req.Options); err != nil {
		return domain.UploadResult{}, err
	}

	var files []domain.ContentFile
	if req.ContentDir != "" {
		var err error
		if files, err = readContentDir(req.ContentDir); err != nil {
			return domain.UploadResult{}, err
		}
	}

	var svc *domain.Service
	err := s.store.View(ctx, func(tx driven.Tx) error {
		var err error
		svc, err = s.resolver.service(ctx, tx, mode, sel)
		return err
	})
	if err != nil {
		return domain.UploadResult{}, err
	}

	cs := domain.ContentSet{
		ID:           s.ids.NewID(),
		ServiceID:    svc.ID,
		RequestPath:  req.RequestPath,
		RequiresAuth: req.RequiresAuth,
		Enabled:      true,
		Comments:     req.Comments,
		Options:      req.Options,
		HostCtx:      svc.HostCtx(),
	}
	if req.Enabled != nil {
		cs.Enabled = *req.Enabled
	}

	err = s.store.Update(ctx, func(tx driven.Tx) error {
		if cs.Enabled {
			if err := s.paths.CheckAvailable(ctx, tx, s.claim(&cs)); err != nil {
				return err
			}
		}
		if err := tx.ContentSets().Insert(ctx, cs); err != nil {
			return err
		}
		return s.insertFiles(ctx, tx, &cs, files)
	})
	if err != nil {
		return domain.UploadResult{}, err
	}
	log.Debugf("created content set %s with %d files", cs.FullPath(), len(files))
	return domain.UploadResult{ContentSetID: cs.ID, FilesUploaded: len(files)}, nil
}

func (s *ContentSetAdmin) insertFiles(ctx context.Context, tx driven.Tx, cs *domain.ContentSet, files []domain.ContentFile) error {
	for _, f := range files {
		f.ID = s.ids.NewID()
		f.ContentSetID = cs.ID
		f.RequiresAuth = cs.RequiresAuth
		if err := tx.ContentFiles().Insert(ctx, f); err != nil {
			return fmt.Errorf("insert %s: %w", f.RequestPath, err)
		}
	}
	return nil
}

// Get resolves one content set.
func (s *ContentSetAdmin) Get(
	ctx context.Context, mode domain.Interaction, sel domain.ContentSetSelector,
) (*domain.ContentSet, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	var cs *domain.ContentSet
	err := s.store.View(ctx, func(tx driven.Tx) error {
		var err error
		cs, err = s.resolver.contentSet(ctx, tx, mode, sel)
		return err
	})
	return cs, err
}

// List returns the content sets of the selected service, or of all services
// when sel is nil.
func (s *ContentSetAdmin) List(
	ctx context.Context, mode domain.Interaction, sel *domain.ServiceSelector,
) ([]domain.ContentSet, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	var sets []domain.ContentSet
	err := s.store.View(ctx, func(tx driven.Tx) error {
		var serviceID *domain.ID
		if sel != nil {
			svc, err := s.resolver.service(ctx, tx, mode, *sel)
			if err != nil {
				return err
			}
			serviceID = &svc.ID
		}
		var err error
		sets, err = tx.ContentSets().List(ctx, serviceID)
		return err
	})
	return sets, err
}

func (s *ContentSetAdmin) mutate(
	ctx context.Context, mode domain.Interaction, sel domain.ContentSetSelector, multi bool, op string,
	fn func(ctx context.Context, tx driven.Tx, cs *domain.ContentSet) error,
) (domain.Outcome, error) {
	if s.store == nil {
		return domain.Outcome{}, domain.ErrNotImplemented
	}
	var ids []domain.ID
	err := s.store.View(ctx, func(tx driven.Tx) error {
		list, err := s.resolver.contentSets(ctx, tx, mode, sel, multi)
		if err != nil {
			return err
		}
		ids = lo.Map(list, func(cs domain.ContentSet, _ int) domain.ID { return cs.ID })
		return nil
	})
	if err != nil {
		return domain.Outcome{}, err
	}

	err = s.store.Update(ctx, func(tx driven.Tx) error {
		for _, id := range ids {
			cs, err := tx.ContentSets().Get(ctx, id)
			if err != nil {
				return err
			}
			if err := fn(ctx, tx, cs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Outcome{}, err
	}
	return domain.NewOutcome(mode, domain.KindContentSet, op, ids), nil
}

// Enable enables the selected content sets.
func (s *ContentSetAdmin) Enable(ctx context.Context, mode domain.Interaction, sel domain.ContentSetSelector) (domain.Outcome, error) {
	return s.mutate(ctx, mode, sel, true, "enabled", func(ctx context.Context, tx driven.Tx, cs *domain.ContentSet) error {
		if cs.Enabled {
			return nil
		}
		if err := s.paths.CheckAvailable(ctx, tx, s.claim(cs)); err != nil {
			return err
		}
		cs.Enabled = true
		return tx.ContentSets().Update(ctx, *cs)
	})
}

// Disable disables the selected content sets.
func (s *ContentSetAdmin) Disable(ctx context.Context, mode domain.Interaction, sel domain.ContentSetSelector) (domain.Outcome, error) {
	return s.mutate(ctx, mode, sel, true, "disabled", func(ctx context.Context, tx driven.Tx, cs *domain.ContentSet) error {
		cs.Enabled = false
		return tx.ContentSets().Update(ctx, *cs)
	})
}

// Delete removes the selected content sets with their files.
func (s *ContentSetAdmin) Delete(ctx context.Context, mode domain.Interaction, sel domain.ContentSetSelector) (domain.Outcome, error) {
	return s.mutate(ctx, mode, sel, true, "deleted", func(ctx context.Context, tx driven.Tx, cs *domain.ContentSet) error {
		return tx.ContentSets().Delete(ctx, cs.ID)
	})
}

// Update applies a value document to one content set.
func (s *ContentSetAdmin) Update(
	ctx context.Context, mode domain.Interaction, sel domain.ContentSetSelector, doc map[string]any,
) (domain.Outcome, error) {
	values, err := ParseContentSetUpdate(doc)
	if err != nil {
		return domain.Outcome{}, err
	}
	if values.Options != nil {
		if err := ValidateOptions(*values.Options); err != nil {
			return domain.Outcome{}, err
		}
	}
	return s.mutate(ctx, mode, sel, false, "updated", func(ctx context.Context, tx driven.Tx, cs *domain.ContentSet) error {
		before := *cs
		values.Apply(cs)
		moved := cs.RequestPath != before.RequestPath
		if cs.Enabled && (moved || !before.Enabled) {
			if err := s.paths.CheckAvailable(ctx, tx, s.claim(cs)); err != nil {
				return err
			}
		}
		return tx.ContentSets().Update(ctx, *cs)
	})
}

// Files lists the files of one content set.
func (s *ContentSetAdmin) Files(
	ctx context.Context, mode domain.Interaction, sel domain.ContentSetSelector,
) ([]domain.ContentFile, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	var files []domain.ContentFile
	err := s.store.View(ctx, func(tx driven.Tx) error {
		cs, err := s.resolver.contentSet(ctx, tx, mode, sel)
		if err != nil {
			return err
		}
		files, err = tx.ContentFiles().List(ctx, cs.ID)
		return err
	})
	return files, err
}

// SyncDirectory replaces the files of one content set with the contents of
// dir.
func (s *ContentSetAdmin) SyncDirectory(
	ctx context.Context, mode domain.Interaction, sel domain.ContentSetSelector, dir string,
) (domain.UploadResult, error) {
	files, err := readContentDir(dir)
	if err != nil {
		return domain.UploadResult{}, err
	}
	out, err := s.mutate(ctx, mode, sel, false, "synchronized", func(ctx context.Context, tx driven.Tx, cs *domain.ContentSet) error {
		removed, err := tx.ContentFiles().DeleteAll(ctx, cs.ID)
		if err != nil {
			return err
		}
		logger.Debug("replacing %d files of %s", removed, cs.FullPath())
		return s.insertFiles(ctx, tx, cs, files)
	})
	if err != nil {
		return domain.UploadResult{}, err
	}
	return domain.UploadResult{ContentSetID: out.IDs[0], FilesUploaded: len(files)}, nil
}
