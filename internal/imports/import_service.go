package imports

import (
	"context"

	custom_error "assetdb/pkg/errors"

	"go.uber.org/zap"
)

type Store interface {
	KnownUsers(ctx context.Context, cjIDs []string) (map[string]bool, error)
	Existing(ctx context.Context, t Target, columns, keys []string) (map[string]map[string]string, error)
	Upsert(ctx context.Context, t Target, plan Plan) error
}

type ImportService struct {
	store Store
	log   *zap.Logger
}

func NewImportService(store Store, log *zap.Logger) *ImportService {
	return &ImportService{store: store, log: log}
}

func (s *ImportService) Import(ctx context.Context, t Target, rows []Row) (*Summary, error) {
	if len(rows) == 0 {
		return nil, custom_error.NewValidationError("처리할 데이터가 없습니다.")
	}

	plan := t.Prepare(rows)
	if len(plan.Rows) == 0 {
		return nil, custom_error.NewValidationError("%s", t.Missing)
	}

	if _, ok := t.Columns["in_user"]; ok {
		known, err := s.store.KnownUsers(ctx, plan.Holders())
		if err != nil {
			return nil, err
		}
		plan.DropUnknownHolders(known)
	}

	existing, err := s.store.Existing(ctx, t, plan.Columns, plan.Keys(t.Key))
	if err != nil {
		return nil, err
	}

	if err := s.store.Upsert(ctx, t, plan); err != nil {
		return nil, err
	}

	summary := t.Classify(plan, existing)
	s.log.Info("import finished",
		zap.String("table", t.Table),
		zap.Int("inserted", summary.Inserted),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped))
	return &summary, nil
}
