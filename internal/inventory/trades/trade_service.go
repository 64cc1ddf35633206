package trades

import (
	"context"
	"fmt"
	"strings"

	"assetdb/internal/repository"
	"assetdb/internal/worktypes"
	custom_error "assetdb/pkg/errors"
	"assetdb/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"go.uber.org/zap"
)

// AssetLocker reads and moves asset rows inside a trade transaction.
type AssetLocker interface {
	LockByNumber(ctx context.Context, tx *goqu.TxDatabase, assetNumber string) (*models.Asset, error)
	ApplyTransition(ctx context.Context, tx *goqu.TxDatabase, t worktypes.Transition) error
	UserExists(ctx context.Context, tx *goqu.TxDatabase, cjID string) (bool, error)
}

type TradeService struct {
	assets    AssetLocker
	catalogue *worktypes.Catalogue
	inTx      func(ctx context.Context, fn func(tx *goqu.TxDatabase) error) error
	insert    func(ctx context.Context, tx *goqu.TxDatabase, trade models.Trade) (int, error)
	log       *zap.Logger
}

func NewTradeService(r *repository.Repository, assets AssetLocker, catalogue *worktypes.Catalogue, log *zap.Logger) *TradeService {
	return &TradeService{
		assets:    assets,
		catalogue: catalogue,
		inTx: func(ctx context.Context, fn func(tx *goqu.TxDatabase) error) error {
			return repository.WithTransaction(ctx, r.GoquDBWrapper, fn)
		},
		insert: repository.InsertTrade,
		log:    log,
	}
}

// Register applies a batch of trades. Every request is validated against the
// locked asset row and applied with a guarded UPDATE; the first failure rolls
// back the whole batch.
func (s *TradeService) Register(ctx context.Context, requests []models.TradeRequest) ([]models.Trade, error) {
	if len(requests) == 0 {
		return nil, custom_error.NewValidationError("등록할 거래가 없습니다.")
	}

	var created []models.Trade
	err := s.inTx(ctx, func(tx *goqu.TxDatabase) error {
		created = make([]models.Trade, 0, len(requests))
		for i, req := range requests {
			trade, err := s.registerOne(ctx, tx, req)
			if err != nil {
				return fmt.Errorf("%d번째 거래(%s): %w", i+1, req.AssetNumber, err)
			}
			created = append(created, trade)
		}
		return nil
	})
	if err != nil {
		s.log.Warn("trade batch rejected", zap.Int("size", len(requests)), zap.Error(err))
		return nil, err
	}

	s.log.Info("trade batch registered", zap.Int("size", len(created)))
	return created, nil
}

func (s *TradeService) registerOne(ctx context.Context, tx *goqu.TxDatabase, req models.TradeRequest) (models.Trade, error) {
	number := strings.TrimSpace(req.AssetNumber)
	asset, err := s.assets.LockByNumber(ctx, tx, number)
	if err != nil {
		return models.Trade{}, err
	}
	if asset == nil {
		return models.Trade{}, fmt.Errorf("존재하지 않는 자산번호입니다: %w", custom_error.ErrNotFound)
	}

	before := worktypes.Snapshot{AssetNumber: asset.AssetNumber, State: asset.State, InUser: asset.InUser}
	transition, err := s.catalogue.Plan(req, before)
	if err != nil {
		return models.Trade{}, err
	}

	// Fixed and no-change targets are system accounts or the current holder.
	if transition.WorkType.FixedCjID == "" && transition.CjID != "" {
		exists, err := s.assets.UserExists(ctx, tx, transition.CjID)
		if err != nil {
			return models.Trade{}, err
		}
		if !exists {
			return models.Trade{}, custom_error.NewValidationError("존재하지 않는 사용자 ID입니다: %s", transition.CjID)
		}
	}

	if transition.Mutates() {
		if err := s.assets.ApplyTransition(ctx, tx, transition); err != nil {
			return models.Trade{}, err
		}
	}

	trade := models.Trade{
		WorkType:    transition.WorkType.WorkType,
		AssetNumber: asset.AssetNumber,
		CjID:        transition.CjID,
		ExUser:      transition.ExUser,
		AssetState:  before.State,
		AssetInUser: before.InUser,
		Replacement: transition.Replacement,
		Memo:        req.Memo,
	}
	trade.ID, err = s.insert(ctx, tx, trade)
	if err != nil {
		return models.Trade{}, err
	}

	return trade, nil
}
