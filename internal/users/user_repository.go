package users

import (
	"context"
	"fmt"
	"strings"

	"assetdb/internal/repository"
	custom_error "assetdb/pkg/errors"
	"assetdb/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

type UserRepository interface {
	GetUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
	GetUserByCjID(ctx context.Context, cjID string) (*models.User, error)
	GetAssetCounts(ctx context.Context, cjID string) (map[string]int, error)
	UpdateUser(ctx context.Context, id int, changes *models.UserChanges) error
	DeleteUser(ctx context.Context, id int) error
	TemporaryCount(ctx context.Context) (int, error)
	TemporaryNameTaken(ctx context.Context, name string) (bool, error)
	CjIDExists(ctx context.Context, cjID string) (bool, error)
	PersistTemporaryUser(ctx context.Context, user models.User) (int, error)
	FinalizeUser(ctx context.Context, id int, cjID, part string) error
}

type userRepositoryImpl struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) UserRepository {
	return &userRepositoryImpl{repository: r}
}

func userColumns() []interface{} {
	return []interface{}{
		"user_id",
		"cj_id",
		goqu.COALESCE(goqu.I("name"), "").As("name"),
		goqu.COALESCE(goqu.I("part"), "").As("part"),
		goqu.COALESCE(goqu.I("state"), "").As("state"),
		"sec_level",
		"is_temporary",
		goqu.COALESCE(goqu.I("password"), "").As("password"),
	}
}

func (r *userRepositoryImpl) GetUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := r.repository.GoquDBWrapper.From("users").
		Select(userColumns()...).
		Order(goqu.I("user_id").Asc()).
		ScanStructsContext(ctx, &users)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	return users, nil
}

func (r *userRepositoryImpl) GetUser(ctx context.Context, id int) (*models.User, error) {
	return r.getBy(ctx, goqu.Ex{"user_id": id})
}

func (r *userRepositoryImpl) GetUserByCjID(ctx context.Context, cjID string) (*models.User, error) {
	return r.getBy(ctx, goqu.Ex{"cj_id": cjID})
}

func (r *userRepositoryImpl) getBy(ctx context.Context, where goqu.Ex) (*models.User, error) {
	var user models.User
	found, err := r.repository.GoquDBWrapper.From("users").
		Select(userColumns()...).
		Where(where).
		ScanStructContext(ctx, &user)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("사용자를 찾을 수 없습니다: %w", custom_error.ErrNotFound)
	}

	return &user, nil
}

func (r *userRepositoryImpl) GetAssetCounts(ctx context.Context, cjID string) (map[string]int, error) {
	var rows []struct {
		Category string `db:"category"`
		Count    int    `db:"count"`
	}
	err := r.repository.GoquDBWrapper.From("assets").
		Select(goqu.COALESCE(goqu.I("category"), "").As("category"), goqu.COUNT(goqu.Star()).As("count")).
		Where(goqu.Ex{"in_user": cjID}).
		GroupBy("category").
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to count assets of %s: %w", cjID, err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Category] += row.Count
	}
	return counts, nil
}

func (r *userRepositoryImpl) UpdateUser(ctx context.Context, id int, changes *models.UserChanges) error {
	record := goqu.Record{}
	if changes.Name != nil {
		record["name"] = *changes.Name
	}
	if changes.Part != nil {
		record["part"] = *changes.Part
	}
	if changes.State != nil {
		record["state"] = *changes.State
	}
	if changes.SecLevel != nil {
		record["sec_level"] = *changes.SecLevel
	}
	if changes.PasswordHash != nil {
		record["password"] = *changes.PasswordHash
	}

	res, err := r.repository.GoquDBWrapper.Update("users").
		Set(record).
		Where(goqu.Ex{"user_id": id}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return custom_error.WrapDBError("failed to update user", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("사용자를 찾을 수 없습니다: %w", custom_error.ErrNotFound)
	}

	return nil
}

// DeleteUser fails with a foreign key violation while the user still holds assets.
func (r *userRepositoryImpl) DeleteUser(ctx context.Context, id int) error {
	res, err := r.repository.GoquDBWrapper.Delete("users").
		Where(goqu.Ex{"user_id": id}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return custom_error.WrapDBError("failed to delete user", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("사용자를 찾을 수 없습니다: %w", custom_error.ErrNotFound)
	}

	return nil
}

func (r *userRepositoryImpl) TemporaryCount(ctx context.Context) (int, error) {
	count, err := r.repository.GoquDBWrapper.From("users").
		Where(goqu.Ex{"is_temporary": true}).
		CountContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count temporary users: %w", err)
	}
	return int(count), nil
}

func (r *userRepositoryImpl) TemporaryNameTaken(ctx context.Context, name string) (bool, error) {
	return r.exists(ctx, goqu.Ex{"is_temporary": true, "name": name})
}

func (r *userRepositoryImpl) CjIDExists(ctx context.Context, cjID string) (bool, error) {
	return r.exists(ctx, goqu.Ex{"cj_id": cjID})
}

func (r *userRepositoryImpl) exists(ctx context.Context, where goqu.Ex) (bool, error) {
	count, err := r.repository.GoquDBWrapper.From("users").
		Where(where).
		CountContext(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check users: %w", err)
	}
	return count > 0, nil
}

func (r *userRepositoryImpl) PersistTemporaryUser(ctx context.Context, user models.User) (int, error) {
	var id int
	_, err := r.repository.GoquDBWrapper.Insert("users").
		Rows(goqu.Record{
			"cj_id":        user.CjID,
			"name":         user.Name,
			"part":         user.Part,
			"is_temporary": true,
		}).
		Returning("user_id").
		Executor().
		ScanValContext(ctx, &id)
	if err != nil {
		return 0, custom_error.WrapDBError("failed to insert temporary user", err)
	}
	return id, nil
}

// FinalizeUser replaces a temporary cj_id everywhere it is referenced.
// assets.in_user follows through ON UPDATE CASCADE.
func (r *userRepositoryImpl) FinalizeUser(ctx context.Context, id int, cjID, part string) error {
	cjID = strings.TrimSpace(cjID)
	part = strings.TrimSpace(part)

	return repository.WithTransaction(ctx, r.repository.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		var oldCjID string
		found, err := tx.From("users").
			Select("cj_id").
			Where(goqu.Ex{"user_id": id}).
			ForUpdate(exp.Wait).
			ScanValContext(ctx, &oldCjID)
		if err != nil {
			return fmt.Errorf("failed to read user %d: %w", id, err)
		}
		if !found {
			return fmt.Errorf("사용자를 찾을 수 없습니다: %w", custom_error.ErrNotFound)
		}

		duplicates, err := tx.From("users").
			Where(goqu.Ex{"cj_id": cjID, "user_id": goqu.Op{"neq": id}}).
			CountContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to check cj_id: %w", err)
		}
		if duplicates > 0 {
			return fmt.Errorf("이미 사용 중인 cj_id입니다: %w", custom_error.ErrConflict)
		}

		_, err = tx.Update("users").
			Set(goqu.Record{"cj_id": cjID, "part": part, "is_temporary": false}).
			Where(goqu.Ex{"user_id": id}).
			Executor().
			ExecContext(ctx)
		if err != nil {
			return custom_error.WrapDBError("failed to finalize user", err)
		}

		renames := []struct {
			table  string
			column string
			extra  goqu.Record
		}{
			{"trade", "cj_id", nil},
			{"trade", "asset_in_user", nil},
			{"trade", "ex_user", nil},
			{"returned_assets", "user_id", goqu.Record{"department": part}},
			{"confirmed_assets", "cj_id", nil},
		}
		for _, rename := range renames {
			record := goqu.Record{rename.column: cjID}
			for k, v := range rename.extra {
				record[k] = v
			}
			_, err = tx.Update(rename.table).
				Set(record).
				Where(goqu.Ex{rename.column: oldCjID}).
				Executor().
				ExecContext(ctx)
			if err != nil {
				return fmt.Errorf("failed to rename %s.%s: %w", rename.table, rename.column, err)
			}
		}

		return nil
	})
}
