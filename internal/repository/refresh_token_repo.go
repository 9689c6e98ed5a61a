package repository

import (
	"context"

	"authservice/internal/model"

	"gorm.io/gorm"
)

// RefreshTokenRepository persists the revocable refresh-token rows. Deleting
// a row revokes the token; validity checks require a row matching both the
// token id and the owning user id.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	// DeleteByID removes a row by id. Deleting a missing id is not an error.
	DeleteByID(ctx context.Context, id uint) error
	// DeleteByIDForUser removes the row matching both ids and reports how many
	// rows were affected. Rotation uses the count as a compare-and-delete: zero
	// means the token was already rotated or revoked.
	DeleteByIDForUser(ctx context.Context, id, userID uint) (int64, error)
	ExistsForUser(ctx context.Context, id, userID uint) (bool, error)
	DeleteAllForUser(ctx context.Context, userID uint) error
}

type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository returns a new instance of RefreshTokenRepository
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	return GetDB(ctx, r.db).Create(token).Error
}

func (r *refreshTokenRepository) DeleteByID(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.RefreshToken{}).Error
}

func (r *refreshTokenRepository) DeleteByIDForUser(ctx context.Context, id, userID uint) (int64, error) {
	result := GetDB(ctx, r.db).Where("id = ? AND user_id = ?", id, userID).Delete(&model.RefreshToken{})
	return result.RowsAffected, result.Error
}

func (r *refreshTokenRepository) ExistsForUser(ctx context.Context, id, userID uint) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.RefreshToken{}).
		Where("id = ? AND user_id = ?", id, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *refreshTokenRepository) DeleteAllForUser(ctx context.Context, userID uint) error {
	return GetDB(ctx, r.db).Where("user_id = ?", userID).Delete(&model.RefreshToken{}).Error
}
