package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// REDIS_ADDRが無いときのトークン保存先（user_tokensテーブル）
type tokenGormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTokenGormStore(db *gorm.DB) repo.TokenStore {
	return &tokenGormStore{db: db, now: time.Now}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// (purpose, user_id)が主キーなので再発行で上書きされる
func (s *tokenGormStore) Issue(ctx context.Context, purpose model.TokenPurpose, userID int64, token string, ttl time.Duration) error {
	t := model.UserToken{
		Purpose:   purpose,
		UserID:    userID,
		TokenHash: hashToken(token),
		ExpiresAt: s.now().Add(ttl),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "purpose"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"token_hash", "expires_at"}),
		}).
		Create(&t).Error
	return translateError(err)
}

func (s *tokenGormStore) Consume(ctx context.Context, purpose model.TokenPurpose, token string) (int64, error) {
	var userID int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t model.UserToken
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("purpose = ? AND token_hash = ? AND expires_at > ?", purpose, hashToken(token), s.now()).
			First(&t).Error; err != nil {
			return translateError(err)
		}

		//使い捨て
		if err := tx.Where("purpose = ? AND user_id = ?", t.Purpose, t.UserID).
			Delete(&model.UserToken{}).Error; err != nil {
			return err
		}
		userID = t.UserID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return userID, nil
}
