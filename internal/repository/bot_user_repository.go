package repository

import (
	"context"

	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BotUserRepository struct {
	db *gorm.DB
}

func NewBotUserRepository(db *gorm.DB) *BotUserRepository {
	return &BotUserRepository{db: db}
}

// Upsert creates the bot user or refreshes its profile fields on conflict
func (r *BotUserRepository) Upsert(ctx context.Context, user *domain.BotUser) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"first_name", "updated_at"}),
	}).Create(user).Error
}

func (r *BotUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.BotUser, error) {
	var user domain.BotUser
	err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *BotUserRepository) UpdateLanguage(ctx context.Context, telegramID int64, language domain.BotLanguage) error {
	return r.db.WithContext(ctx).Model(&domain.BotUser{}).
		Where("telegram_id = ?", telegramID).
		Update("language", language).Error
}

func (r *BotUserRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.BotUser{}).Count(&total).Error
	return total, err
}
