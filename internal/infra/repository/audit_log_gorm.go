package repository

import (
	"context"
	"errors"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"gorm.io/gorm"
)

var errIncompleteAuditLog = errors.New("audit log needs action, resource type and resource id")

type AuditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &AuditLogGormRepository{db: db}
}

// 呼び出し元のトランザクションで書く（失敗したら操作ごと戻る）
func (r *AuditLogGormRepository) Create(ctx context.Context, entry model.AuditLog) error {
	if entry.Action == "" || entry.ResourceType == "" || entry.ResourceID == "" {
		return errIncompleteAuditLog
	}
	entry.BeforeJSON = emptyJSON(entry.BeforeJSON)
	entry.AfterJSON = emptyJSON(entry.AfterJSON)

	return r.db.WithContext(ctx).Create(&entry).Error
}

func emptyJSON(s string) string {
	if s == "" {
		return "{}"
	}
	return s
}
