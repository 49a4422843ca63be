package repository

import (
	"context"
	"errors"
	"time"

	"shop/internal/domain/model"

	"github.com/google/uuid"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// emailが使用済み
var ErrEmailTaken = errors.New("email already used")

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	//最後のログイン時刻を更新
	TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, firstName, lastName string) error
	SetAccountType(ctx context.Context, userID uuid.UUID, t model.AccountType) error
	// is_activeを落としてtoken_versionを進める（発行済みtokenも無効）
	Deactivate(ctx context.Context, userID uuid.UUID) error
}
