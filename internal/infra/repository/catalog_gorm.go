package repository

import (
	"context"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type categoryGormRepository struct {
	db *gorm.DB
}

func NewCategoryGormRepository(db *gorm.DB) repo.CategoryRepository {
	return &categoryGormRepository{db: db}
}

func (r *categoryGormRepository) List(ctx context.Context) ([]model.Category, error) {
	var list []model.Category
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *categoryGormRepository) FindBySlug(ctx context.Context, slug string) (model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error
	if isNotFound(err) {
		return model.Category{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Category{}, err
	}
	return c, nil
}

// nameとslugのどちらのユニーク制約でもErrDuplicateCategory
func (r *categoryGormRepository) Create(ctx context.Context, c model.Category) (model.Category, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&c).Error
	})
	if isUniqueViolation(err, "") {
		return model.Category{}, repo.ErrDuplicateCategory
	}
	if err != nil {
		return model.Category{}, err
	}
	return c, nil
}

type sellerGormRepository struct {
	db *gorm.DB
}

func NewSellerGormRepository(db *gorm.DB) repo.SellerRepository {
	return &sellerGormRepository{db: db}
}

func (r *sellerGormRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (model.Seller, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *sellerGormRepository) FindBySlug(ctx context.Context, slug string) (model.Seller, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *sellerGormRepository) first(ctx context.Context, query string, arg interface{}) (model.Seller, error) {
	var s model.Seller
	err := r.db.WithContext(ctx).Where(query, arg).First(&s).Error
	if isNotFound(err) {
		return model.Seller{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Seller{}, err
	}
	return s, nil
}

// 申請内容の保存。承認状態はSetApprovedだけが変える
func (r *sellerGormRepository) Save(ctx context.Context, s model.Seller) (model.Seller, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.ID == uuid.Nil {
			return tx.Create(&s).Error
		}
		res := tx.Model(&model.Seller{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
			"business_name":        s.BusinessName,
			"slug":                 s.Slug,
			"inn_number":           s.InnNumber,
			"website_url":          s.WebsiteURL,
			"phone_number":         s.PhoneNumber,
			"business_description": s.BusinessDescription,
			"business_address":     s.BusinessAddress,
			"city":                 s.City,
			"postal_code":          s.PostalCode,
			"bank_name":            s.BankName,
			"bic_bank_number":      s.BicBankNumber,
			"bank_account_number":  s.BankAccountNumber,
			"bank_routing_number":  s.BankRoutingNumber,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
	if isUniqueViolation(err, model.SellerSlugIndex) {
		return model.Seller{}, repo.ErrDuplicateSlug
	}
	if err != nil {
		return model.Seller{}, err
	}
	return r.first(ctx, "id = ?", s.ID)
}

func (r *sellerGormRepository) SetApproved(ctx context.Context, sellerID uuid.UUID, approved bool) error {
	res := r.db.WithContext(ctx).Model(&model.Seller{}).Where("id = ?", sellerID).Update("is_approved", approved)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
