package repository

import (
	"errors"

	"marketplace_backend/internal/domain/store/model"

	"gorm.io/gorm"
)

var (
	// ErrStoreNotPending 店铺不在待审核状态，无法裁决
	ErrStoreNotPending = errors.New("store is not pending review")
)

type StoreRepository interface {
	CreateStore(store *model.Store) error
	GetStoreByID(id uint) (*model.Store, error)
	GetStoreByOwner(ownerID uint) (*model.Store, error)
	ListStores(status string, offset, limit int) ([]model.Store, int64, error)
	ReviewStore(storeID, reviewerID uint, status, note string) error

	CreateProduct(product *model.Product) error
	GetProduct(id uint) (*model.Product, error)
	ListProducts(storeID uint, offset, limit int) ([]model.Product, int64, error)
	UpdateProduct(product *model.Product) error
}

type storeRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) CreateStore(store *model.Store) error {
	return r.db.Create(store).Error
}

func (r *storeRepository) GetStoreByID(id uint) (*model.Store, error) {
	var store model.Store
	if err := r.db.First(&store, id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) GetStoreByOwner(ownerID uint) (*model.Store, error) {
	var store model.Store
	if err := r.db.Where("owner_id = ?", ownerID).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) ListStores(status string, offset, limit int) ([]model.Store, int64, error) {
	var stores []model.Store
	var total int64

	query := r.db.Model(&model.Store{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&stores).Error; err != nil {
		return nil, 0, err
	}
	return stores, total, nil
}

// ReviewStore 条件更新：只有待审核的店铺可以被裁决，防止并发重复审核
func (r *storeRepository) ReviewStore(storeID, reviewerID uint, status, note string) error {
	result := r.db.Model(&model.Store{}).
		Where("id = ? AND status = ?", storeID, model.StoreStatusPending).
		Updates(map[string]interface{}{
			"status":      status,
			"review_note": note,
			"reviewed_by": reviewerID,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStoreNotPending
	}
	return nil
}

func (r *storeRepository) CreateProduct(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *storeRepository) GetProduct(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *storeRepository) ListProducts(storeID uint, offset, limit int) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	query := r.db.Model(&model.Product{})
	if storeID != 0 {
		query = query.Where("store_id = ?", storeID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *storeRepository) UpdateProduct(product *model.Product) error {
	return r.db.Save(product).Error
}
