package service

import (
	"errors"
	"fmt"

	"marketplace_backend/internal/domain/store/model"
	"marketplace_backend/internal/domain/store/repository"
	userModel "marketplace_backend/internal/domain/user/model"
	userRepo "marketplace_backend/internal/domain/user/repository"
	"marketplace_backend/internal/pkg/notify"

	"gorm.io/gorm"
)

var (
	ErrStoreNotFound    = errors.New("store not found")
	ErrStoreExists      = errors.New("owner already has a store")
	ErrStoreNotApproved = errors.New("store is not approved")
	ErrProductNotFound  = errors.New("product not found")
	ErrNotStoreOwner    = errors.New("product does not belong to your store")
	ErrInvalidDecision  = errors.New("decision must be approve or reject")
)

// StoreService 店铺服务接口
type StoreService interface {
	RegisterStore(ownerID uint, name, description string) (*model.Store, error)
	ReviewStore(storeID, reviewerID uint, approve bool, note string) (*model.Store, error)
	GetStore(id uint) (*model.Store, error)
	ListStores(status string, page, limit int) ([]model.Store, int64, error)

	AddProduct(ownerID uint, name, description string, price float64, stock int, imageURL string) (*model.Product, error)
	UpdateProduct(ownerID, productID uint, price float64, stock int) (*model.Product, error)
	GetProduct(id uint) (*model.Product, error)
	ListProducts(storeID uint, page, limit int) ([]model.Product, int64, error)
}

type storeService struct {
	repo     repository.StoreRepository
	users    userRepo.UserRepository
	notifier notify.Notifier
}

func NewStoreService(repo repository.StoreRepository, users userRepo.UserRepository, notifier notify.Notifier) StoreService {
	return &storeService{repo: repo, users: users, notifier: notifier}
}

// RegisterStore 注册店铺，初始为待审核状态，并将用户升级为店主
func (s *storeService) RegisterStore(ownerID uint, name, description string) (*model.Store, error) {
	if _, err := s.repo.GetStoreByOwner(ownerID); err == nil {
		return nil, ErrStoreExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	store := &model.Store{
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Status:      model.StoreStatusPending,
	}
	if err := s.repo.CreateStore(store); err != nil {
		return nil, err
	}

	if err := s.users.UpdateRole(ownerID, userModel.RoleStoreOwner); err != nil {
		return nil, err
	}

	// 通知管理员池有新店铺待审核
	s.notifier.Notify(nil, notify.RoleAdmin,
		"New store pending review",
		fmt.Sprintf("Store %q (#%d) is waiting for approval.", store.Name, store.ID),
		"store_review",
		fmt.Sprintf("/admin/stores/%d", store.ID),
	)

	return store, nil
}

// ReviewStore 管理员裁决店铺 (approve / reject)
func (s *storeService) ReviewStore(storeID, reviewerID uint, approve bool, note string) (*model.Store, error) {
	status := model.StoreStatusRejected
	if approve {
		status = model.StoreStatusApproved
	}

	if err := s.repo.ReviewStore(storeID, reviewerID, status, note); err != nil {
		return nil, err
	}

	store, err := s.repo.GetStoreByID(storeID)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(&store.OwnerID, notify.RoleCustomer,
		"Store review result",
		fmt.Sprintf("Your store %q has been %s.", store.Name, status),
		"store_review",
		fmt.Sprintf("/stores/%d", store.ID),
	)

	return store, nil
}

func (s *storeService) GetStore(id uint) (*model.Store, error) {
	store, err := s.repo.GetStoreByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return store, nil
}

func (s *storeService) ListStores(status string, page, limit int) ([]model.Store, int64, error) {
	offset := (page - 1) * limit
	return s.repo.ListStores(status, offset, limit)
}

// AddProduct 上架商品，只有已审核通过的店铺可以上架
func (s *storeService) AddProduct(ownerID uint, name, description string, price float64, stock int, imageURL string) (*model.Product, error) {
	store, err := s.repo.GetStoreByOwner(ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	if store.Status != model.StoreStatusApproved {
		return nil, ErrStoreNotApproved
	}

	product := &model.Product{
		StoreID:     store.ID,
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
		ImageURL:    imageURL,
	}
	if err := s.repo.CreateProduct(product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct 更新价格/库存，校验商品属于店主自己的店铺
func (s *storeService) UpdateProduct(ownerID, productID uint, price float64, stock int) (*model.Product, error) {
	store, err := s.repo.GetStoreByOwner(ownerID)
	if err != nil {
		return nil, ErrStoreNotFound
	}

	product, err := s.repo.GetProduct(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if product.StoreID != store.ID {
		return nil, ErrNotStoreOwner
	}

	product.Price = price
	product.Stock = stock
	if err := s.repo.UpdateProduct(product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *storeService) GetProduct(id uint) (*model.Product, error) {
	product, err := s.repo.GetProduct(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *storeService) ListProducts(storeID uint, page, limit int) ([]model.Product, int64, error) {
	offset := (page - 1) * limit
	return s.repo.ListProducts(storeID, offset, limit)
}
