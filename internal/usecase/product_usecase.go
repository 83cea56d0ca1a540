package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 一覧キャッシュの約束。Redis実装はinfra/cacheにある。nilなら素通し。
type ProductListCache interface {
	Get(ctx context.Context) ([]model.Product, bool)
	Set(ctx context.Context, products []model.Product)
	Invalidate(ctx context.Context)
}

type ProductUsecase struct {
	productRepo repo.ProductRepository
	logRepo     repo.InventoryLogRepository
	cache       ProductListCache
	logger      *slog.Logger
}

// DI。cacheはnil可。
func NewProductUsecase(
	productRepo repo.ProductRepository,
	logRepo repo.InventoryLogRepository,
	cache ProductListCache,
	logger *slog.Logger,
) *ProductUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductUsecase{
		productRepo: productRepo,
		logRepo:     logRepo,
		cache:       cache,
		logger:      logger,
	}
}

func (u *ProductUsecase) ListProducts(ctx context.Context) ([]model.Product, error) {
	if u.cache != nil {
		if products, ok := u.cache.Get(ctx); ok {
			return products, nil
		}
	}

	products, err := u.productRepo.ListAll(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if u.cache != nil {
		u.cache.Set(ctx, products)
	}
	return products, nil
}

func (u *ProductUsecase) SearchProducts(ctx context.Context, fragment string) ([]model.Product, error) {
	products, err := u.productRepo.SearchByName(ctx, strings.TrimSpace(fragment))
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return products, nil
}

func (u *ProductUsecase) GetProduct(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

type ProductInput struct {
	Name     string
	Unit     string
	Category string
	Brand    string
	Stock    int64
	Image    string
}

// 商品の作成。ステータスはstockから導出する。作成時は履歴を残さない。
func (u *ProductUsecase) CreateProduct(ctx context.Context, in ProductInput) (model.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Stock < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}

	p, err := u.productRepo.Create(ctx, model.Product{
		Name:     strings.TrimSpace(in.Name),
		Unit:     in.Unit,
		Category: in.Category,
		Brand:    in.Brand,
		Stock:    in.Stock,
		Status:   model.StockStatus(in.Stock),
		Image:    in.Image,
	})
	if err == repo.ErrDuplicateName {
		return model.Product{}, NewHTTPError(http.StatusConflict, "name already exists")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.invalidateList(ctx)
	return p, nil
}

type UpdateProductOutput struct {
	Product model.Product `json:"product"`

	//履歴の書き込みに失敗したときだけ入る。更新自体は成立している。
	AuditWarning string `json:"audit_warning,omitempty"`
}

// 商品の更新。更新を確定させてから、在庫が変わったときだけ履歴を残す。
// 履歴の書き込み失敗は警告止まりで、更新は取り消さない。
func (u *ProductUsecase) UpdateProduct(ctx context.Context, productID int64, changedBy string, in ProductInput) (UpdateProductOutput, error) {
	if productID <= 0 {
		return UpdateProductOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if strings.TrimSpace(in.Name) == "" {
		return UpdateProductOutput{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Stock < 0 {
		return UpdateProductOutput{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	if strings.TrimSpace(changedBy) == "" {
		changedBy = "admin"
	}

	//変更前の在庫（old）
	before, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return UpdateProductOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return UpdateProductOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	updated := model.Product{
		ID:       productID,
		Name:     strings.TrimSpace(in.Name),
		Unit:     in.Unit,
		Category: in.Category,
		Brand:    in.Brand,
		Stock:    in.Stock,
		Status:   model.StockStatus(in.Stock),
		Image:    in.Image,
	}

	err = u.productRepo.Update(ctx, updated)
	if err == repo.ErrNotFound {
		return UpdateProductOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err == repo.ErrDuplicateName {
		return UpdateProductOutput{}, NewHTTPError(http.StatusConflict, "name already exists")
	}
	if err != nil {
		return UpdateProductOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.invalidateList(ctx)

	out := UpdateProductOutput{Product: updated}

	//在庫が変わったときだけ履歴を残す
	if before.Stock != in.Stock {
		log := model.InventoryLog{
			ProductID: productID,
			OldStock:  before.Stock,
			NewStock:  in.Stock,
			ChangedBy: changedBy,
		}
		if err := u.logRepo.Create(ctx, log); err != nil {
			u.logger.Warn("inventory log write failed",
				"product_id", productID,
				"old_stock", before.Stock,
				"new_stock", in.Stock,
				"error", err,
			)
			out.AuditWarning = "stock updated but history could not be recorded"
		}
	}

	return out, nil
}

func (u *ProductUsecase) DeleteProduct(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	err := u.productRepo.Delete(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.invalidateList(ctx)
	return nil
}

// 在庫変更履歴。商品がなければnot found（古い履歴を返さない）。
func (u *ProductUsecase) History(ctx context.Context, productID int64) ([]model.InventoryLog, error) {
	if productID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if _, err := u.productRepo.FindByID(ctx, productID); err != nil {
		if err == repo.ErrNotFound {
			return nil, NewHTTPError(http.StatusNotFound, "not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	logs, err := u.logRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return logs, nil
}

func (u *ProductUsecase) invalidateList(ctx context.Context) {
	if u.cache != nil {
		u.cache.Invalidate(ctx)
	}
}
