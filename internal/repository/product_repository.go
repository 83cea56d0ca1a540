package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// nameのユニーク制約違反。作成系だけが返す。
var ErrDuplicateName = errors.New("duplicate name")

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	// 全件をid昇順で返す
	ListAll(ctx context.Context) ([]model.Product, error)

	FindByID(ctx context.Context, id int64) (model.Product, error)

	// 大文字小文字を無視した完全一致。ヒットしなければErrNotFound。
	FindByNameCI(ctx context.Context, name string) (model.Product, error)

	// 大文字小文字を無視した部分一致。id昇順で返す。
	SearchByName(ctx context.Context, fragment string) ([]model.Product, error)

	// name重複はErrDuplicateName
	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error

	// 商品と履歴を同一トランザクションで削除
	Delete(ctx context.Context, id int64) error
}
