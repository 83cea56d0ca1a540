package usecase

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// 1回のインポートで同時に処理する行数の上限
const importConcurrency = 8

// CSVから読み取った1行。パースはhandler側の責務で、ここでは文字列のまま受ける。
type ImportRow struct {
	Line     int
	Name     string
	Unit     string
	Category string
	Brand    string
	Stock    string
	Status   string
	Image    string
}

type DuplicateRow struct {
	Name       string `json:"name"`
	ExistingID int64  `json:"existingId"`
}

type MalformedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type ImportOutcome struct {
	BatchID    string         `json:"batchId"`
	Added      int            `json:"added"`
	Skipped    int            `json:"skipped"`
	Duplicates []DuplicateRow `json:"duplicates"`
	Malformed  []MalformedRow `json:"malformed"`
}

type ImportUsecase struct {
	productRepo repo.ProductRepository
	cache       ProductListCache
	logger      *slog.Logger
}

// DI。cacheはnil可。
func NewImportUsecase(productRepo repo.ProductRepository, cache ProductListCache, logger *slog.Logger) *ImportUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportUsecase{
		productRepo: productRepo,
		cache:       cache,
		logger:      logger,
	}
}

type rowKind int

const (
	rowAdded rowKind = iota
	rowDuplicate
	rowMalformed
)

type rowResult struct {
	kind rowKind
	dup  DuplicateRow
	mal  MalformedRow
}

// ImportProducts は取り込んだ行を既存商品と突き合わせ、新規だけを登録する。
// 行ごとの処理は並行で走るが、結果の集計は全行の完了を待ってから行う。
// 同名の行が同時に走ってもDBのユニーク制約が二重登録を止めるので、
// 制約違反は「重複としてスキップ」に読み替える。
func (u *ImportUsecase) ImportProducts(ctx context.Context, rows []ImportRow) (ImportOutcome, error) {
	batchID := uuid.NewString()

	results := make([]rowResult, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(importConcurrency)

	for i, row := range rows {
		g.Go(func() error {
			res, err := u.processRow(gctx, row)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	//全行の決着を待ってから集計する
	if err := g.Wait(); err != nil {
		return ImportOutcome{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := ImportOutcome{
		BatchID:    batchID,
		Duplicates: []DuplicateRow{},
		Malformed:  []MalformedRow{},
	}
	for _, res := range results {
		switch res.kind {
		case rowAdded:
			out.Added++
		case rowDuplicate:
			out.Skipped++
			out.Duplicates = append(out.Duplicates, res.dup)
		case rowMalformed:
			out.Malformed = append(out.Malformed, res.mal)
		}
	}

	u.logger.Info("import finished",
		"batch_id", batchID,
		"rows", len(rows),
		"added", out.Added,
		"skipped", out.Skipped,
		"malformed", len(out.Malformed),
	)

	if out.Added > 0 && u.cache != nil {
		u.cache.Invalidate(ctx)
	}

	return out, nil
}

func (u *ImportUsecase) processRow(ctx context.Context, row ImportRow) (rowResult, error) {
	name := strings.TrimSpace(row.Name)
	if name == "" {
		return rowResult{
			kind: rowMalformed,
			mal:  MalformedRow{Line: row.Line, Reason: "name required"},
		}, nil
	}

	//既存チェック（大文字小文字は無視）。ヒットしたら登録せず報告だけ。
	existing, err := u.productRepo.FindByNameCI(ctx, name)
	if err == nil {
		return rowResult{
			kind: rowDuplicate,
			dup:  DuplicateRow{Name: name, ExistingID: existing.ID},
		}, nil
	}
	if err != repo.ErrNotFound {
		return rowResult{}, err
	}

	stock := coerceStock(row.Stock)

	_, err = u.productRepo.Create(ctx, model.Product{
		Name:     name,
		Unit:     strings.TrimSpace(row.Unit),
		Category: strings.TrimSpace(row.Category),
		Brand:    strings.TrimSpace(row.Brand),
		Stock:    stock,
		Status:   model.StockStatus(stock),
		Image:    strings.TrimSpace(row.Image),
	})
	if err == repo.ErrDuplicateName {
		//同名の行と競った方の負け。重複として数える。
		dup := DuplicateRow{Name: name}
		if winner, ferr := u.productRepo.FindByNameCI(ctx, name); ferr == nil {
			dup.ExistingID = winner.ID
		}
		return rowResult{kind: rowDuplicate, dup: dup}, nil
	}
	if err != nil {
		return rowResult{}, err
	}

	return rowResult{kind: rowAdded}, nil
}

// 在庫値を非負の整数に寄せる。数値でない・負のときは0。
func coerceStock(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
