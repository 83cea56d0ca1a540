package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"strconv"

	repo "app/internal/repository"
)

// ダウンロード時のメタ情報。HTTP層がヘッダーに載せる。
const (
	ExportFilename    = "products.csv"
	ExportContentType = "text/csv"
)

// CSVの列順。インポート側のヘッダーと揃えてある。
var exportHeader = []string{"name", "unit", "category", "brand", "stock", "status", "image"}

type ExportUsecase struct {
	productRepo repo.ProductRepository
}

// DI
func NewExportUsecase(productRepo repo.ProductRepository) *ExportUsecase {
	return &ExportUsecase{productRepo: productRepo}
}

// ExportCSV は全商品をCSVとして書き出す。
// encoding/csvに任せるので、カンマや改行を含むフィールドも正しくクォートされる。
func (u *ExportUsecase) ExportCSV(ctx context.Context) ([]byte, error) {
	products, err := u.productRepo.ListAll(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "csv error")
	}
	for _, p := range products {
		record := []string{
			p.Name,
			p.Unit,
			p.Category,
			p.Brand,
			strconv.FormatInt(p.Stock, 10),
			p.Status,
			p.Image,
		}
		if err := w.Write(record); err != nil {
			return nil, NewHTTPError(http.StatusInternalServerError, "csv error")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "csv error")
	}
	return buf.Bytes(), nil
}
