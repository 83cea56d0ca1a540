package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"app/internal/domain/model"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// =====================
// parseCSVRows
// =====================

func TestParseCSVRows_HeaderMapping(t *testing.T) {
	in := "name,unit,category,brand,stock,status,image\n" +
		"Rice,kg,Grains,Acme,3,In Stock,rice.png\n"

	rows, err := parseCSVRows(strings.NewReader(in))
	assert.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, usecase.ImportRow{
		Line: 2, Name: "Rice", Unit: "kg", Category: "Grains",
		Brand: "Acme", Stock: "3", Status: "In Stock", Image: "rice.png",
	}, rows[0])
}

// 列順が違っても・列が欠けてもヘッダー名で読む
func TestParseCSVRows_ColumnsByName(t *testing.T) {
	in := "stock,name\n5,Beans\n"

	rows, err := parseCSVRows(strings.NewReader(in))
	assert.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Beans", rows[0].Name)
	assert.Equal(t, "5", rows[0].Stock)
	assert.Empty(t, rows[0].Brand)
}

func TestParseCSVRows_QuotedFields(t *testing.T) {
	in := "name,brand\n\"Rice, long grain\",\"Acme \"\"Best\"\"\"\n"

	rows, err := parseCSVRows(strings.NewReader(in))
	assert.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Rice, long grain", rows[0].Name)
	assert.Equal(t, `Acme "Best"`, rows[0].Brand)
}

func TestParseCSVRows_MissingNameHeader(t *testing.T) {
	_, err := parseCSVRows(strings.NewReader("unit,stock\nkg,3\n"))
	assert.Error(t, err)
}

func TestParseCSVRows_EmptyFile(t *testing.T) {
	rows, err := parseCSVRows(strings.NewReader(""))
	assert.NoError(t, err)
	assert.Empty(t, rows)
}

// =====================
// HTTP round trip
// =====================

func newTestServer(t *testing.T) (*echo.Echo, *infraRepo.ProductGormRepository) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB, &model.Product{}, &model.InventoryLog{}))

	productRepo := infraRepo.NewProductGormRepository(gormDB)
	logRepo := infraRepo.NewInventoryLogGormRepository(gormDB)

	productUC := usecase.NewProductUsecase(productRepo, logRepo, nil, nil)
	importUC := usecase.NewImportUsecase(productRepo, nil, nil)
	exportUC := usecase.NewExportUsecase(productRepo)

	e := echo.New()
	NewProductHandler(productUC).RegisterRoutes(e)
	NewImportExportHandler(importUC, exportUC).RegisterRoutes(e)
	return e, productRepo
}

func multipartCSV(t *testing.T, csvBody string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", "products.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csvBody))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func doImport(t *testing.T, e *echo.Echo, csvBody string) usecase.ImportOutcome {
	t.Helper()

	body, contentType := multipartCSV(t, csvBody)
	req := httptest.NewRequest(http.MethodPost, "/api/products/import", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out usecase.ImportOutcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestImportEndpoint(t *testing.T) {
	e, _ := newTestServer(t)

	out := doImport(t, e, "name,stock\nRice,3\nBeans,5\n")
	assert.Equal(t, 2, out.Added)
	assert.Equal(t, 0, out.Skipped)

	out = doImport(t, e, "name,stock\nrice,9\n")
	assert.Equal(t, 0, out.Added)
	assert.Equal(t, 1, out.Skipped)
	require.Len(t, out.Duplicates, 1)
	assert.Equal(t, "rice", out.Duplicates[0].Name)
}

func TestImportEndpoint_FileRequired(t *testing.T) {
	e, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/products/import", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportEndpoint_Headers(t *testing.T) {
	e, _ := newTestServer(t)
	doImport(t, e, "name,stock\nRice,3\n")

	req := httptest.NewRequest(http.MethodGet, "/api/products/export", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "products.csv")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "name,unit,category,brand,stock,status,image\n"))
}

// export→importで追加ゼロ・全行重複になる（安定状態での往復は何も変えない）
func TestExportImportRoundTrip(t *testing.T) {
	e, _ := newTestServer(t)

	out := doImport(t, e, "name,unit,category,brand,stock\n"+
		"Rice,kg,Grains,\"Acme, Inc\",3\n"+
		"Beans,kg,Grains,Acme,0\n")
	require.Equal(t, 2, out.Added)

	req := httptest.NewRequest(http.MethodGet, "/api/products/export", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	out = doImport(t, e, rec.Body.String())
	assert.Equal(t, 0, out.Added)
	assert.Equal(t, 2, out.Skipped)
	assert.Empty(t, out.Malformed)
}

// 更新で在庫が変わると履歴が載り、削除で履歴ごと消える
func TestUpdateDeleteHistoryFlow(t *testing.T) {
	e, productRepo := newTestServer(t)

	doImport(t, e, "name,stock\nOil,10\n")
	oil, err := productRepo.FindByNameCI(context.Background(), "oil")
	require.NoError(t, err)

	//在庫10→0
	body := `{"name":"Oil","stock":0}`
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/products/%d", oil.ID), strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated usecase.UpdateProductOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, model.StatusOutOfStock, updated.Product.Status)

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/products/%d/history", oil.ID), nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var logs []model.InventoryLog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, int64(10), logs[0].OldStock)
	assert.Equal(t, int64(0), logs[0].NewStock)

	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/products/%d", oil.ID), nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	//削除後のhistoryはnot found
	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/products/%d/history", oil.ID), nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
