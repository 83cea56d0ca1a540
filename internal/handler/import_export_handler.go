package handler

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// CSVの取り込みと書き出し。
// CSVのパースまでがここの責務で、行の突き合わせはusecaseに渡す。
type ImportExportHandler struct {
	importUC *usecase.ImportUsecase
	exportUC *usecase.ExportUsecase
}

// DI
func NewImportExportHandler(importUC *usecase.ImportUsecase, exportUC *usecase.ExportUsecase) *ImportExportHandler {
	return &ImportExportHandler{importUC: importUC, exportUC: exportUC}
}

func (h *ImportExportHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/products")

	g.POST("/import", h.importCSV)
	g.GET("/export", h.exportCSV)
}

func (h *ImportExportHandler) importCSV(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file required"})
	}

	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cannot open file"})
	}
	defer f.Close()

	rows, err := parseCSVRows(f)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	out, err := h.importUC.ImportProducts(c.Request().Context(), rows)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ImportExportHandler) exportCSV(c echo.Context) error {
	data, err := h.exportUC.ExportCSV(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%s", usecase.ExportFilename))
	return c.Blob(http.StatusOK, usecase.ExportContentType, data)
}

// parseCSVRows はヘッダー行で列位置を決めて、全行をImportRowに読む。
// 列の過不足がある行も落とさず読めるところまで読む。
func parseCSVRows(r io.Reader) ([]usecase.ImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return []usecase.ImportRow{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}

	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := col["name"]; !ok {
		return nil, fmt.Errorf("csv header must contain name column")
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var rows []usecase.ImportRow
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid csv: %w", err)
		}
		line++

		rows = append(rows, usecase.ImportRow{
			Line:     line,
			Name:     field(record, "name"),
			Unit:     field(record, "unit"),
			Category: field(record, "category"),
			Brand:    field(record, "brand"),
			Stock:    field(record, "stock"),
			Status:   field(record, "status"),
			Image:    field(record, "image"),
		})
	}

	return rows, nil
}
