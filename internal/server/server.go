package server

import (
	"net/http"

	"app/internal/handler"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// New はルーティング済みのechoを組み立てる。起動はmain側。
func New(productH *handler.ProductHandler, ioH *handler.ImportExportHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	productH.RegisterRoutes(e)
	ioH.RegisterRoutes(e)

	//疎通確認用
	e.GET("/api", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "API is running"})
	})

	return e
}
