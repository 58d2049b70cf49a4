package book

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"library/app/echoServer/controller"
	booksvc "library/service/book"
)

type Controller struct {
	Svc booksvc.Service
	Log *slog.Logger
}

func badPrice(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"message": "validation error",
		"errors":  echo.Map{"price": "gte"},
	})
}

func validPrice(p decimal.Decimal) bool { return !p.IsNegative() }

// POST /api/books
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return controller.Invalid(c, h.Log, err)
	}
	if err := c.Validate(&req); err != nil {
		return controller.Invalid(c, h.Log, err)
	}
	if !validPrice(req.Price) {
		return badPrice(c)
	}

	b, err := h.Svc.Create(c.Request().Context(), booksvc.Input{
		ExternalID:    req.ExternalID,
		Title:         req.Title,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
	})
	if err != nil {
		return controller.Fail(c, h.Log, "create book", err)
	}
	return c.JSON(http.StatusCreated, toResp(b))
}

// GET /api/books
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return controller.Fail(c, h.Log, "list books", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": toList(rows)})
}

// GET /api/books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, ok := controller.ParamID(c, "id")
	if !ok {
		return controller.BadID(c)
	}
	row, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		return controller.Fail(c, h.Log, "book detail", err)
	}
	return c.JSON(http.StatusOK, toResp(row))
}

// PUT /api/books/:id
func (h *Controller) Update(c echo.Context) error {
	id, ok := controller.ParamID(c, "id")
	if !ok {
		return controller.BadID(c)
	}
	var req UpdateBookReq
	if err := c.Bind(&req); err != nil {
		return controller.Invalid(c, h.Log, err)
	}
	if err := c.Validate(&req); err != nil {
		return controller.Invalid(c, h.Log, err)
	}
	if !validPrice(req.Price) {
		return badPrice(c)
	}

	b, err := h.Svc.Update(c.Request().Context(), id, booksvc.Input{
		Title:         req.Title,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
	})
	if err != nil {
		return controller.Fail(c, h.Log, "update book", err)
	}
	return c.JSON(http.StatusOK, toResp(b))
}

// DELETE /api/books/:id
func (h *Controller) Delete(c echo.Context) error {
	id, ok := controller.ParamID(c, "id")
	if !ok {
		return controller.BadID(c)
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return controller.Fail(c, h.Log, "delete book", err)
	}
	return c.NoContent(http.StatusNoContent)
}
