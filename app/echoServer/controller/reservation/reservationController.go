package reservation

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"library/app/echoServer/controller"
	rs "library/service/reservation"
)

type Controller struct {
	Svc rs.Service
	Log *slog.Logger
}

// POST /api/reservations
func (h *Controller) Create(c echo.Context) error {
	var req CreateReservationReq
	if err := c.Bind(&req); err != nil {
		return controller.Invalid(c, h.Log, err)
	}
	if err := c.Validate(&req); err != nil {
		return controller.Invalid(c, h.Log, err)
	}
	// format already checked by the validator
	start, _ := time.Parse(time.DateOnly, req.StartDate)

	out, err := h.Svc.Create(c.Request().Context(), rs.CreateInput{
		UserID:         req.UserID,
		BookExternalID: req.BookExternalID,
		RentalDays:     req.RentalDays,
		StartDate:      start,
	})
	if err != nil {
		return controller.Fail(c, h.Log, "create reservation", err)
	}
	return c.JSON(http.StatusCreated, toResp(out))
}

// POST /api/reservations/:id/return
func (h *Controller) Return(c echo.Context) error {
	id, ok := controller.ParamID(c, "id")
	if !ok {
		return controller.BadID(c)
	}
	var req ReturnBookReq
	if err := c.Bind(&req); err != nil {
		return controller.Invalid(c, h.Log, err)
	}
	if err := c.Validate(&req); err != nil {
		return controller.Invalid(c, h.Log, err)
	}
	returned, _ := time.Parse(time.DateOnly, req.ReturnDate)

	out, err := h.Svc.Return(c.Request().Context(), id, returned)
	if err != nil {
		return controller.Fail(c, h.Log, "return reservation", err)
	}
	return c.JSON(http.StatusOK, toResp(out))
}

// GET /api/reservations/:id
func (h *Controller) Get(c echo.Context) error {
	id, ok := controller.ParamID(c, "id")
	if !ok {
		return controller.BadID(c)
	}
	out, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return controller.Fail(c, h.Log, "get reservation", err)
	}
	return c.JSON(http.StatusOK, toResp(out))
}

// GET /api/reservations
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return controller.Fail(c, h.Log, "list reservations", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": toList(rows)})
}

// GET /api/reservations/user/:userId
func (h *Controller) ListByUser(c echo.Context) error {
	uid, ok := controller.ParamID(c, "userId")
	if !ok {
		return controller.BadID(c)
	}
	rows, err := h.Svc.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return controller.Fail(c, h.Log, "list user reservations", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": toList(rows)})
}

// GET /api/reservations/active
func (h *Controller) ListActive(c echo.Context) error {
	rows, err := h.Svc.ListActive(c.Request().Context())
	if err != nil {
		return controller.Fail(c, h.Log, "list active reservations", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": toList(rows)})
}

// GET /api/reservations/overdue
func (h *Controller) ListOverdue(c echo.Context) error {
	rows, err := h.Svc.ListOverdue(c.Request().Context())
	if err != nil {
		return controller.Fail(c, h.Log, "list overdue reservations", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": toList(rows)})
}
