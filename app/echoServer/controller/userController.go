// app/echoServer/controller/userController.go
package controller

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"library/model"
	usersvc "library/service/user"
)

type UserController struct {
	s   usersvc.Service
	log *slog.Logger
}

func NewUserController(s usersvc.Service, log *slog.Logger) *UserController {
	return &UserController{
		s:   s,
		log: log,
	}
}

// POST /api/users
func (ct *UserController) Create(c echo.Context) error {
	var req model.UserReq

	if err := c.Bind(&req); err != nil {
		return Invalid(c, ct.log, err)
	}
	if err := c.Validate(&req); err != nil {
		return Invalid(c, ct.log, err)
	}

	u, err := ct.s.Create(c.Request().Context(), req)
	if err != nil {
		// duplicate email -> 409
		return Fail(c, ct.log, "create user", err)
	}
	return c.JSON(http.StatusCreated, u)
}

// GET /api/users
func (ct *UserController) List(c echo.Context) error {
	rows, err := ct.s.List(c.Request().Context())
	if err != nil {
		return Fail(c, ct.log, "list users", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /api/users/:id
func (ct *UserController) Get(c echo.Context) error {
	id, ok := ParamID(c, "id")
	if !ok {
		return BadID(c)
	}
	u, err := ct.s.Get(c.Request().Context(), id)
	if err != nil {
		return Fail(c, ct.log, "get user", err)
	}
	return c.JSON(http.StatusOK, u)
}

// PUT /api/users/:id
func (ct *UserController) Update(c echo.Context) error {
	id, ok := ParamID(c, "id")
	if !ok {
		return BadID(c)
	}
	var req model.UserReq
	if err := c.Bind(&req); err != nil {
		return Invalid(c, ct.log, err)
	}
	if err := c.Validate(&req); err != nil {
		return Invalid(c, ct.log, err)
	}

	u, err := ct.s.Update(c.Request().Context(), id, req)
	if err != nil {
		return Fail(c, ct.log, "update user", err)
	}
	return c.JSON(http.StatusOK, u)
}

// DELETE /api/users/:id
func (ct *UserController) Delete(c echo.Context) error {
	id, ok := ParamID(c, "id")
	if !ok {
		return BadID(c)
	}
	if err := ct.s.Delete(c.Request().Context(), id); err != nil {
		return Fail(c, ct.log, "delete user", err)
	}
	return c.NoContent(http.StatusNoContent)
}
