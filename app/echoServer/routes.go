package echoServer

import (
	"github.com/labstack/echo/v4"

	"library/app/echoServer/controller"
	"library/app/echoServer/controller/book"
	"library/app/echoServer/controller/reservation"
)

type C struct {
	User        *controller.UserController
	Book        *book.Controller
	Reservation *reservation.Controller
}

func Register(e *echo.Echo, c C) {
	api := e.Group("/api")

	// Users
	api.POST("/users", c.User.Create)
	api.GET("/users", c.User.List)
	api.GET("/users/:id", c.User.Get)
	api.PUT("/users/:id", c.User.Update)
	api.DELETE("/users/:id", c.User.Delete)

	// Books
	api.POST("/books", c.Book.Create)
	api.GET("/books", c.Book.List)
	api.GET("/books/:id", c.Book.Detail)
	api.PUT("/books/:id", c.Book.Update)
	api.DELETE("/books/:id", c.Book.Delete)

	// Reservations
	api.POST("/reservations", c.Reservation.Create)
	api.POST("/reservations/:id/return", c.Reservation.Return)
	api.GET("/reservations", c.Reservation.List)
	api.GET("/reservations/active", c.Reservation.ListActive)
	api.GET("/reservations/overdue", c.Reservation.ListOverdue)
	api.GET("/reservations/user/:userId", c.Reservation.ListByUser)
	api.GET("/reservations/:id", c.Reservation.Get)
}
