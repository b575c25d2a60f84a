package http

import (
	"github.com/labstack/echo/v4"
)

type Handlers struct {
	System     *Handler
	Books      *BookHandler
	Clients    *ClientHandler
	Loans      *LoanHandler
	Fines      *FineHandler
	Categories *CategoryHandler
}

// Register mounts every route on e. apiMW runs on the /api group after the
// caller has been resolved (idempotency, rate limits).
func Register(e *echo.Echo, h Handlers, apiMW ...echo.MiddlewareFunc) {
	e.GET("/health", h.System.Health)
	e.GET("/metrics", h.System.Metrics)

	public := e.Group("/public")
	public.GET("/books", h.Books.PublicBooks)
	public.GET("/categories", h.Categories.PublicCategories)

	api := e.Group("/api", apiMW...)

	api.GET("/books", h.Books.ListBooks)
	api.POST("/books", h.Books.CreateBook)
	api.GET("/books/:id", h.Books.GetBook)
	api.PUT("/books/:id", h.Books.UpdateBook)
	api.DELETE("/books/:id", h.Books.DeleteBook)
	api.POST("/books/:id/restore", h.Books.RestoreBook)

	api.GET("/clients", h.Clients.ListClients)
	api.POST("/clients", h.Clients.CreateClient)
	api.GET("/clients/:identification", h.Clients.GetClient)
	api.PUT("/clients/:identification", h.Clients.UpdateClient)
	api.DELETE("/clients/:identification", h.Clients.DeleteClient)
	api.POST("/clients/:identification/restore", h.Clients.RestoreClient)
	api.POST("/clients/:identification/block", h.Clients.BlockClient)
	api.POST("/clients/:identification/unblock", h.Clients.UnblockClient)

	api.GET("/loans", h.Loans.ListLoans)
	api.POST("/loans", h.Loans.CreateLoan)
	api.GET("/loans/:id", h.Loans.GetLoan)
	api.POST("/loans/:id/return", h.Loans.ReturnLoan)
	api.DELETE("/loans/:id", h.Loans.DeactivateLoan)
	api.POST("/loans/:id/reactivate", h.Loans.ReactivateLoan)

	api.GET("/fines", h.Fines.ListFines)
	api.POST("/fines", h.Fines.CreateFine)
	api.POST("/fines/:id/pay", h.Fines.PayFine)
	api.DELETE("/fines/:id", h.Fines.DisableFine)
	api.POST("/fines/:id/enable", h.Fines.EnableFine)

	api.GET("/categories", h.Categories.ListCategories)
	api.POST("/categories", h.Categories.CreateCategory)
	api.PUT("/categories/:id", h.Categories.UpdateCategory)
	api.DELETE("/categories/:id", h.Categories.DeleteCategory)
	api.POST("/categories/:id/restore", h.Categories.RestoreCategory)

	api.POST("/admin/reconcile", h.Books.Reconcile)
}
