package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/library-service/internal/api/http/handlers"
	"github.com/spec-kit/library-service/internal/auth"
	"github.com/spec-kit/library-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Auth            *handlers.AuthHandler
	Librarians      *handlers.LibrariansHandler
	Authors         *handlers.AuthorsHandler
	Publishers      *handlers.PublishersHandler
	Categories      *handlers.CategoriesHandler
	Books           *handlers.BooksHandler
	AuthMiddleware  *auth.AuthMiddleware
	BootstrapGuard  *auth.BootstrapGuard
	MetricsGatherer prometheus.Gatherer
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.MetricsGatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.MetricsGatherer, promhttp.HandlerOpts{})))
	}

	authenticated := cfg.AuthMiddleware.Handle
	adminOnly := auth.RequireRoles(domain.RoleAdmin)
	adminOrManager := auth.RequireRoles(domain.RoleAdmin, domain.RoleManager)

	app.Post("/auth/librarian/login", cfg.Auth.Login)

	librarians := app.Group("/librarians")
	librarians.Post("/", cfg.BootstrapGuard.Handle, cfg.Librarians.Create)
	librarians.Get("/", authenticated, adminOrManager, cfg.Librarians.List)
	librarians.Get("/id/:id", authenticated, adminOrManager, cfg.Librarians.GetByID)
	librarians.Get("/employee/:employeeId", authenticated, adminOrManager, cfg.Librarians.GetByEmployeeID)
	librarians.Put("/id/:id", authenticated, adminOnly, cfg.Librarians.UpdateByID)
	librarians.Put("/employee/:employeeId", authenticated, adminOnly, cfg.Librarians.UpdateByEmployeeID)
	librarians.Delete("/id/:id", authenticated, adminOnly, cfg.Librarians.DeleteByID)
	librarians.Delete("/employee/:employeeId", authenticated, adminOnly, cfg.Librarians.DeleteByEmployeeID)
	librarians.Delete("/", authenticated, adminOnly, cfg.Librarians.DeleteAll)

	authors := app.Group("/authors")
	authors.Get("/", cfg.Authors.List)
	authors.Get("/id/:id", cfg.Authors.GetByID)
	authors.Get("/by-name/:name", cfg.Authors.GetByName)
	authors.Post("/", authenticated, cfg.Authors.Create)
	authors.Put("/id/:id", authenticated, cfg.Authors.UpdateByID)
	authors.Put("/by-name/:name", authenticated, cfg.Authors.UpdateByName)
	authors.Delete("/id/:id", authenticated, cfg.Authors.DeleteByID)
	authors.Delete("/by-name/:name", authenticated, cfg.Authors.DeleteByName)
	authors.Delete("/", authenticated, adminOrManager, cfg.Authors.DeleteAll)

	publishers := app.Group("/publishers")
	publishers.Get("/", cfg.Publishers.List)
	publishers.Get("/id/:id", cfg.Publishers.GetByID)
	publishers.Get("/by-name/:name", cfg.Publishers.GetByName)
	publishers.Post("/", authenticated, cfg.Publishers.Create)
	publishers.Put("/id/:id", authenticated, cfg.Publishers.UpdateByID)
	publishers.Put("/by-name/:name", authenticated, cfg.Publishers.UpdateByName)
	publishers.Delete("/id/:id", authenticated, cfg.Publishers.DeleteByID)
	publishers.Delete("/by-name/:name", authenticated, cfg.Publishers.DeleteByName)
	publishers.Delete("/", authenticated, adminOrManager, cfg.Publishers.DeleteAll)

	categories := app.Group("/categories")
	categories.Get("/", cfg.Categories.List)
	categories.Get("/by-name/:name", cfg.Categories.GetByName)
	categories.Post("/", authenticated, cfg.Categories.Create)
	categories.Put("/by-name/:name", authenticated, cfg.Categories.UpdateByName)
	categories.Delete("/by-name/:name", authenticated, cfg.Categories.DeleteByName)
	categories.Delete("/", authenticated, adminOrManager, cfg.Categories.DeleteAll)

	books := app.Group("/books")
	books.Get("/", cfg.Books.List)
	books.Get("/id/:id", cfg.Books.GetByID)
	books.Get("/isbn/:isbn", cfg.Books.GetByISBN)
	books.Get("/title/:title", cfg.Books.ListByTitle)
	books.Post("/", authenticated, cfg.Books.Create)
	books.Put("/id/:id", authenticated, cfg.Books.UpdateByID)
	books.Put("/isbn/:isbn", authenticated, cfg.Books.UpdateByISBN)
	books.Delete("/id/:id", authenticated, cfg.Books.DeleteByID)
	books.Delete("/isbn/:isbn", authenticated, cfg.Books.DeleteByISBN)
	books.Delete("/", authenticated, adminOrManager, cfg.Books.DeleteAll)
}
