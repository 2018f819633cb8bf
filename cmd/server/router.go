package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/bookswap-api/internal/api"
	apiMiddleware "github.com/phrazzld/bookswap-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(apiMiddleware.TraceIDHeader)
	r.Use(apiMiddleware.RequestLogger)
	r.Use(middleware.Recoverer)

	authHandler := api.NewAuthHandler(app.authService, app.logger)
	userHandler := api.NewUserHandler(app.userService, app.logger)
	bookHandler := api.NewBookHandler(app.bookService, app.logger)
	tradeHandler := api.NewTradeHandler(app.tradeService, app.logger)
	healthHandler := api.NewHealthHandler(app.db, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Get("/health", healthHandler.Check)

		// Catalog reads work with or without a token
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.OptionalAuthenticate)
			r.Get("/books", bookHandler.ListBooks)
			r.Get("/books/{id}", bookHandler.GetBook)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/users", userHandler.ListUsers)
			r.Get("/users/profile", userHandler.GetProfile)
			r.Put("/users/profile", userHandler.UpdateProfile)
			r.Post("/users/balance/top-up", userHandler.TopUpBalance)
			r.Get("/users/{id}", userHandler.GetUser)
			r.Delete("/users/{id}", userHandler.DeleteUser)

			r.Get("/books/user/my-books", bookHandler.ListMyBooks)
			r.Post("/books", bookHandler.CreateBook)
			r.Put("/books/{id}", bookHandler.UpdateBook)
			r.Delete("/books/{id}", bookHandler.DeleteBook)

			r.Get("/trades/my-trades", tradeHandler.ListMyTrades)
			r.Get("/trades/incoming", tradeHandler.ListIncomingTrades)
			r.Get("/trades/outgoing", tradeHandler.ListOutgoingTrades)
			r.Post("/trades/propose", tradeHandler.ProposeTrade)
			r.Get("/trades/{id}", tradeHandler.GetTrade)
			r.Put("/trades/{id}/respond", tradeHandler.RespondToTrade)
			r.Delete("/trades/{id}/cancel", tradeHandler.CancelTrade)
		})
	})

	return r
}
