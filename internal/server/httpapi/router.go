// Package httpapi exposes the service layer over HTTP: JSON plumbing, the
// bearer-session middleware and the two-factor fence. All business rules
// live in the services; handlers only decode, dispatch and translate errors.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"minventory/internal/logging"
	"minventory/internal/server/services"
)

type API struct {
	auth       *services.AuthService
	categories *services.CategoryService
	items      *services.ItemService
	loans      *services.LoanService
	questions  *services.QuestionService
	logger     logging.Logger
}

func New(
	auth *services.AuthService,
	categories *services.CategoryService,
	items *services.ItemService,
	loans *services.LoanService,
	questions *services.QuestionService,
	logger logging.Logger,
) *API {
	return &API{
		auth:       auth,
		categories: categories,
		items:      items,
		loans:      loans,
		questions:  questions,
		logger:     logger.With("module", "httpapi"),
	}
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", a.handleRegister)
			r.Post("/login", a.handleLogin)

			// session-bound but not fenced: a pending session must be able
			// to verify its code, inspect itself or give up
			r.Group(func(r chi.Router) {
				r.Use(a.withSession)
				r.Post("/verify-2fa", a.handleVerifyTwoFactor)
				r.Post("/logout", a.handleLogout)
				r.Get("/session", a.handleSession)
			})

			r.Group(func(r chi.Router) {
				r.Use(a.withSession, a.requireFullAuth)
				r.Post("/2fa/setup", a.handleSetupTwoFactor)
				r.Post("/unlock", a.handleUnlock)
				r.Post("/lock", a.handleLock)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(a.withSession, a.requireFullAuth)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", a.handleListCategories)
				r.Post("/", a.handleCreateCategory)
				r.Get("/{id}", a.handleGetCategory)
				r.Put("/{id}", a.handleUpdateCategory)
				r.Delete("/{id}", a.handleDeleteCategory)
			})

			r.Route("/items", func(r chi.Router) {
				r.Get("/", a.handleListItems)
				r.Post("/", a.handleCreateItem)
				r.Get("/{id}", a.handleGetItem)
				r.Put("/{id}", a.handleUpdateItem)
				r.Delete("/{id}", a.handleDeleteItem)
				r.Put("/{id}/image", a.handleSetItemImage)
				r.Get("/{id}/image", a.handleGetItemImage)
				r.Get("/{id}/thumb", a.handleGetItemThumbnail)
				r.Get("/{id}/transactions", a.handleListItemTransactions)
				r.Post("/{id}/transactions", a.handleAddItemTransaction)
			})

			r.Route("/loans", func(r chi.Router) {
				r.Get("/", a.handleListLoans)
				r.Post("/", a.handleCreateLoan)
				r.Put("/{id}", a.handleUpdateLoan)
				r.Post("/{id}/return", a.handleReturnLoan)
				r.Delete("/{id}", a.handleDeleteLoan)
			})

			r.Route("/questions", func(r chi.Router) {
				r.Get("/", a.handleListQuestions)
				r.Post("/", a.handleCreateQuestion)
				r.Get("/{id}", a.handleGetQuestion)
				r.Put("/{id}", a.handleUpdateQuestion)
				r.Delete("/{id}", a.handleDeleteQuestion)
			})
		})
	})

	return r
}
