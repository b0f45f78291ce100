package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/ldworks/trainee-management/internal/accessrequest"
	"github.com/ldworks/trainee-management/internal/auth"
	"github.com/ldworks/trainee-management/internal/authz"
	"github.com/ldworks/trainee-management/internal/dashboard"
	"github.com/ldworks/trainee-management/internal/department"
	"github.com/ldworks/trainee-management/internal/internship"
	"github.com/ldworks/trainee-management/internal/mentorship"
	"github.com/ldworks/trainee-management/internal/transport/middleware"
	"github.com/ldworks/trainee-management/internal/transport/swagger"
	"github.com/ldworks/trainee-management/internal/user"
)

// Handlers bundles every HTTP handler the router mounts. Nil entries are
// skipped so partial wiring works in tests.
type Handlers struct {
	Auth          *auth.Handler
	User          *user.Handler
	Department    *department.Handler
	AccessRequest *accessrequest.Handler
	Internship    *internship.Handler
	Mentorship    *mentorship.Handler
	Dashboard     *dashboard.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, handlers Handlers, guard *auth.Guard, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		if handlers.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", handlers.Auth.Login)
				sr.Post("/refresh", handlers.Auth.RefreshToken)
				sr.Post("/logout", handlers.Auth.Logout)
			})
		}

		// Public routes: departments feed the signup form, and access
		// requests are submitted before any account exists.
		if handlers.Department != nil {
			r.Get("/departments", handlers.Department.GetDepartments)
		}
		if handlers.AccessRequest != nil {
			r.Post("/access-requests", handlers.AccessRequest.SubmitRequest)
		}

		if handlers.Auth == nil {
			return
		}

		// Protected routes
		r.Group(func(pr chi.Router) {
			pr.Use(handlers.Auth.AuthMiddleware)
			pr.Use(middleware.ActorContext)

			if handlers.User != nil {
				pr.Get("/users/me", handlers.User.GetCurrentUser)

				pr.Group(func(ur chi.Router) {
					ur.Use(guard.Require(authz.ActionUsersViewAll))
					ur.Get("/users", handlers.User.ListUsers)
					ur.Get("/users/{id}", handlers.User.GetUser)
				})
				pr.Group(func(ur chi.Router) {
					ur.Use(guard.Require(authz.ActionUsersManage))
					ur.Patch("/users/{id}", handlers.User.UpdateUser)
					ur.Post("/users/{id}/deactivate", handlers.User.DeactivateUser)
					ur.Post("/users/{id}/reactivate", handlers.User.ReactivateUser)
				})
			}

			if handlers.Department != nil {
				pr.Get("/departments/{id}", handlers.Department.GetDepartment)

				pr.Group(func(dr chi.Router) {
					dr.Use(guard.Require(authz.ActionUsersManage))
					dr.Post("/departments", handlers.Department.CreateDepartment)
					dr.Post("/departments/{id}/deactivate", handlers.Department.DeactivateDepartment)
				})
			}

			if handlers.AccessRequest != nil {
				pr.Group(func(ar chi.Router) {
					ar.Use(guard.Require(authz.ActionAccessRequestsList))
					ar.Get("/access-requests", handlers.AccessRequest.ListRequests)
					ar.Get("/access-requests/{id}", handlers.AccessRequest.GetRequest)
				})
				pr.Group(func(ar chi.Router) {
					ar.Use(guard.Require(authz.ActionAccessRequestsReview))
					ar.Post("/access-requests/{id}/review", handlers.AccessRequest.ReviewRequest)
				})
			}

			if handlers.Internship != nil {
				pr.Route("/internships", func(ir chi.Router) {
					ir.Group(func(cr chi.Router) {
						cr.Use(guard.Require(authz.ActionInternshipsCreate))
						cr.Post("/", handlers.Internship.CreateRequest)
					})

					// Every role sees some slice of the listings; the
					// service narrows by scope.
					ir.Get("/", handlers.Internship.ListRequests)
					ir.Get("/{id}", handlers.Internship.GetRequest)

					// Transitions are role-gated by the transition
					// table; the guard only keeps out roles with no
					// lifecycle involvement at all.
					ir.Group(func(tr chi.Router) {
						tr.Use(guard.RequireAny(
							authz.ActionInternshipsReview,
							authz.ActionInternshipsApprove,
							authz.ActionInternshipsReject,
							authz.ActionInternshipsComplete,
							authz.ActionMentorsAcknowledge,
						))
						tr.Post("/{id}/transition", handlers.Internship.TransitionRequest)
					})

					ir.Post("/{id}/cancel", handlers.Internship.CancelRequest)

					ir.Group(func(rr chi.Router) {
						rr.Use(guard.Require(authz.ActionReportsSubmit))
						rr.Post("/{id}/reports", handlers.Internship.SubmitReport)
					})
					ir.Get("/{id}/reports", handlers.Internship.ListReports)

					if handlers.Mentorship != nil {
						ir.Group(func(mr chi.Router) {
							mr.Use(guard.Require(authz.ActionMentorsAssign))
							mr.Post("/{id}/mentor", handlers.Mentorship.AssignMentor)
							mr.Post("/{id}/mentor/release", handlers.Mentorship.ReleaseMentor)
						})
						ir.Group(func(mr chi.Router) {
							mr.Use(guard.Require(authz.ActionMentorsAcknowledge))
							mr.Post("/{id}/mentor/acknowledge", handlers.Mentorship.AcknowledgeAssignment)
						})
					}
				})
			}

			if handlers.Mentorship != nil {
				pr.Get("/mentorship/assignments", handlers.Mentorship.ListMyAssignments)
				pr.Group(func(mr chi.Router) {
					mr.Use(guard.Require(authz.ActionMentorsAssign))
					mr.Get("/mentorship/loads", handlers.Mentorship.GetMentorLoads)
				})
			}

			if handlers.Dashboard != nil {
				pr.Group(func(dr chi.Router) {
					dr.Use(guard.Require(authz.ActionDashboardView))
					dr.Get("/dashboard", handlers.Dashboard.GetSummary)
				})
			}
		})
	})
}
