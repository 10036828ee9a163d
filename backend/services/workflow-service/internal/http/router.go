package httpserver

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"solarshare/backend/libs/logging"
	wfhandlers "solarshare/backend/services/workflow-service/internal/http/handlers"
	"solarshare/backend/services/workflow-service/internal/http/middleware"
	"solarshare/backend/services/workflow-service/internal/models"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	Auth          *wfhandlers.AuthHandlers
	Reservations  *wfhandlers.ReservationHandlers
	Allocations   *wfhandlers.AllocationHandlers
	Sessions      *wfhandlers.SessionHandlers
	Payments      *wfhandlers.PaymentHandlers
	Payouts       *wfhandlers.PayoutHandlers
	Notifications *wfhandlers.NotificationHandlers
	Feed          *wfhandlers.FeedHandlers
	FeedSocket    http.HandlerFunc
	Health        http.HandlerFunc

	Authenticator middleware.Authenticator
	CORSOrigins   []string
	Logger        *zap.Logger
}

// NewRouter wires HTTP routes with middleware.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r := mux.NewRouter()

	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h, middleware.AuthMiddleware(deps.Authenticator, logger))
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h,
			middleware.AuthMiddleware(deps.Authenticator, logger),
			middleware.RequireRole(models.RoleAdmin),
		)
	}

	r.Handle("/health", deps.Health).Methods(http.MethodGet)
	r.HandleFunc("/auth/login", deps.Auth.Login).Methods(http.MethodPost)
	r.Handle("/auth/logout", authed(deps.Auth.Logout)).Methods(http.MethodPost)
	r.Handle("/auth/me", authed(deps.Auth.Me)).Methods(http.MethodGet)

	res := deps.Reservations
	r.Handle("/reservations", authed(res.Create)).Methods(http.MethodPost)
	r.Handle("/reservations", admin(res.List)).Methods(http.MethodGet)
	r.Handle("/reservations/me", authed(res.Mine)).Methods(http.MethodGet)
	r.Handle("/reservations/pending", admin(res.Pending)).Methods(http.MethodGet)
	r.Handle("/reservations/{id}/approve", admin(res.Approve)).Methods(http.MethodPost)
	r.Handle("/reservations/{id}/reject", admin(res.Reject)).Methods(http.MethodPost)
	r.Handle("/reservations/{id}/complete", admin(res.Complete)).Methods(http.MethodPost)
	r.Handle("/reservations/{id}/cancel", authed(res.Cancel)).Methods(http.MethodPost)

	alloc := deps.Allocations
	r.Handle("/allocations", authed(alloc.Create)).Methods(http.MethodPost)
	r.Handle("/allocations", admin(alloc.List)).Methods(http.MethodGet)
	r.Handle("/allocations/me", authed(alloc.Mine)).Methods(http.MethodGet)
	r.Handle("/allocations/{id}/approve", admin(alloc.Approve)).Methods(http.MethodPost)
	r.Handle("/allocations/{id}/reject", admin(alloc.Reject)).Methods(http.MethodPost)

	sess := deps.Sessions
	r.Handle("/sessions", authed(sess.Start)).Methods(http.MethodPost)
	r.Handle("/sessions/me", authed(sess.Mine)).Methods(http.MethodGet)
	r.Handle("/sessions/active", admin(sess.Active)).Methods(http.MethodGet)
	r.Handle("/sessions/{id}/stop", authed(sess.Stop)).Methods(http.MethodPost)
	r.Handle("/sessions/{id}/cancel", authed(sess.Cancel)).Methods(http.MethodPost)

	pay := deps.Payments
	r.Handle("/payments", authed(pay.Create)).Methods(http.MethodPost)
	r.Handle("/payments/me", authed(pay.Mine)).Methods(http.MethodGet)
	r.Handle("/payments/me/energy", authed(pay.Energy)).Methods(http.MethodGet)
	r.Handle("/payments/{id}/complete", authed(pay.Complete)).Methods(http.MethodPost)
	r.Handle("/payments/{id}/fail", admin(pay.Fail)).Methods(http.MethodPost)
	r.Handle("/admin/transactions", admin(pay.Transactions)).Methods(http.MethodGet)
	r.Handle("/admin/revenue", admin(pay.Revenue)).Methods(http.MethodGet)

	po := deps.Payouts
	r.Handle("/payouts/requests", authed(po.Request)).Methods(http.MethodPost)
	r.Handle("/payouts/requests", admin(po.List)).Methods(http.MethodGet)
	r.Handle("/payouts/requests/me", authed(po.Mine)).Methods(http.MethodGet)
	r.Handle("/payouts/requests/rejected", admin(po.Rejected)).Methods(http.MethodGet)
	r.Handle("/payouts/requests/{id}/approve", admin(po.Approve)).Methods(http.MethodPost)
	r.Handle("/payouts/requests/{id}/reject", admin(po.Reject)).Methods(http.MethodPost)
	r.Handle("/payouts/distribute", admin(po.Distribute)).Methods(http.MethodPost)
	r.Handle("/payouts/records", admin(po.Records)).Methods(http.MethodGet)
	r.Handle("/payouts/records/{id}/complete", admin(po.CompleteRecord)).Methods(http.MethodPost)
	r.Handle("/payouts/records/{id}/fail", admin(po.FailRecord)).Methods(http.MethodPost)

	n := deps.Notifications
	r.Handle("/notifications", authed(n.List)).Methods(http.MethodGet)
	r.Handle("/notifications/unread-count", authed(n.UnreadCount)).Methods(http.MethodGet)
	r.Handle("/notifications/{id}/read", authed(n.MarkRead)).Methods(http.MethodPost)

	if deps.Feed != nil {
		r.Handle("/feed/charging-requests", authed(deps.Feed.Recent)).Methods(http.MethodGet)
		r.Handle("/feed/charging-requests", authed(deps.Feed.Insert)).Methods(http.MethodPost)
	}
	if deps.FeedSocket != nil {
		r.Handle("/feed/ws", deps.FeedSocket).Methods(http.MethodGet)
	}

	var h http.Handler = r
	if len(deps.CORSOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(deps.CORSOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		)(h)
	}
	h = handlers.CombinedLoggingHandler(logging.Writer{Logger: logger.Named("access")}, h)
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger}),
		handlers.PrintRecoveryStack(false),
	)(h)
}

type recoveryLogger struct {
	logger *zap.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error("panic recovered", zap.Any("panic", v))
}
