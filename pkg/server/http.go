package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/standin-hq/standin/pkg/application"
)

type HTTPServer struct {
	router *mux.Router
	srv    *http.Server
}

// New builds the router from every registered controller and the shared
// middleware stack.
func New(app application.Application, middlewares ...mux.MiddlewareFunc) *HTTPServer {
	router := mux.NewRouter()
	router.Use(middlewares...)
	for _, controller := range app.Controllers() {
		controller.Register(router)
		app.Logger().WithField("controller", controller.Key()).Debug("registered controller")
	}
	return &HTTPServer{router: router}
}

func (s *HTTPServer) Router() *mux.Router {
	return s.router
}

func (s *HTTPServer) ListenAndServe(addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.srv.ListenAndServe()
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
