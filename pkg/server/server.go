package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joripage/exchange-core/pkg/exchange"
	"github.com/joripage/exchange-core/pkg/exchange/repo"
)

type Server struct {
	exchange  *exchange.Exchange
	tradeRepo repo.ITrade
	engine    *gin.Engine
	http      *http.Server
}

func New(addr string, ex *exchange.Exchange) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		exchange: ex,
		engine:   engine,
	}
	s.registerRoutes()

	s.http = &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start blocks serving until Shutdown is called.
func (s *Server) Start() error {
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// SetTradeRepo enables the trade history endpoint.
func (s *Server) SetTradeRepo(tradeRepo repo.ITrade) {
	s.tradeRepo = tradeRepo
}
