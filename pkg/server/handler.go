package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joripage/exchange-core/pkg/orderbook"
)

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.health)

	book := s.engine.Group("/order-book/:symbol")
	{
		book.GET("", s.getOrderBook)
		book.GET("/depth", s.getDepth)
		book.POST("/orders", s.placeOrder)
		book.DELETE("/orders/:id", s.cancelOrder)
		book.GET("/trades", s.getTrades)
	}
}

func (s *Server) getTrades(c *gin.Context) {
	if s.tradeRepo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "trade history is not enabled"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	trades, err := s.tradeRepo.ListBySymbol(c.Request.Context(), c.Param("symbol"), limit)
	if err != nil {
		zap.S().Errorf("list trades fail: %+v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list trades"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": trades})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getOrderBook(c *gin.Context) {
	c.JSON(http.StatusOK, s.exchange.Snapshot(c.Param("symbol")))
}

func (s *Server) getDepth(c *gin.Context) {
	levels, err := strconv.Atoi(c.DefaultQuery("levels", "20"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid levels"})
		return
	}
	c.JSON(http.StatusOK, s.exchange.Depth(c.Param("symbol"), levels))
}

func (s *Server) placeOrder(c *gin.Context) {
	symbol := c.Param("symbol")

	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	size, err := decimal.NewFromString(req.Size)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid size"})
		return
	}
	side := sideFromString(req.Side)

	if req.Type == "limit" {
		price, err := decimal.NewFromString(req.Price)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
			return
		}
		order, err := s.exchange.PlaceLimitOrder(symbol, side, size, price)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, placeOrderResponse{OrderID: order.ID.String()})
		return
	}

	order, matches, err := s.exchange.PlaceMarketOrder(symbol, side, size)
	if err != nil {
		s.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, placeOrderResponse{
		OrderID: order.ID.String(),
		Matches: toMatchResponses(matches),
	})
}

func (s *Server) cancelOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := s.exchange.CancelOrder(c.Param("symbol"), id)
	if err != nil {
		s.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, cancelOrderResponse{
		OrderID: order.ID.String(),
		Size:    order.Size,
	})
}

// writeEngineError maps engine error kinds to transport status codes.
// Internal-consistency kinds are logged loudly, they mean the book's
// invariants broke.
func (s *Server) writeEngineError(c *gin.Context, err error) {
	var (
		orderNotFound   *orderbook.OrderNotFoundError
		limitNotFound   *orderbook.LimitNotFoundError
		notEnoughVolume *orderbook.NotEnoughVolumeError
	)

	switch {
	case errors.As(err, &orderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &notEnoughVolume):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":           err.Error(),
			"side":            notEnoughVolume.Side.String(),
			"expected_volume": notEnoughVolume.ExpectedVolume,
			"actual_volume":   notEnoughVolume.ActualVolume,
		})
	case errors.As(err, &limitNotFound), errors.Is(err, orderbook.ErrInconsistentState):
		zap.S().Errorf("order book internal inconsistency: %+v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal inconsistency"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
