package httpserver

import (
	"errors"
	"net/http"

	"floe/domain/orderbook"
	"floe/service"
	"floe/wire"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Server adapts OrderService to HTTP.
type Server struct {
	svc       *service.OrderService
	validator *validator.Validate
}

func New(svc *service.OrderService) *Server {
	return &Server{
		svc:       svc,
		validator: validator.New(),
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.POST("/orders", s.placeOrder)
	r.GET("/book", s.getBook)
	r.GET("/healthz", s.health)
	return r
}

// PlaceOrderRequest is the flat HTTP shape of one order record.
type PlaceOrderRequest struct {
	Type      string `json:"type" validate:"required,oneof=Limit Iceberg"`
	Direction string `json:"direction" validate:"required,oneof=Buy Sell"`
	ID        uint64 `json:"id" validate:"required"`
	Price     int64  `json:"price" validate:"gte=0"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
	Peak      int64  `json:"peak,omitempty" validate:"omitempty,gt=0"`
}

type PlaceOrderResponse struct {
	Transactions []wire.Transaction `json:"transactions"`
	Book         wire.BookSnapshot  `json:"book"`
}

func formatValidationError(err error) map[string]string {
	out := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, e := range verrs {
			out[e.Field()] = "failed on tag '" + e.Tag() + "'"
		}
	}
	return out
}

// POST /orders
func (s *Server) placeOrder(c *gin.Context) {
	var req PlaceOrderRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := s.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"validation_errors": formatValidationError(err)})
		return
	}

	kind, err := wire.ParseKind(req.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	side, err := wire.ParseSide(req.Direction)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	peak := req.Peak
	if kind == orderbook.Limit {
		peak = 0
	}

	trades, err := s.svc.Process(c.Request.Context(), req.ID, side, kind, req.Price, req.Quantity, peak)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, orderbook.ErrInvalidOrder) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	resp := PlaceOrderResponse{
		Transactions: make([]wire.Transaction, 0, len(trades)),
		Book:         wire.FromSnapshot(s.svc.Snapshot()),
	}
	for _, t := range trades {
		resp.Transactions = append(resp.Transactions, wire.FromTrade(t))
	}
	c.JSON(http.StatusOK, resp)
}

// GET /book
func (s *Server) getBook(c *gin.Context) {
	c.JSON(http.StatusOK, wire.FromSnapshot(s.svc.Snapshot()))
}

// GET /healthz
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
