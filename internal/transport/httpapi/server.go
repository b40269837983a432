package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crm/internal/service/crm"
)

// Server — JSON-транспорт CRM. Маршруты повторяют имена полей API:
// createCustomer, bulkCreateCustomers, createProduct, createOrder,
// updateLowStockProducts, allCustomers, allProducts, allOrders,
// ordersLast7days, hello.
type Server struct {
	mutations *crm.Mutations
	queries   *crm.Queries
	logger    *log.Entry
}

// NewServer конструирует HTTP-сервер поверх сервисов мутаций и запросов.
func NewServer(mutations *crm.Mutations, queries *crm.Queries, logger *log.Entry) *Server {
	if logger == nil {
		logger = log.WithField("component", "http-api")
	}
	return &Server{
		mutations: mutations,
		queries:   queries,
		logger:    logger,
	}
}

// Router собирает gin-движок со всеми маршрутами API.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	api := router.Group("/api")
	{
		api.POST("/createCustomer", s.createCustomer)
		api.POST("/bulkCreateCustomers", s.bulkCreateCustomers)
		api.POST("/createProduct", s.createProduct)
		api.POST("/createOrder", s.createOrder)
		api.POST("/updateLowStockProducts", s.updateLowStockProducts)

		api.GET("/allCustomers", s.allCustomers)
		api.GET("/allProducts", s.allProducts)
		api.GET("/allOrders", s.allOrders)
		api.GET("/ordersLast7days", s.ordersLast7Days)
		api.GET("/hello", s.hello)
	}

	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("http request handled")
	}
}
