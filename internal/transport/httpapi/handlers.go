package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/crm/internal/domain"
	"github.com/vladislavdragonenkov/crm/internal/service/crm"
)

const ordersReportWindowDays = 7

func (s *Server) createCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result := s.mutations.CreateCustomer(req.toInput())
	if !result.Success {
		mutationFailure(c, result.Message, result.Errors)
		return
	}

	c.JSON(http.StatusCreated, apiResponse{
		Success: true,
		Message: result.Message,
		Data:    gin.H{"customer": toCustomerPayload(*result.Customer)},
	})
}

func (s *Server) bulkCreateCustomers(c *gin.Context) {
	var req bulkCreateCustomersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	policy, err := parsePolicy(req.Policy)
	if err != nil {
		badRequest(c, err)
		return
	}

	inputs := make([]domain.CustomerInput, 0, len(req.Customers))
	for _, item := range req.Customers {
		inputs = append(inputs, item.toInput())
	}

	result := s.mutations.BulkCreateCustomers(inputs, policy)

	// Ответ всегда 200: частичный успех — ожидаемый исход best-effort,
	// детали лежат в поэлементных записях.
	c.JSON(http.StatusOK, apiResponse{
		Success: result.Success,
		Message: result.Message,
		Data:    gin.H{"bulk": toBulkPayload(result)},
	})
}

func (s *Server) createProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result := s.mutations.CreateProduct(req.toInput())
	if !result.Success {
		mutationFailure(c, result.Message, result.Errors)
		return
	}

	c.JSON(http.StatusCreated, apiResponse{
		Success: true,
		Message: result.Message,
		Data:    gin.H{"product": toProductPayload(*result.Product)},
	})
}

func (s *Server) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result := s.mutations.CreateOrder(req.toInput())
	if !result.Success {
		mutationFailure(c, result.Message, result.Errors)
		return
	}

	c.JSON(http.StatusCreated, apiResponse{
		Success: true,
		Message: result.Message,
		Data:    gin.H{"order": toOrderPayload(*result.Order)},
	})
}

func (s *Server) updateLowStockProducts(c *gin.Context) {
	result := s.mutations.UpdateLowStockProducts()
	if !result.Success {
		mutationFailure(c, result.Message, result.Errors)
		return
	}

	c.JSON(http.StatusOK, apiResponse{
		Success: true,
		Message: result.Message,
		Data: gin.H{
			"updatedProducts": toProductPayloads(result.UpdatedProducts),
			"updatedCount":    len(result.UpdatedProducts),
		},
	})
}

func (s *Server) allCustomers(c *gin.Context) {
	filter, err := customerFilterFromQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	customers, err := s.queries.AllCustomers(filter)
	if err != nil {
		internalError(c, s, err)
		return
	}

	c.JSON(http.StatusOK, apiResponse{
		Success: true,
		Data:    gin.H{"customers": toCustomerPayloads(customers)},
	})
}

func (s *Server) allProducts(c *gin.Context) {
	filter, err := productFilterFromQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	products, err := s.queries.AllProducts(filter)
	if err != nil {
		internalError(c, s, err)
		return
	}

	c.JSON(http.StatusOK, apiResponse{
		Success: true,
		Data:    gin.H{"products": toProductPayloads(products)},
	})
}

func (s *Server) allOrders(c *gin.Context) {
	filter, err := orderFilterFromQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	orders, err := s.queries.AllOrders(filter)
	if err != nil {
		internalError(c, s, err)
		return
	}

	c.JSON(http.StatusOK, apiResponse{
		Success: true,
		Data:    gin.H{"orders": toOrderPayloads(orders)},
	})
}

func (s *Server) ordersLast7Days(c *gin.Context) {
	orders, err := s.queries.OrdersLastDays(ordersReportWindowDays)
	if err != nil {
		internalError(c, s, err)
		return
	}

	c.JSON(http.StatusOK, apiResponse{
		Success: true,
		Data:    gin.H{"orders": toOrderPayloads(orders)},
	})
}

func (s *Server) hello(c *gin.Context) {
	c.JSON(http.StatusOK, apiResponse{
		Success: true,
		Data:    gin.H{"hello": "Hello World!"},
	})
}

func parsePolicy(raw string) (crm.BatchPolicy, error) {
	switch crm.BatchPolicy(raw) {
	case crm.PolicyBestEffort, crm.PolicyFailFast:
		return crm.BatchPolicy(raw), nil
	case "":
		return crm.PolicyBestEffort, nil
	default:
		return "", fmt.Errorf("unknown batch policy %q", raw)
	}
}

func customerFilterFromQuery(c *gin.Context) (domain.CustomerFilter, error) {
	filter := domain.CustomerFilter{
		NameContains:  c.Query("nameContains"),
		EmailContains: c.Query("emailContains"),
		PhonePrefix:   c.Query("phonePrefix"),
	}

	var err error
	if filter.CreatedFrom, err = timeParam(c, "createdFrom"); err != nil {
		return domain.CustomerFilter{}, err
	}
	if filter.CreatedTo, err = timeParam(c, "createdTo"); err != nil {
		return domain.CustomerFilter{}, err
	}

	return filter, nil
}

func productFilterFromQuery(c *gin.Context) (domain.ProductFilter, error) {
	filter := domain.ProductFilter{
		NameContains: c.Query("nameContains"),
		LowStock:     c.Query("lowStock") == "true",
	}

	var err error
	if filter.PriceFrom, err = amountParam(c, "priceFrom"); err != nil {
		return domain.ProductFilter{}, err
	}
	if filter.PriceTo, err = amountParam(c, "priceTo"); err != nil {
		return domain.ProductFilter{}, err
	}
	if filter.StockFrom, err = intParam(c, "stockFrom"); err != nil {
		return domain.ProductFilter{}, err
	}
	if filter.StockTo, err = intParam(c, "stockTo"); err != nil {
		return domain.ProductFilter{}, err
	}

	return filter, nil
}

func orderFilterFromQuery(c *gin.Context) (domain.OrderFilter, error) {
	filter := domain.OrderFilter{
		CustomerNameContains: c.Query("customerName"),
		ProductNameContains:  c.Query("productName"),
		ProductID:            c.Query("productId"),
	}

	var err error
	if filter.TotalFrom, err = amountParam(c, "totalFrom"); err != nil {
		return domain.OrderFilter{}, err
	}
	if filter.TotalTo, err = amountParam(c, "totalTo"); err != nil {
		return domain.OrderFilter{}, err
	}
	if filter.OrderedFrom, err = timeParam(c, "orderedFrom"); err != nil {
		return domain.OrderFilter{}, err
	}
	if filter.OrderedTo, err = timeParam(c, "orderedTo"); err != nil {
		return domain.OrderFilter{}, err
	}

	return filter, nil
}

func timeParam(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %v", name, err)
	}
	return &value, nil
}

func amountParam(c *gin.Context, name string) (*int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %v", name, err)
	}
	minor := amountToMinor(value)
	return &minor, nil
}

func intParam(c *gin.Context, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %v", name, err)
	}
	return &value, nil
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, apiResponse{
		Success: false,
		Message: "Invalid request.",
		Errors:  []string{err.Error()},
	})
}

func mutationFailure(c *gin.Context, message string, errs []string) {
	status := http.StatusUnprocessableEntity
	if message == crm.StoreFailureMessage {
		status = http.StatusInternalServerError
	}
	c.JSON(status, apiResponse{
		Success: false,
		Message: message,
		Errors:  errs,
	})
}

func internalError(c *gin.Context, s *Server, err error) {
	s.logger.WithError(err).Error("query failed")
	c.JSON(http.StatusInternalServerError, apiResponse{
		Success: false,
		Message: crm.StoreFailureMessage,
	})
}
