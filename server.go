package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/atelierfoods/supply_backend/config"
	"github.com/atelierfoods/supply_backend/models"
	"github.com/atelierfoods/supply_backend/utils"
)

const defaultPort = "8080"

var tracer = otel.Tracer("atelierfoods-supply")

// tenantMiddleware copies the tenant and correlation identifiers into the
// request context. Authentication itself is handled upstream (gateway).
func tenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if businessId := c.GetHeader("X-Business-Id"); businessId != "" {
			ctx = utils.SetBusinessIdInContext(ctx, businessId)
		}
		correlationId := c.GetHeader("X-Correlation-Id")
		if correlationId == "" {
			correlationId = uuid.NewString()
		}
		ctx = utils.SetCorrelationIdInContext(ctx, correlationId)
		c.Header("X-Correlation-Id", correlationId)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func statusForError(err error) int {
	switch utils.KindOf(err) {
	case utils.ErrorKindValidation:
		return http.StatusBadRequest
	case utils.ErrorKindConflict:
		return http.StatusConflict
	case utils.ErrorKindNotFound:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusServiceUnavailable
	}
}

// respondBindError maps request binding failures to 400. Malformed JSON and
// bad field types are client errors, never retryable storage failures.
func respondBindError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, gin.H{
			"kind":   utils.ErrorKindValidation,
			"fields": utils.ProcessValidationErrors(err),
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"kind":    utils.ErrorKindValidation,
		"message": err.Error(),
	})
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{
		"kind":      utils.KindOf(err),
		"message":   err.Error(),
		"retryable": utils.IsRetryable(err),
	})
}

func createPurchaseHandler(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "CreatePurchase")
	defer span.End()

	var input models.NewPurchase
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	purchase, err := models.CreatePurchase(ctx, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

// resourceGetHandler adapts the models package's GetX functions to a gin
// route with id parsing and error mapping.
func resourceGetHandler[T any](get func(context.Context, int) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			respondError(c, utils.NewValidationError("invalid resource id"))
			return
		}
		resource, err := get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resource)
	}
}

// getPurchaseByNumberHandler lets a retrying client check whether a
// conflicted create actually landed before resubmitting.
func getPurchaseByNumberHandler(c *gin.Context) {
	purchase, err := models.GetPurchaseByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}

func createSupplierHandler(c *gin.Context) {
	var input models.NewSupplier
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	supplier, err := models.CreateSupplier(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

func listSuppliersHandler(c *gin.Context) {
	suppliers, err := models.ListSuppliers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, suppliers)
}

func newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "X-Business-Id", "X-Correlation-Id")
	router.Use(cors.New(corsConfig))
	router.Use(tenantMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		status := gin.H{"status": "ok"}
		if rdb := config.GetRedisDB(); rdb != nil {
			if err := rdb.Ping(c.Request.Context()).Err(); err != nil {
				status["redis"] = "down"
			} else {
				status["redis"] = "ok"
			}
		}
		c.JSON(http.StatusOK, status)
	})

	api := router.Group("/api")
	{
		api.POST("/purchases", createPurchaseHandler)
		api.GET("/purchases/:id", resourceGetHandler(models.GetPurchase))
		api.GET("/purchase-numbers/:number", getPurchaseByNumberHandler)
		api.POST("/suppliers", createSupplierHandler)
		api.GET("/suppliers", listSuppliersHandler)
		api.GET("/suppliers/:id", resourceGetHandler(models.GetSupplier))
		api.GET("/raw-materials/:id", resourceGetHandler(models.GetRawMaterial))
		api.GET("/supplies/:id", resourceGetHandler(models.GetSupply))
		api.GET("/finished-goods/:id", resourceGetHandler(models.GetFinishedGood))
		api.GET("/credit-cards/:id", resourceGetHandler(models.GetCreditCard))
		api.GET("/bank-accounts/:id", resourceGetHandler(models.GetBankAccount))
	}

	return router
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	router := newRouter()
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// start listening first, then connect dependencies with retry
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error: " + err.Error())
		}
	}()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if shouldRunOutboxCostProcessor() {
		processor := NewOutboxCostProcessor(config.GetDB(), logger)
		go processor.Run(ctx)
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed: " + err.Error())
	}
}
