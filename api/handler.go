package api

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"api_transactions/internal/transactions"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// transactionsHandler holds the reporting service and implements the HTTP
// handlers for it.
type transactionsHandler struct {
	service  *transactions.Service
	source   transactions.Source
	logger   *zap.Logger
	pageSize int

	// seeding serializes seeds; reads are not blocked by it.
	seeding sync.Mutex
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(service *transactions.Service, source transactions.Source, logger *zap.Logger, pageSize int) *transactionsHandler {
	if pageSize < 1 {
		pageSize = transactions.DefaultPageSize
	}
	return &transactionsHandler{
		service:  service,
		source:   source,
		logger:   logger,
		pageSize: pageSize,
	}
}

// handleInit handles POST /api/init: replaces the collection with the seed dataset.
func (h *transactionsHandler) handleInit(ctx *gin.Context) {
	if !h.seeding.TryLock() {
		ctx.JSON(http.StatusConflict, gin.H{"error": "database initialization already in progress"})
		return
	}
	defer h.seeding.Unlock()

	if err := h.service.SeedFromSource(ctx.Request.Context(), h.source); err != nil {
		h.fail(ctx, "failed to initialize database", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Database initialized with seed data"})
}

// handleListTransactions handles GET /api/transactions.
func (h *transactionsHandler) handleListTransactions(ctx *gin.Context) {
	month, ok := h.month(ctx)
	if !ok {
		return
	}
	page, ok := h.positiveInt(ctx, "page", 1)
	if !ok {
		return
	}
	perPage, ok := h.positiveInt(ctx, "perPage", h.pageSize)
	if !ok {
		return
	}
	search := ctx.Query("search")

	result, err := h.service.ListTransactions(ctx.Request.Context(), month, search, page, perPage)
	if err != nil {
		h.fail(ctx, "failed to list transactions", err,
			zap.Int("month", month), zap.String("search", search), zap.Int("page", page), zap.Int("per_page", perPage))
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// handleStatistics handles GET /api/statistics.
func (h *transactionsHandler) handleStatistics(ctx *gin.Context) {
	month, ok := h.month(ctx)
	if !ok {
		return
	}

	stats, err := h.service.GetStatistics(ctx.Request.Context(), month)
	if err != nil {
		h.fail(ctx, "failed to compute statistics", err, zap.Int("month", month))
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

// handleBarChart handles GET /api/bar-chart.
func (h *transactionsHandler) handleBarChart(ctx *gin.Context) {
	month, ok := h.month(ctx)
	if !ok {
		return
	}

	buckets, err := h.service.GetHistogram(ctx.Request.Context(), month)
	if err != nil {
		h.fail(ctx, "failed to compute price histogram", err, zap.Int("month", month))
		return
	}

	ctx.JSON(http.StatusOK, buckets)
}

// handlePieChart handles GET /api/pie-chart.
func (h *transactionsHandler) handlePieChart(ctx *gin.Context) {
	month, ok := h.month(ctx)
	if !ok {
		return
	}

	categories, err := h.service.GetCategoryBreakdown(ctx.Request.Context(), month)
	if err != nil {
		h.fail(ctx, "failed to compute category breakdown", err, zap.Int("month", month))
		return
	}

	ctx.JSON(http.StatusOK, categories)
}

// handleCombined handles GET /api/combined.
func (h *transactionsHandler) handleCombined(ctx *gin.Context) {
	month, ok := h.month(ctx)
	if !ok {
		return
	}

	dashboard, err := h.service.GetDashboard(ctx.Request.Context(), month)
	if err != nil {
		h.fail(ctx, "failed to build dashboard", err, zap.Int("month", month))
		return
	}

	ctx.JSON(http.StatusOK, dashboard)
}

func (h *transactionsHandler) month(ctx *gin.Context) (int, bool) {
	raw := ctx.Query("month")
	month, err := strconv.Atoi(raw)
	if err != nil || month < 1 || month > 12 {
		h.logger.Warn("invalid month parameter", zap.String("month", raw))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "month must be an integer between 1 and 12"})
		return 0, false
	}
	return month, true
}

func (h *transactionsHandler) positiveInt(ctx *gin.Context, key string, def int) (int, bool) {
	raw, present := ctx.GetQuery(key)
	if !present || raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		h.logger.Warn("invalid pagination parameter", zap.String(key, raw))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": key + " must be a positive integer"})
		return 0, false
	}
	return n, true
}

// fail maps a service error to a status code and logs it.
func (h *transactionsHandler) fail(ctx *gin.Context, msg string, err error, fields ...zap.Field) {
	status := statusFor(err)
	fields = append(fields, zap.Error(err), zap.Int("status", status))
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, fields...)
	} else {
		h.logger.Warn(msg, fields...)
	}
	_ = ctx.Error(err)

	ctx.JSON(status, gin.H{"error": msg + ": " + err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, transactions.ErrInvalidMonth), errors.Is(err, transactions.ErrInvalidPagination):
		return http.StatusBadRequest
	case errors.Is(err, transactions.ErrSeedSource):
		return http.StatusBadGateway
	case errors.Is(err, transactions.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
