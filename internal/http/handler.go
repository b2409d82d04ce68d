package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tripdesk/supplier-contracts/internal/http/middleware"
	"github.com/tripdesk/supplier-contracts/internal/model"
	"github.com/tripdesk/supplier-contracts/internal/service"
)

type Services struct {
	Contracts   *service.ContractService
	Deadlines   *service.DeadlineService
	Allocations *service.AllocationService
	Pools       *service.PoolService
	Rates       *service.RateService
	Audit       *service.AuditService
	Dashboard   *service.DashboardService
	Exports     *service.ExportService
}

type Handler struct {
	contracts   *service.ContractService
	deadlines   *service.DeadlineService
	allocations *service.AllocationService
	pools       *service.PoolService
	rates       *service.RateService
	audit       *service.AuditService
	dashboard   *service.DashboardService
	exports     *service.ExportService
	log         zerolog.Logger
}

func NewHandler(services Services, log zerolog.Logger) *Handler {
	return &Handler{
		contracts:   services.Contracts,
		deadlines:   services.Deadlines,
		allocations: services.Allocations,
		pools:       services.Pools,
		rates:       services.Rates,
		audit:       services.Audit,
		dashboard:   services.Dashboard,
		exports:     services.Exports,
		log:         log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.GET("/dashboard", h.getDashboard)

	protected.GET("/suppliers", h.listSuppliers)
	protected.POST("/suppliers", h.createSupplier)

	protected.GET("/contracts", h.listContracts)
	protected.POST("/contracts", h.createContract)
	protected.GET("/contracts/:id", h.getContract)
	protected.PUT("/contracts/:id", h.updateContract)
	protected.DELETE("/contracts/:id", h.deleteContract)
	protected.POST("/contracts/:id/status", h.changeContractStatus)
	protected.GET("/contracts/:id/export/xlsx", h.exportContractWorkbook)
	protected.GET("/contracts/:id/export/pdf", h.exportContractPDF)

	protected.GET("/contracts/:id/deadlines", h.listContractDeadlines)
	protected.POST("/contracts/:id/deadlines", h.createDeadline)
	protected.GET("/deadlines", h.listDeadlines)
	protected.GET("/deadlines/:id", h.getDeadline)
	protected.PUT("/deadlines/:id", h.updateDeadline)
	protected.DELETE("/deadlines/:id", h.deleteDeadline)
	protected.POST("/deadlines/:id/complete", h.completeDeadline)

	protected.GET("/contracts/:id/allocations", h.listContractAllocations)
	protected.POST("/contracts/:id/allocations", h.createAllocation)
	protected.GET("/contracts/:id/release-warnings", h.contractReleaseWarnings)
	protected.POST("/allocations/bulk", h.bulkUpdateAllocations)
	protected.GET("/allocations/:id", h.getAllocation)
	protected.PUT("/allocations/:id", h.updateAllocation)
	protected.DELETE("/allocations/:id", h.deleteAllocation)
	protected.POST("/allocations/:id/adjust", h.adjustAllocation)
	protected.POST("/allocations/:id/release", h.releaseAllocation)
	protected.DELETE("/allocations/:id/pool", h.unassignAllocation)
	protected.GET("/release-warnings", h.releaseWarnings)
	protected.GET("/release-warnings/export", h.exportReleaseWorkbook)

	protected.GET("/pools", h.listPools)
	protected.POST("/pools", h.createPool)
	protected.GET("/pools/:id", h.getPool)
	protected.PUT("/pools/:id", h.updatePool)
	protected.DELETE("/pools/:id", h.deletePool)
	protected.POST("/pools/:id/allocations", h.assignAllocation)

	protected.GET("/contracts/:id/rates", h.listRates)
	protected.POST("/contracts/:id/rates", h.createRate)
	protected.GET("/rates/:id", h.getRate)
	protected.PUT("/rates/:id", h.updateRate)
	protected.DELETE("/rates/:id", h.deleteRate)

	protected.GET("/audit-logs", h.listAuditLogs)
}

func (h *Handler) principal(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
	}
	return principal, ok
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCapacityExceeded):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func sendFile(c *gin.Context, contentType string, result *service.ExportResult) {
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentType, result.Content)
}
