package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tripdesk/supplier-contracts/internal/config"
	"github.com/tripdesk/supplier-contracts/internal/db"
	"github.com/tripdesk/supplier-contracts/internal/excel"
	httphandler "github.com/tripdesk/supplier-contracts/internal/http"
	"github.com/tripdesk/supplier-contracts/internal/logger"
	"github.com/tripdesk/supplier-contracts/internal/pdf"
	"github.com/tripdesk/supplier-contracts/internal/repository"
	"github.com/tripdesk/supplier-contracts/internal/service"
)

type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	database *gorm.DB
	services httphandler.Services
}

func bootstrap(migrate bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Environment, cfg.LogLevel)

	var database *gorm.DB
	if migrate {
		database, err = db.New(cfg, log)
	} else {
		database, err = db.Open(cfg, log)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	return &app{
		cfg:      cfg,
		log:      log,
		database: database,
		services: buildServices(cfg, database, log),
	}, nil
}

func buildServices(cfg *config.Config, database *gorm.DB, log zerolog.Logger) httphandler.Services {
	suppliers := repository.NewSupplierRepository(database)
	contracts := repository.NewContractRepository(database)
	deadlines := repository.NewDeadlineRepository(database)
	allocations := repository.NewAllocationRepository(database)
	pools := repository.NewPoolRepository(database)
	rates := repository.NewRateRepository(database)
	audit := repository.NewAuditRepository(database)

	paging := service.PagingFromConfig(cfg)
	horizon := cfg.Release.HorizonDays

	return httphandler.Services{
		Contracts:   service.NewContractService(contracts, suppliers, audit, paging, log),
		Deadlines:   service.NewDeadlineService(deadlines, contracts, audit, paging, log),
		Allocations: service.NewAllocationService(allocations, contracts, pools, audit, paging, horizon, log),
		Pools:       service.NewPoolService(pools, allocations, contracts, suppliers, audit, log),
		Rates:       service.NewRateService(rates, contracts, audit, paging, log),
		Audit:       service.NewAuditService(audit, paging),
		Dashboard:   service.NewDashboardService(contracts, deadlines, allocations, horizon),
		Exports:     service.NewExportService(contracts, deadlines, allocations, rates, excel.NewGenerator(), pdf.NewGenerator(), horizon),
	}
}

func (a *app) close() {
	sqlDB, err := a.database.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		a.log.Warn().Err(err).Msg("close database")
	}
}
