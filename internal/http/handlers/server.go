package handlers

import (
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/inventory"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/report"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/repo"
	"go.uber.org/zap"
)

var (
	inventorySvc *inventory.Service
	reportSvc    *report.Service
	userRepo     repo.UserRepository
	stores       *repo.Stores

	logger = zap.NewNop()
)

func SetInventoryService(s *inventory.Service) {
	inventorySvc = s
}

func SetReportService(s *report.Service) {
	reportSvc = s
}

func SetUserRepo(r repo.UserRepository) {
	userRepo = r
}

func SetStores(s *repo.Stores) {
	stores = s
}

func SetLogger(l *zap.Logger) {
	logger = l
}
