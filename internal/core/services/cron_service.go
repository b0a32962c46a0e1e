package services

import (
	"context"
	"log"

	"reqflow/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CronService runs scheduled maintenance jobs
type CronService struct {
	cron             *cron.Cron
	refreshTokenRepo repositories.RefreshTokenRepository
	requestRepo      repositories.RequestRepository
}

// NewCronService creates a new cron service
func NewCronService(
	refreshTokenRepo repositories.RefreshTokenRepository,
	requestRepo repositories.RequestRepository,
) *CronService {
	return &CronService{
		cron:             cron.New(),
		refreshTokenRepo: refreshTokenRepo,
		requestRepo:      requestRepo,
	}
}

// Start registers and launches the scheduled jobs
func (s *CronService) Start() {
	// 02:00 daily: purge expired refresh tokens
	s.cron.AddFunc("0 2 * * *", s.purgeExpiredTokens)

	// 08:30 daily: remind about requests waiting for approval
	s.cron.AddFunc("30 8 * * *", s.pendingApprovalReminder)

	s.cron.Start()
	log.Println("🚀 CronService started")
}

// Stop stops the scheduler, waiting for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 CronService stopped")
}

func (s *CronService) purgeExpiredTokens() {
	deleted, err := s.refreshTokenRepo.DeleteExpired(context.Background())
	if err != nil {
		log.Printf("❌ Expired token purge failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("🧹 Purged %d expired refresh tokens", deleted)
	}
}

func (s *CronService) pendingApprovalReminder() {
	counts, err := s.requestRepo.CountByStatus(context.Background(), nil)
	if err != nil {
		log.Printf("❌ Pending approval reminder failed: %v", err)
		return
	}
	if counts.PendingApproval > 0 {
		log.Printf("🔔 %d requests waiting for approval", counts.PendingApproval)
	}
}
