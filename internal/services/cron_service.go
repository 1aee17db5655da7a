package services

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tripveda/booking-backend/internal/database"
)

// CronService manages scheduled background cleanup jobs
type CronService struct {
	cron         *cron.Cron
	draftRepo    *database.DraftRepository
	templateRepo *database.PassengerTemplateRepository
}

// NewCronService creates a new CronService
func NewCronService(draftRepo *database.DraftRepository, templateRepo *database.PassengerTemplateRepository) *CronService {
	c := cron.New(cron.WithSeconds())

	return &CronService{
		cron:         c,
		draftRepo:    draftRepo,
		templateRepo: templateRepo,
	}
}

// Start starts all cron jobs
func (s *CronService) Start() error {
	log.Println("Starting cron service...")

	// Job 1: Purge expired drafts hourly. Lazy expiry on read already hides
	// them; this sweep reclaims rows nobody reads again.
	_, err := s.cron.AddFunc("0 0 * * * *", s.purgeExpiredDraftsJob)
	if err != nil {
		return fmt.Errorf("failed to schedule draft purge job: %w", err)
	}
	log.Println("✓ Scheduled: Purge expired drafts (hourly)")

	// Job 2: Drop passenger templates untouched for six months, weekly on
	// Sunday at 4 AM
	_, err = s.cron.AddFunc("0 0 4 * * 0", s.purgeStaleTemplatesJob)
	if err != nil {
		return fmt.Errorf("failed to schedule template purge job: %w", err)
	}
	log.Println("✓ Scheduled: Purge stale passenger templates (Sundays at 4:00 AM)")

	s.cron.Start()
	log.Println("✓ Cron service started successfully")

	return nil
}

// Stop stops all cron jobs
func (s *CronService) Stop() {
	log.Println("Stopping cron service...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("✓ Cron service stopped")
}

func (s *CronService) purgeExpiredDraftsJob() {
	startTime := time.Now()

	removed, err := s.draftRepo.DeleteExpired(time.Now())
	if err != nil {
		log.Printf("[CRON ERROR] Failed to purge expired drafts: %v\n", err)
		return
	}

	if removed > 0 {
		log.Printf("[CRON] ✓ Purged %d expired drafts in %v\n", removed, time.Since(startTime))
	}
}

func (s *CronService) purgeStaleTemplatesJob() {
	startTime := time.Now()

	cutoff := time.Now().AddDate(0, -6, 0)
	removed, err := s.templateRepo.DeleteOlderThan(cutoff)
	if err != nil {
		log.Printf("[CRON ERROR] Failed to purge stale templates: %v\n", err)
		return
	}

	if removed > 0 {
		log.Printf("[CRON] ✓ Purged %d stale passenger templates in %v\n", removed, time.Since(startTime))
	}
}
