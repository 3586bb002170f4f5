// services/scheduler.go
package services

import (
	"log"
	"time"

	"contest-platform/models"

	"github.com/go-co-op/gocron/v2"
)

func (s *ContestService) StartPublishScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: publish scheduled contests whose time has come
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var contests []models.Contest
			now := time.Now()
			err := s.DB.Where("status = ? AND publish_schedule <= ?", models.ContestStatusScheduled, now).
				Find(&contests).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, ct := range contests {
				ct.Status = models.ContestStatusPublished
				ct.PublishedAt = &now
				ct.PublishSchedule = nil
				if err := s.DB.Save(&ct).Error; err != nil {
					log.Printf("[Scheduler] Failed to publish contest %s: %v", ct.ID, err)
				} else {
					log.Printf("✅ Auto-published contest: %s", ct.Name)
				}
			}
		}),
	)
}
