// workers/notification_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"contest-platform/models"
	"contest-platform/services"

	"gorm.io/gorm"
)

// NotificationDispatcher delivers winner notifications for completed draws.
// Dispatch is decoupled from the draw itself: the draw commits, this worker
// picks up the history row, and a failed send is simply retried on the next
// tick. NotifiedAt is only stamped after a successful delivery.
type NotificationDispatcher struct {
	DB     *gorm.DB
	Client *services.NotificationClient
}

func NewNotificationDispatcher(db *gorm.DB, client *services.NotificationClient) *NotificationDispatcher {
	return &NotificationDispatcher{DB: db, Client: client}
}

// PollDraws periodically dispatches notifications for unnotified winners.
func PollDraws(ctx context.Context, d *NotificationDispatcher, pollInterval time.Duration) {
	log.Println("Starting winner-notification polling...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Winner-notification polling stopped.")
			return
		case <-ticker.C:
			if err := d.DispatchPending(ctx); err != nil {
				log.Printf("❌ Error dispatching winner notifications: %v", err)
			}
		}
	}
}

// DispatchPending sends one notification per unnotified draw record.
func (d *NotificationDispatcher) DispatchPending(ctx context.Context) error {
	var pending []models.DrawHistoryEntry
	if err := d.DB.Where("notified_at IS NULL").
		Order("draw_date ASC").
		Limit(50).
		Find(&pending).Error; err != nil {
		return err
	}

	if len(pending) == 0 {
		return nil
	}

	log.Printf("📥 %d winner notification(s) pending.", len(pending))

	for _, entry := range pending {
		var participant models.Participant
		code := ""
		if err := d.DB.First(&participant, "id = ?", entry.ParticipantID).Error; err == nil {
			code = participant.ParticipationCode
		}

		err := d.Client.SendWinnerNotification(ctx, services.WinnerNotification{
			WinnerID:          entry.ExternalUserID,
			ContestID:         entry.ContestID,
			ParticipationCode: code,
			EventType:         "contest_winner",
		})
		if err != nil {
			// Best-effort: leave the row unstamped and retry next tick.
			log.Printf("⚠️ Winner notification failed (contest=%s, winner=%s): %v",
				entry.ContestID, entry.ExternalUserID, err)
			continue
		}

		now := time.Now().UTC()
		if err := d.DB.Model(&models.DrawHistoryEntry{}).
			Where("id = ? AND notified_at IS NULL", entry.ID).
			Update("notified_at", now).Error; err != nil {
			log.Printf("⚠️ Failed to stamp notified_at for draw %s: %v", entry.ID, err)
			continue
		}

		log.Printf("📧 Winner notified: contest=%s winner=%s", entry.ContestID, entry.ExternalUserID)
	}

	return nil
}
