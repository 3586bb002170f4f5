// contest-platform/services/notifier.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// NotificationClient talks to the external email/notification service.
// Deliveries are best-effort everywhere it is used: a failed send is logged
// and retried later, never propagated as a draw or award failure.
type NotificationClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewNotificationClient(baseURL, token string) *NotificationClient {
	return &NotificationClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WinnerNotification is the payload for a winner email dispatch.
type WinnerNotification struct {
	WinnerID          string `json:"winner_id"`
	ContestID         string `json:"contest_id"`
	ParticipationCode string `json:"participation_code,omitempty"`
	EventType         string `json:"event_type"`
}

// SendWinnerNotification calls /notifications/send on the notification service.
func (c *NotificationClient) SendWinnerNotification(ctx context.Context, n WinnerNotification) error {
	url := fmt.Sprintf("%s/notifications/send", c.BaseURL)

	if n.EventType == "" {
		n.EventType = "contest_winner"
	}
	jsonData, _ := json.Marshal(n)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("Notification service returned %d: %s", resp.StatusCode, string(body))
		return fmt.Errorf("notification dispatch failed: %d", resp.StatusCode)
	}
	return nil
}
