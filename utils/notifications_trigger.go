package utils

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"onePercentAPI/internal/notification"
)

type NotificationCreator interface {
	CreateNotification(ctx context.Context, req *notification.CreateNotificationRequest) (*notification.Notification, error)
}

var streakMilestones = []int{3, 7, 14, 30, 60, 100, 365}

// StreakMilestoneReached fires a celebration notification when the current
// streak lands exactly on a milestone. Best-effort: a failed notification
// never fails the completion that triggered it.
func StreakMilestoneReached(notifier NotificationCreator, userID uuid.UUID, currentStreak int) {
	milestone := false
	for _, m := range streakMilestones {
		if currentStreak == m {
			milestone = true
			break
		}
	}
	if !milestone {
		return
	}

	bgCtx := context.Background()

	req := &notification.CreateNotificationRequest{
		UserID: userID,
		Type:   notification.TypeStreakMilestone,
		Title:  fmt.Sprintf("%d-day streak!", currentStreak),
		Body:   fmt.Sprintf("You've completed a challenge %d days in a row. Keep the momentum going.", currentStreak),
		Data: map[string]any{
			"days": currentStreak,
		},
	}

	if _, err := notifier.CreateNotification(bgCtx, req); err != nil {
		log.Printf("Failed to create streak milestone notification for user %s: %v", userID, err)
	}
}
