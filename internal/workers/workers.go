package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"onePercentAPI/internal/notification"
	"onePercentAPI/utils"
)

// StartStreakRiskWorker starts a background routine that nudges users whose
// streak is about to break: evening in their timezone, yesterday completed,
// today still open.
func StartStreakRiskWorker(db *pgxpool.Pool, notifier utils.NotificationCreator) {
	ticker := time.NewTicker(1 * time.Hour)

	go func() {
		for range ticker.C {
			remindAtRiskUsers(db, notifier)
		}
	}()
}

func remindAtRiskUsers(db *pgxpool.Pool, notifier utils.NotificationCreator) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// One reminder per at-risk evening; the NOT EXISTS window keeps reruns
	// within the same day quiet.
	query := `
		SELECT u.id, s.current_streak
		FROM users u
		JOIN streaks s ON s.user_id = u.id
		WHERE s.current_streak > 0
		  AND s.last_completion_date = (NOW() AT TIME ZONE u.timezone)::date - 1
		  AND EXTRACT(HOUR FROM NOW() AT TIME ZONE u.timezone) BETWEEN 18 AND 22
		  AND NOT EXISTS (
			SELECT 1 FROM notifications n
			WHERE n.user_id = u.id
			  AND n.type = $1
			  AND n.created_at > NOW() - INTERVAL '20 hours'
		  )
	`

	rows, err := db.Query(ctx, query, notification.TypeStreakRisk)
	if err != nil {
		log.Printf("Streak risk worker: query failed: %v", err)
		return
	}
	defer rows.Close()

	type atRisk struct {
		userID uuid.UUID
		streak int
	}
	var users []atRisk
	for rows.Next() {
		var u atRisk
		if err := rows.Scan(&u.userID, &u.streak); err != nil {
			log.Printf("Streak risk worker: scan failed: %v", err)
			continue
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		log.Printf("Streak risk worker: read failed: %v", err)
		return
	}

	for _, u := range users {
		req := &notification.CreateNotificationRequest{
			UserID: u.userID,
			Type:   notification.TypeStreakRisk,
			Title:  "Your streak is at risk",
			Body:   fmt.Sprintf("Your %d-day streak ends at midnight. Today's challenge takes just a few minutes.", u.streak),
			Data: map[string]any{
				"days": u.streak,
			},
		}
		if _, err := notifier.CreateNotification(ctx, req); err != nil {
			log.Printf("Streak risk worker: failed to notify user %s: %v", u.userID, err)
		}
	}

	if len(users) > 0 {
		log.Printf("Streak risk worker: reminded %d users", len(users))
	}
}
