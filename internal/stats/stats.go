package stats

type DaysStat struct {
	Period        string `json:"period"` // "week", "month", "all_time"
	DaysCompleted int    `json:"days_completed" db:"days_completed"`
	TotalDays     int    `json:"total_days"`
}

type UserStats struct {
	CompletedToday      bool    `json:"completed_today"`
	DayNumber           int     `json:"day_number"`
	DaysThisWeek        int     `json:"days_this_week"`
	DaysThisMonth       int     `json:"days_this_month"`
	TotalCompleted      int     `json:"total_completed"`
	CurrentStreak       int     `json:"current_streak"`
	LongestStreak       int     `json:"longest_streak"`
	MomentumScore       float64 `json:"momentum_score"`
	JournalEntriesCount int     `json:"journal_entries_count"`
}
