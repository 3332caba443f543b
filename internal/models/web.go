package models

import "time"

// User представляет администратора дашборда
type User struct {
	ID           int
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// ActivityLog представляет запись в логе активности
type ActivityLog struct {
	ID        int       `json:"id"`
	UserID    *int      `json:"user_id,omitempty"`
	Level     string    `json:"level"`  // "INFO", "WARN", "ERROR"
	Action    string    `json:"action"` // "tip_created", "stock_deleted", etc.
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"` // JSON с дополнительной информацией
	CreatedAt time.Time `json:"created_at"`
}
