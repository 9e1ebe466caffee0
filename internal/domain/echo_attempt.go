// File: internal/domain/echo_attempt.go
package domain

import "time"

// EchoAttempt tracks retry attempts for the flaky echo demo on a per-client basis.
type EchoAttempt struct {
	ID        uint   `gorm:"primarykey"`
	ClientKey string `json:"client_key" gorm:"size:255;index;not null"`
	Message   string `json:"message" gorm:"type:text;not null"`
	Failures  int    `json:"failures" gorm:"not null;default:1"` // simulated failures before success
	Attempts  int    `json:"attempts" gorm:"not null;default:0"`
	CreatedAt time.Time
}
