// File: internal/domain/route_run.go
package domain

import "time"

// RouteRun persists generated route plans so users can inspect prior results.
// Plan holds the serialized plan document; Postgres stores it as jsonb.
type RouteRun struct {
	ID                 uint   `gorm:"primarykey"`
	Goal               string `json:"goal" gorm:"size:255;not null"`
	AudienceRole       string `json:"audience_role" gorm:"size:120;not null"`
	AudienceExperience string `json:"audience_experience" gorm:"size:32;not null"`
	PrimaryRisk        string `json:"primary_risk" gorm:"size:255"`
	IncludeRisks       bool   `json:"include_risks" gorm:"default:true"`
	Summary            string `json:"summary" gorm:"type:text"`
	Plan               string `json:"plan" gorm:"type:jsonb"`
	CreatedAt          time.Time
}
