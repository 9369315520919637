package models

import "time"

// MonthlyRequest filters GET /api/ipo/monthly.
type MonthlyRequest struct {
	From  string `query:"from" json:"from" validate:"omitempty,datetime=2006-01"`
	To    string `query:"to" json:"to" validate:"omitempty,datetime=2006-01"`
	Limit int    `query:"limit" json:"limit" default:"60" validate:"gte=1,lte=600"`
}

type MonthlyResponse struct {
	RunAt  time.Time          `json:"run_at"`
	Window Window             `json:"window"`
	Rows   []MonthlyAggregate `json:"rows"`
	Total  int                `json:"total"`
}

type DecisionResponse struct {
	RunAt    time.Time            `json:"run_at"`
	Decision NotificationDecision `json:"decision"`
	Notified bool                 `json:"notified"`
}

type HealthResponse struct {
	Status  string     `json:"status"`
	LastRun *time.Time `json:"last_run,omitempty"`
}
