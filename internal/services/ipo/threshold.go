package ipo

import (
	"time"

	"IPOWatch/internal/domain/models"
	"IPOWatch/pkg/util"
)

const (
	DefaultIPOCountThreshold = 10
	DefaultFundsThreshold    = 100.0
)

// Thresholds are exclusive: a month triggers only when strictly above.
type Thresholds struct {
	IPOCount int
	Funds    float64 // 亿元
}

// DefaultThresholds returns the fixed production thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{IPOCount: DefaultIPOCountThreshold, Funds: DefaultFundsThreshold}
}

// CurrentMonth is the local wall-clock month of now.
func CurrentMonth(now time.Time) string {
	return util.MonthKey(now.In(time.Local))
}

// Evaluate decides whether the current month warrants a notification.
func Evaluate(byMonth map[string]models.MonthlyAggregate, now time.Time, th Thresholds) models.NotificationDecision {
	month := CurrentMonth(now)
	agg, ok := byMonth[month]
	if !ok {
		return models.NotificationDecision{Month: month}
	}
	return EvaluateMonth(agg, th)
}

// EvaluateMonth applies the thresholds to a single aggregate.
func EvaluateMonth(agg models.MonthlyAggregate, th Thresholds) models.NotificationDecision {
	d := models.NotificationDecision{
		Month:    agg.Month,
		IPOCount: agg.IPOCount,
		FundsSum: agg.FundsSum,
	}
	byCount := agg.IPOCount > th.IPOCount
	byFunds := agg.FundsSum > th.Funds
	switch {
	case byCount && byFunds:
		d.Reason = models.ReasonCountAndFunds
	case byCount:
		d.Reason = models.ReasonCount
	case byFunds:
		d.Reason = models.ReasonFunds
	}
	d.ShouldSend = d.Reason != models.ReasonNone
	return d
}
