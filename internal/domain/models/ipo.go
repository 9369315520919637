package models

import "time"

// RawRecord is one new_share row as returned by the provider. Values are kept
// as text so empty or non-numeric cells can be told apart from zero.
type RawRecord struct {
	TSCode       string
	SubCode      string
	Name         string
	IPODate      string
	IssueDate    string
	ListDate     string
	Amount       string // issue volume, 万股
	MarketAmount string
	Price        string
	PE           string
	LimitAmount  string
	Funds        string // funds raised, 亿元
	Ballot       string
}

// CanonicalRow is a normalized record ready for aggregation.
// Nil numerics mean the provider did not report a usable value.
type CanonicalRow struct {
	Month       string // YYYY-MM
	IssueAmount *float64
	Funds       *float64
}

// MonthlyAggregate summarizes all issuances of one calendar month.
type MonthlyAggregate struct {
	Month          string  `json:"month"`
	IPOCount       int     `json:"ipo_count"`
	IssueAmountSum float64 `json:"issue_amount_sum"`
	FundsSum       float64 `json:"funds_sum"`
}

// Reason names which thresholds a month exceeded.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonCount         Reason = "count"
	ReasonFunds         Reason = "funds"
	ReasonCountAndFunds Reason = "count_and_funds"
)

// NotificationDecision is derived per pass and never stored on its own.
type NotificationDecision struct {
	ShouldSend bool    `json:"should_send"`
	Month      string  `json:"month"`
	IPOCount   int     `json:"ipo_count"`
	FundsSum   float64 `json:"funds_sum"`
	Reason     Reason  `json:"reason,omitempty"`
}

// Window is an inclusive YYYYMMDD date range.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Snapshot is the outcome of the last successful pass.
type Snapshot struct {
	RunAt       time.Time            `json:"run_at"`
	Window      Window               `json:"window"`
	Fetched     int                  `json:"fetched"`
	Rows        int                  `json:"rows"`
	Dropped     int                  `json:"dropped"`
	OutOfWindow int                  `json:"out_of_window"`
	Aggregates  []MonthlyAggregate   `json:"aggregates"`
	Decision    NotificationDecision `json:"decision"`
	Notified    bool                 `json:"notified"`
}
