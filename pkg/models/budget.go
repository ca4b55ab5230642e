package models

// BudgetPeriod defines the time window for the call budget.
type BudgetPeriod string

const (
	BudgetDaily   BudgetPeriod = "daily"
	BudgetMonthly BudgetPeriod = "monthly"
)

// BudgetStatus shows outbound call usage against the configured cap.
type BudgetStatus struct {
	Period    BudgetPeriod `json:"period"`
	MaxCalls  int64        `json:"max_calls"`
	Used      int64        `json:"used"`
	Remaining int64        `json:"remaining"`
}
