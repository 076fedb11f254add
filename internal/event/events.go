package event

import "time"

type LoanEventPayload struct {
	LoanID          int64     `json:"loanId"`
	CustomerID      int64     `json:"customerId"`
	OwnerID         int64     `json:"ownerId"`
	ItemDescription string    `json:"itemDescription"`
	LoanAmount      float64   `json:"loanAmount"`
	Balance         float64   `json:"balance"`
	Status          string    `json:"status"`
	DueDate         time.Time `json:"dueDate"`
}

type LoanCreatedEvent struct {
	Timestamp time.Time        `json:"timestamp"`
	Payload   LoanEventPayload `json:"payload"`
}

type RepaymentRecordedEvent struct {
	Timestamp time.Time        `json:"timestamp"`
	Amount    float64          `json:"amount"`
	Payload   LoanEventPayload `json:"payload"`
}

type LoanOverdueEvent struct {
	Timestamp time.Time        `json:"timestamp"`
	Payload   LoanEventPayload `json:"payload"`
}
