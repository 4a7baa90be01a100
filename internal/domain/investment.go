package domain

import (
	"time"

	"github.com/google/uuid"
)

// Investment is one append-only ledger entry. Entries are immutable once
// written; the ledger is the source of truth for all money movement and the
// input to every analytics rollup.
type Investment struct {
	ID               uuid.UUID `json:"id"`
	ProjectID        uuid.UUID `json:"project_id"`
	InvestorID       uuid.UUID `json:"investor_id"`
	Amount           int64     `json:"amount"` // in cents, always > 0
	PaymentReference string    `json:"payment_reference"`
	CreatedAt        time.Time `json:"created_at"`
}

// InvestorPosition is the denormalized per-(project, investor) running total
// derived from the ledger. It also serves as the reverse index for
// "projects this investor backed".
type InvestorPosition struct {
	ProjectID  uuid.UUID `json:"project_id"`
	InvestorID uuid.UUID `json:"investor_id"`
	Amount     int64     `json:"amount"` // cumulative, in cents
	InvestedAt time.Time `json:"invested_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// InvestmentListOptions filters ledger queries.
type InvestmentListOptions struct {
	ProjectID  *uuid.UUID
	InvestorID *uuid.UUID
	Since      *time.Time
	Limit      int
}

// InvestmentRecordedEvent is the message payload published to RabbitMQ after
// a confirmed payment has been durably recorded.
type InvestmentRecordedEvent struct {
	InvestmentID     uuid.UUID `json:"investment_id"`
	ProjectID        uuid.UUID `json:"project_id"`
	InvestorID       uuid.UUID `json:"investor_id"`
	Amount           int64     `json:"amount"`
	PaymentReference string    `json:"payment_reference"`
	RecordedAt       time.Time `json:"recorded_at"`
}

// InvestorStats summarizes an investor's portfolio.
type InvestorStats struct {
	TotalInvested int64 `json:"total_invested"`
	ActiveDeals   int   `json:"active_deals"`
	TotalDeals    int   `json:"total_deals"`
}
