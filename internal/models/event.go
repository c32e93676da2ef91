package models

// Event kinds emitted by the ledger. The event journal is the system's sole
// externally visible audit trail: every state mutation emits exactly one
// event of its kind (escrow moves additionally emit the underlying Transfer).
const (
	EventTransfer             = "Transfer"
	EventApproval             = "Approval"
	EventKYCUpdated           = "KYCUpdated"
	EventDailyLimitUpdated    = "DailyLimitUpdated"
	EventRateUpdated          = "RateUpdated"
	EventOwnershipTransferred = "OwnershipTransferred"
	EventMinterChanged        = "MinterChanged"
	EventPaused               = "Paused"
	EventUnpaused             = "Unpaused"
	EventSavingsGroupCreated  = "SavingsGroupCreated"
	EventMemberJoined         = "MemberJoined"
	EventSavingsContribution  = "SavingsContribution"
	EventTargetReached        = "TargetReached"
	EventCollateralUpdated    = "CollateralUpdated"
)

// Event is one append-only journal record. Amounts are stored as decimal
// strings in base units so postgres keeps full 18-decimal precision.
// For mint and burn Transfer events the null party is the empty string.
type Event struct {
	// ID is a random UUID assigned at emission.
	ID string `json:"id" gorm:"column:id;primaryKey"`
	// Kind is one of the Event* constants above.
	Kind string `json:"kind" gorm:"column:kind;index;not null"`
	// From is the subject address debited or acted upon, if any.
	From string `json:"from" gorm:"column:from_address;index"`
	// To is the subject address credited or targeted, if any.
	To string `json:"to" gorm:"column:to_address;index"`
	// Amount is the numeric payload in base units, empty when not applicable.
	Amount string `json:"amount" gorm:"column:amount"`
	// Currency is the currency code for rate events.
	Currency string `json:"currency" gorm:"column:currency"`
	// GroupID is the savings group id for group events, zero otherwise.
	GroupID uint64 `json:"group_id" gorm:"column:group_id;index"`
	// Timestamp is the Unix time of the mutation, taken from the engine's
	// single per-call clock read.
	Timestamp int64 `json:"timestamp" gorm:"column:timestamp;index"`
}

// TableName specifies the table name for GORM.
func (Event) TableName() string {
	return "ledger_events"
}

// EventSink receives every emitted event. Record must not block the caller;
// implementations buffer and drain asynchronously.
type EventSink interface {
	Record(event *Event)
}
