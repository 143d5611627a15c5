package dispatch

import (
	"github.com/google/uuid"

	"github.com/chemtrade/chemtrade-backend/pkg/enums"
)

// ReconcileInput replaces one ledger partition with the console's edited
// draft list. ExpectedVersion is the aggregate version the console opened
// its drafts against.
type ReconcileInput struct {
	OrderID         uuid.UUID
	MovementType    enums.MovementType
	Drafts          []Draft
	CommonReason    string
	ExpectedVersion int64
	Actor           string
}
