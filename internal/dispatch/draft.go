package dispatch

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
	pkgerrors "github.com/chemtrade/chemtrade-backend/pkg/errors"
)

// Draft is one row of the console's working vehicle list. ID is zero for a
// newly added truck and set for a row loaded from the persisted ledger.
type Draft struct {
	ID          uuid.UUID
	Plate       string
	DriverName  string
	DriverPhone string
	Weight      decimal.Decimal

	// status mirrors the persisted record's checkpoint state; new drafts
	// are pending by construction.
	status enums.VehicleStatus
}

// Locked reports whether the underlying record has already entered site and
// may no longer be edited or removed.
func (d Draft) Locked() bool {
	return d.status != "" && d.status != enums.VehicleStatusPendingEntry
}

// Validate checks the console's required fields.
func (d Draft) Validate() error {
	if d.Plate == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "plate required")
	}
	if d.DriverName == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "driver name required")
	}
	if !d.Weight.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "planned weight must be positive")
	}
	return nil
}

// DraftList is the in-memory working copy of one ledger partition, edited by
// the console before a reconcile persists it as a whole.
type DraftList struct {
	items []Draft
}

// NewDraftList starts an empty working list.
func NewDraftList() *DraftList {
	return &DraftList{}
}

// DraftListFromRecords opens the persisted partition for editing, keeping
// console order.
func DraftListFromRecords(records []models.VehicleRecord) *DraftList {
	list := &DraftList{items: make([]Draft, 0, len(records))}
	for _, record := range records {
		weight := decimal.Zero
		if record.MovementType.Inbound() {
			if record.ReturnWeight != nil {
				weight = *record.ReturnWeight
			}
		} else if record.LoadWeight != nil {
			weight = *record.LoadWeight
		}
		list.items = append(list.items, Draft{
			ID:          record.ID,
			Plate:       record.Plate,
			DriverName:  record.DriverName,
			DriverPhone: record.DriverPhone,
			Weight:      weight,
			status:      record.Status,
		})
	}
	return list
}

// Add appends a validated new truck to the working list.
func (l *DraftList) Add(draft Draft) error {
	if err := draft.Validate(); err != nil {
		return err
	}
	draft.status = enums.VehicleStatusPendingEntry
	l.items = append(l.items, draft)
	return nil
}

// Edit replaces the row at index, refusing rows whose truck is already on
// site. A rejected edit leaves the list untouched.
func (l *DraftList) Edit(index int, draft Draft) error {
	if index < 0 || index >= len(l.items) {
		return pkgerrors.New(pkgerrors.CodeValidation, "draft index out of range")
	}
	current := l.items[index]
	if current.Locked() {
		return pkgerrors.New(pkgerrors.CodeVehicleLocked, "vehicle already on site, record is locked")
	}
	if err := draft.Validate(); err != nil {
		return err
	}
	draft.ID = current.ID
	draft.status = current.status
	l.items[index] = draft
	return nil
}

// Remove drops the row at index, refusing rows whose truck is already on site.
func (l *DraftList) Remove(index int) error {
	if index < 0 || index >= len(l.items) {
		return pkgerrors.New(pkgerrors.CodeValidation, "draft index out of range")
	}
	if l.items[index].Locked() {
		return pkgerrors.New(pkgerrors.CodeVehicleLocked, "vehicle already on site, record is locked")
	}
	l.items = append(l.items[:index], l.items[index+1:]...)
	return nil
}

// Items returns the working list in console order.
func (l *DraftList) Items() []Draft {
	out := make([]Draft, len(l.items))
	copy(out, l.items)
	return out
}
