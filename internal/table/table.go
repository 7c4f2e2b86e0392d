// Package table tracks the dining floor. Status flips are driven by the
// order lifecycle; the endpoints here cover setup and manual overrides.
package table

import (
	"github.com/google/uuid"
)

// Status is the floor state of a table.
type Status string

const (
	StatusVacant      Status = "VACANT"
	StatusOccupied    Status = "OCCUPIED"
	StatusBillPrinted Status = "BILL_PRINTED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusVacant, StatusOccupied, StatusBillPrinted:
		return true
	}
	return false
}

// Table is one physical table on the floor.
type Table struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Seats          int32      `json:"seats"`
	Status         Status     `json:"status"`
	CurrentOrderID *uuid.UUID `json:"currentOrderId,omitempty"`
}
