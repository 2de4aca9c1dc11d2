package partner

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stocksync/engine/internal/domain/shared"
)

// Warehouse is a node in the warehouse hierarchy, a rooted forest linked
// through ParentWarehouseID. The engine reads warehouses but never mutates
// them; administration happens elsewhere.
//
// TransferDefaultCalculationType, when set, supplies the replenishment
// calculation default for the node's whole subtree unless a descendant
// overrides it.
type Warehouse struct {
	shared.BaseAggregateRoot
	Code                           string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name                           string     `gorm:"type:varchar(200);not null"`
	ExternalID                     *int64     `gorm:"index"` // id of this warehouse on the legacy platform, when known
	ParentWarehouseID              *uuid.UUID `gorm:"type:uuid;index"`
	TransferDefaultCalculationType *int
}

// TableName returns the table name for GORM
func (Warehouse) TableName() string {
	return "warehouses"
}

// NewWarehouse creates a new warehouse
func NewWarehouse(code, name string) (*Warehouse, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Warehouse code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Warehouse name cannot be empty")
	}

	return &Warehouse{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(strings.TrimSpace(code)),
		Name:              name,
	}, nil
}

// SetParent links this warehouse under a parent node
func (w *Warehouse) SetParent(parentID uuid.UUID) error {
	if parentID == uuid.Nil {
		return shared.NewDomainError("INVALID_PARENT", "Parent warehouse ID cannot be empty")
	}
	if parentID == w.ID {
		return shared.NewDomainError("INVALID_PARENT", "Warehouse cannot be its own parent")
	}

	w.ParentWarehouseID = &parentID
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
	return nil
}

// IsRoot reports whether this warehouse has no parent
func (w *Warehouse) IsRoot() bool {
	return w.ParentWarehouseID == nil
}
