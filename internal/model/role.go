package model

// Role groups privileges for managers.
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

const (
	RoleMasterAdmin      = "MASTER_ADMIN"
	RoleWarehouseManager = "WAREHOUSE_MANAGER"
)

var DefaultRoles = []Role{
	{
		Code:        RoleMasterAdmin,
		Name:        "Master Administrator",
		Description: "Full access including stock adjustments",
	},
	{
		Code:        RoleWarehouseManager,
		Name:        "Warehouse Manager",
		Description: "Runs import orders; cannot adjust stock by hand",
	},
}

// RolePrivilegeCodes lists what each default role receives when seeded.
// A nil entry means every privilege.
var RolePrivilegeCodes = map[string][]string{
	RoleMasterAdmin: nil,
	RoleWarehouseManager: {
		PrivImportOrderView, PrivImportOrderCreate, PrivImportOrderApprove,
		PrivImportOrderComplete, PrivImportOrderCancel,
		PrivInventoryView, PrivProductCreate, PrivProductUpdate,
		PrivSupplierCreate, PrivDashboardView, PrivUserView,
	},
}
