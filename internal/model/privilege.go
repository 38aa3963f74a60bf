package model

// Privilege represents a permission that can be granted to a role or user.
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivImportOrderView     = "import_order:view"
	PrivImportOrderCreate   = "import_order:create"
	PrivImportOrderApprove  = "import_order:approve"
	PrivImportOrderComplete = "import_order:complete"
	PrivImportOrderCancel   = "import_order:cancel"
	PrivInventoryView       = "inventory:view"
	PrivInventoryAdjust     = "inventory:adjust"
	PrivProductCreate       = "product:create"
	PrivProductUpdate       = "product:update"
	PrivSupplierCreate      = "supplier:create"
	PrivDashboardView       = "dashboard:view"
	PrivUserView            = "user:view"
	PrivUserCreate          = "user:create"
	PrivUserUpdate          = "user:update"
)

var DefaultPrivileges = []Privilege{
	{Code: PrivImportOrderView, Name: "View Import Orders"},
	{Code: PrivImportOrderCreate, Name: "Create Import Orders"},
	{Code: PrivImportOrderApprove, Name: "Approve Import Orders"},
	{Code: PrivImportOrderComplete, Name: "Complete Import Orders"},
	{Code: PrivImportOrderCancel, Name: "Cancel Import Orders"},
	{Code: PrivInventoryView, Name: "View Inventory"},
	{Code: PrivInventoryAdjust, Name: "Adjust Inventory"},
	{Code: PrivProductCreate, Name: "Create Product"},
	{Code: PrivProductUpdate, Name: "Update Product"},
	{Code: PrivSupplierCreate, Name: "Create Supplier"},
	{Code: PrivDashboardView, Name: "View Dashboard"},
	{Code: PrivUserView, Name: "View Managers"},
	{Code: PrivUserCreate, Name: "Create Managers"},
	{Code: PrivUserUpdate, Name: "Update Managers"},
}
