package csvimport

// Columnas del CSV de inventario (importación y exportación).
const (
	ColProductID         = "product_id"
	ColSKU               = "sku"
	ColName              = "name"
	ColCategory          = "category"
	ColSupplier          = "supplier"
	ColQuantity          = "quantity"
	ColPricePerUnit      = "price_per_unit"
	ColBatchNo           = "batch_no"
	ColExpiryDate        = "expiry_date"
	ColLowStockThreshold = "low_stock_threshold"
	ColBranchID          = "branch_id"
	ColMovementType      = "movement_type"
)

// DateLayout formato de expiry_date.
const DateLayout = "2006-01-02"

// RequiredColumns columnas obligatorias, en el orden en que se reportan.
var RequiredColumns = []string{ColName, ColCategory, ColQuantity, ColBranchID}

// ExportColumns orden de columnas de la exportación; es compatible con la importación.
var ExportColumns = []string{
	ColProductID,
	ColSKU,
	ColName,
	ColCategory,
	ColSupplier,
	ColQuantity,
	ColPricePerUnit,
	ColBatchNo,
	ColExpiryDate,
	ColLowStockThreshold,
	ColBranchID,
}
