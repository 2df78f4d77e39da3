package csvimport

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-import/internal/domain/entity"
)

// Mensajes por fila (se muestran al operador tal cual).
const (
	MsgQuantityInvalid     = "quantity must be a non-negative integer"
	MsgPriceInvalid        = "price_per_unit must be a non-negative number"
	MsgBranchInvalid       = "branch_id must be a positive integer"
	MsgExpiryInvalid       = "expiry_date must be a valid date (YYYY-MM-DD)"
	MsgExpiryPast          = "expiry date is in the past"
	MsgProductIDGenerated  = "product ID auto-generated"
	MsgThresholdInvalid    = "low_stock_threshold must be a non-negative integer"
	MsgMovementTypeInvalid = "movement_type must be one of inward, outward, adjustment"
)

// RequiredMessage mensaje para una columna obligatoria vacía.
func RequiredMessage(col string) string {
	return col + " is required"
}

// Validator aplica las reglas de campo y entre campos a cada fila.
type Validator struct {
	now             func() time.Time
	newProductID    func() string
	defaultLowStock int
}

// ValidatorOption configura el Validator.
type ValidatorOption func(*Validator)

// WithClock fija el reloj usado para comparar fechas de vencimiento.
func WithClock(now func() time.Time) ValidatorOption {
	return func(v *Validator) { v.now = now }
}

// WithProductIDGenerator reemplaza el generador de product_id.
func WithProductIDGenerator(gen func() string) ValidatorOption {
	return func(v *Validator) { v.newProductID = gen }
}

// WithDefaultLowStock umbral por defecto cuando la fila no trae low_stock_threshold.
func WithDefaultLowStock(n int) ValidatorOption {
	return func(v *Validator) {
		if n >= 0 {
			v.defaultLowStock = n
		}
	}
}

// NewValidator construye el validador con reloj real y product_id basado en UUID.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		now:             time.Now,
		newProductID:    NewProductID,
		defaultLowStock: entity.DefaultLowStockThreshold,
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// NewProductID genera un product_id resistente a colisiones entre importaciones y workers.
func NewProductID() string {
	return "PRD-" + strings.ToUpper(uuid.New().String())
}

// Validate clasifica una fila.
func (v *Validator) Validate(rec Record) ImportRow {
	return v.validate(rec, nil)
}

// ValidateAll valida todas las filas en orden y además advierte SKUs repetidos
// en el mismo lote y sucursal (se permiten: p. ej. dos ajustes sobre el mismo artículo).
func (v *Validator) ValidateAll(recs []Record) []ImportRow {
	firstSeen := make(map[string]int, len(recs))
	rows := make([]ImportRow, 0, len(recs))
	for _, rec := range recs {
		var extra []string
		if sku := strings.TrimSpace(rec.Get(ColSKU)); sku != "" {
			key := strings.TrimSpace(rec.Get(ColBranchID)) + "/" + strings.ToLower(sku)
			if line, ok := firstSeen[key]; ok {
				extra = append(extra, fmt.Sprintf("duplicate sku %q in batch (first seen on line %d)", sku, line))
			} else {
				firstSeen[key] = rec.Line
			}
		}
		rows = append(rows, v.validate(rec, extra))
	}
	return rows
}

func (v *Validator) validate(rec Record, extraWarnings []string) ImportRow {
	values := make(map[string]string, len(rec.Fields)+1)
	for k, val := range rec.Fields {
		values[k] = strings.TrimSpace(val)
	}

	var errs, warns []string

	// 1. Obligatorios
	for _, col := range RequiredColumns {
		if values[col] == "" {
			errs = append(errs, RequiredMessage(col))
		}
	}

	// 2. quantity entero >= 0
	var quantity int64
	if raw := values[ColQuantity]; raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			errs = append(errs, MsgQuantityInvalid)
		} else {
			quantity = n
		}
	}

	// 3. price_per_unit número >= 0
	price := decimal.Zero
	if raw := values[ColPricePerUnit]; raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() {
			errs = append(errs, MsgPriceInvalid)
		} else {
			price = d
		}
	}

	// 4. branch_id entero >= 1
	var branchID int64
	if raw := values[ColBranchID]; raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			errs = append(errs, MsgBranchInvalid)
		} else {
			branchID = n
		}
	}

	// 5. expiry_date: inválida = error, vencida = advertencia
	var expiry *time.Time
	if raw := values[ColExpiryDate]; raw != "" {
		now := v.now()
		d, err := time.ParseInLocation(DateLayout, raw, now.Location())
		if err != nil {
			errs = append(errs, MsgExpiryInvalid)
		} else {
			expiry = &d
			today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			if !d.After(today) {
				warns = append(warns, MsgExpiryPast)
			}
		}
	}

	threshold := v.defaultLowStock
	if raw := values[ColLowStockThreshold]; raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			errs = append(errs, MsgThresholdInvalid)
		} else {
			threshold = n
		}
	}

	var movType entity.MovementType
	if raw := values[ColMovementType]; raw != "" {
		movType = entity.MovementType(strings.ToLower(raw))
		if !movType.Valid() {
			errs = append(errs, MsgMovementTypeInvalid)
		}
	}

	// 6. product_id generado
	if values[ColProductID] == "" {
		values[ColProductID] = v.newProductID()
		warns = append(warns, MsgProductIDGenerated)
	}
	warns = append(warns, extraWarnings...)

	row := ImportRow{
		Line:           rec.Line,
		Values:         values,
		Classification: classify(errs, warns),
		Errors:         errs,
		Warnings:       warns,
		MovementType:   movType,
	}
	if len(errs) == 0 {
		row.Item = &entity.StockItem{
			SKU:               values[ColSKU],
			ProductID:         values[ColProductID],
			Name:              values[ColName],
			Category:          values[ColCategory],
			Supplier:          values[ColSupplier],
			BatchNo:           values[ColBatchNo],
			Quantity:          quantity,
			PricePerUnit:      price,
			BranchID:          branchID,
			LowStockThreshold: threshold,
			ExpiryDate:        expiry,
		}
	}
	return row
}
