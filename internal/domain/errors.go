package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
)

// Códigos de error de integración. El ejecutor de reintentos (pkg/resilience)
// los usa para decidir si una operación fallida es reintentable.
const (
	CodeInventorySync          = "INVENTORY_SYNC_ERROR"
	CodeStockAlertProcessing   = "STOCK_ALERT_PROCESSING_ERROR"
	CodePOSUnavailable         = "POS_SYSTEM_UNAVAILABLE"
	CodeInventoryInconsistency = "INVENTORY_DATA_INCONSISTENCY"
	CodeAutoPurchaseOrder      = "AUTO_PURCHASE_ORDER_ERROR"
	CodeSupplierMapping        = "SUPPLIER_PRODUCT_MAPPING_ERROR"
	CodeReorderCalculation     = "REORDER_POINT_CALCULATION_ERROR"
	CodeValidation             = "VALIDATION_ERROR"
	CodeSyncInProgress         = "SYNC_IN_PROGRESS"
)

// CodedError envuelve un error con un código clasificable.
type CodedError struct {
	Code    string
	Message string
	Err     error
}

func (e *CodedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap preserva la cadena para errors.Is / errors.As.
func (e *CodedError) Unwrap() error { return e.Err }

// ErrorCode implementa la interfaz de clasificación usada por pkg/resilience.
func (e *CodedError) ErrorCode() string { return e.Code }

// NewCodedError construye un CodedError; err puede ser nil.
func NewCodedError(code, message string, err error) *CodedError {
	return &CodedError{Code: code, Message: message, Err: err}
}

// CodeOf devuelve el código del error si lleva uno, o "" si no.
func CodeOf(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}
