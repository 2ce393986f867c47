// Package alerting contiene la clasificación de urgencia de alertas de stock
// (servicio de dominio puro).
package alerting

import "github.com/jhoicas/AlmacenPos-api/internal/domain/entity"

// DefaultReorderPoint se aplica cuando el producto no define punto de reorden.
const DefaultReorderPoint = 10

// ClassifyUrgency es función pura de (stock actual, punto de reorden):
//
//	stock = 0                → critical
//	stock <= 0.3 * reorden   → high
//	stock <= 0.7 * reorden   → medium
//	en otro caso             → low
func ClassifyUrgency(currentStock, reorderPoint int) string {
	if reorderPoint <= 0 {
		reorderPoint = DefaultReorderPoint
	}
	switch {
	case currentStock <= 0:
		return entity.UrgencyCritical
	case float64(currentStock) <= 0.3*float64(reorderPoint):
		return entity.UrgencyHigh
	case float64(currentStock) <= 0.7*float64(reorderPoint):
		return entity.UrgencyMedium
	default:
		return entity.UrgencyLow
	}
}
