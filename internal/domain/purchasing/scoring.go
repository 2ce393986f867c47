// Package purchasing contiene la aritmética de compras automáticas:
// scoring de proveedores y cantidad de reorden (servicios de dominio puros).
package purchasing

import (
	"math"

	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
)

// SelectionWeights pondera cada componente del score de un proveedor.
// Value object inmutable; se pasa explícito, nunca como estado compartido.
type SelectionWeights struct {
	Cost        float64
	Quality     float64
	Reliability float64
	LeadTime    float64
	// PreferredBonus se suma plano si el mapping tiene is_preferred.
	PreferredBonus float64
}

// DefaultWeights devuelve los pesos por defecto de selección de proveedor.
func DefaultWeights() SelectionWeights {
	return SelectionWeights{
		Cost:           0.4,
		Quality:        0.25,
		Reliability:    0.25,
		LeadTime:       0.1,
		PreferredBonus: 0.2,
	}
}

// Score calcula el puntaje de un mapping proveedor-producto:
//
//	cost        = (6 - costRating) / 5       (rating 1 = más barato)
//	quality     = qualityRating / 5
//	reliability = deliveryRating / 5
//	leadTime    = (30 - leadTimeDays) / 30
//
// suma ponderada + bonus si es proveedor preferido.
func Score(m entity.SupplierProductMapping, w SelectionWeights) float64 {
	score := w.Cost*(6-m.CostRating)/5 +
		w.Quality*m.QualityRating/5 +
		w.Reliability*m.DeliveryRating/5 +
		w.LeadTime*(30-float64(m.LeadTimeDays))/30
	if m.IsPreferred {
		score += w.PreferredBonus
	}
	return score
}

// Best devuelve el mapping con mayor puntaje, o nil si la lista está vacía.
// Empate: gana el de menor Priority (orden explícito del catálogo).
func Best(mappings []entity.SupplierProductMapping, w SelectionWeights) *entity.SupplierProductMapping {
	var best *entity.SupplierProductMapping
	var bestScore float64
	for i := range mappings {
		m := &mappings[i]
		if !m.IsActive {
			continue
		}
		s := Score(*m, w)
		if best == nil || s > bestScore || (s == bestScore && m.Priority < best.Priority) {
			best = m
			bestScore = s
		}
	}
	return best
}

// ReorderParams son las entradas del cálculo de cantidad de reorden.
type ReorderParams struct {
	CurrentStock      int
	AverageDailySales float64
	LeadTimeDays      int
	SafetyStockDays   int
	SeasonalityFactor float64 // 1.0 = sin estacionalidad
}

// ReviewPeriodDays es el horizonte de revisión incluido en el objetivo de stock.
const ReviewPeriodDays = 30

// ReorderQuantity calcula la cantidad sugerida de pedido:
//
//	demandaLeadTime = ventaDiaria * leadTime * estacionalidad
//	stockSeguridad  = ventaDiaria * díasSeguridad
//	demandaRevisión = ventaDiaria * 30 * estacionalidad
//	cantidad        = ceil(demandaLeadTime + stockSeguridad + demandaRevisión - stockActual)
//
// con piso en max(1, ceil(ventaDiaria * 7)): nunca menos de una semana de demanda.
func ReorderQuantity(p ReorderParams) int {
	seasonality := p.SeasonalityFactor
	if seasonality <= 0 {
		seasonality = 1
	}
	leadDemand := p.AverageDailySales * float64(p.LeadTimeDays) * seasonality
	safetyStock := p.AverageDailySales * float64(p.SafetyStockDays)
	reviewDemand := p.AverageDailySales * ReviewPeriodDays * seasonality

	qty := int(math.Ceil(leadDemand + safetyStock + reviewDemand - float64(p.CurrentStock)))

	weekly := int(math.Ceil(p.AverageDailySales * 7))
	if weekly < 1 {
		weekly = 1
	}
	if qty < weekly {
		qty = weekly
	}
	return qty
}
