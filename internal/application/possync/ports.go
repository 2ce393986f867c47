package possync

import (
	"context"

	"github.com/jhoicas/AlmacenPos-api/internal/application/dto"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
)

// POSClient es el puerto hacia el sistema POS externo. La implementación vive
// en infrastructure/pos; las llamadas pasan siempre por el ejecutor de
// resiliencia (reintentos + circuit breaker).
type POSClient interface {
	// FetchInventory devuelve las lecturas de stock del POS para la integración.
	FetchInventory(ctx context.Context, integrationID string) ([]entity.POSInventoryItem, error)
}

// OrderCreator crea órdenes de compra a partir de alertas. Lo implementa el
// caso de uso de compras; el puerto evita acoplar los dos servicios.
type OrderCreator interface {
	CreateAutomaticPurchaseOrders(ctx context.Context, userID string, alerts []*entity.StockAlert) (*dto.ProcessAlertsResponse, error)
}
