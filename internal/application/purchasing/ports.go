package purchasing

import (
	"context"

	"github.com/jhoicas/AlmacenPos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que la orden, sus ítems y el cambio
// de estado de las alertas contribuyentes se escriban atómicamente.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		poRepo repository.PurchaseOrderRepository,
		alertRepo repository.StockAlertRepository,
	) error) error
}
