package receiving

import (
	"context"

	"github.com/jhoicas/AlmacenPos-api/internal/domain/repository"
)

// TxRunner corre fn dentro de una transacción: números de serie, movimientos y
// encabezado de recepción se escriben todos o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		snRepo repository.SerialNumberRepository,
		movRepo repository.StockMovementRepository,
		receiveRepo repository.ReceiveLogRepository,
	) error) error
}
