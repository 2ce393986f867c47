// Package pos implementa el cliente hacia el sistema POS externo.
//
// El POS expone un API REST JSON de solo lectura con el inventario por
// integración. En desarrollo (sin POS_BASE_URL configurado) se usa
// MemoryClient, que sirve lecturas fijas cargadas en memoria.
package pos

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/jhoicas/AlmacenPos-api/internal/application/possync"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
	"github.com/jhoicas/AlmacenPos-api/pkg/config"
)

var _ possync.POSClient = (*HTTPClient)(nil)
var _ possync.POSClient = (*MemoryClient)(nil)

// ── Cliente HTTP ───────────────────────────────────────────────────────────────

// HTTPClient consulta el inventario del POS vía REST.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient construye el cliente con el timeout configurado.
func NewHTTPClient(cfg config.POSConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// inventoryItemPayload es el formato de cada ítem en la respuesta del POS.
type inventoryItemPayload struct {
	ProductCode string    `json:"product_code"`
	WarehouseID string    `json:"warehouse_id"`
	Quantity    int       `json:"quantity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type inventoryResponsePayload struct {
	Items []inventoryItemPayload `json:"items"`
}

// FetchInventory consulta GET {base}/integrations/{id}/inventory.
func (c *HTTPClient) FetchInventory(ctx context.Context, integrationID string) ([]entity.POSInventoryItem, error) {
	endpoint := fmt.Sprintf("%s/integrations/%s/inventory", c.baseURL, url.PathEscape(integrationID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("pos request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pos fetch inventory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("pos fetch inventory: status %d: %s", resp.StatusCode, string(body))
	}

	var payload inventoryResponsePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("pos decode inventory: %w", err)
	}

	items := make([]entity.POSInventoryItem, 0, len(payload.Items))
	for _, it := range payload.Items {
		items = append(items, entity.POSInventoryItem{
			ProductCode: it.ProductCode,
			WarehouseID: it.WarehouseID,
			Quantity:    it.Quantity,
			UpdatedAt:   it.UpdatedAt,
		})
	}
	return items, nil
}

// ── Cliente en memoria ─────────────────────────────────────────────────────────

// MemoryClient sirve inventario fijo por integración. Útil en desarrollo y
// como respaldo cuando no hay POS configurado.
type MemoryClient struct {
	mu    sync.RWMutex
	byInt map[string][]entity.POSInventoryItem
}

// NewMemoryClient construye un cliente vacío.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{byInt: make(map[string][]entity.POSInventoryItem)}
}

// Seed reemplaza el inventario de una integración.
func (c *MemoryClient) Seed(integrationID string, items []entity.POSInventoryItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byInt[integrationID] = append([]entity.POSInventoryItem(nil), items...)
}

// FetchInventory devuelve el inventario cargado (vacío si no hay seed).
func (c *MemoryClient) FetchInventory(_ context.Context, integrationID string) ([]entity.POSInventoryItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]entity.POSInventoryItem(nil), c.byInt[integrationID]...), nil
}
