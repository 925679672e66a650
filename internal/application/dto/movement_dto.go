package dto

import (
	"time"

	"github.com/smartstock/smartstock-api/internal/domain/entity"
)

// ApplyMovementRequest body para POST /api/inventory/movements.
type ApplyMovementRequest struct {
	ProductID int64  `json:"product_id"`
	Direction string `json:"direction"` // IN u OUT
	Quantity  int64  `json:"quantity"`
	Reference string `json:"reference,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// MovementDTO representa un movimiento confirmado en respuestas HTTP.
type MovementDTO struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	Direction   string    `json:"direction"`
	Quantity    int64     `json:"quantity"`
	OccurredAt  time.Time `json:"occurred_at"`
	Reference   string    `json:"reference,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

// ApplyMovementResponse respuesta de un movimiento aplicado: el movimiento
// confirmado más el stock resultante, para refrescar vistas sin releer.
type ApplyMovementResponse struct {
	Movement MovementDTO `json:"movement"`
	NewStock int64       `json:"new_stock"`
	LowStock bool        `json:"low_stock"`
	Needed   int64       `json:"needed"`
}

// MovementFromEntity convierte la entidad al DTO de respuesta.
func MovementFromEntity(m *entity.StockMovement) MovementDTO {
	return MovementDTO{
		ID:          m.ID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Direction:   m.Direction,
		Quantity:    m.Quantity,
		OccurredAt:  m.OccurredAt,
		Reference:   m.Reference,
		Notes:       m.Notes,
	}
}
