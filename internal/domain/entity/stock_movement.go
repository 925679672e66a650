package entity

import "time"

// Direcciones de movimiento de stock.
const (
	DirectionIN  = "IN"  // entrada (recepción)
	DirectionOUT = "OUT" // salida (despacho)
)

// ValidDirection verifica que la dirección sea IN u OUT.
func ValidDirection(d string) bool {
	return d == DirectionIN || d == DirectionOUT
}

// StockMovement representa un movimiento de stock ya confirmado.
// Es inmutable: no existe operación de actualización ni borrado; una
// corrección se modela como un movimiento compensatorio nuevo.
// ID y OccurredAt los asigna el almacén en el commit, nunca antes.
type StockMovement struct {
	ID         int64
	ProductID  int64
	Direction  string // IN u OUT
	Quantity   int64  // estrictamente > 0
	OccurredAt time.Time
	Reference  string // texto libre opcional (factura, orden, etc.)
	Notes      string

	// Nombre del producto resuelto por JOIN en listados.
	ProductName string
}

// SignedQuantity devuelve el efecto del movimiento sobre el stock (+IN, -OUT).
func (m *StockMovement) SignedQuantity() int64 {
	if m.Direction == DirectionOUT {
		return -m.Quantity
	}
	return m.Quantity
}
