package repository

// Stores agrupa los repositorios atados a una misma transacción.
type Stores struct {
	Stock        StockRepository
	Movements    MovementRepository
	Reservations ReservationRepository
	Orders       OrderRepository
	Transfers    TransferRepository
	Extras       ExtraRepository
}
