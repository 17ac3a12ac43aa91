package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hospitality-ops/internal/application/inventory"
	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
)

// interleavedReservations ejecuta afterRead una vez, justo después de leer las reservas abiertas,
// como si otra transacción confirmara en ese momento.
type interleavedReservations struct {
	repository.ReservationRepository
	afterRead func()
}

func (r *interleavedReservations) ListOpenByOrder(ctx context.Context, orderID string) ([]*entity.Reservation, error) {
	list, err := r.ReservationRepository.ListOpenByOrder(ctx, orderID)
	if r.afterRead != nil {
		hook := r.afterRead
		r.afterRead = nil
		hook()
	}
	return list, err
}

func TestReserve_RetieneSinSobrevender(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.restock(t, "cerveza", "5")

	res, err := f.reservations.Reserve(ctx, inventory.ReserveInput{OrderID: "o-1", ItemID: "cerveza", Scope: bar, Quantity: qty("3")})
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationReserved, res.Status)
	assert.True(t, f.entry(t, "cerveza").Reserved.Equal(qty("3")))

	_, err = f.reservations.Reserve(ctx, inventory.ReserveInput{OrderID: "o-2", ItemID: "cerveza", Scope: bar, Quantity: qty("3")})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	list, err := f.reservations.List(ctx, "o-2")
	require.NoError(t, err)
	assert.Empty(t, list, "una reserva rechazada no queda registrada")
}

func TestReserve_EntradaInvalida(t *testing.T) {
	f := newFixture(t)
	_, err := f.reservations.Reserve(context.Background(), inventory.ReserveInput{ItemID: "cerveza", Scope: bar, Quantity: qty("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConsume_ParcialYLuegoTotal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.restock(t, "cerveza", "5")
	_, err := f.reservations.Reserve(ctx, inventory.ReserveInput{OrderID: "o-1", ItemID: "cerveza", Scope: bar, Quantity: qty("3")})
	require.NoError(t, err)

	two := qty("2")
	consumed, err := f.reservations.Consume(ctx, "o-1", "cerveza", &two)
	require.NoError(t, err)
	assert.True(t, consumed.Equal(two))
	assert.True(t, f.entry(t, "cerveza").Reserved.Equal(qty("1")))

	consumed, err = f.reservations.Consume(ctx, "o-1", "cerveza", nil)
	require.NoError(t, err)
	assert.True(t, consumed.Equal(qty("1")))

	list, err := f.reservations.List(ctx, "o-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entity.ReservationConsumed, list[0].Status)
	assert.True(t, f.entry(t, "cerveza").Reserved.IsZero())
	assert.True(t, f.entry(t, "cerveza").Quantity.Equal(qty("5")), "consumir no mueve quantity")
}

func TestRelease_DevuelveAlDisponible(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.restock(t, "cerveza", "5")
	f.restock(t, "vino", "5")
	for _, item := range []string{"cerveza", "vino"} {
		_, err := f.reservations.Reserve(ctx, inventory.ReserveInput{OrderID: "o-1", ItemID: item, Scope: bar, Quantity: qty("2")})
		require.NoError(t, err)
	}

	require.NoError(t, f.reservations.Release(ctx, "o-1", "cerveza"))
	assert.True(t, f.entry(t, "cerveza").Reserved.IsZero())
	assert.True(t, f.entry(t, "vino").Reserved.Equal(qty("2")), "solo se libera el ítem indicado")

	require.NoError(t, f.reservations.Release(ctx, "o-1", ""))
	assert.True(t, f.entry(t, "vino").Reserved.IsZero())

	list, err := f.reservations.List(ctx, "o-1")
	require.NoError(t, err)
	for _, r := range list {
		assert.Equal(t, entity.ReservationReleased, r.Status)
	}
}

func TestRelease_SinOrdenEsInvalido(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.reservations.Release(context.Background(), " ", ""), domain.ErrInvalidInput)
}

func TestConsumeInTx_ReservaLiberadaEnElMedioNoDescuentaDosVeces(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.restock(t, "cerveza", "10")
	_, err := f.reservations.Reserve(ctx, inventory.ReserveInput{OrderID: "o-1", ItemID: "cerveza", Scope: bar, Quantity: qty("3")})
	require.NoError(t, err)
	_, err = f.reservations.Reserve(ctx, inventory.ReserveInput{OrderID: "o-2", ItemID: "cerveza", Scope: bar, Quantity: qty("2")})
	require.NoError(t, err)

	stores := f.store.Stores()
	stores.Reservations = &interleavedReservations{
		ReservationRepository: stores.Reservations,
		afterRead: func() {
			require.NoError(t, f.reservations.Release(ctx, "o-1", "cerveza"))
		},
	}

	_, err = inventory.ConsumeInTx(ctx, stores, inventory.ReservationFilter{OrderID: "o-1", ItemID: "cerveza"}, nil, time.Now())
	require.ErrorIs(t, err, domain.ErrTransient)

	assert.True(t, f.entry(t, "cerveza").Reserved.Equal(qty("2")), "la retención de o-2 sigue intacta")
	list, err := f.reservations.List(ctx, "o-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entity.ReservationReleased, list[0].Status, "gana la liberación que confirmó primero")
}

func TestReleaseInTx_ReservaConsumidaEnElMedioEsTransitorio(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.restock(t, "cerveza", "10")
	_, err := f.reservations.Reserve(ctx, inventory.ReserveInput{OrderID: "o-1", ItemID: "cerveza", Scope: bar, Quantity: qty("3")})
	require.NoError(t, err)
	_, err = f.reservations.Reserve(ctx, inventory.ReserveInput{OrderID: "o-2", ItemID: "cerveza", Scope: bar, Quantity: qty("4")})
	require.NoError(t, err)

	stores := f.store.Stores()
	stores.Reservations = &interleavedReservations{
		ReservationRepository: stores.Reservations,
		afterRead: func() {
			_, err := f.reservations.Consume(ctx, "o-1", "cerveza", nil)
			require.NoError(t, err)
		},
	}

	err = inventory.ReleaseInTx(ctx, stores, inventory.ReservationFilter{OrderID: "o-1"}, time.Now())
	require.ErrorIs(t, err, domain.ErrTransient)
	assert.True(t, f.entry(t, "cerveza").Reserved.Equal(qty("4")))
}
