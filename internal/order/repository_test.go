package order

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestAddAssignsServerTimestamp(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	committed := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(pgxmock.AnyArg(), "628123456789", "Budi", "Nasi Goreng", "QRIS", StatusPending).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(committed))

	repo := NewRepository(mock)
	o, err := repo.Add(context.Background(), Draft{
		CustomerID:    "628123456789",
		CustomerName:  "Budi",
		FoodItem:      "Nasi Goreng",
		PaymentMethod: "QRIS",
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, o.Status)
	require.Equal(t, committed, o.CreatedAt)
	require.NotEmpty(t, o.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddWrapsInsertFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	repo := NewRepository(mock)
	_, err = repo.Add(context.Background(), Draft{CustomerID: "628"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "order: insert failed")
}

func TestLatestByCustomer(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("628123456789").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "customer_id", "customer_name", "food_item", "payment_method", "status", "created_at",
		}).AddRow("ord-2", "628123456789", "Budi", "Sate Ayam", "cash", StatusPreparing, created))

	repo := NewRepository(mock)
	o, err := repo.LatestByCustomer(context.Background(), "628123456789")
	require.NoError(t, err)
	require.Equal(t, "ord-2", o.ID)
	require.Equal(t, StatusPreparing, o.Status)
}

func TestLatestByCustomerNoRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("628000000000").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "customer_id", "customer_name", "food_item", "payment_method", "status", "created_at",
		}))

	repo := NewRepository(mock)
	_, err = repo.LatestByCustomer(context.Background(), "628000000000")
	require.ErrorIs(t, err, ErrNoOrders)
}

func TestScanCreatedDescVisitsAllRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	base := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM orders").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "customer_id", "customer_name", "food_item", "payment_method", "status", "created_at",
		}).
			AddRow("ord-3", "a", "Ani", "Bakso", "cash", StatusPending, base.Add(2*time.Minute)).
			AddRow("ord-2", "b", "Budi", "Mie Ayam", "QRIS", StatusReady, base.Add(time.Minute)).
			AddRow("ord-1", "a", "Ani", "Es Teh", "cash", StatusDelivered, base))

	repo := NewRepository(mock)
	var seen []string
	err = repo.ScanCreatedDesc(context.Background(), func(o Order) error {
		seen = append(seen, o.ID)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"ord-3", "ord-2", "ord-1"}, seen)
}

func TestScanCreatedDescStopsOnCallbackError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	base := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM orders").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "customer_id", "customer_name", "food_item", "payment_method", "status", "created_at",
		}).
			AddRow("ord-2", "a", "Ani", "Bakso", "cash", StatusPending, base).
			AddRow("ord-1", "a", "Ani", "Es Teh", "cash", StatusPending, base.Add(-time.Minute)))

	repo := NewRepository(mock)
	stop := errors.New("stop")
	calls := 0
	err = repo.ScanCreatedDesc(context.Background(), func(Order) error {
		calls++
		return stop
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 1, calls)
}
