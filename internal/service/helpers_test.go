package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/library-engine/internal/config"
	"github.com/segyhp/library-engine/internal/domain"
	customError "github.com/segyhp/library-engine/pkg/errors"
)

// 2024-06-15, mid-morning
var fixedNow = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testConfig() *config.Config {
	return &config.Config{
		Business: config.BusinessConfig{
			LoanPeriodDays:        14,
			RenewalDays:           7,
			ReservationDays:       7,
			MaxOpenLoans:          3,
			MaxActiveReservations: 2,
			DailyFine:             "2.00",
			Timezone:              "UTC",
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// requireBusinessError asserts err is a BusinessError with the given kind and code
func requireBusinessError(t *testing.T, err error, kind customError.Kind, code string) *customError.BusinessError {
	t.Helper()

	require.Error(t, err)
	var be *customError.BusinessError
	require.True(t, errors.As(err, &be), "expected BusinessError, got %T: %v", err, err)
	assert.Equal(t, kind, be.Kind)
	assert.Equal(t, code, be.Code)
	return be
}

type mockBookCache struct {
	mock.Mock
}

func (m *mockBookCache) Get(ctx context.Context, id int64) (*domain.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *mockBookCache) Set(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *mockBookCache) Invalidate(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
