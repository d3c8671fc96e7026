package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/segyhp/library-engine/internal/cache"
	"github.com/segyhp/library-engine/internal/config"
	"github.com/segyhp/library-engine/internal/repository"
	customError "github.com/segyhp/library-engine/pkg/errors"
	"github.com/segyhp/library-engine/pkg/utils"
)

// base carries what every service needs to evaluate date-driven rules
type base struct {
	store  repository.Store
	config *config.Config
	logger *slog.Logger
	now    func() time.Time
}

func newBase(store repository.Store, cfg *config.Config, logger *slog.Logger) base {
	if logger == nil {
		logger = slog.Default()
	}
	return base{store: store, config: cfg, logger: logger, now: time.Now}
}

// today is the civil date in the library's timezone
func (b *base) today() time.Time {
	return utils.Today(b.now(), b.config.GetLocation())
}

// lookupError maps a repository lookup failure: ErrNotFound becomes notFound,
// anything else a database error.
func lookupError(err error, notFound *customError.BusinessError) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return dbError(err)
}

// dbError passes business errors through and wraps everything else
func dbError(err error) error {
	if err == nil {
		return nil
	}
	var be *customError.BusinessError
	if errors.As(err, &be) {
		return err
	}
	return customError.WrapDatabaseError(err)
}

// bookInvalidator drops a cached book after its counters or status change.
// Cache failures are logged and never fail the request.
type bookInvalidator struct {
	books  cache.BookCache
	logger *slog.Logger
}

func (i bookInvalidator) invalidate(ctx context.Context, bookID int64) {
	if i.books == nil {
		return
	}
	if err := i.books.Invalidate(ctx, bookID); err != nil {
		i.logger.WarnContext(ctx, "book cache invalidation failed",
			slog.Int64("book_id", bookID),
			slog.Any("error", customError.WrapCacheError(err)),
		)
	}
}
