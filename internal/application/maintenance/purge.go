// Package maintenance holds store housekeeping jobs.
package maintenance

import (
	"context"

	"github.com/turtacn/Prologos-Jurimetrics/internal/domain/judiciary"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
)

// PurgeReport is the outcome of a duplicate purge.
type PurgeReport struct {
	Before  int64 `json:"before"`
	After   int64 `json:"after"`
	Removed int64 `json:"removed"`
}

type Service struct {
	uow    judiciary.UnitOfWorkFactory
	logger logging.Logger
}

func NewService(uow judiciary.UnitOfWorkFactory, logger logging.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// PurgeDuplicates keeps the newest row of every case number. Rows like these
// only exist in stores filled before the unique constraint was added.
func (s *Service) PurgeDuplicates(ctx context.Context) (*PurgeReport, error) {
	uow, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = uow.Rollback() }()

	var rep PurgeReport
	if rep.Before, err = uow.Cases().Count(ctx); err != nil {
		return nil, err
	}
	if rep.Removed, err = uow.Cases().PurgeDuplicates(ctx); err != nil {
		return nil, err
	}
	if rep.After, err = uow.Cases().Count(ctx); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("duplicate purge finished",
		logging.Int64("before", rep.Before),
		logging.Int64("after", rep.After),
		logging.Int64("removed", rep.Removed))
	return &rep, nil
}

//Personal.AI order the ending
