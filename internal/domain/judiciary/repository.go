package judiciary

import (
	"context"
)

// JudicialUnitRepository persists courts.
type JudicialUnitRepository interface {
	// FindByName returns a NotFound AppError when no unit has that name.
	FindByName(ctx context.Context, name string) (*JudicialUnit, error)
	// Create inserts u and sets u.ID. A concurrent insert of the same name
	// yields a STORE_001 conflict and leaves u.ID at zero.
	Create(ctx context.Context, u *JudicialUnit) error
	Count(ctx context.Context) (int64, error)
}

// AdjudicatorRepository persists adjudicating bodies.
type AdjudicatorRepository interface {
	FindByName(ctx context.Context, name string) (*Adjudicator, error)
	GetByID(ctx context.Context, id int64) (*Adjudicator, error)
	// Create behaves like JudicialUnitRepository.Create.
	Create(ctx context.Context, a *Adjudicator) error
	List(ctx context.Context, skip, limit int) ([]*Adjudicator, error)
	Count(ctx context.Context) (int64, error)
}

// CaseRepository persists case records.
type CaseRepository interface {
	FindByNumber(ctx context.Context, number string) (*CaseRecord, error)
	Create(ctx context.Context, c *CaseRecord) error
	UpdateText(ctx context.Context, id int64, text string) error
	UpdateLabel(ctx context.Context, id int64, label string) error

	// ListAll returns every record ordered by id.
	ListAll(ctx context.Context) ([]*CaseRecord, error)
	// ListByIDs returns the records with the given ids ordered by id.
	ListByIDs(ctx context.Context, ids []int64) ([]*CaseRecord, error)
	// SearchByTopic is a case-sensitive substring match on the topic. An
	// empty fragment matches every record.
	SearchByTopic(ctx context.Context, fragment string, limit int) ([]*CaseRecord, error)
	// ListByAdjudicator returns the latest records (highest id first).
	ListByAdjudicator(ctx context.Context, adjudicatorID int64, limit int) ([]*CaseRecord, error)
	// TopicDistribution counts records per topic, most frequent first with
	// ties ordered by topic. limit <= 0 returns every topic.
	TopicDistribution(ctx context.Context, adjudicatorID int64, limit int) ([]TopicCount, error)
	CountByAdjudicator(ctx context.Context, adjudicatorID int64) (int64, error)
	Count(ctx context.Context) (int64, error)

	// PurgeDuplicates keeps the highest id per case number and deletes the
	// rest. It returns the number of rows removed.
	PurgeDuplicates(ctx context.Context) (int64, error)
}

// Repositories groups the three repositories over one executor.
type Repositories interface {
	Units() JudicialUnitRepository
	Adjudicators() AdjudicatorRepository
	Cases() CaseRepository
}

// UnitOfWork is one transaction. Rollback after Commit is a no-op, so
// callers may defer Rollback unconditionally.
type UnitOfWork interface {
	Repositories
	Commit() error
	Rollback() error
}

// UnitOfWorkFactory opens units of work.
type UnitOfWorkFactory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

//Personal.AI order the ending
