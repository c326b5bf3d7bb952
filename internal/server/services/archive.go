package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/dbx"
	"github.com/dmitrijs2005/gophaccount/internal/logging"
	"github.com/dmitrijs2005/gophaccount/internal/server/metrics"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// RecordExporter receives a copy of every archived record after commit.
type RecordExporter interface {
	Export(ctx context.Context, rec *models.UserRecord) error
}

// ArchiveService soft-deletes accounts: the user and everything it owns are
// copied to the deleted_* tables and removed from the live ones in a single
// transaction.
type ArchiveService struct {
	db          dbx.Transactor
	repomanager repomanager.RepositoryManager
	exporter    RecordExporter
	now         func() time.Time
	log         logging.Logger
	metrics     *metrics.Metrics
}

// NewArchiveService creates the service. exporter may be nil.
func NewArchiveService(db dbx.Transactor, m repomanager.RepositoryManager, exporter RecordExporter,
	log logging.Logger, mx *metrics.Metrics) *ArchiveService {
	return &ArchiveService{
		db:          db,
		repomanager: m,
		exporter:    exporter,
		now:         time.Now,
		log:         log.With("module", "archive"),
		metrics:     mx,
	}
}

// ArchiveUser archives userID and returns what was archived. Unknown users
// yield common.ErrorNotFound. Export failures are logged and do not undo
// the archive.
func (s *ArchiveService) ArchiveUser(ctx context.Context, userID uuid.UUID) (*models.UserRecord, error) {
	var rec *models.UserRecord

	err := inTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		rec, err = s.load(ctx, tx, userID)
		if err != nil {
			return err
		}
		rec.ArchivedAt = s.now().UTC().Truncate(time.Microsecond)

		if err := s.copyToArchive(ctx, tx, rec); err != nil {
			return err
		}
		return s.deleteLive(ctx, tx, userID)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.metrics.Observe(metrics.OpArchive, metrics.ResultRejected)
		} else {
			s.metrics.Observe(metrics.OpArchive, metrics.ResultError)
		}
		return nil, err
	}

	s.metrics.Observe(metrics.OpArchive, metrics.ResultOK)
	s.log.Info(ctx, "user archived", "user_id", userID)

	if s.exporter != nil {
		if err := s.exporter.Export(ctx, rec); err != nil {
			s.metrics.Observe(metrics.OpExport, metrics.ResultError)
			s.log.Error(ctx, "archive export failed", "user_id", userID, "error", err)
		} else {
			s.metrics.Observe(metrics.OpExport, metrics.ResultOK)
		}
	}

	return rec, nil
}

// GetArchived reads an archived account back.
func (s *ArchiveService) GetArchived(ctx context.Context, userID uuid.UUID) (*models.UserRecord, error) {
	return s.repomanager.Archive(s.db).Get(ctx, userID)
}

// load locks the user row first, so no dependent row can be added or
// changed between the reads here and deleteLive.
func (s *ArchiveService) load(ctx context.Context, tx dbx.DBTX, userID uuid.UUID) (*models.UserRecord, error) {
	user, err := s.repomanager.Users(tx).LockByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec := &models.UserRecord{User: *user}

	addr, err := s.repomanager.Addresses(tx).Get(ctx, userID)
	switch {
	case err == nil:
		rec.Address = addr
	case !errors.Is(err, common.ErrorNotFound):
		return nil, err
	}

	prof, err := s.repomanager.Profiles(tx).Get(ctx, userID)
	switch {
	case err == nil:
		rec.Profile = prof
	case !errors.Is(err, common.ErrorNotFound):
		return nil, err
	}

	details, err := s.repomanager.Details(tx).List(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec.Details = *details

	return rec, nil
}

func (s *ArchiveService) copyToArchive(ctx context.Context, tx dbx.DBTX, rec *models.UserRecord) error {
	repo := s.repomanager.Archive(tx)

	if err := repo.InsertUser(ctx, &rec.User, rec.ArchivedAt); err != nil {
		return err
	}
	if rec.Address != nil {
		if err := repo.InsertAddress(ctx, rec.Address); err != nil {
			return err
		}
	}
	if rec.Profile != nil {
		if err := repo.InsertProfile(ctx, rec.Profile); err != nil {
			return err
		}
	}
	for i := range rec.Details.SocialProfiles {
		if err := repo.InsertSocialProfile(ctx, &rec.Details.SocialProfiles[i]); err != nil {
			return err
		}
	}
	for i := range rec.Details.Education {
		if err := repo.InsertEducation(ctx, &rec.Details.Education[i]); err != nil {
			return err
		}
	}
	for i := range rec.Details.WorkExperience {
		if err := repo.InsertWorkExperience(ctx, &rec.Details.WorkExperience[i]); err != nil {
			return err
		}
	}
	for i := range rec.Details.Skills {
		if err := repo.InsertSkill(ctx, &rec.Details.Skills[i]); err != nil {
			return err
		}
	}
	return nil
}

// deleteLive removes dependents before the user row.
func (s *ArchiveService) deleteLive(ctx context.Context, tx dbx.DBTX, userID uuid.UUID) error {
	if err := s.repomanager.Details(tx).DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.repomanager.Profiles(tx).Delete(ctx, userID); err != nil {
		return err
	}
	if err := s.repomanager.Addresses(tx).Delete(ctx, userID); err != nil {
		return err
	}
	return s.repomanager.Users(tx).Delete(ctx, userID)
}
