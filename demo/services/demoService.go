package services

import (
	"context"
	"time"

	bleveRepositories "tts-guard-backend/bleve/repositories"
	"tts-guard-backend/config"
	"tts-guard-backend/db"
	"tts-guard-backend/internal/bootstrap"
	"tts-guard-backend/internal/events"
	"tts-guard-backend/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DemoService restores the fixed demonstration dataset.
type DemoService struct {
	db        *gorm.DB
	source    bootstrap.DirectorySource
	search    bleveRepositories.BleveRepositoryInterface
	cache     utils.Cache
	publisher events.Publisher
	today     func() time.Time
}

// NewDemoService accepts a nil search repository when indexing is disabled.
func NewDemoService(
	gdb *gorm.DB,
	source bootstrap.DirectorySource,
	search bleveRepositories.BleveRepositoryInterface,
	cache utils.Cache,
	publisher events.Publisher,
) *DemoService {
	if cache == nil {
		cache = utils.NopCache{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &DemoService{
		db:        gdb,
		source:    source,
		search:    search,
		cache:     cache,
		publisher: publisher,
		today:     utils.Today,
	}
}

func (s *DemoService) WithClock(today func() time.Time) *DemoService {
	s.today = today
	return s
}

// Reset wipes the domain tables and reseeds them. The search index is
// rebuilt afterwards; an indexing failure is logged but does not undo the
// reset.
func (s *DemoService) Reset(ctx context.Context, actor string) (db.Baseline, error) {
	if err := db.ResetDemoData(s.db.WithContext(ctx), s.today()); err != nil {
		return db.Baseline{}, err
	}

	if s.search != nil && s.source != nil {
		if err := bootstrap.IndexBleveData(ctx, s.source, s.search); err != nil {
			config.Logger.Error("Search reindex after demo reset failed", zap.Error(err))
		}
	}

	baseline := db.DemoBaseline()
	utils.InvalidateQuietly(ctx, s.cache, utils.DashboardResource)
	s.publisher.Publish(events.New(events.DemoReset, baseline))
	config.Logger.Info("Demo data restored", zap.String("actor", actor))
	return baseline, nil
}
