package services

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/datatypes"

	"github.com/webclarity/clarity-backend/internal/logger"
	"github.com/webclarity/clarity-backend/internal/repos"
	"github.com/webclarity/clarity-backend/internal/types"
)

// UsageService is the fire-and-forget analytics sink. Record never blocks
// the caller and never propagates a failure.
type UsageService interface {
	Record(userID uuid.UUID, feature, domain, url string, data map[string]any)
	Close()
}

type usageService struct {
	log       *logger.Logger
	eventRepo repos.UsageEventRepo
	rdb       *goredis.Client
	channel   string
}

// NewUsageService wires the event store and, when REDIS_ADDR is set, a
// redis publisher for live consumers. Redis being down degrades to
// DB-only recording.
func NewUsageService(baseLog *logger.Logger, eventRepo repos.UsageEventRepo) UsageService {
	log := baseLog.With("service", "UsageService")

	var rdb *goredis.Client
	channel := strings.TrimSpace(os.Getenv("REDIS_USAGE_CHANNEL"))
	if channel == "" {
		channel = "usage"
	}
	if addr := strings.TrimSpace(os.Getenv("REDIS_ADDR")); addr != "" {
		rdb = goredis.NewClient(&goredis.Options{
			Addr:        addr,
			DialTimeout: 5 * time.Second,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("Redis unavailable, usage events will only be stored", "error", err)
			_ = rdb.Close()
			rdb = nil
		}
	}

	return &usageService{
		log:       log,
		eventRepo: eventRepo,
		rdb:       rdb,
		channel:   channel,
	}
}

func (us *usageService) Record(userID uuid.UUID, feature, domain, url string, data map[string]any) {
	if userID == uuid.Nil || feature == "" {
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		us.log.Warn("Usage event payload not serializable", "feature", feature, "error", err)
		payload = []byte("{}")
	}
	event := &types.UsageEvent{
		ID:        uuid.New(),
		UserID:    userID,
		Feature:   feature,
		Domain:    domain,
		URL:       url,
		Data:      datatypes.JSON(payload),
		CreatedAt: time.Now().UTC(),
	}

	// Detached from the request: analytics failures never block or fail
	// the operation that emitted the event.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := us.eventRepo.Create(ctx, nil, []*types.UsageEvent{event}); err != nil {
			us.log.Warn("Usage event insert failed", "feature", feature, "error", err)
		}
		if us.rdb != nil {
			raw, _ := json.Marshal(event)
			if err := us.rdb.Publish(ctx, us.channel, raw).Err(); err != nil {
				us.log.Warn("Usage event publish failed", "feature", feature, "error", err)
			}
		}
	}()
}

func (us *usageService) Close() {
	if us.rdb != nil {
		_ = us.rdb.Close()
	}
}
