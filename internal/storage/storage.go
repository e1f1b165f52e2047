package storage

import (
	"context"

	"devdialogue/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Storage is the persisted store the real-time core writes through before
// fanning a message out. It is the system of record for history; live
// delivery is best-effort on top of it.
type Storage interface {
	SaveUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	SavePrivateMessage(ctx context.Context, msg *models.PrivateMessage) error
	GetPrivateHistory(ctx context.Context, userID, peerID string) ([]models.PrivateMessage, error)
	MarkPrivateMessageRead(ctx context.Context, messageID uint) error

	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroupByID(ctx context.Context, groupID string) (*models.Group, error)
	AddGroupMember(ctx context.Context, groupID, userID string) error
	RemoveGroupMember(ctx context.Context, groupID, userID string) error
	IsGroupMember(ctx context.Context, groupID, userID string) (bool, error)
	GetGroupsForUser(ctx context.Context, userID string) ([]models.Group, error)
	SaveGroupMessage(ctx context.Context, msg *models.GroupMessage) error
	GetGroupHistory(ctx context.Context, groupID string) ([]models.GroupMessage, error)

	PublishEvent(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) *redis.PubSub
	SetOnline(ctx context.Context, userID string) error
	IsOnline(ctx context.Context, userID string) (bool, error)
}

// Service is the production Storage backed by PostgreSQL (history, groups,
// users) and Redis (pub/sub relay, online markers).
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}
