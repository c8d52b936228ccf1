package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/pulseboard-backend/internal/domain"
	"github.com/yungbote/pulseboard-backend/internal/domain/content"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
		Timezone:  "UTC",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedAccount(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, platform types.Platform, externalID string) *types.SocialAccount {
	tb.Helper()
	a := &types.SocialAccount{
		ID:                uuid.New(),
		UserID:            userID,
		Platform:          platform,
		ExternalAccountID: externalID,
		Handle:            "handle_" + externalID,
		AccessToken:       "token",
		Status:            "active",
		HealthScore:       100,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed account: %v", err)
	}
	return a
}

// SeedPost creates a post. A non-nil at makes it published at that instant.
func SeedPost(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, platform types.Platform, at *time.Time) *types.Post {
	tb.Helper()
	p := &types.Post{
		ID:          uuid.New(),
		UserID:      userID,
		Platform:    platform,
		Content:     "post",
		ContentType: content.ContentTypeText,
		Status:      content.PostStatusDraft,
	}
	if at != nil {
		t := at.UTC()
		p.Status = content.PostStatusPublished
		p.PublishedAt = &t
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed post: %v", err)
	}
	return p
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
