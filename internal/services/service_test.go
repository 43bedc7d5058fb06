package services

import (
	"context"
	"strings"
	"testing"

	"capoff/internal/db"
	"capoff/internal/identity"
	"capoff/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a per-test in-memory database and runs the production
// migrations against it. cache=shared keeps the schema visible across the
// pooled connections gorm opens.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return gdb
}

func testIdentity(id, email, name string) *identity.Identity {
	return &identity.Identity{ID: id, Email: email, Username: name}
}

// seedAttempt publishes an attempt through the real service path so the
// owner's profile row exists too.
func seedAttempt(t *testing.T, gdb *gorm.DB, owner *identity.Identity) *models.Attempt {
	t.Helper()

	users := NewUserService(gdb)
	attempts := NewAttemptService(gdb, users, nil, nil)
	attempt, err := attempts.Create(context.Background(), owner, CreateAttemptInput{
		VideoRef:      "playback_" + owner.ID,
		ToolUsed:      "lighter",
		BeverageBrand: "Club Cola",
	})
	if err != nil {
		t.Fatalf("seed attempt: %v", err)
	}
	return attempt
}
