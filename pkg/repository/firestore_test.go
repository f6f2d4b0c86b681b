package repository_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/repository"
	"github.com/m-mizutani/gt"
)

func setupFirestore(t *testing.T) *repository.Firestore {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	if projectID == "" || databaseID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID and TEST_FIRESTORE_DATABASE_ID must be set to run Firestore tests")
	}

	repo, err := repository.New(context.Background(), projectID, databaseID)
	gt.NoError(t, err)
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Logf("failed to close firestore client: %v", err)
		}
	})

	return repo
}

func TestFirestorePutAndGet(t *testing.T) {
	repo := setupFirestore(t)
	ctx := context.Background()

	record := newRecord("fs-user", model.TierLong, "integration test memory")
	record.Importance = 0.4
	record.Source = "test"

	gt.NoError(t, repo.PutMemory(ctx, record))

	got := gt.R1(repo.GetMemory(ctx, record.ID, "fs-user")).NoError(t)
	gt.Equal(t, got.ID, record.ID)
	gt.Equal(t, got.Content, record.Content)
	gt.Equal(t, got.Importance, record.Importance)
	gt.Equal(t, got.Source, "test")
}

func TestFirestoreGetNotFound(t *testing.T) {
	repo := setupFirestore(t)
	ctx := context.Background()

	_, err := repo.GetMemory(ctx, model.MemoryID("fs-user:long:nonexistent"), "fs-user")
	gt.True(t, errors.Is(err, model.ErrNotFound))
}

func TestFirestoreUpdateAndDelete(t *testing.T) {
	repo := setupFirestore(t)
	ctx := context.Background()

	record := newRecord("fs-user", model.TierShort, "to be updated")
	gt.NoError(t, repo.PutMemory(ctx, record))

	updatedAt := time.Now()
	gt.NoError(t, repo.UpdateMemory(ctx, record.ID, "fs-user", "updated content", nil, "", updatedAt))

	got := gt.R1(repo.GetMemory(ctx, record.ID, "fs-user")).NoError(t)
	gt.Equal(t, got.Content, "updated content")
	gt.NotNil(t, got.UpdatedAt)

	removed := gt.R1(repo.DeleteMemory(ctx, record.ID, "fs-user")).NoError(t)
	gt.True(t, removed)

	removed = gt.R1(repo.DeleteMemory(ctx, record.ID, "fs-user")).NoError(t)
	gt.False(t, removed)
}

func TestFirestoreClearScope(t *testing.T) {
	repo := setupFirestore(t)
	ctx := context.Background()

	userID := "fs-clear-" + time.Now().Format("20060102150405")
	for i := 0; i < 3; i++ {
		record := newRecord(userID, model.TierShort, "short memory")
		gt.NoError(t, repo.PutMemory(ctx, record))
	}
	gt.NoError(t, repo.PutMemory(ctx, newRecord(userID, model.TierLong, "long memory")))

	short := model.TierShort
	removed := gt.R1(repo.ClearMemories(ctx, userID, &short)).NoError(t)
	gt.Equal(t, removed, 3)

	remaining := gt.R1(repo.CountMemories(ctx, userID, nil)).NoError(t)
	gt.Equal(t, remaining, 1)

	// Cleanup the long tier as well
	_, err := repo.ClearMemories(ctx, userID, nil)
	gt.NoError(t, err)
}
