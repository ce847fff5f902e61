package usecase_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"

	"github.com/cvd-tools/cvdget/pkg/domain/model"
	"github.com/cvd-tools/cvdget/pkg/infra/storage"
	"github.com/cvd-tools/cvdget/pkg/usecase"
)

func listKeys(t *testing.T, bucket *blob.Bucket) []string {
	t.Helper()
	var keys []string
	iter := bucket.List(nil)
	for {
		obj, err := iter.Next(context.Background())
		if err == io.EOF {
			break
		}
		gt.NoError(t, err)
		keys = append(keys, obj.Key)
	}
	return keys
}

func TestUpdateUseCase_Backup_ExistingFilesCopied(t *testing.T) {
	ctx := context.Background()

	bucket, err := blob.OpenBucket(ctx, "mem://")
	gt.NoError(t, err)
	defer bucket.Close()

	mockTransport := &MockTransport{
		fetchFunc: func(ctx context.Context, url, identity string) (io.ReadCloser, error) {
			return body("fresh signatures"), nil
		},
	}

	uc := usecase.NewUpdate(mockTransport, usecase.WithBackup(storage.NewStore(bucket)))
	plan := testPlan(t)
	plan.Backup = true

	// Two of the four targets already exist
	gt.NoError(t, os.WriteFile(filepath.Join(plan.DatabaseDir, "main.cvd"), []byte("old main"), 0644))
	gt.NoError(t, os.WriteFile(filepath.Join(plan.DatabaseDir, "daily.cvd"), []byte("old daily"), 0644))

	summary, err := uc.UpdateDatabase(ctx, plan)
	gt.NoError(t, err)
	gt.Value(t, summary.Succeeded()).Equal(true)

	keys := listKeys(t, bucket)
	gt.Value(t, len(keys)).Equal(2)

	var sawMain, sawDaily bool
	for _, key := range keys {
		switch {
		case strings.HasSuffix(key, "/main.cvd"):
			sawMain = true
			data, err := bucket.ReadAll(ctx, key)
			gt.NoError(t, err)
			gt.Value(t, string(data)).Equal("old main")
		case strings.HasSuffix(key, "/daily.cvd"):
			sawDaily = true
			data, err := bucket.ReadAll(ctx, key)
			gt.NoError(t, err)
			gt.Value(t, string(data)).Equal("old daily")
		}
	}
	gt.Value(t, sawMain).Equal(true)
	gt.Value(t, sawDaily).Equal(true)

	// Disk now carries the fresh copies
	content, err := os.ReadFile(filepath.Join(plan.DatabaseDir, "main.cvd"))
	gt.NoError(t, err)
	gt.Value(t, string(content)).Equal("fresh signatures")
}

func TestUpdateUseCase_Backup_NothingToBackUp(t *testing.T) {
	ctx := context.Background()

	bucket, err := blob.OpenBucket(ctx, "mem://")
	gt.NoError(t, err)
	defer bucket.Close()

	mockTransport := &MockTransport{
		fetchFunc: func(ctx context.Context, url, identity string) (io.ReadCloser, error) {
			return body("signatures"), nil
		},
	}

	uc := usecase.NewUpdate(mockTransport, usecase.WithBackup(storage.NewStore(bucket)))
	plan := testPlan(t)
	plan.Backup = true

	summary, err := uc.UpdateDatabase(ctx, plan)
	gt.NoError(t, err)
	gt.Value(t, summary.Succeeded()).Equal(true)
	gt.Value(t, len(listKeys(t, bucket))).Equal(0)
}

func TestUpdateUseCase_Backup_RerunsKeepSeparatePrefixes(t *testing.T) {
	ctx := context.Background()

	bucket, err := blob.OpenBucket(ctx, "mem://")
	gt.NoError(t, err)
	defer bucket.Close()

	mockTransport := &MockTransport{
		fetchFunc: func(ctx context.Context, url, identity string) (io.ReadCloser, error) {
			return body("signatures"), nil
		},
	}

	uc := usecase.NewUpdate(mockTransport, usecase.WithBackup(storage.NewStore(bucket)))
	plan := testPlan(t)
	plan.Backup = true
	plan.Targets = []model.DownloadTarget{{Name: "daily.cvd", Required: true}}

	gt.NoError(t, os.WriteFile(filepath.Join(plan.DatabaseDir, "daily.cvd"), []byte("edition one"), 0644))

	_, err = uc.UpdateDatabase(ctx, plan)
	gt.NoError(t, err)
	_, err = uc.UpdateDatabase(ctx, plan)
	gt.NoError(t, err)

	// Each run backs up under its own prefix, nothing is overwritten
	keys := listKeys(t, bucket)
	gt.Value(t, len(keys)).Equal(2)
	gt.Value(t, keys[0]).NotEqual(keys[1])
}

func TestUpdateUseCase_Backup_FailureIsNotFatal(t *testing.T) {
	ctx := context.Background()

	bucket, err := blob.OpenBucket(ctx, "mem://")
	gt.NoError(t, err)
	gt.NoError(t, bucket.Close()) // Saving to a closed bucket fails

	mockTransport := &MockTransport{
		fetchFunc: func(ctx context.Context, url, identity string) (io.ReadCloser, error) {
			return body("fresh signatures"), nil
		},
	}

	uc := usecase.NewUpdate(mockTransport, usecase.WithBackup(storage.NewStore(bucket)))
	plan := testPlan(t)
	plan.Backup = true

	gt.NoError(t, os.WriteFile(filepath.Join(plan.DatabaseDir, "main.cvd"), []byte("old main"), 0644))

	summary, err := uc.UpdateDatabase(ctx, plan)
	gt.NoError(t, err)
	gt.Value(t, summary.Succeeded()).Equal(true)

	content, err := os.ReadFile(filepath.Join(plan.DatabaseDir, "main.cvd"))
	gt.NoError(t, err)
	gt.Value(t, string(content)).Equal("fresh signatures")
}

func TestUpdateUseCase_Backup_DisabledLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()

	bucket, err := blob.OpenBucket(ctx, "mem://")
	gt.NoError(t, err)
	defer bucket.Close()

	mockTransport := &MockTransport{
		fetchFunc: func(ctx context.Context, url, identity string) (io.ReadCloser, error) {
			return body("signatures"), nil
		},
	}

	uc := usecase.NewUpdate(mockTransport, usecase.WithBackup(storage.NewStore(bucket)))
	plan := testPlan(t)
	plan.Backup = false

	gt.NoError(t, os.WriteFile(filepath.Join(plan.DatabaseDir, "main.cvd"), []byte("old main"), 0644))

	_, err = uc.UpdateDatabase(ctx, plan)
	gt.NoError(t, err)
	gt.Value(t, len(listKeys(t, bucket))).Equal(0)
}
