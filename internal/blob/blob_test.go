package blob

import (
	"context"
	"testing"
)

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()
	fsStore, err := Open(ctx, Config{FSRoot: t.TempDir()})
	if err != nil {
		t.Fatalf("open fs: %v", err)
	}
	if fsStore.Driver() != DriverFilesystem {
		t.Fatalf("expected fs default, got %s", fsStore.Driver())
	}
	mem, err := Open(ctx, Config{Driver: DriverMemory})
	if err != nil || mem.Driver() != DriverMemory {
		t.Fatalf("open memory: %v", err)
	}
	if _, err := Open(ctx, Config{Driver: DriverS3}); err == nil {
		t.Fatalf("expected s3 without bucket to fail")
	}
	if _, err := Open(ctx, Config{Driver: "ftp"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("IMMUNIZETRACK_BLOB_DRIVER", "memory")
	t.Setenv("IMMUNIZETRACK_BLOB_FS_ROOT", "/tmp/x")
	t.Setenv("IMMUNIZETRACK_BLOB_S3_BUCKET", "b")
	cfg := ConfigFromEnv()
	if cfg.Driver != DriverMemory || cfg.FSRoot != "/tmp/x" || cfg.S3.Bucket != "b" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}
