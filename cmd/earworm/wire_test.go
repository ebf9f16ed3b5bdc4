package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ewilliams-labs/earworm/internal/adapters/memory"
	"github.com/ewilliams-labs/earworm/internal/config"
	"github.com/ewilliams-labs/earworm/internal/core/domain"
)

func TestNewRepository(t *testing.T) {
	tests := []struct {
		name      string
		storage   config.StorageConfig
		wantClose bool
		wantErr   bool
	}{
		{name: "memory", storage: config.StorageConfig{Driver: "memory"}},
		{name: "sqlite", storage: config.StorageConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "e.db")}, wantClose: true},
		{name: "unknown", storage: config.StorageConfig{Driver: "postgres"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, closer, err := newRepository(context.Background(), tt.storage)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (closer != nil) != tt.wantClose {
				t.Fatalf("closer present = %v, want %v", closer != nil, tt.wantClose)
			}
			if closer != nil {
				defer closer()
			}
			if _, ok := repo.(*memory.Repository); ok != (tt.storage.Driver == "memory") {
				t.Fatalf("unexpected repository type %T", repo)
			}
		})
	}
}

func TestPlayOptions(t *testing.T) {
	cmd := playCmd
	t.Cleanup(func() {
		playMode, playDifficulty, playSkips = "", "", 0
		_ = cmd.Flags().Set("mode", "")
		_ = cmd.Flags().Set("difficulty", "")
		_ = cmd.Flags().Set("skips", "0")
	})

	opts, err := playOptions(cmd, "both", "easy")
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if opts.Mode != domain.ModeBoth || opts.Difficulty != domain.Easy {
		t.Fatalf("unexpected defaults: %+v", opts)
	}

	if err := cmd.Flags().Set("mode", "year"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("skips", "-1"); err != nil {
		t.Fatal(err)
	}
	opts, err = playOptions(cmd, "both", "easy")
	if err != nil {
		t.Fatalf("flags: %v", err)
	}
	if opts.Mode != domain.ModeYear || opts.Skips != nil {
		t.Fatalf("flags not applied: %+v", opts)
	}

	if err := cmd.Flags().Set("difficulty", "nightmare"); err != nil {
		t.Fatal(err)
	}
	if _, err := playOptions(cmd, "both", "easy"); err == nil {
		t.Fatal("expected unknown difficulty error")
	}
}
