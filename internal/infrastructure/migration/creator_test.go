package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/aurum/jewelstore/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add gift cards", "add_gift_cards"},
		{"Add-Gift-Cards", "add_gift_cards"},
		{"ADD_GIFT_CARDS", "add_gift_cards"},
		{"add__gift__cards", "add_gift_cards"},
		{"Add Rates 22k", "add_rates_22k"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "add gift cards", "Gift card balances")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_gift_cards.up.sql"), first.UpPath)
	assert.Equal(t, filepath.Join(dir, "000001_add_gift_cards.down.sql"), first.DownPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: add_gift_cards")
	assert.Contains(t, string(up), "-- Description: Gift card balances")

	second, err := CreateMigration(dir, "Index Bills By Phone", "")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)

	_, err = CreateMigration(dir, "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_b.up.sql":   {},
		"000002_b.down.sql": {},
		"000001_a.up.sql":   {},
		"000001_a.down.sql": {},
		"000003_c.down.sql": {},
		"README.md":         {},
	}

	list, err := ListMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, uint(1), list[0].Version)
	assert.Equal(t, "a", list[0].Name)
	assert.Equal(t, "000001_a.down.sql", list[0].DownPath)
	assert.Equal(t, uint(2), list[1].Version)

	latest, err := LatestVersion(fsys)
	require.NoError(t, err)
	assert.Equal(t, uint(2), latest)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	list, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, list)

	for i, mf := range list {
		assert.Equal(t, uint(i+1), mf.Version, "versions are contiguous")
		assert.NotEmpty(t, mf.DownPath, "version %d has a down file", mf.Version)
	}
}

func TestStatus_Pending(t *testing.T) {
	assert.True(t, Status{Version: 1, Latest: 2}.Pending())
	assert.False(t, Status{Version: 2, Latest: 2}.Pending())
}
