package testutils

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"bicarb-server/internal/consts"
	"bicarb-server/internal/db"
	"bicarb-server/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var testDBSeq int64

// SetupDB initializes a unique in-memory SQLite database for testing,
// sets the global db.DB, and performs auto-migration plus group seeding.
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()

	seq := atomic.AddInt64(&testDBSeq, 1)
	dsn := fmt.Sprintf("file:bicarb_%d?mode=memory&cache=shared", seq)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	prevDB := db.DB
	t.Cleanup(func() {
		if prevDB != nil && db.DB == gdb {
			db.DB = prevDB
		}
		_ = sqlDB.Close()
	})

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	db.DB = gdb
	return gdb
}

// CreateUser inserts an active user in the given group.
func CreateUser(t *testing.T, gdb *gorm.DB, username string, groupID uint) *model.User {
	t.Helper()

	user := &model.User{
		Username: username,
		Nickname: username + "-nick",
		Email:    username + "@example.com",
		Password: "$2a$10$abcdefghijklmnopqrstuvwxyz012345678901234567890123456",
		Active:   true,
		CreateAt: time.Now(),
		GroupID:  groupID,
	}
	if err := gdb.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// CreateCategory inserts a category under the given parent.
func CreateCategory(t *testing.T, gdb *gorm.DB, name string, position int, parentID *uint) *model.Category {
	t.Helper()

	category := &model.Category{
		Name:     name,
		Slug:     strings.ToLower(name),
		Position: position,
		ParentID: parentID,
	}
	if err := gdb.Create(category).Error; err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return category
}

// GroupPermissions returns the seeded permission set for a predefined group.
func GroupPermissions(t *testing.T, gdb *gorm.DB, groupID uint) map[string]struct{} {
	t.Helper()

	var group model.Group
	if err := gdb.First(&group, groupID).Error; err != nil {
		t.Fatalf("load group %d: %v", groupID, err)
	}
	return group.PermissionSet()
}

// AllPermissions returns the full admin permission set.
func AllPermissions() map[string]struct{} {
	set := make(map[string]struct{})
	for _, p := range consts.AdminPermissions() {
		set[p] = struct{}{}
	}
	return set
}
