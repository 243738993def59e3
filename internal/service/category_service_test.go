package service

import (
	"testing"
	"time"

	"bicarb-server/internal/model"
	platformservice "bicarb-server/internal/platform/service"
	repo "bicarb-server/internal/repository"
	"bicarb-server/internal/testutils"

	"gorm.io/gorm"
)

func newCategoryService(t *testing.T) (*CategoryService, *gorm.DB) {
	t.Helper()
	gdb := testutils.SetupDB(t)
	return NewCategoryService(gdb, repo.NewCategoryRepository(gdb)), gdb
}

func TestNextPosition(t *testing.T) {
	s, gdb := newCategoryService(t)

	if pos, err := s.NextPosition(gdb, nil); err != nil || pos != 0 {
		t.Fatalf("empty level: pos=%d err=%v, want 0", pos, err)
	}

	testutils.CreateCategory(t, gdb, "one", 0, nil)
	testutils.CreateCategory(t, gdb, "two", 3, nil)

	if pos, err := s.NextPosition(gdb, nil); err != nil || pos != 4 {
		t.Fatalf("root level: pos=%d err=%v, want 4", pos, err)
	}
}

func TestIncludeParents(t *testing.T) {
	s, gdb := newCategoryService(t)

	root := testutils.CreateCategory(t, gdb, "root", 0, nil)
	mid := testutils.CreateCategory(t, gdb, "mid", 0, &root.ID)
	leaf := testutils.CreateCategory(t, gdb, "leaf", 0, &mid.ID)

	chain, err := s.IncludeParents(gdb, leaf)
	if err != nil {
		t.Fatalf("include parents: %v", err)
	}
	if len(chain) != 3 {
		t.Fatalf("chain length %d, want 3", len(chain))
	}
	if chain[0].ID != leaf.ID || chain[1].ID != mid.ID || chain[2].ID != root.ID {
		t.Errorf("chain order wrong: %d %d %d", chain[0].ID, chain[1].ID, chain[2].ID)
	}
}

func TestPatchLocationValidation(t *testing.T) {
	s, gdb := newCategoryService(t)
	category := testutils.CreateCategory(t, gdb, "alone", 0, nil)

	err := s.PatchLocation(category.ID, nil, nil)
	se, ok := platformservice.AsServiceError(err)
	if !ok || se.Code != platformservice.ErrorCodeUnprocessable {
		t.Fatalf("both nil should be unprocessable, got %v", err)
	}

	pos := 1
	err = s.PatchLocation(9999, &pos, nil)
	se, ok = platformservice.AsServiceError(err)
	if !ok || se.Code != platformservice.ErrorCodeNotFound {
		t.Fatalf("unknown category should be not found, got %v", err)
	}

	unknown := uint(9999)
	err = s.PatchLocation(category.ID, nil, &unknown)
	se, ok = platformservice.AsServiceError(err)
	if !ok || se.Code != platformservice.ErrorCodeNotFound {
		t.Fatalf("unknown parentId should be not found, got %v", err)
	}
}

func TestPatchLocationRejectCycle(t *testing.T) {
	s, gdb := newCategoryService(t)

	root := testutils.CreateCategory(t, gdb, "root", 0, nil)
	child := testutils.CreateCategory(t, gdb, "child", 0, &root.ID)
	grandchild := testutils.CreateCategory(t, gdb, "grandchild", 0, &child.ID)

	// 不能把自己挂到自己或后代下面
	for _, parent := range []uint{root.ID, grandchild.ID} {
		parent := parent
		err := s.PatchLocation(root.ID, nil, &parent)
		se, ok := platformservice.AsServiceError(err)
		if !ok || se.Code != platformservice.ErrorCodeUnprocessable {
			t.Fatalf("cycle via %d should be unprocessable, got %v", parent, err)
		}
	}

	// 被拒绝的移动不产生任何变化
	var stored model.Category
	if err := gdb.First(&stored, root.ID).Error; err != nil {
		t.Fatalf("load root: %v", err)
	}
	if stored.ParentID != nil {
		t.Error("rejected move must not change parent")
	}
}

func TestPatchLocationSiblingShift(t *testing.T) {
	s, gdb := newCategoryService(t)

	a := testutils.CreateCategory(t, gdb, "a", 0, nil)
	b := testutils.CreateCategory(t, gdb, "b", 1, nil)
	c := testutils.CreateCategory(t, gdb, "c", 2, nil)

	// c 移到第 0 位，a、b 依次让位
	pos := 0
	if err := s.PatchLocation(c.ID, &pos, nil); err != nil {
		t.Fatalf("patch location: %v", err)
	}

	want := map[uint]int{a.ID: 1, b.ID: 2, c.ID: 0}
	for id, position := range want {
		var stored model.Category
		if err := gdb.First(&stored, id).Error; err != nil {
			t.Fatalf("load category %d: %v", id, err)
		}
		if stored.Position != position {
			t.Errorf("category %d position = %d, want %d", id, stored.Position, position)
		}
	}
}

func TestPatchLocationSamePositionNoop(t *testing.T) {
	s, gdb := newCategoryService(t)

	a := testutils.CreateCategory(t, gdb, "a", 0, nil)
	b := testutils.CreateCategory(t, gdb, "b", 1, nil)

	pos := 1
	if err := s.PatchLocation(b.ID, &pos, nil); err != nil {
		t.Fatalf("patch location: %v", err)
	}

	var stored model.Category
	if err := gdb.First(&stored, a.ID).Error; err != nil {
		t.Fatalf("load category: %v", err)
	}
	if stored.Position != 0 {
		t.Errorf("unmoved sibling shifted to %d", stored.Position)
	}
}

func TestPatchLocationParentOnlyAppends(t *testing.T) {
	s, gdb := newCategoryService(t)

	root := testutils.CreateCategory(t, gdb, "root", 0, nil)
	testutils.CreateCategory(t, gdb, "first", 0, &root.ID)
	mover := testutils.CreateCategory(t, gdb, "mover", 1, nil)

	if err := s.PatchLocation(mover.ID, nil, &root.ID); err != nil {
		t.Fatalf("patch location: %v", err)
	}

	var stored model.Category
	if err := gdb.First(&stored, mover.ID).Error; err != nil {
		t.Fatalf("load category: %v", err)
	}
	if stored.ParentID == nil || *stored.ParentID != root.ID {
		t.Fatal("parent not updated")
	}
	if stored.Position != 1 {
		t.Errorf("position = %d, want 1 (appended after existing child)", stored.Position)
	}
}

func TestPatchLocationParentChangeMaintainsCounts(t *testing.T) {
	s, gdb := newCategoryService(t)

	oldRoot := testutils.CreateCategory(t, gdb, "oldroot", 0, nil)
	newRoot := testutils.CreateCategory(t, gdb, "newroot", 1, nil)
	moved := testutils.CreateCategory(t, gdb, "moved", 0, &oldRoot.ID)

	author := testutils.CreateUser(t, gdb, "dara", model.GroupUser)
	now := time.Now()
	topic := model.Topic{Title: "t", Slug: "t", AuthorID: author.ID, CreateAt: now, LastReplyAt: now}
	if err := gdb.Create(&topic).Error; err != nil {
		t.Fatalf("create topic: %v", err)
	}
	// 冗余关系：topic 同时挂在 moved 与其祖先 oldRoot 上
	for _, categoryID := range []uint{moved.ID, oldRoot.ID} {
		if err := gdb.Exec("INSERT INTO topic_categories (topic_id, category_id) VALUES (?, ?)", topic.ID, categoryID).Error; err != nil {
			t.Fatalf("seed relation: %v", err)
		}
	}
	gdb.Model(&model.Category{}).Where("id = ?", moved.ID).Update("topic_count", 1)
	gdb.Model(&model.Category{}).Where("id = ?", oldRoot.ID).Update("topic_count", 1)

	if err := s.PatchLocation(moved.ID, nil, &newRoot.ID); err != nil {
		t.Fatalf("patch location: %v", err)
	}

	counts := map[uint]int{oldRoot.ID: 0, newRoot.ID: 1, moved.ID: 1}
	for id, want := range counts {
		var stored model.Category
		if err := gdb.First(&stored, id).Error; err != nil {
			t.Fatalf("load category %d: %v", id, err)
		}
		if stored.TopicCount != want {
			t.Errorf("category %d topic count = %d, want %d", id, stored.TopicCount, want)
		}
	}

	relations := func(categoryID uint) int64 {
		var count int64
		gdb.Table("topic_categories").Where("topic_id = ? AND category_id = ?", topic.ID, categoryID).Count(&count)
		return count
	}
	if relations(oldRoot.ID) != 0 {
		t.Error("relation to old ancestor should be removed")
	}
	if relations(newRoot.ID) != 1 {
		t.Error("relation to new ancestor should be added")
	}
	if relations(moved.ID) != 1 {
		t.Error("relation to moved category itself must survive")
	}
}
