package repository

import (
	"errors"
	"testing"
	"time"

	"bicarb-server/internal/model"
	"bicarb-server/internal/testutils"

	"gorm.io/gorm"
)

func seedTopics(t *testing.T, gdb *gorm.DB, author uint, n int) []model.Topic {
	t.Helper()
	topics := make([]model.Topic, 0, n)
	base := time.Now().Add(-time.Duration(n) * time.Minute)
	for i := 0; i < n; i++ {
		topic := model.Topic{
			Title:       "topic",
			Slug:        "topic",
			AuthorID:    author,
			CreateAt:    base.Add(time.Duration(i) * time.Minute),
			LastReplyAt: base.Add(time.Duration(i) * time.Minute),
			Delete:      i%2 == 1, // 奇数位标记为已删除
		}
		if err := gdb.Create(&topic).Error; err != nil {
			t.Fatalf("create topic: %v", err)
		}
		topics = append(topics, topic)
	}
	return topics
}

func TestListScopeAndPaging(t *testing.T) {
	gdb := testutils.SetupDB(t)
	author := testutils.CreateUser(t, gdb, "alice", model.GroupUser)
	seedTopics(t, gdb, author.ID, 6) // 3 条可见

	store := NewTopicRepository(gdb)
	visible := func(tx *gorm.DB) *gorm.DB { return tx.Where("topics.deleted = ?", false) }

	topics, total, err := store.List(ListOptions{
		Scope:     visible,
		Sort:      "last_reply_at DESC",
		Limit:     2,
		WithTotal: true,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// 总数按谓词统计，分页不影响
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(topics) != 2 {
		t.Fatalf("page size = %d, want 2", len(topics))
	}
	if topics[0].LastReplyAt.Before(topics[1].LastReplyAt) {
		t.Error("sort order wrong")
	}
	for _, topic := range topics {
		if topic.Delete {
			t.Error("scope must filter deleted topics")
		}
	}

	// 第二页
	topics, _, err = store.List(ListOptions{Scope: visible, Sort: "last_reply_at DESC", Offset: 2, Limit: 2})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(topics) != 1 {
		t.Errorf("page 2 size = %d, want 1", len(topics))
	}
}

func TestListWithoutTotal(t *testing.T) {
	gdb := testutils.SetupDB(t)
	author := testutils.CreateUser(t, gdb, "bob", model.GroupUser)
	seedTopics(t, gdb, author.ID, 2)

	store := NewTopicRepository(gdb)
	_, total, err := store.List(ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != -1 {
		t.Errorf("total = %d, want -1 when not requested", total)
	}
}

func TestFindVisibleByID(t *testing.T) {
	gdb := testutils.SetupDB(t)
	author := testutils.CreateUser(t, gdb, "carol", model.GroupUser)
	topics := seedTopics(t, gdb, author.ID, 2) // [0] 可见，[1] 已删除

	store := NewTopicRepository(gdb)
	visible := func(tx *gorm.DB) *gorm.DB { return tx.Where("topics.deleted = ?", false) }

	got, err := store.FindVisibleByID(topics[0].ID, visible)
	if err != nil {
		t.Fatalf("find visible: %v", err)
	}
	if got.Author == nil || got.Author.ID != author.ID {
		t.Error("author not preloaded")
	}

	// 谓词挡掉等价于不存在
	if _, err := store.FindVisibleByID(topics[1].ID, visible); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("blocked topic should look missing, got %v", err)
	}
	if _, err := store.FindVisibleByID(9999, visible); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("unknown id should be not found, got %v", err)
	}

	// 无谓词时可见
	if _, err := store.FindVisibleByID(topics[1].ID, nil); err != nil {
		t.Errorf("nil scope should find deleted topic: %v", err)
	}
}

func TestMaxIndex(t *testing.T) {
	gdb := testutils.SetupDB(t)
	author := testutils.CreateUser(t, gdb, "dave", model.GroupUser)
	topics := seedTopics(t, gdb, author.ID, 1)

	store := NewPostRepository(gdb)
	if _, ok, err := store.MaxIndex(topics[0].ID); err != nil || ok {
		t.Fatalf("empty topic: ok=%v err=%v, want no rows", ok, err)
	}

	for i := 0; i <= 2; i++ {
		post := model.Post{TopicID: topics[0].ID, AuthorID: author.ID, Raw: "x", Cooked: "x", Index: i, CreateAt: time.Now()}
		if err := gdb.Create(&post).Error; err != nil {
			t.Fatalf("create post: %v", err)
		}
	}
	max, ok, err := store.MaxIndex(topics[0].ID)
	if err != nil || !ok || max != 2 {
		t.Fatalf("max=%d ok=%v err=%v, want 2", max, ok, err)
	}
}

func TestCategoryMaxPosition(t *testing.T) {
	gdb := testutils.SetupDB(t)
	store := NewCategoryRepository(gdb)

	if _, ok, err := store.MaxPosition(nil); err != nil || ok {
		t.Fatalf("empty level: ok=%v err=%v", ok, err)
	}

	root := testutils.CreateCategory(t, gdb, "root", 4, nil)
	testutils.CreateCategory(t, gdb, "child", 7, &root.ID)

	if max, ok, err := store.MaxPosition(nil); err != nil || !ok || max != 4 {
		t.Fatalf("root level: max=%d ok=%v err=%v, want 4", max, ok, err)
	}
	if max, ok, err := store.MaxPosition(&root.ID); err != nil || !ok || max != 7 {
		t.Fatalf("child level: max=%d ok=%v err=%v, want 7", max, ok, err)
	}
}
