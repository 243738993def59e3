package service

import (
	"testing"

	"bicarb-server/internal/model"
	repo "bicarb-server/internal/repository"
	"bicarb-server/internal/testutils"

	"gorm.io/gorm"
)

func newSearchService(t *testing.T) (*SearchService, *gorm.DB) {
	t.Helper()
	gdb := testutils.SetupDB(t)
	return NewSearchService(gdb, repo.NewSearchRepository(gdb), repo.NewPostRepository(gdb)), gdb
}

func countDocs(t *testing.T, gdb *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := gdb.Model(&model.SearchDocument{}).Count(&count).Error; err != nil {
		t.Fatalf("count documents: %v", err)
	}
	return count
}

func TestIndexAndQuery(t *testing.T) {
	s, gdb := newSearchService(t)

	author := testutils.CreateUser(t, gdb, "erin", model.GroupUser)
	topic := createTopic(t, gdb, author, "introducing gophers")
	post := createPost(t, gdb, topic, author, 0, "gophers dig tunnels")

	if err := s.IndexPost(gdb, post, topic.Title); err != nil {
		t.Fatalf("index post: %v", err)
	}

	docs, total, err := s.Query("tunnels", 0, 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if total != 1 || len(docs) != 1 {
		t.Fatalf("total=%d len=%d, want 1", total, len(docs))
	}
	if docs[0].PostID != post.ID || docs[0].Title != topic.Title {
		t.Errorf("document fields wrong: %+v", docs[0])
	}

	// 标题命中同样可搜
	if _, total, err = s.Query("introducing", 0, 10); err != nil || total != 1 {
		t.Fatalf("title query: total=%d err=%v", total, err)
	}
	if _, total, err = s.Query("nothing-matches", 0, 10); err != nil || total != 0 {
		t.Fatalf("miss query: total=%d err=%v", total, err)
	}
}

func TestPurgePost(t *testing.T) {
	s, gdb := newSearchService(t)

	author := testutils.CreateUser(t, gdb, "finn", model.GroupUser)
	topic := createTopic(t, gdb, author, "short lived")
	post := createPost(t, gdb, topic, author, 0, "soon gone")

	if err := s.IndexPost(gdb, post, topic.Title); err != nil {
		t.Fatalf("index post: %v", err)
	}
	if err := s.PurgePost(gdb, post.ID); err != nil {
		t.Fatalf("purge post: %v", err)
	}
	if got := countDocs(t, gdb); got != 0 {
		t.Errorf("documents left after purge: %d", got)
	}
}

func TestSyncTopicDeleteAndRestore(t *testing.T) {
	s, gdb := newSearchService(t)

	author := testutils.CreateUser(t, gdb, "gail", model.GroupUser)
	topic := createTopic(t, gdb, author, "flip flop")
	first := createPost(t, gdb, topic, author, 0, "original body")
	createPost(t, gdb, topic, author, 1, "a reply")

	if err := s.IndexPost(gdb, first, topic.Title); err != nil {
		t.Fatalf("index post: %v", err)
	}

	topic.Delete = true
	if err := s.SyncTopicDelete(gdb, topic); err != nil {
		t.Fatalf("sync delete: %v", err)
	}
	if got := countDocs(t, gdb); got != 0 {
		t.Errorf("deleted topic must drop all documents, got %d", got)
	}

	// 恢复后按帖子明细重建全部文档
	topic.Delete = false
	if err := s.SyncTopicDelete(gdb, topic); err != nil {
		t.Fatalf("sync restore: %v", err)
	}
	if got := countDocs(t, gdb); got != 2 {
		t.Errorf("restored topic should index 2 posts, got %d", got)
	}
}

func TestSyncTopicTitle(t *testing.T) {
	s, gdb := newSearchService(t)

	author := testutils.CreateUser(t, gdb, "hank", model.GroupUser)
	topic := createTopic(t, gdb, author, "old title")
	post := createPost(t, gdb, topic, author, 0, "body text")
	if err := s.IndexPost(gdb, post, topic.Title); err != nil {
		t.Fatalf("index post: %v", err)
	}

	topic.Title = "new title"
	if err := s.SyncTopicTitle(gdb, topic); err != nil {
		t.Fatalf("sync title: %v", err)
	}

	var doc model.SearchDocument
	if err := gdb.First(&doc, post.ID).Error; err != nil {
		t.Fatalf("load document: %v", err)
	}
	if doc.Title != "new title" {
		t.Errorf("title = %q, want new title", doc.Title)
	}
}

func TestMoreLikeThis(t *testing.T) {
	s, gdb := newSearchService(t)

	author := testutils.CreateUser(t, gdb, "jack", model.GroupUser)
	habits := createTopic(t, gdb, author, "gopher habits")
	sample := createPost(t, gdb, habits, author, 0, "gophers dig tunnels")
	diet := createTopic(t, gdb, author, "gopher diet")
	related := createPost(t, gdb, diet, author, 0, "gophers eat roots")
	cats := createTopic(t, gdb, author, "unrelated cats")
	stranger := createPost(t, gdb, cats, author, 0, "cats sleep all day")

	for _, p := range []struct {
		post  *model.Post
		title string
	}{{sample, habits.Title}, {related, diet.Title}, {stranger, cats.Title}} {
		if err := s.IndexPost(gdb, p.post, p.title); err != nil {
			t.Fatalf("index post: %v", err)
		}
	}

	docs, total, err := s.MoreLikeThis(sample.ID, 0, 10)
	if err != nil {
		t.Fatalf("more like this: %v", err)
	}
	if total != 1 || len(docs) != 1 {
		t.Fatalf("total=%d len=%d, want 1", total, len(docs))
	}
	// 样本自身与标题内容都不相关的帖子都不该出现
	if docs[0].PostID != related.ID {
		t.Errorf("similar post = %d, want %d", docs[0].PostID, related.ID)
	}

	// 未索引的帖子查相近应报错
	if _, _, err := s.MoreLikeThis(9999, 0, 10); err == nil {
		t.Error("expected error for unindexed post")
	}
}

func TestRebuildSkipsDeletedTopics(t *testing.T) {
	s, gdb := newSearchService(t)

	author := testutils.CreateUser(t, gdb, "iris", model.GroupUser)
	alive := createTopic(t, gdb, author, "alive")
	createPost(t, gdb, alive, author, 0, "keep me")

	// 已软删的楼层与增量钩子的清除行为保持一致，不进索引
	deletedFloor := createPost(t, gdb, alive, author, 1, "hidden floor")
	deletedFloor.Delete = true
	if err := gdb.Save(deletedFloor).Error; err != nil {
		t.Fatalf("save post: %v", err)
	}

	dead := createTopic(t, gdb, author, "dead")
	dead.Delete = true
	if err := gdb.Save(dead).Error; err != nil {
		t.Fatalf("save topic: %v", err)
	}
	createPost(t, gdb, dead, author, 0, "skip me")

	// 残留的脏文档应在全量重建时被清掉
	if err := gdb.Create(&model.SearchDocument{PostID: 9999, TopicID: 9999, Title: "stale", Content: "stale"}).Error; err != nil {
		t.Fatalf("seed stale document: %v", err)
	}

	done, started := s.Rebuild()
	if !started {
		t.Fatal("rebuild should run")
	}
	if err := <-done; err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	if got := countDocs(t, gdb); got != 1 {
		t.Errorf("rebuild should leave 1 document, got %d", got)
	}
	var doc model.SearchDocument
	if err := gdb.Take(&doc).Error; err != nil {
		t.Fatalf("load document: %v", err)
	}
	if doc.Title != "alive" {
		t.Errorf("surviving document title = %q, want alive", doc.Title)
	}
}

func TestOnlyOneRebuildAtATime(t *testing.T) {
	s, _ := newSearchService(t)

	// 模拟已有重建在跑
	s.indexing.Store(true)
	if !s.IsIndexing() {
		t.Fatal("indexing flag should be visible")
	}
	if done, started := s.SafeRebuild(); started || done != nil {
		t.Error("second rebuild must be rejected while one is running")
	}
	s.indexing.Store(false)

	done, started := s.SafeRebuild()
	if !started {
		t.Fatal("rebuild should run once the flag is free")
	}
	if err := <-done; err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if s.IsIndexing() {
		t.Error("indexing flag must be reset after rebuild")
	}
}
