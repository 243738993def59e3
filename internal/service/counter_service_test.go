package service

import (
	"testing"
	"time"

	"bicarb-server/internal/model"
	"bicarb-server/internal/testutils"
)

func TestRecountAll(t *testing.T) {
	gdb := testutils.SetupDB(t)
	s := NewCounterService(gdb)

	author := testutils.CreateUser(t, gdb, "alice", model.GroupUser)
	replier := testutils.CreateUser(t, gdb, "bob", model.GroupUser)
	category := testutils.CreateCategory(t, gdb, "general", 0, nil)

	topic := createTopic(t, gdb, author, "drifted")
	createPost(t, gdb, topic, author, 0, "first")
	reply := createPost(t, gdb, topic, replier, 1, "second")
	if err := gdb.Exec("INSERT INTO topic_categories (topic_id, category_id) VALUES (?, ?)", topic.ID, category.ID).Error; err != nil {
		t.Fatalf("seed relation: %v", err)
	}

	// 人为制造漂移
	gdb.Model(&model.User{}).Where("id = ?", author.ID).Updates(map[string]any{"topic_count": 9, "post_count": 9})
	gdb.Model(&model.User{}).Where("id = ?", replier.ID).Update("post_count", 0)
	gdb.Model(&model.Category{}).Where("id = ?", category.ID).Update("topic_count", 7)
	gdb.Model(&model.Topic{}).Where("id = ?", topic.ID).Updates(map[string]any{
		"post_index":    0,
		"last_reply_at": time.Now().Add(-24 * time.Hour),
	})

	if err := s.RecountAll(); err != nil {
		t.Fatalf("recount: %v", err)
	}

	var storedAuthor, storedReplier model.User
	gdb.First(&storedAuthor, author.ID)
	gdb.First(&storedReplier, replier.ID)
	if storedAuthor.TopicCount != 1 {
		t.Errorf("author topic count = %d, want 1", storedAuthor.TopicCount)
	}
	// 楼主帖（idx 0）不计入 postCount
	if storedAuthor.PostCount != 0 {
		t.Errorf("author post count = %d, want 0", storedAuthor.PostCount)
	}
	if storedReplier.PostCount != 1 {
		t.Errorf("replier post count = %d, want 1", storedReplier.PostCount)
	}

	var storedCategory model.Category
	gdb.First(&storedCategory, category.ID)
	if storedCategory.TopicCount != 1 {
		t.Errorf("category topic count = %d, want 1", storedCategory.TopicCount)
	}

	var storedTopic model.Topic
	gdb.First(&storedTopic, topic.ID)
	if storedTopic.PostIndex != 1 {
		t.Errorf("topic post index = %d, want 1", storedTopic.PostIndex)
	}
	if storedTopic.LastReplyID == nil || *storedTopic.LastReplyID != replier.ID {
		t.Error("last reply author not recalculated")
	}
	if !storedTopic.LastReplyAt.After(reply.CreateAt.Add(-time.Second)) {
		t.Error("last reply time not recalculated")
	}
}
