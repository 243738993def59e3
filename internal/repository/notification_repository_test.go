package repository

import (
	"testing"
	"time"

	"bicarb-server/internal/model"
	"bicarb-server/internal/testutils"
)

func TestNotificationUnreadLifecycle(t *testing.T) {
	gdb := testutils.SetupDB(t)
	sender := testutils.CreateUser(t, gdb, "alice", model.GroupUser)
	receiver := testutils.CreateUser(t, gdb, "bob", model.GroupUser)
	other := testutils.CreateUser(t, gdb, "carol", model.GroupUser)

	topics := seedTopics(t, gdb, sender.ID, 1)
	post := model.Post{TopicID: topics[0].ID, AuthorID: sender.ID, Raw: "x", Cooked: "x", CreateAt: time.Now()}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}

	store := NewNotificationRepository(gdb)
	now := time.Now()
	err := store.CreateAll([]model.Notification{
		{Type: model.NotificationReply, SendID: sender.ID, ToID: receiver.ID, PostID: post.ID, TopicID: topics[0].ID, CreateAt: now},
		{Type: model.NotificationMention, SendID: sender.ID, ToID: receiver.ID, PostID: post.ID, TopicID: topics[0].ID, CreateAt: now},
		{Type: model.NotificationMention, SendID: sender.ID, ToID: other.ID, PostID: post.ID, TopicID: topics[0].ID, CreateAt: now},
	})
	if err != nil {
		t.Fatalf("create notifications: %v", err)
	}

	if count, err := store.CountUnread(receiver.ID); err != nil || count != 2 {
		t.Fatalf("unread = %d err=%v, want 2", count, err)
	}

	if err := store.MarkAllRead(receiver.ID, time.Now()); err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if count, _ := store.CountUnread(receiver.ID); count != 0 {
		t.Errorf("unread after mark = %d, want 0", count)
	}
	// 他人的未读不受影响
	if count, _ := store.CountUnread(other.ID); count != 1 {
		t.Errorf("other user unread = %d, want 1", count)
	}
}

func TestCreateAllEmpty(t *testing.T) {
	gdb := testutils.SetupDB(t)
	store := NewNotificationRepository(gdb)
	if err := store.CreateAll(nil); err != nil {
		t.Fatalf("empty batch should be a no-op: %v", err)
	}
}
