package perm

import (
	"testing"
	"time"

	"bicarb-server/internal/consts"
	"bicarb-server/internal/model"
	"bicarb-server/internal/testutils"

	"gorm.io/gorm"
)

func permSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func userRequester(id uint) *Requester {
	return &Requester{ID: id, Active: true, Permissions: permSet(consts.UserPermissions()...)}
}

func modRequester(id uint) *Requester {
	return &Requester{ID: id, Active: true, Permissions: permSet(consts.ModPermissions()...)}
}

func TestPolicyDefaultAllow(t *testing.T) {
	p := NewPolicy(NewForumRegistry())

	// 无规则视为放行
	if !p.Allowed(model.KindUser, OpRead, "bio", nil, &model.User{}, nil) {
		t.Error("field without rule should be allowed")
	}
}

func TestPolicyEmailRead(t *testing.T) {
	p := NewForumPolicy(NewForumRegistry())
	owner := userRequester(7)
	other := userRequester(8)

	private := &model.User{ID: 7, EmailPublic: false}
	public := &model.User{ID: 9, EmailPublic: true}

	if !p.Allowed(model.KindUser, OpRead, "email", owner, private, nil) {
		t.Error("owner should read own private email")
	}
	if p.Allowed(model.KindUser, OpRead, "email", other, private, nil) {
		t.Error("other user should not read private email")
	}
	if !p.Allowed(model.KindUser, OpRead, "email", nil, public, nil) {
		t.Error("anyone should read public email")
	}
	if p.Allowed(model.KindUser, OpRead, "password", owner, private, nil) {
		t.Error("password must never be readable")
	}
}

func TestPolicyTopicTitleUpdate(t *testing.T) {
	p := NewForumPolicy(NewForumRegistry())
	topic := &model.Topic{ID: 1, AuthorID: 7}

	if !p.Allowed(model.KindTopic, OpUpdate, consts.FieldTitle, userRequester(7), topic, nil) {
		t.Error("author with edit.own.title should update title")
	}
	if p.Allowed(model.KindTopic, OpUpdate, consts.FieldTitle, userRequester(8), topic, nil) {
		t.Error("non-author without edit.title should not update title")
	}
	if !p.Allowed(model.KindTopic, OpUpdate, consts.FieldTitle, modRequester(8), topic, nil) {
		t.Error("mod with edit.title should update any title")
	}

	// 账号未激活时 own 系列权限失效
	inactive := &Requester{ID: 7, Active: false, Permissions: permSet(consts.UserPermissions()...)}
	if p.Allowed(model.KindTopic, OpUpdate, consts.FieldTitle, inactive, topic, nil) {
		t.Error("inactive author should not update title")
	}
}

func TestPolicyTopicDeleteRestore(t *testing.T) {
	p := NewForumPolicy(NewForumRegistry())
	author := userRequester(7)
	modID := uint(2)

	own := &model.Topic{ID: 1, AuthorID: 7}
	if !p.Allowed(model.KindTopic, OpUpdate, consts.FieldDelete, author, own, nil) {
		t.Error("author should delete own topic")
	}

	// 他人（版主）删除后，作者不能恢复
	deletedByMod := &model.Topic{ID: 2, AuthorID: 7, Delete: true, DeleteByID: &modID}
	if p.Allowed(model.KindTopic, OpUpdate, consts.FieldDelete, author, deletedByMod, nil) {
		t.Error("author should not restore topic deleted by moderator")
	}
	if !p.Allowed(model.KindTopic, OpUpdate, consts.FieldDelete, modRequester(2), deletedByMod, nil) {
		t.Error("mod should restore any topic")
	}

	// 自己删除的自己可以恢复
	self := uint(7)
	deletedBySelf := &model.Topic{ID: 3, AuthorID: 7, Delete: true, DeleteByID: &self}
	if !p.Allowed(model.KindTopic, OpUpdate, consts.FieldDelete, author, deletedBySelf, nil) {
		t.Error("author should restore topic deleted by self")
	}
}

func TestPolicyPostCreateInTopic(t *testing.T) {
	p := NewForumPolicy(NewForumRegistry())
	r := userRequester(7)

	open := &model.Post{Topic: &model.Topic{ID: 1}}
	if !p.Allowed(model.KindPost, OpCreate, "topic", r, open, nil) {
		t.Error("user should post in open topic")
	}
	locked := &model.Post{Topic: &model.Topic{ID: 2, Locked: true}}
	if p.Allowed(model.KindPost, OpCreate, "topic", r, locked, nil) {
		t.Error("user should not post in locked topic")
	}
	deleted := &model.Post{Topic: &model.Topic{ID: 3, Delete: true}}
	if p.Allowed(model.KindPost, OpCreate, "topic", r, deleted, nil) {
		t.Error("user should not post in deleted topic")
	}
}

func countTopics(t *testing.T, gdb *gorm.DB, scope Scope) int64 {
	t.Helper()
	var count int64
	if err := scope(gdb.Model(&model.Topic{})).Count(&count).Error; err != nil {
		t.Fatalf("count topics: %v", err)
	}
	return count
}

func TestTopicReadScope(t *testing.T) {
	gdb := testutils.SetupDB(t)
	p := NewForumPolicy(NewForumRegistry())

	author := testutils.CreateUser(t, gdb, "alice", model.GroupUser)
	mod := testutils.CreateUser(t, gdb, "bob", model.GroupMod)
	now := time.Now()

	topics := []model.Topic{
		{Title: "visible", Slug: "visible", AuthorID: author.ID, CreateAt: now, LastReplyAt: now},
		{Title: "self deleted", Slug: "self-deleted", AuthorID: author.ID, CreateAt: now, LastReplyAt: now,
			Delete: true, DeleteByID: &author.ID},
		{Title: "mod deleted", Slug: "mod-deleted", AuthorID: author.ID, CreateAt: now, LastReplyAt: now,
			Delete: true, DeleteByID: &mod.ID},
	}
	for i := range topics {
		if err := gdb.Create(&topics[i]).Error; err != nil {
			t.Fatalf("create topic: %v", err)
		}
	}

	// 匿名：仅未删除
	if got := countTopics(t, gdb, p.ReadScope(model.KindTopic, nil)); got != 1 {
		t.Errorf("anonymous should see 1 topic, got %d", got)
	}
	// 作者：未删除 + 自己删除的
	if got := countTopics(t, gdb, p.ReadScope(model.KindTopic, userRequester(author.ID))); got != 2 {
		t.Errorf("author should see 2 topics, got %d", got)
	}
	// 版主：全部
	if got := countTopics(t, gdb, p.ReadScope(model.KindTopic, modRequester(mod.ID))); got != 3 {
		t.Errorf("mod should see 3 topics, got %d", got)
	}
}

func TestPostReadScope(t *testing.T) {
	gdb := testutils.SetupDB(t)
	p := NewForumPolicy(NewForumRegistry())

	author := testutils.CreateUser(t, gdb, "carol", model.GroupUser)
	now := time.Now()

	visible := model.Topic{Title: "t1", Slug: "t1", AuthorID: author.ID, CreateAt: now, LastReplyAt: now}
	hidden := model.Topic{Title: "t2", Slug: "t2", AuthorID: author.ID, CreateAt: now, LastReplyAt: now, Delete: true}
	for _, topic := range []*model.Topic{&visible, &hidden} {
		if err := gdb.Create(topic).Error; err != nil {
			t.Fatalf("create topic: %v", err)
		}
	}

	posts := []model.Post{
		{TopicID: visible.ID, AuthorID: author.ID, Raw: "a", Cooked: "a", Index: 0, CreateAt: now},
		{TopicID: visible.ID, AuthorID: author.ID, Raw: "b", Cooked: "b", Index: 1, CreateAt: now,
			Delete: true, DeleteByID: &author.ID},
		{TopicID: hidden.ID, AuthorID: author.ID, Raw: "c", Cooked: "c", Index: 0, CreateAt: now},
	}
	for i := range posts {
		if err := gdb.Create(&posts[i]).Error; err != nil {
			t.Fatalf("create post: %v", err)
		}
	}

	countPosts := func(r *Requester) int64 {
		var count int64
		scope := p.ReadScope(model.KindPost, r)
		if err := scope(gdb.Model(&model.Post{})).Count(&count).Error; err != nil {
			t.Fatalf("count posts: %v", err)
		}
		return count
	}

	// 匿名：可见主题下未删除的帖子
	if got := countPosts(nil); got != 1 {
		t.Errorf("anonymous should see 1 post, got %d", got)
	}
	// 作者：可见主题下未删除 + 自己删除的
	if got := countPosts(userRequester(author.ID)); got != 2 {
		t.Errorf("author should see 2 posts, got %d", got)
	}
	// 版主：全部（含已删主题下的帖子）
	if got := countPosts(modRequester(99)); got != 3 {
		t.Errorf("mod should see 3 posts, got %d", got)
	}
}
