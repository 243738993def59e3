package service

import (
	"testing"
	"time"

	"bicarb-server/internal/model"
	platformservice "bicarb-server/internal/platform/service"
	repo "bicarb-server/internal/repository"
	"bicarb-server/internal/testutils"
)

func TestHandleByPostID(t *testing.T) {
	gdb := testutils.SetupDB(t)
	s := NewReportService(repo.NewReportRepository(gdb), repo.NewPostRepository(gdb))

	author := testutils.CreateUser(t, gdb, "alice", model.GroupUser)
	reporter := testutils.CreateUser(t, gdb, "bob", model.GroupUser)
	topic := createTopic(t, gdb, author, "reported")
	post := createPost(t, gdb, topic, author, 0, "body")

	handled := time.Now().Add(-time.Hour)
	reports := []model.Report{
		{ByID: reporter.ID, PostID: post.ID, Reason: "spam", CreateAt: time.Now()},
		{ByID: author.ID, PostID: post.ID, Reason: "off topic", CreateAt: time.Now()},
		{ByID: reporter.ID, PostID: post.ID, Reason: "done already", CreateAt: time.Now(), HandleAt: &handled},
	}
	for i := range reports {
		if err := gdb.Create(&reports[i]).Error; err != nil {
			t.Fatalf("create report: %v", err)
		}
	}

	err := s.HandleByPostID(9999)
	se, ok := platformservice.AsServiceError(err)
	if !ok || se.Code != platformservice.ErrorCodeNotFound {
		t.Fatalf("unknown post should be not found, got %v", err)
	}

	if err := s.HandleByPostID(post.ID); err != nil {
		t.Fatalf("handle reports: %v", err)
	}

	var pending int64
	gdb.Model(&model.Report{}).Where("post_id = ? AND handle_at IS NULL", post.ID).Count(&pending)
	if pending != 0 {
		t.Errorf("pending reports left: %d", pending)
	}

	// 已处理的举报时间不被覆盖
	var done model.Report
	gdb.First(&done, reports[2].ID)
	if done.HandleAt == nil || done.HandleAt.Sub(handled).Abs() > time.Second {
		t.Error("already handled report must keep its original handle time")
	}
}
