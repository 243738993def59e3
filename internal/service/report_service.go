package service

import (
	"errors"
	"fmt"
	"time"

	platformservice "bicarb-server/internal/platform/service"

	"gorm.io/gorm"
)

// HandleByPostID 一键处理某帖子下的全部未处理举报。
func (s *ReportService) HandleByPostID(postID uint) error {
	if _, err := s.postStore.FindByID(postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return platformservice.NewNotFoundError(fmt.Sprintf("unknown identifier '%d' for post", postID))
		}
		return err
	}
	_, err := s.reportStore.HandleByPost(postID, time.Now())
	return err
}
