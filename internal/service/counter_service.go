package service

import (
	"log"

	"bicarb-server/internal/model"

	"gorm.io/gorm"
)

// RecountAll 从明细表重算所有计数字段，用于修复漂移：
// user.topicCount / user.postCount、category.topicCount、
// topic.postIndex / lastReplyAt / lastReplyBy。
func (s *CounterService) RecountAll() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.recountUsers(tx); err != nil {
			return err
		}
		if err := s.recountCategories(tx); err != nil {
			return err
		}
		if err := s.recountTopics(tx); err != nil {
			return err
		}
		log.Printf("✅ 计数校准完成")
		return nil
	})
}

func (s *CounterService) recountUsers(tx *gorm.DB) error {
	if err := tx.Exec(`
		UPDATE users SET topic_count = (
			SELECT COUNT(*) FROM topics WHERE topics.author_id = users.id
		)`).Error; err != nil {
		return err
	}
	// postCount 不含楼主帖（idx = 0）
	return tx.Exec(`
		UPDATE users SET post_count = (
			SELECT COUNT(*) FROM posts WHERE posts.author_id = users.id AND posts.idx > 0
		)`).Error
}

func (s *CounterService) recountCategories(tx *gorm.DB) error {
	return tx.Exec(`
		UPDATE categories SET topic_count = (
			SELECT COUNT(*) FROM topic_categories
			WHERE topic_categories.category_id = categories.id
		)`).Error
}

func (s *CounterService) recountTopics(tx *gorm.DB) error {
	var topics []model.Topic
	return tx.FindInBatches(&topics, 100, func(batch *gorm.DB, _ int) error {
		for i := range topics {
			topic := &topics[i]
			var last model.Post
			err := tx.Where("topic_id = ?", topic.ID).Order("idx DESC").Limit(1).Take(&last).Error
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					continue
				}
				return err
			}
			topic.PostIndex = last.Index
			if last.Index > 0 {
				topic.LastReplyAt = last.CreateAt
				topic.LastReplyID = &last.AuthorID
			}
			if err := tx.Save(topic).Error; err != nil {
				return err
			}
		}
		return nil
	}).Error
}
