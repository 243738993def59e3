package service

import (
	"log"

	"bicarb-server/internal/model"

	"gorm.io/gorm"
)

const rebuildBatchSize = 20

// IsIndexing 是否正在重建索引。
func (s *SearchService) IsIndexing() bool {
	return s.indexing.Load()
}

// Query 按关键词搜索帖子文档，返回命中列表与总数。
func (s *SearchService) Query(keyword string, offset, limit int) ([]model.SearchDocument, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.searchStore.Search(keyword, offset, limit)
}

// IndexPost 写入（或覆盖）单个帖子的索引文档。
func (s *SearchService) IndexPost(tx *gorm.DB, post *model.Post, title string) error {
	return s.searchStore.WithTx(tx).Upsert(&model.SearchDocument{
		PostID:  post.ID,
		TopicID: post.TopicID,
		Title:   title,
		Content: post.Cooked,
	})
}

// PurgePost 从索引中移除单个帖子。
func (s *SearchService) PurgePost(tx *gorm.DB, postID uint) error {
	return s.searchStore.WithTx(tx).DeleteByPost(postID)
}

// SyncTopicDelete 主题删除/恢复时同步其全部帖子的索引。
func (s *SearchService) SyncTopicDelete(tx *gorm.DB, topic *model.Topic) error {
	store := s.searchStore.WithTx(tx)
	if topic.Delete {
		return store.DeleteByTopic(topic.ID)
	}
	posts, err := s.postStore.WithTx(tx).FindByTopicOrderByIndex(topic.ID)
	if err != nil {
		return err
	}
	docs := make([]model.SearchDocument, 0, len(posts))
	for _, p := range posts {
		docs = append(docs, model.SearchDocument{
			PostID:  p.ID,
			TopicID: topic.ID,
			Title:   topic.Title,
			Content: p.Cooked,
		})
	}
	return store.UpsertAll(docs)
}

// SyncTopicTitle 主题改标题后刷新其所有文档的 title 字段。
func (s *SearchService) SyncTopicTitle(tx *gorm.DB, topic *model.Topic) error {
	return s.searchStore.WithTx(tx).UpdateTitleByTopic(topic.ID, topic.Title)
}

// MoreLikeThis 以指定帖子的索引文档为样本找相近帖子，排除该帖自身。
func (s *SearchService) MoreLikeThis(postID uint, offset, limit int) ([]model.SearchDocument, int64, error) {
	doc, err := s.searchStore.FindByPost(postID)
	if err != nil {
		return nil, 0, err
	}
	return s.searchStore.SearchSimilar(doc, offset, limit)
}

// SafeRebuild 增量重建：不清表，逐批扫描帖子覆盖写入文档。
// 同一时刻只允许一次重建，已有重建在跑时返回 (nil, false)；
// 抢到标志后重建体在后台跑，完成结果从返回的通道读取。
func (s *SearchService) SafeRebuild() (<-chan error, bool) {
	return s.scheduleRebuild(func() error {
		return s.rebuildByScan(false)
	})
}

// Rebuild 全量重建：先清空索引表再逐批写入。
func (s *SearchService) Rebuild() (<-chan error, bool) {
	return s.scheduleRebuild(func() error {
		return s.rebuildByScan(true)
	})
}

// scheduleRebuild CAS 抢占重建标志，抢不到直接返回 false。
func (s *SearchService) scheduleRebuild(fn func() error) (<-chan error, bool) {
	if !s.indexing.CompareAndSwap(false, true) {
		log.Printf("⚠️ 索引重建已在进行中，忽略本次请求")
		return nil, false
	}

	done := make(chan error, 1)
	go func() {
		err := fn()
		if err != nil {
			log.Printf("❌ 索引重建失败: %v", err)
		} else {
			log.Printf("✅ 索引重建完成")
		}
		// 先清标志再发完成信号，读到信号的一方必然看到标志已复位
		s.indexing.Store(false)
		done <- err
	}()
	return done, true
}

func (s *SearchService) rebuildByScan(purgeFirst bool) error {
	if purgeFirst {
		if err := s.searchStore.Purge(); err != nil {
			return err
		}
	}

	var posts []model.Post
	return s.db.Model(&model.Post{}).Preload("Topic").
		FindInBatches(&posts, rebuildBatchSize, func(tx *gorm.DB, batch int) error {
			docs := make([]model.SearchDocument, 0, len(posts))
			for _, p := range posts {
				if p.Delete || p.Topic == nil || p.Topic.Delete {
					continue
				}
				docs = append(docs, model.SearchDocument{
					PostID:  p.ID,
					TopicID: p.TopicID,
					Title:   p.Topic.Title,
					Content: p.Cooked,
				})
			}
			return s.searchStore.UpsertAll(docs)
		}).Error
}
