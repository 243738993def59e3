package service

import (
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"bicarb-server/internal/model"
	platformservice "bicarb-server/internal/platform/service"

	"gorm.io/gorm"
)

// NextPosition 同级最大 position + 1，空层级从 0 开始。
func (s *CategoryService) NextPosition(tx *gorm.DB, parentID *uint) (int, error) {
	store := s.categoryStore.WithTx(tx)
	max, ok, err := store.MaxPosition(parentID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return max + 1, nil
}

// IncludeParents 返回分类自身及其所有祖先。
func (s *CategoryService) IncludeParents(tx *gorm.DB, category *model.Category) ([]model.Category, error) {
	store := s.categoryStore.WithTx(tx)
	result := []model.Category{*category}
	seen := map[uint]struct{}{category.ID: {}}

	current := category
	for current.ParentID != nil {
		parent, err := store.FindByID(*current.ParentID)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[parent.ID]; dup {
			// 数据损坏形成环，终止遍历
			log.Printf("⚠️ 分类层级存在环: category=%d", parent.ID)
			break
		}
		seen[parent.ID] = struct{}{}
		result = append(result, *parent)
		current = parent
	}
	return result, nil
}

// PatchLocation 移动分类：调整 position、parent 或两者。
// position 与 parentID 不能同时为空；换父时同步维护 topic_categories
// 冗余关系与各祖先的 topicCount；同级让位逐个落库，避免唯一约束冲突。
func (s *CategoryService) PatchLocation(categoryID uint, position *int, parentID *uint) error {
	if position == nil && parentID == nil {
		return platformservice.NewUnprocessableError("position and parentId should not be null at the same time")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		store := s.categoryStore.WithTx(tx)

		patched, err := store.FindByID(categoryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return platformservice.NewNotFoundError(fmt.Sprintf("unknown identifier '%d' for category", categoryID))
			}
			return err
		}

		var newParent *model.Category

		if parentID != nil {
			newParent, err = store.FindByID(*parentID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return platformservice.NewNotFoundError(fmt.Sprintf("unknown identifier '%d' for parentId", *parentID))
				}
				return err
			}

			// 新父链上不允许出现自身
			current := newParent
			for current != nil {
				if current.ID == patched.ID {
					return platformservice.NewUnprocessableError("new parent category cannot be its subcategory or itself")
				}
				if current.ParentID == nil {
					current = nil
					break
				}
				current, err = store.FindByID(*current.ParentID)
				if err != nil {
					return err
				}
			}

			sameParent := patched.ParentID != nil && *patched.ParentID == newParent.ID
			if !sameParent {
				if err := s.applyParentChange(tx, patched, newParent); err != nil {
					return err
				}
			}
		}

		// 目标父层级下的让位；parentID 为空且 position 未变时跳过
		if position != nil && !(parentID == nil && *position == patched.Position) {
			targetParent := patched.ParentID
			if parentID != nil {
				targetParent = parentID
			}
			siblings, err := store.FindByParentOrderByPositionDesc(targetParent)
			if err != nil {
				return err
			}
			for i := range siblings {
				sibling := &siblings[i]
				if sibling.ID == patched.ID || sibling.Position < *position {
					continue
				}
				sibling.Position++
				if err := store.Save(sibling); err != nil {
					return err
				}
			}
			patched.Position = *position
		}

		// 只给了 parentID 时退回「排到最后」
		if parentID != nil && position == nil {
			next, err := s.NextPosition(tx, parentID)
			if err != nil {
				return err
			}
			patched.Position = next
		}

		if parentID != nil {
			patched.ParentID = parentID
		}
		return store.Save(patched)
	})
}

// applyParentChange 计算新旧祖先链的对称差，增删 topic_categories 冗余关系
// 并同步 topicCount。
func (s *CategoryService) applyParentChange(tx *gorm.DB, patched *model.Category, newParent *model.Category) error {
	store := s.categoryStore.WithTx(tx)

	ancestors := func(c *model.Category) (map[uint]*model.Category, error) {
		set := make(map[uint]*model.Category)
		for c != nil {
			set[c.ID] = c
			if c.ParentID == nil {
				break
			}
			parent, err := store.FindByID(*c.ParentID)
			if err != nil {
				return nil, err
			}
			c = parent
		}
		return set, nil
	}

	oldSet := map[uint]*model.Category{}
	if patched.ParentID != nil {
		oldParent, err := store.FindByID(*patched.ParentID)
		if err != nil {
			return err
		}
		if oldSet, err = ancestors(oldParent); err != nil {
			return err
		}
	}
	newSet, err := ancestors(newParent)
	if err != nil {
		return err
	}

	for id, category := range newSet {
		if _, kept := oldSet[id]; kept {
			continue
		}
		category.TopicCount += patched.TopicCount
		if err := store.Save(category); err != nil {
			return err
		}
		if err := store.AddTopicRelations(patched.ID, category.ID); err != nil {
			return err
		}
	}
	for id, category := range oldSet {
		if _, kept := newSet[id]; kept {
			continue
		}
		category.TopicCount -= patched.TopicCount
		if err := store.Save(category); err != nil {
			return err
		}
		if err := store.RemoveTopicRelations(patched.ID, category.ID); err != nil {
			return err
		}
	}

	s.InvalidateTopicListing()
	return nil
}

// 话题列表缓存代数，每次失效 +1。Redis 不可用时进程内缓存以此判旧。
var topicListingGen atomic.Uint64

// TopicListingGeneration 当前话题列表缓存代数。
func TopicListingGeneration() uint64 {
	return topicListingGen.Load()
}

// InvalidateTopicListing 分类结构变化（移动、删除）后失效话题列表缓存。
func (s *CategoryService) InvalidateTopicListing() {
	topicListingGen.Add(1)

	redisClient := GetRedisClient()
	if redisClient == nil {
		return
	}
	ctx, cancel := redisContext()
	defer cancel()
	if err := redisClient.Del(ctx, RedisKey("cache", "topics")).Err(); err != nil {
		log.Printf("⚠️ 话题列表缓存失效失败: %v", err)
	}
}
