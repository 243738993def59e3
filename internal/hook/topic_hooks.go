package hook

import (
	"fmt"

	"bicarb-server/internal/consts"
	"bicarb-server/internal/model"
	"bicarb-server/internal/perm"
	"bicarb-server/internal/pipeline"
	platformservice "bicarb-server/internal/platform/service"
	"bicarb-server/internal/utils"
)

func registerTopicHooks(p *pipeline.Pipeline, d Deps) {
	// 创建准备：body 必填，恰好一个分类（祖先自动补齐），slug 与默认值
	p.Register(model.KindTopic, pipeline.PhasePreSecurity, perm.OpCreate, "", func(ctx *pipeline.Context) error {
		topic := ctx.Entity.(*model.Topic)

		if err := utils.Validate(topic); err != nil {
			return platformservice.NewValidationError(err.Error())
		}
		if topic.Body == "" {
			return platformservice.NewValidationError("body should not be null")
		}
		if ctx.Requester == nil {
			return platformservice.NewUnauthorizedError("authentication required")
		}
		topic.AuthorID = ctx.Requester.ID

		if len(topic.Categories) != 1 {
			return platformservice.NewValidationError(
				"categories should have only one category, its parents will be added automatically")
		}
		category, err := d.CategoryStore.FindByID(topic.Categories[0].ID)
		if err != nil {
			return platformservice.NewNotFoundError("unknown category")
		}
		withParents, err := d.Categories.IncludeParents(ctx.DB, category)
		if err != nil {
			return err
		}
		topic.Categories = withParents

		topic.Slug = utils.Slugify(topic.Title)
		topic.PostIndex = 0
		topic.Locked = false
		topic.Delete = false
		topic.Pinned = false
		topic.Feature = false
		topic.CreateAt = ctx.Now
		topic.LastReplyAt = ctx.Now
		return nil
	})

	// 首帖生成：渲染 body 为 0 楼帖，处理提及，累加作者与分类计数
	p.Register(model.KindTopic, pipeline.PhasePreCommit, perm.OpCreate, "", func(ctx *pipeline.Context) error {
		topic := ctx.Entity.(*model.Topic)

		post := &model.Post{
			Raw:      topic.Body,
			Cooked:   d.Render.RenderTopic(topic.Body),
			TopicID:  topic.ID,
			AuthorID: topic.AuthorID,
			Index:    0,
			IP:       ctx.ClientIP,
			Delete:   false,
			CreateAt: ctx.Now,
		}
		if err := d.PostStore.WithTx(ctx.DB).Create(post); err != nil {
			return err
		}
		if err := d.Posts.HandleCreateMention(ctx.DB, post); err != nil {
			return err
		}
		if err := d.PostStore.WithTx(ctx.DB).Save(post); err != nil {
			return err
		}
		if err := d.Search.IndexPost(ctx.DB, post, topic.Title); err != nil {
			return err
		}

		author, err := d.UserStore.WithTx(ctx.DB).FindByID(topic.AuthorID)
		if err != nil {
			return err
		}
		author.TopicCount++
		if err := d.UserStore.WithTx(ctx.DB).Save(author); err != nil {
			return err
		}

		store := d.CategoryStore.WithTx(ctx.DB)
		for i := range topic.Categories {
			category, err := store.FindByID(topic.Categories[i].ID)
			if err != nil {
				return err
			}
			category.TopicCount++
			if err := store.Save(category); err != nil {
				return err
			}
			topic.Categories[i].TopicCount = category.TopicCount
		}
		return nil
	})

	// 改标题：同步 slug
	p.Register(model.KindTopic, pipeline.PhasePreSecurity, perm.OpUpdate, consts.FieldTitle, func(ctx *pipeline.Context) error {
		topic := ctx.Entity.(*model.Topic)
		topic.Slug = utils.Slugify(topic.Title)
		return nil
	})

	// 改标题：刷新该主题所有帖子的索引文档标题
	p.Register(model.KindTopic, pipeline.PhasePreCommit, perm.OpUpdate, consts.FieldTitle, func(ctx *pipeline.Context) error {
		topic := ctx.Entity.(*model.Topic)
		return d.Search.SyncTopicTitle(ctx.DB, topic)
	})

	// 换分类：校验新分类存在并展开祖先闭包
	p.Register(model.KindTopic, pipeline.PhasePreSecurity, perm.OpUpdate, consts.FieldCategories, func(ctx *pipeline.Context) error {
		topic := ctx.Entity.(*model.Topic)

		categoryID, ok := ctx.Change.New.(uint)
		if !ok {
			return platformservice.NewValidationError("category id required")
		}
		category, err := d.CategoryStore.FindByID(categoryID)
		if err != nil {
			return platformservice.NewNotFoundError(fmt.Sprintf("Unknown identifier '%d' for category", categoryID))
		}
		withParents, err := d.Categories.IncludeParents(ctx.DB, category)
		if err != nil {
			return err
		}
		topic.Categories = withParents
		return nil
	})

	// 换分类落库：新闭包计数 +1、旧集合计数 -1，冗余关系整体替换
	p.Register(model.KindTopic, pipeline.PhasePreCommit, perm.OpUpdate, consts.FieldCategories, func(ctx *pipeline.Context) error {
		topic := ctx.Entity.(*model.Topic)
		oldCategories, _ := ctx.Change.Old.([]model.Category)

		store := d.CategoryStore.WithTx(ctx.DB)
		for i := range topic.Categories {
			category, err := store.FindByID(topic.Categories[i].ID)
			if err != nil {
				return err
			}
			category.TopicCount++
			if err := store.Save(category); err != nil {
				return err
			}
		}
		for i := range oldCategories {
			category, err := store.FindByID(oldCategories[i].ID)
			if err != nil {
				return err
			}
			category.TopicCount--
			if err := store.Save(category); err != nil {
				return err
			}
		}

		if err := d.TopicStore.WithTx(ctx.DB).ReplaceCategories(topic.ID, topic.Categories); err != nil {
			return err
		}
		d.Categories.InvalidateTopicListing()
		return nil
	})

	// 锁定/解锁：记录操作者
	p.Register(model.KindTopic, pipeline.PhasePreSecurity, perm.OpUpdate, consts.FieldLocked, func(ctx *pipeline.Context) error {
		topic := ctx.Entity.(*model.Topic)
		if ctx.Requester != nil {
			id := ctx.Requester.ID
			topic.LockedByID = &id
		}
		return nil
	})

	// 删除/恢复：记录操作者
	p.Register(model.KindTopic, pipeline.PhasePreSecurity, perm.OpUpdate, consts.FieldDelete, func(ctx *pipeline.Context) error {
		topic := ctx.Entity.(*model.Topic)
		if ctx.Requester != nil {
			id := ctx.Requester.ID
			topic.DeleteByID = &id
		}
		return nil
	})

	// 删除/恢复：同步整棵帖子的索引（删除清除、恢复重建）
	p.Register(model.KindTopic, pipeline.PhasePreCommit, perm.OpUpdate, consts.FieldDelete, func(ctx *pipeline.Context) error {
		topic := ctx.Entity.(*model.Topic)
		return d.Search.SyncTopicDelete(ctx.DB, topic)
	})
}
