package hook

import (
	"log"

	"bicarb-server/internal/consts"
	"bicarb-server/internal/model"
	"bicarb-server/internal/perm"
	"bicarb-server/internal/pipeline"
	platformservice "bicarb-server/internal/platform/service"
	"bicarb-server/internal/utils"
)

func registerPostHooks(p *pipeline.Pipeline, d Deps) {
	// 回帖准备：楼层号 = 主题当前楼层 + 1，渲染、记 IP 与默认值
	p.Register(model.KindPost, pipeline.PhasePreSecurity, perm.OpCreate, "", func(ctx *pipeline.Context) error {
		post := ctx.Entity.(*model.Post)

		if err := utils.Validate(post); err != nil {
			return platformservice.NewValidationError(err.Error())
		}
		if ctx.Requester == nil {
			return platformservice.NewUnauthorizedError("authentication required")
		}
		post.AuthorID = ctx.Requester.ID

		topic, err := d.TopicStore.FindByID(post.TopicID)
		if err != nil {
			return platformservice.NewNotFoundError("unknown topic")
		}
		post.Topic = topic
		post.Index = topic.PostIndex + 1
		post.Cooked = d.Render.RenderPost(post.Raw)
		post.IP = ctx.ClientIP
		post.Delete = false
		post.CreateAt = ctx.Now
		log.Printf("prepare post: topic=%d index=%d author=%d", post.TopicID, post.Index, post.AuthorID)
		return nil
	})

	// 回帖落库：提及通知、楼主 REPLY 通知、计数与最后回复、写索引
	p.Register(model.KindPost, pipeline.PhasePreCommit, perm.OpCreate, "", func(ctx *pipeline.Context) error {
		post := ctx.Entity.(*model.Post)

		if err := d.Posts.HandleCreateMention(ctx.DB, post); err != nil {
			return err
		}

		topic, err := d.TopicStore.WithTx(ctx.DB).FindByID(post.TopicID)
		if err != nil {
			return err
		}

		// 自己回自己的主题不发 REPLY
		if topic.AuthorID != post.AuthorID {
			notification := model.Notification{
				Type:     model.NotificationReply,
				SendID:   post.AuthorID,
				ToID:     topic.AuthorID,
				PostID:   post.ID,
				TopicID:  post.TopicID,
				CreateAt: ctx.Now,
			}
			if err := d.NotificationStore.WithTx(ctx.DB).CreateAll([]model.Notification{notification}); err != nil {
				return err
			}
			log.Printf("user [%d] reply to [%d] in post [%d]", post.AuthorID, topic.AuthorID, post.ID)
		}

		author, err := d.UserStore.WithTx(ctx.DB).FindByID(post.AuthorID)
		if err != nil {
			return err
		}
		author.PostCount++
		if err := d.UserStore.WithTx(ctx.DB).Save(author); err != nil {
			return err
		}

		topic.PostIndex = post.Index
		topic.LastReplyAt = ctx.Now
		authorID := post.AuthorID
		topic.LastReplyID = &authorID
		if err := d.TopicStore.WithTx(ctx.DB).Save(topic); err != nil {
			return err
		}

		return d.Search.IndexPost(ctx.DB, post, topic.Title)
	})

	// 编辑正文：0 楼按主题口径重渲染，记录编辑时间，差量提及通知，刷新索引
	p.Register(model.KindPost, pipeline.PhasePreCommit, perm.OpUpdate, consts.FieldRaw, func(ctx *pipeline.Context) error {
		post := ctx.Entity.(*model.Post)

		if post.Index == 0 {
			post.Cooked = d.Render.RenderTopic(post.Raw)
		} else {
			post.Cooked = d.Render.RenderPost(post.Raw)
		}
		now := ctx.Now
		post.LastEditAt = &now

		oldRaw := ""
		if ctx.Change != nil {
			if s, ok := ctx.Change.Old.(string); ok {
				oldRaw = s
			}
		}
		if err := d.Posts.HandleUpdateMention(ctx.DB, post, oldRaw); err != nil {
			return err
		}

		topic, err := d.TopicStore.WithTx(ctx.DB).FindByID(post.TopicID)
		if err != nil {
			return err
		}
		return d.Search.IndexPost(ctx.DB, post, topic.Title)
	})

	// 删除/恢复：记录操作者
	p.Register(model.KindPost, pipeline.PhasePreSecurity, perm.OpUpdate, consts.FieldDelete, func(ctx *pipeline.Context) error {
		post := ctx.Entity.(*model.Post)
		if ctx.Requester != nil {
			id := ctx.Requester.ID
			post.DeleteByID = &id
		}
		return nil
	})

	// 删除清索引，恢复重建
	p.Register(model.KindPost, pipeline.PhasePreCommit, perm.OpUpdate, consts.FieldDelete, func(ctx *pipeline.Context) error {
		post := ctx.Entity.(*model.Post)
		if post.Delete {
			return d.Search.PurgePost(ctx.DB, post.ID)
		}
		topic, err := d.TopicStore.WithTx(ctx.DB).FindByID(post.TopicID)
		if err != nil {
			return err
		}
		return d.Search.IndexPost(ctx.DB, post, topic.Title)
	})
}
