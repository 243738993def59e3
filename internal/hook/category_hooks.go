package hook

import (
	"fmt"
	"log"

	"bicarb-server/internal/model"
	"bicarb-server/internal/perm"
	"bicarb-server/internal/pipeline"
	platformservice "bicarb-server/internal/platform/service"
	"bicarb-server/internal/utils"
)

func registerCategoryHooks(p *pipeline.Pipeline, d Deps) {
	// 创建准备：slug 缺省取自名称且必须唯一（4094），position 排到同级末尾
	p.Register(model.KindCategory, pipeline.PhasePreSecurity, perm.OpCreate, "", func(ctx *pipeline.Context) error {
		category := ctx.Entity.(*model.Category)

		if err := utils.Validate(category); err != nil {
			return platformservice.NewValidationError(err.Error())
		}
		if category.Slug == "" {
			category.Slug = utils.Slugify(category.Name)
		}
		store := d.CategoryStore.WithTx(ctx.DB)
		exists, err := store.ExistsBySlug(category.Slug)
		if err != nil {
			return err
		}
		if exists {
			return platformservice.NewConflictError("category slug conflict",
				platformservice.Reason{Code: "4094", Detail: fmt.Sprintf("slug[%s] is already exists", category.Slug)})
		}
		next, err := d.Categories.NextPosition(ctx.DB, category.ParentID)
		if err != nil {
			return err
		}
		category.Position = next
		category.TopicCount = 0
		return nil
	})

	// 删除落库（与删除同事务）：子分类整体上提为被删分类父级的子级，依次排到末尾
	p.Register(model.KindCategory, pipeline.PhasePreCommit, perm.OpDelete, "", func(ctx *pipeline.Context) error {
		category := ctx.Entity.(*model.Category)
		log.Printf("before delete category[%d %s]", category.ID, category.Slug)

		store := d.CategoryStore.WithTx(ctx.DB)
		id := category.ID
		children, err := store.FindByParentOrderByPositionDesc(&id)
		if err != nil {
			return err
		}
		for i := range children {
			child := &children[i]
			next, err := d.Categories.NextPosition(ctx.DB, category.ParentID)
			if err != nil {
				return err
			}
			log.Printf("change parent and position for category[%d]", child.ID)
			child.Position = next
			child.ParentID = category.ParentID
			if err := store.Save(child); err != nil {
				return err
			}
		}
		return nil
	})

	// 删除落库：清掉 topic_categories 里指向该分类的冗余关系，并失效话题列表缓存
	p.Register(model.KindCategory, pipeline.PhasePreCommit, perm.OpDelete, "", func(ctx *pipeline.Context) error {
		category := ctx.Entity.(*model.Category)
		if err := d.CategoryStore.WithTx(ctx.DB).RemoveAllRelations(category.ID); err != nil {
			return err
		}
		d.Categories.InvalidateTopicListing()
		return nil
	})
}
