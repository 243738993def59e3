package hook

import (
	"errors"

	"bicarb-server/internal/consts"
	"bicarb-server/internal/model"
	"bicarb-server/internal/perm"
	"bicarb-server/internal/pipeline"
	platformservice "bicarb-server/internal/platform/service"
	"bicarb-server/internal/service"
	"bicarb-server/internal/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func registerUserHooks(p *pipeline.Pipeline, d Deps) {
	// 注册：唯一性冲突聚合报告（4091 用户名 / 4092 邮箱 / 4093 昵称），
	// 密码散列，默认值与 3 号组归属。
	p.Register(model.KindUser, pipeline.PhasePreSecurity, perm.OpCreate, "", func(ctx *pipeline.Context) error {
		user := ctx.Entity.(*model.User)

		if err := utils.Validate(user); err != nil {
			return platformservice.NewValidationError(err.Error())
		}

		store := d.UserStore.WithTx(ctx.DB)
		var reasons []platformservice.Reason

		if _, err := store.FindByUsernameIgnoreCase(user.Username); err == nil {
			reasons = append(reasons, platformservice.Reason{Code: "4091", Detail: "username conflict"})
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if _, err := store.FindByEmail(user.Email); err == nil {
			reasons = append(reasons, platformservice.Reason{Code: "4092", Detail: "email conflict"})
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if _, err := store.FindByNickname(user.Nickname); err == nil {
			reasons = append(reasons, platformservice.Reason{Code: "4093", Detail: "nickname conflict"})
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if len(reasons) > 0 {
			return platformservice.NewConflictError("register conflict", reasons...)
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user.Password = string(hashed)

		user.EmailPublic = false
		user.TopicCount = 0
		user.PostCount = 0
		user.Active = false
		user.CreateAt = ctx.Now

		if _, err := d.GroupStore.FindByID(model.GroupUser); err != nil {
			return platformservice.NewInternalError("group 3 must exist and represent 'user'")
		}
		user.GroupID = model.GroupUser
		return nil
	})

	// 锁定/解锁：记录操作时间
	p.Register(model.KindUser, pipeline.PhasePreSecurity, perm.OpUpdate, consts.FieldLockedUntil, func(ctx *pipeline.Context) error {
		user := ctx.Entity.(*model.User)
		now := ctx.Now
		user.LockedAt = &now
		return nil
	})

	// 锁定生效后作废该用户的现有会话
	p.Register(model.KindUser, pipeline.PhasePostCommit, perm.OpUpdate, consts.FieldLockedUntil, func(ctx *pipeline.Context) error {
		user := ctx.Entity.(*model.User)
		service.ExpireSessions(user.ID)
		return nil
	})
}
