package service

import (
	"bicarb-server/internal/model"
	platformservice "bicarb-server/internal/platform/service"

	"gorm.io/gorm"
)

// FindAll 所有用户组。
func (s *GroupService) FindAll() ([]model.Group, error) {
	return s.groupStore.FindAll()
}

// FindByID 按 ID 查组。
func (s *GroupService) FindByID(id uint) (*model.Group, error) {
	return s.groupStore.FindByID(id)
}

// ReassignMembers 删除组前把成员迁回 3 号普通用户组。
// 1/2/3 号预定义组不可删除。
func (s *GroupService) ReassignMembers(tx *gorm.DB, group *model.Group) error {
	if model.IsPredefinedGroup(group.ID) {
		return platformservice.NewForbiddenError("delete predefine group is not allowed")
	}
	if _, err := s.groupStore.WithTx(tx).FindByID(model.GroupUser); err != nil {
		return platformservice.NewInternalError("group 3 must exist and represent 'user'")
	}
	return s.userStore.WithTx(tx).ReassignGroup(group.ID, model.GroupUser)
}
