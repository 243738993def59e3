package model

import "strings"

// 预定义用户组，不可删除。
const (
	GroupAdmin uint = 1
	GroupMod   uint = 2
	GroupUser  uint = 3
)

type Group struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"unique;not null;size:30" validate:"required,min=1,max=30"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Permissions string `json:"permissions" gorm:"type:text"` // 逗号分隔的权限名集合
}

func (g *Group) PermissionSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, p := range strings.Split(g.Permissions, ",") {
		if p = strings.TrimSpace(p); p != "" {
			set[p] = struct{}{}
		}
	}
	return set
}

func (g *Group) HasPermission(name string) bool {
	_, ok := g.PermissionSet()[name]
	return ok
}

func IsPredefinedGroup(id uint) bool {
	return id == GroupAdmin || id == GroupMod || id == GroupUser
}
