package model

// Kind 实体类别，作为权限表与生命周期钩子的注册键。
type Kind string

const (
	KindUser         Kind = "user"
	KindGroup        Kind = "group"
	KindCategory     Kind = "category"
	KindTopic        Kind = "topic"
	KindPost         Kind = "post"
	KindNotification Kind = "notification"
	KindReport       Kind = "report"
)
