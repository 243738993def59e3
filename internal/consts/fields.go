package consts

// 字段名常量，作为权限表与钩子注册中 field 维度的键。
const (
	FieldTitle       = "title"
	FieldCategories  = "categories"
	FieldBody        = "body"
	FieldLocked      = "locked"
	FieldDelete      = "delete"
	FieldPinned      = "pinned"
	FieldFeature     = "feature"
	FieldRaw         = "raw"
	FieldLockedUntil = "lockedUntil"
	FieldReadAt      = "readAt"
	FieldHandleAt    = "handleAt"
)
