package utils

import "github.com/gosimple/slug"

// Slugify 生成 URL 友好的 slug，空结果回退为 "untitled"。
func Slugify(s string) string {
	out := slug.Make(s)
	if out == "" {
		return "untitled"
	}
	return out
}
