package service

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// RenderService Markdown 渲染：raw → cooked。
// 主题首帖使用更完整的扩展集（脚注、印刷体替换），普通回帖使用基础集。
// 输出统一经过 bluemonday 白名单过滤，原始 HTML 不会透传。
type RenderService struct {
	topicMD  goldmark.Markdown
	postMD   goldmark.Markdown
	sanitize *bluemonday.Policy
}

func NewRenderService() *RenderService {
	postExt := goldmark.WithExtensions(extension.GFM)
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a", "span", "input")
	policy.AllowAttrs("type", "checked", "disabled").OnElements("input")

	return &RenderService{
		topicMD: goldmark.New(
			postExt,
			goldmark.WithExtensions(extension.Footnote, extension.Typographer),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		postMD: goldmark.New(
			postExt,
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		sanitize: policy,
	}
}

// RenderTopic 渲染主题首帖
func (s *RenderService) RenderTopic(raw string) string {
	return s.render(s.topicMD, raw)
}

// RenderPost 渲染普通回帖
func (s *RenderService) RenderPost(raw string) string {
	return s.render(s.postMD, raw)
}

func (s *RenderService) render(md goldmark.Markdown, raw string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(raw), &buf); err != nil {
		// goldmark 对合法 UTF-8 输入不会失败，兜底返回转义后的原文
		return s.sanitize.Sanitize(raw)
	}
	return s.sanitize.Sanitize(buf.String())
}
