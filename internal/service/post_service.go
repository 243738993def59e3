package service

import (
	"fmt"
	"log"
	"regexp"
	"time"

	"bicarb-server/internal/config"
	"bicarb-server/internal/model"
	repo "bicarb-server/internal/repository"

	"gorm.io/gorm"
)

// mentionPattern 提及标记：@ + 用户名 + 空格，用户名 1~30 个单词字符。
var mentionPattern = regexp.MustCompile(`@(\w{1,30}) `)

// HandleCreateMention 新帖：解析 cooked 中的提及，替换为用户链接并发送
// MENTION 通知。副作用：就地更新 post.Cooked。
func (s *PostService) HandleCreateMention(tx *gorm.DB, post *model.Post) error {
	return s.HandleUpdateMention(tx, post, "")
}

// HandleUpdateMention 编辑帖：oldRaw 中已出现过的用户名只换链接不再通知，
// 避免反复编辑刷通知。oldRaw 为空串表示新帖。
func (s *PostService) HandleUpdateMention(tx *gorm.DB, post *model.Post, oldRaw string) error {
	mentioned, err := s.resolveMentions(s.userStore.WithTx(tx), post, oldRaw)
	if err != nil {
		return err
	}
	return s.sendMentionNotifications(tx, mentioned, post)
}

// RewriteMentions 预览场景：只把提及替换为用户链接，不发通知不落库。
func (s *PostService) RewriteMentions(post *model.Post) error {
	_, err := s.resolveMentions(s.userStore, post, "")
	return err
}

// resolveMentions 返回本次需要通知的用户。
// 旧文本的提及集合是超集：其中可能含无效用户名，但仅用于抑制重复通知。
func (s *PostService) resolveMentions(userStore repo.UserStore, post *model.Post, oldRaw string) ([]model.User, error) {
	exist := make(map[string]struct{})
	if oldRaw != "" {
		for _, m := range mentionPattern.FindAllStringSubmatch(oldRaw, -1) {
			exist[m[1]] = struct{}{}
		}
	}

	userLinkFormat := config.Get().Forum.UserLinkFormat

	var mentioned []model.User
	var firstErr error
	cooked := mentionPattern.ReplaceAllStringFunc(post.Cooked, func(raw string) string {
		username := raw[1 : len(raw)-1]

		if _, ok := exist[username]; ok {
			return fmt.Sprintf(userLinkFormat, username, username)
		}

		user, err := userStore.FindByUsernameIgnoreCase(username)
		if err != nil {
			if err != gorm.ErrRecordNotFound && firstErr == nil {
				firstErr = err
			}
			return raw
		}
		mentioned = append(mentioned, *user)
		return fmt.Sprintf(userLinkFormat, username, username)
	})
	if firstErr != nil {
		return nil, firstErr
	}

	post.Cooked = cooked
	return mentioned, nil
}

func (s *PostService) sendMentionNotifications(tx *gorm.DB, users []model.User, post *model.Post) error {
	if len(users) == 0 {
		return nil
	}
	notifications := make([]model.Notification, 0, len(users))
	for _, u := range users {
		notifications = append(notifications, model.Notification{
			Type:     model.NotificationMention,
			SendID:   post.AuthorID,
			ToID:     u.ID,
			PostID:   post.ID,
			TopicID:  post.TopicID,
			CreateAt: time.Now(),
		})
		log.Printf("user [%d] mention [%s] in post [%d]", post.AuthorID, u.Username, post.ID)
	}
	return s.notificationStore.WithTx(tx).CreateAll(notifications)
}
