package service

import (
	"errors"
	"log"
	"strconv"
	"time"

	"bicarb-server/internal/config"
	"bicarb-server/internal/model"
	"bicarb-server/internal/perm"
	platformservice "bicarb-server/internal/platform/service"
	"bicarb-server/internal/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const actionTokenDuration = 24 * time.Hour

// Login 用户名 + 密码换取登录令牌。
func (s *UserService) Login(username, password, clientIP string) (string, *model.User, error) {
	user, err := s.userStore.FindByUsernameIgnoreCase(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, platformservice.NewUnauthorizedError("用户名或密码错误")
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, platformservice.NewUnauthorizedError("用户名或密码错误")
	}

	now := time.Now()
	user.LastSignInAt = &now
	user.LastSignIP = clientIP
	if err := s.userStore.Save(user); err != nil {
		return "", nil, err
	}

	duration := time.Duration(config.Get().JWT.ExpirationHours) * time.Hour
	token, err := utils.GenerateLoginToken(user.ID, user.Username, duration)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// PatchPassword 修改密码，需提供当前密码。
func (s *UserService) PatchPassword(userID uint, newPassword, confirmPassword string) error {
	user, err := s.userStore.FindByID(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(confirmPassword)); err != nil {
		return platformservice.NewUnprocessableError("wrong confirmPassword")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	if err := s.userStore.Save(user); err != nil {
		return err
	}
	ExpireSessions(user.ID)
	return nil
}

// SendActiveEmail 签发激活令牌并异步发送激活邮件；已激活账号报错。
func (s *UserService) SendActiveEmail(userID uint) error {
	user, err := s.userStore.FindByID(userID)
	if err != nil {
		return err
	}
	if user.Active {
		return platformservice.NewValidationError("your account is already active")
	}

	token, err := utils.GenerateActionToken(user.ID, utils.TokenTypeEmailVerify, actionTokenDuration)
	if err != nil {
		return err
	}

	verifyURL := config.Get().Forum.BaseURL + "/api/user/email/verify/" + token
	go func() {
		if err := SendActiveEmail(user, verifyURL); err != nil {
			log.Printf("❌ 激活邮件发送失败: user=%d, err=%v", user.ID, err)
		}
	}()
	return nil
}

// ActivateByToken 校验激活令牌并激活账号。
// 返回状态："success" | "alreadyActive"，令牌无效返回错误。
func (s *UserService) ActivateByToken(token string) (string, error) {
	claims, err := utils.ParseActionToken(token, utils.TokenTypeEmailVerify)
	if err != nil {
		return "", platformservice.NewValidationError("invalid token")
	}

	user, err := s.userStore.FindByID(claims.ID)
	if err != nil {
		return "", err
	}
	if user.Active {
		return "alreadyActive", nil
	}

	user.Active = true
	if err := s.userStore.Save(user); err != nil {
		return "", err
	}
	ExpireSessions(user.ID)
	return "success", nil
}

// SendResetPasswordEmail 发送密码重置邮件。
// 账号不存在时同样静默返回，不暴露邮箱是否注册。
func (s *UserService) SendResetPasswordEmail(email string) error {
	user, err := s.userStore.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	token, err := utils.GenerateActionToken(user.ID, utils.TokenTypePasswordReset, actionTokenDuration)
	if err != nil {
		return err
	}

	resetURL := config.Get().Forum.BaseURL + "/password/reset/" + token
	go func() {
		if err := SendResetPasswordEmail(user, resetURL); err != nil {
			log.Printf("❌ 密码重置邮件发送失败: user=%d, err=%v", user.ID, err)
		}
	}()
	return nil
}

// ResetPassword 重置令牌换新密码。
func (s *UserService) ResetPassword(token, newPassword string) error {
	claims, err := utils.ParseActionToken(token, utils.TokenTypePasswordReset)
	if err != nil {
		return platformservice.NewValidationError("invalid token")
	}

	user, err := s.userStore.FindByID(claims.ID)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	if err := s.userStore.Save(user); err != nil {
		return err
	}
	ExpireSessions(user.ID)
	return nil
}

// HasAnyUser 用户表是否已有记录，管理员引导注册只在首位用户时放行。
func (s *UserService) HasAnyUser() (bool, error) {
	count, err := s.userStore.Count()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PromoteToAdmin 把用户提升到 1 号组并直接激活，仅用于首位用户引导。
func (s *UserService) PromoteToAdmin(user *model.User) error {
	user.GroupID = model.GroupAdmin
	user.Active = true
	return s.userStore.Save(user)
}

// FindByIDOrUsername 路径参数既可以是数字 ID 也可以是用户名。
func (s *UserService) FindByIDOrUsername(idOrUsername string) (*model.User, error) {
	if id, err := strconv.ParseUint(idOrUsername, 10, 64); err == nil {
		return s.userStore.FindByID(uint(id))
	}
	return s.userStore.FindByUsernameIgnoreCase(idOrUsername)
}

// Requester 从用户及其所在组构建权限主体。
func (s *UserService) Requester(user *model.User) *perm.Requester {
	return &perm.Requester{
		ID:          user.ID,
		Username:    user.Username,
		Active:      user.Active,
		LockedUntil: user.LockedUntil,
		Permissions: user.Group.PermissionSet(),
	}
}
