package handler

import (
	"net/http"
	"testing"

	"bicarb-server/internal/model"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// 测试内容：注册 → 登录全流程，含重复注册的 409 错误码明细。
func TestRegisterAndLogin(t *testing.T) {
	gdb, r := setupTestRouter(t)

	payload := gin.H{
		"username": "alice",
		"nickname": "Alice",
		"email":    "alice@example.com",
		"password": "secret-pw",
	}
	w := doJSON(t, r, http.MethodPost, "/api/register", "", payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("register 期望 201，实际为 %d body=%s", w.Code, w.Body.String())
	}

	// 注册后账号未激活但可登录
	var stored model.User
	if err := gdb.Where("username = ?", "alice").Take(&stored).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.Active {
		t.Error("new account must start inactive")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret-pw")) != nil {
		t.Error("password not hashed correctly")
	}

	w = doJSON(t, r, http.MethodPost, "/api/login", "", gin.H{"username": "alice", "password": "secret-pw"})
	if w.Code != http.StatusOK {
		t.Fatalf("login 期望 200，实际为 %d body=%s", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["token"] == "" {
		t.Error("login should return a token")
	}

	// 重复注册：三处冲突逐项报告
	w = doJSON(t, r, http.MethodPost, "/api/register", "", payload)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register 期望 409，实际为 %d", w.Code)
	}
	reasons, _ := decodeBody(t, w)["errors"].([]any)
	if len(reasons) != 3 {
		t.Errorf("want 3 conflict reasons, got %v", reasons)
	}
}

// 测试内容：缺字段的注册请求返回 400。
func TestRegisterMissingFields(t *testing.T) {
	_, r := setupTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{"username": "bob"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("期望 400，实际为 %d", w.Code)
	}
}

// 测试内容：管理员引导注册只对首位用户开放，成功后直接归入 1 号组并激活。
func TestRegisterAdminFirstUserOnly(t *testing.T) {
	gdb, r := setupTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/admin", "", gin.H{
		"username": "root",
		"nickname": "Root",
		"email":    "root@example.com",
		"password": "secret123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("admin register 期望 201，实际为 %d body=%s", w.Code, w.Body.String())
	}

	var stored model.User
	if err := gdb.Where("username = ?", "root").Take(&stored).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.GroupID != model.GroupAdmin {
		t.Errorf("group = %d, want %d", stored.GroupID, model.GroupAdmin)
	}
	if !stored.Active {
		t.Error("bootstrap admin should be active")
	}

	// 已有用户后再调用被拒绝
	w = doJSON(t, r, http.MethodPost, "/api/admin", "", gin.H{
		"username": "second",
		"nickname": "Second",
		"email":    "second@example.com",
		"password": "secret123",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("second admin register 期望 403，实际为 %d", w.Code)
	}
}

// 测试内容：字段语义校验失败（格式合法但取值非法）返回 422。
func TestRegisterSemanticValidation(t *testing.T) {
	_, r := setupTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{
		"username": "bob",
		"nickname": "Bob",
		"email":    "not-an-email",
		"password": "secret123",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("期望 422，实际为 %d body=%s", w.Code, w.Body.String())
	}
}

// 测试内容：错误密码登录返回 401。
func TestLoginWrongPassword(t *testing.T) {
	_, r := setupTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{
		"username": "carol",
		"nickname": "Carol",
		"email":    "carol@example.com",
		"password": "right-pw",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register 期望 201，实际为 %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/login", "", gin.H{"username": "carol", "password": "wrong-pw"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("期望 401，实际为 %d", w.Code)
	}
}
