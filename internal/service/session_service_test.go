package service

import (
	"testing"
	"time"
)

func TestSessionInvalidation(t *testing.T) {
	const userID = uint(4242)

	// 从未失效过的用户，任意签发时间都有效
	if !SessionValidAt(userID, time.Now().Add(-time.Hour)) {
		t.Fatal("untouched user should have valid sessions")
	}

	issuedBefore := time.Now().Add(-time.Minute)
	ExpireSessions(userID)

	if SessionValidAt(userID, issuedBefore) {
		t.Error("token issued before expiry must be invalid")
	}
	if !SessionValidAt(userID, time.Now().Add(time.Second)) {
		t.Error("token issued after expiry must be valid")
	}

	// 其他用户不受影响
	if !SessionValidAt(userID+1, issuedBefore) {
		t.Error("other users must not be affected")
	}
}
