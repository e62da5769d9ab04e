package redis

import "fmt"

// SessionKey 统一约定登录会话键名。
func SessionKey(sessionID string) string {
	return fmt.Sprintf("it_store:session:%s", sessionID)
}

// LoginRateLimitKey 登录限流键，按客户端 IP 区分。
func LoginRateLimitKey(clientIP string) string {
	return fmt.Sprintf("it_store:rate_limit:login:ip:%s", clientIP)
}
