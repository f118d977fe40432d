// Package hash 负责登录密码的 bcrypt 哈希。
package hash

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword 空密码不允许生成哈希。
var ErrEmptyPassword = errors.New("password is empty")

// Cost 是新哈希使用的成本。
var Cost = bcrypt.DefaultCost

// HashPassword 超过 72 字节的密码会返回 bcrypt.ErrPasswordTooLong。
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPasswordHash(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

// NeedsRehash 已有哈希的成本低于 Cost 时返回 true，登录成功后据此升级。
func NeedsRehash(hashed string) bool {
	cost, err := bcrypt.Cost([]byte(hashed))
	return err == nil && cost < Cost
}
