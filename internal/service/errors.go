package service

import (
	"errors"

	"freeark_web/internal/building"
)

// 哨兵错误：对外统一语义，隐藏底层实现细节
var (
	// ErrInvalidInput 请求参数不合法
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials 用户名或密码错误（登录时统一返回，防止用户枚举）
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserNotFound 用户不存在（仅用于非登录场景，如 GetProfile）
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists 用户名已被占用
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrCannotDeleteSelf 管理员不能删除自己的账号
	ErrCannotDeleteSelf = errors.New("cannot delete yourself")
	// ErrUnsupportedSource 上传的业主文件既不是 .json 也不是 .xlsx
	ErrUnsupportedSource = building.ErrUnsupportedSource
	// ErrInternal 内部错误（对外不暴露细节）
	ErrInternal = errors.New("internal server error")
)
