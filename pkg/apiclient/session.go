package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Session 保存登录令牌和用户信息。
type Session interface {
	Token() string
	User() *User
	Save(token string, user *User) error
	Clear() error
}

// MemorySession 只保存在内存中，进程退出即失效。
type MemorySession struct {
	mu    sync.RWMutex
	token string
	user  *User
}

func (s *MemorySession) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemorySession) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *MemorySession) Save(token string, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.user = token, user
	return nil
}

func (s *MemorySession) Clear() error {
	return s.Save("", nil)
}

// FileSession 把会话持久化到一个 JSON 文件（权限 0600）。
type FileSession struct {
	path string
	mem  MemorySession
}

type sessionFile struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// OpenFileSession 读取已有会话，文件不存在时返回空会话。
func OpenFileSession(path string) (*FileSession, error) {
	s := &FileSession{path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", path, err)
	}
	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		// 损坏的会话文件等同于未登录
		return s, nil
	}
	_ = s.mem.Save(f.Token, f.User)
	return s, nil
}

func (s *FileSession) Token() string { return s.mem.Token() }
func (s *FileSession) User() *User   { return s.mem.User() }

func (s *FileSession) Save(token string, user *User) error {
	data, err := json.MarshalIndent(sessionFile{Token: token, User: user}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session %s: %w", s.path, err)
	}
	return s.mem.Save(token, user)
}

func (s *FileSession) Clear() error {
	_ = s.mem.Clear()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session %s: %w", s.path, err)
	}
	return nil
}
