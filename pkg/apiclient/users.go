package apiclient

import (
	"context"
	"net/http"
	"strconv"
)

// UserPage 是分页的用户列表。
type UserPage struct {
	Content       []User `json:"content"`
	TotalElements int64  `json:"totalElements"`
	TotalPages    int    `json:"totalPages"`
	Size          int    `json:"size"`
	Number        int    `json:"number"`
}

type CreateUserRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Role       string `json:"role,omitempty"`
	Department string `json:"department,omitempty"`
	Position   string `json:"position,omitempty"`
}

// UpdateUserRequest 中为 nil 的字段不会发送。
type UpdateUserRequest struct {
	Role       *string `json:"role,omitempty"`
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
	Password   *string `json:"password,omitempty"`
}

func (c *Client) ListUsers(ctx context.Context, page, size int) (*UserPage, error) {
	query := map[string]string{}
	if page > 0 {
		query["page"] = strconv.Itoa(page)
	}
	if size > 0 {
		query["size"] = strconv.Itoa(size)
	}
	var res UserPage
	if err := c.do(ctx, http.MethodGet, "/users", query, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetUser(ctx context.Context, id uint) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, idPath(id), nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPost, "/users", nil, req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateUser(ctx context.Context, id uint, req UpdateUserRequest) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPut, idPath(id), nil, req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) DeleteUser(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, idPath(id), nil, nil, nil)
}
