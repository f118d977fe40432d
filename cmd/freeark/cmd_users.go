package main

import (
	"fmt"
	"strconv"

	"freeark_web/pkg/apiclient"

	"github.com/spf13/cobra"
)

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "用户管理（需要管理员）",
	}
	cmd.AddCommand(
		newUsersListCmd(a),
		newUsersGetCmd(a),
		newUsersCreateCmd(a),
		newUsersUpdateCmd(a),
		newUsersDeleteCmd(a),
	)
	return cmd
}

func newUsersListCmd(a *app) *cobra.Command {
	var page, size int
	cmd := &cobra.Command{
		Use:         "list",
		Short:       "分页列出用户",
		Args:        cobra.NoArgs,
		Annotations: requiresAdmin(),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client().ListUsers(cmd.Context(), page, size)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "页码，从 1 开始")
	cmd.Flags().IntVar(&size, "size", 20, "每页条数")
	return cmd
}

func newUsersGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "get <id>",
		Short:       "查看一个用户",
		Args:        cobra.ExactArgs(1),
		Annotations: requiresAdmin(),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			u, err := a.client().GetUser(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd, u)
		},
	}
}

func newUsersCreateCmd(a *app) *cobra.Command {
	var req apiclient.CreateUserRequest
	cmd := &cobra.Command{
		Use:         "create",
		Short:       "创建用户",
		Args:        cobra.NoArgs,
		Annotations: requiresAdmin(),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.client().CreateUser(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd, u)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&req.Username, "username", "", "用户名")
	fl.StringVar(&req.Password, "password", "", "初始密码")
	fl.StringVar(&req.Role, "role", "", "角色：ADMIN 或 USER")
	fl.StringVar(&req.Department, "department", "", "部门")
	fl.StringVar(&req.Position, "position", "", "职位")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newUsersUpdateCmd(a *app) *cobra.Command {
	var role, department, position, password string
	cmd := &cobra.Command{
		Use:         "update <id>",
		Short:       "修改用户，只发送显式指定的字段",
		Args:        cobra.ExactArgs(1),
		Annotations: requiresAdmin(),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var req apiclient.UpdateUserRequest
			fl := cmd.Flags()
			if fl.Changed("role") {
				req.Role = &role
			}
			if fl.Changed("department") {
				req.Department = &department
			}
			if fl.Changed("position") {
				req.Position = &position
			}
			if fl.Changed("password") {
				req.Password = &password
			}
			u, err := a.client().UpdateUser(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			return printJSON(cmd, u)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&role, "role", "", "角色：ADMIN 或 USER")
	fl.StringVar(&department, "department", "", "部门")
	fl.StringVar(&position, "position", "", "职位")
	fl.StringVar(&password, "password", "", "新密码")
	return cmd
}

func newUsersDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "delete <id>",
		Short:       "删除用户",
		Args:        cobra.ExactArgs(1),
		Annotations: requiresAdmin(),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.client().DeleteUser(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已删除用户 %d\n", id)
			return nil
		},
	}
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return uint(id), nil
}
