package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const passwordEnv = "FREEARK_PASSWORD"

func newLoginCmd(a *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "登录后台，令牌保存在本地会话文件",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			if username == "" || password == "" {
				return errors.New("username and password are required (password may come from " + passwordEnv + ")")
			}
			res, err := a.client().Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			role := ""
			if res.User != nil {
				role = res.User.Role
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已登录：%s（%s）\n", username, role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "用户名")
	cmd.Flags().StringVarP(&password, "password", "p", "", "密码，未指定时读取 "+passwordEnv)
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "注销并清除本地会话",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.session.Token() == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "当前未登录")
				return nil
			}
			if err := a.client().Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "已注销")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "whoami",
		Short:       "显示当前登录用户",
		Args:        cobra.NoArgs,
		Annotations: requiresAuth(),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.client().Me(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, u)
		},
	}
}
