// freeark 是物业后台的命令行工具：生成楼栋级联数据、导入业主、调用后端接口。
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"freeark_web/internal/config"
	"freeark_web/pkg/apiclient"
	"freeark_web/pkg/log"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "configs/config.yaml"

// 命令注解：需要登录或管理员权限的命令在执行前由 Guard 检查本地会话。
const (
	annotationRequiresAuth  = "requiresAuth"
	annotationRequiresAdmin = "requiresAdmin"
)

// app 是命令共享的运行时状态，在 PersistentPreRunE 中初始化。
type app struct {
	configPath string
	cfg        *config.Config
	session    apiclient.Session
}

func (a *app) client() *apiclient.Client {
	return apiclient.New(apiclient.Config{
		BaseURL:    a.cfg.Client.BaseURL(),
		Timeout:    a.cfg.Client.Timeout,
		AuthScheme: a.cfg.Client.AuthScheme,
	}, a.session)
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "freeark",
		Short:         "FreeArk 物业后台命令行工具",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Sync()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", defaultConfigPath, "配置文件路径")

	root.AddCommand(
		newGendataCmd(a),
		newVerifyCmd(a),
		newImportOwnersCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newUsersCmd(a),
		newUsageCmd(a),
		newTreeCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	path := a.configPath
	// 未显式指定且默认文件不存在时只用默认值和环境变量
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath); err != nil {
		return err
	}

	session, err := apiclient.OpenFileSession(cfg.Client.SessionFile)
	if err != nil {
		return err
	}
	a.session = session

	route := apiclient.Route{
		Name:          cmd.CommandPath(),
		RequiresAuth:  cmd.Annotations[annotationRequiresAuth] == "true",
		RequiresAdmin: cmd.Annotations[annotationRequiresAdmin] == "true",
	}
	if redirect := apiclient.Guard(route, session); redirect != "" {
		if route.RequiresAdmin && session.Token() != "" {
			return fmt.Errorf("%s 需要管理员权限，请用管理员账号执行 `freeark %s`", cmd.CommandPath(), redirect)
		}
		return fmt.Errorf("%s 需要登录，请先执行 `freeark %s`", cmd.CommandPath(), redirect)
	}
	return nil
}

func requiresAuth() map[string]string {
	return map[string]string{annotationRequiresAuth: "true"}
}

func requiresAdmin() map[string]string {
	return map[string]string{annotationRequiresAuth: "true", annotationRequiresAdmin: "true"}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
