package main

import (
	"fmt"
	"os"

	"freeark_web/internal/building"

	"github.com/spf13/cobra"
)

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <artifact>",
		Short: "检查生成的级联数据文件结构是否正确",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read artifact: %w", err)
			}
			tree, err := building.Decode(data)
			if err != nil {
				return err
			}
			if err := building.Verify(tree); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: OK（%d 个楼栋）\n", args[0], len(tree))
			return nil
		},
	}
}
