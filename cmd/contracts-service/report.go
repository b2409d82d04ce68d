package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newReleaseReportCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "release-report",
		Short: "Write the release warning workbook for all contracts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			a, err := bootstrap(false)
			if err != nil {
				return err
			}
			defer a.close()

			result, err := a.services.Exports.ReleaseWorkbook(ctx)
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				path = result.FileName
			}
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				path = filepath.Join(path, result.FileName)
			}
			if err := os.WriteFile(path, result.Content, 0o644); err != nil {
				return err
			}
			a.log.Info().Str("path", path).Int("bytes", len(result.Content)).Msg("release report written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file or directory (defaults to the generated file name)")
	return cmd
}
