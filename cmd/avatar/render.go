package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/memohai/avatar/internal/accounts"
	"github.com/memohai/avatar/internal/avatar"
	"github.com/memohai/avatar/internal/db"
	"github.com/memohai/avatar/internal/logger"
)

func newRenderCommand() *cobra.Command {
	var (
		identity string
		size     string
		fallback string
		alt      string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Resolve the avatar tag for a user id or email",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !usePostgres(cfg) {
				return fmt.Errorf("render requires store.driver = \"postgres\"")
			}
			ctx := context.Background()
			log := logger.L
			conn, err := db.Open(ctx, cfg.Postgres)
			if err != nil {
				return fmt.Errorf("db connect: %w", err)
			}
			defer conn.Close()

			provider, err := provideStorageProvider(log, cfg)
			if err != nil {
				return err
			}
			mediaService := provideMediaService(log, cfg, provideCatalog(conn), provider, nil)
			strategy, err := provideStrategy(cfg, mediaService)
			if err != nil {
				return err
			}
			accountService := accounts.NewService(log, provideAccountRepository(conn))
			svc := avatar.NewService(log, avatar.SettingsFromConfig(cfg.Avatar), provideMetaStore(log, conn), accountService, strategy, mediaService)

			parsed, _ := avatar.ParseSize(size)
			fmt.Fprintln(cmd.OutOrStdout(), svc.Resolve(ctx, avatar.ParseIdentity(identity), parsed, fallback, alt, avatar.Options{}))
			return nil
		},
	}
	cmd.Flags().StringVar(&identity, "identity", "", "user id or email")
	cmd.Flags().StringVar(&size, "size", "", "edge length or WxH (default from avatar.default_size)")
	cmd.Flags().StringVar(&fallback, "fallback", "", "HTML printed when there is no custom avatar")
	cmd.Flags().StringVar(&alt, "alt", "", "alt text (defaults to the display name)")
	_ = cmd.MarkFlagRequired("identity")
	return cmd
}
