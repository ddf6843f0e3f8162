package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ogonki/streak-api/internal/infrastructure/telegram"
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manage the Telegram webhook",
	Long:  `Register, remove and inspect the webhook Telegram delivers updates to.`,
}

var webhookSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Register the webhook URL",
	Long:  `Point Telegram at the service. TELEGRAM_WEBHOOK_SECRET, when set, is registered as the secret token.`,
	RunE:  runWebhookSet,
}

var webhookDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the webhook",
	RunE:  runWebhookDelete,
}

var webhookInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the current webhook state",
	RunE:  runWebhookInfo,
}

func init() {
	webhookCmd.AddCommand(webhookSetCmd)
	webhookCmd.AddCommand(webhookDeleteCmd)
	webhookCmd.AddCommand(webhookInfoCmd)

	webhookSetCmd.Flags().String("url", "", "Public HTTPS URL of /v1/telegram/webhook")
	webhookSetCmd.Flags().Bool("drop-pending", false, "Drop updates queued while no webhook was set")
	_ = webhookSetCmd.MarkFlagRequired("url")

	webhookDeleteCmd.Flags().Bool("drop-pending", false, "Drop queued updates")
}

func newBotClient(cmd *cobra.Command) (*telegram.Client, string, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, "", err
	}
	if !cfg.TelegramEnabled() {
		return nil, "", errors.New("TELEGRAM_BOT_TOKEN is not set")
	}
	return telegram.NewClient(cfg.TelegramAPIURL, cfg.TelegramBotToken, cfg.TelegramTimeout), cfg.TelegramWebhookSecret, nil
}

func runWebhookSet(cmd *cobra.Command, args []string) error {
	client, secret, err := newBotClient(cmd)
	if err != nil {
		return err
	}
	url, _ := cmd.Flags().GetString("url")
	dropPending, _ := cmd.Flags().GetBool("drop-pending")

	err = client.SetWebhook(cmd.Context(), telegram.WebhookParams{
		URL:                url,
		SecretToken:        secret,
		DropPendingUpdates: dropPending,
		AllowedUpdates:     []string{"message"},
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Webhook set to %s\n", url)
	if secret == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "warning: TELEGRAM_WEBHOOK_SECRET is empty, requests are not authenticated")
	}
	return nil
}

func runWebhookDelete(cmd *cobra.Command, args []string) error {
	client, _, err := newBotClient(cmd)
	if err != nil {
		return err
	}
	dropPending, _ := cmd.Flags().GetBool("drop-pending")

	if err := client.DeleteWebhook(cmd.Context(), dropPending); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Webhook deleted")
	return nil
}

func runWebhookInfo(cmd *cobra.Command, args []string) error {
	client, _, err := newBotClient(cmd)
	if err != nil {
		return err
	}

	info, err := client.GetWebhookInfo(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	url := info.URL
	if url == "" {
		url = "(none)"
	}
	fmt.Fprintf(out, "URL:              %s\n", url)
	fmt.Fprintf(out, "Pending updates:  %d\n", info.PendingUpdateCount)
	if info.MaxConnections > 0 {
		fmt.Fprintf(out, "Max connections:  %d\n", info.MaxConnections)
	}
	if len(info.AllowedUpdates) > 0 {
		fmt.Fprintf(out, "Allowed updates:  %v\n", info.AllowedUpdates)
	}
	if info.LastErrorDate > 0 {
		at := time.Unix(info.LastErrorDate, 0).UTC().Format(time.RFC3339)
		fmt.Fprintf(out, "Last error:       %s (%s)\n", info.LastErrorMessage, at)
	}
	return nil
}
