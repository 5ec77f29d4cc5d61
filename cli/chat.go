package cli

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"smartagro/chat"
	"smartagro/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	chatLang     string
	chatMode     string
	chatProxy    string
	chatAudioOut string
)

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Ask the farm assistant a question",
	Long: `Send a question to the /ai-chat proxy. When the proxy cannot answer, a
templated summary of the latest reading is printed instead.

Examples:
  smartagro chat "Should I irrigate today?"
  smartagro chat --lang hi "मिट्टी की नमी कैसी है?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	lang := models.Language(chatLang)
	if !lang.Valid() {
		return fmt.Errorf("unsupported language %q", chatLang)
	}

	readings, closeFn, err := openQuerier()
	if err != nil {
		return err
	}
	defer closeFn()

	url := cfg.ChatProxyURL
	if chatProxy != "" {
		url = chatProxy
	}
	invoker := chat.NewInvoker(url, nil, readings, logger.Named("chat"))

	resp, err := invoker.Send(ctx, models.ChatRequest{
		Message:  strings.Join(args, " "),
		Language: lang,
		Mode:     chatMode,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp.Response)

	if chatAudioOut != "" && resp.AudioBase64 != nil {
		audio, err := base64.StdEncoding.DecodeString(*resp.AudioBase64)
		if err != nil {
			return fmt.Errorf("failed to decode audio: %w", err)
		}
		if err := os.WriteFile(chatAudioOut, audio, 0o644); err != nil {
			return err
		}
		logger.Info("audio saved", zap.String("path", chatAudioOut), zap.Int("bytes", len(audio)))
	}
	return nil
}

var greetCmd = &cobra.Command{
	Use:   "greet",
	Short: "Print the assistant greeting and input hint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lang := models.Language(chatLang)
		if !lang.Valid() {
			return fmt.Errorf("unsupported language %q", chatLang)
		}
		fmt.Fprintln(cmd.OutOrStdout(), chat.Greeting(lang))
		fmt.Fprintln(cmd.OutOrStdout(), chat.Placeholder(lang))
		return nil
	},
}

func init() {
	chatCmd.PersistentFlags().StringVar(&chatLang, "lang", string(models.English), "reply language: en, te or hi")
	chatCmd.Flags().StringVar(&chatMode, "mode", "", "provider: hf or gemini (default: the server's)")
	chatCmd.Flags().StringVar(&chatProxy, "proxy", "", "chat proxy URL (default $CHAT_PROXY_URL)")
	chatCmd.Flags().StringVar(&chatAudioOut, "audio-out", "", "write the spoken reply to this file")
	chatCmd.AddCommand(greetCmd)
	rootCmd.AddCommand(chatCmd)
}
