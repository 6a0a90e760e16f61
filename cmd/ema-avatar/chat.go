package main

import (
	"fmt"
	"time"

	orchestration "github.com/koscakluka/ema-avatar/core"
	"github.com/koscakluka/ema-avatar/core/audio"
	"github.com/koscakluka/ema-avatar/core/audio/miniaudio"
	"github.com/koscakluka/ema-avatar/core/audio/portaudio"
	"github.com/koscakluka/ema-avatar/core/avatar"
	"github.com/koscakluka/ema-avatar/core/avatar/heygen"
	"github.com/koscakluka/ema-avatar/core/backend"
	"github.com/koscakluka/ema-avatar/core/events"
	"github.com/koscakluka/ema-avatar/core/speechtotext/deepgram"
	"github.com/koscakluka/ema-avatar/internal/config"
	"github.com/koscakluka/ema-avatar/internal/tui"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const portaudioBufferSize = 1024

var logger = otelslog.NewLogger("github.com/koscakluka/ema-avatar/cmd/ema-avatar")

type clientFlags struct {
	backendURL     string
	audioBackend   string
	language       string
	captureCeiling time.Duration
}

func (f *clientFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.backendURL, "backend-url", "", "base URL of the backend (BACKEND_URL)")
	cmd.Flags().StringVar(&f.audioBackend, "audio-backend", "", "miniaudio, portaudio or none (AUDIO_BACKEND)")
	cmd.Flags().StringVar(&f.language, "language", "", "speech recognition language (STT_LANGUAGE)")
	cmd.Flags().DurationVar(&f.captureCeiling, "capture-ceiling", 0, "maximum length of one recording (CAPTURE_CEILING)")
}

func (f *clientFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("backend-url") {
		cfg.BackendURL = f.backendURL
	}
	if cmd.Flags().Changed("audio-backend") {
		cfg.AudioBackend = f.audioBackend
	}
	if cmd.Flags().Changed("language") {
		cfg.STTLanguage = f.language
	}
	if cmd.Flags().Changed("capture-ceiling") {
		cfg.CaptureCeiling = f.captureCeiling
	}
	return cfg.Validate()
}

func newChatCommand(cfg *config.Config) *cobra.Command {
	var flags clientFlags

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the terminal client",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}

			client, err := newClient(*cfg, true)
			if err != nil {
				return err
			}
			defer client.Close()

			return tui.Run(cmd.Context(), client.orchestrator)
		},
	}
	flags.register(cmd)
	return cmd
}

func newAskCommand(cfg *config.Config) *cobra.Command {
	var flags clientFlags

	cmd := &cobra.Command{
		Use:   "ask <text>",
		Short: "Connect, send one message and print the log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}

			client, err := newClient(*cfg, false)
			if err != nil {
				return err
			}
			defer client.Close()

			unsubscribe := client.orchestrator.Subscribe(func(event events.Event) {
				if entry, ok := event.(events.LogAppended); ok {
					fmt.Fprintln(cmd.OutOrStdout(), entry.Entry.String())
				}
			})
			defer unsubscribe()

			ctx := cmd.Context()
			if err := client.orchestrator.Connect(ctx); err != nil {
				logger.WarnContext(ctx, "continuing without avatar session", "error", err)
			}
			_, err = client.orchestrator.Send(ctx, args[0])
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

type client struct {
	orchestrator *orchestration.Orchestrator
	audioSource  interface{ Close() }
}

func (c *client) Close() {
	c.orchestrator.Close()
	if c.audioSource != nil {
		c.audioSource.Close()
	}
}

// newClient wires the orchestrator to the backend, the avatar service and,
// when withCapture is set, the microphone.
func newClient(cfg config.Config, withCapture bool) (*client, error) {
	backendClient := backend.NewClient(cfg.BackendURL)
	avatarClient := heygen.NewClient(heygen.WithBaseURL(cfg.HeyGenAPIURL))

	opts := []orchestration.OrchestratorOption{
		orchestration.WithSessionTokenSource(backendClient),
		orchestration.WithStreamingAvatar(avatarClient),
		orchestration.WithAvatarSpeaker(backendClient),
		orchestration.WithCompletionClient(backendClient),
		orchestration.WithCaptureCeiling(cfg.CaptureCeiling),
		orchestration.WithSpeechLanguage(cfg.STTLanguage),
		orchestration.WithAvatarSessionOptions(
			avatar.WithAvatarName(cfg.AvatarName),
			avatar.WithQuality(avatar.Quality(cfg.AvatarQuality)),
			avatar.WithVoice(cfg.AvatarVoice),
		),
	}

	c := &client{}
	if withCapture {
		source, closer, err := openAudioSource(cfg.AudioBackend)
		if err != nil {
			// The terminal client stays usable by text.
			logger.Warn("microphone unavailable", "backend", cfg.AudioBackend, "error", err)
		} else if source != nil {
			c.audioSource = closer
			recognizer := deepgram.NewRecognizer(source, deepgram.WithAPIKey(cfg.DeepgramAPIKey))
			opts = append(opts, orchestration.WithSpeechRecognizer(recognizer))
		}
	}

	c.orchestrator = orchestration.NewOrchestrator(opts...)
	return c, nil
}

func openAudioSource(backend string) (audio.CaptureSource, interface{ Close() }, error) {
	switch backend {
	case config.AudioBackendMiniaudio:
		source, err := miniaudio.NewClient()
		if err != nil {
			return nil, nil, err
		}
		return source, source, nil
	case config.AudioBackendPortaudio:
		source, err := portaudio.NewClient(portaudioBufferSize)
		if err != nil {
			return nil, nil, err
		}
		return source, source, nil
	}
	return nil, nil, nil
}

