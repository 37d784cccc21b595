package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"uniaudio/internal/podcast"
)

func newPodcastCmd(logger *zap.Logger) *cobra.Command {
	var (
		scriptFile string
		spk1IP     string
		spk1Audio  string
		spk2IP     string
		spk2Audio  string
		withBGM    bool
		bgmSNR     float64
		maxChars   int
	)

	cmd := &cobra.Command{
		Use:   "podcast",
		Short: "Generate a two-speaker podcast from a dialogue script",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(logger)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(scriptFile)
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}

			result, err := a.pipeline.Generate(cmd.Context(), podcast.Request{
				Script: string(raw),
				Speakers: [2]podcast.SpeakerRef{
					{AudioPath: spk1Audio, IPName: spk1IP},
					{AudioPath: spk2Audio, IPName: spk2IP},
				},
				WithBGM:  withBGM,
				BGMSNR:   bgmSNR,
				MaxChars: maxChars,
			})
			if err != nil {
				return err
			}
			fmt.Println(result.Location)
			return nil
		},
	}

	cmd.Flags().StringVar(&scriptFile, "script-file", "", "path to the dialogue script")
	cmd.Flags().StringVar(&spk1IP, "spk1-ip", "", "IP voice for speaker 1")
	cmd.Flags().StringVar(&spk1Audio, "spk1-audio", "", "reference clip for speaker 1")
	cmd.Flags().StringVar(&spk2IP, "spk2-ip", "", "IP voice for speaker 2")
	cmd.Flags().StringVar(&spk2Audio, "spk2-audio", "", "reference clip for speaker 2")
	cmd.Flags().BoolVar(&withBGM, "bgm", false, "mix generated background music under the episode")
	cmd.Flags().Float64Var(&bgmSNR, "bgm-snr", 10, "speech-to-music SNR in dB (lower is louder music)")
	cmd.Flags().IntVar(&maxChars, "max-chars", 0, "per-chunk character budget (0 for default)")
	cmd.MarkFlagRequired("script-file")

	return cmd
}
