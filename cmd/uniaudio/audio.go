package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"uniaudio/internal/audio"
)

func newAudioCmd(logger *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audio",
		Short: "Local WAV post-processing utilities",
	}
	cmd.AddCommand(newConcatCmd(logger), newMixCmd(logger))
	return cmd
}

func newConcatCmd(logger *zap.Logger) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "concat [files...]",
		Short: "Join WAV files in order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mixer := audio.NewMixer(logger)
			if err := mixer.ConcatFiles(args, out); err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "concatenated.wav", "output file")
	return cmd
}

func newMixCmd(logger *zap.Logger) *cobra.Command {
	var (
		speech string
		bgm    string
		snr    float64
		out    string
	)

	cmd := &cobra.Command{
		Use:   "mix",
		Short: "Mix a background track under a speech track",
		RunE: func(cmd *cobra.Command, args []string) error {
			mixer := audio.NewMixer(logger)
			if err := mixer.MixFiles(speech, bgm, out, audio.GainFromSNR(snr)); err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&speech, "speech", "", "speech WAV file")
	cmd.Flags().StringVar(&bgm, "bgm", "", "background WAV file")
	cmd.Flags().Float64Var(&snr, "snr", 10, "speech-to-background SNR in dB")
	cmd.Flags().StringVarP(&out, "output", "o", "mixed.wav", "output file")
	cmd.MarkFlagRequired("speech")
	cmd.MarkFlagRequired("bgm")
	return cmd
}
