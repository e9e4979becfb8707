package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ashureev/neurolens/internal/client"
	"github.com/ashureev/neurolens/internal/config"
	"github.com/ashureev/neurolens/internal/document"
	"github.com/ashureev/neurolens/internal/domain"
)

type cli struct {
	out    io.Writer
	apiURL string
}

func (c *cli) client() *client.Client {
	return client.New(strings.TrimRight(c.apiURL, "/"))
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:           "lensctl",
		Short:         "Control a NeuroLens service",
		Long:          `lensctl reads and adjusts the simulated sensory environment and talks to the companion and study assistants.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&c.apiURL, "api", config.APIURL(), "NeuroLens service URL (env API_URL)")

	root.AddCommand(
		c.stateCmd(),
		c.thresholdsCmd(),
		c.modeCmd(),
		c.autoAdjustCmd(),
		c.detectCmd(),
		c.envCmd(),
		c.chatCmd(),
		c.studyCmd(),
		c.healthCmd(),
	)
	return root
}

func (c *cli) stateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the current readings, thresholds and comfort mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.client().State(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "brightness: %d%% (threshold %d)\n", s.Brightness, s.BrightnessThreshold)
			fmt.Fprintf(c.out, "noise:      %d dB (threshold %d)\n", s.Noise, s.NoiseThreshold)
			fmt.Fprintf(c.out, "mode:       %s\n", s.ChildMode)
			if s.Exceeded {
				fmt.Fprintln(c.out, "status:     thresholds exceeded")
			} else {
				fmt.Fprintln(c.out, "status:     within thresholds")
			}
			return nil
		},
	}
}

func (c *cli) thresholdsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thresholds",
		Short: "Show or change the comfort thresholds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.printThresholds(cmd.Context())
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Show the comfort thresholds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.printThresholds(cmd.Context())
		},
	}, &cobra.Command{
		Use:   "set BRIGHTNESS NOISE",
		Short: "Set the comfort thresholds",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, n, err := parseLevels(args)
			if err != nil {
				return err
			}
			if err := c.client().SetThresholds(cmd.Context(), b, n); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "thresholds set: brightness %d, noise %d\n", b, n)
			return nil
		},
	})
	return cmd
}

func (c *cli) printThresholds(ctx context.Context) error {
	b, n, err := c.client().Thresholds(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "brightness threshold: %d\nnoise threshold: %d\n", b, n)
	return nil
}

func (c *cli) modeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mode MODE",
		Short: "Set the child's comfort mode (Calm, Focus or Neutral)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := domain.ParseComfortMode(args[0])
			if err != nil {
				return err
			}
			if err := c.client().SetChildMode(cmd.Context(), mode); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "mode set: %s\n", mode)
			return nil
		},
	}
}

func (c *cli) autoAdjustCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auto-adjust",
		Short: "Lower the current readings toward comfortable levels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, n, err := c.client().AutoAdjust(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "adjusted: brightness %d, noise %d\n", b, n)
			return nil
		},
	}
}

func (c *cli) detectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Derive thresholds from a fresh reading",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, n, err := c.client().DetectThresholds(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "detected thresholds: brightness %d, noise %d\n", b, n)
			return nil
		},
	}
}

func (c *cli) envCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Override the simulated environment",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set BRIGHTNESS NOISE",
		Short: "Set the current brightness and noise",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, n, err := parseLevels(args)
			if err != nil {
				return err
			}
			if err := c.client().SetEnvironment(cmd.Context(), b, n); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "environment set: brightness %d, noise %d\n", b, n)
			return nil
		},
	})
	return cmd
}

func (c *cli) chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat MESSAGE...",
		Short: "Send a message to the companion assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := c.client().Chat(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, resp.Reply)
			return nil
		},
	}
}

func (c *cli) studyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "study",
		Short: "Work with study material",
	}

	var file, text string
	highlights := &cobra.Command{
		Use:   "highlights",
		Short: "Summarize study material into key points",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			material, err := readMaterial(file, text)
			if err != nil {
				return err
			}
			resp, err := c.client().StudyHighlights(cmd.Context(), material)
			if err != nil {
				return err
			}
			if len(resp.Highlights) == 0 {
				fmt.Fprintln(c.out, resp.Message)
				return nil
			}
			for _, h := range resp.Highlights {
				fmt.Fprintf(c.out, "- %s\n", h)
			}
			return nil
		},
	}
	highlights.Flags().StringVar(&file, "file", "", "material file (.txt, .md, .pdf, .docx)")
	highlights.Flags().StringVar(&text, "text", "", "pasted material")

	var askFile, askText string
	ask := &cobra.Command{
		Use:   "ask QUESTION...",
		Short: "Ask a question about study material",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			material, err := readMaterial(askFile, askText)
			if err != nil {
				return err
			}
			resp, err := c.client().StudyChat(cmd.Context(), strings.Join(args, " "), material)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, resp.Reply)
			return nil
		},
	}
	ask.Flags().StringVar(&askFile, "file", "", "material file (.txt, .md, .pdf, .docx)")
	ask.Flags().StringVar(&askText, "text", "", "pasted material")

	cmd.AddCommand(highlights, ask)
	return cmd
}

func (c *cli) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the service is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.client().Health(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "ok: %s\n", c.apiURL)
			return nil
		},
	}
}

func parseLevels(args []string) (int, int, error) {
	b, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("brightness must be an integer: %q", args[0])
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("noise must be an integer: %q", args[1])
	}
	return b, n, nil
}

// readMaterial combines pasted text with the text of an optional file.
func readMaterial(path, pasted string) (string, error) {
	if path == "" {
		return strings.TrimSpace(pasted), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read material: %w", err)
	}
	extracted, err := document.Extract(filepath.Base(path), data)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", filepath.Base(path), err)
	}
	return document.Combine(pasted, extracted), nil
}
