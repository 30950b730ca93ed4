package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/SAP-F-2025/mmse-service/internal/scoring"
	"github.com/spf13/cobra"
)

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score an answer sheet offline and print the result as JSON",
		RunE:  runScoreCmd,
	}
	f := cmd.Flags()
	f.StringP("file", "f", "-", "Answer sheet JSON file (- for stdin)")
	f.StringP("locale", "l", "en", "Assessment locale (en, ur)")
	f.String("at", "", "Reference time in RFC3339; defaults to now")
	return cmd
}

func runScoreCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cfg)

	path, _ := cmd.Flags().GetString("file")
	locale, _ := cmd.Flags().GetString("locale")
	at, _ := cmd.Flags().GetString("at")

	ref := time.Now()
	if at != "" {
		ref, err = time.Parse(time.RFC3339, at)
		if err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
	}

	in := cmd.InOrStdin()
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open answer sheet: %w", err)
		}
		defer file.Close()
		in = file
	}

	return scoreSheet(in, cmd.OutOrStdout(), scoring.NewEngine(scoring.WithLocation(cfg.Location())), locale, ref)
}

func scoreSheet(in io.Reader, out io.Writer, engine *scoring.Engine, locale string, ref time.Time) error {
	loc, err := scoring.ParseLocale(locale)
	if err != nil {
		return err
	}

	var payload scoring.AnswerPayload
	if err := json.NewDecoder(in).Decode(&payload); err != nil {
		return fmt.Errorf("decode answer sheet: %w", err)
	}

	record, err := engine.Score(payload, loc, ref)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(record)
}
