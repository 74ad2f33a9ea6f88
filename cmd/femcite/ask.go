// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/femcite/internal/export"
	"github.com/pdiddy/femcite/internal/pipeline"
	"github.com/pdiddy/femcite/internal/session"
	"github.com/pdiddy/femcite/pkg/types"
)

var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Answer one research question with citations",
	Long: `Ask retrieves the most relevant sources for a question, writes a
citation-grounded answer, formats the reference list in the chosen style, and
saves the transcript and BibTeX file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("style", string(types.StyleAPA), "reference list style: APA, MLA, or Chicago")
	askCmd.Flags().Bool("json", false, "output the result as JSON")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	styleFlag, _ := cmd.Flags().GetString("style")
	style, err := types.ParseStyle(styleFlag)
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, zap.WarnLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	st := session.NewState()
	res, err := a.orchestrator.Submit(cmd.Context(), st, strings.Join(args, " "), style)
	if err != nil {
		return userError(err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printResult(os.Stdout, res)
	if res.Status == pipeline.StatusAnswered {
		printArtifacts(os.Stderr, a.writer, st.ID)
	}
	return nil
}

// printResult writes a submission result for a person to read.
func printResult(w io.Writer, res pipeline.Result) {
	switch res.Status {
	case pipeline.StatusIgnored:
		return
	case pipeline.StatusNoResult:
		fmt.Fprintln(w, res.Notice)
		return
	case pipeline.StatusUnchanged:
		fmt.Fprintln(w, "(same question as before; showing the previous answer)")
	}

	fmt.Fprintln(w, export.Transcript(res.Turns))
	if len(res.Warnings) > 0 {
		fmt.Fprintf(w, "\nCitation check found %d issue(s):\n", len(res.Warnings))
		for _, f := range res.Warnings {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}
}

func printArtifacts(w io.Writer, writer *export.Writer, sessionID string) {
	names := []string{export.TranscriptFile, export.BibliographyFile}
	if writer.CSL {
		names = append(names, export.CSLFile)
	}
	for _, name := range names {
		if p, err := writer.Path(sessionID, name); err == nil {
			fmt.Fprintf(w, "Saved %s\n", p)
		}
	}
}

// userError turns a pipeline failure into its plain-language notice while
// keeping the cause.
func userError(err error) error {
	var qe *pipeline.QueryError
	if errors.As(err, &qe) {
		return fmt.Errorf("%s (%w)", qe.Notice(), err)
	}
	return err
}
