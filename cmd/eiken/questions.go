package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/eiken/internal/question"
)

func newQuestionsCommand() *cobra.Command {
	questionsCommand := &cobra.Command{
		Use:   "questions",
		Short: "Question file commands",
	}
	questionsCommand.AddCommand(newQuestionsValidateCommand())
	return questionsCommand
}

func newQuestionsValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a YAML or JSON question file and print every problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			contents, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("os.ReadFile(%s) > %w", path, err)
			}

			loader, err := question.NewLoader()
			if err != nil {
				return fmt.Errorf("question.NewLoader() > %w", err)
			}
			problems := loader.Validate(contents, question.FormatFromPath(path))
			return displayProblems(cmd, path, problems)
		},
	}
}

func displayProblems(cmd *cobra.Command, path string, problems []question.Problem) error {
	out := cmd.OutOrStdout()
	if len(problems) == 0 {
		_, _ = fmt.Fprintf(out, "%s: all questions are valid\n", path)
		return nil
	}

	_, _ = fmt.Fprintf(out, "%s: %d problem(s)\n", path, len(problems))
	for _, p := range problems {
		_, _ = fmt.Fprintf(out, "  - %s\n", p)
	}
	return fmt.Errorf("found %d problem(s) in %s", len(problems), path)
}
