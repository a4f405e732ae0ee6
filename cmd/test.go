package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"contenttest/internal/bootstrap/logging"
	"contenttest/internal/errs"
	"contenttest/internal/output"
	"contenttest/internal/usecase/contenttest"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Manage content tests",
}

var testCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a test for a problem",
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, env commandEnv) error {
		location, _ := cmd.Flags().GetString("location")
		shouldBe, _ := cmd.Flags().GetString("should-be")
		answers, err := resolveAnswers(cmd)
		if err != nil {
			return err
		}

		testRef, err := env.svc.CreateTest(ctx, contenttest.CreateTestInput{
			Location: location,
			ShouldBe: shouldBe,
			Answers:  answers,
		})
		if err != nil {
			logging.Error(ctx, "create test failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "create test")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "created test: %s\n", testRef); err != nil {
			return errs.Wrap(err, "write create output")
		}
		return nil
	}),
}

var testListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tests",
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, env commandEnv) error {
		location, _ := cmd.Flags().GetString("location")
		format, err := resolveFormat(cmd)
		if err != nil {
			return err
		}
		items, err := env.svc.ListTests(ctx, location)
		if err != nil {
			logging.Error(ctx, "list tests failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list tests")
		}

		if format != output.FormatText {
			return output.Write(cmd.OutOrStdout(), format, testListView(items))
		}
		if len(items) == 0 {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "no tests"); err != nil {
				return errs.Wrap(err, "write list output")
			}
			return nil
		}

		for _, item := range items {
			if _, err := fmt.Fprintf(
				cmd.OutOrStdout(),
				"%s [%s] should_be=%s location=%s\n",
				item.TestRef,
				item.Verdict,
				item.ShouldBe,
				item.Location,
			); err != nil {
				return errs.Wrap(err, "write list item")
			}
		}
		return nil
	}),
}

var testShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a test with its stored components and answers",
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, env commandEnv) error {
		testRef, _ := cmd.Flags().GetString("test")
		summaryOnly, _ := cmd.Flags().GetBool("summary")
		format, err := resolveFormat(cmd)
		if err != nil {
			return err
		}

		if summaryOnly {
			summary, err := env.svc.Summary(ctx, testRef)
			if err != nil {
				logging.Error(ctx, "summarize test failed", slog.Any("err", errs.Loggable(err)))
				return errs.Wrap(err, "summarize test")
			}
			if format != output.FormatText {
				return output.Write(cmd.OutOrStdout(), format, summary)
			}
			if _, err := fmt.Fprint(cmd.OutOrStdout(), renderSummary(summary)); err != nil {
				return errs.Wrap(err, "write show output")
			}
			return nil
		}

		detail, err := env.svc.GetTest(ctx, testRef)
		if err != nil {
			logging.Error(ctx, "show test failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "show test")
		}
		if format != output.FormatText {
			return output.Write(cmd.OutOrStdout(), format, detail)
		}
		if _, err := fmt.Fprint(cmd.OutOrStdout(), renderDetail(detail)); err != nil {
			return errs.Wrap(err, "write show output")
		}
		return nil
	}),
}

var testAnswerCmd = &cobra.Command{
	Use:   "answer",
	Short: "Replace the stored answers of a test",
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, env commandEnv) error {
		testRef, _ := cmd.Flags().GetString("test")
		answers, err := resolveAnswers(cmd)
		if err != nil {
			return err
		}

		if err := env.svc.UpdateAnswers(ctx, contenttest.UpdateAnswersInput{
			TestRef: testRef,
			Answers: answers,
		}); err != nil {
			logging.Error(ctx, "update answers failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "update answers")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "updated answers: %s\n", testRef); err != nil {
			return errs.Wrap(err, "write answer output")
		}
		return nil
	}),
}

var testExpectCmd = &cobra.Command{
	Use:   "expect",
	Short: "Change the expected outcome of a test",
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, env commandEnv) error {
		testRef, _ := cmd.Flags().GetString("test")
		shouldBe, _ := cmd.Flags().GetString("should-be")
		if err := env.svc.UpdateShouldBe(ctx, contenttest.UpdateShouldBeInput{
			TestRef:  testRef,
			ShouldBe: shouldBe,
		}); err != nil {
			logging.Error(ctx, "update expected outcome failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "update expected outcome")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "updated expected outcome: %s should_be=%s\n", testRef, shouldBe); err != nil {
			return errs.Wrap(err, "write expect output")
		}
		return nil
	}),
}

var testRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Grade the stored answers of a test",
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, env commandEnv) error {
		testRef, _ := cmd.Flags().GetString("test")
		format, err := resolveFormat(cmd)
		if err != nil {
			return err
		}
		result, err := env.svc.RunTest(ctx, testRef)
		if err != nil {
			logging.Error(ctx, "run test failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "run test")
		}

		if format != output.FormatText {
			return output.Write(cmd.OutOrStdout(), format, runResultsView{result})
		}

		if _, err := fmt.Fprint(cmd.OutOrStdout(), renderRunResult(result)); err != nil {
			return errs.Wrap(err, "write run output")
		}
		return nil
	}),
}

var testRunAllCmd = &cobra.Command{
	Use:   "run-all",
	Short: "Run every test of a problem",
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, env commandEnv) error {
		location, _ := cmd.Flags().GetString("location")
		format, err := resolveFormat(cmd)
		if err != nil {
			return err
		}
		results, err := env.svc.RunAll(ctx, location)
		if err != nil {
			logging.Error(ctx, "run tests failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "run tests")
		}

		if format != output.FormatText {
			return output.Write(cmd.OutOrStdout(), format, runResultsView(results))
		}
		if len(results) == 0 {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "no tests"); err != nil {
				return errs.Wrap(err, "write run-all output")
			}
			return nil
		}
		for _, result := range results {
			if _, err := fmt.Fprint(cmd.OutOrStdout(), renderRunResult(result)); err != nil {
				return errs.Wrap(err, "write run-all output")
			}
		}
		return nil
	}),
}

var testRematchCmd = &cobra.Command{
	Use:   "rematch",
	Short: "Re-examine a test against its current problem",
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, env commandEnv) error {
		testRef, _ := cmd.Flags().GetString("test")
		force, _ := cmd.Flags().GetBool("force")
		report, err := env.svc.Rematch(ctx, contenttest.RematchInput{TestRef: testRef, Force: force})
		if err != nil {
			logging.Error(ctx, "rematch test failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "rematch test")
		}

		if _, err := fmt.Fprintf(
			cmd.OutOrStdout(),
			"%s path=%s matched=%d renamed=%d refreshed=%d deleted=%d created=%d\n",
			report.TestRef,
			report.Path,
			report.Matched,
			report.Renamed,
			report.Refreshed,
			report.Deleted,
			report.Created,
		); err != nil {
			return errs.Wrap(err, "write rematch output")
		}
		return nil
	}),
}

var testDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a test",
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, env commandEnv) error {
		testRef, _ := cmd.Flags().GetString("test")
		if err := env.svc.DeleteTest(ctx, testRef); err != nil {
			logging.Error(ctx, "delete test failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "delete test")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted test: %s\n", testRef); err != nil {
			return errs.Wrap(err, "write delete output")
		}
		return nil
	}),
}

var testImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Create tests from a TOML suite file",
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, env commandEnv) error {
		suiteFile, _ := cmd.Flags().GetString("file")
		refs, err := env.svc.ImportSuite(ctx, suiteFile)
		if err != nil {
			logging.Error(ctx, "import suite failed", slog.Any("err", errs.Loggable(err)), slog.Int("created", len(refs)))
			return errs.Wrap(err, "import suite")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "imported %d tests: %s\n", len(refs), strings.Join(refs, ",")); err != nil {
			return errs.Wrap(err, "write import output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(testCmd)
	testCmd.AddCommand(testCreateCmd)
	testCmd.AddCommand(testListCmd)
	testCmd.AddCommand(testShowCmd)
	testCmd.AddCommand(testAnswerCmd)
	testCmd.AddCommand(testExpectCmd)
	testCmd.AddCommand(testRunCmd)
	testCmd.AddCommand(testRunAllCmd)
	testCmd.AddCommand(testRematchCmd)
	testCmd.AddCommand(testDeleteCmd)
	testCmd.AddCommand(testImportCmd)

	for _, c := range []*cobra.Command{testListCmd, testShowCmd, testRunCmd, testRunAllCmd} {
		c.Flags().StringP("output", "o", "text", "Output format (text|table|json|yaml)")
	}

	testCreateCmd.Flags().String("location", "", "Problem location, relative to problems.dir without .xml")
	testCreateCmd.Flags().String("should-be", "correct", "Expected outcome (correct|incorrect|error)")
	testCreateCmd.Flags().StringArray("answer", nil, "Answer as <input_id>=<value>, repeatable")
	_ = testCreateCmd.MarkFlagRequired("location")

	testListCmd.Flags().String("location", "", "Only tests of this problem")

	testShowCmd.Flags().String("test", "", "TestRef, for example test#3")
	testShowCmd.Flags().Bool("summary", false, "Only print answers in problem order")
	_ = testShowCmd.MarkFlagRequired("test")

	testAnswerCmd.Flags().String("test", "", "TestRef, for example test#3")
	testAnswerCmd.Flags().StringArray("answer", nil, "Answer as <input_id>=<value>, repeatable; omitted inputs are cleared")
	_ = testAnswerCmd.MarkFlagRequired("test")

	testExpectCmd.Flags().String("test", "", "TestRef, for example test#3")
	testExpectCmd.Flags().String("should-be", "", "Expected outcome (correct|incorrect|error)")
	_ = testExpectCmd.MarkFlagRequired("test")
	_ = testExpectCmd.MarkFlagRequired("should-be")

	testRunCmd.Flags().String("test", "", "TestRef, for example test#3")
	_ = testRunCmd.MarkFlagRequired("test")

	testRunAllCmd.Flags().String("location", "", "Problem location")
	_ = testRunAllCmd.MarkFlagRequired("location")

	testRematchCmd.Flags().String("test", "", "TestRef, for example test#3")
	testRematchCmd.Flags().Bool("force", false, "Reconcile even when the structure check passes")
	_ = testRematchCmd.MarkFlagRequired("test")

	testDeleteCmd.Flags().String("test", "", "TestRef, for example test#3")
	_ = testDeleteCmd.MarkFlagRequired("test")

	testImportCmd.Flags().String("file", "", "Path to the TOML suite file")
	_ = testImportCmd.MarkFlagRequired("file")
}

func resolveFormat(cmd *cobra.Command) (output.Format, error) {
	raw, _ := cmd.Flags().GetString("output")
	return output.ParseFormat(raw)
}

// resolveAnswers reads repeated --answer id=value flags.
func resolveAnswers(cmd *cobra.Command) (map[string]string, error) {
	raw, _ := cmd.Flags().GetStringArray("answer")
	return parseAnswers(raw)
}

func parseAnswers(raw []string) (map[string]string, error) {
	answers := make(map[string]string, len(raw))
	for _, item := range raw {
		id, value, ok := strings.Cut(item, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid --answer %q: expected <input_id>=<value>", item)
		}
		if _, dup := answers[id]; dup {
			return nil, errors.New("duplicate --answer for " + id)
		}
		answers[id] = value
	}
	return answers, nil
}
