package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/qarelay/internal/qa"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question from the command line",
	Long:  `Runs one question through the same validation and model fallback chain as the HTTP server and prints the answer.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().Bool("json", false, "output the answer and attempt trace as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]string{"question": strings.Join(args, " ")})
	if err != nil {
		return err
	}
	question, err := qa.Validate(payload)
	if err != nil {
		return err
	}

	dispatcher := createDispatcherFromConfig(cfg)
	answer, err := dispatcher.Dispatch(context.Background(), question)
	if err != nil {
		var f *qa.Failure
		if verbose && errors.As(err, &f) {
			printAttempts(f.Attempts)
		}
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	}

	if verbose {
		printAttempts(answer.Attempts)
	}
	fmt.Println(strings.TrimSpace(answer.Text))
	return nil
}

func printAttempts(attempts []qa.Attempt) {
	for i, a := range attempts {
		line := fmt.Sprintf("  %d. %s: %s", i+1, a.Model, a.Outcome)
		if a.Status != 0 {
			line += fmt.Sprintf(" (status %d)", a.Status)
		}
		if a.Error != "" {
			line += " - " + a.Error
		}
		fmt.Fprintln(os.Stderr, line)
	}
}
