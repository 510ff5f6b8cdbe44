package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/guardrail/internal/config"
	"github.com/pankaj-dahiya-devops/guardrail/internal/providers/aws/common"
)

// DoctorResult is the structured output of guardrail doctor. It can be
// serialised to JSON via --format=json or rendered as a human-readable table
// (default).
type DoctorResult struct {
	Config struct {
		Path      string   `json:"path"`
		Present   bool     `json:"present"`
		Valid     bool     `json:"valid"`
		MatchMode string   `json:"match_mode,omitempty"`
		Errors    []string `json:"errors,omitempty"`
	} `json:"config"`

	AWS struct {
		Profile     string `json:"profile,omitempty"`
		Region      string `json:"region,omitempty"`
		Credentials bool   `json:"credentials_ok"`
		AccountID   string `json:"account_id,omitempty"`
		Error       string `json:"error,omitempty"`
	} `json:"aws"`

	OverallHealthy bool `json:"overall_healthy"`
}

func newDoctorCmd(deps cliDeps, configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run environment diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			result, err := runDoctor(
				cmd.Context(),
				deps.provider,
				config.NewFileLoader(*configPath),
				cmd.OutOrStdout(),
				format,
			)
			if err != nil {
				return err
			}
			if !result.OverallHealthy {
				// Exit directly so no error text follows the report.
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().String("format", "table", `Output format: "table" or "json"`)
	return cmd
}

// runDoctor collects all diagnostic results, renders them to w in the
// requested format, and returns the result.
// The returned error covers only rendering failures. Callers must inspect
// result.OverallHealthy to determine whether the environment is healthy.
func runDoctor(ctx context.Context, provider common.AWSClientProvider, loader config.Loader, w io.Writer, format string) (DoctorResult, error) {
	result := collectDoctorResult(ctx, provider, loader)

	switch format {
	case "json":
		if err := json.NewEncoder(w).Encode(result); err != nil {
			return result, fmt.Errorf("encode doctor result: %w", err)
		}
	default:
		renderDoctorTable(result, w)
	}

	return result, nil
}

// collectDoctorResult runs all environment checks and populates a
// DoctorResult. It performs no rendering.
func collectDoctorResult(ctx context.Context, provider common.AWSClientProvider, loader config.Loader) DoctorResult {
	var result DoctorResult

	// Config: stat → load → validate (file is optional).
	result.Config.Path = loader.ConfigPath()
	if _, err := os.Stat(result.Config.Path); err == nil {
		result.Config.Present = true
	} else if !errors.Is(err, fs.ErrNotExist) {
		result.Config.Present = true
		result.Config.Errors = append(result.Config.Errors, err.Error())
	}

	cfg, err := loader.Load()
	if err != nil {
		result.Config.Errors = append(result.Config.Errors, err.Error())
		cfg = config.Default()
	} else if len(result.Config.Errors) == 0 {
		result.Config.Valid = true
	}
	result.Config.MatchMode = string(cfg.MatchMode())

	// AWS: credentials → STS account ID. The account ID is what proves the
	// credentials actually work.
	result.AWS.Profile = cfg.AWS.Profile
	profile, err := provider.LoadProfile(ctx, cfg.AWS.Profile, cfg.AWS.Region)
	if err != nil {
		result.AWS.Error = err.Error()
	} else {
		result.AWS.Credentials = true
		result.AWS.Region = profile.Region
		result.AWS.AccountID = profile.AccountID
		if profile.AccountID == "" {
			result.AWS.Error = "caller identity could not be resolved"
		}
	}

	result.OverallHealthy = result.Config.Valid &&
		result.AWS.Credentials &&
		result.AWS.AccountID != ""

	return result
}

// renderDoctorTable writes the human-readable diagnostic output from result
// to w.
func renderDoctorTable(result DoctorResult, w io.Writer) {
	fmt.Fprintln(w, "Environment Diagnostics")

	fmt.Fprintln(w, "\nConfig:")
	if result.Config.Present {
		doctorPrint(w, "Config file", "YES", result.Config.Path)
	} else {
		doctorPrint(w, "Config file", "Not found (optional)", result.Config.Path)
	}
	if result.Config.Valid {
		doctorPrint(w, "Config valid", "OK", "policy match: "+result.Config.MatchMode)
	} else {
		for _, e := range result.Config.Errors {
			doctorPrint(w, "Config valid", "FAIL", e)
		}
	}

	if result.AWS.Profile != "" {
		fmt.Fprintf(w, "\nAWS (profile: %s):\n", result.AWS.Profile)
	} else {
		fmt.Fprintln(w, "\nAWS:")
	}
	if !result.AWS.Credentials {
		doctorPrint(w, "Credentials", "FAIL", result.AWS.Error)
		doctorPrint(w, "STS Identity", "FAIL", "skipped")
		return
	}
	doctorPrint(w, "Credentials", "OK", "region: "+result.AWS.Region)
	if result.AWS.AccountID != "" {
		doctorPrint(w, "STS Identity", "OK", "Account: "+result.AWS.AccountID)
	} else {
		doctorPrint(w, "STS Identity", "FAIL", result.AWS.Error)
	}
}

// doctorPrint writes a single diagnostic check line to w.
// When detail is non-empty it is appended in parentheses.
func doctorPrint(w io.Writer, label, status, detail string) {
	if detail != "" {
		fmt.Fprintf(w, "  %s: %s (%s)\n", label, status, detail)
	} else {
		fmt.Fprintf(w, "  %s: %s\n", label, status)
	}
}
