// Package cli implements the bugctl command tree.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spec-kit/bug-tracker/pkg/client"
)

const (
	envAPIURL = "BUGTRACKER_API_URL"
	envToken  = "BUGTRACKER_TOKEN"
)

var (
	successPrefix = color.New(color.FgHiGreen).Sprint("✓")
	infoPrefix    = color.New(color.FgHiBlue).Sprint("i")
)

// options holds the flags shared by every command.
type options struct {
	apiURL string
	token  string
	out    io.Writer
}

func (o *options) client() *client.Client {
	return client.New(o.apiURL, client.WithToken(o.token))
}

func (o *options) success(format string, a ...any) {
	fmt.Fprintf(o.out, "%s %s\n", successPrefix, fmt.Sprintf(format, a...))
}

func (o *options) info(format string, a ...any) {
	fmt.Fprintf(o.out, "%s %s\n", infoPrefix, fmt.Sprintf(format, a...))
}

// NewRootCmd builds the bugctl command tree writing to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	opts := &options{out: out}

	root := &cobra.Command{
		Use:           "bugctl",
		Short:         "Command line client for the bug tracker API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	apiURL := os.Getenv(envAPIURL)
	if apiURL == "" {
		apiURL = client.DefaultBaseURL
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", apiURL, "API base URL (env "+envAPIURL+")")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv(envToken), "Bearer token (env "+envToken+")")

	root.AddCommand(newBugsCmd(opts), newAuthCmd(opts))
	return root
}

// Execute runs bugctl against os.Args and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgHiRed).Sprint("✗"), err)
		os.Exit(1)
	}
}
