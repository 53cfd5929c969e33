package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	"github.com/enescakir/emoji"
	"github.com/fatih/color"
	"github.com/gimlet-io/deploy-notifier/pkg/deploy"
	"github.com/gimlet-io/deploy-notifier/pkg/notifications"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const UsageText = `deploy-notifier
     --hook-url https://hooks.slack.com/services/T000/B000/XXXX
     --channel #deployments
     --status success
     --service api
     --environment production
     --user alice
     --version 1.2.3
     --build-number 42
     --build-url https://ci.mycompany.com/builds/42
     [--git-commit 76ab7d6 --git-message "fix bug"]`

var Flags = []cli.Flag{
	&cli.StringFlag{
		Name:     "hook-url",
		Usage:    "Slack incoming webhook URL, SLACK_WEBHOOK_URL environment variable alternatively",
		EnvVars:  []string{"SLACK_WEBHOOK_URL"},
		Required: true,
	},
	&cli.StringFlag{
		Name:     "channel",
		Usage:    "channel to post the notification to",
		Required: true,
	},
	&cli.StringFlag{
		Name:     "status",
		Usage:    "outcome of the deployment: success or failure, case-insensitive",
		Required: true,
	},
	&cli.StringFlag{
		Name:     "service",
		Usage:    "name of the deployed service",
		Required: true,
	},
	&cli.StringFlag{
		Name:     "environment",
		Usage:    "environment the service was deployed to",
		Required: true,
	},
	&cli.StringFlag{
		Name:     "user",
		Usage:    "user who triggered the deployment",
		Required: true,
	},
	&cli.StringFlag{
		Name:     "version",
		Usage:    "deployed version",
		Required: true,
	},
	&cli.StringFlag{
		Name:     "build-number",
		Usage:    "CI build number, a non-negative decimal integer",
		Required: true,
	},
	&cli.StringFlag{
		Name:     "build-url",
		Usage:    "link to the CI build",
		Required: true,
	},
	&cli.StringFlag{
		Name:  "git-commit",
		Usage: "deployed commit hash, shown together with --git-message",
	},
	&cli.StringFlag{
		Name:  "git-message",
		Usage: "deployed commit message, shown together with --git-commit",
	},
	&cli.BoolFlag{
		Name:  "dry-run",
		Usage: "validate and print the webhook payload without sending it",
	},
	&cli.BoolFlag{
		Name:  "preview",
		Usage: "render the notification in the terminal before sending it",
	},
	&cli.BoolFlag{
		Name:    "fail-on-rejection",
		Usage:   "exit with a non-zero status when the webhook rejects the notification",
		EnvVars: []string{"NOTIFIER_FAIL_ON_REJECTION"},
	},
}

// Options carries the process level settings into the command.
type Options struct {
	HTTPClient *http.Client
	UserAgent  string
}

// Action returns the command that builds the notification and posts it.
func Action(opts Options) cli.ActionFunc {
	return func(c *cli.Context) error {
		return notify(c, opts)
	}
}

func notify(c *cli.Context, opts Options) error {
	hookURL, err := parseHookURL(c.String("hook-url"))
	if err != nil {
		return err
	}

	report, err := reportFromFlags(c)
	if err != nil {
		return err
	}

	msg := notifications.NewDeploymentMessage(c.String("channel"), report)

	if c.Bool("preview") {
		banner := color.New(color.FgBlue, color.Bold).SprintFunc()
		fmt.Fprintf(c.App.Writer, "%v %s\n\n", emoji.BackhandIndexPointingRight, banner("Notification to "+msg.Channel()))
		fmt.Fprintf(c.App.Writer, "%s\n", markdown.Render(msg.Markdown(), 80, 6))
	}

	if c.Bool("dry-run") {
		return printPayload(c, msg)
	}

	logrus.Debugf("notifying %s about %s of %s to %s", msg.Channel(), report.Status, report.Service, report.Environment)

	webhook := &notifications.Webhook{
		URL:       hookURL,
		UserAgent: opts.UserAgent,
		Client:    opts.HTTPClient,
	}
	err = webhook.Post(c.Context, msg)

	var rejected *notifications.RejectedError
	if errors.As(err, &rejected) {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Fprintf(c.App.ErrWriter, "%s %d %s\n", red("Error posting to slack:"), rejected.StatusCode, rejected.Body)
		if c.Bool("fail-on-rejection") {
			return fmt.Errorf("notification rejected by webhook, status: %d", rejected.StatusCode)
		}
		return nil
	}
	if err != nil {
		return err
	}

	logrus.Infof("notification sent to %s", msg.Channel())
	return nil
}

func reportFromFlags(c *cli.Context) (*deploy.Report, error) {
	status, err := deploy.ParseStatus(c.String("status"))
	if err != nil {
		return nil, err
	}

	buildNumber, err := parseBuildNumber(c.String("build-number"))
	if err != nil {
		return nil, err
	}

	gitCommit := optional(c, "git-commit")
	gitMessage := optional(c, "git-message")
	commit := deploy.NewCommit(gitCommit, gitMessage)
	if commit == nil && (gitCommit != nil || gitMessage != nil) {
		logrus.Warnf("both --git-commit and --git-message are needed to show the commit, skipping it")
	}

	report := &deploy.Report{
		Status:      status,
		Service:     c.String("service"),
		Environment: c.String("environment"),
		User:        c.String("user"),
		Version:     c.String("version"),
		BuildNumber: buildNumber,
		BuildURL:    c.String("build-url"),
		Commit:      commit,
	}

	return report, report.Validate()
}

// optional returns nil when the flag was not given on the command line.
func optional(c *cli.Context, name string) *string {
	if !c.IsSet(name) {
		return nil
	}
	value := c.String(name)
	return &value
}

// parseBuildNumber accepts plain decimal only, 010 is ten.
func parseBuildNumber(raw string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid build-number %q, must be a non-negative decimal integer", raw)
	}
	return n, nil
}

func parseHookURL(raw string) (string, error) {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return "", fmt.Errorf("invalid hook-url: %s", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid hook-url: scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid hook-url: missing host")
	}
	return u.String(), nil
}

func printPayload(c *cli.Context, msg *notifications.Message) error {
	payload, err := msg.Payload()
	if err != nil {
		return err
	}

	err = notifications.Validate(payload)
	if err != nil {
		return err
	}

	var indented bytes.Buffer
	err = json.Indent(&indented, payload, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot format payload: %s", err)
	}

	fmt.Fprintln(c.App.Writer, indented.String())
	return nil
}
