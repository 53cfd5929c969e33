package main

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"runtime"

	"github.com/enescakir/emoji"
	"github.com/gimlet-io/deploy-notifier/cmd/deploy-notifier/config"
	"github.com/gimlet-io/deploy-notifier/pkg/commands/notify"
	"github.com/gimlet-io/deploy-notifier/pkg/version"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	err := godotenv.Load(".env")
	if err != nil {
		logrus.Debugf("could not load .env file, relying on env vars")
	}

	config, err := config.Environ()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s invalid configuration: %s\n", emoji.CrossMark, err.Error())
		os.Exit(1)
	}

	initLogger(config)
	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		logrus.Traceln(config.String())
	}

	// --version is the deployed version
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "print-version",
		Usage: "print the version of deploy-notifier",
	}

	app := &cli.App{
		Name:      "deploy-notifier",
		Version:   version.String(),
		Usage:     "posts the outcome of a deployment to a Slack channel",
		UsageText: notify.UsageText,
		Flags:     notify.Flags,
		Action: notify.Action(notify.Options{
			HTTPClient: &http.Client{Timeout: config.HTTPTimeout},
			UserAgent:  fmt.Sprintf("%s/%s", config.UserAgent, version.Version),
		}),
	}
	err = app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", emoji.CrossMark, err.Error())
		os.Exit(1)
	}
}

// helper function configures the logging.
func initLogger(c config.Config) {
	logrus.SetReportCaller(true)

	customFormatter := &logrus.TextFormatter{
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			filename := path.Base(f.File)
			return "", fmt.Sprintf("[%s:%d]", filename, f.Line)
		},
	}
	customFormatter.FullTimestamp = true
	logrus.SetFormatter(customFormatter)

	if c.Logging.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if c.Logging.Trace {
		logrus.SetLevel(logrus.TraceLevel)
	}
}
