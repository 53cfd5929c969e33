package notifications

import (
	"fmt"

	"github.com/gimlet-io/deploy-notifier/pkg/deploy"
)

// NewDeploymentMessage lays out the deployment report as a header,
// a row of build info fields and the deployed commit when it is known.
func NewDeploymentMessage(channel string, report *deploy.Report) *Message {
	msg := &slackMessage{
		Username: Username,
		Channel:  channel,
		Blocks: []Block{
			header(report),
			buildInfo(report),
		},
	}

	if report.Commit != nil {
		msg.Blocks = append(msg.Blocks, commitInfo(report.Commit))
	}

	return &Message{msg: msg}
}

func header(report *deploy.Report) Block {
	switch report.Status {
	case deploy.Success:
		return textBlock(fmt.Sprintf(":white_check_mark: Deployment of *%s* to *%s* successful.", report.Service, report.Environment))
	default:
		return textBlock(fmt.Sprintf(":no_entry: Deployment of *%s* to *%s* failed.", report.Service, report.Environment))
	}
}

func buildInfo(report *deploy.Report) Block {
	return fieldsBlock(
		fmt.Sprintf("*Version:*\n%s", report.Version),
		fmt.Sprintf("*Build:*\n<%s|%d>", report.BuildURL, report.BuildNumber),
		fmt.Sprintf("*Triggered by:*\n%s", report.User),
	)
}

func commitInfo(commit *deploy.Commit) Block {
	return textBlock(fmt.Sprintf("```Commit: %s\n%s```", commit.Hash, commit.Message))
}
