package slackbot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

type uploader interface {
	UploadFileV2Context(ctx context.Context, params slack.UploadFileV2Parameters) (*slack.FileSummary, error)
}

// Notifier posts finished artifacts to one channel.
type Notifier struct {
	api       uploader
	channelID string
	log       *zap.Logger
}

func NewNotifier(token, channelID string, client *http.Client, log *zap.Logger) *Notifier {
	api := slack.New(token, slack.OptionHTTPClient(client))
	return &Notifier{api: api, channelID: channelID, log: log}
}

// Deliver uploads each file; the comment is attached to the first one only.
// It stops at the first failure.
func (n *Notifier) Deliver(ctx context.Context, title, comment string, files []string) error {
	if len(files) == 0 {
		return errors.New("nothing to deliver")
	}
	for i, path := range files {
		fi, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if fi.Size() <= 0 {
			return fmt.Errorf("refusing to upload empty file %s", path)
		}
		params := slack.UploadFileV2Parameters{
			File:     path,
			FileSize: int(fi.Size()),
			Filename: filepath.Base(path),
			Channel:  n.channelID,
			Title:    fmt.Sprintf("%s: %s", title, filepath.Base(path)),
		}
		if i == 0 {
			params.InitialComment = comment
		}
		if _, err := n.api.UploadFileV2Context(ctx, params); err != nil {
			return fmt.Errorf("upload %s: %w", filepath.Base(path), err)
		}
		n.log.Info("artifact delivered",
			zap.String("channel", n.channelID),
			zap.String("file", path),
			zap.Int64("bytes", fi.Size()),
		)
	}
	return nil
}
