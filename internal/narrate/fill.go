package narrate

import (
	"context"

	"github.com/sirupsen/logrus"

	"talecanvas/internal/domain/storybook"
)

// Fill synthesizes narration for every page (and the cover, using the
// theme) that has none, pointing its audio ref at the cached mp3. Pages
// that already narrate are left alone; individual failures are logged and
// skipped so a partial book still plays.
func (n *Narrator) Fill(ctx context.Context, book *storybook.Storybook) int {
	filled := 0

	if book.Cover.AudioRef() == "" && book.Theme != "" {
		if path, err := n.Synthesize(ctx, book.Theme); err != nil {
			logrus.WithError(err).Warn("cover narration synthesis failed")
		} else {
			book.Cover.AudioURL = path
			book.Cover.AudioSuccess = true
			filled++
		}
	}

	for i := range book.Pages {
		page := &book.Pages[i]
		if page.AudioRef() != "" || page.Text == "" {
			continue
		}
		path, err := n.Synthesize(ctx, page.Text)
		if err != nil {
			logrus.WithError(err).WithField("page", page.PageNumber).
				Warn("page narration synthesis failed")
			continue
		}
		page.AudioURL = path
		page.AudioSuccess = true
		filled++
	}

	if filled > 0 {
		logrus.WithField("filled", filled).Info("missing narration synthesized")
	}
	return filled
}
