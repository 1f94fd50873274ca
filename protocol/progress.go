package protocol

import (
	"context"
	"time"

	"github.com/datazip-inc/slicer/constants"
	"github.com/datazip-inc/slicer/engine"
	"github.com/datazip-inc/slicer/utils/logger"
	"github.com/datazip-inc/slicer/utils/safego"
	"github.com/dustin/go-humanize"
)

// reportProgress logs scan progress until the returned stop function is called.
func reportProgress(ctx context.Context, requestID string, progress *engine.Progress) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	safego.Go(func() {
		defer close(done)
		ticker := time.NewTicker(constants.DefaultProgressInterval * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logger.Infof("request[%s]: scanned %s rows, %s matches so far", requestID,
					humanize.Comma(progress.Scanned()), humanize.Comma(progress.Matched()))
			}
		}
	})

	return func() {
		cancel()
		<-done
	}
}
