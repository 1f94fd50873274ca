package slicer

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/datazip-inc/slicer/protocol"
	"github.com/datazip-inc/slicer/utils/logger"
	"github.com/datazip-inc/slicer/utils/safego"
)

// Run executes the slicer CLI and exits the process. An interrupt cancels the running request;
// no partial output is left behind.
func Run() {
	defer safego.Recovery(true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := protocol.CreateRootCommand().ExecuteContext(ctx)
	if err != nil {
		stop()
		logger.Fatal(err)
	}

	os.Exit(0)
}
