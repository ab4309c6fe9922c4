package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/parcel-sim/parcel-sim/server"
	"github.com/parcel-sim/parcel-sim/sim"
)

var (
	addr           string        // HTTP listen address
	frameInterval  time.Duration // Wall-clock time between frames
	broadcastEvery int           // Broadcast one frame in N
)

// serveCmd runs the simulation in real time behind the snapshot server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the simulation in real time and serve snapshots over HTTP and websocket",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := buildConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		s, err := sim.NewSimulator(cfg, seed)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(s, server.Options{FrameInterval: frameInterval, BroadcastEvery: broadcastEvery})
		logrus.Infof("Serving run %s on %s", s.RunID, addr)
		if err := srv.ListenAndServe(ctx, addr); err != nil {
			logrus.Fatalf("server: %v", err)
		}
		logrus.Info("Server stopped.")
	},
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address")
	serveCmd.Flags().DurationVar(&frameInterval, "frame-interval", 33*time.Millisecond, "Wall-clock time between frames")
	serveCmd.Flags().IntVar(&broadcastEvery, "broadcast-every", 1, "Broadcast one frame in N")
}
