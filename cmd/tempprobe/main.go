// Command tempprobe polls the dual-channel temperature probe over its
// half-duplex serial link, decodes the BCD frames it answers with, and
// stores validated readings locally and (when configured) remotely.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/Humphreydotbit-IoT/Flow-Rate-and-Temp/internal/config"
	"github.com/Humphreydotbit-IoT/Flow-Rate-and-Temp/internal/db"
	"github.com/Humphreydotbit-IoT/Flow-Rate-and-Temp/internal/serialmux"
	"github.com/Humphreydotbit-IoT/Flow-Rate-and-Temp/internal/supabase"
	"github.com/Humphreydotbit-IoT/Flow-Rate-and-Temp/internal/tempframe"
)

var (
	portPath   = flag.String("port", "/dev/ttyUSB1", "Serial port the temperature probe is attached to")
	baudRate   = flag.Int("baud", 9600, "Serial baud rate")
	dbFile     = flag.String("db", "sensor_data.db", "Path to the sqlite database")
	configPath = flag.String("config", "", "Optional JSON tuning config file")
	interval   = flag.Duration("interval", 0, "Poll interval override (0 uses the config value)")
)

func main() {
	flag.Parse()

	cfg := config.Empty()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	pollInterval := cfg.GetPollInterval()
	if *interval > 0 {
		pollInterval = *interval
	}

	port, err := serialmux.OpenPort(*portPath, serialmux.PortOptions{BaudRate: *baudRate})
	if err != nil {
		log.Fatalf("failed to open serial port %s: %v", *portPath, err)
	}
	defer port.Close()

	// a short read timeout turns an empty poll response into a normal
	// zero-byte read instead of a blocked cycle
	if err := port.SetReadTimeout(time.Second); err != nil {
		log.Fatalf("failed to set read timeout: %v", err)
	}

	d, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer d.Close()

	sinks := tempframe.MultiSink{d}
	if remote, err := supabase.FromEnv(nil); err != nil {
		log.Printf("remote sink disabled: %v", err)
	} else {
		sinks = append(sinks, remote)
		log.Printf("remote sink enabled")
	}

	poller := tempframe.NewPoller(port, sinks, tempframe.PollerConfig{
		Interval:    pollInterval,
		SettleDelay: cfg.GetSettleDelay(),
		ChunkSize:   cfg.GetChunkSize(),
		Retention:   cfg.GetFrameRetention(),
		Accept:      cfg.GetTempRange(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("temperature collector started on %s, polling every %s", *portPath, pollInterval)
	log.Print("waiting for device to stabilize...")
	time.Sleep(2 * time.Second)

	if err := poller.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Print("temperature collector stopped")
			return
		}
		if errors.Is(err, tempframe.ErrDeviceUnresponsive) {
			if f, ok := poller.LastFrame(); ok {
				log.Printf("last valid frame was: %s", f)
			}
			log.Fatal("probe is not responding, check the device connection")
		}
		log.Fatalf("poller stopped: %v", err)
	}
}
