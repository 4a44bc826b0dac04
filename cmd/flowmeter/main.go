// Command flowmeter reads the line-oriented output of the ultrasonic
// flowmeter from a serial port, assembles complete records, and stores
// them locally and (when configured) remotely.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Humphreydotbit-IoT/Flow-Rate-and-Temp/internal/config"
	"github.com/Humphreydotbit-IoT/Flow-Rate-and-Temp/internal/db"
	"github.com/Humphreydotbit-IoT/Flow-Rate-and-Temp/internal/flowmeter"
	"github.com/Humphreydotbit-IoT/Flow-Rate-and-Temp/internal/serialmux"
	"github.com/Humphreydotbit-IoT/Flow-Rate-and-Temp/internal/supabase"
	"github.com/Humphreydotbit-IoT/Flow-Rate-and-Temp/internal/units"
)

var (
	devMode    = flag.Bool("dev", false, "Run in dev mode (replay fixture lines instead of opening a serial port)")
	portPath   = flag.String("port", "/dev/ttyUSB0", "Serial port the flowmeter is attached to (ignored in dev mode)")
	baudRate   = flag.Int("baud", 9600, "Serial baud rate")
	dbFile     = flag.String("db", "sensor_data.db", "Path to the sqlite database")
	configPath = flag.String("config", "", "Optional JSON tuning config file")
	fixtures   = flag.String("fixtures", "fixtures.txt", "Fixture file replayed in dev mode")
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

	var m serialmux.SerialMuxInterface
	if *devMode {
		data, err := os.ReadFile(*fixtures)
		if err != nil {
			log.Fatalf("failed to open fixtures file: %v", err)
		}
		m = serialmux.NewMockSerialMux(data)
	} else {
		var err error
		m, err = serialmux.NewRealSerialMux(*portPath, serialmux.PortOptions{BaudRate: *baudRate})
		if err != nil {
			log.Fatalf("failed to open serial port %s: %v", *portPath, err)
		}
	}
	defer m.Close()

	d, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer d.Close()

	sinks := flowmeter.MultiSink{d}
	if remote, err := supabase.FromEnv(nil); err != nil {
		log.Printf("remote sink disabled: %v", err)
	} else {
		sinks = append(sinks, remote)
		log.Printf("remote sink enabled")
	}

	loc, err := units.DeviceLocation()
	if err != nil {
		log.Fatalf("failed to load device timezone: %v", err)
	}
	collector := flowmeter.NewCollector(loc, sinks)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	// run the monitor routine to manage IO on the serial port
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := m.Monitor(ctx); err != nil && err != context.Canceled {
			log.Printf("failed to monitor serial port: %v", err)
		}
		log.Print("monitor routine terminated")
	}()

	// buffer incoming lines so a slow sink cannot make the mux drop data
	lines := make(chan string, cfg.GetLineBufferSize())

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(lines)
		id, c := m.Subscribe()
		defer m.Unsubscribe(id)
		for {
			select {
			case line, ok := <-c:
				if !ok {
					return
				}
				select {
				case lines <- line:
				default:
					log.Printf("line buffer full, dropping line %q", line)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for line := range lines {
			if err := collector.HandleLine(line); err != nil {
				log.Printf("error handling line: %v", err)
			}
		}
	}()

	log.Printf("flowmeter collector started on %s", *portPath)
	wg.Wait()
	log.Printf("flowmeter collector stopped")
}
