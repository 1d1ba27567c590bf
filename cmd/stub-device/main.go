// Command stub-device is the microcontroller-side peer of the link layer
// (spec §4.7/§4.8): it opens a real serial port and runs the frame
// dispatcher with the synthetic METEO module, mirroring
// node_stub/src/main.rs from the original implementation this gateway
// was modeled on.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.bug.st/serial"

	"sensorgate/gateway/stub"
	"sensorgate/gateway/stub/meteo"
	"sensorgate/internal/logging"
)

var portPath = flag.String("port", "", "serial device path (e.g. /dev/ttyUSB0)")

func main() {
	flag.Parse()
	log := logging.Setup(slog.LevelInfo)

	if *portPath == "" {
		log.Error("missing -port")
		os.Exit(1)
	}

	port, err := serial.Open(*portPath, &serial.Mode{BaudRate: 115200})
	if err != nil {
		log.Error("could not open serial port", "path", *portPath, "error", err)
		os.Exit(1)
	}
	defer port.Close()

	modules := map[string]stub.Module{
		"METEO": meteo.New(),
	}
	d := stub.New(port, modules, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("stub device running", "port", *portPath)
	if err := d.Run(ctx); err != nil {
		log.Warn("stub device stopped", "error", err)
	}
}
