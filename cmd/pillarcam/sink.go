package main

import (
	"os"

	slib "github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"
	"github.com/wroteam/pillarcam/internal/pipeline"
)

// defaultBaudRate matches the drive controller's serial setup.
const defaultBaudRate = 115200

func serialOptions(port string, baud uint) slib.OpenOptions {
	return slib.OpenOptions{
		PortName:        port,
		BaudRate:        baud,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	}
}

// openSink returns the destination for commands: stdout, or the serial
// port at port configured 8N1 at baud.
func openSink(port string, baud uint) (pipeline.Sink, func(), error) {
	if port == "" {
		return pipeline.NewWriterSink(os.Stdout), func() {}, nil
	}

	conn, err := slib.Open(serialOptions(port, baud))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open serial port %s", port)
	}
	return pipeline.NewWriterSink(conn), func() { conn.Close() }, nil
}
