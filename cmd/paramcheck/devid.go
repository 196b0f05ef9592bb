package main

import (
	"fmt"
	"strconv"

	"github.com/paramcheck/paramcheck/internal/devid"
)

type devidCommand struct {
	Decode decodeCommand `command:"decode" description:"Decode a device id"`
	Encode encodeCommand `command:"encode" description:"Encode a device id"`
}

type decodeCommand struct {
	Args struct {
		ID string `positional-arg-name:"ID" description:"Device id, decimal or 0x hex" required:"yes"`
	} `positional-args:"yes" required:"yes"`
}

func (c *decodeCommand) Execute(_ []string) error {
	id, err := strconv.ParseUint(c.Args.ID, 0, 32)
	if err != nil {
		return fmt.Errorf("invalid device id %q: %w", c.Args.ID, err)
	}
	fmt.Fprintf(stdout, "Device ID: %d\n", id)
	fmt.Fprintln(stdout, devid.Decode(uint32(id)))
	return nil
}

type encodeCommand struct {
	BusType string `long:"bus-type" description:"Bus type, 0-7 or a name such as I2C" required:"yes"`
	Bus     int    `long:"bus" description:"Bus number (0-31)" required:"yes"`
	Address int    `long:"address" description:"Address on the bus (0-255)" required:"yes"`
	DevType int    `long:"devtype" description:"Driver device type (0-255)" required:"yes"`
}

func (c *encodeCommand) Execute(_ []string) error {
	bt, err := parseBusType(c.BusType)
	if err != nil {
		return err
	}
	id, err := devid.Encode(devid.DeviceID{
		BusType: bt,
		Bus:     c.Bus,
		Address: c.Address,
		DevType: c.DevType,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Device ID: %d\n", id)
	return nil
}

func parseBusType(s string) (devid.BusType, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return devid.ParseBusType(s)
	}
	if n < 0 || n > 7 {
		return 0, fmt.Errorf("%w: bus type %d not in 0-7", devid.ErrOutOfRange, n)
	}
	return devid.BusType(n), nil
}
