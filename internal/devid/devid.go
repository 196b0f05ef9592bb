// Package devid packs and unpacks ArduPilot sensor device ids.
//
// A device id is a 24-bit value laid out as
//
//	bits 0-2   bus type
//	bits 3-7   bus number
//	bits 8-15  address on the bus
//	bits 16-23 driver specific device type
package devid

import (
	"errors"
	"fmt"
	"strings"
)

type BusType uint8

const (
	BusUnknown BusType = iota
	BusI2C
	BusSPI
	BusUAVCAN
	BusSITL
	BusMSP
	BusSerial
	BusQSPI
)

var busNames = [...]string{"UNKNOWN", "I2C", "SPI", "UAVCAN", "SITL", "MSP", "SERIAL", "QSPI"}

func (b BusType) String() string {
	if int(b) < len(busNames) {
		return busNames[b]
	}
	return fmt.Sprintf("BusType(%d)", uint8(b))
}

// ParseBusType accepts a bus type name, case insensitive.
func ParseBusType(s string) (BusType, error) {
	for i, name := range busNames {
		if strings.EqualFold(s, name) {
			return BusType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown bus type %q", ErrOutOfRange, s)
}

const (
	maxBusType = 7
	maxBus     = 31
	maxAddress = 255
	maxDevType = 255
)

var ErrOutOfRange = errors.New("device id field out of range")

type DeviceID struct {
	BusType BusType
	Bus     int
	Address int
	DevType int
}

func (d DeviceID) String() string {
	return fmt.Sprintf("%s%d, address %d, devtype %d", d.BusType, d.Bus, d.Address, d.DevType)
}

func Encode(d DeviceID) (uint32, error) {
	if err := checkField("bus type", int(d.BusType), maxBusType); err != nil {
		return 0, err
	}
	if err := checkField("bus", d.Bus, maxBus); err != nil {
		return 0, err
	}
	if err := checkField("address", d.Address, maxAddress); err != nil {
		return 0, err
	}
	if err := checkField("devtype", d.DevType, maxDevType); err != nil {
		return 0, err
	}
	return uint32(d.BusType) | uint32(d.Bus)<<3 | uint32(d.Address)<<8 | uint32(d.DevType)<<16, nil
}

func Decode(id uint32) DeviceID {
	return DeviceID{
		BusType: BusType(id & 0x7),
		Bus:     int(id>>3) & 0x1f,
		Address: int(id>>8) & 0xff,
		DevType: int(id>>16) & 0xff,
	}
}

// IsDeviceIDParam reports whether a parameter name holds a device id.
func IsDeviceIDParam(name string) bool {
	return strings.HasSuffix(name, "_DEV_ID") || strings.HasSuffix(name, "DEVID")
}

func checkField(field string, v, max int) error {
	if v < 0 || v > max {
		return fmt.Errorf("%w: %s %d not in 0-%d", ErrOutOfRange, field, v, max)
	}
	return nil
}
