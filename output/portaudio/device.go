// SPDX-License-Identifier: EPL-2.0

package portaudio

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gordonklaus/portaudio"
)

func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initialize portaudio: %w", err)
	}
	return nil
}

func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("terminate portaudio: %w", err)
	}
	return nil
}

// Device describes an output device.
type Device struct {
	Index             int
	Name              string
	HostAPI           string
	MaxOutputChannels int
	DefaultSampleRate float64
	LowLatency        time.Duration
	Default           bool
}

func (d Device) String() string {
	mark := ""
	if d.Default {
		mark = " (default)"
	}
	return fmt.Sprintf("%d: %s [%s] %dch %.0fHz%s", d.Index, d.Name, d.HostAPI, d.MaxOutputChannels, d.DefaultSampleRate, mark)
}

// Devices lists the devices that can play audio.
func Devices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	var def *portaudio.DeviceInfo
	if d, err := portaudio.DefaultOutputDevice(); err == nil {
		def = d
	}

	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		if info.MaxOutputChannels == 0 {
			continue
		}

		d := Device{
			Index:             info.Index,
			Name:              info.Name,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
			LowLatency:        info.DefaultLowOutputLatency,
			Default:           def != nil && def.Index == info.Index,
		}
		if info.HostApi != nil {
			d.HostAPI = info.HostApi.Name
		}
		devices = append(devices, d)
	}

	return devices, nil
}

// findDevice picks the device named by id, which is either a device index
// or an exact device name.
func findDevice(infos []*portaudio.DeviceInfo, id string) (*portaudio.DeviceInfo, error) {
	idx, err := strconv.Atoi(id)
	byIndex := err == nil

	for _, info := range infos {
		if (byIndex && info.Index == idx) || (!byIndex && info.Name == id) {
			if info.MaxOutputChannels == 0 {
				return nil, fmt.Errorf("%w: %s", ErrNoOutput, info.Name)
			}
			return info, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrDeviceNotFound, id)
}

func outputDevice(id string) (*portaudio.DeviceInfo, error) {
	if id == "" {
		d, err := portaudio.DefaultOutputDevice()
		if err != nil {
			return nil, fmt.Errorf("default output device: %w", err)
		}
		return d, nil
	}

	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return findDevice(infos, id)
}
