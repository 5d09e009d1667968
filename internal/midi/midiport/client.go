// Package midiport captures input through gomidi, for systems without a
// native backend. A gomidi driver must be registered by the program.
package midiport

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/leandrodaf/midilink/sdk/contracts"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

var (
	// ErrNoMIDIDevices is returned when the driver reports no input ports.
	ErrNoMIDIDevices = errors.New("no MIDI devices found")
	// ErrInvalidMIDIDevice is returned for an out-of-range device index.
	ErrInvalidMIDIDevice = errors.New("invalid MIDI device")
)

// Client implements contracts.ClientMIDI with gomidi input ports.
type Client struct {
	logger contracts.Logger
	filter *contracts.MIDIEventFilter
	named  string
	ports  func() []drivers.In
	listen func(drivers.In, func(gomidi.Message, int32)) (func(), error)

	mu     sync.Mutex
	port   drivers.In
	stop   func()
	events chan contracts.MIDI
}

// NewMIDIClient creates a gomidi-backed client. When options.InputPort is set
// the first port whose name contains it can be selected with SelectDevice(-1).
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	return &Client{
		logger: options.Logger,
		filter: options.MIDIEventFilter,
		named:  options.InputPort,
		ports:  func() []drivers.In { return gomidi.GetInPorts() },
		listen: func(in drivers.In, fn func(gomidi.Message, int32)) (func(), error) {
			return gomidi.ListenTo(in, fn)
		},
	}, nil
}

// FindDevice returns the index of the first port whose name contains name.
func (c *Client) FindDevice(name string) (int, error) {
	for i, in := range c.ports() {
		if strings.Contains(strings.ToLower(in.String()), strings.ToLower(name)) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrInvalidMIDIDevice, name)
}

// ListDevices lists the input ports known to the registered driver.
func (c *Client) ListDevices() ([]contracts.DeviceInfo, error) {
	ports := c.ports()
	if len(ports) == 0 {
		return nil, ErrNoMIDIDevices
	}
	devices := make([]contracts.DeviceInfo, len(ports))
	for i, in := range ports {
		devices[i] = contracts.DeviceInfo{Name: in.String(), EntityName: in.String()}
	}
	return devices, nil
}

// SelectDevice picks input port deviceID and starts listening to it. A
// negative deviceID resolves the configured input port name.
func (c *Client) SelectDevice(deviceID int) error {
	if deviceID < 0 && c.named != "" {
		id, err := c.FindDevice(c.named)
		if err != nil {
			return err
		}
		deviceID = id
	}
	ports := c.ports()
	if deviceID < 0 || deviceID >= len(ports) {
		return fmt.Errorf("%w: %d", ErrInvalidMIDIDevice, deviceID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop != nil {
		c.stop()
		c.stop = nil
	}

	stop, err := c.listen(ports[deviceID], c.handle)
	if err != nil {
		return fmt.Errorf("open input %q: %w", ports[deviceID].String(), err)
	}
	c.port = ports[deviceID]
	c.stop = stop
	c.logger.Info("MIDI device connected",
		c.logger.Field().Int("deviceID", deviceID),
		c.logger.Field().String("deviceName", c.port.String()))
	return nil
}

func (c *Client) handle(msg gomidi.Message, _ int32) {
	if len(msg) < 3 {
		return
	}
	event := contracts.Normalize(msg[0], msg[1], msg[2])
	event.Timestamp = uint64(time.Now().UTC().UnixNano())
	if !c.filter.Allows(event.Command) {
		return
	}

	c.mu.Lock()
	events := c.events
	c.mu.Unlock()
	if events == nil {
		return
	}
	select {
	case events <- event:
	default:
		c.logger.Warn("Capture buffer full; dropping MIDI event")
	}
}

// StartCapture routes captured events to eventChannel.
func (c *Client) StartCapture(eventChannel chan contracts.MIDI) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = eventChannel
}

// Stop closes the input port. Safe to call twice.
func (c *Client) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	c.events = nil
	return nil
}
