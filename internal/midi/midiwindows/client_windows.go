//go:build windows
// +build windows

package midiwindows

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/leandrodaf/midilink/sdk/contracts"
	"golang.org/x/sys/windows"
)

type hMIDIIn windows.Handle

const (
	callbackFunction = 0x00030000
	midiIOStatus     = 0x00000020
)

// WinMM input messages delivered to the callback.
const (
	mimOpen      = 0x3C1
	mimClose     = 0x3C2
	mimData      = 0x3C3
	mimError     = 0x3C5
	mimLongError = 0x3C6
	mimMoreData  = 0x3CC
)

type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

var (
	// ErrNoMIDIDevices is returned when WinMM reports no input devices.
	ErrNoMIDIDevices = errors.New("no MIDI devices found")
	// ErrNotSelected is returned when capture starts before SelectDevice.
	ErrNotSelected = errors.New("no MIDI device selected")
	// ErrInvalidMIDIDevice is returned for a device index WinMM does not know.
	ErrInvalidMIDIDevice = errors.New("invalid MIDI device")
)

var (
	winmm                = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen       = winmm.NewProc("midiInOpen")
	procMidiInStart      = winmm.NewProc("midiInStart")
	procMidiInStop       = winmm.NewProc("midiInStop")
	procMidiInClose      = winmm.NewProc("midiInClose")

	// inputCallback is shared by every client; the runtime caps how many
	// callbacks a process may create.
	inputCallback = windows.NewCallback(midiInCallback)
)

// ClientMid captures note events from a WinMM input device.
type ClientMid struct {
	logger       contracts.Logger
	eventChannel atomic.Value // chan contracts.MIDI
	handle       hMIDIIn
	open         bool
	mu           sync.Mutex
	callback     uintptr
	filter       *contracts.MIDIEventFilter
}

// NewMIDIClient creates a WinMM capture client.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Info("WinMM MIDI client created")
	return &ClientMid{
		logger:   options.Logger,
		filter:   options.MIDIEventFilter,
		callback: inputCallback,
	}, nil
}

// ListDevices lists the WinMM input devices.
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	r0, _, _ := procMidiInGetNumDevs.Call()
	numDevices := uint32(r0)
	if numDevices == 0 {
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, 0, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var caps midiInCaps
		r1, _, _ := procMidiInGetDevCaps.Call(
			uintptr(i),
			uintptr(unsafe.Pointer(&caps)),
			unsafe.Sizeof(caps),
		)
		if r1 != 0 {
			m.logger.Warn("Failed to read device capabilities", m.logger.Field().Int("deviceID", int(i)))
			continue
		}
		name := windows.UTF16ToString(caps.szPname[:])
		devices = append(devices, contracts.DeviceInfo{
			Name:         name,
			EntityName:   name,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
		})
	}
	return devices, nil
}

// SelectDevice opens deviceID, closing any previously opened device.
func (m *ClientMid) SelectDevice(deviceID int) error {
	if r0, _, _ := procMidiInGetNumDevs.Call(); deviceID < 0 || deviceID >= int(r0) {
		return fmt.Errorf("%w: %d", ErrInvalidMIDIDevice, deviceID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.open {
		if err := m.closeLocked(); err != nil {
			return fmt.Errorf("failed to close previous MIDI device: %w", err)
		}
	}

	r1, _, err := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&m.handle)),
		uintptr(deviceID),
		m.callback,
		uintptr(unsafe.Pointer(m)),
		uintptr(callbackFunction|midiIOStatus),
	)
	if r1 != 0 {
		return fmt.Errorf("failed to open MIDI device %d: %v", deviceID, err)
	}

	m.open = true
	m.logger.Info("MIDI device connected", m.logger.Field().Int("deviceID", deviceID))
	return nil
}

// StartCapture routes captured events to eventChannel.
func (m *ClientMid) StartCapture(eventChannel chan contracts.MIDI) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.open || m.handle == 0 {
		m.logger.Error("Cannot start capture", m.logger.Field().Error("error", ErrNotSelected))
		return
	}

	m.eventChannel.Store(eventChannel)
	if r1, _, err := procMidiInStart.Call(uintptr(m.handle)); r1 != 0 {
		m.logger.Error("Failed to start MIDI capture", m.logger.Field().Error("error", err))
		return
	}
	m.logger.Info("MIDI capture started")
}

func midiInCallback(hMidiIn uintptr, wMsg uint32, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	m := (*ClientMid)(unsafe.Pointer(dwInstance))

	switch wMsg {
	case mimOpen, mimClose, mimMoreData:
	case mimData:
		event := contracts.Normalize(
			byte(dwParam1&0xFF),
			byte((dwParam1>>8)&0xFF),
			byte((dwParam1>>16)&0xFF),
		)
		event.Timestamp = uint64(time.Now().UTC().UnixNano())
		if !m.filter.Allows(event.Command) {
			return 0
		}
		if ch, ok := m.eventChannel.Load().(chan contracts.MIDI); ok && ch != nil {
			select {
			case ch <- event:
			default:
				m.logger.Warn("Capture buffer full; dropping MIDI event")
			}
		}
	case mimError, mimLongError:
		m.logger.Error("MIDI input error", m.logger.Field().Uint64("message", uint64(wMsg)))
	default:
		m.logger.Debug("Unknown MIDI input message", m.logger.Field().Uint64("message", uint64(wMsg)))
	}
	return 0
}

// Stop ends capture and closes the device. Safe to call when nothing is open.
func (m *ClientMid) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.open {
		return nil
	}
	if err := m.closeLocked(); err != nil {
		return fmt.Errorf("failed to stop MIDI capture: %w", err)
	}
	m.logger.Info("MIDI capture stopped")
	return nil
}

func (m *ClientMid) closeLocked() error {
	if r1, _, err := procMidiInStop.Call(uintptr(m.handle)); r1 != 0 {
		return err
	}
	if r1, _, err := procMidiInClose.Call(uintptr(m.handle)); r1 != 0 {
		return err
	}
	m.open = false
	m.handle = 0
	m.eventChannel.Store((chan contracts.MIDI)(nil))
	return nil
}
