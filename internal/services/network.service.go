package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	psnet "github.com/shirou/gopsutil/v3/net"
)

// ErrNoDevice is returned when the requested hardware or index does not exist
var ErrNoDevice = errors.New("no such device")

// NetworkMode selects the interface class for a hardware address lookup
type NetworkMode int

const (
	BluetoothMode NetworkMode = iota
	WlanMode
)

func (m NetworkMode) String() string {
	switch m {
	case BluetoothMode:
		return "bluetooth"
	case WlanMode:
		return "wlan"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// HardwareAddresses looks up hardware addresses by interface class and index
type HardwareAddresses interface {
	MacAddress(ctx context.Context, mode NetworkMode, index int) (string, error)
}

// InterfaceLister enumerates network interfaces
type InterfaceLister func(ctx context.Context) ([]psnet.InterfaceStat, error)

// SysfsNetwork resolves Bluetooth addresses from sysfs and WLAN addresses
// from the kernel interface list
type SysfsNetwork struct {
	Root       string
	Interfaces InterfaceLister
}

// NewSysfsNetwork creates a SysfsNetwork rooted at sysfsRoot ("/sys" if empty)
func NewSysfsNetwork(sysfsRoot string) *SysfsNetwork {
	if sysfsRoot == "" {
		sysfsRoot = "/sys"
	}
	return &SysfsNetwork{
		Root: sysfsRoot,
		Interfaces: func(ctx context.Context) ([]psnet.InterfaceStat, error) {
			return psnet.InterfacesWithContext(ctx)
		},
	}
}

// MacAddress returns the hardware address of the index-th device of mode
func (n *SysfsNetwork) MacAddress(ctx context.Context, mode NetworkMode, index int) (string, error) {
	if index < 0 {
		return "", fmt.Errorf("%s index %d: %w", mode, index, ErrNoDevice)
	}

	switch mode {
	case BluetoothMode:
		return n.bluetoothAddress(index)
	case WlanMode:
		return n.wlanAddress(ctx, index)
	default:
		return "", fmt.Errorf("unsupported network mode %s", mode)
	}
}

func (n *SysfsNetwork) bluetoothAddress(index int) (string, error) {
	path := filepath.Join(n.Root, "class", "bluetooth", fmt.Sprintf("hci%d", index), "address")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("bluetooth hci%d: %w", index, ErrNoDevice)
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (n *SysfsNetwork) wlanAddress(ctx context.Context, index int) (string, error) {
	interfaces, err := n.Interfaces(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list interfaces: %w", err)
	}

	var wireless []psnet.InterfaceStat
	for _, iface := range interfaces {
		if n.isWireless(iface.Name) {
			wireless = append(wireless, iface)
		}
	}
	sort.Slice(wireless, func(i, j int) bool {
		return wireless[i].Name < wireless[j].Name
	})

	if index >= len(wireless) {
		return "", fmt.Errorf("wlan index %d: %w", index, ErrNoDevice)
	}
	return wireless[index].HardwareAddr, nil
}

// isWireless reports whether name is a WLAN interface, by conventional
// name or by the presence of the wireless/phy80211 sysfs nodes
func (n *SysfsNetwork) isWireless(name string) bool {
	if strings.HasPrefix(name, "wlan") {
		return true
	}
	for _, node := range []string{"wireless", "phy80211"} {
		if _, err := os.Stat(filepath.Join(n.Root, "class", "net", name, node)); err == nil {
			return true
		}
	}
	return false
}
