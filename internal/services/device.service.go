package services

import (
	"context"
	"errors"
	"os"
	"strings"

	"aboutsettings/internal/log"
	"aboutsettings/internal/models"
)

const (
	DefaultOSReleasePath = "/etc/os-release"
	DefaultHWReleasePath = "/etc/hw-release"
	DefaultSerialPath    = "/config/serial/serial.txt"

	softwareVersionKey   = "VERSION"
	adaptationVersionKey = "VERSION_ID"
)

// DeviceInfoProvider answers About panel queries. It holds no mutable
// state: every call re-reads the files and platform services it needs.
type DeviceInfoProvider struct {
	mounts     MountSource
	storage    StorageStats
	network    HardwareAddresses
	modems     ModemInfo
	candidates []string

	osReleasePath string
	hwReleasePath string
	serialPath    string
}

// Option configures a DeviceInfoProvider
type Option func(*DeviceInfoProvider)

// WithMountSource sets the mount table source
func WithMountSource(m MountSource) Option {
	return func(p *DeviceInfoProvider) { p.mounts = m }
}

// WithStorageStats sets the filesystem statistics source
func WithStorageStats(s StorageStats) Option {
	return func(p *DeviceInfoProvider) { p.storage = s }
}

// WithHardwareAddresses sets the network hardware address source
func WithHardwareAddresses(h HardwareAddresses) Option {
	return func(p *DeviceInfoProvider) { p.network = h }
}

// WithModemInfo sets the modem identity source
func WithModemInfo(m ModemInfo) Option {
	return func(p *DeviceInfoProvider) { p.modems = m }
}

// WithCandidateMounts replaces the optional mountpoints considered for disk usage
func WithCandidateMounts(candidates []string) Option {
	return func(p *DeviceInfoProvider) { p.candidates = append([]string(nil), candidates...) }
}

// WithOSReleasePath overrides the software release file
func WithOSReleasePath(path string) Option {
	return func(p *DeviceInfoProvider) { p.osReleasePath = path }
}

// WithHWReleasePath overrides the hardware adaptation release file
func WithHWReleasePath(path string) Option {
	return func(p *DeviceInfoProvider) { p.hwReleasePath = path }
}

// WithSerialPath overrides the serial number file
func WithSerialPath(path string) Option {
	return func(p *DeviceInfoProvider) { p.serialPath = path }
}

// NewDeviceInfoProvider creates a provider bound to the host platform,
// adjusted by opts
func NewDeviceInfoProvider(opts ...Option) *DeviceInfoProvider {
	p := &DeviceInfoProvider{
		mounts:        PartitionMounts{},
		storage:       DiskStats{},
		network:       NewSysfsNetwork(""),
		modems:        NewOfonoModems(),
		candidates:    append([]string(nil), DefaultCandidateMounts...),
		osReleasePath: DefaultOSReleasePath,
		hwReleasePath: DefaultHWReleasePath,
		serialPath:    DefaultSerialPath,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LogMounts writes the current mount table at debug level
func (p *DeviceInfoProvider) LogMounts(ctx context.Context) {
	records, err := p.mounts.Mounts(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Could not read mount table")
		return
	}
	mountpoints := make([]string, 0, len(records))
	for _, record := range records {
		mountpoints = append(mountpoints, record.Mountpoint)
	}
	log.Debug().Strs("drives", mountpoints).Msg("Drives")
}

// TotalDiskSpace returns the size in bytes of the root filesystem
func (p *DeviceInfoProvider) TotalDiskSpace(ctx context.Context) uint64 {
	total, _ := p.rootUsage(ctx)
	return total
}

// AvailableDiskSpace returns the bytes available on the root filesystem
func (p *DeviceInfoProvider) AvailableDiskSpace(ctx context.Context) uint64 {
	_, available := p.rootUsage(ctx)
	return available
}

func (p *DeviceInfoProvider) rootUsage(ctx context.Context) (uint64, uint64) {
	total, available, err := p.storage.Usage(ctx, RootPath)
	if err != nil {
		log.Warn().Err(err).Msg("Could not get root disk usage")
		return 0, 0
	}
	return total, available
}

// DiskUsageModel returns one row per reported path, root first
func (p *DeviceInfoProvider) DiskUsageModel(ctx context.Context) []models.DiskUsageRow {
	return BuildDiskUsage(ctx, p.mounts, p.storage, p.candidates)
}

// BluetoothAddress returns the address of the first Bluetooth adapter
func (p *DeviceInfoProvider) BluetoothAddress(ctx context.Context) string {
	return p.macAddress(ctx, BluetoothMode)
}

// WlanMacAddress returns the address of the first WLAN interface
func (p *DeviceInfoProvider) WlanMacAddress(ctx context.Context) string {
	return p.macAddress(ctx, WlanMode)
}

func (p *DeviceInfoProvider) macAddress(ctx context.Context, mode NetworkMode) string {
	address, err := p.network.MacAddress(ctx, mode, 0)
	if err != nil {
		logUnavailable(err, mode.String()+" address")
		return ""
	}
	return address
}

// IMEI returns the IMEI of the first modem
func (p *DeviceInfoProvider) IMEI(ctx context.Context) string {
	imei, err := p.modems.IMEI(ctx, 0)
	if err != nil {
		logUnavailable(err, "imei")
		return ""
	}
	return imei
}

// Serial returns the device serial number. Only some hardware ships the
// serial file; elsewhere the IMEI identifies the device instead.
func (p *DeviceInfoProvider) Serial() string {
	data, err := os.ReadFile(p.serialPath)
	if err != nil {
		logUnavailable(err, "serial")
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SoftwareVersion returns VERSION from the os-release file
func (p *DeviceInfoProvider) SoftwareVersion() string {
	return ParseReleaseFile(p.osReleasePath).Get(softwareVersionKey)
}

// AdaptationVersion returns VERSION_ID from the hw-release file
func (p *DeviceInfoProvider) AdaptationVersion() string {
	return ParseReleaseFile(p.hwReleasePath).Get(adaptationVersionKey)
}

// DiskSpace returns root filesystem capacity with a single statistics query
func (p *DeviceInfoProvider) DiskSpace(ctx context.Context) models.DiskSpace {
	total, available := p.rootUsage(ctx)
	return models.DiskSpace{Total: total, Available: available}
}

// NetworkAddresses returns both hardware addresses
func (p *DeviceInfoProvider) NetworkAddresses(ctx context.Context) models.NetworkAddresses {
	return models.NetworkAddresses{
		BluetoothAddress: p.BluetoothAddress(ctx),
		WlanMacAddress:   p.WlanMacAddress(ctx),
	}
}

// Identifiers returns the IMEI and serial number
func (p *DeviceInfoProvider) Identifiers(ctx context.Context) models.Identifiers {
	return models.Identifiers{
		IMEI:   p.IMEI(ctx),
		Serial: p.Serial(),
	}
}

// Versions returns the software and adaptation versions
func (p *DeviceInfoProvider) Versions() models.Versions {
	return models.Versions{
		SoftwareVersion:   p.SoftwareVersion(),
		AdaptationVersion: p.AdaptationVersion(),
	}
}

// About collects every value shown in the About panel
func (p *DeviceInfoProvider) About(ctx context.Context) models.AboutInfo {
	return models.AboutInfo{
		Disk:        p.DiskSpace(ctx),
		DiskUsage:   p.DiskUsageModel(ctx),
		Network:     p.NetworkAddresses(ctx),
		Identifiers: p.Identifiers(ctx),
		Versions:    p.Versions(),
	}
}

// logUnavailable records why a value degraded to empty. Missing hardware or
// files are expected and logged at debug; anything else is a warning.
func logUnavailable(err error, what string) {
	if errors.Is(err, ErrNoDevice) || errors.Is(err, os.ErrNotExist) {
		log.Debug().Err(err).Msgf("%s not available", what)
		return
	}
	log.Warn().Err(err).Msgf("Could not get %s", what)
}
