package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"aboutsettings/internal/models"

	"github.com/stretchr/testify/suite"
)

type fakeAddresses map[NetworkMode]string

func (f fakeAddresses) MacAddress(_ context.Context, mode NetworkMode, index int) (string, error) {
	address, ok := f[mode]
	if !ok || index != 0 {
		return "", fmt.Errorf("%s: %w", mode, ErrNoDevice)
	}
	return address, nil
}

type fakeModem struct {
	imei string
	err  error
}

func (f fakeModem) IMEI(context.Context, int) (string, error) {
	return f.imei, f.err
}

// DeviceInfoProviderTestSuite tests DeviceInfoProvider against fake platform services
type DeviceInfoProviderTestSuite struct {
	suite.Suite
	dir      string
	ctx      context.Context
	provider *DeviceInfoProvider
}

func (s *DeviceInfoProviderTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.ctx = context.Background()
	s.provider = NewDeviceInfoProvider(
		WithMountSource(fakeMounts{records: []models.MountRecord{
			{Mountpoint: "/", Device: "/dev/sda1"},
			{Mountpoint: "/home", Device: "/dev/sda2"},
		}}),
		WithStorageStats(testStats),
		WithHardwareAddresses(fakeAddresses{
			BluetoothMode: "00:11:22:33:44:55",
			WlanMode:      "66:77:88:99:aa:bb",
		}),
		WithModemInfo(fakeModem{imei: "356938035643809"}),
		WithOSReleasePath(filepath.Join(s.dir, "os-release")),
		WithHWReleasePath(filepath.Join(s.dir, "hw-release")),
		WithSerialPath(filepath.Join(s.dir, "serial.txt")),
	)
}

func (s *DeviceInfoProviderTestSuite) write(name, content string) {
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, name), []byte(content), 0o644))
}

func (s *DeviceInfoProviderTestSuite) TestDiskSpace() {
	s.Equal(uint64(1000), s.provider.TotalDiskSpace(s.ctx))
	s.Equal(uint64(400), s.provider.AvailableDiskSpace(s.ctx))
	s.Equal(models.DiskSpace{Total: 1000, Available: 400}, s.provider.DiskSpace(s.ctx))
}

func (s *DeviceInfoProviderTestSuite) TestDiskSpaceStatsError() {
	p := NewDeviceInfoProvider(WithStorageStats(fakeStats{err: map[string]error{"/": errors.New("boom")}}))
	s.Equal(uint64(0), p.TotalDiskSpace(s.ctx))
	s.Equal(uint64(0), p.AvailableDiskSpace(s.ctx))
}

func (s *DeviceInfoProviderTestSuite) TestDiskUsageModel() {
	rows := s.provider.DiskUsageModel(s.ctx)
	s.Require().Len(rows, 2)
	s.Equal(models.StorageSystem, rows[0].StorageType)
	s.Equal(models.StorageUser, rows[1].StorageType)
}

func (s *DeviceInfoProviderTestSuite) TestDiskUsageModelCandidates() {
	WithCandidateMounts(nil)(s.provider)
	rows := s.provider.DiskUsageModel(s.ctx)
	s.Require().Len(rows, 1)
	s.Equal(models.StorageMass, rows[0].StorageType)
}

func (s *DeviceInfoProviderTestSuite) TestNetworkAddresses() {
	s.Equal("00:11:22:33:44:55", s.provider.BluetoothAddress(s.ctx))
	s.Equal("66:77:88:99:aa:bb", s.provider.WlanMacAddress(s.ctx))
}

func (s *DeviceInfoProviderTestSuite) TestNetworkAddressesUnavailable() {
	WithHardwareAddresses(fakeAddresses{})(s.provider)
	s.Equal(models.NetworkAddresses{}, s.provider.NetworkAddresses(s.ctx))
}

func (s *DeviceInfoProviderTestSuite) TestIMEI() {
	s.Equal("356938035643809", s.provider.IMEI(s.ctx))

	WithModemInfo(fakeModem{err: errors.New("no ofono")})(s.provider)
	s.Equal("", s.provider.IMEI(s.ctx))
}

func (s *DeviceInfoProviderTestSuite) TestSerial() {
	s.write("serial.txt", "  JT-0042-XYZ \n")
	s.Equal("JT-0042-XYZ", s.provider.Serial())
}

func (s *DeviceInfoProviderTestSuite) TestSerialMissing() {
	s.Equal("", s.provider.Serial())
}

func (s *DeviceInfoProviderTestSuite) TestSoftwareVersion() {
	s.write("os-release", "NAME=Example\nVERSION=\"1.2.3\"\n# comment\nVERSION_ID=1.2.3-adapt\n")
	s.Equal("1.2.3", s.provider.SoftwareVersion())
}

func (s *DeviceInfoProviderTestSuite) TestAdaptationVersion() {
	s.write("hw-release", "NAME=\"Example HW\"\nVERSION_ID=0.0.9.12\n")
	s.Equal("0.0.9.12", s.provider.AdaptationVersion())
}

func (s *DeviceInfoProviderTestSuite) TestVersionsMissingFiles() {
	s.Equal(models.Versions{}, s.provider.Versions())
}

func (s *DeviceInfoProviderTestSuite) TestVersionsMissingKey() {
	s.write("os-release", "NAME=Example\n")
	s.Equal("", s.provider.SoftwareVersion())
}

func (s *DeviceInfoProviderTestSuite) TestAbout() {
	s.write("os-release", "VERSION=4.5\n")
	s.write("hw-release", "VERSION_ID=hw1\n")
	s.write("serial.txt", "SN1\n")

	about := s.provider.About(s.ctx)

	s.Equal(models.DiskSpace{Total: 1000, Available: 400}, about.Disk)
	s.Len(about.DiskUsage, 2)
	s.Equal("00:11:22:33:44:55", about.Network.BluetoothAddress)
	s.Equal(models.Identifiers{IMEI: "356938035643809", Serial: "SN1"}, about.Identifiers)
	s.Equal(models.Versions{SoftwareVersion: "4.5", AdaptationVersion: "hw1"}, about.Versions)
}

func (s *DeviceInfoProviderTestSuite) TestRepeatedCallsReflectFileChanges() {
	s.write("os-release", "VERSION=1\n")
	s.Equal("1", s.provider.SoftwareVersion())

	s.write("os-release", "VERSION=2\n")
	s.Equal("2", s.provider.SoftwareVersion())
}

func TestDeviceInfoProviderTestSuite(t *testing.T) {
	suite.Run(t, new(DeviceInfoProviderTestSuite))
}
