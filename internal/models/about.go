package models

// NetworkAddresses holds hardware addresses of the first Bluetooth and WLAN devices
type NetworkAddresses struct {
	BluetoothAddress string `json:"bluetoothAddress" yaml:"bluetoothAddress"`
	WlanMacAddress   string `json:"wlanMacAddress" yaml:"wlanMacAddress"`
}

// Identifiers holds device identity values
type Identifiers struct {
	IMEI   string `json:"imei" yaml:"imei"`
	Serial string `json:"serial" yaml:"serial"`
}

// Versions holds software and hardware adaptation version strings
type Versions struct {
	SoftwareVersion   string `json:"softwareVersion" yaml:"softwareVersion"`
	AdaptationVersion string `json:"adaptationVersion" yaml:"adaptationVersion"`
}

// AboutInfo combines everything shown in the About panel
type AboutInfo struct {
	Disk        DiskSpace        `json:"disk" yaml:"disk"`
	DiskUsage   []DiskUsageRow   `json:"diskUsage" yaml:"diskUsage"`
	Network     NetworkAddresses `json:"network" yaml:"network"`
	Identifiers Identifiers      `json:"identifiers" yaml:"identifiers"`
	Versions    Versions         `json:"versions" yaml:"versions"`
}
