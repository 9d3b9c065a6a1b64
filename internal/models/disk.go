package models

// StorageType classifies a reported mountpoint for the presentation layer
type StorageType string

const (
	// StorageMass is used when the root filesystem is the only reported path
	StorageMass StorageType = "mass"
	// StorageSystem marks the root filesystem when user storage is separate
	StorageSystem StorageType = "system"
	// StorageUser marks any non-root candidate mountpoint
	StorageUser StorageType = "user"
)

// MountRecord pairs a mountpoint with its backing device or filesystem source
type MountRecord struct {
	Mountpoint string `json:"mountpoint"`
	Device     string `json:"device"`
}

// DiskUsageRow represents capacity information for one reported path
type DiskUsageRow struct {
	StorageType StorageType `json:"storageType" yaml:"storageType"`
	Path        string      `json:"path" yaml:"path"`
	Available   uint64      `json:"available" yaml:"available"`
	Total       uint64      `json:"total" yaml:"total"`
}

// DiskSpace represents root filesystem capacity
type DiskSpace struct {
	Total     uint64 `json:"total" yaml:"total"`
	Available uint64 `json:"available" yaml:"available"`
}
