package services

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"aboutsettings/internal/log"
	"aboutsettings/internal/models"

	"github.com/shirou/gopsutil/v3/disk"
)

// RootPath is always reported in the disk usage model
const RootPath = "/"

// DefaultCandidateMounts are optional mountpoints reported when they live on
// a different device than the root filesystem
var DefaultCandidateMounts = []string{"/home"}

// MountSource enumerates the mounted filesystems
type MountSource interface {
	Mounts(ctx context.Context) ([]models.MountRecord, error)
}

// StorageStats reports capacity for the filesystem containing path
type StorageStats interface {
	Usage(ctx context.Context, path string) (total, available uint64, err error)
}

// PartitionMounts reads the live mount table through gopsutil
type PartitionMounts struct{}

// Mounts returns every mounted filesystem, including virtual ones
func (PartitionMounts) Mounts(ctx context.Context) ([]models.MountRecord, error) {
	partitions, err := disk.PartitionsWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}

	records := make([]models.MountRecord, 0, len(partitions))
	for _, partition := range partitions {
		records = append(records, models.MountRecord{
			Mountpoint: partition.Mountpoint,
			Device:     partition.Device,
		})
	}
	return records, nil
}

// MtabMounts reads a mount table file in mtab(5) format, e.g. /etc/mtab
type MtabMounts struct {
	Path string
}

// Mounts parses the configured file. Fields are whitespace separated and
// use getmntent octal escapes (\040 for space and so on).
func (m MtabMounts) Mounts(ctx context.Context) ([]models.MountRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(m.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mount table %s: %w", m.Path, err)
	}
	defer file.Close()

	var records []models.MountRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		records = append(records, models.MountRecord{
			Mountpoint: unescapeMountField(fields[1]),
			Device:     unescapeMountField(fields[0]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read mount table %s: %w", m.Path, err)
	}

	return records, nil
}

// unescapeMountField decodes three-digit octal escapes like \040
func unescapeMountField(field string) string {
	if !strings.Contains(field, `\`) {
		return field
	}

	var b strings.Builder
	for i := 0; i < len(field); i++ {
		if field[i] == '\\' && i+3 < len(field) && isOctal(field[i+1]) && isOctal(field[i+2]) && isOctal(field[i+3]) {
			b.WriteByte((field[i+1]-'0')<<6 | (field[i+2]-'0')<<3 | (field[i+3] - '0'))
			i += 3
			continue
		}
		b.WriteByte(field[i])
	}
	return b.String()
}

func isOctal(c byte) bool {
	return c >= '0' && c <= '7'
}

// DiskStats queries filesystem statistics through gopsutil
type DiskStats struct{}

// Usage returns total bytes and bytes available to unprivileged users
func (DiskStats) Usage(ctx context.Context, path string) (uint64, uint64, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get disk usage for %s: %w", path, err)
	}
	return usage.Total, usage.Free, nil
}

// reportedPaths returns the root path followed by every candidate mountpoint
// that is mounted from a different device than the root filesystem.
func reportedPaths(records []models.MountRecord, candidates []string) []string {
	devices := make(map[string]string, len(records))
	var order []string
	for _, record := range records {
		if _, seen := devices[record.Mountpoint]; !seen {
			order = append(order, record.Mountpoint)
		}
		// Later entries shadow earlier mounts on the same point
		devices[record.Mountpoint] = record.Device
	}

	paths := []string{RootPath}
	for _, mountpoint := range order {
		if mountpoint == RootPath {
			continue
		}
		if slices.Contains(candidates, mountpoint) && devices[mountpoint] != devices[RootPath] {
			paths = append(paths, mountpoint)
		}
	}
	return paths
}

// storageTypeFor classifies path given the number of reported paths
func storageTypeFor(path string, count int) models.StorageType {
	switch {
	case count == 1:
		return models.StorageMass
	case path == RootPath:
		return models.StorageSystem
	default:
		return models.StorageUser
	}
}

// BuildDiskUsage computes the disk usage model. An unreadable mount table
// reports only the root path; failed statistics queries report zero.
func BuildDiskUsage(ctx context.Context, mounts MountSource, stats StorageStats, candidates []string) []models.DiskUsageRow {
	records, err := mounts.Mounts(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Could not read mount table")
		records = nil
	}

	paths := reportedPaths(records, candidates)

	rows := make([]models.DiskUsageRow, 0, len(paths))
	for _, path := range paths {
		total, available, err := stats.Usage(ctx, path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Could not get disk usage")
			total, available = 0, 0
		}

		rows = append(rows, models.DiskUsageRow{
			StorageType: storageTypeFor(path, len(paths)),
			Path:        path,
			Available:   available,
			Total:       total,
		})
	}

	return rows
}
