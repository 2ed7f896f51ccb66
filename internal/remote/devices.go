package remote

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// ScratchDevicesFile lists the devices a lab machine dedicates to tests.
const ScratchDevicesFile = "/scratch_devs"

// ScratchDevices returns the block devices on the remote that may be
// consumed by OSDs, in discovery order. Devices listed in ScratchDevicesFile
// win; otherwise whole disks are listed and every disk backing the root
// filesystem or another mount is skipped.
func ScratchDevices(ctx context.Context, r Remote) ([]string, error) {
	listed, err := Try(ctx, r, "cat", ScratchDevicesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ScratchDevicesFile, err)
	}
	if listed.ExitStatus == 0 {
		if devs := strings.Fields(listed.Stdout); len(devs) > 0 {
			return devs, nil
		}
	}

	found, err := Try(ctx, r, "ls", Raw("/dev/[sv]d?"), Raw("/dev/xvd?"), Raw("/dev/nvme?n?"), Raw("2>/dev/null"))
	if err != nil {
		return nil, fmt.Errorf("failed to list block devices: %w", err)
	}

	mounts, err := Try(ctx, r, "mount")
	if err != nil {
		return nil, fmt.Errorf("failed to list mounts: %w", err)
	}
	root, err := Try(ctx, r, "findmnt", "-n", "-o", "SOURCE", "/")
	if err != nil {
		return nil, fmt.Errorf("failed to find root device: %w", err)
	}

	sources := mountSources(strings.TrimSpace(root.Stdout), mounts.Stdout)
	var disks []string
	if len(sources) > 0 {
		// lsblk -s lists each source followed by the devices it sits on,
		// down through partitions, LVM and md to the whole disks.
		deps, err := Try(ctx, r, "lsblk", "-l", "-n", "-s", "-o", "NAME,TYPE", sources)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve mounted disks: %w", err)
		}
		disks = parentDisks(deps.Stdout)
	}

	return filterDevices(strings.Fields(found.Stdout), sources, disks), nil
}

// mountSources returns the device nodes backing the root filesystem and
// every other mount, root first.
func mountSources(rootSource, mounts string) []string {
	var sources []string
	seen := make(map[string]bool)
	add := func(src string) {
		// findmnt appends the subvolume for btrfs, as in /dev/sda2[/@]
		if i := strings.IndexByte(src, '['); i > 0 {
			src = src[:i]
		}
		if strings.HasPrefix(src, "/dev/") && !seen[src] {
			seen[src] = true
			sources = append(sources, src)
		}
	}

	add(rootSource)
	for _, line := range strings.Split(mounts, "\n") {
		if f := strings.Fields(line); len(f) > 0 {
			add(f[0])
		}
	}
	return sources
}

// parentDisks extracts the whole disks from `lsblk -l -n -s -o NAME,TYPE`.
func parentDisks(out string) []string {
	var disks []string
	for _, line := range strings.Split(out, "\n") {
		f := strings.Fields(line)
		if len(f) == 2 && f[1] == "disk" && !slices.Contains(disks, "/dev/"+f[0]) {
			disks = append(disks, "/dev/"+f[0])
		}
	}
	return disks
}

// filterDevices drops candidates that hold a mounted filesystem, either
// directly or through a partition, LVM volume or md array.
func filterDevices(candidates, sources, disks []string) []string {
	devs := make([]string, 0, len(candidates))
	for _, dev := range candidates {
		if slices.Contains(disks, dev) {
			continue
		}
		inUse := slices.ContainsFunc(sources, func(src string) bool {
			return strings.HasPrefix(src, dev)
		})
		if !inUse {
			devs = append(devs, dev)
		}
	}
	return devs
}
