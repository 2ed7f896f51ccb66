package remote

import (
	"context"
	"fmt"
	"net"
	"strings"
)

// PackageType is the package family of a remote operating system.
type PackageType string

const (
	PackageTypeDeb PackageType = "deb"
	PackageTypeRPM PackageType = "rpm"
)

// Facts are the per-host properties the orchestration needs to know.
type Facts struct {
	// Interface is the name of the interface carrying the default route.
	Interface string
	// CIDR is the network the interface belongs to, e.g. 10.0.0.0/24.
	CIDR string
	// PackageType is deb or rpm.
	PackageType PackageType
}

// routeProbe is any routable address; only the chosen device matters.
const routeProbe = "8.8.8.8"

// rpmDistros are os-release IDs that use yum/dnf.
var rpmDistros = []string{"rhel", "centos", "fedora", "rocky", "almalinux", "suse", "opensuse"}

// GatherFacts inspects the remote and returns its network interface, subnet
// and package family.
func GatherFacts(ctx context.Context, r Remote) (*Facts, error) {
	route, err := Exec(ctx, r, "ip", "-o", "-4", "route", "get", routeProbe)
	if err != nil {
		return nil, fmt.Errorf("failed to query default route: %w", err)
	}
	iface, err := parseRouteDevice(route)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.Name(), err)
	}

	addr, err := Exec(ctx, r, "ip", "-o", "-f", "inet", "addr", "show", iface)
	if err != nil {
		return nil, fmt.Errorf("failed to query address of %s: %w", iface, err)
	}
	cidr, err := parseInterfaceCIDR(addr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.Name(), err)
	}

	osRelease, err := Exec(ctx, r, "cat", "/etc/os-release")
	if err != nil {
		return nil, fmt.Errorf("failed to read os-release: %w", err)
	}

	return &Facts{
		Interface:   iface,
		CIDR:        cidr,
		PackageType: parsePackageType(osRelease),
	}, nil
}

// parseRouteDevice extracts the device from `ip route get` output such as
// "8.8.8.8 via 10.0.0.1 dev eth0 src 10.0.0.5 uid 0".
func parseRouteDevice(out string) (string, error) {
	fields := strings.Fields(out)
	for i := 0; i < len(fields)-1; i++ {
		if fields[i] == "dev" {
			return fields[i+1], nil
		}
	}
	return "", fmt.Errorf("no device in route output %q", strings.TrimSpace(out))
}

// parseInterfaceCIDR returns the network of the first inet address in
// `ip -o -f inet addr show` output.
func parseInterfaceCIDR(out string) (string, error) {
	fields := strings.Fields(out)
	for i := 0; i < len(fields)-1; i++ {
		if fields[i] != "inet" {
			continue
		}
		_, network, err := net.ParseCIDR(fields[i+1])
		if err != nil {
			return "", fmt.Errorf("invalid address %q: %w", fields[i+1], err)
		}
		return network.String(), nil
	}
	return "", fmt.Errorf("no inet address in %q", strings.TrimSpace(out))
}

func parsePackageType(osRelease string) PackageType {
	var ids []string
	for _, line := range strings.Split(osRelease, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok || (key != "ID" && key != "ID_LIKE") {
			continue
		}
		ids = append(ids, strings.Fields(strings.ToLower(strings.Trim(value, `"'`)))...)
	}
	for _, id := range ids {
		for _, distro := range rpmDistros {
			if id == distro {
				return PackageTypeRPM
			}
		}
	}
	return PackageTypeDeb
}
