// Package sysmon provides host-wide resource totals: CPU load, memory, swap,
// disk usage, process counts and per-interface network counters.
package sysmon

import (
	"context"
	"errors"
	"net/netip"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/common"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
)

// Usage is a used/total pair in bytes.
type Usage struct {
	Total   uint64  `json:"total"`
	Used    uint64  `json:"used"`
	Percent float64 `json:"percent"`
}

// LoadAvg holds the 1, 5 and 15 minute run queue averages.
type LoadAvg struct {
	Load1  float64 `json:"load1"`
	Load5  float64 `json:"load5"`
	Load15 float64 `json:"load15"`
}

// ProcessCounts summarizes the kernel's process accounting.
type ProcessCounts struct {
	Total   int `json:"total"`
	Running int `json:"running"`
	// Created counts processes forked since boot.
	Created int `json:"created"`
}

// Interface carries the counters of one network interface.
type Interface struct {
	Name      string `json:"name"`
	IPv4      string `json:"ipv4,omitempty"`
	RxBytes   uint64 `json:"rx_bytes"`
	RxPackets uint64 `json:"rx_packets"`
	RxErrs    uint64 `json:"rx_errs"`
	RxDrop    uint64 `json:"rx_drop"`
	TxBytes   uint64 `json:"tx_bytes"`
	TxPackets uint64 `json:"tx_packets"`
	TxErrs    uint64 `json:"tx_errs"`
	TxDrop    uint64 `json:"tx_drop"`
}

// Totals is a full host snapshot. Sections that could not be read are
// zero-valued and their error text is recorded in Errors under the section
// name.
type Totals struct {
	CPUPercent  float64           `json:"cpu_percent"`
	Memory      Usage             `json:"memory"`
	Swap        Usage             `json:"swap"`
	Disk        Usage             `json:"disk"`
	Load        LoadAvg           `json:"load"`
	Processes   ProcessCounts     `json:"processes"`
	Interfaces  []Interface       `json:"interfaces"`
	Errors      map[string]string `json:"errors,omitempty"`
	CollectedAt time.Time         `json:"collected_at"`
}

// Section names used as keys of Totals.Errors.
const (
	SectionCPU        = "cpu"
	SectionMemory     = "memory"
	SectionSwap       = "swap"
	SectionDisk       = "disk"
	SectionLoad       = "load"
	SectionProcesses  = "processes"
	SectionInterfaces = "interfaces"
)

// Collector reads Totals through gopsutil. The reader fields can be
// replaced to read from elsewhere.
type Collector struct {
	// ProcRoot is the proc filesystem the readers use; empty means /proc.
	ProcRoot string
	// DiskPath is the mount point whose usage is reported.
	DiskPath string

	CPUPercent   func(ctx context.Context) (float64, error)
	VirtualMem   func(ctx context.Context) (Usage, error)
	SwapMem      func(ctx context.Context) (Usage, error)
	DiskUsage    func(ctx context.Context, path string) (Usage, error)
	LoadAverage  func(ctx context.Context) (LoadAvg, error)
	ProcessCount func(ctx context.Context) (ProcessCounts, error)
	NetCounters  func(ctx context.Context) ([]Interface, error)
}

// NewCollector returns a Collector reading the proc filesystem at procRoot
// and reporting disk usage for diskPath ("/" when empty).
func NewCollector(procRoot, diskPath string) *Collector {
	if diskPath == "" {
		diskPath = "/"
	}
	return &Collector{
		ProcRoot:     procRoot,
		DiskPath:     diskPath,
		CPUPercent:   readCPUPercent,
		VirtualMem:   readVirtualMem,
		SwapMem:      readSwapMem,
		DiskUsage:    readDiskUsage,
		LoadAverage:  readLoad,
		ProcessCount: readProcessCounts,
		NetCounters:  readInterfaces,
	}
}

// Collect recomputes every section. It only fails when ctx is done.
func (c *Collector) Collect(ctx context.Context) (Totals, error) {
	ctx = WithProcRoot(ctx, c.ProcRoot)
	t := Totals{CollectedAt: time.Now()}
	record := func(section string, err error) {
		if err == nil {
			return
		}
		if t.Errors == nil {
			t.Errors = make(map[string]string)
		}
		t.Errors[section] = err.Error()
	}

	var err error
	if t.CPUPercent, err = c.CPUPercent(ctx); err != nil {
		t.CPUPercent = 0
		record(SectionCPU, err)
	}
	if t.Memory, err = c.VirtualMem(ctx); err != nil {
		t.Memory = Usage{}
		record(SectionMemory, err)
	}
	if t.Swap, err = c.SwapMem(ctx); err != nil {
		t.Swap = Usage{}
		record(SectionSwap, err)
	}
	if t.Disk, err = c.DiskUsage(ctx, c.DiskPath); err != nil {
		t.Disk = Usage{}
		record(SectionDisk, err)
	}
	if t.Load, err = c.LoadAverage(ctx); err != nil {
		t.Load = LoadAvg{}
		record(SectionLoad, err)
	}
	if t.Processes, err = c.ProcessCount(ctx); err != nil {
		t.Processes = ProcessCounts{}
		record(SectionProcesses, err)
	}
	if t.Interfaces, err = c.NetCounters(ctx); err != nil {
		t.Interfaces = nil
		record(SectionInterfaces, err)
	}
	return t, ctx.Err()
}

// WithProcRoot points the gopsutil readers called with ctx at root instead
// of the host's /proc. An empty root leaves ctx unchanged.
func WithProcRoot(ctx context.Context, root string) context.Context {
	if root == "" {
		return ctx
	}
	return context.WithValue(ctx, common.EnvKey, common.EnvMap{common.HostProcEnvKey: root})
}

var errNoCPUReading = errors.New("no aggregate cpu reading")

func readCPUPercent(ctx context.Context) (float64, error) {
	pcts, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, err
	}
	if len(pcts) == 0 {
		return 0, errNoCPUReading
	}
	return pcts[0], nil
}

func readVirtualMem(ctx context.Context) (Usage, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Usage{}, err
	}
	return Usage{Total: vm.Total, Used: vm.Used, Percent: vm.UsedPercent}, nil
}

func readSwapMem(ctx context.Context) (Usage, error) {
	sm, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		return Usage{}, err
	}
	return Usage{Total: sm.Total, Used: sm.Used, Percent: sm.UsedPercent}, nil
}

func readDiskUsage(ctx context.Context, path string) (Usage, error) {
	du, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return Usage{}, err
	}
	return Usage{Total: du.Total, Used: du.Used, Percent: du.UsedPercent}, nil
}

func readLoad(ctx context.Context) (LoadAvg, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return LoadAvg{}, err
	}
	return LoadAvg{Load1: avg.Load1, Load5: avg.Load5, Load15: avg.Load15}, nil
}

func readProcessCounts(ctx context.Context) (ProcessCounts, error) {
	misc, err := load.MiscWithContext(ctx)
	if err != nil {
		return ProcessCounts{}, err
	}
	return ProcessCounts{Total: misc.ProcsTotal, Running: misc.ProcsRunning, Created: misc.ProcsCreated}, nil
}

func readInterfaces(ctx context.Context) ([]Interface, error) {
	counters, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, err
	}
	// Addresses are best effort; counters alone are still useful.
	var addrs net.InterfaceStatList
	if ifaces, err := net.InterfacesWithContext(ctx); err == nil {
		addrs = ifaces
	}
	return mergeInterfaces(counters, addrs), nil
}

func mergeInterfaces(counters []net.IOCountersStat, ifaces net.InterfaceStatList) []Interface {
	ipv4 := make(map[string]string, len(ifaces))
	for _, iface := range ifaces {
		for _, a := range iface.Addrs {
			if ip := firstIPv4(a.Addr); ip != "" {
				ipv4[iface.Name] = ip
				break
			}
		}
	}
	out := make([]Interface, 0, len(counters))
	for _, c := range counters {
		out = append(out, Interface{
			Name:      c.Name,
			IPv4:      ipv4[c.Name],
			RxBytes:   c.BytesRecv,
			RxPackets: c.PacketsRecv,
			RxErrs:    c.Errin,
			RxDrop:    c.Dropin,
			TxBytes:   c.BytesSent,
			TxPackets: c.PacketsSent,
			TxErrs:    c.Errout,
			TxDrop:    c.Dropout,
		})
	}
	return out
}

// firstIPv4 accepts either a bare address or CIDR notation.
func firstIPv4(addr string) string {
	if prefix, err := netip.ParsePrefix(addr); err == nil {
		if prefix.Addr().Is4() {
			return prefix.Addr().String()
		}
		return ""
	}
	if ip, err := netip.ParseAddr(strings.TrimSpace(addr)); err == nil && ip.Is4() {
		return ip.String()
	}
	return ""
}
