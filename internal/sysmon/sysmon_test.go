package sysmon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/shirou/gopsutil/v4/net"
)

func TestCollect_LiveHost(t *testing.T) {
	totals, err := NewCollector("", "").Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if _, failed := totals.Errors[SectionMemory]; failed {
		t.Skipf("memory not readable on this host: %v", totals.Errors)
	}
	if totals.Memory.Total == 0 || totals.Memory.Used > totals.Memory.Total {
		t.Errorf("implausible memory usage: %+v", totals.Memory)
	}
	if totals.CollectedAt.IsZero() {
		t.Error("CollectedAt not set")
	}
}

func TestCollect_ProcRoot(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("gopsutil honours a proc root on linux only")
	}
	root := t.TempDir()
	files := map[string]string{
		"meminfo": "MemTotal:        2097152 kB\nMemFree:         1048576 kB\nMemAvailable:    1048576 kB\n" +
			"Buffers:               0 kB\nCached:                0 kB\nSwapTotal:             0 kB\nSwapFree:              0 kB\n",
		"loadavg": "0.50 0.40 0.30 2/300 12345\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	totals, err := NewCollector(root, "").Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if totals.Memory.Total != 2<<30 {
		t.Errorf("Memory.Total = %d, want %d from the fixture (errors: %v)", totals.Memory.Total, uint64(2<<30), totals.Errors)
	}
	if totals.Load.Load1 != 0.5 {
		t.Errorf("Load1 = %v, want 0.5 from the fixture", totals.Load.Load1)
	}
}

func TestWithProcRootEmpty(t *testing.T) {
	ctx := context.Background()
	if WithProcRoot(ctx, "") != ctx {
		t.Error("empty root should leave the context unchanged")
	}
}

func fakeCollector() *Collector {
	c := NewCollector("", "/data")
	c.CPUPercent = func(context.Context) (float64, error) { return 37.5, nil }
	c.VirtualMem = func(context.Context) (Usage, error) { return Usage{Total: 8 << 30, Used: 2 << 30, Percent: 25}, nil }
	c.SwapMem = func(context.Context) (Usage, error) { return Usage{Total: 1 << 30}, nil }
	c.DiskUsage = func(_ context.Context, path string) (Usage, error) {
		if path != "/data" {
			return Usage{}, errors.New("unexpected path " + path)
		}
		return Usage{Total: 100 << 30, Used: 40 << 30, Percent: 40}, nil
	}
	c.LoadAverage = func(context.Context) (LoadAvg, error) { return LoadAvg{Load1: 0.5}, nil }
	c.ProcessCount = func(context.Context) (ProcessCounts, error) { return ProcessCounts{Total: 312, Created: 90210}, nil }
	c.NetCounters = func(context.Context) ([]Interface, error) { return []Interface{{Name: "eth0", RxBytes: 10}}, nil }
	return c
}

func TestCollect_AllSections(t *testing.T) {
	t.Parallel()
	totals, err := fakeCollector().Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if totals.Errors != nil {
		t.Errorf("unexpected errors: %v", totals.Errors)
	}
	if totals.CPUPercent != 37.5 || totals.Disk.Percent != 40 || totals.Processes.Created != 90210 {
		t.Errorf("totals = %+v", totals)
	}
	if len(totals.Interfaces) != 1 || totals.Interfaces[0].Name != "eth0" {
		t.Errorf("interfaces = %+v", totals.Interfaces)
	}
}

func TestCollect_FailingSectionsAreZeroFilled(t *testing.T) {
	t.Parallel()
	c := fakeCollector()
	c.SwapMem = func(context.Context) (Usage, error) { return Usage{Total: 99}, errors.New("no swap info") }
	c.NetCounters = func(context.Context) ([]Interface, error) { return nil, errors.New("netlink denied") }

	totals, err := c.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if totals.Swap != (Usage{}) {
		t.Errorf("failed swap section should be zero, got %+v", totals.Swap)
	}
	if totals.Errors[SectionSwap] != "no swap info" || totals.Errors[SectionInterfaces] != "netlink denied" {
		t.Errorf("Errors = %v", totals.Errors)
	}
	if totals.Memory.Total != 8<<30 {
		t.Error("healthy sections must still be filled")
	}
}

func TestCollect_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := fakeCollector().Collect(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Collect on cancelled ctx = %v", err)
	}
}

func TestMergeInterfaces(t *testing.T) {
	t.Parallel()
	counters := []net.IOCountersStat{
		{Name: "lo", BytesRecv: 1, BytesSent: 1},
		{Name: "eth0", BytesRecv: 500, PacketsRecv: 5, Errin: 1, Dropin: 2, BytesSent: 300, PacketsSent: 3, Errout: 4, Dropout: 6},
		{Name: "wg0"},
	}
	ifaces := net.InterfaceStatList{
		{Name: "lo", Addrs: net.InterfaceAddrList{{Addr: "127.0.0.1/8"}, {Addr: "::1/128"}}},
		{Name: "eth0", Addrs: net.InterfaceAddrList{{Addr: "fe80::1/64"}, {Addr: "192.168.1.20/24"}}},
	}

	got := mergeInterfaces(counters, ifaces)
	if len(got) != 3 {
		t.Fatalf("got %d interfaces", len(got))
	}
	if got[0].IPv4 != "127.0.0.1" {
		t.Errorf("lo IPv4 = %q", got[0].IPv4)
	}
	eth := got[1]
	if eth.IPv4 != "192.168.1.20" || eth.RxBytes != 500 || eth.RxErrs != 1 || eth.RxDrop != 2 || eth.TxBytes != 300 || eth.TxDrop != 6 {
		t.Errorf("eth0 = %+v", eth)
	}
	if got[2].IPv4 != "" {
		t.Errorf("wg0 without addresses should have no IPv4, got %q", got[2].IPv4)
	}
}

func TestFirstIPv4(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]string{
		"10.0.0.1/8":  "10.0.0.1",
		"10.0.0.2":    "10.0.0.2",
		"fe80::1/64":  "",
		"not-an-addr": "",
	} {
		if got := firstIPv4(in); got != want {
			t.Errorf("firstIPv4(%q) = %q, want %q", in, got, want)
		}
	}
}
