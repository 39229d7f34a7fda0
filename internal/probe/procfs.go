package probe

import (
	"context"
	"errors"
	"runtime"

	"github.com/prometheus/procfs"
	"github.com/shirou/gopsutil/v4/cpu"

	apperrors "github.com/agbru/procwatch/internal/errors"
	"github.com/agbru/procwatch/internal/sysmon"
)

// DefaultRoot is the mount point of the proc filesystem.
const DefaultRoot = procfs.DefaultMountPoint

var errNoMemTotal = errors.New("meminfo has no MemTotal")

// ProcFS is a Source and an enumerator backed by a proc filesystem.
type ProcFS struct {
	root string
	fs   procfs.FS
}

// NewProcFS opens the proc filesystem mounted at root.
func NewProcFS(root string) (*ProcFS, error) {
	if root == "" {
		root = DefaultRoot
	}
	fs, err := procfs.NewFS(root)
	if err != nil {
		return nil, apperrors.EnumerationError{Root: root, Err: err}
	}
	return &ProcFS{root: root, fs: fs}, nil
}

// Root returns the mount point this ProcFS reads from.
func (p *ProcFS) Root() string { return p.root }

// Pids lists every numeric entry of the registry. Entries that are not
// valid pids are skipped; the order is unspecified.
func (p *ProcFS) Pids(ctx context.Context) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	procs, err := p.fs.AllProcs()
	if err != nil {
		return nil, apperrors.EnumerationError{Root: p.root, Err: err}
	}
	pids := make([]int, 0, len(procs))
	for _, proc := range procs {
		if proc.PID > 0 {
			pids = append(pids, proc.PID)
		}
	}
	return pids, nil
}

func (p *ProcFS) ProcStat(pid int) (ProcStat, error) {
	proc, err := p.fs.Proc(pid)
	if err != nil {
		return ProcStat{}, err
	}
	st, err := proc.Stat()
	if err != nil {
		return ProcStat{}, err
	}
	return ProcStat{
		Comm:       st.Comm,
		State:      st.State,
		CPUSeconds: st.CPUTime(),
		StartTime:  st.Starttime,
	}, nil
}

func (p *ProcFS) CmdLine(pid int) ([]string, error) {
	proc, err := p.fs.Proc(pid)
	if err != nil {
		return nil, err
	}
	return proc.CmdLine()
}

func (p *ProcFS) RSSBytes(pid int) (uint64, error) {
	proc, err := p.fs.Proc(pid)
	if err != nil {
		return 0, err
	}
	status, err := proc.NewStatus()
	if err != nil {
		return 0, err
	}
	return status.VmRSS, nil
}

// SystemCPUSeconds sums the aggregate cpu line of /proc/stat. Guest time is
// already included in user time and is not added again.
func (p *ProcFS) SystemCPUSeconds() (float64, error) {
	st, err := p.fs.Stat()
	if err != nil {
		return 0, err
	}
	c := st.CPUTotal
	return c.User + c.Nice + c.System + c.Idle + c.Iowait + c.IRQ + c.SoftIRQ + c.Steal, nil
}

// MemTotalBytes reads MemTotal from the root's meminfo. Only the host's own
// /proc may fall back to the kernel's sysinfo figure.
func (p *ProcFS) MemTotalBytes() (uint64, error) {
	mi, err := p.fs.Meminfo()
	if err == nil && mi.MemTotal != nil && *mi.MemTotal > 0 {
		return *mi.MemTotal * 1024, nil
	}
	if p.root == DefaultRoot {
		return memTotalBytes()
	}
	if err == nil {
		err = errNoMemTotal
	}
	return 0, err
}

// LogicalCores asks gopsutil for the logical CPU count of the root. The
// host root falls back to the runtime's view when that fails.
func (p *ProcFS) LogicalCores() (int, error) {
	n, err := cpu.CountsWithContext(sysmon.WithProcRoot(context.Background(), p.root), true)
	if err == nil && n > 0 {
		return n, nil
	}
	if p.root == DefaultRoot {
		return runtime.NumCPU(), nil
	}
	if err == nil {
		err = errNoCores
	}
	return 0, err
}
