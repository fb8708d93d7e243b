// Package monitoring serves the state of a running replay over HTTP. It can
// pause and resume the engine, show the active bank and the progress of the
// integrity sweep, and expose process resources, CPU profiles and metrics.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/chesttrack/memory"
	"github.com/sarchlab/chesttrack/monitoring/web"
	"github.com/sarchlab/chesttrack/timing"
)

// Engine is the part of the engine the monitor controls.
type Engine interface {
	timing.TimeTeller
	Pause()
	Continue()
	IsPaused() bool
}

// A Component is anything with a name whose fields can be inspected.
type Component interface {
	Name() string
}

// BankSource provides the active bank.
type BankSource interface {
	Active() (*memory.Bank, bool)
}

// SweepSource reports the progress of the integrity sweep.
type SweepSource interface {
	InSweep() bool
	Progress() (examined, total int)
	LastCompleteTick() int64
}

// Monitor turns a replay into a server that allows external monitoring and
// control.
type Monitor struct {
	engine     Engine
	components []Component
	banks      BankSource
	sweep      SweepSource
	gatherer   prometheus.Gatherer
	portNumber int

	server   *http.Server
	listener net.Listener

	// pauseLock serializes everything that pauses or resumes the engine.
	pauseLock sync.Mutex

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor. Ports below 1000 are
// replaced by a random port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		log.Warn().Int("port", portNumber).
			Msg("port not allowed for the monitor, using a random port")

		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithGatherer sets where /metrics reads metrics from.
func (m *Monitor) WithGatherer(g prometheus.Gatherer) *Monitor {
	m.gatherer = g
	return m
}

// RegisterEngine registers the engine that drives the replay.
func (m *Monitor) RegisterEngine(e Engine) {
	m.engine = e
}

// RegisterComponent registers a component that can be inspected.
func (m *Monitor) RegisterComponent(c Component) {
	m.components = append(m.components, c)
}

// RegisterBankSource registers where the active bank comes from.
func (m *Monitor) RegisterBankSource(b BankSource) {
	m.banks = b
}

// RegisterSweepSource registers the integrity scanner.
func (m *Monitor) RegisterSweepSource(s SweepSource) {
	m.sweep = s
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the page.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router creates the routes of the monitor.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/bank", m.bank)
	r.HandleFunc("/api/sweep", m.sweepProgress)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	gatherer := m.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts serving in the background and returns the URL of the
// page.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(m.portNumber))
	if err != nil {
		return "", fmt.Errorf("starting monitor: %w", err)
	}

	m.listener = listener
	m.server = &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	url := fmt.Sprintf("http://localhost:%d", listener.Addr().(*net.TCPAddr).Port)
	log.Info().Str("url", url).Msg("monitoring replay")

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("monitor stopped")
		}
	}()

	return url, nil
}

// OpenInBrowser opens the page of a started server.
func (m *Monitor) OpenInBrowser(url string) error {
	browser.Stdout = os.Stderr
	return browser.OpenURL(url)
}

// StopServer shuts the server down.
func (m *Monitor) StopServer(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

// whilePaused runs f with the engine paused, so that f does not race with
// event handlers. An engine that is already paused stays paused. Readers run
// one at a time, so none of them can resume the engine under another.
func (m *Monitor) whilePaused(f func()) {
	m.pauseLock.Lock()
	defer m.pauseLock.Unlock()

	if m.engine == nil || m.engine.IsPaused() {
		f()
		return
	}

	m.engine.Pause()
	defer m.engine.Continue()

	f()
}

func (m *Monitor) engineOr503(w http.ResponseWriter) bool {
	if m.engine == nil {
		http.Error(w, "no engine registered", http.StatusServiceUnavailable)
		return false
	}

	return true
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	if !m.engineOr503(w) {
		return
	}

	m.pauseLock.Lock()
	m.engine.Pause()
	m.pauseLock.Unlock()

	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	if !m.engineOr503(w) {
		return
	}

	m.pauseLock.Lock()
	m.engine.Continue()
	m.pauseLock.Unlock()

	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	if !m.engineOr503(w) {
		return
	}

	writeJSON(w, map[string]any{
		"now":    m.engine.Now(),
		"paused": m.engine.IsPaused(),
	})
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, len(m.components))
	for i, c := range m.components {
		names[i] = c.Name()
	}

	writeJSON(w, names)
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	component := m.findComponentOr404(w, mux.Vars(r)["name"])
	if component == nil {
		return
	}

	buf := new(bytes.Buffer)

	var err error

	m.whilePaused(func() {
		serializer := goseth.NewSerializer()
		serializer.SetRoot(component)
		serializer.SetMaxDepth(1)
		err = serializer.Serialize(buf)
	})

	writeBuffer(w, buf, err)
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	if err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	component := m.findComponentOr404(w, req.CompName)
	if component == nil {
		return
	}

	buf := new(bytes.Buffer)

	var err error

	m.whilePaused(func() {
		serializer := goseth.NewSerializer()
		serializer.SetRoot(component)
		serializer.SetMaxDepth(1)

		err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
		if err == nil {
			err = serializer.Serialize(buf)
		}
	})

	writeBuffer(w, buf, err)
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) Component {
	for _, c := range m.components {
		if c.Name() == name {
			return c
		}
	}

	http.Error(w, "Component not found", http.StatusNotFound)

	return nil
}

type regionRsp struct {
	Key      string `json:"key"`
	Memories int    `json:"memories"`
}

type bankRsp struct {
	Active     bool        `json:"active"`
	ID         string      `json:"id,omitempty"`
	LoadedTime int64       `json:"loaded_time"`
	Regions    []regionRsp `json:"regions"`
}

func (m *Monitor) bank(w http.ResponseWriter, _ *http.Request) {
	rsp := bankRsp{Regions: []regionRsp{}}

	m.whilePaused(func() {
		if m.banks == nil {
			return
		}

		bank, ok := m.banks.Active()
		if !ok {
			return
		}

		rsp.Active = true
		rsp.ID = bank.ID()
		rsp.LoadedTime = bank.Metadata().LoadedTime()

		for _, key := range bank.Keys() {
			rsp.Regions = append(rsp.Regions, regionRsp{
				Key:      key.String(),
				Memories: bank.Count(key),
			})
		}
	})

	writeJSON(w, rsp)
}

type sweepRsp struct {
	InSweep          bool  `json:"in_sweep"`
	Examined         int   `json:"examined"`
	Total            int   `json:"total"`
	LastCompleteTick int64 `json:"last_complete_tick"`
}

func (m *Monitor) sweepProgress(w http.ResponseWriter, _ *http.Request) {
	if m.sweep == nil {
		http.Error(w, "no scanner registered", http.StatusServiceUnavailable)
		return
	}

	var rsp sweepRsp

	m.whilePaused(func() {
		rsp.InSweep = m.sweep.InSweep()
		rsp.Examined, rsp.Total = m.sweep.Progress()
		rsp.LastCompleteTick = m.sweep.LastCompleteTick()
	})

	writeJSON(w, rsp)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	bars := make([]ProgressBarSnapshot, len(m.progressBars))
	for i, b := range m.progressBars {
		bars[i] = b.Snapshot()
	}

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	memoryInfo, err := proc.MemoryInfo()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(time.Second)
	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if _, err := w.Write(data); err != nil {
		log.Debug().Err(err).Msg("monitor response")
	}
}

func writeBuffer(w http.ResponseWriter, buf *bytes.Buffer, err error) {
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if _, err := buf.WriteTo(w); err != nil {
		log.Debug().Err(err).Msg("monitor response")
	}
}
