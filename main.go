package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hadv/nrgminer/hwmon"
	"github.com/hadv/nrgminer/metrics"
	"github.com/hadv/nrgminer/miner"
	"github.com/hadv/nrgminer/nrghash"
	"github.com/hadv/nrgminer/telemetry"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const logo = `
 _ __  _ __ __ _ _ __ ___ (_)_ __   ___ _ __
| '_ \| '__/ _' | '_ ' _ \| | '_ \ / _ \ '__|
| | | | | | (_| | | | | | | | | | |  __/ |
|_| |_|_|  \__, |_| |_| |_|_|_| |_|\___|_|
           |___/
`

// deviceList parses "1,0,-1" into per-slot device overrides.
type deviceList []int

func (l *deviceList) UnmarshalFlag(value string) error {
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return fmt.Errorf("bad device index %q", part)
		}
		*l = append(*l, n)
	}
	return nil
}

type config struct {
	ListDevices bool `long:"list-devices" short:"L" description:"list devices and exit"`
	GPU         bool `long:"gpu" short:"G" env:"NRGMINER_GPU" description:"mine on OpenCL devices"`
	CPU         bool `long:"cpu" env:"NRGMINER_CPU" description:"mine on the host CPU"`
	DevParams   bool `long:"dev-params" env:"NRGMINER_DEV_PARAMS" description:"use tiny caches and datasets for local testing"`

	Benchmark           bool   `long:"benchmark" short:"M" description:"mine synthetic work and count every solution as accepted"`
	BenchmarkHeight     uint64 `long:"benchmark-height" default:"0" description:"block height of the benchmark work"`
	BenchmarkDifficulty uint64 `long:"benchmark-difficulty" default:"4294967296" description:"difficulty of the benchmark work"`

	Header     string `long:"header" env:"NRGMINER_HEADER" description:"hex encoded header to mine"`
	Height     uint64 `long:"height" env:"NRGMINER_HEIGHT" description:"block height of the header"`
	Difficulty uint64 `long:"difficulty" env:"NRGMINER_DIFFICULTY" default:"4294967296" description:"difficulty of the header"`

	CLPlatform   int                   `long:"cl-platform" env:"NRGMINER_CL_PLATFORM" default:"0" description:"OpenCL platform index"`
	CLDevices    deviceList            `long:"cl-devices" env:"NRGMINER_CL_DEVICES" description:"comma separated device index per GPU slot"`
	CLLocalWork  uint32                `long:"cl-local-work" env:"NRGMINER_CL_LOCAL_WORK" default:"128" description:"work group size, rounded up to a multiple of 8"`
	CLGlobalWork int                   `long:"cl-global-work" env:"NRGMINER_CL_GLOBAL_WORK" default:"8192" description:"work groups per launch, negative scales by compute units"`
	DAGLoadMode  miner.DatasetLoadMode `long:"dag-load-mode" env:"NRGMINER_DAG_LOAD_MODE" default:"parallel" description:"parallel or sequential dataset builds"`
	CPUDevices   int                   `long:"cpu-devices" env:"NRGMINER_CPU_DEVICES" default:"1" description:"number of host devices"`
	CPUThreads   int                   `long:"cpu-threads" env:"NRGMINER_CPU_THREADS" description:"goroutines per host device, 0 uses all cores"`

	NoEval bool `long:"noeval" env:"NRGMINER_NOEVAL" description:"submit device candidates without host validation"`
	Exit   bool `long:"exit" env:"NRGMINER_EXIT" description:"exit when a device fails"`

	HWMon      bool       `long:"hwmon" env:"NRGMINER_HWMON" description:"read GPU temperature, fan and power"`
	HWMonRoot  string     `long:"hwmon-root" env:"NRGMINER_HWMON_ROOT" default:"/sys/class/drm" description:"sysfs drm directory"`
	HWMonCards deviceList `long:"hwmon-cards" env:"NRGMINER_HWMON_CARDS" description:"comma separated drm card number per GPU index, -1 keeps the index"`
	TStart     uint       `long:"tstart" env:"NRGMINER_TSTART" default:"40" description:"resume a paused GPU at or below this temperature"`
	TStop      uint       `long:"tstop" env:"NRGMINER_TSTOP" default:"0" description:"pause a GPU at or above this temperature, 0 disables"`

	ReportInterval time.Duration `long:"report-interval" env:"NRGMINER_REPORT_INTERVAL" default:"5s" description:"progress collection interval"`
	MetricsAddr    string        `long:"metrics-addr" env:"NRGMINER_METRICS_ADDR" description:"serve Prometheus metrics on this address"`
	Rig            string        `long:"rig" env:"NRGMINER_RIG" description:"rig name used in telemetry, defaults to the hostname"`

	InfluxURL    string `long:"influx-url" env:"NRGMINER_INFLUX_URL" description:"InfluxDB URL"`
	InfluxToken  string `long:"influx-token" env:"NRGMINER_INFLUX_TOKEN" description:"InfluxDB token"`
	InfluxOrg    string `long:"influx-org" env:"NRGMINER_INFLUX_ORG" description:"InfluxDB organization"`
	InfluxBucket string `long:"influx-bucket" env:"NRGMINER_INFLUX_BUCKET" default:"nrgminer" description:"InfluxDB bucket"`

	RedisAddr     string        `long:"redis-addr" env:"NRGMINER_REDIS_ADDR" description:"Redis address for rig snapshots"`
	RedisPassword string        `long:"redis-password" env:"NRGMINER_REDIS_PASSWORD" description:"Redis password"`
	RedisDB       int           `long:"redis-db" env:"NRGMINER_REDIS_DB" default:"0" description:"Redis database"`
	RedisTTL      time.Duration `long:"redis-ttl" env:"NRGMINER_REDIS_TTL" default:"1m" description:"lifetime of a rig snapshot"`

	LogLevel string `long:"log-level" env:"NRGMINER_LOG_LEVEL" default:"info" description:"debug, info, warn or error"`
	LogDev   bool   `long:"log-dev" env:"NRGMINER_LOG_DEV" description:"human readable development logs"`
}

func main() {
	cfg := config{}
	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "can't initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.ListDevices {
		fmt.Print(logo)
	}
	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("nrgminer failed", zap.Error(err))
	}
}

func newLogger(level string, dev bool) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	if dev {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = lvl
	return zcfg.Build()
}

func engineConfig(cfg config) *miner.EngineConfig {
	ec := miner.DefaultEngineConfig()
	if cfg.DevParams {
		ec.Params = nrghash.DevParams
	}
	ec.LocalWorkSize = cfg.CLLocalWork
	ec.GlobalWorkSizeMultiplier = cfg.CLGlobalWork
	ec.PlatformID = cfg.CLPlatform
	ec.DeviceMap = cfg.CLDevices
	ec.CPUDevices = cfg.CPUDevices
	ec.CPUThreads = cfg.CPUThreads
	ec.DatasetLoadMode = cfg.DAGLoadMode
	ec.NoEval = cfg.NoEval
	ec.ExitOnFail = cfg.Exit
	ec.SensorMap = cfg.HWMonCards
	ec.TStart = cfg.TStart
	ec.TStop = cfg.TStop
	if cfg.ReportInterval > 0 {
		ec.CollectInterval = cfg.ReportInterval
	}
	return ec
}

func selection(cfg config) []miner.EngineKind {
	var kinds []miner.EngineKind
	if cfg.GPU {
		kinds = append(kinds, miner.EngineGPU)
	}
	if cfg.CPU {
		kinds = append(kinds, miner.EngineCPU)
	}
	return kinds
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	ec := engineConfig(cfg)
	if err := ec.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.ListDevices {
		listDevices(ec)
		return nil
	}

	kinds := selection(cfg)
	if len(kinds) == 0 {
		return errors.New("select at least one of --gpu and --cpu")
	}

	work, err := initialWork(cfg)
	if err != nil {
		return err
	}
	if err := preflight(ec, kinds, work.Height, logger); err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		startMetricsServer(ctx, cfg.MetricsAddr, logger)
	}

	opts := []miner.PlantOption{
		miner.WithLogger(logger),
		miner.WithPlantMetrics(metrics.NewPlant()),
		miner.WithWorkerMetrics(func(worker string) miner.WorkerMetrics { return metrics.NewWorker(worker) }),
	}
	if cfg.HWMon {
		opts = append(opts, miner.WithHardwareMonitor(hwmon.NewSysfs(cfg.HWMonRoot)))
	}
	sinks, closeSinks, err := telemetrySinks(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSinks()
	if len(sinks) > 0 {
		opts = append(opts, miner.WithTelemetrySinks(sinks...))
	}

	plant := miner.NewPlant(ec, nil, opts...)
	plant.OnSolutionFound(solutionHandler(plant, logger, cfg.Benchmark))
	if cfg.Benchmark {
		plant.SetPoolAddress("benchmark")
	} else {
		plant.SetPoolAddress("solo")
	}

	plant.SetWork(work)
	if err := plant.Start(kinds); err != nil {
		return fmt.Errorf("start mining: %w", err)
	}
	defer plant.Stop()

	ticker := time.NewTicker(ec.CollectInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down", zap.Stringer("solutions", plant.SolutionStats()))
			return nil
		case err := <-plant.Failed():
			return fmt.Errorf("device failed: %w", err)
		case <-ticker.C:
			prog := plant.MiningProgress()
			logger.Info("progress",
				zap.Stringer("speed", prog),
				zap.Stringer("solutions", plant.SolutionStats()),
				zap.Duration("uptime", prog.Uptime.Truncate(time.Second)),
				zap.String("pool", plant.PoolAddress()))
		}
	}
}

// solutionHandler logs every solution. Only benchmark runs count them as
// accepted; solo solutions go nowhere, so no verdict is recorded.
func solutionHandler(plant *miner.Plant, logger *zap.Logger, benchmark bool) func(miner.Solution) {
	return func(sol miner.Solution) {
		logger.Info("solution",
			zap.String("worker", sol.Worker),
			zap.Uint64("height", sol.Work.Height),
			zap.Uint64("nonce", sol.Nonce),
			zap.String("mix_digest", sol.MixDigest.Hex()),
			zap.String("result", sol.Result.Hex()))
		if benchmark {
			plant.AcceptedSolution(false)
		}
	}
}

func initialWork(cfg config) (miner.Work, error) {
	if cfg.Benchmark {
		return miner.Work{
			Height: cfg.BenchmarkHeight,
			Header: nrghash.HeaderHash([]byte(fmt.Sprintf("nrgminer benchmark %d", cfg.BenchmarkHeight))).Bytes(),
			Target: nrghash.TargetFromDifficulty(cfg.BenchmarkDifficulty),
			Valid:  true,
		}, nil
	}
	if cfg.Header == "" {
		return miner.Work{}, errors.New("--header is required unless --benchmark is set")
	}
	header := common.FromHex(cfg.Header)
	if len(header) == 0 {
		return miner.Work{}, fmt.Errorf("header %q is not hex", cfg.Header)
	}
	return miner.Work{
		Height: cfg.Height,
		Header: header,
		Target: nrghash.TargetFromDifficulty(cfg.Difficulty),
		Valid:  true,
	}, nil
}

// preflight checks that every usable device can hold the dataset for height.
// Kinds whose enumeration fails are left to Plant.Start to report.
func preflight(ec *miner.EngineConfig, kinds []miner.EngineKind, height uint64, logger *zap.Logger) error {
	var devices []miner.DeviceInfo
	for _, kind := range kinds {
		infos, err := miner.ListDevices(kind, ec)
		if err != nil {
			logger.Warn("device enumeration failed", zap.String("engine", string(kind)), zap.Error(err))
			continue
		}
		devices = append(devices, infos...)
	}
	if len(devices) == 0 {
		return miner.ErrNoDevicesAvailable
	}
	return miner.Configure(ec, height, devices)
}

func listDevices(ec *miner.EngineConfig) {
	for _, kind := range []miner.EngineKind{miner.EngineGPU, miner.EngineCPU} {
		infos, err := miner.ListDevices(kind, ec)
		if err != nil {
			fmt.Printf("%s: %v\n\n", kind, err)
			continue
		}
		if len(infos) == 0 {
			fmt.Printf("No %s devices found\n\n", kind)
			continue
		}
		fmt.Printf("Found %d %s device(s):\n\n", len(infos), kind)
		for _, d := range infos {
			fmt.Printf("  [%d] %s\n", d.Index, d.Name)
			if d.Platform != "" {
				fmt.Printf("    Platform: %s (%d)\n", d.Platform, d.PlatformID)
			}
			fmt.Printf("    Vendor: %s\n", d.Vendor)
			fmt.Printf("    Compute Units: %d\n", d.ComputeUnits)
			if kind == miner.EngineGPU {
				fmt.Printf("    Max Work Group Size: %d\n", d.MaxWorkGroupSize)
				fmt.Printf("    Max Alloc: %d MB\n", d.MaxAlloc/(1024*1024))
			}
			fmt.Printf("    Global Memory: %d MB\n\n", d.GlobalMemory/(1024*1024))
		}
	}
}

func telemetrySinks(cfg config, logger *zap.Logger) ([]miner.TelemetrySink, func(), error) {
	rig := cfg.Rig
	if rig == "" {
		rig, _ = os.Hostname()
	}

	var (
		sinks   []miner.TelemetrySink
		closers []func()
	)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.InfluxURL != "" {
		s, err := telemetry.NewInfluxSink(telemetry.InfluxConfig{
			URL:    cfg.InfluxURL,
			Token:  cfg.InfluxToken,
			Org:    cfg.InfluxOrg,
			Bucket: cfg.InfluxBucket,
			Rig:    rig,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("init influx: %w", err)
		}
		sinks = append(sinks, s)
		closers = append(closers, s.Close)
	}
	if cfg.RedisAddr != "" {
		s, err := telemetry.NewRedisSink(telemetry.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Rig:      rig,
			TTL:      cfg.RedisTTL,
		})
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("init redis: %w", err)
		}
		sinks = append(sinks, s)
		closers = append(closers, func() { _ = s.Close() })
	}
	return sinks, closeAll, nil
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}
