package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cwsl/sstv-modulator/imagesrc"
	"github.com/cwsl/sstv-modulator/sstv"
	"github.com/cwsl/sstv-modulator/wavfile"
)

// Version is the CLI's reported version string.
var Version = "0.1.0"

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: sstv-modulator [flags] <infile>

Encodes infile as an SSTV audio waveform.

Flags:
  -m, --mode string        SSTV mode, short or long name (default "S1")
  -v, --volume int          output volume 0-100 (default 50)
  -s, --sample-rate int      PCM sample rate in Hz (default 44100)
  -o string                 output WAV path (default "out.wav")
  -c                        emit pre-VIS calibration tones (default true)
  -config string            path to a YAML preset file
  -preset string            preset name to load from -config
  -resample string           resize kernel: lanczos3 or nearest (default "lanczos3")
  -metrics-addr string        start a Prometheus exporter on this address (e.g. ":9107")
  -verify                   run spectral verification on the VIS header after encoding
  -h, --help                show this help text
  --version                 print the version and exit
`)
}

type cliFlags struct {
	mode        string
	volume      int
	sampleRate  int
	outfile     string
	calibration bool
	configPath  string
	preset      string
	resample    string
	metricsAddr string
	verify      bool
	version     bool
}

// parseFlags parses args into a cliFlags, returning the input path and
// the set of flag names the user explicitly typed (as opposed to
// flags left at their default), so a later preset load never
// clobbers an explicit choice.
func parseFlags(args []string) (f *cliFlags, infile string, explicitlySet map[string]bool, err error) {
	fs := flag.NewFlagSet("sstv-modulator", flag.ContinueOnError)
	fs.Usage = usage

	f = &cliFlags{}
	for _, name := range []string{"m", "mode"} {
		fs.StringVar(&f.mode, name, "S1", "SSTV mode, short or long name")
	}
	for _, name := range []string{"v", "volume"} {
		fs.IntVar(&f.volume, name, 50, "output volume 0-100")
	}
	for _, name := range []string{"s", "sample-rate"} {
		fs.IntVar(&f.sampleRate, name, 44100, "PCM sample rate in Hz")
	}
	fs.StringVar(&f.outfile, "o", "out.wav", "output WAV path")
	fs.BoolVar(&f.calibration, "c", true, "emit pre-VIS calibration tones")
	fs.StringVar(&f.configPath, "config", "", "path to a YAML preset file")
	fs.StringVar(&f.preset, "preset", "", "preset name to load from -config")
	fs.StringVar(&f.resample, "resample", "lanczos3", "resize kernel: lanczos3 or nearest")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "start a Prometheus exporter on this address")
	fs.BoolVar(&f.verify, "verify", false, "run spectral verification on the VIS header after encoding")
	for _, name := range []string{"h", "help"} {
		fs.BoolFunc(name, "show this help text", func(string) error {
			usage()
			os.Exit(0)
			return nil
		})
	}
	fs.BoolVar(&f.version, "version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, "", nil, err
	}

	if f.version {
		fmt.Println(Version)
		os.Exit(0)
	}

	if fs.NArg() != 1 {
		usage()
		return nil, "", nil, fmt.Errorf("expected exactly one input image path, got %d", fs.NArg())
	}

	explicitlySet = map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { explicitlySet[fl.Name] = true })

	return f, fs.Arg(0), explicitlySet, nil
}

// applyPreset overlays a config preset's values onto flags the user
// did not explicitly set, as recorded by fs.Visit in parseFlags.
func applyPreset(f *cliFlags, preset Preset, explicitlySet map[string]bool) {
	if preset.Mode != "" && !explicitlySet["m"] && !explicitlySet["mode"] {
		f.mode = preset.Mode
	}
	if preset.Volume != 0 && !explicitlySet["v"] && !explicitlySet["volume"] {
		f.volume = preset.Volume
	}
	if preset.SampleRate != 0 && !explicitlySet["s"] && !explicitlySet["sample-rate"] {
		f.sampleRate = preset.SampleRate
	}
	if preset.Calibration != nil && !explicitlySet["c"] {
		f.calibration = *preset.Calibration
	}
	if preset.Resample != "" && !explicitlySet["resample"] {
		f.resample = preset.Resample
	}
}

func main() {
	f, infile, explicitlySet, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatalf("sstv-modulator: %v", err)
	}

	if f.configPath != "" && f.preset != "" {
		cfg, err := LoadConfig(f.configPath)
		if err != nil {
			log.Fatalf("sstv-modulator: %v", err)
		}
		preset, ok := cfg.Lookup(f.preset)
		if !ok {
			log.Fatalf("sstv-modulator: preset %q not found in %s", f.preset, f.configPath)
		}
		applyPreset(f, preset, explicitlySet)
		if cfg.Metrics.Listen != "" && !explicitlySet["metrics-addr"] {
			f.metricsAddr = cfg.Metrics.Listen
		}
	}

	mode, err := sstv.ParseMode(f.mode)
	if err != nil {
		log.Fatalf("sstv-modulator: %v", err)
	}

	if f.volume < 0 || f.volume > 100 {
		log.Fatalf("sstv-modulator: volume must be in [0,100], got %d", f.volume)
	}
	amplitude := float64(f.volume) / 100.0

	resample, err := imagesrc.ParseResample(f.resample)
	if err != nil {
		log.Fatalf("sstv-modulator: %v", err)
	}

	width, height := mode.Resolution()
	loaded, err := imagesrc.Load(infile, width, height, resample)
	if err != nil {
		log.Fatalf("sstv-modulator: %v", err)
	}
	log.Printf("loaded %s (%dx%d source, resized to %dx%d for mode %s)",
		infile, loaded.SourceWidth, loaded.SourceHeight, width, height, mode)

	sink, err := wavfile.Create(f.outfile, f.sampleRate)
	if err != nil {
		log.Fatalf("sstv-modulator: %v", err)
	}

	var observer sstv.EncodeObserver
	var metrics *EncodeMetrics
	if f.metricsAddr != "" {
		metrics = NewEncodeMetrics()
		observer = metrics
		go func() {
			if err := <-ServeMetrics(f.metricsAddr); err != nil {
				log.Printf("sstv-modulator: metrics server stopped: %v", err)
			}
		}()
		log.Printf("metrics exporter listening on %s/metrics", f.metricsAddr)
	}

	cfg := sstv.EncodeConfig{
		SampleRate:         f.sampleRate,
		Amplitude:          amplitude,
		CalibrationEnabled: f.calibration,
		Observer:           observer,
	}

	start := time.Now()
	encodeErr := sstv.Encode(mode, loaded.Image, cfg, sink)
	elapsed := time.Since(start)

	if metrics != nil {
		metrics.ObserveSamplesWritten(sink.SamplesWritten())
	}

	if closeErr := sink.Close(); closeErr != nil {
		log.Fatalf("sstv-modulator: %v", closeErr)
	}
	if encodeErr != nil {
		log.Fatalf("sstv-modulator: %v", encodeErr)
	}

	log.Printf("wrote %s: %d samples in %s (mode %s)", f.outfile, sink.SamplesWritten(), elapsed.Round(time.Millisecond), mode)

	if f.verify {
		runVerification(f.outfile, mode, f.sampleRate, f.calibration)
	}
}

// runVerification reads back the just-written WAV file and measures the
// first VIS leader with sstv.DominantFrequency, logging whether its
// frequency is within tolerance. Diagnostic only: it never changes the
// process exit code.
func runVerification(path string, mode sstv.Mode, sampleRate int, calibration bool) {
	samples, err := wavfile.ReadSamples(path)
	if err != nil {
		log.Printf("sstv-modulator: -verify: %v", err)
		return
	}

	leaderStart := 0
	if calibration {
		leaderStart = int(0.8 * float64(sampleRate)) // calibration prelude: 8 x 100ms
	}
	leaderEnd := leaderStart + int(0.3*float64(sampleRate)) // first VIS leader: 300ms
	if len(samples) < leaderEnd {
		log.Printf("sstv-modulator: -verify: file too short to contain a VIS leader")
		return
	}

	freq := sstv.DominantFrequency(samples[leaderStart:leaderEnd], float64(sampleRate))
	const wantFreq = 1900.0
	const toleranceHz = 20.0
	if diff := freq - wantFreq; diff < -toleranceHz || diff > toleranceHz {
		log.Printf("sstv-modulator: -verify: VIS leader frequency %.1f Hz is outside %.1f +/- %.1f Hz (mode %s)", freq, wantFreq, toleranceHz, mode)
		return
	}
	log.Printf("sstv-modulator: -verify: VIS leader detected at %.1f Hz, looks correct", freq)
}
