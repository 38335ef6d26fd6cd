// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/klauspost/cpuid"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/pbnjay/memory"

	nl "github.com/mlnoga/edgelight/internal"
	nledge "github.com/mlnoga/edgelight/internal/edge"
	"github.com/mlnoga/edgelight/internal/imageio"
	"github.com/mlnoga/edgelight/internal/ops"
	"github.com/mlnoga/edgelight/internal/ops/edge"
	"github.com/mlnoga/edgelight/internal/ops/filter"
	"github.com/mlnoga/edgelight/internal/overlay"
	"github.com/mlnoga/edgelight/internal/pad"
	"github.com/mlnoga/edgelight/internal/rest"
	"github.com/mlnoga/edgelight/internal/stats"
)

const version = "0.1.0"

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
var memprofile = flag.String("memprofile", "", "write memory profile to `file`")

var out     = flag.String("out", "out%d.png", "save output with given filename pattern, e.g. `out%d.png`. %d is replaced by the frame number")
var edgeOut = flag.String("edgeOut", "", "save edge magnitude maps with given filename pattern, e.g. `edges%d.png`")
var binOut  = flag.String("binOut",  "", "save binary edge maps with given filename pattern, e.g. `bin%d.png`")
var log     = flag.String("log", "%auto", "save log output to `file`. `%auto` replaces suffix of output file with .log")

var filterName = flag.String("filter", filter.Gauss, "smoothing filter, one of mean, gauss, median")
var size       = flag.Int("size", 3, "kernel size, odd and at least 3")
var sigma      = flag.Float64("sigma", 1.0, "Gaussian standard deviation in pixels")
var padding    = flag.String("pad", pad.Reflect.String(), "border padding, one of zero, replicate, reflect")

var detector  = flag.String("detector", nledge.Sobel.String(), "edge detector, one of sobel, prewitt, laplacian")
var smooth    = flag.Bool("smooth", true, "apply Gaussian smoothing before edge detection")
var rescale   = flag.Bool("rescale", true, "rescale edge magnitudes to 0..255")
var threshold = flag.Int("threshold", 100, "binarization threshold in 0..255, -1=automatic (Otsu)")
var color     = flag.String("color", overlay.Red.Hex(), "overlay color for edge pixels as hex, e.g. `#ff0000`")

var pipeline = flag.String("pipeline", "", "run the operator sequence from JSON `file`")

var chroot = flag.String("chroot", "", "serve: chroot into given `directory` before serving")
var setuid = flag.Int("setuid", -1, "serve: change to given user id before serving, -1=keep")
var addr   = flag.String("addr", ":8080", "serve: listen on given address")

var maxEdge = flag.Int("maxEdge", imageio.DefaultMaxEdge, "downscale inputs so the longest edge has at most this many pixels, 0=keep size")
var threads = flag.Int("threads", runtime.GOMAXPROCS(0), "number of frames to process in parallel")

func main() {
	logWriter:=nl.LogWriter()
	start:=time.Now()
	flag.Usage=func(){
		fmt.Fprintf(logWriter, `Edgelight Copyright (c) 2020 Markus L. Noga
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] (smooth|edges|stats|run|serve|legal|version) (img0.png ... imgn.png)

Commands:
  smooth  Smooth input images with a mean, Gaussian or median filter
  edges   Detect edges, binarize them and overlay them in color on the input images
  stats   Show input image statistics
  run     Apply the operator sequence from a JSON pipeline file to the input images
  serve   Serve the REST API
  legal   Show license and attribution information
  version Show version information

Flags:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// Initialize logging to file in addition to stdout, if selected
	if *log=="%auto" {
		if *out!="" {
			*log=strings.ReplaceAll(strings.TrimSuffix(*out, filepath.Ext(*out)), "%d", "")+".log"
		} else {
			*log=""
		}
	}

	args:=flag.Args()
	if len(args)<1 {
		flag.Usage()
		return
	}
	if args[0]=="smooth" || args[0]=="edges" || args[0]=="run" {
		if *log!="" {
			err:=nl.LogAlsoToFile(*log)
			if err!=nil { nl.LogFatalf("Unable to open logfile '%s'\n", *log) }
		}
	}
	defer nl.LogSync()

	// Enable CPU profiling if flagged
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			nl.LogFatal("Could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			nl.LogFatal("Could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	c:=ops.NewContext(logWriter)
	c.MaxEdge=*maxEdge
	if *threads>0 { c.MaxThreads=*threads }

	var err error
	switch args[0] {
	case "smooth":
		printBanner(logWriter)
		err=cmdSmooth(args[1:], c)

	case "edges":
		printBanner(logWriter)
		err=cmdEdges(args[1:], c)

	case "stats":
		err=cmdStats(args[1:], c)

	case "run":
		printBanner(logWriter)
		err=cmdRun(args[1:], c)

	case "serve":
		if err=rest.MakeSandbox(*chroot, *setuid); err!=nil { break }
		fmt.Fprintf(logWriter, "Serving on %s\n", *addr)
		err=rest.Serve(*addr)

	case "legal":
		cmdLegal()

	case "version":
		fmt.Fprintf(logWriter, "Version %s\n", version)
		printBanner(logWriter)

	case "help", "?":
		flag.Usage()

	default:
		fmt.Fprintf(logWriter, "Unknown command '%s'\n\n", args[0])
		flag.Usage()
		return
	}

	now:=time.Now()
	elapsed:=now.Sub(start)
	fmt.Fprintf(logWriter, "\nDone after %v\n", elapsed)

	// Store memory profile if flagged
	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			nl.LogFatal("Could not create memory profile: ", err)
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.Lookup("allocs").WriteTo(f,0); err != nil {
			nl.LogFatal("Could not write allocation profile: ", err)
		}
	}

	if err!=nil {
		fmt.Fprintf(logWriter, "Error: %s\n", err.Error())
		nl.LogSync()
		os.Exit(-1)
	}
}

// Prints processor and memory information
func printBanner(logWriter io.Writer) {
	fmt.Fprintf(logWriter, "Running on %s with %d physical cores, %d logical cores and %d MiB of memory\n",
		cpuid.CPU.BrandName, cpuid.CPU.PhysicalCores, cpuid.CPU.LogicalCores, memory.TotalMemory()/1024/1024)
}

// Loads all given files, applies the given operator and materializes the results without keeping them
func runOnFiles(fileNames []string, op ops.Operator, c *ops.Context) error {
	if len(fileNames)==0 { return fmt.Errorf("no input files given") }
	seq:=ops.NewOpSequence(ops.NewOpLoadMany(fileNames), op)
	m, err:=json.MarshalIndent(op, "", "  ")
	if err!=nil { return err }
	fmt.Fprintf(c.Log, "\nProcessing with these settings:\n%s\n", string(m))

	promises, err:=seq.MakePromises(nil, c)
	if err!=nil { return err }
	_, err=ops.MaterializeAll(promises, c.MaxThreads, true)
	return err
}

func cmdSmooth(fileNames []string, c *ops.Context) error {
	p, err:=pad.ParsePolicy(*padding)
	if err!=nil { return err }
	opSmooth:=filter.NewOpSmooth(*filterName, *size, *sigma, p)
	if err:=opSmooth.Validate(); err!=nil { return err }
	seq:=ops.NewOpSequence(opSmooth, ops.NewOpSave(*out, ops.LayerData))
	return runOnFiles(fileNames, seq, c)
}

func cmdEdges(fileNames []string, c *ops.Context) error {
	det, err:=nledge.ParseDetector(*detector)
	if err!=nil { return err }
	p, err:=pad.ParsePolicy(*padding)
	if err!=nil { return err }
	params:=nledge.Params{Detector: det, Smooth: *smooth, Size: *size, Sigma: *sigma, Padding: p, Rescale: *rescale}
	if err:=params.Validate(); err!=nil { return err }
	if *threshold!=edge.ThresholdOtsu && (*threshold<0 || *threshold>255) {
		return fmt.Errorf("threshold %d must be within 0..255, or %d for automatic", *threshold, edge.ThresholdOtsu)
	}
	if _, err:=colorful.Hex(*color); err!=nil {
		return fmt.Errorf("invalid color '%s': %w", *color, err)
	}

	opEdges:=edge.NewOpEdges(
		edge.NewOpDetect   (params),
		ops.NewOpSave      (*edgeOut, ops.LayerData),
		edge.NewOpBinarize (*threshold),
		ops.NewOpSave      (*binOut, ops.LayerBinary),
		edge.NewOpOverlay  (*color),
		ops.NewOpSave      (*out, ops.LayerOverlay),
	)
	return runOnFiles(fileNames, opEdges, c)
}

// Prints per-file statistics as CSV, with histogram peak and automatic threshold
func cmdStats(fileNames []string, c *ops.Context) error {
	if len(fileNames)==0 { return fmt.Errorf("no input files given") }
	promises, err:=ops.NewOpLoadMany(fileNames).MakePromises(nil, c)
	if err!=nil { return err }
	frames, err:=ops.MaterializeAll(promises, c.MaxThreads, false)

	fmt.Fprintf(c.Log, "\nID,FileName,%s,Peak,Otsu\n", new(stats.Stats).ToCSVHeader())
	for _, f:=range frames {
		if f.Stats==nil { return fmt.Errorf("%d: no statistics for %s", f.ID, f.FileName) }
		bins, err:=stats.Histogram(f.Data, 256)
		if err!=nil { return fmt.Errorf("%d: %w", f.ID, err) }
		fmt.Fprintf(c.Log, "%d,%s,%s,%.0f,%.0f\n", f.ID, f.FileName, f.Stats.ToCSVLine(),
			stats.GetPeak(bins), stats.OtsuThreshold(bins))
	}
	return err
}

func cmdRun(fileNames []string, c *ops.Context) error {
	if *pipeline=="" { return fmt.Errorf("no pipeline file given, use -pipeline") }
	b, err:=os.ReadFile(*pipeline)
	if err!=nil { return err }
	var seq ops.OpSequence
	if err:=json.Unmarshal(b, &seq); err!=nil {
		return fmt.Errorf("parsing pipeline %s: %w", *pipeline, err)
	}
	return runOnFiles(fileNames, &seq, c)
}
