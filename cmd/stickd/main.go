package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/awesome-gocui/gocui"
	"github.com/gethiox/stickd/internal/pkg/config"
	"github.com/gethiox/stickd/internal/pkg/display"
	"github.com/gethiox/stickd/internal/pkg/logger"
	"github.com/gethiox/stickd/internal/pkg/midi"
	"github.com/gethiox/stickd/internal/pkg/overlay"
	"github.com/gethiox/stickd/internal/pkg/utils"
	"github.com/logrusorgru/aurora"
)

var log = logger.GetLogger()

var midiEventsEmitted atomic.Uint64 // counter for display info

func writeMidiEvent(ioDevice io.Writer, ev midi.Event) {
	if ioDevice == nil {
		return
	}
	_, err := ioDevice.Write(ev)
	if err != nil {
		log.Info(fmt.Sprintf("failed to write midi event: %v", err), logger.Warning)
		return
	}
	midiEventsEmitted.Add(1)
}

// processMidiEvents writes events until ctx is done, events queued by then are still written.
func processMidiEvents(ctx context.Context, wg *sync.WaitGroup, ioDevice io.Writer, midiEvents <-chan midi.Event) {
	defer wg.Done()
root:
	for {
		select {
		case <-ctx.Done():
			break root
		case ev := <-midiEvents:
			writeMidiEvent(ioDevice, ev)
		}
	}

	for {
		select {
		case ev := <-midiEvents:
			writeMidiEvent(ioDevice, ev)
		default:
			log.Info("Processing midi events stopped", logger.Debug)
			return
		}
	}
}

func FanOut[T any](input <-chan T) (<-chan T, <-chan T) {
	size := cap(input)
	if size == 0 {
		// at least size of 1 to prevent from output channels blocking by each other
		// also to keep running just one goroutine
		size = 1
	}
	var output1 = make(chan T, size)
	var output2 = make(chan T, size)

	go func() {
		for v := range input {
			output1 <- v
			output2 <- v
		}
		close(output1)
		close(output2)
	}()
	return output1, output2
}

func drain[T any](c <-chan T) {
	for range c {
	}
}

var closeUIOnce sync.Once

func closeUI(g *gocui.Gui) {
	if g == nil {
		return
	}
	closeUIOnce.Do(g.Close)
}

func handleSigs(wg *sync.WaitGroup, sigs <-chan os.Signal, stop <-chan bool, cancel func(), g *gocui.Gui) {
	defer wg.Done()
	var counter int
	for {
		select {
		case <-stop:
			return
		case sig := <-sigs:
			if counter > 0 {
				fmt.Println("Dirty exit")
				os.Exit(1)
			}
			log.Info(fmt.Sprintf("signal received: %v", sig), logger.Debug)
			cancel()
			closeUI(g)
			counter++
		}
	}
}

func runUI(cfg config.Config, ui bool, sigs chan os.Signal) *gocui.Gui {
	if !ui {
		return nil
	}

	g, err := GetCli()
	if err != nil {
		panic(err)
	}

	go func() {
		err := g.MainLoop()
		if err == nil {
			return // closed by signal handler
		}
		if err != gocui.ErrQuit {
			panic(err)
		}
		sigs <- syscall.SIGINT // pretend that we received signal when exited from gui
	}()

	go func() {
		ticker := time.NewTicker(cfg.Stickd.LogViewRate)
		defer ticker.Stop()
		for range ticker.C {
			g.Update(Layout)
		}
	}()

	// views exist after the first layout pass
	for {
		_, err := g.View(ViewLogs)
		if err == nil {
			break
		}
		time.Sleep(time.Millisecond * 10)
	}
	return g
}

// openMidi returns nil writer when MIDI output is disabled or unavailable.
func openMidi() io.WriteCloser {
	if *noMidi {
		log.Info("MIDI output disabled", logger.Info)
		return nil
	}

	ioDevices, err := midi.DetectDevices()
	if err != nil {
		log.Info(fmt.Sprintf("MIDI device detection failed: %v", err), logger.Warning)
		return nil
	}
	if len(ioDevices) == 0 {
		log.Info("There is no midi devices available, MIDI output disabled", logger.Warning)
		return nil
	}
	if len(ioDevices) < *midiDevice+1 {
		log.Info(fmt.Sprintf(
			"MIDI device with \"%d\" ID does not exist. There is %d MIDI devices available in total",
			*midiDevice, len(ioDevices),
		), logger.Warning)
		return nil
	}

	ioDevice, err := ioDevices[*midiDevice].Open()
	if err != nil {
		log.Info(fmt.Sprintf("Failed to open MIDI device: %v", err), logger.Warning)
		return nil
	}
	log.Info(fmt.Sprintf("MIDI output: %s", ioDevices[*midiDevice].Path), logger.Info)
	return ioDevice
}

func printLogs(done chan<- bool) {
	defer close(done)
	if *silent {
		drain[[]byte](logger.Messages)
		return
	}

	fmt.Printf("for nicer output use -ui flag\n")
	au := aurora.NewAurora(!*nocolor)
	for data := range logger.Messages {
		msg, err := unpack(data)
		if err != nil {
			fmt.Printf("%s\n", string(data))
			continue
		}
		m := prepareString(msg, au, -1, *logLevel)
		if m != "" {
			fmt.Printf("%s\n", m)
		}
	}
}

var (
	configPath  = flag.String("config", filepath.Join(configDir, "stickd.config"), "path to stickd config file")
	profilePath = flag.String("profile", "", "path to stick profile, overrides profile from stickd config")
	ui          = flag.Bool("ui", false, "engage debug ui")
	force256    = flag.Bool("256", false, "force 256 color mode")
	nocolor     = flag.Bool("nocolor", false, "disable color")
	logLevel    = flag.Int("loglevel", 2,
		"logging level, each level enables additional information class (0-3, default: 2)\n"+
			"\navailable options:\n"+
			"0: general info (eg. device appearance, calibration results)\n"+
			"1: action events (button actions, profile reloads)\n"+
			"2: direction changes\n"+
			"3: analog readings",
	)
	midiDevice = flag.Int("mididevice", 0, "select N-th midi device, default: 0 (first)")
	noMidi     = flag.Bool("nomidi", false, "do not emit MIDI events")
	silent     = flag.Bool("silent", false, "no output logging, best performance")
)

func main() {
	flag.Parse()
	*logLevel += 2

	if *force256 {
		os.Setenv("TERM", "xterm-256color")
	}

	err := createConfigDirectoryIfNeeded(filepath.Dir(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot prepare config directory: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	profile := *profilePath
	if profile == "" {
		profile = filepath.Join(filepath.Dir(*configPath), "profiles", cfg.Stickd.Profile)
	}

	var sigs = make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(context.Background())

	withUI := *ui && !*silent
	g := runUI(cfg, withUI, sigs)

	logsDone := make(chan bool)
	if withUI {
		go func() {
			logView(g, !*nocolor, *logLevel, 1024)
			close(logsDone)
		}()
	} else {
		go printLogs(logsDone)
	}

	log.Info(fmt.Sprintf("stickd config: %+v", cfg), logger.Debug)

	// this wait-group has to be propagated everywhere where usual logging appear
	wg := sync.WaitGroup{}

	stopSigs := make(chan bool)
	wg.Add(1)
	go handleSigs(&wg, sigs, stopSigs, cancel, g)

	var ioWriter io.Writer
	ioDevice := openMidi()
	if ioDevice != nil {
		ioWriter = ioDevice
	}

	var midiEvents = make(chan midi.Event, 8)
	wg.Add(1)
	eventCtx, cancelEvents := context.WithCancel(context.Background())
	go processMidiEvents(eventCtx, &wg, ioWriter, midiEvents)

	state := &stickState{}
	directions := make(chan directionEvent, 8)
	directionsFan := utils.NewDynamicFanOut[directionEvent](directions)

	var server *overlay.Server
	if cfg.Overlay.Enabled {
		server = overlay.NewServer(cfg.Overlay.Address)
		wg.Add(2)
		go func() {
			defer wg.Done()
			server.Run(ctx)
		}()
		go func() {
			defer wg.Done()
			err := server.ListenAndServe(ctx)
			if err != nil {
				log.Info(fmt.Sprintf("overlay server failed: %v", err), logger.Error)
			}
		}()

		_, out, err := directionsFan.SpawnOutput()
		if err != nil {
			panic(err)
		}
		go func() {
			for ev := range out {
				server.PublishDirection(ev.Snapshot.overlay())
			}
		}()
	}

	wg.Add(1)
	dd := GenerateDisplayData(ctx, &wg, cfg.Screen, state)
	dd1, dd2 := FanOut(dd)

	if cfg.Screen.Enabled {
		wg.Add(1)
		go display.HandleDisplay(&wg, cfg.Screen, dd1)
	} else {
		go drain(dd1)
	}

	if withUI {
		h := newHistory(4)
		_, out, err := directionsFan.SpawnOutput()
		if err != nil {
			panic(err)
		}
		go h.consume(out)
		go stickView(g, !*nocolor, state, h, cfg.Stickd.LogViewRate)
		go lcdView(g, dd2)
	} else {
		go drain(dd2)
	}

	var exitCode int
	err = runStick(ctx, cfg, profile, state, midiEvents, directions, server)
	if err != nil {
		log.Info(fmt.Sprintf("stick failed: %v", err), logger.Error)
		exitCode = 1
	}

	cancel()
	cancelEvents()
	log.Info("waiting...", logger.Debug)
	close(directions)
	<-directionsFan.Done()
	signal.Stop(sigs)
	close(stopSigs)

	wg.Wait()
	if ioDevice != nil {
		err := ioDevice.Close()
		if err != nil {
			log.Info(fmt.Sprintf("failed to close MIDI device: %v", err), logger.Warning)
		}
	}

	// closing logger can be safely invoked only when all internally running goroutines (that may emit logs) are done
	close(logger.Messages)
	<-logsDone

	closeUI(g)
	if exitCode != 0 && withUI {
		fmt.Fprintf(os.Stderr, "stick failed: %v\n", err)
	}
	os.Exit(exitCode)
}
