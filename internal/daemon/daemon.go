package daemon

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/leonardotrapani/readalong/internal/bus"
	"github.com/leonardotrapani/readalong/internal/config"
	"github.com/leonardotrapani/readalong/internal/notify"
	"github.com/leonardotrapani/readalong/internal/readalong"
)

// PassageLoader turns a fileId into a segmented passage.
type PassageLoader interface {
	Load(ctx context.Context, fileID string) (readalong.Passage, error)
	Close()
}

type Options struct {
	Controller *readalong.Controller
	Loader     PassageLoader
	Notifier   notify.Notifier
	// Config enables hot reload of reading settings. Optional.
	Config *config.Manager
	// Closers run after the controller has stopped, in order.
	Closers []func() error
}

type Daemon struct {
	ctrl     *readalong.Controller
	loader   PassageLoader
	notifier notify.Notifier
	config   *config.Manager
	closers  []func() error

	ctx    context.Context
	cancel context.CancelFunc

	// loadMu serializes open commands so passages arrive in request order
	loadMu sync.Mutex
}

func New(opts Options) (*Daemon, error) {
	if opts.Controller == nil {
		return nil, errors.New("daemon: controller required")
	}
	if opts.Loader == nil {
		return nil, errors.New("daemon: passage loader required")
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Desktop{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Daemon{
		ctrl:     opts.Controller,
		loader:   opts.Loader,
		notifier: opts.Notifier,
		config:   opts.Config,
		closers:  opts.Closers,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

func (d *Daemon) Run() error {
	if err := bus.CheckExistingDaemon(); err != nil {
		return err
	}

	ln, err := bus.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	if err := bus.CreatePidFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer bus.RemovePidFile()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			log.Printf("Received signal %v, shutting down gracefully", sig)
			d.cancel()
		case <-d.ctx.Done():
		}
	}()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := d.ctrl.Run(d.ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Controller stopped: %v", err)
		}
	}()
	defer d.shutdown(loopDone)

	if d.config != nil {
		d.config.OnChange(d.reconfigure)
		if err := d.config.StartWatching(d.ctx); err != nil {
			log.Printf("Config watching disabled: %v", err)
		}
	}

	// Close the listener when context is done
	go func() {
		<-d.ctx.Done()
		ln.Close()
	}()

	log.Printf("Daemon started, listening on socket")

	for {
		c, err := ln.Accept()
		if err != nil {
			if d.ctx.Err() != nil {
				log.Printf("Shutdown requested")
				return nil
			}
			log.Printf("Accept error: %v", err)
			d.cancel()
			return fmt.Errorf("accept failed: %w", err)
		}
		go d.handle(c)
	}
}

func (d *Daemon) shutdown(loopDone <-chan struct{}) {
	d.cancel()
	d.ctrl.Dispose()
	<-loopDone
	d.loader.Close()
	if d.config != nil {
		d.config.Stop()
	}
	for _, closeFn := range d.closers {
		if err := closeFn(); err != nil {
			log.Printf("Daemon: close error: %v", err)
		}
	}
	log.Printf("Daemon stopped")
}

func (d *Daemon) reconfigure(c *config.Config) {
	if err := d.ctrl.Reconfigure(ControllerConfig(c)); err != nil {
		log.Printf("Daemon: reading settings not applied: %v", err)
		return
	}
	log.Printf("Daemon: reading settings reloaded (recording and backend changes need a restart)")
}

func (d *Daemon) handle(c net.Conn) {
	defer c.Close()

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		log.Printf("Client read error: %v", err)
		fmt.Fprintf(c, "ERR read_error: %v\n", err)
		return
	}
	cmd, err := bus.ParseCommand(line)
	if err != nil {
		fmt.Fprintf(c, "ERR %v\n", err)
		return
	}

	switch cmd.Op {
	case bus.CmdOpen:
		d.open(c, cmd.Arg)
	case bus.CmdToggle:
		reply(c, d.ctrl.Toggle(), "OK toggled")
	case bus.CmdRetry:
		reply(c, d.ctrl.Retry(), "OK retry")
	case bus.CmdAuto:
		on, err := parseSwitch(cmd.Arg)
		if err != nil {
			fmt.Fprintf(c, "ERR %v\n", err)
			return
		}
		reply(c, d.ctrl.SetAutoEvaluate(on), "OK auto="+cmd.Arg)
	case bus.CmdCancel:
		reply(c, d.ctrl.Cancel(), "OK cancelled")
	case bus.CmdStatus:
		fmt.Fprintf(c, "%s\n", FormatStatus(d.ctrl.Snapshot()))
	case bus.CmdVersion:
		fmt.Fprintf(c, "STATUS proto=%s\n", bus.ProtoVer)
	case bus.CmdQuit:
		fmt.Fprint(c, "OK quitting\n")
		d.cancel()
	default:
		log.Printf("Unknown command: %c", cmd.Op)
		fmt.Fprintf(c, "ERR unknown=%q\n", cmd.Op)
	}
}

func (d *Daemon) open(c net.Conn, fileID string) {
	if fileID == "" {
		fmt.Fprintf(c, "ERR %v\n", readalong.ErrMissingFileID)
		return
	}

	d.loadMu.Lock()
	defer d.loadMu.Unlock()

	p, err := d.loader.Load(d.ctx, fileID)
	if err != nil {
		log.Printf("Daemon: open %q failed: %v", fileID, err)
		if errors.Is(err, readalong.ErrEmptyPassage) {
			go d.notifier.Error(notify.MsgNoContent)
		}
		fmt.Fprintf(c, "ERR %v\n", err)
		return
	}
	if err := d.ctrl.Load(p); err != nil {
		fmt.Fprintf(c, "ERR %v\n", err)
		return
	}
	fmt.Fprintf(c, "OK loaded file=%s sentences=%d\n", p.FileID, len(p.Sentences))
}

func reply(c net.Conn, err error, ok string) {
	if err != nil {
		fmt.Fprintf(c, "ERR %v\n", err)
		return
	}
	fmt.Fprintf(c, "%s\n", ok)
}

func parseSwitch(arg string) (bool, error) {
	switch strings.ToLower(arg) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("auto expects on or off, got %q", arg)
	}
}

// FormatStatus renders a snapshot as the daemon's one-line status reply.
func FormatStatus(s readalong.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "STATUS state=%s", s.State)
	if s.FileID == "" {
		return b.String()
	}

	passed := 0
	for _, p := range s.Passed {
		if p {
			passed++
		}
	}
	fmt.Fprintf(&b, " file=%s sentence=%d/%d passed=%d auto=%t recording=%t",
		s.FileID, s.Index+1, s.Total(), passed, s.AutoEvaluate, s.Recording)
	if s.Settled {
		b.WriteString(" heard=final")
	}
	if s.Failure != readalong.FailureNone {
		fmt.Fprintf(&b, " failure=%s", s.Failure)
	}
	if s.Feedback != "" {
		fmt.Fprintf(&b, " feedback=%q", s.Feedback)
	}
	return b.String()
}
