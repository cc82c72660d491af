// mtpserved exposes a single attached MTP device over HTTP and
// WebSocket for browsing and transfers.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/mtpkit/go-libmtp/config"
	"github.com/mtpkit/go-libmtp/log"
	"github.com/mtpkit/go-libmtp/mtp"
	"github.com/mtpkit/go-libmtp/probe"
	"github.com/mtpkit/go-libmtp/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Root.Fatalf("config: %s", err)
	}
	children := log.PrepareChildren(log.Root, cfg.Logging.USB, cfg.Logging.MTP, cfg.Logging.Xfer, cfg.Logging.WWW)

	if cands, err := probe.List(); err != nil {
		children.USB.Warningf("bus probe failed: %s", err)
	} else {
		for _, c := range cands {
			children.USB.Infof("candidate: %s", &c)
		}
	}

	mtp.Init()
	if cfg.Logging.MTP {
		mtp.SetDebug(mtp.DebugPTP | mtp.DebugUSB)
	}

	dev, err := openDevice(cfg, children)
	if err != nil {
		children.MTP.Fatal(err)
	}
	defer dev.Close()

	if _, err := dev.UpdateStorage(mtp.NotSorted); err != nil {
		children.MTP.Fatalf("reading storages: %s", err)
	}
	storages, _ := dev.Storages()
	if len(storages) == 0 {
		children.MTP.Fatal("no storages found; try unlocking the device")
	}
	for _, st := range storages {
		children.MTP.Infof("storage %#x: %s", st.ID, st.Description)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(dev, cfg.Server.ReadOnly, log.Root, ctx)
	httpSrv := &http.Server{
		Addr:    cfg.Server.Listen,
		Handler: log.HTTPLogHandler(srv.Mux()),
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(srv.Run)
	eg.Go(func() error {
		children.WWW.Infof("listening on %s", cfg.Server.Listen)
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := eg.Wait(); err != nil {
		log.Root.Fatal(err)
	}
}

// openDevice detects raw devices, applies the configured pattern and
// opens the single match.
func openDevice(cfg *config.Config, children *log.Children) (*mtp.Device, error) {
	raw, err := mtp.Detect()
	if err != nil {
		return nil, err
	}

	var cands []mtp.RawDevice
	if cfg.Device.Pattern == "" {
		cands = raw
	} else {
		re := regexp.MustCompile(cfg.Device.Pattern)
		for _, r := range raw {
			if re.FindString(r.String()) != "" {
				cands = append(cands, r)
			}
		}
	}

	switch len(cands) {
	case 0:
		return nil, errors.New("no MTP device matched; is one attached and unlocked?")
	case 1:
	default:
		for _, r := range cands {
			children.MTP.Errorf("matched: %s", r)
		}
		return nil, errors.New("ambiguous devices; narrow device.pattern")
	}

	children.MTP.Infof("opening %s", cands[0])
	if cfg.Device.Uncached {
		return cands[0].OpenUncached()
	}
	return cands[0].Open()
}
