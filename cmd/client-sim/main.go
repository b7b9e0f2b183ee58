// Command client-sim is a headless Lodestone protocol client for manual and
// soak testing: it pings the warden on a fixed cadence, optionally carries an
// input payload, and reports the pongs and terrain snapshots it gets back.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/danmuck/lodestone/internal/config"
	"github.com/danmuck/lodestone/internal/logging"
	"github.com/danmuck/lodestone/internal/observability"
	"github.com/danmuck/lodestone/internal/protocol"
	"github.com/rs/zerolog/log"
)

type options struct {
	serverAddr   string
	pingInterval time.Duration
	inputPayload string
	runFor       time.Duration
}

func main() {
	configPath := flag.String("config", "", "optional client-sim TOML config")
	serverAddr := flag.String("server", "127.0.0.1:5227", "warden address")
	pingInterval := flag.Duration("ping-interval", time.Second, "delay between pings")
	inputPayload := flag.String("input", "", "input payload to carry on every message")
	runFor := flag.Duration("run-for", 0, "exit after this duration (0 = run until signal)")
	flag.Parse()

	logging.ConfigureRuntime()
	observability.InitLogger("client-sim")

	opts := options{
		serverAddr:   *serverAddr,
		pingInterval: *pingInterval,
		inputPayload: *inputPayload,
		runFor:       *runFor,
	}
	if *configPath != "" {
		loaded, err := loadOptions(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "client-sim: %v\n", err)
			os.Exit(1)
		}
		opts = loaded
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "client-sim: %v\n", err)
		os.Exit(1)
	}
}

func loadOptions(path string) (options, error) {
	cfg, err := config.LoadClientSimConfig(path)
	if err != nil {
		return options{}, err
	}
	opts := options{
		serverAddr:   cfg.ServerAddr,
		pingInterval: time.Second,
		inputPayload: cfg.InputPayload,
	}
	if v := strings.TrimSpace(cfg.PingInterval); v != "" {
		opts.pingInterval, _ = time.ParseDuration(v)
	}
	if v := strings.TrimSpace(cfg.RunFor); v != "" {
		opts.runFor, _ = time.ParseDuration(v)
	}
	return opts, nil
}

func run(opts options) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if opts.runFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.runFor)
		defer cancel()
	}

	raddr, err := net.ResolveUDPAddr("udp", opts.serverAddr)
	if err != nil {
		return fmt.Errorf("resolve server addr: %w", err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return fmt.Errorf("dial server: %w", err)
	}
	defer conn.Close()

	log.Info().
		Str("server", opts.serverAddr).
		Dur("ping_interval", opts.pingInterval).
		Msg("client-sim connected")

	ticker := time.NewTicker(opts.pingInterval)
	defer ticker.Stop()

	var (
		currentSeq   uint64
		lastRecvSeq  uint64
		pongsSeen    uint64
		terrainsSeen uint64
	)
	buf := make([]byte, protocol.MaxDatagramSize)

	for {
		select {
		case <-ctx.Done():
			log.Info().
				Uint64("sent", currentSeq).
				Uint64("pongs", pongsSeen).
				Uint64("terrains", terrainsSeen).
				Msg("client-sim done")
			return nil
		case <-ticker.C:
			currentSeq++
			msg := &protocol.ClientToServer{
				Header: protocol.ClientHeader{
					CurrentSequence:      currentSeq,
					LastReceivedSequence: lastRecvSeq,
				},
				Bodies: []protocol.ClientBodyElem{protocol.Ping{}},
			}
			if opts.inputPayload != "" {
				msg.Bodies = append(msg.Bodies, protocol.Input{Payload: []byte(opts.inputPayload)})
			}
			out, err := protocol.EncodeClientToServer(msg)
			if err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			if _, err := conn.Write(out); err != nil {
				log.Warn().Err(err).Msg("client-sim send failed")
				continue
			}

			// Drain whatever the server has flushed since the last ping.
			for {
				if err := conn.SetReadDeadline(time.Now().Add(50 * time.Millisecond)); err != nil {
					return fmt.Errorf("set read deadline: %w", err)
				}
				n, err := conn.Read(buf)
				if err != nil {
					if errors.Is(err, os.ErrDeadlineExceeded) {
						break
					}
					log.Warn().Err(err).Msg("client-sim read failed")
					break
				}
				reply, err := protocol.DecodeServerToClient(buf[:n])
				if err != nil {
					log.Warn().Err(err).Msg("client-sim undecodable reply")
					continue
				}
				if reply.Header.Sequence > lastRecvSeq {
					lastRecvSeq = reply.Header.Sequence
				}
				for _, body := range reply.Bodies {
					switch elem := body.(type) {
					case protocol.Pong:
						pongsSeen++
						log.Info().
							Uint64("echoed_seq", elem.Sequence).
							Uint64("server_seq", reply.Header.Sequence).
							Msg("client-sim pong")
					case protocol.Terrain:
						terrainsSeen++
						log.Info().
							Int("bytes", len(elem.Snapshot)).
							Uint64("server_seq", reply.Header.Sequence).
							Msg("client-sim terrain")
					}
				}
			}
		}
	}
}
