package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/moqsien/processes/logger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/moqsien/sxnet/addr"
	"github.com/moqsien/sxnet/admin"
	"github.com/moqsien/sxnet/config"
	"github.com/moqsien/sxnet/engine"
	"github.com/moqsien/sxnet/service"
	"github.com/moqsien/sxnet/socket"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an echo or file service on the event loop engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(&cfg.Serve)
		if err != nil {
			return err
		}
		ln, err := listen(&cfg.Serve)
		if err != nil {
			return err
		}

		eng := engine.New()
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		go func() {
			<-ctx.Done()
			if err := eng.Stop(); err != nil {
				logger.Warningf("stop engine: %v", err)
			}
		}()
		if cfg.Admin.Enabled {
			go func() {
				if err := admin.New(eng).ListenAndServe(ctx, cfg.Admin.Address); err != nil {
					logger.Errorf("admin server: %v", err)
				}
			}()
		}
		logger.Println("serving", cfg.Serve.Service, "on", cfg.Serve.Network, cfg.Serve.Address)
		return eng.Serve(service.Adapt(svc), ln, cfg.Serve.Options())
	},
}

func newService(c *config.ServeConfig) (service.Service, error) {
	switch c.Service {
	case "echo":
		return service.Echo{}, nil
	case "file":
		return &service.FileServer{Root: c.Root}, nil
	default:
		return nil, errors.Errorf("unknown service %q", c.Service)
	}
}

func listen(c *config.ServeConfig) (*socket.Listener, error) {
	if !c.Raw {
		return socket.Listen(c.Network, c.Address)
	}
	sc := &socket.Config{ReusePort: c.ReusePort}
	switch c.Network {
	case "udp", "udp4", "udp6", "unixgram":
		sc.Type = addr.Dgram
	}
	switch c.Network {
	case "unix", "unixgram":
		a, err := addr.New(c.Address, addr.Unix, 0)
		if err != nil {
			return nil, err
		}
		sc.Address = a
	default:
		host, port, err := net.SplitHostPort(c.Address)
		if err != nil {
			return nil, err
		}
		p, err := strconv.ParseUint(port, 10, 16)
		if err != nil {
			return nil, errors.Wrapf(err, "port of %s", c.Address)
		}
		domain := addr.Inet
		if ip := net.ParseIP(host); ip != nil && ip.To4() == nil {
			domain = addr.Inet6
		}
		if host == "" {
			sc.Address, err = addr.Any(domain, uint16(p))
		} else {
			sc.Address, err = addr.New(host, domain, uint16(p))
		}
		if err != nil {
			return nil, err
		}
	}
	return socket.ListenConfig(sc)
}

func init() {
	f := serveCmd.Flags()
	f.String("network", "tcp", "tcp, tcp6, udp or unix")
	f.String("address", "127.0.0.1:20000", "listen address or unix socket path")
	f.String("service", "echo", "echo or file")
	f.String("root", ".", "root directory of the file service")
	f.Bool("raw", false, "create the socket directly instead of through the net package")
	f.Int("loops", 0, "number of event loops, one per CPU when zero")
	f.String("balancer", "round-robin", "round-robin or least-conn")
	f.Bool("admin", false, "serve the admin API as well")
	for flag, key := range map[string]string{
		"network":  "serve.network",
		"address":  "serve.address",
		"service":  "serve.service",
		"root":     "serve.root",
		"raw":      "serve.raw",
		"loops":    "serve.loops",
		"balancer": "serve.balancer",
		"admin":    "admin.enabled",
	} {
		bindFlag(serveCmd, flag, key)
	}
}
