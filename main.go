package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aboutsettings/internal/config"
	"aboutsettings/internal/controllers"
	"aboutsettings/internal/log"
	"aboutsettings/internal/middleware"
	"aboutsettings/internal/routes"
	"aboutsettings/internal/services"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// overridden during build with ldflags
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("aboutsettings failed")
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "aboutsettings",
		Usage:   "Device and system information for the About settings panel",
		Version: version,
		Flags:   config.Flags(),
		Commands: []*cli.Command{
			serveCmd(),
			showCmd(),
			tokenCmd(),
		},
		Action: runServe,
	}
}

// loadConfig loads the configuration and applies the logging settings
func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load(cmd)
	if err != nil {
		return config.Config{}, err
	}
	log.SetFormat(cfg.LogFormat)
	log.SetLevel(cfg.LogLevel)
	return cfg, nil
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve About panel data over HTTP",
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var auth *services.AuthService
	if cfg.AuthSecretFile != "" {
		secret, err := services.LoadOrCreateSecret(cfg.AuthSecretFile)
		if err != nil {
			return err
		}
		if auth, err = services.NewAuthService(secret, cfg.TokenExpiry); err != nil {
			return err
		}
	}

	provider := services.NewDeviceInfoProvider(cfg.ProviderOptions()...)
	provider.LogMounts(ctx)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.SecurityHeadersMiddleware(),
		middleware.IPAllowListMiddleware(middleware.NewIPAllowList(cfg.AllowIPs)),
		middleware.RateLimitMiddleware(middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)),
	)
	routes.RegisterAboutRoutes(r, controllers.NewAboutController(provider), auth)
	routes.RegisterSystemRoutes(r)

	listener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Listen, err)
	}

	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	log.Info().Str("addr", listener.Addr().String()).Bool("auth", auth != nil).Str("version", version).Msg("Server started")
	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Warn().Err(err).Msg("Could not notify systemd")
	} else if sent {
		log.Debug().Msg("Notified systemd of readiness")
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func showCmd() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Print About panel data once",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"o"}, Usage: "output format (json, yaml)", Value: "json"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			provider := services.NewDeviceInfoProvider(cfg.ProviderOptions()...)
			return writeAbout(cmd.Root().Writer, cmd.String("format"), provider.About(ctx))
		},
	}
}

func writeAbout(w io.Writer, format string, about any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(about)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(about)
	default:
		return fmt.Errorf("unknown output format: %q", format)
	}
}

func tokenCmd() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Generate a bearer token for identifier routes",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "client", Usage: "name of the client the token is issued to", Value: "settings-ui"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.AuthSecretFile == "" {
				return errors.New("--auth-secret-file is required to generate tokens")
			}

			secret, err := services.LoadOrCreateSecret(cfg.AuthSecretFile)
			if err != nil {
				return err
			}
			auth, err := services.NewAuthService(secret, cfg.TokenExpiry)
			if err != nil {
				return err
			}

			token, err := auth.GenerateToken(cmd.String("client"))
			if err != nil {
				return fmt.Errorf("failed to generate token: %w", err)
			}
			_, err = fmt.Fprintln(cmd.Root().Writer, token)
			return err
		},
	}
}
