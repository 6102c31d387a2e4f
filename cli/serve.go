package cli

import (
	"context"
	"net"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ka2n/csvboard/config"
	"github.com/ka2n/csvboard/log"
	"github.com/ka2n/csvboard/web"
	"github.com/morikuni/failure/v2"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var (
	browserFlag bool
	listenFlag  string
	titleFlag   string
	tab         tabFlag

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the web dashboard",
		Long:  "Start the web dashboard. Each configured CSV file is shown in its own tab.",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
)

func init() {
	addServeFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&browserFlag, "browser", "b", false, "Open the dashboard in a browser once it is listening")
	cmd.Flags().StringVarP(&listenFlag, "listen", "L", "", "Listen address (overrides config)")
	cmd.Flags().StringVar(&titleFlag, "title", web.DefaultTitle, "Page heading")
	cmd.Flags().Var(&tab, "tab", "Open the browser on this source's tab (implies --browser)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}

	addr := a.cfg.Listen
	if listenFlag != "" {
		addr = listenFlag
	}

	srv := web.NewServer(a.board)
	srv.Title = titleFlag
	// only the source list is reloaded; see config.Loader.Watch
	a.loader.Watch(func(cfg config.Config) {
		srv.SetBoard(srv.Board().WithSources(cfg.Sources))
	})

	if browserFlag || tab.IsSet {
		u, err := dashboardURL(addr, tab.Value)
		if err != nil {
			return err
		}
		go openWhenReady(ctx, addr, u)
	}

	return srv.ListenAndServe(ctx, addr)
}

// dashboardURL turns a listen address into a URL a local browser can open.
func dashboardURL(addr, tabID string) (string, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", failure.New(InvalidListen,
			failure.Message("Invalid listen address: "+addr),
			failure.Context{"error": err.Error()},
		)
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	u := url.URL{Scheme: "http", Host: net.JoinHostPort(host, port), Path: "/"}
	if tabID != "" {
		u.Fragment = tabID
	}
	return u.String(), nil
}

// openWhenReady waits until addr accepts connections, then opens u.
func openWhenReady(ctx context.Context, addr, u string) {
	dialAddr := addr
	if host, port, err := net.SplitHostPort(addr); err == nil && (host == "" || host == "0.0.0.0" || host == "::") {
		dialAddr = net.JoinHostPort("localhost", port)
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for range 50 {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		conn, err := net.DialTimeout("tcp", dialAddr, time.Second)
		if err != nil {
			continue
		}
		conn.Close()
		if err := browser.OpenURL(u); err != nil {
			log.Warn("Failed to open browser", "url", u, "error", err)
		}
		return
	}
	log.Warn("Dashboard did not become ready, not opening browser", "url", u)
}
