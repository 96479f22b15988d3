package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/zeliboba/irc"
	"github.com/zeliboba/irc/internal/console"
	"github.com/zeliboba/irc/internal/tui"
)

var flagConnect = flag.String("connect", "", "Server to connect to on start, as host[:port]")
var flagNick = flag.String("nick", "", "The client nick")
var flagUser = flag.String("user", "", "The client user/ident")
var flagRealName = flag.String("realname", "", "The real name sent on login")
var flagPlain = flag.Bool("plain", false, "Use the plain console instead of the full-screen interface")
var flagDebugLog = flag.String("debug-log", "", "Log all traffic to this file")
var flagEncoding = flag.String("encoding", "", "Fallback encoding for lines that aren't UTF-8 (latin1, cp1252, cp1251, koi8-r)")
var flagSendRate = flag.Float64("send-rate", 2, "Max lines sent per second, 0 for no limit")
var flagConfig = flag.String("config", "", "JSON config file; flags override it")

func main() {
	flag.Parse()

	config, err := loadConfig()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var presenter irc.Presenter
	var consolePresenter *console.Presenter
	var tuiPresenter *tui.Presenter
	if *flagPlain {
		consolePresenter = console.NewPresenter(os.Stdout)
		presenter = consolePresenter
	} else {
		tuiPresenter = tui.NewPresenter()
		presenter = tuiPresenter
	}

	if *flagDebugLog != "" {
		file, err := os.OpenFile(*flagDebugLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Failed to open debug log: %s\n", err)
			os.Exit(1)
		}
		defer file.Close()

		presenter = irc.NewDebugPresenter(presenter, log.New(file, "", log.LstdFlags), false)
	}

	client := irc.New(context.Background(), config, presenter)

	var initial []string
	if *flagConnect != "" {
		initial = append(initial, "/connect "+*flagConnect)
	}

	if *flagPlain {
		go func() {
			<-ctx.Done()
			_ = client.Quit()
			os.Exit(0)
		}()

		input := io.MultiReader(strings.NewReader(strings.Join(append(initial, ""), "\n")), os.Stdin)
		err = console.Run(client, consolePresenter, input)
	} else {
		err = tui.Run(ctx, client, tuiPresenter, initial...)
	}

	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (irc.Config, error) {
	config := irc.Config{}

	if *flagConfig != "" {
		data, err := os.ReadFile(*flagConfig)
		if err != nil {
			return config, fmt.Errorf("failed to read config: %w", err)
		}
		if err := json.Unmarshal(data, &config); err != nil {
			return config, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "nick":
			config.Nick = *flagNick
		case "user":
			config.User = *flagUser
		case "realname":
			config.RealName = *flagRealName
		case "encoding":
			config.FallbackEncoding = *flagEncoding
		case "send-rate":
			config.SendRate = *flagSendRate
		}
	})
	if *flagConfig == "" && config.SendRate == 0 {
		config.SendRate = *flagSendRate
	}

	if _, err := irc.LookupEncoding(config.FallbackEncoding); err != nil {
		return config, fmt.Errorf("%w: %q", err, config.FallbackEncoding)
	}

	return config, nil
}
