package main

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ayusman/aircanvas/internal/config"
)

var version = "dev"

// options holds the command-line flags. Flags only override the config
// file when set explicitly.
type options struct {
	configPath  string
	camera      int
	noFlip      bool
	addr        string
	mdns        bool
	db          string
	noJournal   bool
	voiceHelper string
	noVoice     bool
	tray        bool
	headless    bool
	verbose     bool
}

// newLogger creates a new logger with timestamp formatting.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

func newRootCmd() *cobra.Command {
	var opts options
	logger := newLogger(os.Stderr, log.InfoLevel)

	root := &cobra.Command{
		Use:          "aircanvas",
		Short:        "Draw in the air with hand gestures and voice commands",
		Long:         `AirCanvas tracks your hand through the camera. Pinch to draw, open your palm to erase, point at a swatch to pick a colour, and say a colour, "clear" or "exit".`,
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				logger.SetLevel(log.DebugLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &opts, logger)
			if err != nil {
				return err
			}
			return runSession(cmd.Context(), cfg, logger)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file (default ~/.aircanvas/config.toml if present)")
	pf.StringVar(&opts.db, "db", "", "session journal database path")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")

	f := root.Flags()
	f.IntVar(&opts.camera, "camera", 0, "camera device index")
	f.BoolVar(&opts.noFlip, "no-flip", false, "do not mirror the camera image")
	f.StringVar(&opts.addr, "addr", "", "serve the stream and state API on this address")
	f.BoolVar(&opts.mdns, "mdns", false, "advertise the HTTP server over mDNS")
	f.BoolVar(&opts.noJournal, "no-journal", false, "do not journal the session")
	f.StringVar(&opts.voiceHelper, "voice-helper", "", "speech helper executable")
	f.BoolVar(&opts.noVoice, "no-voice", false, "disable voice commands")
	f.BoolVar(&opts.tray, "tray", false, "show a system tray menu")
	f.BoolVar(&opts.headless, "headless", false, "do not open a window")

	root.AddCommand(newSessionsCmd(&opts, logger))
	return root
}

// loadConfig reads the config file, if any, and applies explicit flags.
func loadConfig(cmd *cobra.Command, opts *options, logger *log.Logger) (config.Config, error) {
	cfg := config.Default()

	path := opts.configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultPath()); err == nil {
			path = config.DefaultPath()
		}
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
		logger.Debug("loaded config", "path", path)
	}

	flags := cmd.Flags()
	if flags.Changed("camera") {
		cfg.Camera.Device = opts.camera
	}
	if opts.noFlip {
		cfg.Camera.Flip = false
	}
	if flags.Changed("addr") {
		cfg.Server.Enabled = true
		cfg.Server.Addr = opts.addr
	}
	if opts.mdns {
		cfg.Server.MDNS = true
	}
	if flags.Changed("db") {
		cfg.Store.Path = opts.db
	}
	if opts.noJournal {
		cfg.Store.Path = ""
	}
	if flags.Changed("voice-helper") {
		cfg.Voice.Helper = opts.voiceHelper
	}
	if opts.noVoice {
		cfg.Voice.Enabled = false
	}
	if opts.tray {
		cfg.UI.Tray = true
	}
	if opts.headless {
		cfg.UI.Headless = true
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
