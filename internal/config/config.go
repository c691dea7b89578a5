// Package config parses the CLI surface from spec.md §6 with an optional
// config-file layer for the replay/broadcast tuning knobs.
package config

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"itchbook/internal/errs"
)

// Config is the fully resolved, validated run configuration.
type Config struct {
	File    string
	Symbol  string
	Output  string
	Verbose bool

	Websocket bool
	Port      int

	Depth            int
	QueueSize        int
	SubscriberBuffer int
	SendDeadline     time.Duration
	CatchupThreshold time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	ConfigFile string
}

// Parse builds a Config from args (typically os.Args[1:]). Flags always
// win over a layered --config file (SPEC_FULL.md §2). Fails with
// *errs.ConfigError on any invalid combination.
func Parse(args []string) (Config, error) {
	fs := pflag.NewFlagSet("itchbook", pflag.ContinueOnError)

	file := fs.StringP("file", "f", "", "input ITCH 5.0 capture path (required)")
	symbol := fs.StringP("symbol", "s", "", "1-8 character uppercase symbol to track (required)")
	output := fs.StringP("output", "o", "", "output CSV path (required)")
	verbose := fs.Bool("verbose", false, "enable development logging")
	ws := fs.Bool("websocket", false, "enable the websocket broadcaster")
	port := fs.IntP("port", "p", 0, "TCP port to listen on (required if --websocket)")
	depth := fs.Int("depth", 10, "number of price levels per side in each snapshot (K)")
	queueSize := fs.Int("queue-size", 8192, "engine-to-broadcaster queue capacity")
	subBuf := fs.Int("subscriber-buffer", 1024, "per-subscriber drop-oldest buffer capacity")
	sendDeadline := fs.Duration("send-deadline", 500*time.Millisecond, "subscriber socket write deadline")
	catchup := fs.Duration("catchup-threshold", time.Second, "replay clock re-anchor threshold")
	kafkaBrokers := fs.String("kafka-brokers", "", "comma-separated Kafka brokers; enables the Kafka sink if set together with --websocket")
	kafkaTopic := fs.String("kafka-topic", "itchbook.snapshots", "Kafka topic for the optional sink")
	configFile := fs.String("config", "", "optional YAML/TOML file layering defaults under the flags above")

	if err := fs.Parse(args); err != nil {
		return Config{}, &errs.ConfigError{Msg: err.Error()}
	}

	if *configFile != "" {
		v := viper.New()
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, &errs.ConfigError{Msg: "reading config file: " + err.Error()}
		}
		if err := v.BindPFlags(fs); err != nil {
			return Config{}, &errs.ConfigError{Msg: "binding config file: " + err.Error()}
		}
		// BindPFlags makes viper prefer an explicitly-set flag over the
		// file value automatically; re-read the resolved values back out
		// so the file can supply anything the user didn't pass on the CLI.
		*depth = v.GetInt("depth")
		*queueSize = v.GetInt("queue-size")
		*subBuf = v.GetInt("subscriber-buffer")
		*sendDeadline = v.GetDuration("send-deadline")
		*catchup = v.GetDuration("catchup-threshold")
		if !fs.Changed("kafka-brokers") {
			*kafkaBrokers = v.GetString("kafka-brokers")
		}
		if !fs.Changed("kafka-topic") {
			*kafkaTopic = v.GetString("kafka-topic")
		}
	}

	cfg := Config{
		File:             *file,
		Symbol:           strings.ToUpper(strings.TrimSpace(*symbol)),
		Output:           *output,
		Verbose:          *verbose,
		Websocket:        *ws,
		Port:             *port,
		Depth:            *depth,
		QueueSize:        *queueSize,
		SubscriberBuffer: *subBuf,
		SendDeadline:     *sendDeadline,
		CatchupThreshold: *catchup,
		KafkaTopic:       *kafkaTopic,
		ConfigFile:       *configFile,
	}
	if *kafkaBrokers != "" {
		cfg.KafkaBrokers = strings.Split(*kafkaBrokers, ",")
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch {
	case c.File == "":
		return &errs.ConfigError{Msg: "-f/--file is required"}
	case c.Symbol == "" || len(c.Symbol) > 8:
		return &errs.ConfigError{Msg: "-s/--symbol must be 1-8 characters"}
	case c.Output == "":
		return &errs.ConfigError{Msg: "-o/--output is required"}
	case c.Websocket && c.Port <= 0:
		return &errs.ConfigError{Msg: "-p/--port is required when --websocket is set"}
	case c.Depth <= 0:
		return &errs.ConfigError{Msg: "--depth must be positive"}
	}
	for _, r := range c.Symbol {
		if r < 'A' || r > 'Z' {
			return &errs.ConfigError{Msg: "-s/--symbol must be ASCII uppercase"}
		}
	}
	return nil
}
