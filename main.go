package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin"
	"github.com/go-yaml/yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

type Configure struct {
	Conf      string `yaml:"-"`
	Apk       string `yaml:"apk"`
	Output    string `yaml:"output"`
	Debug     bool   `yaml:"debug"`
	LogFormat string `yaml:"log-format"`
	Quiet     bool   `yaml:"quiet"`
}

func defaultConfig() Configure {
	return Configure{
		Apk:       "app-release-1.apk",
		Output:    "decompiled_apk",
		LogFormat: "text",
	}
}

func (c *Configure) validate() error {
	var result error
	if c.Apk == "" {
		result = multierror.Append(result, errors.New("apk path must not be empty"))
	}
	if c.Output == "" {
		result = multierror.Append(result, errors.New("output directory must not be empty"))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		result = multierror.Append(result, errors.Errorf("unknown log format %q, one of <text|json>", c.LogFormat))
	}
	return result
}

func parseFlags(fs afero.Fs, args []string) (*Configure, error) {
	gcfg := defaultConfig()

	app := kingpin.New("apkinspector", "Extract an Android APK and write a JSON summary of its resources")
	app.HelpFlag.Short('h')
	app.Flag("conf", "config file path, yaml format").StringVar(&gcfg.Conf)
	app.Flag("apk", "APK file to inspect (default: app-release-1.apk)").Short('f').StringVar(&gcfg.Apk)
	app.Flag("output", "extraction and report directory (default: decompiled_apk)").Short('o').StringVar(&gcfg.Output)
	app.Flag("debug", "enable debug logging").BoolVar(&gcfg.Debug)
	app.Flag("log-format", "log format, one of <text|json>").StringVar(&gcfg.LogFormat)
	app.Flag("quiet", "do not print the summary table").Short('q').BoolVar(&gcfg.Quiet)

	if _, err := app.Parse(args); err != nil {
		return nil, err
	}
	if gcfg.Conf != "" {
		ymlData, err := afero.ReadFile(fs, gcfg.Conf)
		if err != nil {
			return nil, errors.Wrap(err, "read-conf")
		}
		if err := yaml.Unmarshal(ymlData, &gcfg); err != nil {
			return nil, errors.Wrap(err, "parse-conf")
		}
		// command line has higher priority than conf
		if _, err := app.Parse(args); err != nil {
			return nil, err
		}
	}
	if err := gcfg.validate(); err != nil {
		return nil, err
	}
	return &gcfg, nil
}

func newLogger(cfg *Configure, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

func run(fs afero.Fs, args []string, stdout, stderr io.Writer) int {
	gcfg, err := parseFlags(fs, args)
	if err != nil {
		fmt.Fprintf(stderr, "apkinspector: %v\n", err)
		return 2
	}
	logger := newLogger(gcfg, stderr)

	if _, err := fs.Stat(gcfg.Apk); err != nil {
		fmt.Fprintf(stdout, "APK file not found: %s\n", gcfg.Apk)
		return 1
	}

	res := NewInspector(fs, logger).Inspect(gcfg.Apk, gcfg.Output)
	if !gcfg.Quiet {
		printSummary(stdout, res)
	}
	if res.Written {
		fmt.Fprintln(stdout, "\nAnalysis complete!")
		fmt.Fprintf(stdout, "Results saved to: %s\n", res.ReportPath)
	}
	if res.Failed() {
		logger.WithError(res.Err).Error("analysis did not finish")
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(afero.NewOsFs(), os.Args[1:], os.Stdout, os.Stderr))
}
